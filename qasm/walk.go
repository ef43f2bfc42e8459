package qasm

// Walk visits n and its descendants depth-first in source order. When fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// GateDefs returns the gate definitions of a program in declaration order.
// Includes are not followed.
func GateDefs(prog *Program) []*Gate {
	var gates []*Gate
	for _, s := range prog.Statements {
		if g, ok := s.(*Gate); ok {
			gates = append(gates, g)
		}
	}
	return gates
}

// Equal reports whether two trees have the same kinds, names and rendered
// leaves at every position.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	if len(ac) == 0 {
		return a.QASM(DefaultPrecision) == b.QASM(DefaultPrecision)
	}
	switch x := a.(type) {
	case *BinaryOp:
		if x.Op != b.(*BinaryOp).Op {
			return false
		}
	case *Prefix:
		if x.Op != b.(*Prefix).Op {
			return false
		}
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

package qasm

// GateBody is the body of a custom gate definition. It holds at most one
// GopList; traversal sees the operations directly, never the list node.
type GateBody struct {
	ops *GopList
}

// NewGateBody wraps an operation list. A nil or non-GopList argument
// gives an empty body.
func NewGateBody(ops Node) *GateBody {
	l, _ := ops.(*GopList)
	return &GateBody{ops: l}
}

func (*GateBody) node()        {}
func (*GateBody) Kind() Kind   { return KindGateBody }
func (*GateBody) Name() string { return "" }

func (b *GateBody) Children() []Node {
	if b.ops == nil {
		return nil
	}
	return b.ops.Children()
}

// Calls returns the names of the custom gates invoked directly in the body,
// in order of appearance with duplicates kept. U, CX and barrier are not
// calls.
func (b *GateBody) Calls() []string {
	var calls []string
	for _, op := range b.Children() {
		if op.Kind() == KindCustomUnitary {
			calls = append(calls, op.Name())
		}
	}
	return calls
}

func (b *GateBody) QASM(prec int) string {
	return renderJoin(b.Children(), prec, "\n")
}

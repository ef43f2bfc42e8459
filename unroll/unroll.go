// Package unroll flattens a parsed OpenQASM program into the elementary
// U and CX operations the simulator executes.
package unroll

import (
	"errors"
	"fmt"
	"math"

	"qtermkit/qasm"
	"qtermkit/sim"
)

var (
	ErrUnknownGate     = errors.New("unknown gate")
	ErrOpaqueGate      = errors.New("opaque gate has no definition")
	ErrUnknownRegister = errors.New("unknown register or argument")
	ErrRedeclared      = errors.New("redeclared")
	ErrBadRegister     = errors.New("malformed register declaration")
	ErrIndexRange      = errors.New("index out of range")
	ErrBroadcast       = errors.New("register sizes differ")
	ErrArgCount        = errors.New("wrong number of arguments")
	ErrTooDeep         = errors.New("gate expansion too deep")
	ErrUnsupported     = errors.New("unsupported statement")
)

// DefaultMaxDepth bounds nested gate expansion.
const DefaultMaxDepth = 64

// Register is a declared register laid out in the flat qubit or bit space.
type Register struct {
	Name   string
	Offset int
	Size   int
}

// Circuit is the unrolled program.
type Circuit struct {
	Qregs     []Register
	Cregs     []Register
	NumQubits int
	NumClbits int
	Ops       []sim.Op
}

// Unroller expands includes and custom gates. The zero value resolves
// includes with a FileResolver that only knows the standard library.
type Unroller struct {
	Resolver qasm.Resolver
	MaxDepth int
	// MaxQubits bounds the total size of all qregs. Zero means
	// sim.DefaultMaxQubits.
	MaxQubits int
}

// Unroll expands prog into a Circuit.
func (u Unroller) Unroll(prog *qasm.Program) (*Circuit, error) {
	if u.Resolver == nil {
		u.Resolver = qasm.FileResolver{}
	}
	if u.MaxDepth <= 0 {
		u.MaxDepth = DefaultMaxDepth
	}
	if u.MaxQubits <= 0 {
		u.MaxQubits = sim.DefaultMaxQubits
	}
	st := &state{
		u:        u,
		gates:    make(map[string]*qasm.Gate),
		opaque:   make(map[string]bool),
		qregs:    make(map[string]Register),
		cregs:    make(map[string]Register),
		included: make(map[string]bool),
		c:        &Circuit{},
	}
	if err := st.program(prog); err != nil {
		return nil, err
	}
	return st.c, nil
}

// Unroll expands prog with the default Unroller.
func Unroll(prog *qasm.Program) (*Circuit, error) {
	return Unroller{}.Unroll(prog)
}

type state struct {
	u        Unroller
	gates    map[string]*qasm.Gate
	opaque   map[string]bool
	qregs    map[string]Register
	cregs    map[string]Register
	included map[string]bool
	c        *Circuit
}

func (st *state) program(prog *qasm.Program) error {
	for _, s := range prog.Statements {
		if err := st.statement(s); err != nil {
			if line := lineOf(s); line > 0 {
				return fmt.Errorf("line %d: %w", line, err)
			}
			return err
		}
	}
	return nil
}

func (st *state) statement(s qasm.Node) error {
	switch n := s.(type) {
	case *qasm.Format:
		return nil
	case *qasm.Include:
		return st.include(n.File)
	case *qasm.Qreg:
		reg, err := st.declare(n.Name(), n.Size, st.qregs, &st.c.NumQubits, st.u.MaxQubits, sim.ErrTooManyQubits)
		if err != nil {
			return err
		}
		st.c.Qregs = append(st.c.Qregs, reg)
	case *qasm.Creg:
		reg, err := st.declare(n.Name(), n.Size, st.cregs, &st.c.NumClbits, math.MaxInt, ErrBadRegister)
		if err != nil {
			return err
		}
		st.c.Cregs = append(st.c.Cregs, reg)
	case *qasm.Gate:
		if st.defined(n.Name()) {
			return fmt.Errorf("gate %q: %w", n.Name(), ErrRedeclared)
		}
		st.gates[n.Name()] = n
	case *qasm.Opaque:
		if st.defined(n.Name()) {
			return fmt.Errorf("gate %q: %w", n.Name(), ErrRedeclared)
		}
		st.opaque[n.Name()] = true
	case *qasm.If:
		reg, ok := st.cregs[n.Name()]
		if !ok {
			return fmt.Errorf("creg %q: %w", n.Name(), ErrUnknownRegister)
		}
		val, ok := n.Value.(*qasm.Int)
		if !ok {
			return fmt.Errorf("if value: %w", ErrUnsupported)
		}
		return st.qop(n.Op, &sim.Condition{Register: reg.Name, Value: val.Value})
	default:
		return st.qop(s, nil)
	}
	return nil
}

func (st *state) defined(name string) bool {
	return st.gates[name] != nil || st.opaque[name]
}

func (st *state) include(name string) error {
	src, path, err := st.u.Resolver.Resolve(name)
	if err != nil {
		return err
	}
	if st.included[path] {
		return nil
	}
	st.included[path] = true
	prog, err := qasm.ParseFile(path, src)
	if err != nil {
		return err
	}
	if err := st.program(prog); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// declare lays out a register after the ones already in regs. The running
// total never exceeds limit; tooMany is returned when size would push it past.
func (st *state) declare(name string, size int, regs map[string]Register, total *int, limit int, tooMany error) (Register, error) {
	if name == "" || size <= 0 {
		return Register{}, ErrBadRegister
	}
	if size > limit-*total {
		return Register{}, fmt.Errorf("register %q[%d] with %d already declared (limit %d): %w", name, size, *total, limit, tooMany)
	}
	if _, ok := st.qregs[name]; ok {
		return Register{}, fmt.Errorf("register %q: %w", name, ErrRedeclared)
	}
	if _, ok := st.cregs[name]; ok {
		return Register{}, fmt.Errorf("register %q: %w", name, ErrRedeclared)
	}
	reg := Register{Name: name, Offset: *total, Size: size}
	regs[name] = reg
	*total += size
	return reg, nil
}

// bits resolves a top-level argument to its absolute indices. A bare
// register name stands for every element of the register.
func bits(arg qasm.Node, regs map[string]Register) ([]int, bool, error) {
	switch a := arg.(type) {
	case *qasm.ID:
		reg, ok := regs[a.Ident]
		if !ok {
			return nil, false, fmt.Errorf("%q: %w", a.Ident, ErrUnknownRegister)
		}
		out := make([]int, reg.Size)
		for i := range out {
			out[i] = reg.Offset + i
		}
		return out, true, nil
	case *qasm.IndexedID:
		reg, ok := regs[a.Ident]
		if !ok {
			return nil, false, fmt.Errorf("%q: %w", a.Ident, ErrUnknownRegister)
		}
		if a.Index < 0 || a.Index >= reg.Size {
			return nil, false, fmt.Errorf("%s[%d] (size %d): %w", a.Ident, a.Index, reg.Size, ErrIndexRange)
		}
		return []int{reg.Offset + a.Index}, false, nil
	}
	if arg == nil {
		return nil, false, ErrUnsupported
	}
	return nil, false, fmt.Errorf("argument %s: %w", arg.Kind(), ErrUnsupported)
}

// broadcast turns per-argument index lists into one qubit tuple per
// application. Whole-register arguments must agree on size.
func broadcast(args [][]int, whole []bool) ([][]int, error) {
	width := -1
	for i, a := range args {
		if !whole[i] {
			continue
		}
		if width >= 0 && len(a) != width {
			return nil, fmt.Errorf("%d and %d: %w", width, len(a), ErrBroadcast)
		}
		width = len(a)
	}
	if width < 0 {
		width = 1
	}
	out := make([][]int, width)
	for k := range out {
		tuple := make([]int, len(args))
		for i, a := range args {
			if whole[i] {
				tuple[i] = a[k]
			} else {
				tuple[i] = a[0]
			}
		}
		out[k] = tuple
	}
	return out, nil
}

func (st *state) resolveAll(args []qasm.Node, regs map[string]Register) ([][]int, []bool, error) {
	idx := make([][]int, len(args))
	whole := make([]bool, len(args))
	for i, a := range args {
		b, w, err := bits(a, regs)
		if err != nil {
			return nil, nil, err
		}
		idx[i], whole[i] = b, w
	}
	return idx, whole, nil
}

// qop emits a top-level quantum operation.
func (st *state) qop(s qasm.Node, cond *sim.Condition) error {
	switch n := s.(type) {
	case *qasm.UniversalUnitary:
		return st.unitary("U", n.Args, []qasm.Node{n.Target}, cond)
	case *qasm.Cnot:
		return st.unitary("CX", nil, []qasm.Node{n.Control, n.Target}, cond)
	case *qasm.CustomUnitary:
		return st.unitary(n.Name(), n.Args, children(n.Qubits), cond)
	case *qasm.Measure:
		q, wq, err := bits(n.Qubit, st.qregs)
		if err != nil {
			return err
		}
		c, wc, err := bits(n.Clbit, st.cregs)
		if err != nil {
			return err
		}
		if wq != wc {
			return fmt.Errorf("measure of a single bit and a whole register: %w", ErrBroadcast)
		}
		tuples, err := broadcast([][]int{q, c}, []bool{wq, wc})
		if err != nil {
			return err
		}
		for _, t := range tuples {
			st.emit(sim.Op{Name: "measure", Qubits: []int{t[0]}, Clbits: []int{t[1]}, Condition: cond})
		}
		return nil
	case *qasm.Reset:
		q, _, err := bits(n.Target, st.qregs)
		if err != nil {
			return err
		}
		for _, i := range q {
			st.emit(sim.Op{Name: "reset", Qubits: []int{i}, Condition: cond})
		}
		return nil
	case *qasm.Barrier:
		idx, _, err := st.resolveAll(children(n.List), st.qregs)
		if err != nil {
			return err
		}
		var all []int
		for _, b := range idx {
			all = append(all, b...)
		}
		st.emit(sim.Op{Name: "barrier", Qubits: all, Condition: cond})
		return nil
	}
	if s == nil {
		return ErrUnsupported
	}
	return fmt.Errorf("%s: %w", s.Kind(), ErrUnsupported)
}

func (st *state) unitary(name string, args qasm.Node, qubits []qasm.Node, cond *sim.Condition) error {
	params, err := qasm.EvalList(args, nil)
	if err != nil {
		return err
	}
	idx, whole, err := st.resolveAll(qubits, st.qregs)
	if err != nil {
		return err
	}
	tuples, err := broadcast(idx, whole)
	if err != nil {
		return err
	}
	for _, t := range tuples {
		if err := st.apply(name, params, t, cond, 0); err != nil {
			return err
		}
	}
	return nil
}

// apply emits gate name on absolute qubits, expanding custom definitions.
func (st *state) apply(name string, params []float64, qubits []int, cond *sim.Condition, depth int) error {
	switch name {
	case "U":
		if len(params) != 3 || len(qubits) != 1 {
			return fmt.Errorf("U(%d params) on %d qubits: %w", len(params), len(qubits), ErrArgCount)
		}
		return st.emitChecked(sim.Op{Name: "U", Params: params, Qubits: qubits, Condition: cond})
	case "CX":
		if len(params) != 0 || len(qubits) != 2 {
			return fmt.Errorf("CX(%d params) on %d qubits: %w", len(params), len(qubits), ErrArgCount)
		}
		return st.emitChecked(sim.Op{Name: "CX", Qubits: qubits, Condition: cond})
	}

	if st.opaque[name] {
		return fmt.Errorf("%q: %w", name, ErrOpaqueGate)
	}
	g, ok := st.gates[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownGate)
	}
	if depth >= st.u.MaxDepth {
		return fmt.Errorf("%q at depth %d: %w", name, depth, ErrTooDeep)
	}
	formalParams, formalQubits := g.ParamNames(), g.QubitNames()
	if len(params) != len(formalParams) || len(qubits) != len(formalQubits) {
		return fmt.Errorf("%s expects %d params and %d qubits, got %d and %d: %w",
			name, len(formalParams), len(formalQubits), len(params), len(qubits), ErrArgCount)
	}
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if seen[q] {
			return fmt.Errorf("%s on q[%d]: %w", name, q, sim.ErrRepeatedQubit)
		}
		seen[q] = true
	}
	for _, callee := range g.Body.Calls() {
		if !st.defined(callee) {
			return fmt.Errorf("%q called from %q: %w", callee, name, ErrUnknownGate)
		}
	}

	env := make(map[string]float64, len(params))
	for i, p := range formalParams {
		env[p] = params[i]
	}
	wires := make(map[string]int, len(qubits))
	for i, q := range formalQubits {
		wires[q] = qubits[i]
	}

	for _, op := range g.Body.Children() {
		if err := st.bodyOp(name, op, env, wires, cond, depth); err != nil {
			return err
		}
	}
	return nil
}

func (st *state) bodyOp(gate string, op qasm.Node, env map[string]float64, wires map[string]int, cond *sim.Condition, depth int) error {
	var (
		name   string
		args   qasm.Node
		qubits []qasm.Node
	)
	switch n := op.(type) {
	case *qasm.UniversalUnitary:
		name, args, qubits = "U", n.Args, []qasm.Node{n.Target}
	case *qasm.Cnot:
		name, qubits = "CX", []qasm.Node{n.Control, n.Target}
	case *qasm.CustomUnitary:
		name, args, qubits = n.Name(), n.Args, children(n.Qubits)
	case *qasm.Barrier:
		idx, err := mapWires(gate, children(n.List), wires)
		if err != nil {
			return err
		}
		st.emit(sim.Op{Name: "barrier", Qubits: idx, Condition: cond})
		return nil
	default:
		return fmt.Errorf("%s in gate %q: %w", op.Kind(), gate, ErrUnsupported)
	}

	params, err := qasm.EvalList(args, env)
	if err != nil {
		return fmt.Errorf("gate %q: %w", gate, err)
	}
	idx, err := mapWires(gate, qubits, wires)
	if err != nil {
		return err
	}
	return st.apply(name, params, idx, cond, depth+1)
}

func mapWires(gate string, args []qasm.Node, wires map[string]int) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		id, ok := a.(*qasm.ID)
		if !ok {
			return nil, fmt.Errorf("indexed argument in gate %q: %w", gate, ErrUnsupported)
		}
		q, ok := wires[id.Ident]
		if !ok {
			return nil, fmt.Errorf("%q in gate %q: %w", id.Ident, gate, ErrUnknownRegister)
		}
		out[i] = q
	}
	return out, nil
}

func (st *state) emitChecked(op sim.Op) error {
	if err := op.Validate(st.c.NumQubits); err != nil {
		return err
	}
	st.emit(op)
	return nil
}

func (st *state) emit(op sim.Op) {
	st.c.Ops = append(st.c.Ops, op)
}

func children(n qasm.Node) []qasm.Node {
	if n == nil {
		return nil
	}
	return n.Children()
}

// lineOf finds the first source line recorded under n.
func lineOf(n qasm.Node) int {
	line := 0
	qasm.Walk(n, func(c qasm.Node) bool {
		if line > 0 {
			return false
		}
		switch id := c.(type) {
		case *qasm.ID:
			line = id.Line
		case *qasm.IndexedID:
			line = id.Line
		}
		return line == 0
	})
	return line
}

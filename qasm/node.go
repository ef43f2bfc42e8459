// Package qasm holds the OpenQASM 2.0 syntax tree, its parser, and the
// canonical source renderer.
//
// Trees are built once by the parser and are read-only afterwards; list
// nodes only grow while the parser is filling them. Every node renders
// itself from its children's renderings plus fixed syntax, so any subtree
// can be turned back into source that parses to an equivalent tree.
package qasm

import (
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of significant digits used for real
// literals when a caller has no preference.
const DefaultPrecision = 15

// Node is implemented by every syntax tree node in this package.
type Node interface {
	Kind() Kind
	// Children returns the sub-nodes needed to regenerate the source text.
	Children() []Node
	// Name returns the identifier carried by the node, or "".
	Name() string
	// QASM renders the subtree, formatting reals with prec significant digits.
	QASM(prec int) string

	node()
}

func render(n Node, prec int) string {
	if n == nil {
		return ""
	}
	return n.QASM(prec)
}

func renderJoin(nodes []Node, prec int, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, render(n, prec))
	}
	return strings.Join(parts, sep)
}

// nonNil drops absent optional children.
func nonNil(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func nameOf(n Node) string {
	if n == nil {
		return ""
	}
	return n.Name()
}

// ─── program structure ───

// Program is the root of a parsed file.
type Program struct {
	Statements []Node
}

func (*Program) node()              {}
func (*Program) Kind() Kind         { return KindProgram }
func (*Program) Name() string       { return "" }
func (p *Program) Children() []Node { return p.Statements }

func (p *Program) QASM(prec int) string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(render(s, prec))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Format is the OPENQASM version header.
type Format struct {
	Version string
}

func (*Format) node()            {}
func (*Format) Kind() Kind       { return KindFormat }
func (*Format) Name() string     { return "" }
func (*Format) Children() []Node { return nil }

func (f *Format) QASM(int) string { return "OPENQASM " + f.Version + ";" }

// Include names a file whose statements are spliced in by the unroller.
type Include struct {
	File string
}

func (*Include) node()            {}
func (*Include) Kind() Kind       { return KindInclude }
func (i *Include) Name() string   { return i.File }
func (*Include) Children() []Node { return nil }

func (i *Include) QASM(int) string { return "include " + strconv.Quote(i.File) + ";" }

// ─── identifiers ───

// ID is a bare identifier.
type ID struct {
	Ident string
	Line  int
	File  string
}

func (*ID) node()            {}
func (*ID) Kind() Kind       { return KindID }
func (i *ID) Name() string   { return i.Ident }
func (*ID) Children() []Node { return nil }

func (i *ID) QASM(int) string { return i.Ident }

// IndexedID is name[index]. In a declaration the index is the register size.
type IndexedID struct {
	Ident string
	Index int
	Line  int
	File  string
}

func (*IndexedID) node()            {}
func (*IndexedID) Kind() Kind       { return KindIndexedID }
func (i *IndexedID) Name() string   { return i.Ident }
func (*IndexedID) Children() []Node { return nil }

func (i *IndexedID) QASM(int) string { return i.Ident + "[" + strconv.Itoa(i.Index) + "]" }

// IDList is an ordered comma separated list of identifiers.
type IDList struct {
	ids []Node
}

// NewIDList returns a list holding ids in order.
func NewIDList(ids ...Node) *IDList {
	return &IDList{ids: nonNil(ids...)}
}

// Add appends an identifier. Only the parser calls it.
func (l *IDList) Add(id Node) {
	if id != nil {
		l.ids = append(l.ids, id)
	}
}

// Len returns the number of identifiers.
func (l *IDList) Len() int { return len(l.ids) }

func (*IDList) node()              {}
func (*IDList) Kind() Kind         { return KindIDList }
func (*IDList) Name() string       { return "" }
func (l *IDList) Children() []Node { return l.ids }

func (l *IDList) QASM(prec int) string { return renderJoin(l.ids, prec, ",") }

// PrimaryList is an argument list mixing bare and indexed identifiers.
type PrimaryList struct {
	items []Node
}

func NewPrimaryList(items ...Node) *PrimaryList {
	return &PrimaryList{items: nonNil(items...)}
}

func (l *PrimaryList) Add(item Node) {
	if item != nil {
		l.items = append(l.items, item)
	}
}

func (*PrimaryList) node()              {}
func (*PrimaryList) Kind() Kind         { return KindPrimaryList }
func (*PrimaryList) Name() string       { return "" }
func (l *PrimaryList) Children() []Node { return l.items }

func (l *PrimaryList) QASM(prec int) string { return renderJoin(l.items, prec, ",") }

// ─── register declarations ───

// regDecl copies the register name, location and size out of its
// IndexedID once. A child of any other kind leaves them zero.
type regDecl struct {
	indexed Node
	name    string
	Line    int
	File    string
	Size    int
}

func newRegDecl(indexed Node) regDecl {
	d := regDecl{indexed: indexed}
	if id, ok := indexed.(*IndexedID); ok && id != nil {
		d.name = id.Ident
		d.Line = id.Line
		d.File = id.File
		d.Size = id.Index
	}
	return d
}

func (d *regDecl) Name() string         { return d.name }
func (d *regDecl) Children() []Node     { return nonNil(d.indexed) }
func (d *regDecl) decl(prec int) string { return render(d.indexed, prec) }

// Qreg declares a quantum register.
type Qreg struct {
	regDecl
}

// NewQreg builds a qreg statement around its IndexedID.
func NewQreg(indexed Node) *Qreg { return &Qreg{newRegDecl(indexed)} }

func (*Qreg) node()      {}
func (*Qreg) Kind() Kind { return KindQreg }

func (q *Qreg) QASM(prec int) string { return "qreg " + q.decl(prec) + ";" }

// Creg declares a classical register.
type Creg struct {
	regDecl
}

// NewCreg builds a creg statement around its IndexedID.
func NewCreg(indexed Node) *Creg { return &Creg{newRegDecl(indexed)} }

func (*Creg) node()      {}
func (*Creg) Kind() Kind { return KindCreg }

func (c *Creg) QASM(prec int) string { return "creg " + c.decl(prec) + ";" }

// ─── gate declarations ───

// Gate is a custom gate definition.
type Gate struct {
	id     Node
	Params Node // *IDList or nil
	Qubits Node // *IDList
	Body   *GateBody
}

func NewGate(id, params, qubits Node, body *GateBody) *Gate {
	if body == nil {
		body = NewGateBody(nil)
	}
	return &Gate{id: id, Params: params, Qubits: qubits, Body: body}
}

func (*Gate) node()          {}
func (*Gate) Kind() Kind     { return KindGate }
func (g *Gate) Name() string { return nameOf(g.id) }

func (g *Gate) Children() []Node {
	return nonNil(g.id, g.Params, g.Qubits, g.Body)
}

// ParamNames returns the formal parameter names in order.
func (g *Gate) ParamNames() []string { return childNames(g.Params) }

// QubitNames returns the formal qubit argument names in order.
func (g *Gate) QubitNames() []string { return childNames(g.Qubits) }

func (g *Gate) QASM(prec int) string {
	var sb strings.Builder
	sb.WriteString("gate ")
	sb.WriteString(g.Name())
	if g.Params != nil {
		sb.WriteString("(" + g.Params.QASM(prec) + ")")
	}
	sb.WriteString(" " + render(g.Qubits, prec) + "\n")
	sb.WriteString("{\n" + g.Body.QASM(prec) + "\n}")
	return sb.String()
}

// Opaque declares a gate with no body.
type Opaque struct {
	id     Node
	Params Node
	Qubits Node
}

func NewOpaque(id, params, qubits Node) *Opaque {
	return &Opaque{id: id, Params: params, Qubits: qubits}
}

func (*Opaque) node()              {}
func (*Opaque) Kind() Kind         { return KindOpaque }
func (o *Opaque) Name() string     { return nameOf(o.id) }
func (o *Opaque) Children() []Node { return nonNil(o.id, o.Params, o.Qubits) }

func (o *Opaque) QASM(prec int) string {
	s := "opaque " + o.Name()
	if o.Params != nil {
		s += "(" + o.Params.QASM(prec) + ")"
	}
	return s + " " + render(o.Qubits, prec) + ";"
}

// GopList is the operation sequence inside a gate body.
type GopList struct {
	ops []Node
}

func NewGopList(ops ...Node) *GopList {
	return &GopList{ops: nonNil(ops...)}
}

func (l *GopList) Add(op Node) {
	if op != nil {
		l.ops = append(l.ops, op)
	}
}

func (*GopList) node()              {}
func (*GopList) Kind() Kind         { return KindGopList }
func (*GopList) Name() string       { return "" }
func (l *GopList) Children() []Node { return l.ops }

func (l *GopList) QASM(prec int) string { return renderJoin(l.ops, prec, "\n") }

// ─── quantum operations ───

// CustomUnitary applies a user-defined gate.
type CustomUnitary struct {
	id     Node
	Args   Node // *ExpressionList or nil
	Qubits Node // *IDList or *PrimaryList
}

func NewCustomUnitary(id, args, qubits Node) *CustomUnitary {
	return &CustomUnitary{id: id, Args: args, Qubits: qubits}
}

func (*CustomUnitary) node()              {}
func (*CustomUnitary) Kind() Kind         { return KindCustomUnitary }
func (u *CustomUnitary) Name() string     { return nameOf(u.id) }
func (u *CustomUnitary) Children() []Node { return nonNil(u.id, u.Args, u.Qubits) }

func (u *CustomUnitary) QASM(prec int) string {
	s := u.Name()
	if u.Args != nil {
		s += "(" + u.Args.QASM(prec) + ")"
	}
	return s + " " + render(u.Qubits, prec) + ";"
}

// UniversalUnitary is the built-in U(theta,phi,lambda).
type UniversalUnitary struct {
	Args   Node
	Target Node
}

func (*UniversalUnitary) node()              {}
func (*UniversalUnitary) Kind() Kind         { return KindUniversalUnitary }
func (*UniversalUnitary) Name() string       { return "" }
func (u *UniversalUnitary) Children() []Node { return nonNil(u.Args, u.Target) }

func (u *UniversalUnitary) QASM(prec int) string {
	return "U(" + render(u.Args, prec) + ") " + render(u.Target, prec) + ";"
}

// Cnot is the built-in CX.
type Cnot struct {
	Control Node
	Target  Node
}

func (*Cnot) node()              {}
func (*Cnot) Kind() Kind         { return KindCnot }
func (*Cnot) Name() string       { return "" }
func (c *Cnot) Children() []Node { return nonNil(c.Control, c.Target) }

func (c *Cnot) QASM(prec int) string {
	return "CX " + render(c.Control, prec) + "," + render(c.Target, prec) + ";"
}

type Barrier struct {
	List Node
}

func (*Barrier) node()              {}
func (*Barrier) Kind() Kind         { return KindBarrier }
func (*Barrier) Name() string       { return "" }
func (b *Barrier) Children() []Node { return nonNil(b.List) }

func (b *Barrier) QASM(prec int) string { return "barrier " + render(b.List, prec) + ";" }

type Measure struct {
	Qubit Node
	Clbit Node
}

func (*Measure) node()              {}
func (*Measure) Kind() Kind         { return KindMeasure }
func (*Measure) Name() string       { return "" }
func (m *Measure) Children() []Node { return nonNil(m.Qubit, m.Clbit) }

func (m *Measure) QASM(prec int) string {
	return "measure " + render(m.Qubit, prec) + " -> " + render(m.Clbit, prec) + ";"
}

type Reset struct {
	Target Node
}

func (*Reset) node()              {}
func (*Reset) Kind() Kind         { return KindReset }
func (*Reset) Name() string       { return "" }
func (r *Reset) Children() []Node { return nonNil(r.Target) }

func (r *Reset) QASM(prec int) string { return "reset " + render(r.Target, prec) + ";" }

// If conditions an operation on a classical register value.
type If struct {
	Creg  Node // *ID
	Value Node // *Int
	Op    Node
}

func (*If) node()              {}
func (*If) Kind() Kind         { return KindIf }
func (i *If) Name() string     { return nameOf(i.Creg) }
func (i *If) Children() []Node { return nonNil(i.Creg, i.Value, i.Op) }

func (i *If) QASM(prec int) string {
	return "if(" + render(i.Creg, prec) + "==" + render(i.Value, prec) + ") " + render(i.Op, prec)
}

// ─── expressions ───

type ExpressionList struct {
	exprs []Node
}

func NewExpressionList(exprs ...Node) *ExpressionList {
	return &ExpressionList{exprs: nonNil(exprs...)}
}

func (l *ExpressionList) Add(expr Node) {
	if expr != nil {
		l.exprs = append(l.exprs, expr)
	}
}

func (*ExpressionList) node()              {}
func (*ExpressionList) Kind() Kind         { return KindExpressionList }
func (*ExpressionList) Name() string       { return "" }
func (l *ExpressionList) Children() []Node { return l.exprs }

func (l *ExpressionList) QASM(prec int) string { return renderJoin(l.exprs, prec, ",") }

// Real is a real literal; the parser also produces one for pi.
type Real struct {
	Value float64
}

func (*Real) node()            {}
func (*Real) Kind() Kind       { return KindReal }
func (*Real) Name() string     { return "" }
func (*Real) Children() []Node { return nil }

func (r *Real) QASM(prec int) string { return formatReal(r.Value, prec) }

// formatReal keeps a decimal point in the mantissa so the text lexes as a
// real again rather than an integer.
func formatReal(v float64, prec int) string {
	if v == math.Pi {
		return "pi"
	}
	if prec <= 0 {
		prec = DefaultPrecision
	}
	s := strconv.FormatFloat(v, 'g', prec, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	mant, exp, hasExp := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	if hasExp {
		return mant + "e" + exp
	}
	return mant
}

type Int struct {
	Value int
}

func (*Int) node()            {}
func (*Int) Kind() Kind       { return KindInt }
func (*Int) Name() string     { return "" }
func (*Int) Children() []Node { return nil }

func (i *Int) QASM(int) string { return strconv.Itoa(i.Value) }

// BinaryOp is one of + - * / ^. It always renders parenthesised.
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

func (*BinaryOp) node()              {}
func (*BinaryOp) Kind() Kind         { return KindBinaryOp }
func (*BinaryOp) Name() string       { return "" }
func (b *BinaryOp) Children() []Node { return nonNil(b.Left, b.Right) }

func (b *BinaryOp) QASM(prec int) string {
	return "(" + render(b.Left, prec) + b.Op + render(b.Right, prec) + ")"
}

// Prefix is a unary sign applied to an operand.
type Prefix struct {
	Op      string
	Operand Node
}

func (*Prefix) node()              {}
func (*Prefix) Kind() Kind         { return KindPrefix }
func (*Prefix) Name() string       { return "" }
func (p *Prefix) Children() []Node { return nonNil(p.Operand) }

func (p *Prefix) QASM(prec int) string { return p.Op + "(" + render(p.Operand, prec) + ")" }

// External is a call of one of the built-in unary functions.
type External struct {
	Func string
	Arg  Node
}

func (*External) node()              {}
func (*External) Kind() Kind         { return KindExternal }
func (e *External) Name() string     { return e.Func }
func (e *External) Children() []Node { return nonNil(e.Arg) }

func (e *External) QASM(prec int) string { return e.Func + "(" + render(e.Arg, prec) + ")" }

func childNames(n Node) []string {
	if n == nil {
		return nil
	}
	kids := n.Children()
	names := make([]string, len(kids))
	for i, k := range kids {
		names[i] = k.Name()
	}
	return names
}

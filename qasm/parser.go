package qasm

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// ParseError reports the first syntax error in a source file.
type ParseError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Column, e.Msg)
}

// externals are the unary functions an expression may call.
var externals = map[string]bool{
	"sin": true, "cos": true, "tan": true, "exp": true, "ln": true, "sqrt": true,
}

type parser struct {
	lex  *lexer
	file string
	tok  token
	peek token
}

// Parse parses OpenQASM 2.0 source. Include statements are kept as
// Include nodes; they are not expanded here.
func Parse(src string) (*Program, error) {
	return ParseFile("", src)
}

// ParseFile parses src and records file in identifier locations.
func ParseFile(file, src string) (prog *Program, err error) {
	p := &parser{lex: newLexer(src), file: file}
	p.tok = p.lex.next()
	p.peek = p.lex.next()

	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			prog, err = nil, perr
		}
	}()
	return p.program(), nil
}

// ParseExpr parses a single expression such as "3*pi/4" or "sin(0.5)".
func ParseExpr(src string) (expr Node, err error) {
	p := &parser{lex: newLexer(src)}
	p.tok = p.lex.next()
	p.peek = p.lex.next()

	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			expr, err = nil, perr
		}
	}()
	expr = p.expression()
	p.expect(tokEOF)
	return expr, nil
}

// ReadFile reads and parses a source file from disk.
func ReadFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(path, string(src))
}

func (p *parser) advance() token {
	t := p.tok
	p.tok = p.peek
	p.peek = p.lex.next()
	return t
}

func (p *parser) failf(format string, args ...any) {
	panic(&ParseError{File: p.file, Line: p.tok.line, Column: p.tok.column, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) expect(tt tokenType) token {
	if p.tok.typ != tt {
		p.failf("expected %s, found %s", tt, p.describe())
	}
	return p.advance()
}

func (p *parser) describe() string {
	switch p.tok.typ {
	case tokEOF:
		return "end of file"
	case tokIllegal:
		return fmt.Sprintf("illegal %q", p.tok.literal)
	}
	return strconv.Quote(p.tok.literal)
}

func (p *parser) accept(tt tokenType) bool {
	if p.tok.typ == tt {
		p.advance()
		return true
	}
	return false
}

func (p *parser) program() *Program {
	prog := &Program{}
	if p.tok.typ == tokOpenQASM {
		p.advance()
		v := p.tok
		if v.typ != tokReal && v.typ != tokInt {
			p.failf("expected version number, found %s", p.describe())
		}
		p.advance()
		p.expect(tokSemicolon)
		prog.Statements = append(prog.Statements, &Format{Version: v.literal})
	}
	for p.tok.typ != tokEOF {
		prog.Statements = append(prog.Statements, p.statement())
	}
	return prog
}

func (p *parser) statement() Node {
	switch p.tok.typ {
	case tokInclude:
		p.advance()
		f := p.expect(tokString)
		p.expect(tokSemicolon)
		return &Include{File: f.literal}
	case tokQreg:
		p.advance()
		id := p.indexedID()
		p.expect(tokSemicolon)
		return NewQreg(id)
	case tokCreg:
		p.advance()
		id := p.indexedID()
		p.expect(tokSemicolon)
		return NewCreg(id)
	case tokGate:
		return p.gateDecl()
	case tokOpaque:
		p.advance()
		id := p.id()
		params := p.formalParams()
		qubits := p.idList()
		p.expect(tokSemicolon)
		return NewOpaque(id, params, qubits)
	case tokBarrier:
		p.advance()
		list := p.anyList()
		p.expect(tokSemicolon)
		return &Barrier{List: list}
	case tokIf:
		p.advance()
		p.expect(tokLParen)
		creg := p.id()
		p.expect(tokEq)
		val := p.integer()
		p.expect(tokRParen)
		return &If{Creg: creg, Value: val, Op: p.qop()}
	}
	return p.qop()
}

func (p *parser) gateDecl() Node {
	p.expect(tokGate)
	id := p.id()
	params := p.formalParams()
	qubits := p.idList()
	p.expect(tokLBrace)

	var ops Node
	if p.tok.typ != tokRBrace {
		list := NewGopList()
		for p.tok.typ != tokRBrace {
			if p.tok.typ == tokEOF {
				p.failf("unterminated body of gate %s", id.Name())
			}
			if p.accept(tokBarrier) {
				bl := p.idList()
				p.expect(tokSemicolon)
				list.Add(&Barrier{List: bl})
				continue
			}
			list.Add(p.uop())
		}
		ops = list
	}
	p.expect(tokRBrace)
	return NewGate(id, params, qubits, NewGateBody(ops))
}

// formalParams reads an optional "(a,b,...)". Empty parentheses count as
// absent.
func (p *parser) formalParams() Node {
	if !p.accept(tokLParen) {
		return nil
	}
	if p.accept(tokRParen) {
		return nil
	}
	list := p.idList()
	p.expect(tokRParen)
	return list
}

func (p *parser) qop() Node {
	switch p.tok.typ {
	case tokMeasure:
		p.advance()
		q := p.argument()
		p.expect(tokArrow)
		c := p.argument()
		p.expect(tokSemicolon)
		return &Measure{Qubit: q, Clbit: c}
	case tokReset:
		p.advance()
		a := p.argument()
		p.expect(tokSemicolon)
		return &Reset{Target: a}
	}
	return p.uop()
}

func (p *parser) uop() Node {
	switch p.tok.typ {
	case tokU:
		p.advance()
		p.expect(tokLParen)
		args := p.expList()
		p.expect(tokRParen)
		target := p.argument()
		p.expect(tokSemicolon)
		return &UniversalUnitary{Args: args, Target: target}
	case tokCX:
		p.advance()
		a := p.argument()
		p.expect(tokComma)
		b := p.argument()
		p.expect(tokSemicolon)
		return &Cnot{Control: a, Target: b}
	case tokIdent:
		id := p.id()
		var args Node
		if p.accept(tokLParen) {
			if !p.accept(tokRParen) {
				args = p.expList()
				p.expect(tokRParen)
			}
		}
		qubits := p.anyList()
		p.expect(tokSemicolon)
		return NewCustomUnitary(id, args, qubits)
	}
	p.failf("expected statement, found %s", p.describe())
	return nil
}

func (p *parser) id() *ID {
	t := p.expect(tokIdent)
	return &ID{Ident: t.literal, Line: t.line, File: p.file}
}

func (p *parser) integer() *Int {
	t := p.expect(tokInt)
	v, err := strconv.Atoi(t.literal)
	if err != nil {
		p.failf("bad integer %q", t.literal)
	}
	return &Int{Value: v}
}

func (p *parser) indexedID() *IndexedID {
	id := p.id()
	p.expect(tokLBracket)
	idx := p.integer()
	p.expect(tokRBracket)
	return &IndexedID{Ident: id.Ident, Index: idx.Value, Line: id.Line, File: p.file}
}

// argument is id or id[int].
func (p *parser) argument() Node {
	if p.peek.typ == tokLBracket {
		return p.indexedID()
	}
	return p.id()
}

func (p *parser) idList() *IDList {
	list := NewIDList(p.id())
	for p.accept(tokComma) {
		list.Add(p.id())
	}
	return list
}

// anyList returns an IDList when every argument is a bare identifier and a
// PrimaryList otherwise.
func (p *parser) anyList() Node {
	var items []Node
	bare := true
	for {
		a := p.argument()
		if a.Kind() != KindID {
			bare = false
		}
		items = append(items, a)
		if !p.accept(tokComma) {
			break
		}
	}
	if bare {
		return NewIDList(items...)
	}
	return NewPrimaryList(items...)
}

func (p *parser) expList() *ExpressionList {
	list := NewExpressionList(p.expression())
	for p.accept(tokComma) {
		list.Add(p.expression())
	}
	return list
}

// expression := term (('+'|'-') term)*
func (p *parser) expression() Node {
	left := p.term()
	for p.tok.typ == tokPlus || p.tok.typ == tokMinus {
		op := p.advance().literal
		left = &BinaryOp{Op: op, Left: left, Right: p.term()}
	}
	return left
}

// term := unary (('*'|'/') unary)*
func (p *parser) term() Node {
	left := p.unary()
	for p.tok.typ == tokStar || p.tok.typ == tokSlash {
		op := p.advance().literal
		left = &BinaryOp{Op: op, Left: left, Right: p.unary()}
	}
	return left
}

// unary := ('-'|'+') unary | power
func (p *parser) unary() Node {
	if p.tok.typ == tokMinus || p.tok.typ == tokPlus {
		op := p.advance().literal
		return &Prefix{Op: op, Operand: p.unary()}
	}
	return p.power()
}

// power := primary ('^' unary)?, right associative
func (p *parser) power() Node {
	base := p.primary()
	if p.accept(tokCaret) {
		return &BinaryOp{Op: "^", Left: base, Right: p.unary()}
	}
	return base
}

func (p *parser) primary() Node {
	switch p.tok.typ {
	case tokReal:
		t := p.advance()
		v, err := strconv.ParseFloat(t.literal, 64)
		if err != nil {
			p.failf("bad real %q", t.literal)
		}
		return &Real{Value: v}
	case tokInt:
		return p.integer()
	case tokPi:
		p.advance()
		return &Real{Value: math.Pi}
	case tokLParen:
		p.advance()
		e := p.expression()
		p.expect(tokRParen)
		return e
	case tokIdent:
		if externals[p.tok.literal] && p.peek.typ == tokLParen {
			fn := p.advance().literal
			p.advance()
			arg := p.expression()
			p.expect(tokRParen)
			return &External{Func: fn, Arg: arg}
		}
		return p.id()
	}
	p.failf("expected expression, found %s", p.describe())
	return nil
}

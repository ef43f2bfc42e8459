package qasm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const qft5 = `OPENQASM 2.0;
include "qelib1.inc";

// Register declarations
qreg q[5];
creg c[5];

// 0, 1, 2, 3, 4
h q[0];
// cu1(pi/2) q[0],q[1];
u1(pi/4) q[0];
cx q[0],q[1];
u1(-pi/4) q[1];
cx q[0],q[1];
u1(pi/4) q[1];
// end cu1
h q[1];
cx q[3],q[2];
h q[3]; h q[2];
barrier q;
measure q[0] -> c[0];
measure q -> c;
`

func TestParseQFTSample(t *testing.T) {
	prog, err := ParseFile("qft5.qasm", qft5)
	require.NoError(t, err)

	kinds := make([]Kind, 0, len(prog.Statements))
	for _, s := range prog.Statements {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []Kind{
		KindFormat, KindInclude, KindQreg, KindCreg,
		KindCustomUnitary, KindCustomUnitary, KindCustomUnitary, KindCustomUnitary,
		KindCustomUnitary, KindCustomUnitary, KindCustomUnitary, KindCustomUnitary,
		KindCustomUnitary, KindCustomUnitary, KindBarrier, KindMeasure, KindMeasure,
	}, kinds)

	q := prog.Statements[2].(*Qreg)
	assert.Equal(t, "q", q.Name())
	assert.Equal(t, 5, q.Size)
	assert.Equal(t, 5, q.Line)
	assert.Equal(t, "qft5.qasm", q.File)

	u1 := prog.Statements[5].(*CustomUnitary)
	assert.Equal(t, "u1((pi/4)) q[0];", u1.QASM(DefaultPrecision))
	args, err := EvalList(u1.Args, nil)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, args[0], 1e-15)

	neg := prog.Statements[7].(*CustomUnitary)
	assert.Equal(t, "u1((-(pi)/4)) q[1];", neg.QASM(DefaultPrecision))
}

func TestParseStatementForms(t *testing.T) {
	src := `OPENQASM 2.0;
qreg q[2];
creg c[2];
U(0.5,0,pi) q[0];
CX q[0],q[1];
reset q[1];
if(c==3) U(0,0,0) q[0];
opaque magic(a,b) x,y;
gate nop() a { }
`
	prog, err := Parse(src)
	require.NoError(t, err)
	want := `OPENQASM 2.0;
qreg q[2];
creg c[2];
U(0.5,0,pi) q[0];
CX q[0],q[1];
reset q[1];
if(c==3) U(0,0,0) q[0];
opaque magic(a,b) x,y;
gate nop a
{

}
`
	assert.Equal(t, want, prog.QASM(DefaultPrecision))
}

func TestRoundTrip(t *testing.T) {
	sources := map[string]string{
		"qft5": qft5,
		"qelib1": qelib1,
		"expressions": `gate g(a,b) q { U(a*b+1.5, -a^2^b, sin(a)/cos(b)-sqrt(2)) q; U(+a, ln(exp(b)), tan(0.25e-3)) q; }`,
		"mixed": `qreg q[3]; qreg r[2]; creg c[1]; barrier q[0],r,q[2]; cz q[0],r[1]; if(c==0) measure r[0] -> c[0];`,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			first, err := Parse(src)
			require.NoError(t, err)
			text := first.QASM(DefaultPrecision)
			second, err := Parse(text)
			require.NoError(t, err, text)
			assert.True(t, Equal(first, second), "round trip changed the tree:\n%s", text)
			assert.Equal(t, text, second.QASM(DefaultPrecision))
		})
	}
}

func TestRoundTripSubtrees(t *testing.T) {
	prog, err := Parse(qelib1)
	require.NoError(t, err)
	for _, g := range GateDefs(prog) {
		again, err := Parse(g.QASM(DefaultPrecision))
		require.NoError(t, err)
		require.Len(t, again.Statements, 1)
		assert.True(t, Equal(g, again.Statements[0]), g.Name())
	}
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"8/2/2", 2},
		{"1-2-3", -4},
		{"pi/2", math.Pi / 2},
		{"cos(0)+sqrt(16)", 5},
	}
	for _, tt := range tests {
		prog, err := Parse("U(" + tt.src + ",0,0) q;")
		require.NoError(t, err, tt.src)
		u := prog.Statements[0].(*UniversalUnitary)
		vals, err := EvalList(u.Args, nil)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, vals[0], 1e-12, tt.src)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"qreg q[2]", 1},
		{"OPENQASM 2.0;\nqreg q[];", 2},
		{"gate g a {\n U(0,0,0) a;\n", 3},
		{"h q[0]\nx q[1];", 2},
		{"U(1 +) q;", 1},
		{"include \"missing.inc;\n", 1},
		{"creg c[2];\nif(c=1) x q;", 2},
	}
	for _, tt := range tests {
		_, err := ParseFile("bad.qasm", tt.src)
		require.Error(t, err, tt.src)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), "%T", err)
		assert.Equal(t, "bad.qasm", perr.File)
		assert.Equal(t, tt.line, perr.Line, "%q: %v", tt.src, err)
	}
}

func TestWalkVisitsFlattenedBody(t *testing.T) {
	prog, err := Parse(`gate g a { h a; x a; }`)
	require.NoError(t, err)

	var kinds []Kind
	Walk(prog, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != KindCustomUnitary
	})
	assert.Equal(t, []Kind{
		KindProgram, KindGate, KindID, KindIDList, KindID, KindGateBody,
		KindCustomUnitary, KindCustomUnitary,
	}, kinds)
}

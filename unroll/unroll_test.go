package unroll

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermkit/qasm"
	"qtermkit/sim"
)

func unrollSource(t *testing.T, src string) (*Circuit, error) {
	t.Helper()
	prog, err := qasm.Parse(src)
	require.NoError(t, err)
	return Unroll(prog)
}

func mustUnroll(t *testing.T, src string) *Circuit {
	t.Helper()
	c, err := unrollSource(t, src)
	require.NoError(t, err)
	return c
}

func names(ops []sim.Op) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Name
	}
	return out
}

func TestUnrollBell(t *testing.T) {
	c := mustUnroll(t, `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q -> c;
`)
	assert.Equal(t, 2, c.NumQubits)
	assert.Equal(t, 2, c.NumClbits)
	assert.Equal(t, []string{"U", "CX", "measure", "measure"}, names(c.Ops))

	h := c.Ops[0]
	assert.Equal(t, []int{0}, h.Qubits)
	require.Len(t, h.Params, 3)
	assert.InDelta(t, math.Pi/2, h.Params[0], 1e-15)
	assert.InDelta(t, 0, h.Params[1], 1e-15)
	assert.InDelta(t, math.Pi, h.Params[2], 1e-15)

	assert.Equal(t, []int{0, 1}, c.Ops[1].Qubits)
	assert.Equal(t, []int{1}, c.Ops[3].Qubits)
	assert.Equal(t, []int{1}, c.Ops[3].Clbits)

	res, err := sim.Simulator{}.Run(context.Background(), c.NumQubits, c.Ops)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 2, res.Skipped)
	probs := res.State.Probabilities()
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0, probs[1], 1e-12)
	assert.InDelta(t, 0, probs[2], 1e-12)
	assert.InDelta(t, 0.5, probs[3], 1e-12)
}

func TestUnrollToffoli(t *testing.T) {
	c := mustUnroll(t, `include "qelib1.inc";
qreg q[3];
x q[0];
x q[1];
ccx q[0],q[1],q[2];
`)
	cx := 0
	for _, op := range c.Ops {
		if op.Name == "CX" {
			cx++
		}
	}
	assert.Len(t, c.Ops, 17)
	assert.Equal(t, 6, cx)

	res, err := sim.Simulator{}.Run(context.Background(), c.NumQubits, c.Ops)
	require.NoError(t, err)
	for q, p := range res.State.QubitProbabilities() {
		assert.InDelta(t, 1, p.Prob1, 1e-9, "qubit %d", q)
	}
}

func TestRegisterLayout(t *testing.T) {
	c := mustUnroll(t, `qreg a[2]; creg m[1]; qreg b[3]; creg n[4];`)
	assert.Equal(t, []Register{{"a", 0, 2}, {"b", 2, 3}}, c.Qregs)
	assert.Equal(t, []Register{{"m", 0, 1}, {"n", 1, 4}}, c.Cregs)
	assert.Equal(t, 5, c.NumQubits)
	assert.Equal(t, 5, c.NumClbits)
	assert.Empty(t, c.Ops)
}

func TestBroadcast(t *testing.T) {
	c := mustUnroll(t, `qreg a[2]; qreg b[2];
U(0,0,0) a;
CX a,b;
CX a[0],b;
`)
	var got [][]int
	for _, op := range c.Ops {
		got = append(got, op.Qubits)
	}
	assert.Equal(t, [][]int{{0}, {1}, {0, 2}, {1, 3}, {0, 2}, {0, 3}}, got)

	_, err := unrollSource(t, `qreg a[2]; qreg b[3]; CX a,b;`)
	assert.ErrorIs(t, err, ErrBroadcast)
}

func TestMeasureMixedOperands(t *testing.T) {
	for _, src := range []string{
		`qreg q[2]; creg c[2]; measure q[0] -> c;`,
		`qreg q[2]; creg c[2]; measure q -> c[1];`,
	} {
		_, err := unrollSource(t, src)
		assert.ErrorIs(t, err, ErrBroadcast, src)
	}

	c := mustUnroll(t, `qreg q[2]; creg c[2]; measure q[1] -> c[0];`)
	require.Len(t, c.Ops, 1)
	assert.Equal(t, []int{1}, c.Ops[0].Qubits)
	assert.Equal(t, []int{0}, c.Ops[0].Clbits)
}

func TestQubitLimitCheckedAtDeclaration(t *testing.T) {
	prog, err := qasm.Parse(`qreg q[5000000]; U(0,0,0) q;`)
	require.NoError(t, err)
	c, err := Unroller{}.Unroll(prog)
	require.ErrorIs(t, err, sim.ErrTooManyQubits)
	assert.Nil(t, c)

	prog, err = qasm.Parse(`qreg a[3]; qreg b[2]; U(0,0,0) b;`)
	require.NoError(t, err)
	_, err = Unroller{MaxQubits: 4}.Unroll(prog)
	require.ErrorIs(t, err, sim.ErrTooManyQubits)
	assert.Contains(t, err.Error(), "line 1")

	c, err = Unroller{MaxQubits: 5}.Unroll(prog)
	require.NoError(t, err)
	assert.Equal(t, 5, c.NumQubits)
	assert.Len(t, c.Ops, 2)
}

func TestRegisterTotalsDoNotOverflow(t *testing.T) {
	prog, err := qasm.Parse(`creg a[9223372036854775807]; creg b[9223372036854775807];`)
	require.NoError(t, err)
	_, err = Unroll(prog)
	assert.ErrorIs(t, err, ErrBadRegister)

	prog, err = qasm.Parse(`qreg a[9223372036854775807]; qreg b[9223372036854775807];`)
	require.NoError(t, err)
	_, err = Unroller{MaxQubits: math.MaxInt}.Unroll(prog)
	assert.ErrorIs(t, err, sim.ErrTooManyQubits)
}

func TestParameterSubstitution(t *testing.T) {
	c := mustUnroll(t, `qreg q[2];
gate r(t) x { U(t,t/2,-t) x; }
gate pair(s) x,y { r(2*s) y; CX x,y; r(s) x; }
pair(pi/4) q[1],q[0];
`)
	require.Len(t, c.Ops, 3)

	assert.Equal(t, []int{0}, c.Ops[0].Qubits)
	assert.InDeltaSlice(t, []float64{math.Pi / 2, math.Pi / 4, -math.Pi / 2}, c.Ops[0].Params, 1e-15)
	assert.Equal(t, []int{1, 0}, c.Ops[1].Qubits)
	assert.Equal(t, []int{1}, c.Ops[2].Qubits)
	assert.InDeltaSlice(t, []float64{math.Pi / 4, math.Pi / 8, -math.Pi / 4}, c.Ops[2].Params, 1e-15)
}

func TestConditionsAndNonUnitary(t *testing.T) {
	c := mustUnroll(t, `qreg q[2]; creg c[2];
if(c==2) U(0,0,0) q;
reset q[1];
barrier q[0],q[1];
if(c==1) measure q[0] -> c[1];
`)
	assert.Equal(t, []string{"U", "U", "reset", "barrier", "measure"}, names(c.Ops))
	assert.Equal(t, &sim.Condition{Register: "c", Value: 2}, c.Ops[0].Condition)
	assert.Equal(t, &sim.Condition{Register: "c", Value: 2}, c.Ops[1].Condition)
	assert.Nil(t, c.Ops[2].Condition)
	assert.Equal(t, []int{0, 1}, c.Ops[3].Qubits)
	assert.Equal(t, []int{1}, c.Ops[4].Clbits)
	assert.Equal(t, &sim.Condition{Register: "c", Value: 1}, c.Ops[4].Condition)
}

func TestCalleesMustBeDefined(t *testing.T) {
	_, err := unrollSource(t, `qreg q[1]; gate g a { U(0,0,0) a; missing a; } g q[0];`)
	require.ErrorIs(t, err, ErrUnknownGate)
	assert.Contains(t, err.Error(), `"missing" called from "g"`)

	_, err = unrollSource(t, `qreg q[1]; h q[0];`)
	assert.ErrorIs(t, err, ErrUnknownGate)
}

func TestUnrollErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"opaque", `qreg q[1]; opaque o a; o q[0];`, ErrOpaqueGate},
		{"opaque callee", `qreg q[1]; opaque o a; gate g a { o a; } g q[0];`, ErrOpaqueGate},
		{"recursion", `qreg q[1]; gate loop a { loop a; } loop q[0];`, ErrTooDeep},
		{"index", `qreg q[2]; U(0,0,0) q[2];`, ErrIndexRange},
		{"register", `qreg q[2]; U(0,0,0) r[0];`, ErrUnknownRegister},
		{"creg", `qreg q[2]; if(c==1) U(0,0,0) q[0];`, ErrUnknownRegister},
		{"redeclared register", `qreg q[2]; creg q[2];`, ErrRedeclared},
		{"redeclared gate", `gate g a { } gate g b { }`, ErrRedeclared},
		{"empty register", `qreg q[0];`, ErrBadRegister},
		{"params", `qreg q[1]; gate g(x) a { U(x,0,0) a; } g q[0];`, ErrArgCount},
		{"U params", `qreg q[1]; U(0,0) q[0];`, ErrArgCount},
		{"repeated CX", `qreg q[2]; CX q[0],q[0];`, sim.ErrRepeatedQubit},
		{"repeated custom", `qreg q[2]; gate g a,b { CX a,b; } g q[1],q[1];`, sim.ErrRepeatedQubit},
		{"unbound", `qreg q[1]; U(theta,0,0) q[0];`, qasm.ErrUnboundParam},
		{"include", `include "nowhere.inc";`, qasm.ErrIncludeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := unrollSource(t, tt.src)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorCarriesLine(t *testing.T) {
	_, err := unrollSource(t, "qreg q[1];\n\nU(0,0,0) r[0];\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

type mapResolver map[string]string

func (m mapResolver) Resolve(name string) (string, string, error) {
	src, ok := m[name]
	if !ok {
		return "", "", qasm.ErrIncludeNotFound
	}
	return src, name, nil
}

func TestIncludeOnce(t *testing.T) {
	prog, err := qasm.Parse(`include "lib.inc"; include "lib.inc"; qreg q[1]; flip q[0];`)
	require.NoError(t, err)

	u := Unroller{Resolver: mapResolver{"lib.inc": `gate flip a { U(pi,0,pi) a; }`}}
	c, err := u.Unroll(prog)
	require.NoError(t, err)
	assert.Equal(t, []string{"U"}, names(c.Ops))
}

func TestIncludeErrorNamesFile(t *testing.T) {
	prog, err := qasm.Parse(`include "lib.inc";`)
	require.NoError(t, err)

	u := Unroller{Resolver: mapResolver{"lib.inc": "qreg q[1];\nU(0,0,0) r[0];"}}
	_, err = u.Unroll(prog)
	require.ErrorIs(t, err, ErrUnknownRegister)
	assert.Contains(t, err.Error(), "lib.inc: line 2")
}

func TestFileResolverSearchPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.inc"), []byte(`gate mine a { U(0,0,0) a; }`), 0o644))

	prog, err := qasm.Parse(`include "qelib1.inc"; include "mine.inc"; qreg q[1]; mine q[0]; x q[0];`)
	require.NoError(t, err)

	u := Unroller{Resolver: qasm.FileResolver{Paths: []string{t.TempDir(), dir}}}
	c, err := u.Unroll(prog)
	require.NoError(t, err)
	assert.Equal(t, []string{"U", "U"}, names(c.Ops))
}

func TestMaxDepth(t *testing.T) {
	prog, err := qasm.Parse(`qreg q[1];
gate a0 x { U(0,0,0) x; }
gate a1 x { a0 x; }
gate a2 x { a1 x; }
a2 q[0];
`)
	require.NoError(t, err)

	_, err = Unroller{MaxDepth: 2}.Unroll(prog)
	assert.ErrorIs(t, err, ErrTooDeep)

	c, err := Unroller{MaxDepth: 3}.Unroll(prog)
	require.NoError(t, err)
	assert.Len(t, c.Ops, 1)
}

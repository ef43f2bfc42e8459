package sim

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateAngles(t *testing.T) {
	tests := []struct {
		gate   string
		params []float64
		want   [3]float64
	}{
		{"U", []float64{1, 2, 3}, [3]float64{1, 2, 3}},
		{"u3", []float64{0.5, 0.25, 0.125}, [3]float64{0.5, 0.25, 0.125}},
		{"u2", []float64{0.1, 0.2}, [3]float64{math.Pi / 2, 0.1, 0.2}},
		{"u1", []float64{0.7}, [3]float64{0, 0, 0.7}},
		{"id", nil, [3]float64{}},
		{"id", []float64{1, 2, 3}, [3]float64{}},
		{"u3", nil, [3]float64{}},
		{"u2", []float64{1}, [3]float64{}},
		{"foo", []float64{1, 2, 3}, [3]float64{}},
	}
	for _, tt := range tests {
		theta, phi, lambda := GateAngles(tt.gate, tt.params)
		assert.Equal(t, tt.want, [3]float64{theta, phi, lambda}, "%s%v", tt.gate, tt.params)
	}
}

func TestGateMatrixU1IsPhase(t *testing.T) {
	for _, lambda := range []float64{0, 0.3, math.Pi / 4, -2.2, math.Pi} {
		want := FromRows([][]Complex{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}})
		assert.True(t, GateMatrix("u1", []float64{lambda}).ApproxEqual(want, tol), "lambda=%g", lambda)
	}
}

func TestGateMatrixIdentity(t *testing.T) {
	assert.True(t, GateMatrix("id", nil).ApproxEqual(Identity(2), 0))
	assert.True(t, GateMatrix("nonsense", []float64{1}).ApproxEqual(Identity(2), 0))
}

func TestGateMatrixUnitary(t *testing.T) {
	angles := []float64{0, 0.1, -1.3, math.Pi / 3, math.Pi, 2.9, -math.Pi}
	for _, theta := range angles {
		for _, phi := range angles {
			for _, lambda := range angles {
				u := GateMatrix("U", []float64{theta, phi, lambda})
				assert.True(t, u.Mul(u.Dagger()).ApproxEqual(Identity(2), 1e-12),
					"U(%g,%g,%g) not unitary", theta, phi, lambda)
			}
		}
	}
}

func TestGateMatrixU2IsHadamardUpToForm(t *testing.T) {
	h := GateMatrix("u2", []float64{0, math.Pi})
	r := 1 / math.Sqrt2
	want := FromRows([][]Complex{{complex(r, 0), complex(r, 0)}, {complex(r, 0), complex(-r, 0)}})
	assert.True(t, h.ApproxEqual(want, tol))
}

package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-12

func basis(dim, i int) []Complex {
	v := make([]Complex, dim)
	v[i] = 1
	return v
}

func TestEnlargeSingleDimensions(t *testing.T) {
	opt := GateMatrix("u3", []float64{0.3, 0.2, 0.1})
	for n := 1; n <= 5; n++ {
		for q := 0; q < n; q++ {
			assert.Equal(t, 1<<n, EnlargeSingle(opt, q, n).Dim(), "n=%d qubit=%d", n, q)
		}
	}
}

func TestEnlargeSingleOneQubitIsIdentityEmbedding(t *testing.T) {
	opt := GateMatrix("U", []float64{1.1, -0.4, 2.5})
	assert.True(t, EnlargeSingle(opt, 0, 1).ApproxEqual(opt, 0))
}

func TestEnlargeSingleMatchesKron(t *testing.T) {
	x := GateMatrix("u3", []float64{math.Pi, 0, math.Pi})
	got := EnlargeSingle(x, 1, 3)
	want := Identity(2).Kron(x).Kron(Identity(2))
	require.True(t, got.ApproxEqual(want, tol))

	// X on qubit 1 flips bit 1 of every basis state and nothing else.
	for i := 0; i < 8; i++ {
		out := got.MulVec(basis(8, i))
		flipped := i ^ 0b010
		for j, amp := range out {
			if j == flipped {
				assert.InDelta(t, 1, real(amp), tol, "basis %d", i)
			} else {
				assert.InDelta(t, 0, math.Hypot(real(amp), imag(amp)), tol, "basis %d -> %d", i, j)
			}
		}
	}
}

func TestEnlargeSingleOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { EnlargeSingle(Identity(2), 3, 3) })
}

func TestEnlargeTwoSpectatorsZeroReproducesOperator(t *testing.T) {
	opt := NewMatrix(4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			opt.Set(r, c, complex(float64(r*4+c+1), float64(r-c)))
		}
	}
	for n := 2; n <= 4; n++ {
		for q0 := 0; q0 < n; q0++ {
			for q1 := 0; q1 < n; q1++ {
				if q0 == q1 {
					continue
				}
				big := EnlargeTwo(opt, q0, q1, n)
				require.Equal(t, 1<<n, big.Dim())
				for j := 0; j < 2; j++ {
					for k := 0; k < 2; k++ {
						for jj := 0; jj < 2; jj++ {
							for kk := 0; kk < 2; kk++ {
								row := j<<q0 | k<<q1
								col := jj<<q0 | kk<<q1
								require.Equal(t, opt.At(j+2*k, jj+2*kk), big.At(row, col),
									"n=%d q0=%d q1=%d", n, q0, q1)
							}
						}
					}
				}
			}
		}
	}
}

func TestEnlargeTwoAdjacentMatchesKron(t *testing.T) {
	// With q0=0, q1=1 the local basis j+2k is exactly the register ordering.
	cx := CXMatrix()
	got := EnlargeTwo(cx, 0, 1, 3)
	want := Identity(2).Kron(cx)
	assert.True(t, got.ApproxEqual(want, 0))
}

func TestEnlargeTwoCXAction(t *testing.T) {
	big := EnlargeTwo(CXMatrix(), 2, 0, 3)
	for i := 0; i < 8; i++ {
		want := i
		if Bit(i, 2) == 1 {
			want ^= 1
		}
		out := big.MulVec(basis(8, i))
		assert.Equal(t, Complex(1), out[want], "basis %03b", i)
	}
}

func TestEnlargeTwoPreconditions(t *testing.T) {
	assert.Panics(t, func() { EnlargeTwo(CXMatrix(), 1, 1, 3) })
	assert.Panics(t, func() { EnlargeTwo(CXMatrix(), 0, 3, 3) })
	assert.Panics(t, func() { EnlargeTwo(Identity(2), 0, 1, 3) })
}

package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Complex is the scalar type of every operator and amplitude.
type Complex = complex128

// Matrix is a dense square complex matrix stored row-major.
// Values returned by this package are never aliased by it afterwards.
type Matrix struct {
	dim  int
	data []Complex
}

// NewMatrix returns a dim×dim zero matrix.
func NewMatrix(dim int) *Matrix {
	if dim < 0 {
		panic("sim: negative matrix dimension")
	}
	return &Matrix{dim: dim, data: make([]Complex, dim*dim)}
}

// Identity returns the dim×dim identity.
func Identity(dim int) *Matrix {
	m := NewMatrix(dim)
	for i := 0; i < dim; i++ {
		m.data[i*dim+i] = 1
	}
	return m
}

// FromRows builds a matrix from square row data.
func FromRows(rows [][]Complex) *Matrix {
	m := NewMatrix(len(rows))
	for r, row := range rows {
		if len(row) != m.dim {
			panic(fmt.Sprintf("sim: row %d has %d columns, want %d", r, len(row), m.dim))
		}
		copy(m.data[r*m.dim:], row)
	}
	return m
}

// Dim returns the number of rows (and columns).
func (m *Matrix) Dim() int { return m.dim }

// At returns the element at (row, col).
func (m *Matrix) At(row, col int) Complex {
	return m.data[row*m.dim+col]
}

// Set stores v at (row, col).
func (m *Matrix) Set(row, col int, v Complex) {
	m.data[row*m.dim+col] = v
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.dim)
	copy(c.data, m.data)
	return c
}

// Kron returns the Kronecker product m ⊗ o.
func (m *Matrix) Kron(o *Matrix) *Matrix {
	out := NewMatrix(m.dim * o.dim)
	for r1 := 0; r1 < m.dim; r1++ {
		for c1 := 0; c1 < m.dim; c1++ {
			a := m.At(r1, c1)
			if a == 0 {
				continue
			}
			for r2 := 0; r2 < o.dim; r2++ {
				for c2 := 0; c2 < o.dim; c2++ {
					out.Set(r1*o.dim+r2, c1*o.dim+c2, a*o.At(r2, c2))
				}
			}
		}
	}
	return out
}

// Mul returns the matrix product m·o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.dim != o.dim {
		panic(fmt.Sprintf("sim: Mul dimension mismatch %d vs %d", m.dim, o.dim))
	}
	out := NewMatrix(m.dim)
	for r := 0; r < m.dim; r++ {
		for k := 0; k < m.dim; k++ {
			a := m.At(r, k)
			if a == 0 {
				continue
			}
			for c := 0; c < m.dim; c++ {
				out.data[r*m.dim+c] += a * o.At(k, c)
			}
		}
	}
	return out
}

// MulVec returns m·v.
func (m *Matrix) MulVec(v []Complex) []Complex {
	if len(v) != m.dim {
		panic(fmt.Sprintf("sim: MulVec length %d, want %d", len(v), m.dim))
	}
	out := make([]Complex, m.dim)
	for r := 0; r < m.dim; r++ {
		var sum Complex
		row := m.data[r*m.dim : (r+1)*m.dim]
		for c, a := range row {
			if a != 0 {
				sum += a * v[c]
			}
		}
		out[r] = sum
	}
	return out
}

// Dagger returns the conjugate transpose.
func (m *Matrix) Dagger() *Matrix {
	out := NewMatrix(m.dim)
	for r := 0; r < m.dim; r++ {
		for c := 0; c < m.dim; c++ {
			out.Set(c, r, cmplx.Conj(m.At(r, c)))
		}
	}
	return out
}

// ApproxEqual reports whether both matrices have the same size and every
// element differs by at most tol.
func (m *Matrix) ApproxEqual(o *Matrix, tol float64) bool {
	if m.dim != o.dim {
		return false
	}
	for i, a := range m.data {
		if cmplx.Abs(a-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// String formats the matrix one row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.dim; r++ {
		for c := 0; c < m.dim; c++ {
			if c > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(FormatComplex(m.At(r, c), 4))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatComplex renders a scalar compactly, dropping zero parts.
func FormatComplex(v Complex, prec int) string {
	re, im := real(v), imag(v)
	eps := 0.5 * math.Pow10(-prec)
	switch {
	case math.Abs(re) < eps && math.Abs(im) < eps:
		return "0"
	case math.Abs(im) < eps:
		return fmt.Sprintf("%.*g", prec, re)
	case math.Abs(re) < eps:
		return fmt.Sprintf("%.*gi", prec, im)
	case im < 0:
		return fmt.Sprintf("%.*g-%.*gi", prec, re, prec, -im)
	default:
		return fmt.Sprintf("%.*g+%.*gi", prec, re, prec, im)
	}
}

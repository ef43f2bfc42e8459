package sim

import (
	"math"
	"math/cmplx"
)

// GateAngles maps a single-qubit gate name and its parameters to the
// (theta, phi, lambda) of the universal U gate. Unknown gates, "id" and
// missing parameters all give zero angles.
func GateAngles(gate string, params []float64) (theta, phi, lambda float64) {
	switch {
	case (gate == "U" || gate == "u3") && len(params) >= 3:
		return params[0], params[1], params[2]
	case gate == "u2" && len(params) >= 2:
		return math.Pi / 2, params[0], params[1]
	case gate == "u1" && len(params) >= 1:
		return 0, 0, params[0]
	}
	return 0, 0, 0
}

// GateMatrix returns the 2×2 unitary of a single-qubit gate:
//
//	[ cos(θ/2)          -e^{iλ} sin(θ/2)      ]
//	[ e^{iφ} sin(θ/2)    e^{i(φ+λ)} cos(θ/2)  ]
func GateMatrix(gate string, params []float64) *Matrix {
	theta, phi, lambda := GateAngles(gate, params)
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return FromRows([][]Complex{
		{complex(c, 0), -cmplx.Rect(s, lambda)},
		{cmplx.Rect(s, phi), cmplx.Rect(c, phi+lambda)},
	})
}

// CXMatrix returns the controlled-NOT in the (j + 2k) basis used by
// EnlargeTwo, with the control on j.
func CXMatrix() *Matrix {
	return FromRows([][]Complex{
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
	})
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"math/cmplx"
)

// ErrTooManyQubits is returned when a register would need more memory than
// the simulator allows.
var ErrTooManyQubits = errors.New("too many qubits")

// DefaultMaxQubits bounds the dense operators built by Run.
const DefaultMaxQubits = 10

// StateVector holds the 2^n amplitudes of an n-qubit register.
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// NewStateVector returns |0...0>.
func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Apply replaces the state with op·state.
func (s *StateVector) Apply(op *Matrix) {
	s.Amplitudes = op.MulVec(s.Amplitudes)
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal of every qubit, qubit 0 first.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)

	for i, amp := range s.Amplitudes {
		prob := real(amp * cmplx.Conj(amp))
		for q := 0; q < s.NumQubits; q++ {
			if Bit(i, q) == 1 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}

	return probs
}

// Probabilities returns |amplitude|^2 of every basis state.
func (s *StateVector) Probabilities() []float64 {
	out := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		out[i] = real(amp * cmplx.Conj(amp))
	}
	return out
}

// Simulator applies unrolled ops to a fresh register.
type Simulator struct {
	MaxQubits int
	// Window is how many operators are built ahead of the state update.
	// Zero means GOMAXPROCS.
	Window int
}

// Result is the outcome of Simulator.Run.
type Result struct {
	State   *StateVector
	Applied int // unitary ops applied
	Skipped int // measure, reset, barrier and conditioned ops
}

// Run builds the operators in windows and applies them in program order.
func (sm Simulator) Run(ctx context.Context, numQubits int, ops []Op) (*Result, error) {
	limit := sm.MaxQubits
	if limit <= 0 {
		limit = DefaultMaxQubits
	}
	if numQubits > limit {
		return nil, fmt.Errorf("%d qubits (limit %d): %w", numQubits, limit, ErrTooManyQubits)
	}
	if numQubits < 1 {
		numQubits = 1
	}

	res := &Result{State: NewStateVector(numQubits)}
	err := Stream(ctx, ops, numQubits, sm.Window, func(_ int, m *Matrix) error {
		if m == nil {
			res.Skipped++
			return nil
		}
		res.State.Apply(m)
		res.Applied++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

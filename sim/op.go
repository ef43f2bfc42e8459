package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Errors returned while validating operations.
var (
	ErrUnknownOp     = errors.New("unknown operation")
	ErrQubitRange    = errors.New("qubit out of range")
	ErrArity         = errors.New("wrong number of qubits")
	ErrRepeatedQubit = errors.New("repeated qubit")
)

// Condition guards an operation on the value of a classical register.
type Condition struct {
	Register string
	Value    int
}

// Op is one elementary instruction produced by the unroller: a gate name,
// its evaluated parameters and the absolute qubit indices it acts on.
type Op struct {
	Name      string
	Params    []float64
	Qubits    []int
	Clbits    []int      // measurement destinations
	Condition *Condition // nil when unconditional
}

// IsUnitary reports whether the op maps to an operator.
func (op Op) IsUnitary() bool {
	switch op.Name {
	case "measure", "reset", "barrier":
		return false
	}
	return true
}

func (op Op) arity() int {
	switch op.Name {
	case "U", "u3", "u2", "u1", "id":
		return 1
	case "CX":
		return 2
	}
	return -1
}

// Validate checks the op against a register of n qubits.
func (op Op) Validate(n int) error {
	for _, q := range op.Qubits {
		if q < 0 || q >= n {
			return fmt.Errorf("%s on q[%d]: %w (register has %d)", op.Name, q, ErrQubitRange, n)
		}
	}
	if !op.IsUnitary() {
		return nil
	}
	want := op.arity()
	if want < 0 {
		return fmt.Errorf("%q: %w", op.Name, ErrUnknownOp)
	}
	if len(op.Qubits) != want {
		return fmt.Errorf("%s with %d qubits: %w", op.Name, len(op.Qubits), ErrArity)
	}
	if want == 2 && op.Qubits[0] == op.Qubits[1] {
		return fmt.Errorf("%s on q[%d]: %w", op.Name, op.Qubits[0], ErrRepeatedQubit)
	}
	return nil
}

// Operator builds the full 2^n×2^n operator of a unitary op.
func Operator(op Op, n int) (*Matrix, error) {
	if !op.IsUnitary() {
		return nil, fmt.Errorf("%s has no operator: %w", op.Name, ErrUnknownOp)
	}
	if err := op.Validate(n); err != nil {
		return nil, err
	}
	if op.Name == "CX" {
		return EnlargeTwo(CXMatrix(), op.Qubits[0], op.Qubits[1], n), nil
	}
	return EnlargeSingle(GateMatrix(op.Name, op.Params), op.Qubits[0], n), nil
}

// operatorFunc builds one operator; tests replace it to observe the
// build schedule.
var operatorFunc = Operator

// Stream builds the operators of ops concurrently, window at a time, and
// hands each to fn in op order before the next window is built. fn gets a
// nil matrix for non-unitary or conditioned ops. At most window operators
// are alive at once; window < 1 means GOMAXPROCS.
func Stream(ctx context.Context, ops []Op, n, window int, fn func(i int, m *Matrix) error) error {
	if window < 1 {
		window = runtime.GOMAXPROCS(0)
	}
	mats := make([]*Matrix, min(window, len(ops)))
	for start := 0; start < len(ops); start += window {
		end := min(start+window, len(ops))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			op := ops[i]
			if !op.IsUnitary() || op.Condition != nil {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				m, err := operatorFunc(op, n)
				if err != nil {
					return fmt.Errorf("op %d: %w", i, err)
				}
				mats[i-start] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := start; i < end; i++ {
			m := mats[i-start]
			mats[i-start] = nil
			if err := fn(i, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Operators builds the operators of all ops. Entries for non-unitary or
// conditioned ops are nil. The result is in op order and holds every
// operator at once; use Stream for long op lists.
func Operators(ctx context.Context, ops []Op, n int) ([]*Matrix, error) {
	out := make([]*Matrix, len(ops))
	err := Stream(ctx, ops, n, 0, func(i int, m *Matrix) error {
		out[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

package sim

import "fmt"

// EnlargeSingle takes a local operator on one qubit (or on 2^k qubits
// starting at qubit) to an operator on n qubits. Qubits count from 0 and
// the register is ordered q[n-1] ⊗ ... ⊗ q[1] ⊗ q[0].
//
// The result has dimension 2^n and costs O(4^n) to build.
func EnlargeSingle(opt *Matrix, qubit, n int) *Matrix {
	if qubit < 0 || qubit >= n {
		panic(fmt.Sprintf("sim: EnlargeSingle qubit %d outside register of %d", qubit, n))
	}
	above := Identity(1 << (n - qubit - 1))
	below := Identity(1 << qubit)
	return above.Kron(opt.Kron(below))
}

// EnlargeTwo takes a 4×4 operator on (q0, q1) to an operator on n qubits.
// The local operator is indexed by j + 2k where j is the q0 bit and k the
// q1 bit, so for a controlled gate q0 is the control.
//
// Each entry is scattered to its destination directly; no permutation
// matrices are built.
func EnlargeTwo(opt *Matrix, q0, q1, n int) *Matrix {
	if q0 == q1 {
		panic(fmt.Sprintf("sim: EnlargeTwo on repeated qubit %d", q0))
	}
	if q0 < 0 || q0 >= n || q1 < 0 || q1 >= n {
		panic(fmt.Sprintf("sim: EnlargeTwo qubits (%d, %d) outside register of %d", q0, q1, n))
	}
	if opt.Dim() != 4 {
		panic(fmt.Sprintf("sim: EnlargeTwo operator has dimension %d, want 4", opt.Dim()))
	}

	out := NewMatrix(1 << n)
	for i := 0; i < 1 << (n - 2); i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				row := InsertTwoBits(j, q0, k, q1, i)
				for jj := 0; jj < 2; jj++ {
					for kk := 0; kk < 2; kk++ {
						col := InsertTwoBits(jj, q0, kk, q1, i)
						out.Set(row, col, opt.At(j+2*k, jj+2*kk))
					}
				}
			}
		}
	}
	return out
}

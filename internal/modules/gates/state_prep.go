package gates

import (
	"fmt"

	"github.com/aristath/vibronic/internal/modules/resources"
)

// QROMStatePreparation prepares an arbitrary real n-qubit state one qubit at a
// time: level j looks up 2^j rotation angles of Precision bits, applies the
// rotation through the phase-gradient register and unloads the angles.
type QROMStatePreparation struct {
	Qubits    int
	Precision int
}

func (s QROMStatePreparation) Name() string {
	return fmt.Sprintf("QROMStatePreparation(%d,%d)", s.Qubits, s.Precision)
}

func (s QROMStatePreparation) Validate() error {
	return positive(s.Name(), s.Qubits, s.Precision)
}

func (s QROMStatePreparation) Resources() resources.Estimate {
	b := resources.NewBuilder(s.Qubits)
	for level := 0; level < s.Qubits; level++ {
		lookup := QROM{Entries: 1 << level, Width: s.Precision, SwapDepth: 1}
		b.Alloc(s.Precision)
		b.Apply(lookup.Resources())
		b.Apply(ControlledSemiAdder{Size: s.Precision}.Resources())
		b.Apply(Adjoint{Op: lookup}.Resources())
		b.Free(s.Precision)
		// Y rotations are conjugated into Z rotations.
		b.Gate(resources.Hadamard, 2)
	}
	return b.Estimate()
}

// QubitUnitary is a dense n-qubit unitary synthesized by Shannon decomposition.
type QubitUnitary struct {
	Qubits int
}

func (u QubitUnitary) Name() string    { return fmt.Sprintf("QubitUnitary(%d)", u.Qubits) }
func (u QubitUnitary) Validate() error { return positive(u.Name(), u.Qubits) }

func (u QubitUnitary) Resources() resources.Estimate {
	rotations, cnots := int64(3), int64(0)
	for n := 2; n <= u.Qubits; n++ {
		multiplexed := int64(3) << (n - 1)
		rotations = 4*rotations + multiplexed
		cnots = 4*cnots + multiplexed
	}
	return resources.New(u.Qubits).
		With(resources.Rotation, rotations).
		With(resources.CNOT, cnots)
}

package gates

import (
	"fmt"

	"github.com/aristath/vibronic/internal/modules/resources"
)

// QFT is the quantum Fourier transform on an n-qubit register.
//
// With PhaseGradient set, the controlled rotations are replaced by additions into a
// phase-gradient register and the cost becomes 2n(⌈log₂n⌉−1) Toffolis with
// n+3⌈log₂n⌉−4 ancilla. Without it the transform is counted as textbook rotations.
type QFT struct {
	Size          int
	PhaseGradient bool
}

func (q QFT) Name() string    { return fmt.Sprintf("QFT(%d)", q.Size) }
func (q QFT) Validate() error { return positive(q.Name(), q.Size) }

func (q QFT) Resources() resources.Estimate {
	n := q.Size
	e := resources.New(n).
		With(resources.Hadamard, int64(n)).
		With(resources.Swap, int64(n/2))
	if !q.PhaseGradient {
		return e.With(resources.Rotation, int64(n*(n-1)/2))
	}
	logn := CeilLog2(n)
	return e.
		With(resources.Toffoli, int64(max(2*n*(logn-1), 0))).
		WithAncilla(max(n+3*logn-4, 0))
}

// PhaseGradient prepares the n-qubit phase-gradient resource state once per run.
type PhaseGradient struct {
	Size int
}

func (p PhaseGradient) Name() string    { return fmt.Sprintf("PhaseGradient(%d)", p.Size) }
func (p PhaseGradient) Validate() error { return positive(p.Name(), p.Size) }

func (p PhaseGradient) Resources() resources.Estimate {
	return resources.New(p.Size).
		With(resources.Hadamard, int64(p.Size)).
		With(resources.Rotation, int64(p.Size))
}

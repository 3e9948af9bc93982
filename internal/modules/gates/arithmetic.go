package gates

import (
	"fmt"

	"github.com/aristath/vibronic/internal/modules/resources"
)

// SemiAdder adds one n-bit register into another in place.
type SemiAdder struct {
	Size int
}

func (a SemiAdder) Name() string    { return fmt.Sprintf("SemiAdder(%d)", a.Size) }
func (a SemiAdder) Validate() error { return positive(a.Name(), a.Size) }

func (a SemiAdder) Resources() resources.Estimate {
	n := a.Size
	e := resources.New(2 * n)
	if n == 1 {
		return e.With(resources.CNOT, 1)
	}
	e = elbows(e, int64(n-1)).WithAncilla(n - 1)
	return e.With(resources.CNOT, int64(6*(n-2)+3))
}

// ControlledSemiAdder is a SemiAdder conditioned on one control qubit.
type ControlledSemiAdder struct {
	Size int
}

func (a ControlledSemiAdder) Name() string    { return fmt.Sprintf("C(SemiAdder(%d))", a.Size) }
func (a ControlledSemiAdder) Validate() error { return positive(a.Name(), a.Size) }

func (a ControlledSemiAdder) Resources() resources.Estimate {
	n := a.Size
	e := resources.New(2*n + 1)
	if n == 1 {
		return e.With(resources.Toffoli, 1)
	}
	e = elbows(e, int64(2*(n-1))).WithAncilla(n - 1)
	return e.With(resources.CNOT, int64(7*(n-2)+3))
}

// OutMultiplier writes the product of an a-bit and a b-bit register into a fresh
// (a+b)-bit register owned by the caller.
type OutMultiplier struct {
	A int
	B int
}

func (m OutMultiplier) Name() string    { return fmt.Sprintf("OutMultiplier(%d,%d)", m.A, m.B) }
func (m OutMultiplier) Validate() error { return positive(m.Name(), m.A, m.B) }

func (m OutMultiplier) Resources() resources.Estimate {
	l, s := max(m.A, m.B), min(m.A, m.B)
	return resources.New(2*(m.A+m.B)).
		With(resources.Toffoli, int64(2*l*s-l)).
		With(resources.CNOT, int64(l*s))
}

// OutOfPlaceSquare writes x² of an n-bit register into a fresh 2n-bit register
// owned by the caller.
type OutOfPlaceSquare struct {
	Size int
}

func (s OutOfPlaceSquare) Name() string    { return fmt.Sprintf("OutOfPlaceSquare(%d)", s.Size) }
func (s OutOfPlaceSquare) Validate() error { return positive(s.Name(), s.Size) }

func (s OutOfPlaceSquare) Resources() resources.Estimate {
	n := s.Size
	return resources.New(3*n).
		With(resources.Toffoli, int64((n-1)*(n-1))).
		With(resources.CNOT, int64(n))
}

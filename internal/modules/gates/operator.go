// Package gates holds the cost models of the arithmetic and data-loading
// primitives that vibronic circuit templates are built from.
//
// Toffoli accounting follows the elbow convention: computing a temporary logical
// AND costs one Toffoli, uncomputing it is measurement based and costs a Hadamard
// and a CZ. Controlled swaps cost one Toffoli and two CNOTs.
package gates

import (
	"errors"
	"fmt"

	"github.com/aristath/vibronic/internal/modules/resources"
)

// ErrInvalidRegister is returned when a primitive is given a non-positive register size.
var ErrInvalidRegister = errors.New("invalid register size")

// Operator is a primitive with a closed-form cost.
type Operator interface {
	Name() string
	Validate() error
	Resources() resources.Estimate
}

// Adjoint is the inverse of an operator.
type Adjoint struct {
	Op Operator
}

func (a Adjoint) Name() string    { return "Adjoint(" + a.Op.Name() + ")" }
func (a Adjoint) Validate() error { return a.Op.Validate() }

// Resources of the inverse are those of the forward pass. Templates count a
// QROM uncompute at its full lookup cost.
func (a Adjoint) Resources() resources.Estimate {
	return a.Op.Resources()
}

// Cost validates an operator and returns its estimate.
func Cost(op Operator) (resources.Estimate, error) {
	if err := op.Validate(); err != nil {
		return resources.Estimate{}, fmt.Errorf("failed to cost %s: %w", op.Name(), err)
	}
	return op.Resources(), nil
}

func positive(name string, values ...int) error {
	for _, v := range values {
		if v < 1 {
			return fmt.Errorf("%s: %w (%d)", name, ErrInvalidRegister, v)
		}
	}
	return nil
}

// CeilLog2 returns ⌈log₂ n⌉ for n ≥ 1 and 0 otherwise.
func CeilLog2(n int) int {
	bits := 0
	for v := 1; v < n; v <<= 1 {
		bits++
	}
	return bits
}

// NextPow2 returns the smallest power of two that is ≥ n.
func NextPow2(n int) int {
	return 1 << CeilLog2(n)
}

// elbows adds n computed and n uncomputed temporary ANDs.
func elbows(e resources.Estimate, n int64) resources.Estimate {
	return e.With(resources.Toffoli, n).
		With(resources.Hadamard, n).
		With(resources.CZ, n)
}

// Package templates builds the gate-level circuit templates that implement each
// term of a Trotterized vibronic Hamiltonian and counts their resources.
//
// Every template loads a classical coefficient with a QROM indexed by the
// electronic-state register, multiplies it into the phase-gradient register
// through shifted controlled additions, and unloads it again.
package templates

import (
	"errors"
	"fmt"

	"github.com/aristath/vibronic/internal/modules/gates"
)

// ErrInvalidParams is returned for template parameters outside their domain.
var ErrInvalidParams = errors.New("invalid template parameters")

const (
	// DefaultModeBits is k, the qubits per vibrational mode (d = 2^k grid points).
	DefaultModeBits = 4
	// DefaultCoeffBits is b, the fixed-point precision of coefficients and of the
	// phase-gradient register.
	DefaultCoeffBits = 20
)

// Params sizes the registers the templates act on.
type Params struct {
	States    int // electronic states N
	Modes     int // vibrational modes M
	ModeBits  int // k
	CoeffBits int // b
	SwapDepth int // QROM swap depth, 0 picks the Toffoli-optimal depth
}

// DefaultParams returns k=4, b=20 for a molecule of the given shape.
func DefaultParams(states, modes int) Params {
	return Params{
		States:    states,
		Modes:     modes,
		ModeBits:  DefaultModeBits,
		CoeffBits: DefaultCoeffBits,
	}
}

func (p Params) Validate() error {
	switch {
	case p.States < 1:
		return fmt.Errorf("%w: %d electronic states", ErrInvalidParams, p.States)
	case p.Modes < 1:
		return fmt.Errorf("%w: %d modes", ErrInvalidParams, p.Modes)
	case p.ModeBits < 1:
		return fmt.Errorf("%w: %d bits per mode", ErrInvalidParams, p.ModeBits)
	case p.CoeffBits < 1:
		return fmt.Errorf("%w: %d coefficient bits", ErrInvalidParams, p.CoeffBits)
	case p.SwapDepth < 0:
		return fmt.Errorf("%w: swap depth %d", ErrInvalidParams, p.SwapDepth)
	}
	return nil
}

// StateBits is the width of the electronic-state register, at least one qubit.
func (p Params) StateBits() int {
	return max(gates.CeilLog2(p.States), 1)
}

// GridSize is d = 2^k.
func (p Params) GridSize() int {
	return 1 << p.ModeBits
}

// lookup is the coefficient QROM: one b-bit entry per electronic state.
func (p Params) lookup() gates.QROM {
	return gates.QROM{Entries: p.States, Width: p.CoeffBits, SwapDepth: p.SwapDepth}
}

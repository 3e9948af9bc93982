package templates

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/aristath/vibronic/internal/modules/gates"
	"github.com/aristath/vibronic/internal/modules/resources"
)

// ErrUnknownMethod is returned for an unsupported state-preparation method.
var ErrUnknownMethod = errors.New("unknown state preparation method")

// Method selects how each mode's vibrational ground state is prepared.
type Method string

const (
	MethodQROM    Method = "qrom"
	MethodUnitary Method = "unitary"
)

// ParseMethod maps a name to a Method; the empty name is MethodQROM.
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return MethodQROM, nil
	case MethodQROM, MethodUnitary:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// InitialState costs preparing the phase-gradient register, the electronic basis
// state and the vibrational ground state of every mode.
func (p Params) InitialState(method Method, electronicState int) (resources.Estimate, error) {
	if err := p.Validate(); err != nil {
		return resources.Estimate{}, err
	}
	if electronicState < 0 || electronicState >= p.States {
		return resources.Estimate{}, fmt.Errorf("%w: electronic state %d of %d", ErrInvalidParams, electronicState, p.States)
	}

	var mode gates.Operator
	switch method {
	case MethodQROM, "":
		mode = gates.QROMStatePreparation{Qubits: p.ModeBits, Precision: p.CoeffBits}
	case MethodUnitary:
		mode = gates.QubitUnitary{Qubits: p.ModeBits}
	default:
		return resources.Estimate{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	b := resources.NewBuilder(p.StateBits() + p.Modes*p.ModeBits + p.CoeffBits)
	b.Apply(gates.PhaseGradient{Size: p.CoeffBits}.Resources())
	b.Gate(resources.X, int64(bits.OnesCount(uint(electronicState))))
	b.Repeat(mode.Resources(), int64(p.Modes))
	return b.Estimate(), nil
}

package templates

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/aristath/vibronic/internal/modules/gates"
	"github.com/aristath/vibronic/internal/modules/resources"
)

// Name identifies a template.
type Name string

const (
	Constant     Name = "constant"
	Linear       Name = "linear"
	Quadratic    Name = "quadratic"
	Bilinear     Name = "bilinear"
	Kinetic      Name = "kinetic"
	InitialState Name = "initial_state"
)

// Units holds the cost of one application of each potential-term template.
type Units struct {
	Constant  resources.Estimate
	Linear    resources.Estimate
	Quadratic resources.Estimate
	Bilinear  resources.Estimate
}

// Units costs the four potential-term templates.
func (p Params) Units() (Units, error) {
	if err := p.Validate(); err != nil {
		return Units{}, err
	}
	return Units{
		Constant:  p.constant(),
		Linear:    p.linear(),
		Quadratic: p.quadratic(),
		Bilinear:  p.bilinear(),
	}, nil
}

// accumulate adds a loaded coefficient, shifted by each bit of an x-bit operand,
// into the phase-gradient register.
func accumulate(b *resources.Builder, operandBits, coeffBits int) {
	for i := 0; i < operandBits; i++ {
		width := coeffBits - i
		if width < 1 {
			break
		}
		b.Apply(gates.ControlledSemiAdder{Size: width}.Resources())
	}
}

// withCoefficient loads the coefficient, runs body and unloads it.
func (p Params) withCoefficient(wires int, body func(b *resources.Builder)) resources.Estimate {
	lookup := p.lookup()
	b := resources.NewBuilder(wires)
	b.Alloc(p.CoeffBits)
	b.Apply(lookup.Resources())
	body(b)
	b.Apply(gates.Adjoint{Op: lookup}.Resources())
	b.Free(p.CoeffBits)
	return b.Estimate()
}

func (p Params) constant() resources.Estimate {
	return p.withCoefficient(p.StateBits()+p.CoeffBits, func(b *resources.Builder) {
		b.Apply(gates.SemiAdder{Size: p.CoeffBits}.Resources())
	})
}

func (p Params) linear() resources.Estimate {
	return p.withCoefficient(p.StateBits()+p.ModeBits+p.CoeffBits, func(b *resources.Builder) {
		accumulate(b, p.ModeBits, p.CoeffBits)
	})
}

func (p Params) quadratic() resources.Estimate {
	square := gates.OutOfPlaceSquare{Size: p.ModeBits}
	return p.withCoefficient(p.StateBits()+p.ModeBits+p.CoeffBits, func(b *resources.Builder) {
		b.Alloc(2 * p.ModeBits)
		b.Apply(square.Resources())
		accumulate(b, 2*p.ModeBits, p.CoeffBits)
		b.Apply(gates.Adjoint{Op: square}.Resources())
		b.Free(2 * p.ModeBits)
	})
}

func (p Params) bilinear() resources.Estimate {
	product := gates.OutMultiplier{A: p.ModeBits, B: p.ModeBits}
	return p.withCoefficient(p.StateBits()+2*p.ModeBits+p.CoeffBits, func(b *resources.Builder) {
		b.Alloc(2 * p.ModeBits)
		b.Apply(product.Resources())
		accumulate(b, 2*p.ModeBits, p.CoeffBits)
		b.Apply(gates.Adjoint{Op: product}.Resources())
		b.Free(2 * p.ModeBits)
	})
}

// Kinetic costs the whole kinetic fragment Σ_r ω_r p_r²/2: each mode is moved to
// momentum space, its square is phased by the classical constant ω_r/2, and the
// mode is moved back.
func (p Params) Kinetic(omega []float64) (resources.Estimate, error) {
	if err := p.Validate(); err != nil {
		return resources.Estimate{}, err
	}
	if len(omega) != p.Modes {
		return resources.Estimate{}, fmt.Errorf("%w: %d frequencies for %d modes", ErrInvalidParams, len(omega), p.Modes)
	}

	qft := gates.QFT{Size: p.ModeBits, PhaseGradient: true}
	square := gates.OutOfPlaceSquare{Size: p.ModeBits}

	b := resources.NewBuilder(p.StateBits() + p.Modes*p.ModeBits + p.CoeffBits)
	for _, w := range omega {
		ones := int64(p.fixedPointOnes(w / 2))

		b.Apply(qft.Resources())
		b.Alloc(2 * p.ModeBits)
		b.Apply(square.Resources())
		b.Alloc(p.CoeffBits)
		b.Gate(resources.X, ones)
		accumulate(b, 2*p.ModeBits, p.CoeffBits)
		b.Gate(resources.X, ones)
		b.Free(p.CoeffBits)
		b.Apply(gates.Adjoint{Op: square}.Resources())
		b.Free(2 * p.ModeBits)
		b.Apply(gates.Adjoint{Op: qft}.Resources())
	}
	return b.Estimate(), nil
}

// fixedPointOnes counts the set bits of |v| in b-bit fixed point, the X gates
// needed to write it.
func (p Params) fixedPointOnes(v float64) int {
	scaled := math.Round(math.Abs(v) * math.Ldexp(1, p.CoeffBits))
	mask := uint64(1)<<min(p.CoeffBits, 63) - 1
	return bits.OnesCount64(uint64(math.Min(scaled, math.MaxInt64)) & mask)
}

package fragments

import (
	"math/bits"

	"github.com/aristath/vibronic/internal/modules/resources"
	"github.com/aristath/vibronic/internal/modules/templates"
)

// Cost is the resource estimate of applying f once. Kinetic fragments cost the
// kinetic template; potential fragments cost their term templates in series
// inside the basis change of their XOR class.
func Cost(f Fragment, units templates.Units, kinetic resources.Estimate) resources.Estimate {
	if f.Kind == KindKinetic {
		return kinetic
	}

	parts := []resources.Estimate{BasisChange(f.Class)}
	for _, term := range []struct {
		count int
		unit  resources.Estimate
	}{
		{f.Terms.Constant, units.Constant},
		{f.Terms.Linear, units.Linear},
		{f.Terms.Quadratic, units.Quadratic},
		{f.Terms.Bilinear, units.Bilinear},
	} {
		if term.count > 0 {
			parts = append(parts, term.unit.Scale(int64(term.count)))
		}
	}
	return resources.Sum(parts...)
}

// BasisChange maps XOR class m onto the diagonal and back: a CNOT ladder from the
// lowest set bit of m to the others, and a Hadamard on that bit, each applied
// before and after.
func BasisChange(m int) resources.Estimate {
	if m == 0 {
		return resources.Estimate{}
	}
	ones := bits.OnesCount(uint(m))
	return resources.New(bits.Len(uint(m))).
		With(resources.CNOT, int64(2*(ones-1))).
		With(resources.Hadamard, 2)
}

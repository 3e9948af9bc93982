package gates

import (
	"fmt"
	"math"

	"github.com/aristath/vibronic/internal/modules/resources"
)

// QROM loads one of Entries classical bitstrings of Width bits, selected by an
// index register, into an output register owned by the caller.
//
// The lookup is a select-swap network: unary iteration over ⌈Entries/W⌉ blocks
// followed by a swap network of depth W. SwapDepth 0 picks the Toffoli-optimal W.
type QROM struct {
	Entries   int
	Width     int
	Clean     bool // restore the swap registers to |0⟩, doubling select and quadrupling swap cost
	SwapDepth int
}

func (q QROM) Name() string {
	return fmt.Sprintf("QROM(%d,%d)", q.Entries, q.Width)
}

func (q QROM) Validate() error {
	if err := positive(q.Name(), q.Entries, q.Width); err != nil {
		return err
	}
	if q.SwapDepth < 0 {
		return fmt.Errorf("%s: %w (swap depth %d)", q.Name(), ErrInvalidRegister, q.SwapDepth)
	}
	return nil
}

// Depth returns the swap-network depth W that Resources uses.
func (q QROM) Depth() int {
	if q.SwapDepth > 0 {
		return min(q.SwapDepth, NextPow2(q.Entries))
	}
	return q.optimalDepth()
}

func (q QROM) Resources() resources.Estimate {
	w := q.Depth()
	return q.cost(w)
}

func (q QROM) cost(w int) resources.Estimate {
	blocks := (q.Entries + w - 1) / w
	selects := max(blocks-2, 0)

	selectFactor, swapFactor := 1, 1
	if q.Clean {
		selectFactor, swapFactor = 2, 4
	}

	e := resources.New(CeilLog2(q.Entries) + q.Width).
		WithAncilla((w-1)*q.Width + max(CeilLog2(blocks)-1, 0))
	e = elbows(e, int64(selectFactor*selects))

	swaps := int64(swapFactor * (w - 1) * q.Width)
	e = e.With(resources.Toffoli, swaps).With(resources.CNOT, 2*swaps)

	if blocks > 1 {
		e = e.With(resources.X, int64(selectFactor*(2*selects+1)))
		e = e.With(resources.CNOT, int64(selectFactor*selects))
	}
	// Writing the data costs on average one CNOT per set bit.
	e = e.With(resources.CNOT, int64(q.Entries*q.Width/2))
	if q.Clean {
		e = e.With(resources.Hadamard, int64(2*q.Width))
	}
	return e
}

// optimalDepth brackets √((2/3)·Entries/Width) between powers of two and keeps
// whichever gives fewer Toffolis.
func (q QROM) optimalDepth() int {
	target := math.Sqrt((2.0 / 3.0) * float64(q.Entries) / float64(q.Width))
	if target <= 1 {
		return 1
	}
	lo := 1 << int(math.Floor(math.Log2(target)))
	hi := 1 << int(math.Ceil(math.Log2(target)))
	lo = max(lo, 1)
	if q.cost(hi).Toffolis() < q.cost(lo).Toffolis() {
		return hi
	}
	return lo
}

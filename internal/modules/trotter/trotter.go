// Package trotter turns per-fragment costs into the cost of a full second-order
// Trotter simulation.
package trotter

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aristath/vibronic/internal/modules/resources"
)

// ErrInvalidInput is returned for a negative norm or time, or a non-positive error.
var ErrInvalidInput = errors.New("invalid trotter input")

// Steps evaluates t^1.5 · √(norm/ε) without rounding.
func Steps(norm, reqError, time float64) (float64, error) {
	switch {
	case math.IsNaN(norm) || math.IsInf(norm, 0) || norm < 0:
		return 0, fmt.Errorf("%w: norm %v", ErrInvalidInput, norm)
	case math.IsNaN(reqError) || math.IsInf(reqError, 0) || reqError <= 0:
		return 0, fmt.Errorf("%w: required error %v", ErrInvalidInput, reqError)
	case math.IsNaN(time) || math.IsInf(time, 0) || time < 0:
		return 0, fmt.Errorf("%w: time %v", ErrInvalidInput, time)
	}
	return math.Pow(time, 1.5) * math.Sqrt(norm/reqError), nil
}

// NumSteps is the number of Trotter steps needed to reach reqError at time,
// rounded up to a whole step.
func NumSteps(norm, reqError, time float64) (int64, error) {
	n, err := Steps(norm, reqError, time)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64/2 {
		return 0, fmt.Errorf("%w: %g steps", ErrInvalidInput, n)
	}
	return int64(math.Ceil(n)), nil
}

// FragmentCost is the cost of applying one named fragment once.
type FragmentCost struct {
	Name string
	Cost resources.Estimate
}

// Application is one entry of a step schedule.
type Application struct {
	FragmentCost
	Times int64
}

// Schedule orders fragments costliest first by Toffoli count, then by qubits.
// In a second-order step the two costliest fragments sit at the palindrome's
// centre and ends and are applied once; every other fragment is applied twice.
// Ties keep input order.
func Schedule(costs []FragmentCost) []Application {
	order := make([]FragmentCost, len(costs))
	copy(order, costs)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i].Cost, order[j].Cost
		if a.Toffolis() != b.Toffolis() {
			return a.Toffolis() > b.Toffolis()
		}
		return a.Qubits() > b.Qubits()
	})

	out := make([]Application, len(order))
	for i, fc := range order {
		times := int64(2)
		if i < 2 {
			times = 1
		}
		out[i] = Application{FragmentCost: fc, Times: times}
	}
	return out
}

// StepCost is the cost of one step: Σ times · cost in series.
func StepCost(schedule []Application) resources.Estimate {
	parts := make([]resources.Estimate, len(schedule))
	for i, app := range schedule {
		parts[i] = app.Cost.Scale(app.Times)
	}
	return resources.Sum(parts...)
}

// Total is the full algorithm: state preparation followed by n steps. Totals
// that do not fit in an int64 gate count are rejected.
func Total(initial, step resources.Estimate, n int64) (resources.Estimate, error) {
	steps, err := step.ScaleChecked(n)
	if err != nil {
		return resources.Estimate{}, fmt.Errorf("%w: %d steps: %w", ErrInvalidInput, n, err)
	}
	total, err := initial.AddChecked(steps)
	if err != nil {
		return resources.Estimate{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return total, nil
}

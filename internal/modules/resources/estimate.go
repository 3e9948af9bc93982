// Package resources defines the resource estimate record shared by every cost model.
//
// An Estimate counts logical qubits and gates. Estimates form a commutative monoid
// under series addition with the zero Estimate as identity, and scalar
// multiplication distributes over addition, so the order in which fragment costs
// are aggregated never changes a total.
package resources

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrOverflow is returned when a gate count no longer fits in an int64.
var ErrOverflow = errors.New("gate count overflow")

// GateType names a gate that estimates count.
type GateType string

const (
	Toffoli  GateType = "Toffoli"
	CNOT     GateType = "CNOT"
	CZ       GateType = "CZ"
	X        GateType = "X"
	Hadamard GateType = "Hadamard"
	Rotation GateType = "Rotation"
	Swap     GateType = "SWAP"
)

// Counts maps a gate type to its number of applications.
type Counts map[GateType]int64

// Estimate is the cost of an operation.
type Estimate struct {
	Wires   int    // logical qubits the operation acts on
	Ancilla int    // peak qubits allocated on top of Wires
	Gates   Counts // gate applications by type
}

// New returns an empty estimate over the given number of wires.
func New(wires int) Estimate {
	return Estimate{Wires: wires, Gates: Counts{}}
}

// With returns a copy of e with n more applications of gate g.
func (e Estimate) With(g GateType, n int64) Estimate {
	out := e.clone()
	if n != 0 {
		out.Gates[g] += n
	}
	return out
}

// WithAncilla returns a copy of e whose peak ancilla is at least n.
func (e Estimate) WithAncilla(n int) Estimate {
	out := e.clone()
	if n > out.Ancilla {
		out.Ancilla = n
	}
	return out
}

// Add composes e and o in series: gates sum, qubit requirements take the max.
func (e Estimate) Add(o Estimate) Estimate {
	out := e.clone()
	out.Wires = max(e.Wires, o.Wires)
	out.Ancilla = max(e.Ancilla, o.Ancilla)
	for g, n := range o.Gates {
		if n != 0 {
			out.Gates[g] += n
		}
	}
	return out
}

// Scale repeats e n times in series. Qubit requirements are unchanged.
func (e Estimate) Scale(n int64) Estimate {
	out := e.clone()
	if n <= 0 {
		out.Gates = Counts{}
		return out
	}
	for g := range out.Gates {
		out.Gates[g] *= n
	}
	return out
}

// AddChecked is Add that fails with ErrOverflow instead of wrapping around.
func (e Estimate) AddChecked(o Estimate) (Estimate, error) {
	for g, n := range o.Gates {
		if c := e.Gates[g]; (n > 0 && c > math.MaxInt64-n) || (n < 0 && c < math.MinInt64-n) {
			return Estimate{}, fmt.Errorf("%w: %s %d + %d", ErrOverflow, g, c, n)
		}
	}
	return e.Add(o), nil
}

// ScaleChecked is Scale that fails with ErrOverflow instead of wrapping around.
func (e Estimate) ScaleChecked(n int64) (Estimate, error) {
	if n > 0 {
		for g, c := range e.Gates {
			if c > math.MaxInt64/n || c < math.MinInt64/n {
				return Estimate{}, fmt.Errorf("%w: %s %d × %d", ErrOverflow, g, c, n)
			}
		}
	}
	return e.Scale(n), nil
}

// Parallel composes e and o side by side on disjoint qubits.
func (e Estimate) Parallel(o Estimate) Estimate {
	out := e.Add(o)
	out.Wires = e.Wires + o.Wires
	out.Ancilla = e.Ancilla + o.Ancilla
	return out
}

// Qubits is the total logical qubit count.
func (e Estimate) Qubits() int {
	return e.Wires + e.Ancilla
}

// Count returns the number of applications of gate g.
func (e Estimate) Count(g GateType) int64 {
	return e.Gates[g]
}

// Toffolis returns the Toffoli count.
func (e Estimate) Toffolis() int64 {
	return e.Gates[Toffoli]
}

// Equal reports whether two estimates have the same qubits and non-zero gate counts.
func (e Estimate) Equal(o Estimate) bool {
	if e.Wires != o.Wires || e.Ancilla != o.Ancilla {
		return false
	}
	for g, n := range e.Gates {
		if o.Gates[g] != n {
			return false
		}
	}
	for g, n := range o.Gates {
		if e.Gates[g] != n {
			return false
		}
	}
	return true
}

// GateTypes returns the gate types with a non-zero count, sorted by name.
func (e Estimate) GateTypes() []GateType {
	types := make([]GateType, 0, len(e.Gates))
	for g, n := range e.Gates {
		if n != 0 {
			types = append(types, g)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (e Estimate) String() string {
	parts := make([]string, 0, len(e.Gates))
	for _, g := range e.GateTypes() {
		parts = append(parts, fmt.Sprintf("%s=%d", g, e.Gates[g]))
	}
	return fmt.Sprintf("qubits=%d (wires=%d ancilla=%d) gates{%s}",
		e.Qubits(), e.Wires, e.Ancilla, strings.Join(parts, " "))
}

// Sum adds estimates in series.
func Sum(estimates ...Estimate) Estimate {
	out := New(0)
	for _, e := range estimates {
		out = out.Add(e)
	}
	return out
}

func (e Estimate) clone() Estimate {
	gates := make(Counts, len(e.Gates))
	for g, n := range e.Gates {
		gates[g] = n
	}
	return Estimate{Wires: e.Wires, Ancilla: e.Ancilla, Gates: gates}
}

// Package fragments splits a vibronic Hamiltonian into fragments that are each
// exactly implementable, and counts how many template applications each needs.
//
// Fragments are built over XOR classes: class m holds every coupling between the
// electronic states i and i⊕m, which a Clifford basis change maps onto a diagonal
// operator. The number of classes is the next power of two above the state count.
package fragments

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aristath/vibronic/internal/modules/gates"
	"github.com/aristath/vibronic/internal/modules/hamiltonian"
)

var (
	// ErrUnknownScheme is returned for an unsupported fragmentation scheme.
	ErrUnknownScheme = errors.New("unknown fragmentation scheme")
	// ErrInvalidTolerance is returned for a negative term tolerance.
	ErrInvalidTolerance = errors.New("invalid tolerance")
)

// Scheme selects a fragmentation.
type Scheme string

const (
	// SchemeOriginal gives one kinetic fragment and one fragment per XOR class.
	SchemeOriginal Scheme = "original"
	// SchemeModeBased splits the diagonal class further into one fragment per mode.
	SchemeModeBased Scheme = "modebased"
)

// ParseScheme accepts scheme names regardless of case and separators.
func ParseScheme(name string) (Scheme, error) {
	normalized := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch Scheme(normalized) {
	case SchemeOriginal, "":
		return SchemeOriginal, nil
	case SchemeModeBased:
		return SchemeModeBased, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// Kind distinguishes the kinetic fragment from potential fragments.
type Kind string

const (
	KindKinetic   Kind = "kinetic"
	KindPotential Kind = "potential"
)

// TermCounts is the number of template applications of each term type.
type TermCounts struct {
	Constant  int
	Linear    int
	Quadratic int
	Bilinear  int
}

// Total is the number of template applications.
func (c TermCounts) Total() int {
	return c.Constant + c.Linear + c.Quadratic + c.Bilinear
}

// Fragment is one exactly-implementable piece of the Hamiltonian.
type Fragment struct {
	Name  string
	Kind  Kind
	Class int // XOR class m, 0 for the kinetic fragment
	Mode  int // owning mode of a mode-based diagonal fragment, -1 otherwise
	Terms TermCounts
}

// Build fragments h with the given scheme. Terms whose coefficients are all at
// or below tolerance in absolute value are dropped.
func Build(h *hamiltonian.Hamiltonian, scheme Scheme, tolerance float64) ([]Fragment, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	switch scheme {
	case SchemeOriginal:
		return OriginalGrouping(h, tolerance), nil
	case SchemeModeBased:
		return ModeBased(h, tolerance), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

// Classes returns the number of XOR classes for n states.
func Classes(states int) int {
	return gates.NextPow2(states)
}

func kinetic() Fragment {
	return Fragment{Name: "kinetic", Kind: KindKinetic, Mode: -1}
}

// OriginalGrouping returns the kinetic fragment followed by one fragment per XOR class.
func OriginalGrouping(h *hamiltonian.Hamiltonian, tolerance float64) []Fragment {
	out := []Fragment{kinetic()}
	for m := 0; m < Classes(h.States); m++ {
		c := newClass(h, m, tolerance)
		out = append(out, Fragment{
			Name:  fmt.Sprintf("class_%d", m),
			Kind:  KindPotential,
			Class: m,
			Mode:  -1,
			Terms: TermCounts{
				Constant:  c.constant(),
				Linear:    c.linear(allModes),
				Quadratic: c.quadratic(allModes),
				Bilinear:  c.bilinear(allModes),
			},
		})
	}
	return out
}

// ModeBased returns the kinetic fragment, one electronic fragment per XOR class
// and one diagonal fragment per mode.
//
// Electronic fragments hold the constant couplings of their class and, for m≠0,
// every mode-dependent coupling. The diagonal couplings λ_ii,r, α_ii,r and
// β_ii,rs (s>r) go to the fragment of mode r.
func ModeBased(h *hamiltonian.Hamiltonian, tolerance float64) []Fragment {
	out := []Fragment{kinetic()}
	for m := 0; m < Classes(h.States); m++ {
		c := newClass(h, m, tolerance)
		terms := TermCounts{Constant: c.constant()}
		if m != 0 {
			terms.Linear = c.linear(allModes)
			terms.Quadratic = c.quadratic(allModes)
			terms.Bilinear = c.bilinear(allModes)
		}
		out = append(out, Fragment{
			Name:  fmt.Sprintf("electronic_%d", m),
			Kind:  KindPotential,
			Class: m,
			Mode:  -1,
			Terms: terms,
		})
	}

	diagonal := newClass(h, 0, tolerance)
	for r := 0; r < h.Modes; r++ {
		only := func(mode int) bool { return mode == r }
		out = append(out, Fragment{
			Name:  fmt.Sprintf("mode_%d", r),
			Kind:  KindPotential,
			Class: 0,
			Mode:  r,
			Terms: TermCounts{
				Linear:    diagonal.linear(only),
				Quadratic: diagonal.quadratic(only),
				Bilinear:  diagonal.bilinear(only),
			},
		})
	}
	return out
}

func allModes(int) bool { return true }

// class is the set of state pairs (i, i⊕m) with both states in range.
type class struct {
	h         *hamiltonian.Hamiltonian
	pairs     [][2]int
	tolerance float64
}

func newClass(h *hamiltonian.Hamiltonian, m int, tolerance float64) class {
	c := class{h: h, tolerance: tolerance}
	for i := 0; i < h.States; i++ {
		if j := i ^ m; j < h.States {
			c.pairs = append(c.pairs, [2]int{i, j})
		}
	}
	return c
}

// present reports whether some pair has a coefficient above tolerance.
func (c class) present(at func(i, j int) float64) bool {
	for _, p := range c.pairs {
		if math.Abs(at(p[0], p[1])) > c.tolerance {
			return true
		}
	}
	return false
}

func (c class) constant() int {
	if c.present(c.h.EnergyAt) {
		return 1
	}
	return 0
}

// linear counts modes selected by owns whose λ_r is present in the class.
func (c class) linear(owns func(r int) bool) int {
	n := 0
	for r := 0; r < c.h.Modes; r++ {
		if owns(r) && c.present(c.h.Linear[r].At) {
			n++
		}
	}
	return n
}

func (c class) quadratic(owns func(r int) bool) int {
	n := 0
	for r := 0; r < c.h.Modes; r++ {
		if owns(r) && c.present(c.h.Quadratic[r].At) {
			n++
		}
	}
	return n
}

// bilinear counts mode pairs r<s, where r is selected by owns, whose β_rs is present.
func (c class) bilinear(owns func(r int) bool) int {
	n := 0
	for r := 0; r < c.h.Modes; r++ {
		if !owns(r) {
			continue
		}
		for s := r + 1; s < c.h.Modes; s++ {
			if c.present(c.h.Bilinear[r][s].At) {
				n++
			}
		}
	}
	return n
}

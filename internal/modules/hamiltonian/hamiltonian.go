// Package hamiltonian holds the vibronic model Hamiltonian of a molecule and loads
// it from serialized parameter files.
//
// The potential couples N electronic states through mode-dependent terms:
//
//	V_ij(q) = E_ij + Σ_r λ_ij,r q_r + Σ_r α_ij,r q_r² + Σ_{r<s} β_ij,rs q_r q_s
//
// and the kinetic part is Σ_r ω_r p_r²/2. Every coupling is symmetric in (i, j).
package hamiltonian

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalid is returned for malformed or inconsistent Hamiltonian data.
var ErrInvalid = errors.New("invalid hamiltonian")

// symmetryTolerance is the relative mismatch allowed between c_ij and c_ji.
const symmetryTolerance = 1e-9

// Hamiltonian is the immutable vibronic model of one molecule.
type Hamiltonian struct {
	Molecule  string
	States    int
	Modes     int
	Omega     []float64
	Energies  *mat.SymDense     // constant couplings E_ij, nil when absent
	Linear    []*mat.SymDense   // λ_r, one N×N matrix per mode
	Quadratic []*mat.SymDense   // α_r, one N×N matrix per mode
	Bilinear  [][]*mat.SymDense // β_rs for r<s, nil elsewhere
}

// Validate checks dimensions and finiteness.
func (h *Hamiltonian) Validate() error {
	if h.States < 1 {
		return fmt.Errorf("%w: %d electronic states", ErrInvalid, h.States)
	}
	if h.Modes < 1 {
		return fmt.Errorf("%w: %d vibrational modes", ErrInvalid, h.Modes)
	}
	if len(h.Omega) != h.Modes {
		return fmt.Errorf("%w: %d frequencies for %d modes", ErrInvalid, len(h.Omega), h.Modes)
	}
	for r, w := range h.Omega {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return fmt.Errorf("%w: frequency of mode %d is %v", ErrInvalid, r, w)
		}
	}
	if h.Energies != nil {
		if err := h.checkMatrix("energies", h.Energies); err != nil {
			return err
		}
	}
	if len(h.Linear) != h.Modes || len(h.Quadratic) != h.Modes || len(h.Bilinear) != h.Modes {
		return fmt.Errorf("%w: coupling tensors do not cover %d modes", ErrInvalid, h.Modes)
	}
	for r := 0; r < h.Modes; r++ {
		if err := h.checkMatrix(fmt.Sprintf("linear[%d]", r), h.Linear[r]); err != nil {
			return err
		}
		if err := h.checkMatrix(fmt.Sprintf("quadratic[%d]", r), h.Quadratic[r]); err != nil {
			return err
		}
		if len(h.Bilinear[r]) != h.Modes {
			return fmt.Errorf("%w: bilinear[%d] has %d entries", ErrInvalid, r, len(h.Bilinear[r]))
		}
		for s := r + 1; s < h.Modes; s++ {
			if err := h.checkMatrix(fmt.Sprintf("bilinear[%d][%d]", r, s), h.Bilinear[r][s]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Hamiltonian) checkMatrix(name string, m *mat.SymDense) error {
	if m == nil {
		return fmt.Errorf("%w: %s is missing", ErrInvalid, name)
	}
	if m.SymmetricDim() != h.States {
		return fmt.Errorf("%w: %s is %d×%d, want %d×%d", ErrInvalid, name,
			m.SymmetricDim(), m.SymmetricDim(), h.States, h.States)
	}
	for i := 0; i < h.States; i++ {
		for j := i; j < h.States; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d][%d] is not finite", ErrInvalid, name, i, j)
			}
		}
	}
	return nil
}

// BilinearAt returns β_ij,rs for any ordering of r≠s.
func (h *Hamiltonian) BilinearAt(i, j, r, s int) float64 {
	if r == s {
		return 0
	}
	if r > s {
		r, s = s, r
	}
	return h.Bilinear[r][s].At(i, j)
}

// EnergyAt returns E_ij, or 0 when the file carried no constant couplings.
func (h *Hamiltonian) EnergyAt(i, j int) float64 {
	if h.Energies == nil {
		return 0
	}
	return h.Energies.At(i, j)
}

// OneNorm is the sum of absolute values of every coefficient, counting both
// (i, j) and (j, i) and ω_r/2 for the kinetic term.
func (h *Hamiltonian) OneNorm() float64 {
	total := floats.Norm(h.Omega, 1) / 2
	if h.Energies != nil {
		total += entrywiseNorm(h.Energies)
	}
	for r := 0; r < h.Modes; r++ {
		total += entrywiseNorm(h.Linear[r])
		total += entrywiseNorm(h.Quadratic[r])
		for s := r + 1; s < h.Modes; s++ {
			total += entrywiseNorm(h.Bilinear[r][s])
		}
	}
	return total
}

func entrywiseNorm(m *mat.SymDense) float64 {
	n := m.SymmetricDim()
	row := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			row[j] = m.At(i, j)
		}
		total += floats.Norm(row, 1)
	}
	return total
}

// symmetricFrom builds an N×N symmetric matrix from a dense accessor, rejecting
// entries whose transpose disagrees.
func symmetricFrom(n int, name string, at func(i, j int) float64) (*mat.SymDense, error) {
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := at(i, j), at(j, i)
			scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
			if math.Abs(a-b) > symmetryTolerance*scale {
				return nil, fmt.Errorf("%w: %s is not symmetric at (%d,%d): %v vs %v", ErrInvalid, name, i, j, a, b)
			}
			m.SetSym(i, j, a)
		}
	}
	return m, nil
}

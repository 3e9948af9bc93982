package hamiltonian

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Synthetic generates a dense, reproducible Hamiltonian of the given shape.
// Every coupling is non-zero so fragment term counts are maximal.
func Synthetic(molecule string, states, modes int, seed uint64) *Hamiltonian {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	coupling := func(scale float64) *mat.SymDense {
		m := mat.NewSymDense(states, nil)
		for i := 0; i < states; i++ {
			for j := i; j < states; j++ {
				// Bounded away from zero.
				v := scale * (0.1 + rng.Float64())
				if rng.IntN(2) == 0 {
					v = -v
				}
				m.SetSym(i, j, v)
			}
		}
		return m
	}

	h := &Hamiltonian{
		Molecule:  molecule,
		States:    states,
		Modes:     modes,
		Omega:     make([]float64, modes),
		Energies:  coupling(1),
		Linear:    make([]*mat.SymDense, modes),
		Quadratic: make([]*mat.SymDense, modes),
		Bilinear:  make([][]*mat.SymDense, modes),
	}
	for r := 0; r < modes; r++ {
		h.Omega[r] = 0.005 + 0.2*rng.Float64()
		h.Linear[r] = coupling(0.05)
		h.Quadratic[r] = coupling(0.01)
		h.Bilinear[r] = make([]*mat.SymDense, modes)
	}
	for r := 0; r < modes; r++ {
		for s := r + 1; s < modes; s++ {
			h.Bilinear[r][s] = coupling(0.001)
		}
	}
	return h
}

package hamiltonian

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"
)

// parameterFile is the on-disk msgpack layout of a molecule's parameters.
// Coupling tensors are indexed [i][j][r] and [i][j][r][s].
type parameterFile struct {
	Molecule string          `msgpack:"molecule"`
	States   int             `msgpack:"states"`
	Modes    int             `msgpack:"modes"`
	Omega    []float64       `msgpack:"omega"`
	Energies [][]float64     `msgpack:"energies,omitempty"`
	Lambda   [][][]float64   `msgpack:"lambda"`
	Alpha    [][][]float64   `msgpack:"alpha"`
	Beta     [][][][]float64 `msgpack:"beta"`
}

// Decode reads a msgpack parameter file.
//
// The bilinear tensor may be stored full: β_rs and β_sr are summed into the
// coefficient of q_r q_s, and any diagonal β_rr is folded into the quadratic term.
func Decode(r io.Reader) (*Hamiltonian, error) {
	var p parameterFile
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode parameter file: %w", err)
	}
	h, err := p.build()
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Encode writes h as a msgpack parameter file. Bilinear couplings are written to
// the upper triangle only.
func Encode(w io.Writer, h *Hamiltonian) error {
	if err := h.Validate(); err != nil {
		return err
	}
	n, m := h.States, h.Modes
	p := parameterFile{
		Molecule: h.Molecule,
		States:   n,
		Modes:    m,
		Omega:    append([]float64(nil), h.Omega...),
		Lambda:   tensor3(n, m),
		Alpha:    tensor3(n, m),
		Beta:     make([][][][]float64, n),
	}
	if h.Energies != nil {
		p.Energies = make([][]float64, n)
	}
	for i := 0; i < n; i++ {
		p.Beta[i] = make([][][]float64, n)
		if h.Energies != nil {
			p.Energies[i] = make([]float64, n)
		}
		for j := 0; j < n; j++ {
			if h.Energies != nil {
				p.Energies[i][j] = h.Energies.At(i, j)
			}
			p.Beta[i][j] = make([][]float64, m)
			for r := 0; r < m; r++ {
				p.Lambda[i][j][r] = h.Linear[r].At(i, j)
				p.Alpha[i][j][r] = h.Quadratic[r].At(i, j)
				p.Beta[i][j][r] = make([]float64, m)
				for s := r + 1; s < m; s++ {
					p.Beta[i][j][r][s] = h.Bilinear[r][s].At(i, j)
				}
			}
		}
	}
	if err := msgpack.NewEncoder(w).Encode(&p); err != nil {
		return fmt.Errorf("failed to encode parameter file: %w", err)
	}
	return nil
}

func tensor3(n, m int) [][][]float64 {
	t := make([][][]float64, n)
	for i := range t {
		t[i] = make([][]float64, n)
		for j := range t[i] {
			t[i][j] = make([]float64, m)
		}
	}
	return t
}

func (p *parameterFile) build() (*Hamiltonian, error) {
	n, m := p.States, p.Modes
	if n < 1 || m < 1 {
		return nil, fmt.Errorf("%w: %d states, %d modes", ErrInvalid, n, m)
	}
	if err := checkShape("lambda", p.Lambda, n, m); err != nil {
		return nil, err
	}
	if err := checkShape("alpha", p.Alpha, n, m); err != nil {
		return nil, err
	}
	if err := checkShape4("beta", p.Beta, n, m); err != nil {
		return nil, err
	}

	h := &Hamiltonian{
		Molecule:  p.Molecule,
		States:    n,
		Modes:     m,
		Omega:     p.Omega,
		Linear:    make([]*mat.SymDense, m),
		Quadratic: make([]*mat.SymDense, m),
		Bilinear:  make([][]*mat.SymDense, m),
	}

	var err error
	if p.Energies != nil {
		if len(p.Energies) != n {
			return nil, fmt.Errorf("%w: energies has %d rows, want %d", ErrInvalid, len(p.Energies), n)
		}
		for i, row := range p.Energies {
			if len(row) != n {
				return nil, fmt.Errorf("%w: energies[%d] has %d entries, want %d", ErrInvalid, i, len(row), n)
			}
		}
		h.Energies, err = symmetricFrom(n, "energies", func(i, j int) float64 { return p.Energies[i][j] })
		if err != nil {
			return nil, err
		}
	}

	for r := 0; r < m; r++ {
		h.Linear[r], err = symmetricFrom(n, fmt.Sprintf("lambda[:,:,%d]", r), func(i, j int) float64 {
			return p.Lambda[i][j][r]
		})
		if err != nil {
			return nil, err
		}
		h.Quadratic[r], err = symmetricFrom(n, fmt.Sprintf("alpha[:,:,%d]", r), func(i, j int) float64 {
			return p.Alpha[i][j][r] + p.Beta[i][j][r][r]
		})
		if err != nil {
			return nil, err
		}
		h.Bilinear[r] = make([]*mat.SymDense, m)
		for s := r + 1; s < m; s++ {
			h.Bilinear[r][s], err = symmetricFrom(n, fmt.Sprintf("beta[:,:,%d,%d]", r, s), func(i, j int) float64 {
				return p.Beta[i][j][r][s] + p.Beta[i][j][s][r]
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

func checkShape(name string, t [][][]float64, n, m int) error {
	if len(t) != n {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalid, name, len(t), n)
	}
	for i := range t {
		if len(t[i]) != n {
			return fmt.Errorf("%w: %s[%d] has %d entries, want %d", ErrInvalid, name, i, len(t[i]), n)
		}
		for j := range t[i] {
			if len(t[i][j]) != m {
				return fmt.Errorf("%w: %s[%d][%d] has %d modes, want %d", ErrInvalid, name, i, j, len(t[i][j]), m)
			}
		}
	}
	return nil
}

func checkShape4(name string, t [][][][]float64, n, m int) error {
	if len(t) != n {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalid, name, len(t), n)
	}
	for i := range t {
		if len(t[i]) != n {
			return fmt.Errorf("%w: %s[%d] has %d entries, want %d", ErrInvalid, name, i, len(t[i]), n)
		}
		for j := range t[i] {
			if len(t[i][j]) != m {
				return fmt.Errorf("%w: %s[%d][%d] has %d modes, want %d", ErrInvalid, name, i, j, len(t[i][j]), m)
			}
			for r := range t[i][j] {
				if len(t[i][j][r]) != m {
					return fmt.Errorf("%w: %s[%d][%d][%d] has %d modes, want %d", ErrInvalid, name, i, j, r, len(t[i][j][r]), m)
				}
			}
		}
	}
	return nil
}

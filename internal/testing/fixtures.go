package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/vibronic/internal/modules/hamiltonian"
)

// NO4AMonomerShape returns a dense synthetic Hamiltonian with the shape of the
// no4a_monomer model: 5 electronic states and 19 vibrational modes.
func NO4AMonomerShape() *hamiltonian.Hamiltonian {
	return hamiltonian.Synthetic("no4a_monomer", 5, 19, 1)
}

// SmallHamiltonian returns a dense 2-state, 3-mode Hamiltonian.
func SmallHamiltonian() *hamiltonian.Hamiltonian {
	return hamiltonian.Synthetic("toy", 2, 3, 2)
}

// WriteParameterFile encodes h into dir as <molecule>.msgpack.
func WriteParameterFile(t *testing.T, dir string, h *hamiltonian.Hamiltonian) string {
	t.Helper()

	path := filepath.Join(dir, h.Molecule+hamiltonian.FileExtension)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create parameter file: %v", err)
	}
	defer f.Close()

	if err := hamiltonian.Encode(f, h); err != nil {
		t.Fatalf("Failed to encode parameter file: %v", err)
	}
	return path
}

// NormRows are the default norm-table fixture rows.
var NormRows = []string{
	"no4a_monomer,16,19,original,0.8732",
	"no4a_monomer,16,19,modebased,0.4121",
	"toy,16,3,original,0.05",
}

// WriteNormTable writes a norm CSV with the given rows into dir.
func WriteNormTable(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()

	content := "molecule,d,modes,scheme,norm\n" + strings.Join(rows, "\n") + "\n"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write norm table: %v", err)
	}
	return path
}

// NewDataDir writes both default fixtures and the default norm table into a
// fresh temporary directory.
func NewDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteParameterFile(t, dir, NO4AMonomerShape())
	WriteParameterFile(t, dir, SmallHamiltonian())
	WriteNormTable(t, dir, "trotter_norms.csv", NormRows...)
	return dir
}

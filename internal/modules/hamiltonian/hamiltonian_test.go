package hamiltonian

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"
)

func TestSynthetic_IsValidAndReproducible(t *testing.T) {
	a := Synthetic("test", 5, 19, 7)
	b := Synthetic("test", 5, 19, 7)

	require.NoError(t, a.Validate())
	assert.Equal(t, 5, a.States)
	assert.Equal(t, 19, a.Modes)
	assert.Len(t, a.Omega, 19)
	assert.Equal(t, a.Omega, b.Omega)
	assert.True(t, mat.Equal(a.Bilinear[3][11], b.Bilinear[3][11]))
	assert.Nil(t, a.Bilinear[11][3])
}

func TestValidate_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *Hamiltonian)
	}{
		{"no states", func(h *Hamiltonian) { h.States = 0 }},
		{"no modes", func(h *Hamiltonian) { h.Modes = 0 }},
		{"omega length", func(h *Hamiltonian) { h.Omega = h.Omega[:1] }},
		{"negative omega", func(h *Hamiltonian) { h.Omega[0] = -1 }},
		{"nan coupling", func(h *Hamiltonian) { h.Linear[1].SetSym(0, 1, math.NaN()) }},
		{"wrong dimension", func(h *Hamiltonian) { h.Quadratic[0] = mat.NewSymDense(2, nil) }},
		{"missing bilinear", func(h *Hamiltonian) { h.Bilinear[0][1] = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Synthetic("bad", 3, 3, 1)
			tt.mutate(h)
			err := h.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestBilinearAt_IsSymmetricInModes(t *testing.T) {
	h := Synthetic("test", 3, 4, 2)
	assert.Equal(t, h.BilinearAt(0, 2, 1, 3), h.BilinearAt(0, 2, 3, 1))
	assert.Equal(t, h.BilinearAt(0, 2, 1, 3), h.BilinearAt(2, 0, 1, 3))
	assert.Zero(t, h.BilinearAt(0, 1, 2, 2))
}

func TestOneNorm(t *testing.T) {
	h := &Hamiltonian{
		States:    2,
		Modes:     1,
		Omega:     []float64{0.4},
		Linear:    []*mat.SymDense{mat.NewSymDense(2, []float64{1, -2, -2, 3})},
		Quadratic: []*mat.SymDense{mat.NewSymDense(2, []float64{0.5, 0, 0, 0})},
		Bilinear:  [][]*mat.SymDense{{nil}},
	}
	require.NoError(t, h.Validate())
	// 0.4/2 + (1+2+2+3) + 0.5
	assert.InDelta(t, 8.7, h.OneNorm(), 1e-12)
}

func TestEncodeDecode_PreservesCouplings(t *testing.T) {
	h := Synthetic("pyrazine", 3, 4, 11)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, h))

	got, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, h.Molecule, got.Molecule)
	assert.Equal(t, h.Omega, got.Omega)
	assert.True(t, mat.EqualApprox(h.Energies, got.Energies, 1e-15))
	for r := 0; r < h.Modes; r++ {
		assert.True(t, mat.EqualApprox(h.Linear[r], got.Linear[r], 1e-15))
		assert.True(t, mat.EqualApprox(h.Quadratic[r], got.Quadratic[r], 1e-15))
		for s := r + 1; s < h.Modes; s++ {
			assert.True(t, mat.EqualApprox(h.Bilinear[r][s], got.Bilinear[r][s], 1e-15))
		}
	}
	assert.InDelta(t, h.OneNorm(), got.OneNorm(), 1e-9)
}

// fullFile builds a 2-state, 2-mode parameter file with a full beta tensor.
func fullFile() parameterFile {
	return parameterFile{
		Molecule: "toy",
		States:   2,
		Modes:    2,
		Omega:    []float64{0.1, 0.2},
		Lambda:   [][][]float64{{{1, 2}, {3, 4}}, {{3, 4}, {5, 6}}},
		Alpha:    [][][]float64{{{0.1, 0.2}, {0, 0}}, {{0, 0}, {0.3, 0.4}}},
		Beta: [][][][]float64{
			{{{0.5, 0.01}, {0.02, 0}}, {{0, 0}, {0, 0}}},
			{{{0, 0}, {0, 0}}, {{0, 0.03}, {0.04, 0}}},
		},
	}
}

func encodeFile(t *testing.T, p parameterFile) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&p))
	return &buf
}

func TestDecode_FoldsFullBetaTensor(t *testing.T) {
	h, err := Decode(encodeFile(t, fullFile()))
	require.NoError(t, err)

	assert.Nil(t, h.Energies)
	// β_00,00 folds into α_00,0.
	assert.InDelta(t, 0.6, h.Quadratic[0].At(0, 0), 1e-12)
	// β_00,01 + β_00,10
	assert.InDelta(t, 0.03, h.Bilinear[0][1].At(0, 0), 1e-12)
	assert.InDelta(t, 0.07, h.Bilinear[0][1].At(1, 1), 1e-12)
	assert.Equal(t, 3.0, h.Linear[0].At(0, 1))
}

func TestDecode_RejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *parameterFile)
	}{
		{"zero states", func(p *parameterFile) { p.States = 0 }},
		{"short lambda", func(p *parameterFile) { p.Lambda = p.Lambda[:1] }},
		{"short alpha modes", func(p *parameterFile) { p.Alpha[0][0] = []float64{1} }},
		{"short beta", func(p *parameterFile) { p.Beta[1][1][0] = []float64{0} }},
		{"asymmetric lambda", func(p *parameterFile) { p.Lambda[0][1][0] = 9 }},
		{"ragged energies", func(p *parameterFile) { p.Energies = [][]float64{{1, 0}, {0}} }},
		{"omega mismatch", func(p *parameterFile) { p.Omega = []float64{0.1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fullFile()
			tt.mutate(&p)
			_, err := Decode(encodeFile(t, p))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("not msgpack"))
	assert.Error(t, err)
}

func TestLoader_LoadsFromFileSource(t *testing.T) {
	dir := t.TempDir()
	h := Synthetic("no4a_monomer", 5, 19, 1)

	f, err := os.Create(filepath.Join(dir, "no4a_monomer.msgpack"))
	require.NoError(t, err)
	require.NoError(t, Encode(f, h))
	require.NoError(t, f.Close())

	loader := NewLoader(NewFileSource(dir), zerolog.Nop())
	got, err := loader.Load(context.Background(), "no4a_monomer")
	require.NoError(t, err)
	assert.Equal(t, 5, got.States)
	assert.Equal(t, 19, got.Modes)
	assert.Equal(t, "no4a_monomer", got.Molecule)
}

func TestLoader_MissingMolecule(t *testing.T) {
	loader := NewLoader(NewFileSource(t.TempDir()), zerolog.Nop())

	_, err := loader.Load(context.Background(), "nothing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = loader.Load(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrInvalid))
}

type memorySource map[string][]byte

func (m memorySource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m memorySource) Describe(name string) string { return "mem:" + name }

func TestLoader_FillsMissingMoleculeName(t *testing.T) {
	p := fullFile()
	p.Molecule = ""
	src := memorySource{"toy.msgpack": encodeFile(t, p).Bytes()}

	got, err := NewLoader(src, zerolog.Nop()).Load(context.Background(), "toy")
	require.NoError(t, err)
	assert.Equal(t, "toy", got.Molecule)
}

func TestFileSource_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource(t.TempDir()).Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestS3Source_KeyAndDescribe(t *testing.T) {
	s := &S3Source{bucket: "data", prefix: "vibronic/params"}
	assert.Equal(t, "vibronic/params/no4a.msgpack", s.key("no4a.msgpack"))
	assert.Equal(t, "s3://data/vibronic/params/no4a.msgpack", s.Describe("no4a.msgpack"))
}

func TestAsNotExist_MapsMissingObjects(t *testing.T) {
	missing := fmt.Errorf("operation error S3: GetObject: %w", &types.NoSuchKey{})
	assert.ErrorIs(t, asNotExist(missing), fs.ErrNotExist)
	assert.ErrorIs(t, asNotExist(missing), os.ErrNotExist)

	head := fmt.Errorf("operation error S3: HeadObject: %w", &types.NotFound{})
	assert.ErrorIs(t, asNotExist(head), fs.ErrNotExist)

	denied := errors.New("access denied")
	assert.Equal(t, denied, asNotExist(denied))
}

func TestS3Source_MissingObjectIsNotExist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
	}))
	defer server.Close()

	src, err := NewS3Source(context.Background(), S3Config{
		Bucket:          "data",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}, zerolog.Nop())
	require.NoError(t, err)

	_, err = src.Open(context.Background(), "trotter_norms.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewS3Source_RequiresBucket(t *testing.T) {
	_, err := NewS3Source(context.Background(), S3Config{}, zerolog.Nop())
	assert.Error(t, err)
}

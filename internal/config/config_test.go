package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"VIBRONIC_DATA_DIR", "VIBRONIC_NORMS_FILE", "VIBRONIC_LEDGER_PATH",
		"VIBRONIC_MODE_BITS", "VIBRONIC_COEFF_BITS", "VIBRONIC_TIME", "VIBRONIC_REQ_ERROR", "VIBRONIC_S3_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, "trotter_norms.csv", cfg.NormsFile)
	assert.Empty(t, cfg.LedgerPath)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, RunDefaults{ModeBits: 4, CoeffBits: 20, Time: 152, ReqError: 0.01}, cfg.Defaults)
	assert.Equal(t, filepath.Join(cfg.DataDir, "trotter_norms.csv"), cfg.NormsPath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIBRONIC_DATA_DIR", dir)
	t.Setenv("VIBRONIC_NORMS_FILE", "/srv/norms.csv")
	t.Setenv("VIBRONIC_MODE_BITS", "5")
	t.Setenv("VIBRONIC_COEFF_BITS", "24")
	t.Setenv("VIBRONIC_TIME", "100.5")
	t.Setenv("VIBRONIC_REQ_ERROR", "0.001")
	t.Setenv("VIBRONIC_S3_BUCKET", "molecules")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "/srv/norms.csv", cfg.NormsPath())
	assert.Equal(t, RunDefaults{ModeBits: 5, CoeffBits: 24, Time: 100.5, ReqError: 0.001}, cfg.Defaults)
	assert.True(t, cfg.S3.Enabled())
	assert.False(t, cfg.LogPretty)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("VIBRONIC_MODE_BITS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnparseableValuesFallBack(t *testing.T) {
	t.Setenv("VIBRONIC_MODE_BITS", "four")
	t.Setenv("VIBRONIC_REQ_ERROR", "tiny")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Defaults.ModeBits)
	assert.Equal(t, 0.01, cfg.Defaults.ReqError)
}

func TestRunDefaults_Validate(t *testing.T) {
	ok := RunDefaults{ModeBits: 4, CoeffBits: 20, Time: 152, ReqError: 0.01}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name   string
		mutate func(d *RunDefaults)
	}{
		{"mode bits too large", func(d *RunDefaults) { d.ModeBits = 17 }},
		{"no coeff bits", func(d *RunDefaults) { d.CoeffBits = 0 }},
		{"negative time", func(d *RunDefaults) { d.Time = -1 }},
		{"zero error", func(d *RunDefaults) { d.ReqError = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ok
			tt.mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPresets(t *testing.T) {
	path := writePresets(t, `
defaults:
  coeff_bits: 22
runs:
  - molecule: no4a_monomer
    scheme: original
  - name: dimer-fine
    molecule: no4a_dimer
    scheme: modebased
    mode_bits: 5
    req_error: 0.001
    norm: 1.25
    initial_method: unitary
    swap_depth: 4
    electronic_state: 2
`)
	base := RunDefaults{ModeBits: 4, CoeffBits: 20, Time: 152, ReqError: 0.01}

	presets, err := LoadPresets(path, base)
	require.NoError(t, err)
	require.Len(t, presets, 2)

	first := presets[0]
	assert.Equal(t, "no4a_monomer", first.Name)
	assert.Equal(t, 4, first.ModeBits)
	assert.Equal(t, 22, first.CoeffBits)
	assert.Equal(t, 152.0, first.Time)
	assert.Equal(t, 0.01, first.ReqError)

	second := presets[1]
	assert.Equal(t, "dimer-fine", second.Name)
	assert.Equal(t, "modebased", second.Scheme)
	assert.Equal(t, 5, second.ModeBits)
	assert.Equal(t, 22, second.CoeffBits)
	assert.Equal(t, 0.001, second.ReqError)
	assert.Equal(t, 1.25, second.Norm)
	assert.Equal(t, "unitary", second.InitialMethod)
	assert.Equal(t, 4, second.SwapDepth)
	assert.Equal(t, 2, second.ElectronicState)
	assert.Zero(t, first.SwapDepth)
	assert.Zero(t, first.ElectronicState)
}

func TestLoadPresets_Errors(t *testing.T) {
	base := RunDefaults{ModeBits: 4, CoeffBits: 20, Time: 152, ReqError: 0.01}

	tests := []struct {
		name    string
		content string
	}{
		{"no runs", "runs: []\n"},
		{"no molecule", "runs:\n  - scheme: original\n"},
		{"bad bits", "runs:\n  - molecule: x\n    mode_bits: 40\n"},
		{"negative norm", "runs:\n  - molecule: x\n    norm: -1\n"},
		{"negative swap depth", "runs:\n  - molecule: x\n    swap_depth: -2\n"},
		{"negative state", "runs:\n  - molecule: x\n    electronic_state: -1\n"},
		{"not yaml", "runs: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPresets(writePresets(t, tt.content), base)
			assert.Error(t, err)
		})
	}

	_, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml"), base)
	assert.Error(t, err)
}

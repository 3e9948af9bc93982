package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is one named estimate run. Zero fields fall back to RunDefaults.
type Preset struct {
	Name            string  `yaml:"name"`
	Molecule        string  `yaml:"molecule"`
	Scheme          string  `yaml:"scheme"`
	ModeBits        int     `yaml:"mode_bits"`
	CoeffBits       int     `yaml:"coeff_bits"`
	Time            float64 `yaml:"time"`
	ReqError        float64 `yaml:"req_error"`
	Norm            float64 `yaml:"norm"` // overrides the norm table when > 0
	InitialMethod   string  `yaml:"initial_method"`
	Tolerance       float64 `yaml:"tolerance"`
	SwapDepth       int     `yaml:"swap_depth"` // 0 picks the optimal QROM depth
	ElectronicState int     `yaml:"electronic_state"`
}

// PresetFile is the top-level YAML document.
type PresetFile struct {
	Defaults *RunDefaults `yaml:"defaults"`
	Runs     []Preset     `yaml:"runs"`
}

// LoadPresets reads a YAML preset file and fills unset fields from defaults.
// A defaults block inside the file takes precedence over the given defaults.
func LoadPresets(path string, defaults RunDefaults) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	if file.Defaults != nil {
		defaults = mergeDefaults(defaults, *file.Defaults)
	}
	if len(file.Runs) == 0 {
		return nil, fmt.Errorf("preset file %s has no runs", path)
	}

	for i := range file.Runs {
		p := &file.Runs[i]
		p.Molecule = strings.TrimSpace(p.Molecule)
		if p.Molecule == "" {
			return nil, fmt.Errorf("preset %d has no molecule", i)
		}
		if p.Name == "" {
			p.Name = p.Molecule
		}
		p.applyDefaults(defaults)
		if err := p.defaults().Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		if p.Norm < 0 || p.Tolerance < 0 {
			return nil, fmt.Errorf("preset %s: norm and tolerance must not be negative", p.Name)
		}
		if p.SwapDepth < 0 || p.ElectronicState < 0 {
			return nil, fmt.Errorf("preset %s: swap_depth and electronic_state must not be negative", p.Name)
		}
	}
	return file.Runs, nil
}

func mergeDefaults(base, override RunDefaults) RunDefaults {
	if override.ModeBits != 0 {
		base.ModeBits = override.ModeBits
	}
	if override.CoeffBits != 0 {
		base.CoeffBits = override.CoeffBits
	}
	if override.Time != 0 {
		base.Time = override.Time
	}
	if override.ReqError != 0 {
		base.ReqError = override.ReqError
	}
	return base
}

func (p *Preset) applyDefaults(d RunDefaults) {
	merged := mergeDefaults(d, p.defaults())
	p.ModeBits = merged.ModeBits
	p.CoeffBits = merged.CoeffBits
	p.Time = merged.Time
	p.ReqError = merged.ReqError
}

func (p *Preset) defaults() RunDefaults {
	return RunDefaults{ModeBits: p.ModeBits, CoeffBits: p.CoeffBits, Time: p.Time, ReqError: p.ReqError}
}

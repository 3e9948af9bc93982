package main

import (
	"fmt"

	"github.com/aristath/vibronic/internal/config"
	"github.com/aristath/vibronic/internal/modules/estimation"
	"github.com/aristath/vibronic/internal/utils"
	"github.com/spf13/cobra"
)

// requestFlags are the estimate parameters shared by estimate, templates and fragments.
type requestFlags struct {
	molecules     string
	scheme        string
	modeBits      int
	coeffBits     int
	swapDepth     int
	time          float64
	reqError      float64
	norm          float64
	initialMethod string
	state         int
	tolerance     float64
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.molecules, "mol", "", "Molecule name, or a comma-separated list")
	fl.StringVar(&f.scheme, "scheme", "original", "Fragmentation scheme, original or modebased, or a comma-separated list")
	fl.IntVar(&f.modeBits, "k", 0, "Qubits per vibrational mode (default $VIBRONIC_MODE_BITS)")
	fl.IntVar(&f.coeffBits, "b", 0, "Coefficient precision in bits (default $VIBRONIC_COEFF_BITS)")
	fl.IntVar(&f.swapDepth, "swap-depth", 0, "QROM swap depth, 0 picks the optimum")
	fl.Float64Var(&f.time, "time", 0, "Simulated time (default $VIBRONIC_TIME)")
	fl.Float64Var(&f.reqError, "req-error", 0, "Target Trotter error (default $VIBRONIC_REQ_ERROR)")
	fl.Float64Var(&f.norm, "norm", 0, "Trotter-error norm, overrides the norm table")
	fl.StringVar(&f.initialMethod, "init", "qrom", "Vibrational ground-state preparation: qrom or unitary")
	fl.IntVar(&f.state, "state", 0, "Initial electronic basis state")
	fl.Float64Var(&f.tolerance, "tolerance", 0, "Drop coefficients whose magnitude is at or below this")
}

// requests expands --mol and --scheme into one request per combination.
func (f *requestFlags) requests(d config.RunDefaults) ([]estimation.Request, error) {
	molecules := utils.ParseCSV(f.molecules)
	if len(molecules) == 0 {
		return nil, fmt.Errorf("--mol is required")
	}

	schemes := utils.ParseCSV(f.scheme)
	if len(schemes) == 0 {
		schemes = []string{""}
	}

	base := estimation.Request{
		ModeBits:        orInt(f.modeBits, d.ModeBits),
		CoeffBits:       orInt(f.coeffBits, d.CoeffBits),
		SwapDepth:       f.swapDepth,
		Time:            orFloat(f.time, d.Time),
		ReqError:        orFloat(f.reqError, d.ReqError),
		NormOverride:    f.norm,
		InitialMethod:   f.initialMethod,
		ElectronicState: f.state,
		Tolerance:       f.tolerance,
	}

	out := make([]estimation.Request, 0, len(molecules)*len(schemes))
	for _, mol := range molecules {
		for _, scheme := range schemes {
			req := base
			req.Molecule = mol
			req.Scheme = scheme
			out = append(out, req)
		}
	}
	return out, nil
}

// fromPreset turns a loaded preset into a request.
func fromPreset(p config.Preset) estimation.Request {
	return estimation.Request{
		Molecule:        p.Molecule,
		Scheme:          p.Scheme,
		ModeBits:        p.ModeBits,
		CoeffBits:       p.CoeffBits,
		Time:            p.Time,
		ReqError:        p.ReqError,
		NormOverride:    p.Norm,
		InitialMethod:   p.InitialMethod,
		Tolerance:       p.Tolerance,
		SwapDepth:       p.SwapDepth,
		ElectronicState: p.ElectronicState,
	}
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func orFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}

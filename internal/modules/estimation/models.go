package estimation

import (
	"fmt"
	"math"

	"github.com/aristath/vibronic/internal/modules/fragments"
	"github.com/aristath/vibronic/internal/modules/resources"
	"github.com/aristath/vibronic/internal/modules/templates"
	"github.com/aristath/vibronic/internal/modules/trotter"
)

// Request describes one estimate.
type Request struct {
	Molecule        string
	Scheme          string
	ModeBits        int
	CoeffBits       int
	SwapDepth       int // 0 picks the Toffoli-optimal QROM depth
	Time            float64
	ReqError        float64
	NormOverride    float64 // used instead of the norm table when > 0
	InitialMethod   string  // "qrom" (default) or "unitary"
	ElectronicState int     // initial electronic basis state
	Tolerance       float64 // coefficients at or below this are dropped
}

// Validate checks the request before any data is loaded.
func (r Request) Validate() error {
	if r.Molecule == "" {
		return fmt.Errorf("%w: molecule is required", ErrInvalidRequest)
	}
	if r.ModeBits < 1 || r.ModeBits > 16 {
		return fmt.Errorf("%w: mode bits %d", ErrInvalidRequest, r.ModeBits)
	}
	if r.CoeffBits < 1 || r.CoeffBits > 62 {
		return fmt.Errorf("%w: coefficient bits %d", ErrInvalidRequest, r.CoeffBits)
	}
	if r.NormOverride < 0 || math.IsNaN(r.NormOverride) {
		return fmt.Errorf("%w: norm override %v", ErrInvalidRequest, r.NormOverride)
	}
	return nil
}

// TemplateCost is one template's unit cost.
type TemplateCost struct {
	Name templates.Name     `msgpack:"name"`
	Cost resources.Estimate `msgpack:"cost"`
}

// FragmentCost is one fragment's cost per application.
type FragmentCost struct {
	Fragment fragments.Fragment `msgpack:"fragment"`
	Cost     resources.Estimate `msgpack:"cost"`
}

// NormSource says where a report's norm came from.
type NormSource string

const (
	NormFromTable    NormSource = "table"
	NormFromOverride NormSource = "override"
)

// Report is the full result of an estimate.
type Report struct {
	ID         string                `msgpack:"id"`
	Molecule   string                `msgpack:"molecule"`
	Scheme     fragments.Scheme      `msgpack:"scheme"`
	States     int                   `msgpack:"states"`
	Modes      int                   `msgpack:"modes"`
	ModeBits   int                   `msgpack:"mode_bits"`
	CoeffBits  int                   `msgpack:"coeff_bits"`
	OneNorm    float64               `msgpack:"one_norm"`
	Templates  []TemplateCost        `msgpack:"templates"`
	Fragments  []FragmentCost        `msgpack:"fragments"`
	Schedule   []trotter.Application `msgpack:"schedule"`
	StepCost   resources.Estimate    `msgpack:"step_cost"`
	Norm       float64               `msgpack:"norm"`
	NormSource NormSource            `msgpack:"norm_source"`
	Time       float64               `msgpack:"time"`
	ReqError   float64               `msgpack:"req_error"`
	Steps      int64                 `msgpack:"steps"`
	Initial    resources.Estimate    `msgpack:"initial"`
	Total      resources.Estimate    `msgpack:"total"`
}

// Template returns the unit cost of the named template.
func (r *Report) Template(name templates.Name) (resources.Estimate, bool) {
	for _, t := range r.Templates {
		if t.Name == name {
			return t.Cost, true
		}
	}
	return resources.Estimate{}, false
}

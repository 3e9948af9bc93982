// Package estimation runs the full resource estimate for one molecule: it loads
// the Hamiltonian, costs the templates and fragments, schedules a Trotter step,
// derives the step count from the error norm and totals everything.
package estimation

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/vibronic/internal/modules/fragments"
	"github.com/aristath/vibronic/internal/modules/hamiltonian"
	"github.com/aristath/vibronic/internal/modules/norms"
	"github.com/aristath/vibronic/internal/modules/resources"
	"github.com/aristath/vibronic/internal/modules/runs"
	"github.com/aristath/vibronic/internal/modules/templates"
	"github.com/aristath/vibronic/internal/modules/trotter"
	"github.com/rs/zerolog"
)

// ErrInvalidRequest is returned for a request that fails validation.
var ErrInvalidRequest = errors.New("invalid estimate request")

// HamiltonianLoader loads a molecule's model.
type HamiltonianLoader interface {
	Load(ctx context.Context, molecule string) (*hamiltonian.Hamiltonian, error)
}

// NormLookup finds a precomputed Trotter-error norm.
type NormLookup interface {
	Lookup(key norms.Key) (float64, bool)
}

// Recorder persists finished runs.
type Recorder interface {
	Save(ctx context.Context, run *runs.Run) error
}

// Service computes resource estimates
type Service struct {
	loader   HamiltonianLoader
	norms    NormLookup
	recorder Recorder
	log      zerolog.Logger
}

// NewService creates an estimation service. A nil norm table means only norm
// overrides can be used; a nil recorder disables the run ledger.
func NewService(loader HamiltonianLoader, normTable NormLookup, recorder Recorder, log zerolog.Logger) *Service {
	return &Service{
		loader:   loader,
		norms:    normTable,
		recorder: recorder,
		log:      log.With().Str("service", "estimation").Logger(),
	}
}

// model is the molecule-dependent part shared by every operation.
type model struct {
	h      *hamiltonian.Hamiltonian
	params templates.Params
	scheme fragments.Scheme
	method templates.Method
}

func (s *Service) prepare(ctx context.Context, req Request) (*model, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	scheme, err := fragments.ParseScheme(req.Scheme)
	if err != nil {
		return nil, err
	}
	method, err := templates.ParseMethod(req.InitialMethod)
	if err != nil {
		return nil, err
	}

	h, err := s.loader.Load(ctx, req.Molecule)
	if err != nil {
		return nil, err
	}

	params := templates.Params{
		States:    h.States,
		Modes:     h.Modes,
		ModeBits:  req.ModeBits,
		CoeffBits: req.CoeffBits,
		SwapDepth: req.SwapDepth,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &model{h: h, params: params, scheme: scheme, method: method}, nil
}

// Templates returns the unit cost of every template for the molecule.
func (s *Service) Templates(ctx context.Context, req Request) ([]TemplateCost, error) {
	m, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.templates(req.ElectronicState)
}

func (m *model) templates(electronicState int) ([]TemplateCost, error) {
	units, err := m.params.Units()
	if err != nil {
		return nil, err
	}
	kinetic, err := m.params.Kinetic(m.h.Omega)
	if err != nil {
		return nil, err
	}
	initial, err := m.params.InitialState(m.method, electronicState)
	if err != nil {
		return nil, err
	}
	return []TemplateCost{
		{Name: templates.Constant, Cost: units.Constant},
		{Name: templates.Linear, Cost: units.Linear},
		{Name: templates.Quadratic, Cost: units.Quadratic},
		{Name: templates.Bilinear, Cost: units.Bilinear},
		{Name: templates.Kinetic, Cost: kinetic},
		{Name: templates.InitialState, Cost: initial},
	}, nil
}

// Fragments returns every fragment of the molecule with its cost.
func (s *Service) Fragments(ctx context.Context, req Request) ([]FragmentCost, error) {
	m, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	tmpl, err := m.templates(req.ElectronicState)
	if err != nil {
		return nil, err
	}
	return m.fragments(req.Tolerance, tmpl)
}

func (m *model) fragments(tolerance float64, tmpl []TemplateCost) ([]FragmentCost, error) {
	frags, err := fragments.Build(m.h, m.scheme, tolerance)
	if err != nil {
		return nil, err
	}

	byName := make(map[templates.Name]resources.Estimate, len(tmpl))
	for _, t := range tmpl {
		byName[t.Name] = t.Cost
	}
	units := templates.Units{
		Constant:  byName[templates.Constant],
		Linear:    byName[templates.Linear],
		Quadratic: byName[templates.Quadratic],
		Bilinear:  byName[templates.Bilinear],
	}

	out := make([]FragmentCost, len(frags))
	for i, f := range frags {
		out[i] = FragmentCost{Fragment: f, Cost: fragments.Cost(f, units, byName[templates.Kinetic])}
	}
	return out, nil
}

// Norm returns the Trotter-error norm for the request, preferring an override.
func (s *Service) Norm(req Request, modes int, scheme fragments.Scheme) (float64, NormSource, error) {
	if req.NormOverride > 0 {
		return req.NormOverride, NormFromOverride, nil
	}
	key := norms.Key{
		Molecule: req.Molecule,
		D:        1 << req.ModeBits,
		Modes:    modes,
		Scheme:   string(scheme),
	}
	if s.norms == nil {
		return 0, "", fmt.Errorf("%w: %s (no norm table loaded)", norms.ErrNormNotFound, key)
	}
	norm, ok := s.norms.Lookup(key)
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", norms.ErrNormNotFound, key)
	}
	return norm, NormFromTable, nil
}

// Estimate runs the whole pipeline and records the result when a ledger is configured.
func (s *Service) Estimate(ctx context.Context, req Request) (*Report, error) {
	m, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	tmpl, err := m.templates(req.ElectronicState)
	if err != nil {
		return nil, err
	}
	frags, err := m.fragments(req.Tolerance, tmpl)
	if err != nil {
		return nil, err
	}

	costs := make([]trotter.FragmentCost, len(frags))
	for i, f := range frags {
		costs[i] = trotter.FragmentCost{Name: f.Fragment.Name, Cost: f.Cost}
	}
	schedule := trotter.Schedule(costs)
	step := trotter.StepCost(schedule)

	norm, source, err := s.Norm(req, m.h.Modes, m.scheme)
	if err != nil {
		return nil, err
	}
	steps, err := trotter.NumSteps(norm, req.ReqError, req.Time)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Molecule:   m.h.Molecule,
		Scheme:     m.scheme,
		States:     m.h.States,
		Modes:      m.h.Modes,
		ModeBits:   req.ModeBits,
		CoeffBits:  req.CoeffBits,
		OneNorm:    m.h.OneNorm(),
		Templates:  tmpl,
		Fragments:  frags,
		Schedule:   schedule,
		StepCost:   step,
		Norm:       norm,
		NormSource: source,
		Time:       req.Time,
		ReqError:   req.ReqError,
		Steps:      steps,
	}
	report.Initial, _ = report.Template(templates.InitialState)
	if report.Total, err = trotter.Total(report.Initial, step, steps); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("molecule", report.Molecule).
		Str("scheme", string(report.Scheme)).
		Int("fragments", len(frags)).
		Int64("steps", steps).
		Int64("total_toffoli", report.Total.Toffolis()).
		Int("total_qubits", report.Total.Qubits()).
		Msg("Estimate complete")

	if s.recorder != nil {
		if err := s.record(ctx, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (s *Service) record(ctx context.Context, report *Report) error {
	encoded, err := EncodeReport(report)
	if err != nil {
		return err
	}

	run := &runs.Run{
		Molecule:     report.Molecule,
		Scheme:       string(report.Scheme),
		ModeBits:     report.ModeBits,
		CoeffBits:    report.CoeffBits,
		States:       report.States,
		Modes:        report.Modes,
		Time:         report.Time,
		ReqError:     report.ReqError,
		Norm:         report.Norm,
		Steps:        report.Steps,
		StepToffoli:  report.StepCost.Toffolis(),
		TotalToffoli: report.Total.Toffolis(),
		TotalQubits:  report.Total.Qubits(),
		Report:       encoded,
	}
	for _, app := range report.Schedule {
		run.Fragments = append(run.Fragments, runs.FragmentRow{
			Name:    app.Name,
			Times:   app.Times,
			Toffoli: app.Cost.Toffolis(),
			Qubits:  app.Cost.Qubits(),
		})
	}

	if err := s.recorder.Save(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	report.ID = run.ID
	return nil
}

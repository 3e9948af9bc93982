package estimation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aristath/vibronic/internal/modules/fragments"
	"github.com/aristath/vibronic/internal/modules/hamiltonian"
	"github.com/aristath/vibronic/internal/modules/norms"
	"github.com/aristath/vibronic/internal/modules/resources"
	"github.com/aristath/vibronic/internal/modules/runs"
	"github.com/aristath/vibronic/internal/modules/templates"
	"github.com/aristath/vibronic/internal/modules/trotter"
	testingpkg "github.com/aristath/vibronic/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRecorder is a mock implementation of Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Save(ctx context.Context, run *runs.Run) error {
	args := m.Called(ctx, run)
	if args.Error(0) == nil {
		run.ID = "run-1"
	}
	return args.Error(0)
}

func newSource(t *testing.T, hs ...*hamiltonian.Hamiltonian) *testingpkg.MockSource {
	t.Helper()
	src := testingpkg.NewMockSource()
	for _, h := range hs {
		var buf bytes.Buffer
		require.NoError(t, hamiltonian.Encode(&buf, h))
		src.Put(h.Molecule+hamiltonian.FileExtension, buf.Bytes())
	}
	return src
}

func newNormTable(t *testing.T) *norms.Table {
	t.Helper()
	csv := "molecule,d,modes,scheme,norm\n" + strings.Join(testingpkg.NormRows, "\n")
	table, err := norms.Parse(strings.NewReader(csv), zerolog.Nop())
	require.NoError(t, err)
	return table
}

func newService(t *testing.T, recorder Recorder) *Service {
	t.Helper()
	src := newSource(t, testingpkg.NO4AMonomerShape(), testingpkg.SmallHamiltonian())
	loader := hamiltonian.NewLoader(src, zerolog.Nop())
	return NewService(loader, newNormTable(t), recorder, zerolog.Nop())
}

func no4aRequest() Request {
	return Request{
		Molecule:  "no4a_monomer",
		Scheme:    "original",
		ModeBits:  4,
		CoeffBits: 20,
		Time:      4,
		ReqError:  0.25,
	}
}

func TestTemplates_RegressionCounts(t *testing.T) {
	tmpl, err := newService(t, nil).Templates(context.Background(), no4aRequest())
	require.NoError(t, err)
	require.Len(t, tmpl, 6)

	want := map[templates.Name]int64{
		templates.Constant:     25,
		templates.Linear:       146,
		templates.Quadratic:    272,
		templates.Bilinear:     310,
		templates.Kinetic:      5358,
		templates.InitialState: 19 * 168,
	}
	for _, tc := range tmpl {
		assert.Equal(t, want[tc.Name], tc.Cost.Toffolis(), string(tc.Name))
	}
	assert.Equal(t, 146, tmpl[4].Cost.Qubits())
}

func TestFragments_Counts(t *testing.T) {
	svc := newService(t, nil)

	original, err := svc.Fragments(context.Background(), no4aRequest())
	require.NoError(t, err)
	assert.Len(t, original, 9)

	req := no4aRequest()
	req.Scheme = "modebased"
	modeBased, err := svc.Fragments(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, modeBased, 28)
}

func TestEstimate_OriginalGroupingTotals(t *testing.T) {
	req := no4aRequest()
	req.NormOverride = 4

	report, err := newService(t, nil).Estimate(context.Background(), req)
	require.NoError(t, err)

	potential := int64(25 + 19*146 + 19*272 + 171*310)
	step := 14*potential + 2*5358

	assert.Equal(t, NormFromOverride, report.NormSource)
	assert.Equal(t, int64(32), report.Steps)
	assert.Equal(t, step, report.StepCost.Toffolis())
	assert.Equal(t, int64(3192)+32*step, report.Total.Toffolis())
	assert.Equal(t, 146, report.Total.Qubits())
	assert.Empty(t, report.ID)

	require.Len(t, report.Schedule, 9)
	assert.Equal(t, "class_0", report.Schedule[0].Name)
	assert.Equal(t, int64(1), report.Schedule[0].Times)
	assert.Equal(t, "class_1", report.Schedule[1].Name)
	assert.Equal(t, "kinetic", report.Schedule[8].Name)
	assert.Equal(t, int64(2), report.Schedule[8].Times)
}

func TestEstimate_AggregationOrderDoesNotMatter(t *testing.T) {
	req := no4aRequest()
	req.NormOverride = 1

	report, err := newService(t, nil).Estimate(context.Background(), req)
	require.NoError(t, err)

	reversed := make([]trotter.Application, len(report.Schedule))
	for i, app := range report.Schedule {
		reversed[len(reversed)-1-i] = app
	}
	assert.True(t, trotter.StepCost(reversed).Equal(report.StepCost))
}

func TestEstimate_UsesNormTable(t *testing.T) {
	req := Request{
		Molecule:  "toy",
		ModeBits:  4,
		CoeffBits: 20,
		Time:      152,
		ReqError:  0.01,
	}
	report, err := newService(t, nil).Estimate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, NormFromTable, report.NormSource)
	assert.Equal(t, 0.05, report.Norm)
	want, err := trotter.NumSteps(0.05, 0.01, 152)
	require.NoError(t, err)
	assert.Equal(t, want, report.Steps)
	assert.Equal(t, fragments.SchemeOriginal, report.Scheme)
}

func TestEstimate_MissingNorm(t *testing.T) {
	req := no4aRequest()
	req.ModeBits = 3

	_, err := newService(t, nil).Estimate(context.Background(), req)
	assert.True(t, errors.Is(err, norms.ErrNormNotFound))

	loader := hamiltonian.NewLoader(newSource(t, testingpkg.NO4AMonomerShape()), zerolog.Nop())
	_, err = NewService(loader, nil, nil, zerolog.Nop()).Estimate(context.Background(), no4aRequest())
	assert.True(t, errors.Is(err, norms.ErrNormNotFound))
}

func TestEstimate_RequestErrors(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *Request)
		target error
	}{
		{"no molecule", func(r *Request) { r.Molecule = "" }, ErrInvalidRequest},
		{"zero bits", func(r *Request) { r.ModeBits = 0 }, ErrInvalidRequest},
		{"negative override", func(r *Request) { r.NormOverride = -1 }, ErrInvalidRequest},
		{"unknown scheme", func(r *Request) { r.Scheme = "greedy" }, fragments.ErrUnknownScheme},
		{"unknown method", func(r *Request) { r.InitialMethod = "magic" }, templates.ErrUnknownMethod},
		{"bad error", func(r *Request) { r.NormOverride = 1; r.ReqError = 0 }, trotter.ErrInvalidInput},
		{"bad state", func(r *Request) { r.ElectronicState = 9 }, templates.ErrInvalidParams},
		{"bad tolerance", func(r *Request) { r.NormOverride = 1; r.Tolerance = -1 }, fragments.ErrInvalidTolerance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := no4aRequest()
			tt.mutate(&req)
			_, err := svc.Estimate(ctx, req)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	req := no4aRequest()
	req.Molecule = "unknown"
	_, err := svc.Estimate(ctx, req)
	assert.Error(t, err)
}

func TestEstimate_RecordsRun(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	repo := runs.NewRepository(db.Conn(), zerolog.Nop())
	svc := newService(t, repo)

	req := no4aRequest()
	req.Scheme = "mode_based"
	req.NormOverride = 2

	report, err := svc.Estimate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, report.ID)

	run, err := repo.Get(context.Background(), report.ID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "modebased", run.Scheme)
	assert.Equal(t, report.Total.Toffolis(), run.TotalToffoli)
	assert.Len(t, run.Fragments, 28)

	decoded, err := DecodeReport(run.Report)
	require.NoError(t, err)
	assert.Equal(t, report.Steps, decoded.Steps)
	assert.Equal(t, report.Total.Toffolis(), decoded.Total.Toffolis())
	assert.Len(t, decoded.Fragments, 28)
}

func TestEstimate_RecorderReceivesSchedule(t *testing.T) {
	recorder := new(MockRecorder)
	recorder.On("Save", mock.Anything, mock.MatchedBy(func(run *runs.Run) bool {
		return run.Molecule == "toy" && run.Scheme == "original" && len(run.Fragments) == 3 && len(run.Report) > 0
	})).Return(nil).Once()

	req := no4aRequest()
	req.Molecule = "toy"
	report, err := newService(t, recorder).Estimate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.ID)
	recorder.AssertExpectations(t)
}

func TestEstimate_RecorderError(t *testing.T) {
	recorder := new(MockRecorder)
	recorder.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := newService(t, recorder).Estimate(context.Background(), no4aRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record run")
	recorder.AssertExpectations(t)
}

func TestEstimate_RejectsOverflowingTotal(t *testing.T) {
	req := no4aRequest()
	req.Time = 152
	req.ReqError = 0.01
	req.NormOverride = 1e22

	report, err := newService(t, nil).Estimate(context.Background(), req)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, trotter.ErrInvalidInput), "got %v", err)
	assert.True(t, errors.Is(err, resources.ErrOverflow), "got %v", err)
}

func TestRender(t *testing.T) {
	req := no4aRequest()
	req.NormOverride = 4

	report, err := newService(t, nil).Estimate(context.Background(), req)
	require.NoError(t, err)

	var out bytes.Buffer
	Render(&out, report)
	text := out.String()

	assert.Contains(t, text, "no4a_monomer")
	assert.Contains(t, text, "5,358")
	assert.Contains(t, text, "class_7")
	assert.Contains(t, text, "Total qubits")
	assert.Contains(t, text, "9 fragments")
}

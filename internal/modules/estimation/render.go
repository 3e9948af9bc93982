package estimation

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aristath/vibronic/internal/modules/fragments"
	"github.com/aristath/vibronic/internal/modules/resources"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func count(n int64) string {
	return humanize.Comma(n)
}

func qubits(e resources.Estimate) string {
	return strconv.Itoa(e.Qubits())
}

// RenderTemplates prints one row per template.
func RenderTemplates(w io.Writer, tmpl []TemplateCost) {
	table := newTable(w, "Template", "Qubits", "Toffoli", "CNOT", "Hadamard")
	for _, t := range tmpl {
		table.Append([]string{
			string(t.Name),
			qubits(t.Cost),
			count(t.Cost.Toffolis()),
			count(t.Cost.Count(resources.CNOT)),
			count(t.Cost.Count(resources.Hadamard)),
		})
	}
	table.Render()
}

// RenderFragments prints one row per fragment with its term counts.
func RenderFragments(w io.Writer, frags []FragmentCost) {
	table := newTable(w, "Fragment", "Class", "Const", "Linear", "Quad", "Bilinear", "Qubits", "Toffoli")
	var toffoli int64
	for _, f := range frags {
		class := "-"
		if f.Fragment.Kind == fragments.KindPotential {
			class = strconv.Itoa(f.Fragment.Class)
		}
		terms := f.Fragment.Terms
		table.Append([]string{
			f.Fragment.Name,
			class,
			strconv.Itoa(terms.Constant),
			strconv.Itoa(terms.Linear),
			strconv.Itoa(terms.Quadratic),
			strconv.Itoa(terms.Bilinear),
			qubits(f.Cost),
			count(f.Cost.Toffolis()),
		})
		toffoli += f.Cost.Toffolis()
	}
	table.SetFooter([]string{"", "", "", "", "", strconv.Itoa(len(frags)) + " fragments", "", count(toffoli)})
	table.Render()
}

// Render prints the full report.
func Render(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Molecule %s: %d states, %d modes, k=%d (d=%d), b=%d, scheme %s\n",
		r.Molecule, r.States, r.Modes, r.ModeBits, 1<<r.ModeBits, r.CoeffBits, r.Scheme)
	fmt.Fprintf(w, "Hamiltonian 1-norm %.6g\n\n", r.OneNorm)

	RenderTemplates(w, r.Templates)
	fmt.Fprintln(w)
	RenderFragments(w, r.Fragments)
	fmt.Fprintln(w)

	schedule := newTable(w, "#", "Fragment", "Times", "Toffoli")
	for i, app := range r.Schedule {
		schedule.Append([]string{
			strconv.Itoa(i + 1),
			app.Name,
			strconv.FormatInt(app.Times, 10),
			count(app.Times * app.Cost.Toffolis()),
		})
	}
	schedule.SetFooter([]string{"", "", "step", count(r.StepCost.Toffolis())})
	schedule.Render()
	fmt.Fprintln(w)

	summary := newTable(w, "Quantity", "Value")
	summary.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	summary.AppendBulk([][]string{
		{"Trotter norm (" + string(r.NormSource) + ")", strconv.FormatFloat(r.Norm, 'g', 6, 64)},
		{"Time", strconv.FormatFloat(r.Time, 'g', -1, 64)},
		{"Required error", strconv.FormatFloat(r.ReqError, 'g', -1, 64)},
		{"Trotter steps", count(r.Steps)},
		{"Initial state Toffoli", count(r.Initial.Toffolis())},
		{"Step Toffoli", count(r.StepCost.Toffolis())},
		{"Total Toffoli", count(r.Total.Toffolis())},
		{"Total Toffoli (approx.)", humanize.SIWithDigits(float64(r.Total.Toffolis()), 2, "")},
		{"Total qubits", qubits(r.Total)},
	})
	summary.Render()

	if r.ID != "" {
		fmt.Fprintf(w, "\nRecorded as run %s\n", r.ID)
	}
}

package main

import (
	"fmt"
	"strconv"

	"github.com/aristath/vibronic/internal/modules/estimation"
	"github.com/aristath/vibronic/internal/modules/runs"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect estimates recorded in the ledger",
	}
	cmd.AddCommand(newRunsListCmd(root), newRunsShowCmd(root))
	return cmd
}

func ledger(a *app) (*runs.Repository, error) {
	repo, err := a.openLedger()
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("no ledger configured: set VIBRONIC_LEDGER_PATH or --ledger")
	}
	return repo, nil
}

func newRunsListCmd(root *rootOptions) *cobra.Command {
	var (
		molecule string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			repo, err := ledger(a)
			if err != nil {
				return err
			}
			list, err := repo.List(cmd.Context(), molecule, limit)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"ID", "Molecule", "Scheme", "k", "b", "Steps", "Toffoli", "Qubits", "Recorded"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			for _, r := range list {
				table.Append([]string{
					r.ID,
					r.Molecule,
					r.Scheme,
					strconv.Itoa(r.ModeBits),
					strconv.Itoa(r.CoeffBits),
					humanize.Comma(r.Steps),
					humanize.Comma(r.TotalToffoli),
					strconv.Itoa(r.TotalQubits),
					humanize.Time(r.CreatedAt),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&molecule, "mol", "", "Only runs of this molecule")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs, 0 for all")
	return cmd
}

func newRunsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the full report of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			repo, err := ledger(a)
			if err != nil {
				return err
			}
			run, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			report, err := estimation.DecodeReport(run.Report)
			if err != nil {
				return err
			}
			report.ID = run.ID
			estimation.Render(a.out, report)
			return nil
		},
	}
}

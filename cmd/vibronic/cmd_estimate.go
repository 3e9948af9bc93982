package main

import (
	"fmt"

	"github.com/aristath/vibronic/internal/config"
	"github.com/aristath/vibronic/internal/modules/estimation"
	"github.com/aristath/vibronic/internal/utils"
	"github.com/spf13/cobra"
)

func newEstimateCmd(root *rootOptions) *cobra.Command {
	var (
		flags  requestFlags
		preset string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the full Trotter simulation cost of one or more molecules",
		Example: `  vibronic estimate --mol no4a_monomer
  vibronic estimate --mol no4a_monomer,no4a_dimer --scheme modebased --k 5 --b 24
  vibronic estimate --preset runs.yaml --record`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app

			var reqs []estimation.Request
			if preset != "" {
				presets, err := config.LoadPresets(preset, a.cfg.Defaults)
				if err != nil {
					return err
				}
				for _, p := range presets {
					reqs = append(reqs, fromPreset(p))
				}
			} else {
				var err error
				if reqs, err = flags.requests(a.cfg.Defaults); err != nil {
					return err
				}
			}

			svc, err := a.service(cmd.Context(), record)
			if err != nil {
				return err
			}

			for i, req := range reqs {
				done := utils.OperationTimer("estimate "+req.Molecule, a.log)
				report, err := svc.Estimate(cmd.Context(), req)
				done()
				if err != nil {
					a.log.Error().Err(err).Str("molecule", req.Molecule).Msg("Estimate failed")
					return fmt.Errorf("failed to estimate %s: %w", req.Molecule, err)
				}
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				estimation.Render(a.out, report)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "YAML file listing runs; replaces --mol and the estimate flags")
	cmd.Flags().BoolVar(&record, "record", false, "Record every run in the ledger")
	return cmd
}

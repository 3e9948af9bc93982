package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aristath/vibronic/internal/modules/hamiltonian"
	"github.com/spf13/cobra"
)

func newSynthCmd(root *rootOptions) *cobra.Command {
	var (
		states int
		modes  int
		seed   uint64
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "synth <molecule>",
		Short: "Write a synthetic dense parameter file into the data directory",
		Long: `synth generates a reproducible Hamiltonian with every coupling non-zero and
writes it as <molecule>.msgpack in the data directory. Useful for scaling
studies and for exercising the estimator without real vibronic data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			if a.cfg.S3.Enabled() {
				return fmt.Errorf("synth writes to the local data directory, unset VIBRONIC_S3_BUCKET")
			}

			if states < 1 || modes < 1 {
				return fmt.Errorf("need at least one state and one mode, got %d and %d", states, modes)
			}
			h := hamiltonian.Synthetic(args[0], states, modes, seed)
			if err := h.Validate(); err != nil {
				return err
			}

			if err := os.MkdirAll(a.cfg.DataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			path := filepath.Join(a.cfg.DataDir, args[0]+hamiltonian.FileExtension)
			flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if !force {
				flag |= os.O_EXCL
			}
			f, err := os.OpenFile(path, flag, 0644)
			if err != nil {
				return fmt.Errorf("failed to create parameter file: %w", err)
			}
			if err := hamiltonian.Encode(f, h); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			a.log.Info().Str("path", path).Int("states", states).Int("modes", modes).Msg("Wrote synthetic parameter file")
			fmt.Fprintln(a.out, path)
			return nil
		},
	}
	cmd.Flags().IntVar(&states, "states", 5, "Number of electronic states")
	cmd.Flags().IntVar(&modes, "modes", 19, "Number of vibrational modes")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

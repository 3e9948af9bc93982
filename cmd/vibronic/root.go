package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	dataDir  string
	ledger   string
	logLevel string

	app *app
}

// close releases what the command opened.
func (o *rootOptions) close() {
	if o.app != nil {
		o.app.close()
	}
}

// execute runs one command line. The app is closed here rather than in a
// post-run hook, which cobra skips when the command fails.
func execute(ctx context.Context, opts *rootOptions, args []string, out, errOut io.Writer) error {
	defer opts.close()

	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibronic",
		Short: "Estimate qubits and Toffoli gates for Trotterized vibronic dynamics",
		Long: `vibronic estimates the fault-tolerant resources (logical qubits and Toffoli
gates) needed to simulate vibronic molecular dynamics with a second-order
Trotter product formula.

Configuration comes from the environment (VIBRONIC_*, LOG_LEVEL, AWS_*) or a
.env file; flags override it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory with parameter files and the norm table (default $VIBRONIC_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.ledger, "ledger", "", "sqlite run ledger path (default $VIBRONIC_LEDGER_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")

	cmd.AddCommand(
		newEstimateCmd(opts),
		newTemplatesCmd(opts),
		newFragmentsCmd(opts),
		newStepsCmd(opts),
		newRunsCmd(opts),
		newSynthCmd(opts),
	)
	return cmd
}

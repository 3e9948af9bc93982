package main

import (
	"fmt"

	"github.com/aristath/vibronic/internal/modules/estimation"
	"github.com/aristath/vibronic/internal/modules/fragments"
	"github.com/aristath/vibronic/internal/modules/trotter"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newTemplatesCmd(root *rootOptions) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Print the unit cost of every circuit template",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			reqs, err := flags.requests(a.cfg.Defaults)
			if err != nil {
				return err
			}

			svc := estimation.NewService(a.loader(), nil, nil, a.log)
			for _, req := range reqs {
				tmpl, err := svc.Templates(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("failed to cost templates for %s: %w", req.Molecule, err)
				}
				fmt.Fprintf(a.out, "%s (k=%d, b=%d)\n", req.Molecule, req.ModeBits, req.CoeffBits)
				estimation.RenderTemplates(a.out, tmpl)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newFragmentsCmd(root *rootOptions) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "fragments",
		Short: "List the fragments of a molecule with their term counts and costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			reqs, err := flags.requests(a.cfg.Defaults)
			if err != nil {
				return err
			}

			svc := estimation.NewService(a.loader(), nil, nil, a.log)
			for _, req := range reqs {
				frags, err := svc.Fragments(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("failed to fragment %s: %w", req.Molecule, err)
				}
				scheme, _ := fragments.ParseScheme(req.Scheme)
				fmt.Fprintf(a.out, "%s (%s)\n", req.Molecule, scheme)
				estimation.RenderFragments(a.out, frags)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newStepsCmd(root *rootOptions) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Compute the Trotter step count from a norm, or from the norm table with --mol",
		Example: `  vibronic steps --norm 0.87 --req-error 0.01 --time 152
  vibronic steps --mol no4a_monomer --scheme modebased`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			d := a.cfg.Defaults
			t, eps := orFloat(flags.time, d.Time), orFloat(flags.reqError, d.ReqError)

			norm := flags.norm
			if norm == 0 {
				reqs, err := flags.requests(d)
				if err != nil {
					return fmt.Errorf("either --norm or --mol is required")
				}
				req := reqs[0]
				h, err := a.loader().Load(cmd.Context(), req.Molecule)
				if err != nil {
					return err
				}
				scheme, err := fragments.ParseScheme(req.Scheme)
				if err != nil {
					return err
				}
				svc, err := a.service(cmd.Context(), false)
				if err != nil {
					return err
				}
				if norm, _, err = svc.Norm(req, h.Modes, scheme); err != nil {
					return err
				}
			}

			exact, err := trotter.Steps(norm, eps, t)
			if err != nil {
				return err
			}
			n, err := trotter.NumSteps(norm, eps, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "norm=%g time=%g req_error=%g\n", norm, t, eps)
			fmt.Fprintf(a.out, "steps=%s (exact %.4f)\n", humanize.Comma(n), exact)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

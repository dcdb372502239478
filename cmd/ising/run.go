package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ising/internal/app"
	"ising/internal/core"
	"ising/internal/render"
	"ising/internal/sims/ising"
)

func newRunCmd() *cobra.Command {
	cfg := app.NewConfig()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Equilibrate one lattice and print its record line",
		Long: "Equilibrate one lattice at --kt and print a single line\n" +
			"  kT/J M M_err E E_err variance steps\n" +
			"on stdout. Sweeps use this command as their worker.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			log, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			if err := cfg.ValidateRun(); err != nil {
				return err
			}
			cfg.ResolveSeed()

			opts := cfg.Options()
			opts.Logger = log
			if cfg.Progress != "" {
				w, closeSink, serr := openSink(cmd, cfg.Progress)
				if serr != nil {
					return serr
				}
				defer func() {
					if cerr := closeSink(); err == nil {
						err = errors.Wrap(cerr, "closing progress sink")
					}
				}()
				opts.Frames = render.NewFramePainterFor(w)
				opts.Pace = core.NewFixedStep(cfg.TPS)
			}

			rec, err := ising.Equilibrate(cmd.Context(), cfg.Params(), opts)
			if errors.Is(err, ising.ErrInsufficientSamples) {
				log.Warn("degenerate statistics", "kT", cfg.KT, "steps", rec.Steps, "window", cfg.Window)
				err = nil
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ising.FormatRecord(rec, cfg.J))
			return errors.Wrap(err, "writing record")
		},
	}
	cfg.BindRun(cmd.Flags())
	return cmd
}

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ising/internal/app"
	"ising/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cfg := app.NewConfig()
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Equilibrate one lattice per temperature and write a report",
		Long: "Run --steps equilibrations between --from and --to, at most --parallel at\n" +
			"a time, and write one row per temperature:\n" +
			"  T |M| M_err E E_err dE/dT var/T^2 steps",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			log, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			if err := cfg.ValidateSweep(); err != nil {
				return err
			}
			seed := cfg.ResolveSeed()

			spec := cfg.RunSpec()
			spec.Options.Logger = log
			exec, err := executorFor(cfg, spec)
			if err != nil {
				return err
			}

			sw := &sweep.Sweep{
				Range:    cfg.Range(),
				Parallel: cfg.Parallel,
				Seed:     seed,
				Executor: exec,
				Logger:   log,
			}
			results, err := sw.Run(cmd.Context())
			if err != nil {
				return err
			}

			w, closeOut, err := openSink(cmd, cfg.Output)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOut(); err == nil {
					err = errors.Wrap(cerr, "closing report")
				}
			}()
			return sweep.WriteReport(w, results, cfg.J)
		},
	}
	cfg.BindSweep(cmd.Flags())
	return cmd
}

// executorFor runs a lone point in-process and isolates concurrent points in
// worker processes unless told otherwise.
func executorFor(cfg *app.Config, spec sweep.RunSpec) (sweep.Executor, error) {
	if cfg.Parallel == 1 || cfg.Isolation == app.IsolationInProcess {
		return sweep.InProcess{Spec: spec}, nil
	}
	return sweep.NewSubprocess(spec, "run")
}

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ising/internal/app"
)

func newConfigCmd() *cobra.Command {
	cfg := app.NewConfig()
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := setup(cmd, cfg); err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return errors.Wrap(err, "writing config")
		},
	}
	cfg.BindAll(cmd.Flags())
	return cmd
}

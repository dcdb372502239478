package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ising/internal/app"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ising",
		Short:         "Metropolis simulation of the 2D Ising model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(app.FlagConfig, "", "YAML configuration file")
	root.PersistentFlags().String(app.FlagLogLevel, "info", "log level (debug|info|warn|error)")

	root.AddCommand(newRunCmd(), newSweepCmd(), newConfigCmd())
	return root
}

// setup merges file, environment and flags into cfg and installs the logger.
func setup(cmd *cobra.Command, cfg *app.Config) (*slog.Logger, error) {
	file, err := cmd.Flags().GetString(app.FlagConfig)
	if err != nil {
		return nil, errors.Wrap(err, "reading --config")
	}
	if err := cfg.Load(viper.New(), cmd.Flags(), file); err != nil {
		return nil, err
	}
	log, err := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

// openSink resolves "-" to the command's stdout and anything else to a new file.
func openSink(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s", path)
	}
	return f, f.Close, nil
}

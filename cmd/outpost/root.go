package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"outpost/internal/config"
	"outpost/internal/logging"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "outpost",
		Short:         "Outpost survival simulation server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./outpost.yaml)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSimulateCommand(opts))
	cmd.AddCommand(newContentCommand(opts))
	return cmd
}

package main

import (
	"strings"

	"bulkscan/internal/core/version"
	"bulkscan/internal/platform/config"
	"bulkscan/internal/platform/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfg      config.Conf
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{cfg: config.New()}

	cmd := &cobra.Command{
		Use:     "bulkscan",
		Short:   "Bulk license re-scan of one upload",
		Version: version.Rev(),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			lo := logger.FromEnv()
			lo.Service = version.Service
			lo.Component = cmd.Name()
			// stdout belongs to the heartbeat and command output
			lo.Writer = cmd.ErrOrStderr()
			if opts.logLevel != "" {
				lo.Level = strings.ToLower(opts.logLevel)
			}
			logger.Init(lo)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (trace|debug|info|warn|error)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newEncodeCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	return cmd
}

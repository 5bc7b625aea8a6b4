// Package commands implements the housesplit command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/housesplit/internal/config"
	"github.com/mmynk/housesplit/pkg/logging"
)

// Version is set at build time with -ldflags "-X github.com/mmynk/housesplit/internal/commands.Version=...".
var Version = "dev"

// options carries state shared by every subcommand.
type options struct {
	configPath string
	cfg        config.Config
}

// NewRootCommand builds the housesplit command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "housesplit",
		Short:   "Shared household expenses and settlements",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the TOML config file")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newReportCommand(opts),
		newWatchCommand(opts),
		newHashPINCommand(),
	)

	return rootCmd
}

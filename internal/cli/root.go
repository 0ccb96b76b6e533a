package cli

import (
	"github.com/imhuimie/string-analyzer-go/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

// NewRootCommand creates the root command. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "string-analyzer",
		Short: "String analyzer service",
		Long: `Analyzes strings, stores their properties and lists them by
structured or plain English filters.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	// Global flags
	// CONFIG_PATH and ENV_FILE move the defaults, e.g. inside a container
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c",
		config.GetEnv("CONFIG_PATH", "data/config.json"), "config file path")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file",
		config.GetEnv("ENV_FILE", "data/.env"), "dotenv file loaded before the config")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))

	return cmd
}

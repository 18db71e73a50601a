// Package commands defines all Cobra CLI commands for the aicii binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/alswn8268/ai-cii/internal/audit"
	"github.com/alswn8268/ai-cii/internal/config"
	"github.com/alswn8268/ai-cii/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aicii",
		Short: "AI-CII — restaurant recommendation service powered by hybrid retrieval and LLMs",
		Long: `AI-CII is a restaurant recommendation service that combines vector and
keyword search over a restaurant index with LLM answer generation.

Queries are answered in Korean, grounded in the retrieved candidates, with
optional location and per-person budget filters.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.aicii/config.yaml).
See 'aicii --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.aicii/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewChatCmd(),
		NewSearchCmd(),
		NewVersionCmd(),
	)

	return root
}

// Package main implements the skl2pmml CLI, which lowers fitted scikit-learn
// pipelines into PMML documents.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skl2pmml/internal/config"
	"skl2pmml/internal/errkind"
	"skl2pmml/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "skl2pmml",
	Short: "Convert fitted scikit-learn pipelines to PMML",
	Long: `skl2pmml lowers fitted scikit-learn pipelines into PMML 4.4 documents.

Inputs are YAML renderings of the pickled object graph: every object is a
mapping with a __class__ key, tuples are {__tuple__: [...]} and arrays are
{__ndarray__: {shape, data}}.

Exit codes:
  1  other failure
  2  malformed input or unknown class
  3  attribute arity mismatch
  4  inconsistent field types
  5  unsupported construct`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultPath+")")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup loads the configuration and installs the logger.
func setup() error {
	path := configPath
	if path == "" {
		path = config.DefaultPath
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Logging.Level = "debug"
		loaded.Logging.DebugMode = true
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	l, err := logging.Initialize(loaded.Logging)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	logging.BootDebug("Loaded config from %s", path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failure onto the documented process status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return errkind.Classify(err).ExitCode()
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// settings returns the loaded config, or the defaults when setup did not run.
func settings() (*config.Config, *zap.Logger) {
	c, l := cfg, logger
	if c == nil {
		c = config.DefaultConfig()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return c, l
}

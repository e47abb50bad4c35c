// Root command for the tether CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mesh-intelligence/tether/internal/paths"
	"github.com/mesh-intelligence/tether/pkg/tether"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagResultsDB string
)

// configResultsDB holds the results_db value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configResultsDB string

var rootCmd = &cobra.Command{
	Use:     "tether",
	Short:   "Tether is a stress harness for the weak association table",
	Version: tether.Version,
	// Do not print usage on errors returned by subcommands.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configResultsDB = cfg.GetString(cfgKeyResultsDB)
		applyConfigDefaults(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagResultsDB, "results-db", "", "results database path (default: $(CWD)/tether-results.db)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(runsCmd)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > TETHER_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveResultsDB returns the results database path following the
// precedence: --results-db flag > config.yaml > TETHER_RESULTS_DB env >
// $(CWD)/tether-results.db.
func resolveResultsDB() (string, error) {
	return paths.ResolveResultsDB(flagResultsDB, configResultsDB)
}

// Config loading for the tether CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyResultsDB  = "results_db"
	cfgKeyGoroutines = "goroutines"
	cfgKeyOps        = "ops"
	cfgKeyScenario   = "scenario"

	// Stress defaults.
	defaultGoroutines = 4
	defaultOps        = 100000
	defaultScenario   = scenarioMixed
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Tether CLI configuration

# Results database path (optional; overridable by --results-db flag)
# results_db:

# Stress defaults
goroutines: 4
ops: 100000
scenario: mixed
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on first
// run. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyGoroutines, defaultGoroutines)
	v.SetDefault(cfgKeyOps, defaultOps)
	v.SetDefault(cfgKeyScenario, defaultScenario)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// applyConfigDefaults copies config values into stress flags that the user
// did not set explicitly, so the precedence is flag > config > built-in.
func applyConfigDefaults(v *viper.Viper) {
	if !stressCmd.Flags().Changed("goroutines") {
		stressGoroutines = v.GetInt(cfgKeyGoroutines)
	}
	if !stressCmd.Flags().Changed("ops") {
		stressOps = v.GetInt64(cfgKeyOps)
	}
	if !stressCmd.Flags().Changed("scenario") {
		stressScenario = v.GetString(cfgKeyScenario)
	}
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Package paths resolves the configuration directory and results database
// location for the tether CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names used when no override is active.
const (
	DefaultConfigDirName = ".tether"
	DefaultResultsName   = "tether-results.db"
)

// Environment variable names for overrides.
const (
	EnvConfigDir = "TETHER_CONFIG_DIR"
	EnvResultsDB = "TETHER_RESULTS_DB"
)

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/tether (fallback ~/.config/tether)
// macOS:   ~/Library/Application Support/tether
// Windows: %APPDATA%/tether
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "tether"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "tether"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "tether"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > TETHER_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveResultsDB returns the results database path following the precedence
// chain: flag > config value > TETHER_RESULTS_DB env > $(CWD)/tether-results.db.
func ResolveResultsDB(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvResultsDB); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultResultsName), nil
}

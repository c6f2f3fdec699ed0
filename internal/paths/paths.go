// Package paths resolves the configuration and data directories of the
// tracker CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the platform configuration subdirectory.
const AppName = "tracker"

// DefaultDataDirName is created in the working directory when nothing else
// names a data directory.
const DefaultDataDirName = ".tracker-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TRACKER_CONFIG_DIR"
	EnvDataDir   = "TRACKER_DATA_DIR"
)

// platformDir holds platform lookups that tests can override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the platform configuration directory.
//
//	Linux:   $XDG_CONFIG_HOME/tracker (fallback ~/.config/tracker)
//	macOS:   ~/Library/Application Support/tracker
//	Windows: %APPDATA%/tracker
func DefaultConfigDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ResolveConfigDir applies flag > TRACKER_CONFIG_DIR > DefaultConfigDir.
// Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok := firstSet(flag, os.Getenv(EnvConfigDir)); ok {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config.yaml data_dir > TRACKER_DATA_DIR >
// $(CWD)/.tracker-db. Explicit values are made absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok := firstSet(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return filepath.Abs(dir)
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func firstSet(values ...string) (string, bool) {
	for _, v := range values {
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// Package paths resolves where shelf keeps its configuration and its data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "shelf"

// Environment variables that override the directories.
const (
	EnvConfigDir = "SHELF_CONFIG_DIR"
	EnvDataDir   = "SHELF_DATA_DIR"
)

// platformDir holds platform lookups that tests replace.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/shelf (fallback ~/.config/shelf)
// macOS:   ~/Library/Application Support/shelf
// Windows: %APPDATA%/shelf
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the per-user data directory holding the project
// file or database and the uploaded thumbnails.
//
// Linux:   $XDG_DATA_HOME/shelf (fallback ~/.local/share/shelf)
// Others:  same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	return DefaultConfigDir()
}

func xdgDir(env, homeRel string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the absolute configuration directory:
// flag > SHELF_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the absolute data directory:
// flag > SHELF_DATA_DIR > data_dir from config.yaml > DefaultDataDir().
// A relative config value is taken relative to the configuration directory.
func ResolveDataDir(flag, configValue, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if configValue != "" {
		if !filepath.IsAbs(configValue) && configDir != "" {
			configValue = filepath.Join(configDir, configValue)
		}
		return filepath.Abs(configValue)
	}
	return DefaultDataDir()
}

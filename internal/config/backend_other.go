//go:build !darwin

package config

import (
	"os"
	"path/filepath"

	"github.com/kalambet/prefs/internal/backend"
)

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "prefs-data"
		}
	}
	return filepath.Join(dir, "prefs")
}

func defaultBackendKind() string {
	return backend.KindSQLite
}

// newPlatformBackend returns the JSON config file at
// $XDG_CONFIG_HOME/prefs/config.json. A missing file reads as empty.
func newPlatformBackend() (ConfigBackend, error) {
	f, err := backend.OpenFile(configFilePath())
	if err != nil {
		return nil, err
	}
	return f, nil
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "prefs", "config.json")
}

func configDir() string {
	return filepath.Dir(configFilePath())
}

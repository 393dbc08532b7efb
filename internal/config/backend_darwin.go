//go:build darwin

package config

import (
	"os"
	"path/filepath"

	"github.com/kalambet/prefs/internal/backend"
)

// configDomain is kept apart from backend.DefaultsDomain so that CLI
// settings never show up as stored prefs.
const configDomain = "com.prefs.cli"

func defaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, "Library", "Application Support", "prefs")
	}
	return "prefs-data"
}

func defaultBackendKind() string {
	return backend.KindSQLite
}

func newPlatformBackend() (ConfigBackend, error) {
	return backend.NewDefaults(configDomain), nil
}

func configDir() string {
	return defaultDataDir()
}

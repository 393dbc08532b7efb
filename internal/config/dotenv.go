package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
)

// dotEnvPaths lists the .env files Load reads, nearest first.
func dotEnvPaths() []string {
	return []string{
		".env",
		filepath.Join(configDir(), ".env"),
	}
}

// loadDotEnv exports variables from the given files into the process
// environment. Variables that are already set are left alone, and missing
// files are skipped.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil {
			slog.Debug("loaded environment file", "path", p)
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("could not read environment file", "path", p, "error", err)
		}
	}
}

package config

import (
	"log/slog"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Store   StoreConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port     int
	MaxConns int
}

type StorageConfig struct {
	Backend string
	DataDir string
	Dynamo  DynamoConfig
}

// DynamoConfig locates the table used by the dynamodb backend.
type DynamoConfig struct {
	Table     string
	Region    string
	Endpoint  string
	Namespace string
}

type StoreConfig struct {
	Bootstrap bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:     4100,
			MaxConns: 64,
		},
		Storage: StorageConfig{
			Backend: defaultBackendKind(),
			DataDir: defaultDataDir(),
			Dynamo: DynamoConfig{
				Table:     "prefs",
				Namespace: "prefs",
			},
		},
		Store: StoreConfig{
			Bootstrap: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend and
// environment variables.
//
// On macOS the backend is UserDefaults (domain: com.prefs.cli).
// Elsewhere it is a JSON file at $XDG_CONFIG_HOME/prefs/config.json.
//
// Environment variables (PREFS_*) override backend values on all platforms.
// Variables may also come from a .env file in the working directory or next
// to the config; real environment variables win over both.
func Load() (Config, error) {
	loadDotEnv(dotEnvPaths()...)
	b, err := newPlatformBackend()
	if err != nil {
		return Config{}, err
	}
	return loadWith(b)
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// SlogLevel maps Log.Level to a slog level. Unknown names mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

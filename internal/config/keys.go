package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "PREFS_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.max_conns", typ: kInt, env: "PREFS_SERVER_MAX_CONNS",
		apply:   func(cfg *Config, v any) { cfg.Server.MaxConns = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.MaxConns },
	},
	{
		key: "storage.backend", typ: kString, env: "PREFS_STORAGE_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Storage.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Backend },
	},
	{
		key: "storage.data_dir", typ: kString, env: "PREFS_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.dynamo_table", typ: kString, env: "PREFS_STORAGE_DYNAMO_TABLE",
		apply:   func(cfg *Config, v any) { cfg.Storage.Dynamo.Table = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Dynamo.Table },
	},
	{
		key: "storage.dynamo_region", typ: kString, env: "PREFS_STORAGE_DYNAMO_REGION",
		apply:   func(cfg *Config, v any) { cfg.Storage.Dynamo.Region = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Dynamo.Region },
	},
	{
		key: "storage.dynamo_endpoint", typ: kString, env: "PREFS_STORAGE_DYNAMO_ENDPOINT",
		apply:   func(cfg *Config, v any) { cfg.Storage.Dynamo.Endpoint = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Dynamo.Endpoint },
	},
	{
		key: "storage.dynamo_namespace", typ: kString, env: "PREFS_STORAGE_DYNAMO_NAMESPACE",
		apply:   func(cfg *Config, v any) { cfg.Storage.Dynamo.Namespace = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Dynamo.Namespace },
	},
	{
		key: "store.bootstrap", typ: kBool, env: "PREFS_STORE_BOOTSTRAP",
		apply:   func(cfg *Config, v any) { cfg.Store.Bootstrap = v.(bool) },
		extract: func(cfg Config) any { return cfg.Store.Bootstrap },
	},
	{
		key: "log.level", typ: kString, env: "PREFS_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

// parse converts raw text to the key's Go type.
func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer for %s: %w", s.key, err)
		}
		return i, nil
	case kBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool for %s: %w", s.key, err)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		raw, ok, err := b.GetString(s.key)
		if err != nil {
			return fmt.Errorf("reading config key %s: %w", s.key, err)
		}
		if !ok {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			return err
		}
		s.apply(cfg, v)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/prefs/internal/backend"
	"github.com/kalambet/prefs/internal/config"
	"github.com/kalambet/prefs/internal/prefs"
)

var version = "dev"

var (
	cfg     config.Config
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:           "prefs",
	Short:         "Typed key-value settings store",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if v, _ := cmd.Flags().GetString("backend"); v != "" {
			cfg.Storage.Backend = v
		}
		if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
			cfg.Storage.DataDir = v
		}
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			noColor = true
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "storage backend: memory, file, sqlite, dynamodb or defaults")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the settings data")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(getCmd, setCmd, deleteCmd, listCmd, defaultCmd, resetCmd)
	rootCmd.AddCommand(exportCmd, importCmd)
	rootCmd.AddCommand(serveCmd, stopCmd, statusCmd)
	rootCmd.AddCommand(configCmd)
}

// openStore opens the configured backend and a Store over it. Tests replace
// it with an in-memory store.
var openStore = func() (*prefs.Store, error) {
	d := cfg.Storage.Dynamo
	b, err := backend.Open(cfg.Storage.Backend, cfg.Storage.DataDir, backend.WithDynamo(backend.DynamoOptions{
		Table:     d.Table,
		Region:    d.Region,
		Endpoint:  d.Endpoint,
		Namespace: d.Namespace,
	}))
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Storage.Backend, err)
	}

	s, err := prefs.Open(b, prefs.WithBootstrap(cfg.Store.Bootstrap), prefs.WithLogger(slog.Default()))
	if err != nil {
		if c, ok := b.(io.Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

// withStore runs fn against a freshly opened store and closes it afterwards.
func withStore(fn func(s *prefs.Store) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			printWarning("closing store: %v", err)
		}
	}()
	return fn(s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

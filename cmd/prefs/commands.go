package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/prefs/internal/config"
	"github.com/kalambet/prefs/internal/prefs"
)

// parseValue reads a command-line value according to the --type flag.
func parseValue(cmd *cobra.Command, text string) (prefs.Value, error) {
	typ, _ := cmd.Flags().GetString("type")
	kind, err := prefs.KindFromName(typ)
	if err != nil {
		return prefs.Value{}, err
	}
	return prefs.ParseStrict(kind, text)
}

// --- get / set / delete / list ---

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return withStore(func(s *prefs.Store) error {
			ok, err := s.Has(key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("pref %q not found", key)
			}

			v, err := s.Get(key)
			if err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				printEntry(cmd.OutOrStdout(), key, v)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value under key",
	Long: `Store a value under key.

Examples:
  prefs set username alice
  prefs set volume 0.8 --type float
  prefs set launches 3 --type int
  prefs set last_sync 2024-05-01T10:00:00Z --type datetime`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		v, err := parseValue(cmd, args[1])
		if err != nil {
			return err
		}
		return withStore(func(s *prefs.Store) error {
			if err := s.SaveTyped(key, v); err != nil {
				return err
			}
			printSuccess("Set %s = %s (%s)", key, v, v.Kind())
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a value and its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return withStore(func(s *prefs.Store) error {
			if err := s.Delete(key); err != nil {
				return err
			}
			printSuccess("Deleted %s", key)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List keys in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		long, _ := cmd.Flags().GetBool("long")
		return withStore(func(s *prefs.Store) error {
			keys, err := s.ListKeys()
			if err != nil {
				return err
			}
			keys = slices.DeleteFunc(keys, func(k string) bool { return k == prefs.Placeholder })
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No prefs stored.")
				return nil
			}

			for _, key := range keys {
				if !long {
					fmt.Fprintln(cmd.OutOrStdout(), key)
					continue
				}
				v, err := s.Get(key)
				if err != nil {
					return err
				}
				printEntry(cmd.OutOrStdout(), key, v)
			}
			return nil
		})
	},
}

func init() {
	getCmd.Flags().BoolP("verbose", "v", false, "also print the value type")
	setCmd.Flags().String("type", "string", "value type: string, int, float or datetime")
	listCmd.Flags().BoolP("long", "l", false, "print values and types")
}

// --- defaults ---

var defaultCmd = &cobra.Command{
	Use:   "default <key> [value]",
	Short: "Show or register the default for key",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		if len(args) == 1 {
			return withStore(func(s *prefs.Store) error {
				text, ok, err := s.Default(key)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no default registered for %q", key)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		}

		v, err := parseValue(cmd, args[1])
		if err != nil {
			return err
		}
		return withStore(func(s *prefs.Store) error {
			if err := s.RegisterDefault(key, v); err != nil {
				return err
			}
			printSuccess("Default for %s = %s", key, v)
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore a key, or every key with --all, to its default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return fmt.Errorf("specify either a key or --all")
		}

		return withStore(func(s *prefs.Store) error {
			if all {
				n, err := s.ResetAll()
				if err != nil {
					return err
				}
				printSuccess("Reset %d prefs to defaults", n)
				return nil
			}

			key := args[0]
			ok, err := s.ResetOne(key)
			if err != nil {
				return err
			}
			if !ok {
				printWarning("No default registered for %s", key)
				return nil
			}
			printSuccess("Reset %s to default", key)
			return nil
		})
	},
}

func init() {
	defaultCmd.Flags().String("type", "string", "value type: string, int, float or datetime")
	resetCmd.Flags().Bool("all", false, "reset every key that has a default")
}

// --- export / import ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all prefs as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		format, err := exchangeFormat(cmd, output)
		if err != nil {
			return err
		}

		return withStore(func(s *prefs.Store) error {
			records, err := s.Export()
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case formatYAML:
				data, err = prefs.MarshalRecordsYAML(records)
			default:
				data, err = json.MarshalIndent(records, "", "  ")
				data = append(data, '\n')
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			if _, err := f.Write(data); err != nil {
				f.Close()
				return fmt.Errorf("writing output file: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing output file: %w", err)
			}
			printSuccess("Exported %d prefs to %s", len(records), output)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import prefs from a JSON or YAML export (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading import: %w", err)
		}

		format, err := exchangeFormat(cmd, args[0])
		if err != nil {
			return err
		}

		var records []prefs.Record
		switch format {
		case formatYAML:
			records, err = prefs.UnmarshalRecordsYAML(data)
		default:
			err = json.Unmarshal(data, &records)
		}
		if err != nil {
			return fmt.Errorf("invalid import file: %w", err)
		}

		return withStore(func(s *prefs.Store) error {
			if err := s.Import(records); err != nil {
				return err
			}
			printSuccess("Imported %d prefs", len(records))
			return nil
		})
	},
}

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// exchangeFormat picks the export format from --format, falling back to
// the file extension and then JSON.
func exchangeFormat(cmd *cobra.Command, path string) (string, error) {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		switch f = strings.ToLower(f); f {
		case formatJSON, formatYAML:
			return f, nil
		}
		return "", fmt.Errorf("invalid --format %q (want %s or %s)", f, formatJSON, formatYAML)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return formatJSON, nil
}

func init() {
	exportCmd.Flags().String("output", "", "output file path (default: stdout)")
	exportCmd.Flags().String("format", "", "json or yaml (default: from file extension, else json)")
	importCmd.Flags().String("format", "", "json or yaml (default: from file extension, else json)")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

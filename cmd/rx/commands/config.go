package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/rx/internal/config"
	"github.com/thoreinstein/rx/internal/editor"
	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/paths"
	"github.com/thoreinstein/rx/pkg/fileutil"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rx configuration",
	Long: `Manage the rx configuration file.

The file in use is ./rx.yaml when present, otherwise
$XDG_CONFIG_HOME/rx/config.yaml. Without a subcommand, lists all values.`,
	Example: `  # List all configuration
  rx config

  # Bind a prefix for every schema
  rx config set prefixes.geo tag:example.com,2026:geo/

  # Load a library everywhere
  rx config set libraries ~/types/geo.yaml,~/types/net.yaml

See Also: rx init, rx types`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys such as prefixes.geo. List values are
printed one per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file.

Keys:
  strict           true or false
  libraries        comma-separated list of library files
  prefixes.<name>  URI base for the prefix; an empty value removes it

The result is validated before it is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	RunE:  runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

Uses $RX_EDITOR, then $VISUAL, then $EDITOR, then nano or vi. The file is
validated again when the editor exits. If no configuration file exists,
run 'rx init' first.`,
	RunE: runConfigEdit,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	key := args[0]

	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshaling value")
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	next := *cfg
	next.Prefixes = make(map[string]string, len(cfg.Prefixes))
	for name, base := range cfg.Prefixes {
		next.Prefixes[name] = base
	}

	switch {
	case key == "strict":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return rxerrors.NewUserError(errors.Newf("strict must be true or false, got %q", value), "")
		}
		next.Strict = b
	case key == "libraries":
		next.Libraries = splitList(value)
	case strings.HasPrefix(key, "prefixes."):
		name := strings.TrimPrefix(key, "prefixes.")
		if value == "" {
			delete(next.Prefixes, name)
		} else {
			next.Prefixes[name] = value
		}
	default:
		return rxerrors.NewUserError(errors.Newf("unknown config key %q", key),
			"Keys: strict, libraries, prefixes.<name>")
	}

	if errs := config.Validate(&next); len(errs) > 0 {
		return rxerrors.NewUserError(errors.Join(errs...), "")
	}

	path := configFilePath()
	if err := writeConfig(path, &next); err != nil {
		return rxerrors.NewSystemError(err, "")
	}
	*cfg = next
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configFilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return rxerrors.NewUserError(errors.Newf("config file not found at %s", path), "Run: rx init")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
	err := editor.Open(cmd.Context(), path, editor.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})
	if err != nil {
		return rxerrors.NewSystemError(err, "Set RX_EDITOR to your editor command")
	}

	if _, err := config.Load(path); err != nil {
		return rxerrors.NewUserError(err, "Run: rx config edit")
	}
	return nil
}

// configFilePath returns the config file in use, or the user config file
// when running on defaults.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	return paths.ConfigFile()
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// writeConfig writes c to path, creating the directory if needed.
func writeConfig(path string, c *config.Config) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(fileutil.AtomicWriteYAML(path, c), "writing config file")
}

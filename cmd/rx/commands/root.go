// Package commands implements the CLI commands for rx.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/rx/cmd"
	"github.com/thoreinstein/rx/internal/config"
	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/logging"
)

// Global flags.
var (
	verbosity  int    // -v count
	quiet      bool   // -q
	logFormat  string // --log-format
	logFile    string // --log-file, JSON records
	colorMode  string // --color
	configPath string // --config
)

var (
	// cfg is loaded before every command; it stays at the defaults when
	// loading fails.
	cfg           = config.Default()
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&verbosity, "verbose", "v", "log more: -v info, -vv debug, -vvv trace")
	flags.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	flags.StringVar(&logFormat, "log-format", "text", "log format on stderr: text, json")
	flags.StringVar(&logFile, "log-file", "", "also append JSON log records to this file")
	flags.StringVar(&colorMode, "color", "auto", "colorize output: auto, always, never")
	flags.StringVar(&configPath, "config", "", "config file (default: ./rx.yaml or $XDG_CONFIG_HOME/rx/config.yaml)")

	rootCmd.Version = cmd.Info().Version
	rootCmd.SetVersionTemplate("rx version {{.Version}}\n")

	// main prints errors with their suggestion.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loaded, err := config.Load(configPath)
	configLoadErr = err
	if err == nil {
		cfg = loaded
	}
}

var rootCmd = &cobra.Command{
	Use:   "rx",
	Short: "Validate data documents against Rx schemas",
	Long: `rx compiles Rx schema documents and checks data against them.

Schemas and data may be written in YAML, JSON, TOML or as YAML frontmatter
in Markdown files. Type libraries add shorthand prefixes and named types
that schemas can reference, such as /geo/point.

Libraries are loaded from the library directory ($XDG_DATA_HOME/rx/library),
then from the config file's libraries list, then from --library flags.`,
	Example: `  # Check data files against a schema
  rx check -s schema.yaml data/*.json

  # Check with an extra type library
  rx check -s place.yaml -l geo.yaml places.yaml

  # Lint schema files
  rx lint schemas/*.yaml

  # Browse registered types
  rx types -i

  See Also: rx init, rx types`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger from the global flags and
// decides whether stdout output is colorized.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return rxerrors.NewUserError(errors.New("--quiet and --verbose cannot be combined"), "")
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return rxerrors.NewUserError(err, "")
	}
	mode, err := logging.ParseColorMode(colorMode)
	if err != nil {
		return rxerrors.NewUserError(err, "")
	}

	logCfg := logging.Config{
		Level:  logLevel(),
		Format: format,
		Output: cmd.ErrOrStderr(),
		Color:  mode,
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return rxerrors.NewUserError(errors.Wrap(err, "opening log file"), "")
		}
		logCfg.File = f
	}

	// Reports on stdout color through fatih/color's package switch.
	color.NoColor = !mode.Enabled(cmd.OutOrStdout())

	logger := logging.New(logCfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// logLevel maps -q and -v to a level. Without either flag, RX_DEBUG=1 (or
// true) selects debug and RX_DEBUG=2 selects trace.
func logLevel() slog.Level {
	if quiet {
		return slog.LevelError
	}
	v := verbosity
	if v == 0 {
		switch os.Getenv("RX_DEBUG") {
		case "1", "true":
			v = 2
		case "2":
			v = 3
		}
	}
	return logging.LevelFromVerbosity(v)
}

// checkConfig surfaces config load errors. Commands that repair or ignore
// the config run regardless.
func checkConfig(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "help", "version", "init", "edit", "gen-doc":
		return nil
	}
	if configLoadErr != nil {
		return rxerrors.NewConfigError(configLoadErr)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

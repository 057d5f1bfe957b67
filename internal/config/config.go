package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/paths"
)

// AppName is the application name used for env var and directory naming.
const AppName = "rx"

// CurrentVersion is the only config file version this build understands.
const CurrentVersion = 1

// configDirEnv overrides the user config directory.
const configDirEnv = "RX_CONFIG_DIR"

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// Libraries lists type library files loaded into every registry, in
	// order. Relative paths are resolved against the config file directory.
	Libraries []string `mapstructure:"libraries" yaml:"libraries,omitempty"`

	// Prefixes binds extra shorthand prefixes before any library is loaded.
	Prefixes map[string]string `mapstructure:"prefixes" yaml:"prefixes,omitempty"`

	// Strict makes lint warnings fail the run.
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// Dir is the directory of the config file that was read, empty when
	// running on defaults.
	Dir string `mapstructure:"-" yaml:"-"`
}

// Default returns the configuration written by rx init.
func Default() *Config {
	return &Config{
		Version:  CurrentVersion,
		Prefixes: map[string]string{},
	}
}

// Init resets Viper and configures the search path and defaults.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if dir, ok := os.LookupEnv(configDirEnv); ok && dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
	}

	viper.SetEnvPrefix("RX")
	viper.AutomaticEnv()

	viper.SetDefault("version", CurrentVersion)
	viper.SetDefault("strict", false)
	viper.SetDefault("libraries", []string{})
}

// Load reads and validates the configuration.
//
// If path is provided, it reads from that specific file. Otherwise a
// project-level rx.yaml in the working directory wins over the user config.
// When no file is found on the implicit search, defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(paths.ProjectConfigFileName); err == nil {
			path = paths.ProjectConfigFileName
		}
	}
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file runs on defaults.
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), rxerrors.ErrNotFound)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			cfg.Dir = filepath.Dir(used)
		}
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Mark(errors.Join(errs...), rxerrors.ErrInvalidConfig), "validating config")
	}

	return &cfg, nil
}

// LibraryPaths returns the configured library files with "~" expanded and
// relative paths resolved against the config file directory.
func (c *Config) LibraryPaths() ([]string, error) {
	out := make([]string, 0, len(c.Libraries))
	for _, lib := range c.Libraries {
		p, err := paths.ExpandHome(lib)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving library %s", lib)
		}
		if !filepath.IsAbs(p) && c.Dir != "" {
			p = filepath.Join(c.Dir, p)
		}
		out = append(out, p)
	}
	return out, nil
}

// Package config provides configuration management for the rx CLI.
//
// # Configuration File
//
// A project-level rx.yaml in the working directory takes precedence over the
// user config at ~/.config/rx/config.yaml. RX_CONFIG_DIR overrides the user
// config directory. Both files share one YAML format:
//
//	version: 1
//	strict: false
//	prefixes:
//	  geo: "tag:example.com,2026:geo/"
//	libraries:
//	  - types/geo.yaml       # relative to the config file
//	  - ~/rx/shared.yaml
//
// Every key can also be set from the environment with the RX_ prefix, for
// example RX_STRICT=true.
//
// # Loading Configuration
//
// Call [Init] once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return errors.Wrap(err, "loading config")
//	}
//
// [Load] validates the result; failures are marked with
// rxerrors.ErrInvalidConfig and wrap one [FieldError] per offending value,
// see [Validate].
package config

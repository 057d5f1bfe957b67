package config

import (
	"fmt"
	"maps"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrInvalidPrefix      = errors.New("invalid prefix")
	ErrInvalidPath        = errors.New("invalid path")
)

// prefixNameRegex matches the prefix part of a /prefix/name type name.
var prefixNameRegex = regexp.MustCompile(`^[-._a-z0-9]+$`)

// Every registry binds these itself.
var reservedPrefixes = map[string]bool{
	"":      true,
	".meta": true,
}

// FieldError reports one bad value in rx.yaml. Field is the key path as
// accepted by "rx config get".
type FieldError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate returns every problem in cfg, in a stable order: version,
// prefixes by name, then libraries in file order.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	if cfg.Version != CurrentVersion {
		errs = append(errs, errors.Mark(
			errors.Newf("unsupported config version %d (want %d)", cfg.Version, CurrentVersion),
			ErrUnsupportedVersion))
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Prefixes)) {
		if reason := checkPrefix(name, cfg.Prefixes[name]); reason != "" {
			errs = append(errs, &FieldError{Field: "prefixes." + name, Value: cfg.Prefixes[name], Reason: reason, Err: ErrInvalidPrefix})
		}
	}

	seen := make(map[string]int, len(cfg.Libraries))
	for i, lib := range cfg.Libraries {
		field := fmt.Sprintf("libraries[%d]", i)
		reason := checkLibraryPath(lib)
		if prev, dup := seen[filepath.Clean(lib)]; dup && reason == "" {
			reason = fmt.Sprintf("duplicate of libraries[%d]", prev)
		}
		if reason != "" {
			errs = append(errs, &FieldError{Field: field, Value: lib, Reason: reason, Err: ErrInvalidPath})
			continue
		}
		seen[filepath.Clean(lib)] = i
	}
	return errs
}

func checkPrefix(name, base string) string {
	switch {
	case reservedPrefixes[name]:
		return "reserved"
	case !prefixNameRegex.MatchString(name):
		return "name must match [-._a-z0-9]+"
	case base == "":
		return "empty URI base"
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" {
		return "URI base needs a scheme, as in tag:example.com,2026:"
	}
	return ""
}

// checkLibraryPath rejects paths that cannot name a file or directory. It
// does not touch the filesystem.
func checkLibraryPath(path string) string {
	switch {
	case strings.ContainsRune(path, '\x00'):
		return "contains NUL"
	case path == "" || filepath.Clean(path) == ".":
		return "empty path"
	}
	return ""
}

package rx

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the compile-time error taxonomy. Every error returned by
// the registry or the compiler is marked with exactly one of these, so callers
// can classify failures with [errors.Is] regardless of how much location
// context has been wrapped around them.
var (
	// ErrConfiguration indicates a structurally invalid schema document:
	// an unknown parameter, a missing required parameter, an empty
	// alternative list, conflicting range bounds or a duplicated field.
	ErrConfiguration = errors.New("invalid schema")

	// ErrUnknownType indicates a type name or prefix that does not resolve
	// to anything registered.
	ErrUnknownType = errors.New("unknown type")

	// ErrNameSyntax indicates a type name that is neither an absolute URI
	// nor a well-formed /prefix/suffix shorthand.
	ErrNameSyntax = errors.New("invalid type name")

	// ErrDuplicateRegistration indicates a prefix or type URI that is
	// already registered.
	ErrDuplicateRegistration = errors.New("already registered")
)

// configErrorf builds an ErrConfiguration failure.
func configErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

func unknownTypef(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnknownType)
}

func nameSyntaxf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNameSyntax)
}

func duplicatef(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrDuplicateRegistration)
}

// checkKeys rejects any document key outside allowed. The type key is always
// permitted. Keys are visited in sorted order so the reported key is stable.
func checkKeys(doc map[string]any, kind Kind, allowed ...string) error {
	for _, key := range slices.Sorted(maps.Keys(doc)) {
		if key == typeKey || slices.Contains(allowed, key) {
			continue
		}
		return configErrorf("unknown parameter %q for //%s", key, kind)
	}
	return nil
}

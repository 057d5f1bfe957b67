package loader

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/rx/pkg/rx"
)

// ErrInvalidLibrary indicates a library document with the wrong shape.
var ErrInvalidLibrary = errors.New("invalid type library")

// Library is a set of prefix bindings and learned types.
type Library struct {
	Prefixes map[string]string
	Types    []LibraryType
}

// LibraryType is one learned type of a Library.
type LibraryType struct {
	URI    string
	Schema any
}

func libraryErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidLibrary)
}

// ParseLibrary interprets a decoded document as a Library.
func ParseLibrary(doc any) (*Library, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, libraryErrorf("library must be a mapping, got %T", doc)
	}
	for _, key := range slices.Sorted(maps.Keys(root)) {
		if key != "prefixes" && key != "types" {
			return nil, libraryErrorf("unknown library key %q", key)
		}
	}

	lib := &Library{Prefixes: map[string]string{}}

	if raw, ok := root["prefixes"]; ok && raw != nil {
		prefixes, ok := raw.(map[string]any)
		if !ok {
			return nil, libraryErrorf("prefixes must be a mapping of name to URI base")
		}
		for name, base := range prefixes {
			s, ok := base.(string)
			if !ok {
				return nil, libraryErrorf("prefix %q must map to a string", name)
			}
			lib.Prefixes[name] = s
		}
	}

	if raw, ok := root["types"]; ok && raw != nil {
		types, ok := raw.([]any)
		if !ok {
			return nil, libraryErrorf("types must be a list")
		}
		for i, item := range types {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, libraryErrorf("types[%d] must be a mapping with uri and schema", i)
			}
			uri, ok := entry["uri"].(string)
			if !ok || uri == "" {
				return nil, libraryErrorf("types[%d] needs a uri string", i)
			}
			schema, ok := entry["schema"]
			if !ok {
				return nil, libraryErrorf("types[%d] (%s) needs a schema", i, uri)
			}
			if len(entry) > 2 {
				return nil, libraryErrorf("types[%d] (%s) takes only uri and schema", i, uri)
			}
			lib.Types = append(lib.Types, LibraryType{URI: uri, Schema: schema})
		}
	}

	return lib, nil
}

// Apply binds the library's prefixes, in name order, then learns its types
// in file order. A prefix already bound to the same base is accepted so
// libraries may share prefixes; any other rebinding fails.
func (l *Library) Apply(r *rx.Registry) error {
	bound := r.Prefixes()
	for _, name := range slices.Sorted(maps.Keys(l.Prefixes)) {
		base := l.Prefixes[name]
		if existing, ok := bound[name]; ok && existing == base {
			continue
		}
		if err := r.AddPrefix(name, base); err != nil {
			return err
		}
	}

	for _, t := range l.Types {
		if err := r.LearnType(t.URI, t.Schema); err != nil {
			return err
		}
	}
	return nil
}

// ExportLibrary collects the prefixes and learned types of r that are not
// part of every registry, in a form that Apply reproduces.
func ExportLibrary(r *rx.Registry) *Library {
	defaults := rx.New().Prefixes()

	lib := &Library{Prefixes: map[string]string{}}
	for name, base := range r.Prefixes() {
		if _, ok := defaults[name]; !ok {
			lib.Prefixes[name] = base
		}
	}
	for _, info := range r.Learned() {
		lib.Types = append(lib.Types, LibraryType{URI: info.URI, Schema: info.Schema})
	}
	return lib
}

// Document renders the library in the generic shape ParseLibrary accepts.
func (l *Library) Document() map[string]any {
	prefixes := make(map[string]any, len(l.Prefixes))
	for name, base := range l.Prefixes {
		prefixes[name] = base
	}
	types := make([]any, 0, len(l.Types))
	for _, t := range l.Types {
		types = append(types, map[string]any{"uri": t.URI, "schema": t.Schema})
	}
	return map[string]any{"prefixes": prefixes, "types": types}
}

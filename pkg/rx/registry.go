package rx

import (
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
)

// Namespaces seeded into every Registry.
const (
	// CoreNamespace is the URI base of the built-in kinds, bound to the
	// empty prefix.
	CoreNamespace = "tag:codesimply.com,2008:rx/core/"

	// MetaNamespace is the URI base bound to the .meta prefix. No built-in
	// kinds live there; it is reserved for learned meta-schemas.
	MetaNamespace = "tag:codesimply.com,2008:rx/meta/"

	// MetaPrefix is the prefix name bound to MetaNamespace.
	MetaPrefix = ".meta"
)

const typeKey = "type"

var (
	absoluteURIRegex = regexp.MustCompile(`^\w+:`)
	shorthandRegex   = regexp.MustCompile(`^/([-._a-z0-9]*)/([-._a-z0-9]+)$`)
)

// typeEntry is either a built-in type definition or a learned schema document.
type typeEntry struct {
	def    *TypeDef
	schema any
}

// TypeInfo describes a registered type.
type TypeInfo struct {
	// URI is the canonical type URI.
	URI string
	// Learned is true for types registered with LearnType.
	Learned bool
	// Schema is the stored document of a learned type, nil for built-ins.
	Schema any
}

// Registry holds the prefix table and the type table used to resolve and
// compile schema documents.
//
// Registration is append-only and intended for a setup phase. A Registry is
// safe for concurrent use, but compiling while registering may observe either
// state of the tables.
type Registry struct {
	mu       sync.RWMutex
	prefixes map[string]string
	types    map[string]typeEntry
	learned  []string
}

// New returns a Registry seeded with the default prefixes and the core types.
func New() *Registry {
	r, err := NewRegistry(CoreTypes()...)
	if err != nil {
		// The core table is static and has no duplicates.
		panic(err)
	}
	return r
}

// NewRegistry returns a Registry seeded with the default prefixes and the
// given type definitions, registered in order. Pass no definitions for an
// empty type table.
func NewRegistry(defs ...TypeDef) (*Registry, error) {
	r := &Registry{
		prefixes: map[string]string{
			"":         CoreNamespace,
			MetaPrefix: MetaNamespace,
		},
		types: make(map[string]typeEntry),
	}
	for _, def := range defs {
		if err := r.RegisterType(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AddPrefix binds a prefix name to a URI base. It fails with
// ErrDuplicateRegistration if the prefix is already bound.
func (r *Registry) AddPrefix(name, base string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prefixes[name]; exists {
		return duplicatef("the prefix %q is already registered", name)
	}
	r.prefixes[name] = base
	return nil
}

// RegisterType adds a built-in type definition. It fails with
// ErrDuplicateRegistration if the URI is already registered.
func (r *Registry) RegisterType(def TypeDef) error {
	if def.New == nil {
		return configErrorf("type definition for %s has no constructor", def.URI)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[def.URI]; exists {
		return duplicatef("type already registered for %s", def.URI)
	}
	r.types[def.URI] = typeEntry{def: &def}
	return nil
}

// LearnType registers a schema document under uri so that later documents may
// reference it by name. The uri may be absolute or a /prefix/suffix shorthand.
//
// The document is compiled before it is stored; if compilation fails the error
// is returned and nothing is registered. The stored document is a private copy
// and is recompiled on every reference.
func (r *Registry) LearnType(uri string, schema any) error {
	canonical, err := r.ExpandURI(uri)
	if err != nil {
		return err
	}
	if _, exists := r.lookup(canonical); exists {
		return duplicatef("tried to learn type for already-registered uri %s", canonical)
	}

	if _, err := r.MakeSchema(schema); err != nil {
		return errors.Wrapf(err, "learning type %s", canonical)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[canonical]; exists {
		return duplicatef("tried to learn type for already-registered uri %s", canonical)
	}
	r.types[canonical] = typeEntry{schema: cloneDocument(schema)}
	r.learned = append(r.learned, canonical)
	return nil
}

// ExpandURI resolves a type name to its canonical URI. Absolute URIs
// (scheme:rest) are returned unchanged; /prefix/suffix shorthands are resolved
// through the prefix table.
func (r *Registry) ExpandURI(name string) (string, error) {
	if absoluteURIRegex.MatchString(name) {
		return name, nil
	}

	m := shorthandRegex.FindStringSubmatch(name)
	if m == nil {
		return "", nameSyntaxf("couldn't understand type name %q", name)
	}
	prefix, suffix := m[1], m[2]

	r.mu.RLock()
	base, ok := r.prefixes[prefix]
	r.mu.RUnlock()

	if !ok {
		return "", unknownTypef("unknown prefix %q in type name %q", prefix, name)
	}
	return base + suffix, nil
}

// Prefixes returns a copy of the prefix table.
func (r *Registry) Prefixes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.prefixes)
}

// Lookup returns information about the type registered under a canonical URI.
func (r *Registry) Lookup(uri string) (TypeInfo, bool) {
	entry, ok := r.lookup(uri)
	if !ok {
		return TypeInfo{}, false
	}
	return entry.info(uri), true
}

// Types returns every registered type ordered by URI.
func (r *Registry) Types() []TypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uris := slices.Sorted(maps.Keys(r.types))
	infos := make([]TypeInfo, 0, len(uris))
	for _, uri := range uris {
		infos = append(infos, r.types[uri].info(uri))
	}
	return infos
}

// Learned returns the types registered with LearnType in the order they were
// learned. Replaying them in this order into a fresh registry always succeeds.
func (r *Registry) Learned() []TypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TypeInfo, 0, len(r.learned))
	for _, uri := range r.learned {
		infos = append(infos, r.types[uri].info(uri))
	}
	return infos
}

func (r *Registry) lookup(uri string) (typeEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.types[uri]
	return entry, ok
}

func (e typeEntry) info(uri string) TypeInfo {
	if e.def != nil {
		return TypeInfo{URI: uri}
	}
	return TypeInfo{URI: uri, Learned: true, Schema: cloneDocument(e.schema)}
}

// cloneDocument deep-copies the maps and sequences of a decoded document.
// Scalars are shared.
func cloneDocument(doc any) any {
	switch d := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = cloneDocument(v)
		}
		return out
	case []any:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = cloneDocument(v)
		}
		return out
	}

	if fields, other, ok := asMapping(doc); ok {
		if len(other) == 0 {
			return cloneDocument(fields)
		}
		out := make(map[any]any, len(fields)+len(other))
		for k, v := range fields {
			out[k] = cloneDocument(v)
		}
		for k, v := range other {
			out[k] = cloneDocument(v)
		}
		return out
	}
	if items, ok := asSequence(doc); ok {
		return cloneDocument(items)
	}
	return doc
}

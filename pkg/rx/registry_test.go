package rx

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsPrefixesAndCoreTypes(t *testing.T) {
	r := New()

	assert.Equal(t, map[string]string{
		"":         CoreNamespace,
		MetaPrefix: MetaNamespace,
	}, r.Prefixes())

	types := r.Types()
	require.Len(t, types, 14)
	for _, info := range types {
		assert.False(t, info.Learned, info.URI)
		assert.Nil(t, info.Schema, info.URI)
	}
	assert.Equal(t, CoreNamespace+"all", types[0].URI)
	assert.Equal(t, CoreNamespace+"str", types[len(types)-1].URI)
}

func TestNewRegistry_ExplicitTable(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Empty(t, r.Types())

	_, err = r.MakeSchema("//str")
	assert.True(t, errors.Is(err, ErrUnknownType), "got %v", err)

	defs := CoreTypes()
	_, err = NewRegistry(defs[0], defs[0])
	assert.True(t, errors.Is(err, ErrDuplicateRegistration), "got %v", err)
}

func TestExpandURI(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPrefix("ex", "tag:example.com,2026:rx/"))

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "core shorthand", in: "//str", want: CoreNamespace + "str"},
		{name: "meta shorthand", in: "/.meta/schema", want: MetaNamespace + "schema"},
		{name: "custom prefix", in: "/ex/point", want: "tag:example.com,2026:rx/point"},
		{name: "suffix with punctuation", in: "/ex/a-b.c_d", want: "tag:example.com,2026:rx/a-b.c_d"},
		{name: "absolute uri", in: "tag:codesimply.com,2008:rx/core/int", want: "tag:codesimply.com,2008:rx/core/int"},
		{name: "absolute http uri", in: "http://example.com/x", want: "http://example.com/x"},
		{name: "unknown prefix", in: "/foo/str", wantErr: ErrUnknownType},
		{name: "single slash", in: "/str", wantErr: ErrNameSyntax},
		{name: "empty", in: "", wantErr: ErrNameSyntax},
		{name: "uppercase", in: "//Str", wantErr: ErrNameSyntax},
		{name: "empty suffix", in: "/ex/", wantErr: ErrNameSyntax},
		{name: "bare word", in: "str", wantErr: ErrNameSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ExpandURI(tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "ExpandURI(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddPrefix_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPrefix("ex", "tag:example.com,2026:a/"))

	err := r.AddPrefix("ex", "tag:example.com,2026:b/")
	assert.True(t, errors.Is(err, ErrDuplicateRegistration), "got %v", err)

	err = r.AddPrefix("", "tag:example.com,2026:core/")
	assert.True(t, errors.Is(err, ErrDuplicateRegistration), "got %v", err)

	// The first registration stays in effect.
	got, err := r.ExpandURI("/ex/x")
	require.NoError(t, err)
	assert.Equal(t, "tag:example.com,2026:a/x", got)
}

func TestRegisterType(t *testing.T) {
	r := New()

	err := r.RegisterType(TypeDef{URI: KindInt.URI(), New: newStr})
	assert.True(t, errors.Is(err, ErrDuplicateRegistration), "got %v", err)

	// The built-in int is still in effect.
	v, err := r.MakeSchema("//int")
	require.NoError(t, err)
	assert.True(t, v.Check(1))
	assert.False(t, v.Check("1"))

	custom := TypeDef{
		URI: "tag:example.com,2026:even",
		New: func(doc map[string]any, _ *Registry) (Validator, error) {
			if err := checkKeys(doc, KindInt); err != nil {
				return nil, err
			}
			return evenValidator{}, nil
		},
	}
	require.NoError(t, r.RegisterType(custom))

	v, err = r.MakeSchema("tag:example.com,2026:even")
	require.NoError(t, err)
	assert.True(t, v.Check(4))
	assert.False(t, v.Check(3))

	err = r.RegisterType(TypeDef{URI: "tag:example.com,2026:nothing"})
	assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
}

type evenValidator struct{}

func (evenValidator) Check(value any) bool {
	n, ok := asNumber(value)
	return ok && n.exact && n.i%2 == 0
}

func TestLearnType(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPrefix("ex", "tag:example.com,2026:"))

	point := map[string]any{
		"type":     "//rec",
		"required": map[string]any{"x": "//num", "y": "//num"},
	}
	require.NoError(t, r.LearnType("/ex/point", point))

	info, ok := r.Lookup("tag:example.com,2026:point")
	require.True(t, ok)
	assert.True(t, info.Learned)
	assert.Equal(t, point, info.Schema)

	v, err := r.MakeSchema("/ex/point")
	require.NoError(t, err)
	assert.True(t, v.Check(map[string]any{"x": 1, "y": 2.5}))
	assert.False(t, v.Check(map[string]any{"x": 1}))

	// Learned types compose with other learned types.
	require.NoError(t, r.LearnType("tag:example.com,2026:polygon", map[string]any{
		"type":     "//arr",
		"contents": "/ex/point",
		"length":   map[string]any{"min": 3},
	}))
	poly, err := r.MakeSchema(map[string]any{"type": "/ex/polygon"})
	require.NoError(t, err)
	assert.True(t, poly.Check([]any{
		map[string]any{"x": 0, "y": 0},
		map[string]any{"x": 1, "y": 0},
		map[string]any{"x": 0, "y": 1},
	}))
	assert.False(t, poly.Check([]any{map[string]any{"x": 0, "y": 0}}))
}

func TestLearnType_Errors(t *testing.T) {
	r := New()
	require.NoError(t, r.AddPrefix("ex", "tag:example.com,2026:"))

	t.Run("invalid schema is rejected and not registered", func(t *testing.T) {
		err := r.LearnType("/ex/broken", map[string]any{"type": "/ex/missing"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownType), "got %v", err)

		_, ok := r.Lookup("tag:example.com,2026:broken")
		assert.False(t, ok)
	})

	t.Run("self reference is unknown at learn time", func(t *testing.T) {
		err := r.LearnType("/ex/self", map[string]any{
			"type": "//arr", "contents": "/ex/self",
		})
		assert.True(t, errors.Is(err, ErrUnknownType), "got %v", err)
	})

	t.Run("duplicate uri", func(t *testing.T) {
		require.NoError(t, r.LearnType("/ex/name", "//str"))
		err := r.LearnType("tag:example.com,2026:name", "//int")
		assert.True(t, errors.Is(err, ErrDuplicateRegistration), "got %v", err)

		// The first registration stays in effect.
		v, err := r.MakeSchema("/ex/name")
		require.NoError(t, err)
		assert.True(t, v.Check("x"))
		assert.False(t, v.Check(1))
	})

	t.Run("cannot shadow a built-in", func(t *testing.T) {
		err := r.LearnType("//str", "//int")
		assert.True(t, errors.Is(err, ErrDuplicateRegistration), "got %v", err)
	})

	t.Run("bad uri", func(t *testing.T) {
		err := r.LearnType("not a uri", "//str")
		assert.True(t, errors.Is(err, ErrNameSyntax), "got %v", err)
	})
}

func TestLearned_KeepsRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.LearnType("tag:example.com,2026:z-base", "//int"))
	require.NoError(t, r.LearnType("tag:example.com,2026:a-list", map[string]any{
		"type": "//arr", "contents": "tag:example.com,2026:z-base",
	}))

	learned := r.Learned()
	require.Len(t, learned, 2)
	assert.Equal(t, "tag:example.com,2026:z-base", learned[0].URI)
	assert.Equal(t, "tag:example.com,2026:a-list", learned[1].URI)

	// Types is ordered by URI instead.
	types := r.Types()
	var uris []string
	for _, info := range types {
		if info.Learned {
			uris = append(uris, info.URI)
		}
	}
	assert.Equal(t, []string{"tag:example.com,2026:a-list", "tag:example.com,2026:z-base"}, uris)
}

func TestLearnType_StoresPrivateCopy(t *testing.T) {
	r := New()
	doc := map[string]any{
		"type":     "//rec",
		"required": map[string]any{"a": "//int"},
	}
	require.NoError(t, r.LearnType("tag:example.com,2026:a", doc))

	doc["required"].(map[string]any)["a"] = "//str"

	v, err := r.MakeSchema("tag:example.com,2026:a")
	require.NoError(t, err)
	assert.True(t, v.Check(map[string]any{"a": 1}))
}

func TestRegistry_ConcurrentCompileAndCheck(t *testing.T) {
	r := New()
	require.NoError(t, r.LearnType("tag:example.com,2026:ids", map[string]any{
		"type": "//arr", "contents": map[string]any{"type": "//int", "range": map[string]any{"min": 0}},
	}))

	shared, err := r.MakeSchema("tag:example.com,2026:ids")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			v, err := r.MakeSchema("tag:example.com,2026:ids")
			if err != nil {
				t.Error(err)
				return
			}
			for i := range 100 {
				if !v.Check([]any{i, i + 1}) || !shared.Check([]any{i}) {
					t.Error("unexpected check failure")
					return
				}
			}
		})
	}
	wg.Wait()
}

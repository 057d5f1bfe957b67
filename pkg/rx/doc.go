// Package rx compiles declarative schema documents into validators and checks
// arbitrary decoded values against them.
//
// A schema document is already-decoded data: a bare type name such as "//str",
// or a mapping with a "type" key and the parameters of that type. The package
// never parses text; decode YAML, JSON or TOML first and hand over the result.
//
// # Registry
//
// A [Registry] owns two tables. The prefix table maps short prefixes to URI
// bases ("" is bound to [CoreNamespace] and ".meta" to [MetaNamespace]). The
// type table maps canonical URIs to either a built-in [TypeDef] or a learned
// schema document registered with [Registry.LearnType]:
//
//	r := rx.New()
//	if err := r.AddPrefix("ex", "tag:example.com,2026:"); err != nil {
//		return err
//	}
//	if err := r.LearnType("/ex/point", map[string]any{
//		"type":     "//rec",
//		"required": map[string]any{"x": "//num", "y": "//num"},
//	}); err != nil {
//		return err
//	}
//
// # Compiling and checking
//
// [Registry.MakeSchema] compiles a document into a [Validator]. Compilation
// fails fast with an error marked as one of [ErrConfiguration],
// [ErrUnknownType], [ErrNameSyntax] or [ErrDuplicateRegistration]; use
// [errors.Is] to classify it. Checking never fails, it only answers true or
// false:
//
//	v, err := r.MakeSchema("/ex/point")
//	if err != nil {
//		return err
//	}
//	ok := v.Check(map[string]any{"x": 1, "y": 2.5})
//
// # Kinds
//
// The fourteen built-in kinds are all, any, arr, bool, def, fail, int, map,
// nil, num, one, rec, seq and str. [CoreTypes] returns their definitions in a
// fixed order; [NewRegistry] accepts an explicit table instead.
//
// Validators are immutable once compiled and may be shared across goroutines.
package rx

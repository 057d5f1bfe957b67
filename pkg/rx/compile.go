package rx

import (
	"github.com/cockroachdb/errors"
)

// MakeSchema compiles a schema document into a Validator.
//
// The document is either a bare type name, shorthand for {type: name}, or a
// mapping with a type key plus the parameters of that type. References to
// learned types must carry no parameters; the learned document is compiled in
// their place.
func (r *Registry) MakeSchema(schema any) (Validator, error) {
	doc, err := schemaDocument(schema)
	if err != nil {
		return nil, err
	}

	name, ok := doc[typeKey].(string)
	if !ok {
		if _, present := doc[typeKey]; !present {
			return nil, configErrorf("schema has no type")
		}
		return nil, configErrorf("schema type must be a string, got %T", doc[typeKey])
	}

	uri, err := r.ExpandURI(name)
	if err != nil {
		return nil, err
	}

	entry, ok := r.lookup(uri)
	if !ok {
		return nil, unknownTypef("unknown type %s", uri)
	}

	if entry.def != nil {
		return entry.def.New(doc, r)
	}

	if len(doc) > 1 {
		return nil, configErrorf("composed type %s does not take check arguments", uri)
	}
	v, err := r.MakeSchema(entry.schema)
	if err != nil {
		return nil, errors.Wrapf(err, "learned type %s", uri)
	}
	return v, nil
}

// MustMakeSchema is like MakeSchema but panics if the document does not
// compile. It simplifies initialization of package-level validators.
func (r *Registry) MustMakeSchema(schema any) Validator {
	v, err := r.MakeSchema(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// schemaDocument normalizes the accepted input shapes into a mapping.
func schemaDocument(schema any) (map[string]any, error) {
	if name, ok := asString(schema); ok {
		return map[string]any{typeKey: name}, nil
	}
	fields, other, ok := asMapping(schema)
	if !ok || len(other) > 0 {
		return nil, configErrorf("invalid schema argument: expected a type name or a mapping, got %T", schema)
	}
	return fields, nil
}

package rx

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
)

// compileList compiles a non-empty list of schema documents held in doc[key].
func compileList(r *Registry, doc map[string]any, kind Kind, key string) ([]Validator, error) {
	raw, _ := param(doc, key)
	items, ok := asSequence(raw)
	if !ok {
		return nil, configErrorf("//%s %s must be a list of schemas", kind, key)
	}
	if len(items) == 0 {
		return nil, configErrorf("//%s %s must not be empty", kind, key)
	}

	out := make([]Validator, len(items))
	for i, item := range items {
		v, err := r.MakeSchema(item)
		if err != nil {
			return nil, errors.Wrapf(err, "//%s %s[%d]", kind, key, i)
		}
		out[i] = v
	}
	return out, nil
}

// compileParam compiles the single schema document held in doc[key]. A missing
// parameter yields a nil Validator when optional is set.
func compileParam(r *Registry, doc map[string]any, kind Kind, key string, optional bool) (Validator, error) {
	raw, ok := param(doc, key)
	if !ok {
		if optional {
			return nil, nil
		}
		return nil, configErrorf("no %s given for //%s", key, kind)
	}
	v, err := r.MakeSchema(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "//%s %s", kind, key)
	}
	return v, nil
}

type allValidator struct {
	of []Validator
}

func newAll(doc map[string]any, r *Registry) (Validator, error) {
	if err := checkKeys(doc, KindAll, "of"); err != nil {
		return nil, err
	}
	if _, ok := param(doc, "of"); !ok {
		return nil, configErrorf("no alternatives given in //all of")
	}
	of, err := compileList(r, doc, KindAll, "of")
	if err != nil {
		return nil, err
	}
	return &allValidator{of: of}, nil
}

func (*allValidator) Kind() Kind { return KindAll }

func (v *allValidator) Check(value any) bool {
	for _, s := range v.of {
		if !s.Check(value) {
			return false
		}
	}
	return true
}

// anyValidator accepts everything when of is nil.
type anyValidator struct {
	of []Validator
}

func newAny(doc map[string]any, r *Registry) (Validator, error) {
	if err := checkKeys(doc, KindAny, "of"); err != nil {
		return nil, err
	}
	if _, ok := param(doc, "of"); !ok {
		return &anyValidator{}, nil
	}
	of, err := compileList(r, doc, KindAny, "of")
	if err != nil {
		return nil, err
	}
	return &anyValidator{of: of}, nil
}

func (*anyValidator) Kind() Kind { return KindAny }

func (v *anyValidator) Check(value any) bool {
	if v.of == nil {
		return true
	}
	for _, s := range v.of {
		if s.Check(value) {
			return true
		}
	}
	return false
}

type arrValidator struct {
	contents Validator
	length   *Range
}

func newArr(doc map[string]any, r *Registry) (Validator, error) {
	if err := checkKeys(doc, KindArr, "contents", "length"); err != nil {
		return nil, err
	}
	contents, err := compileParam(r, doc, KindArr, "contents", false)
	if err != nil {
		return nil, err
	}
	length, err := optionalRange(doc, KindArr, "length")
	if err != nil {
		return nil, err
	}
	return &arrValidator{contents: contents, length: length}, nil
}

func (*arrValidator) Kind() Kind { return KindArr }

func (v *arrValidator) Check(value any) bool {
	items, ok := asSequence(value)
	if !ok {
		return false
	}
	if v.length != nil && !v.length.contains(intNumber(int64(len(items)))) {
		return false
	}
	for _, item := range items {
		if !v.contents.Check(item) {
			return false
		}
	}
	return true
}

type mapValidator struct {
	values Validator
}

func newMap(doc map[string]any, r *Registry) (Validator, error) {
	if err := checkKeys(doc, KindMap, "values"); err != nil {
		return nil, err
	}
	values, err := compileParam(r, doc, KindMap, "values", false)
	if err != nil {
		return nil, err
	}
	return &mapValidator{values: values}, nil
}

func (*mapValidator) Kind() Kind { return KindMap }

func (v *mapValidator) Check(value any) bool {
	fields, other, ok := asMapping(value)
	if !ok {
		return false
	}
	for _, fv := range fields {
		if !v.values.Check(fv) {
			return false
		}
	}
	for _, ov := range other {
		if !v.values.Check(ov) {
			return false
		}
	}
	return true
}

// recValidator checks a record: a mapping with a fixed set of known fields.
// Fields outside the known set are collected and checked against rest as a
// single sub-mapping; without rest they are rejected.
type recValidator struct {
	required map[string]Validator
	optional map[string]Validator
	known    map[string]struct{}
	rest     Validator
}

func newRec(doc map[string]any, r *Registry) (Validator, error) {
	if err := checkKeys(doc, KindRec, "required", "optional", "rest"); err != nil {
		return nil, err
	}

	v := &recValidator{known: make(map[string]struct{})}

	rest, err := compileParam(r, doc, KindRec, "rest", true)
	if err != nil {
		return nil, err
	}
	v.rest = rest

	if v.required, err = v.compileFields(r, doc, "required"); err != nil {
		return nil, err
	}
	if v.optional, err = v.compileFields(r, doc, "optional"); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *recValidator) compileFields(r *Registry, doc map[string]any, which string) (map[string]Validator, error) {
	out := make(map[string]Validator)
	raw, ok := param(doc, which)
	if !ok {
		return out, nil
	}
	fields, other, ok := asMapping(raw)
	if !ok || len(other) > 0 {
		return nil, configErrorf("//rec %s must be a mapping of field names to schemas", which)
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if _, dup := v.known[name]; dup {
			return nil, configErrorf("%q appears in both required and optional", name)
		}
		v.known[name] = struct{}{}

		s, err := r.MakeSchema(fields[name])
		if err != nil {
			return nil, errors.Wrapf(err, "//rec %s field %q", which, name)
		}
		out[name] = s
	}
	return out, nil
}

func (*recValidator) Kind() Kind { return KindRec }

func (v *recValidator) Check(value any) bool {
	fields, other, ok := asMapping(value)
	if !ok {
		return false
	}

	var unknown []string
	for name := range fields {
		if _, known := v.known[name]; !known {
			unknown = append(unknown, name)
		}
	}
	hasRest := len(unknown) > 0 || len(other) > 0
	if hasRest && v.rest == nil {
		return false
	}

	for name, s := range v.required {
		fv, present := fields[name]
		if !present || !s.Check(fv) {
			return false
		}
	}

	for name, s := range v.optional {
		if fv, present := fields[name]; present && !s.Check(fv) {
			return false
		}
	}

	if hasRest {
		return v.rest.Check(restOf(fields, other, unknown))
	}
	return true
}

// restOf builds the sub-mapping of the unknown entries of a record value. The
// result is a map[string]any unless the value had non-string keys.
func restOf(fields map[string]any, other map[any]any, unknown []string) any {
	if len(other) == 0 {
		rest := make(map[string]any, len(unknown))
		for _, name := range unknown {
			rest[name] = fields[name]
		}
		return rest
	}

	rest := make(map[any]any, len(unknown)+len(other))
	for _, name := range unknown {
		rest[name] = fields[name]
	}
	for k, ov := range other {
		rest[k] = ov
	}
	return rest
}

type seqValidator struct {
	contents []Validator
	tail     Validator
}

func newSeq(doc map[string]any, r *Registry) (Validator, error) {
	if err := checkKeys(doc, KindSeq, "contents", "tail"); err != nil {
		return nil, err
	}
	if _, ok := param(doc, "contents"); !ok {
		return nil, configErrorf("no contents provided for //seq")
	}
	contents, err := compileList(r, doc, KindSeq, "contents")
	if err != nil {
		return nil, err
	}
	tail, err := compileParam(r, doc, KindSeq, "tail", true)
	if err != nil {
		return nil, err
	}
	return &seqValidator{contents: contents, tail: tail}, nil
}

func (*seqValidator) Kind() Kind { return KindSeq }

func (v *seqValidator) Check(value any) bool {
	items, ok := asSequence(value)
	if !ok || len(items) < len(v.contents) {
		return false
	}

	for i, s := range v.contents {
		if !s.Check(items[i]) {
			return false
		}
	}

	if len(items) > len(v.contents) {
		return v.tail != nil && v.tail.Check(items[len(v.contents):])
	}
	return true
}

package rx

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Kind identifies one of the built-in validator kinds.
type Kind int

// The fourteen built-in kinds, in registration order.
const (
	KindAll Kind = iota
	KindAny
	KindArr
	KindBool
	KindDef
	KindFail
	KindInt
	KindMap
	KindNil
	KindNum
	KindOne
	KindRec
	KindSeq
	KindStr
)

var kindNames = [...]string{
	KindAll:  "all",
	KindAny:  "any",
	KindArr:  "arr",
	KindBool: "bool",
	KindDef:  "def",
	KindFail: "fail",
	KindInt:  "int",
	KindMap:  "map",
	KindNil:  "nil",
	KindNum:  "num",
	KindOne:  "one",
	KindRec:  "rec",
	KindSeq:  "seq",
	KindStr:  "str",
}

// String returns the kind's subname under the core namespace.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// URI returns the canonical type URI of the kind.
func (k Kind) URI() string {
	return CoreNamespace + k.String()
}

// Validator is the compiled form of a schema document.
//
// Check reports whether value conforms. It never panics and has no side
// effects, so a Validator may be shared and checked concurrently.
type Validator interface {
	Check(value any) bool
}

// KindOf returns the built-in kind of v. It reports false for validators
// supplied by custom type definitions.
func KindOf(v Validator) (Kind, bool) {
	k, ok := v.(interface{ Kind() Kind })
	if !ok {
		return 0, false
	}
	return k.Kind(), true
}

// Constructor compiles a schema document into a Validator. The document has
// already been resolved to the constructor's type; nested schema documents are
// compiled through the registry.
type Constructor func(doc map[string]any, r *Registry) (Validator, error)

// TypeDef binds a type URI to the constructor for that type.
type TypeDef struct {
	URI string
	New Constructor
}

// CoreTypes returns the table of the fourteen built-in kinds in a fixed order.
func CoreTypes() []TypeDef {
	return []TypeDef{
		{URI: KindAll.URI(), New: newAll},
		{URI: KindAny.URI(), New: newAny},
		{URI: KindArr.URI(), New: newArr},
		{URI: KindBool.URI(), New: newBool},
		{URI: KindDef.URI(), New: newDef},
		{URI: KindFail.URI(), New: newFail},
		{URI: KindInt.URI(), New: newInt},
		{URI: KindMap.URI(), New: newMap},
		{URI: KindNil.URI(), New: newNil},
		{URI: KindNum.URI(), New: newNum},
		{URI: KindOne.URI(), New: newOne},
		{URI: KindRec.URI(), New: newRec},
		{URI: KindSeq.URI(), New: newSeq},
		{URI: KindStr.URI(), New: newStr},
	}
}

// param returns a document parameter. An explicit null counts as present, so
// it reaches the parameter's own type check and is rejected there.
func param(doc map[string]any, key string) (any, bool) {
	v, ok := doc[key]
	return v, ok
}

// optionalRange compiles the range parameter key of doc, if present.
func optionalRange(doc map[string]any, kind Kind, key string) (*Range, error) {
	raw, ok := param(doc, key)
	if !ok {
		return nil, nil
	}
	r, err := NewRange(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "//%s %s", kind, key)
	}
	return &r, nil
}

type boolValidator struct{}

func newBool(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindBool); err != nil {
		return nil, err
	}
	return boolValidator{}, nil
}

func (boolValidator) Kind() Kind { return KindBool }

func (boolValidator) Check(value any) bool { return isBool(value) }

type defValidator struct{}

func newDef(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindDef); err != nil {
		return nil, err
	}
	return defValidator{}, nil
}

func (defValidator) Kind() Kind { return KindDef }

func (defValidator) Check(value any) bool { return !isNil(value) }

type failValidator struct{}

func newFail(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindFail); err != nil {
		return nil, err
	}
	return failValidator{}, nil
}

func (failValidator) Kind() Kind { return KindFail }

func (failValidator) Check(any) bool { return false }

type nilValidator struct{}

func newNil(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindNil); err != nil {
		return nil, err
	}
	return nilValidator{}, nil
}

func (nilValidator) Kind() Kind { return KindNil }

func (nilValidator) Check(value any) bool { return isNil(value) }

type oneValidator struct{}

func newOne(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindOne); err != nil {
		return nil, err
	}
	return oneValidator{}, nil
}

func (oneValidator) Kind() Kind { return KindOne }

// Check accepts any single scalar: a boolean, a number or a string.
func (oneValidator) Check(value any) bool {
	if isBool(value) || isNumber(value) {
		return true
	}
	_, ok := asString(value)
	return ok
}

type intValidator struct {
	value *number
	rng   *Range
}

func newInt(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindInt, "range", "value"); err != nil {
		return nil, err
	}

	v := &intValidator{}
	if raw, ok := param(doc, "value"); ok {
		n, ok := asNumber(raw)
		if !ok || !n.integral() {
			return nil, configErrorf("invalid value parameter for //int: %v", raw)
		}
		v.value = &n
	}

	rng, err := optionalRange(doc, KindInt, "range")
	if err != nil {
		return nil, err
	}
	v.rng = rng
	return v, nil
}

func (*intValidator) Kind() Kind { return KindInt }

func (v *intValidator) Check(value any) bool {
	n, ok := asNumber(value)
	return ok &&
		n.integral() &&
		(v.rng == nil || v.rng.contains(n)) &&
		(v.value == nil || n.equal(*v.value))
}

type numValidator struct {
	value *number
	rng   *Range
}

func newNum(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindNum, "range", "value"); err != nil {
		return nil, err
	}

	v := &numValidator{}
	if raw, ok := param(doc, "value"); ok {
		n, ok := asNumber(raw)
		if !ok {
			return nil, configErrorf("invalid value parameter for //num: %v", raw)
		}
		v.value = &n
	}

	rng, err := optionalRange(doc, KindNum, "range")
	if err != nil {
		return nil, err
	}
	v.rng = rng
	return v, nil
}

func (*numValidator) Kind() Kind { return KindNum }

func (v *numValidator) Check(value any) bool {
	n, ok := asNumber(value)
	return ok &&
		(v.rng == nil || v.rng.contains(n)) &&
		(v.value == nil || n.equal(*v.value))
}

type strValidator struct {
	value  *string
	length *Range
}

func newStr(doc map[string]any, _ *Registry) (Validator, error) {
	if err := checkKeys(doc, KindStr, "value", "length"); err != nil {
		return nil, err
	}

	v := &strValidator{}
	if raw, ok := param(doc, "value"); ok {
		s, ok := asString(raw)
		if !ok {
			return nil, configErrorf("invalid value parameter for //str: %v", raw)
		}
		v.value = &s
	}

	length, err := optionalRange(doc, KindStr, "length")
	if err != nil {
		return nil, err
	}
	v.length = length
	return v, nil
}

func (*strValidator) Kind() Kind { return KindStr }

func (v *strValidator) Check(value any) bool {
	s, ok := asString(value)
	return ok &&
		(v.value == nil || s == *v.value) &&
		(v.length == nil || v.length.contains(intNumber(int64(utf8.RuneCountInString(s)))))
}

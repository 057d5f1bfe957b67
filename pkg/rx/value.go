package rx

import (
	"cmp"
	"encoding/json"
	"math"
	"reflect"
)

// number is the normalized form of a numeric scalar. Integers keep their exact
// value so that large integers compare without float rounding.
type number struct {
	f     float64
	i     int64
	exact bool
}

func intNumber(i int64) number {
	return number{f: float64(i), i: i, exact: true}
}

func floatNumber(f float64) number {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return number{f: f, i: int64(f), exact: true}
	}
	return number{f: f}
}

// integral reports whether n has no fractional part.
func (n number) integral() bool {
	return n.exact || (n.f == math.Trunc(n.f) && !math.IsInf(n.f, 0))
}

func (n number) equal(o number) bool {
	c, ok := compareNumbers(n, o)
	return ok && c == 0
}

// compareNumbers orders a and b. Two exact values compare as int64, so
// integers beyond 2^53 keep their precision. The second result is false when
// either side is NaN.
func compareNumbers(a, b number) (int, bool) {
	switch {
	case a.exact && b.exact:
		return cmp.Compare(a.i, b.i), true
	case a.exact:
		return compareIntFloat(a.i, b.f)
	case b.exact:
		c, ok := compareIntFloat(b.i, a.f)
		return -c, ok
	case math.IsNaN(a.f) || math.IsNaN(b.f):
		return 0, false
	default:
		return cmp.Compare(a.f, b.f), true
	}
}

// compareIntFloat orders i against f without converting i to float64.
func compareIntFloat(i int64, f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= 0x1p63:
		return -1, true
	case f < -0x1p63:
		return 1, true
	}

	whole := math.Trunc(f)
	if t := int64(whole); i != t {
		return cmp.Compare(i, t), true
	}
	switch frac := f - whole; {
	case frac > 0:
		return -1, true
	case frac < 0:
		return 1, true
	default:
		return 0, true
	}
}

// asNumber reports whether v is a numeric scalar. Booleans are never numbers,
// even though some decoders and languages treat them as 0 and 1.
func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case nil, bool:
		return number{}, false
	case int:
		return intNumber(int64(n)), true
	case int64:
		return intNumber(n), true
	case float64:
		return floatNumber(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return intNumber(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return number{}, false
		}
		return floatNumber(f), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intNumber(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return number{f: float64(u)}, true
		}
		return intNumber(int64(u)), true
	case reflect.Float32, reflect.Float64:
		return floatNumber(rv.Float()), true
	default:
		return number{}, false
	}
}

func isNumber(v any) bool {
	_, ok := asNumber(v)
	return ok
}

// asString reports whether v is a text scalar. A json.Number is a number, not
// text, even though its underlying type is string.
func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case nil, json.Number:
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func isBool(v any) bool {
	if _, ok := v.(bool); ok {
		return true
	}
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Bool
}

func isNil(v any) bool {
	return v == nil
}

// asSequence reports whether v is a finite ordered sequence and returns its
// elements.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case []any:
		return s, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// asMapping reports whether v is a key-value mapping. Entries with string keys
// are returned in fields; entries keyed by anything else are returned in other,
// which is nil for the common map[string]any case.
func asMapping(v any) (fields map[string]any, other map[any]any, ok bool) {
	switch m := v.(type) {
	case nil:
		return nil, nil, false
	case map[string]any:
		return m, nil, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, nil, false
	}
	fields = make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		if k.Kind() == reflect.String {
			fields[k.String()] = iter.Value().Interface()
			continue
		}
		if other == nil {
			other = make(map[any]any)
		}
		other[iter.Key().Interface()] = iter.Value().Interface()
	}
	return fields, other, true
}

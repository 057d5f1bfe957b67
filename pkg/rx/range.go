package rx

import (
	"maps"
	"math"
	"slices"
)

// Range keys recognized in a range specification.
const (
	rangeMin   = "min"
	rangeMax   = "max"
	rangeMinEx = "min-ex"
	rangeMaxEx = "max-ex"
)

// Range is a compiled numeric bounds predicate. Absent bounds default to
// negative or positive infinity, so they never constrain a finite value.
// Integer bounds are kept exact and compared against integer values without
// a detour through float64.
type Range struct {
	min   number
	max   number
	minEx number
	maxEx number
}

// Unbounded returns a Range that accepts every finite value.
func Unbounded() Range {
	lo, hi := floatNumber(math.Inf(-1)), floatNumber(math.Inf(1))
	return Range{min: lo, max: hi, minEx: lo, maxEx: hi}
}

// NewRange compiles a range specification: a mapping with up to four numeric
// keys, min, max, min-ex and max-ex. An inclusive and an exclusive bound on
// the same side may not both be given.
func NewRange(spec any) (Range, error) {
	fields, other, ok := asMapping(spec)
	if !ok || len(other) > 0 {
		return Range{}, configErrorf("range must be a mapping of bounds")
	}

	r := Unbounded()
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		n, ok := asNumber(fields[key])
		if !ok {
			return Range{}, configErrorf("range bound %q must be a number", key)
		}
		switch key {
		case rangeMin:
			r.min = n
		case rangeMax:
			r.max = n
		case rangeMinEx:
			r.minEx = n
		case rangeMaxEx:
			r.maxEx = n
		default:
			return Range{}, configErrorf("unknown range bound %q", key)
		}
	}

	if _, ok := fields[rangeMin]; ok {
		if _, ok := fields[rangeMinEx]; ok {
			return Range{}, configErrorf("cannot define both exclusive and inclusive min")
		}
	}
	if _, ok := fields[rangeMax]; ok {
		if _, ok := fields[rangeMaxEx]; ok {
			return Range{}, configErrorf("cannot define both exclusive and inclusive max")
		}
	}

	return r, nil
}

// Contains reports whether x is a number that satisfies every bound. Values
// that are not numbers, and NaN, are never contained.
func (r Range) Contains(x any) bool {
	n, ok := asNumber(x)
	return ok && r.contains(n)
}

func (r Range) contains(n number) bool {
	lo, okLo := compareNumbers(n, r.min)
	hi, okHi := compareNumbers(n, r.max)
	loEx, okLoEx := compareNumbers(n, r.minEx)
	hiEx, okHiEx := compareNumbers(n, r.maxEx)
	if !okLo || !okHi || !okLoEx || !okHiEx {
		return false
	}
	return lo >= 0 && hi <= 0 && loEx > 0 && hiEx < 0
}

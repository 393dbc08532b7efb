package prefs

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
)

// Sentinels returned by Parse when stored text does not parse under its kind.
const (
	SentinelInt   int64   = -1
	SentinelFloat float64 = -1
)

// timeLayouts are tried in order when parsing DateTime text. The first one
// is the canonical layout written by Format.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
}

// Format returns the canonical text form of v.
func Format(v Value) string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return v.s
	}
}

// Parse parses text as kind. On failure it returns the kind's sentinel
// (Int -1, Float -1.0, DateTime the zero time) and false. String never fails.
func Parse(kind Kind, text string) (Value, bool) {
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Int(SentinelInt), false
		}
		return Int(i), true
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) {
			return Float(SentinelFloat), false
		}
		return Float(f), true
	case KindDateTime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return Time(t), true
			}
		}
		// strfmt accepts the remaining ISO 8601 spellings: numeric offsets
		// without a colon, fixed millisecond fractions and zone-less times.
		if text != "" {
			if dt, err := strfmt.ParseDateTime(text); err == nil {
				return Time(time.Time(dt)), true
			}
		}
		return Time(time.Time{}), false
	default:
		return String(text), true
	}
}

// ParseStrict is Parse for user input: a parse failure is an error rather
// than a sentinel.
func ParseStrict(kind Kind, text string) (Value, error) {
	v, ok := Parse(kind, text)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, text, kind)
	}
	return v, nil
}

// Sentinel returns the fallback value for kind.
func Sentinel(kind Kind) Value {
	switch kind {
	case KindInt:
		return Int(SentinelInt)
	case KindFloat:
		return Float(SentinelFloat)
	case KindDateTime:
		return Time(time.Time{})
	default:
		return String("")
	}
}

// Detect picks a Value for an untyped Go value by its dynamic type.
// Unsupported types and NaN floats report false.
func Detect(v any) (Value, bool) {
	switch x := v.(type) {
	case Value:
		return x, true
	case string:
		return String(x), true
	case int:
		return Int(int64(x)), true
	case int8:
		return Int(int64(x)), true
	case int16:
		return Int(int64(x)), true
	case int32:
		return Int(int64(x)), true
	case int64:
		return Int(x), true
	case uint8:
		return Int(int64(x)), true
	case uint16:
		return Int(int64(x)), true
	case uint32:
		return Int(int64(x)), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Value{}, false
		}
		return Int(int64(x)), true
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, false
		}
		return Int(int64(x)), true
	case float32:
		if math.IsNaN(float64(x)) {
			return Value{}, false
		}
		return Float(float64(x)), true
	case float64:
		if math.IsNaN(x) {
			return Value{}, false
		}
		return Float(x), true
	case time.Time:
		return Time(x), true
	}
	return Value{}, false
}

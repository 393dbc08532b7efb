package prefs

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Kind is the type tag persisted next to every entry.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindDateTime
)

var kindNames = [...]string{
	KindString:   "String",
	KindInt:      "Int",
	KindFloat:    "Float",
	KindDateTime: "DateTime",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a persisted type tag back to its Kind.
func ParseKind(tag string) (Kind, bool) {
	for k, name := range kindNames {
		if name == tag {
			return Kind(k), true
		}
	}
	return KindString, false
}

// KindFromName is ParseKind for user input: it also accepts lower-case
// names and the "datetime"/"time" aliases.
func KindFromName(name string) (Kind, error) {
	switch name {
	case "String", "string", "str":
		return KindString, nil
	case "Int", "int", "integer":
		return KindInt, nil
	case "Float", "float", "number":
		return KindFloat, nil
	case "DateTime", "datetime", "time":
		return KindDateTime, nil
	}
	return KindString, fmt.Errorf("%w: unknown type %q", ErrInvalidValue, name)
}

// Value is a setting value. It is one of the four supported kinds; the zero
// Value is the empty string.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
}

func String(s string) Value  { return Value{kind: KindString, s: s} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Time(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) Str() string     { return v.s }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) Time() time.Time { return v.t }

// String returns the canonical text form, the same text Format produces.
func (v Value) String() string { return Format(v) }

// Equal reports whether v and o have the same kind and value. Times are
// compared as instants.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindDateTime:
		return v.t.Equal(o.t)
	default:
		return v.s == o.s
	}
}

type jsonValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	jv := jsonValue{Type: v.kind.String()}
	switch v.kind {
	case KindInt:
		jv.Value = v.i
	case KindFloat:
		if math.IsInf(v.f, 0) {
			jv.Value = Format(v)
		} else {
			jv.Value = v.f
		}
	default:
		jv.Value = Format(v)
	}
	return json.Marshal(jv)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := KindFromName(raw.Type)
	if err != nil {
		return err
	}

	var text string
	if err := json.Unmarshal(raw.Value, &text); err != nil {
		// numbers arrive unquoted
		var n json.Number
		if err := json.Unmarshal(raw.Value, &n); err != nil {
			return fmt.Errorf("%w: value for %s must be a string or number", ErrInvalidValue, kind)
		}
		text = n.String()
	}
	parsed, err := ParseStrict(kind, text)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

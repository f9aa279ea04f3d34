package http

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a request parameter value: a string, number, bool, or a list of
// those scalars. The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	list []Value
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric Value. NaN and infinities have no JSON form and
// are kept as their text.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return String(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(n, 'f', -1, 64))}
}

// Int returns a numeric Value holding n exactly.
func Int(n int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(n, 10))}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// List returns a list Value. Nested lists are flattened so a list only ever
// holds scalars.
func List(items ...Value) Value {
	flat := make([]Value, 0, len(items))
	for _, item := range items {
		if item.kind == KindList {
			flat = append(flat, item.list...)
			continue
		}
		flat = append(flat, item)
	}
	return Value{kind: KindList, list: flat}
}

// Strings returns a list Value of string scalars.
func Strings(items ...string) Value {
	values := make([]Value, len(items))
	for i, s := range items {
		values[i] = String(s)
	}
	return List(values...)
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Items returns the elements of a list Value, or nil for scalars.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Text returns the scalar rendered as text. Numbers keep the text they were
// built from; lists are joined with commas.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Text()
		}
		return strings.Join(parts, ",")
	default:
		return v.str
	}
}

// Interface returns v as a plain Go value (string, json.Number, bool or
// []any).
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.Interface()
		}
		return items
	default:
		return v.str
	}
}

// MarshalJSON encodes v as its natural JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Params maps parameter names to values.
type Params map[string]Value

// Keys returns the parameter names in sorted order. Every encoder walks the
// parameters in this order so encodings are deterministic.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface returns the parameters as a plain map, for logging and JSON.
func (p Params) Interface() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// ParseValue infers a Value from command-line text: "true"/"false" become
// bools, JSON number literals become numbers, anything else stays a string.
// Numbers keep their original text, so "12345678901234567890" is sent as
// written while "02134", "inf" and "NaN" stay strings.
func ParseValue(s string) Value {
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if isNumberLiteral(s) {
		return Value{kind: KindNumber, num: json.Number(s)}
	}
	return String(s)
}

// isNumberLiteral reports whether s is exactly one JSON number.
func isNumberLiteral(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	if strings.TrimSpace(s) != s {
		return false
	}
	return json.Valid([]byte(s))
}

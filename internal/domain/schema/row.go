package schema

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single typed cell. Numeric kinds (including bool) keep their value
// as float64; string kinds keep the string. Null marks a missing float32 or
// string value.
type Value struct {
	kind Kind
	num  float64
	str  string
	null bool
}

// IntValue builds a value for an integer kind.
func IntValue(kind Kind, v int64) Value { return Value{kind: kind, num: float64(v)} }

// Float32Value builds a float32 value. The stored float64 carries float32 precision.
func Float32Value(v float32) Value { return Value{kind: KindFloat32, num: float64(v)} }

// BoolValue builds a bool value.
func BoolValue(v bool) Value {
	if v {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// StringValue builds a string value.
func StringValue(v string) Value { return Value{kind: KindString, str: v} }

// NullValue builds a missing value of the given kind.
func NullValue(kind Kind) Value {
	v := Value{kind: kind, null: true}
	if kind == KindFloat32 {
		v.num = math.NaN()
	}
	return v
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.null }

// Float returns the numeric value. Missing float32 values are NaN; strings are 0.
func (v Value) Float() float64 { return v.num }

// Str returns the string value; empty for non-string kinds.
func (v Value) Str() string { return v.str }

// Bool returns the boolean value.
func (v Value) Bool() bool { return v.kind == KindBool && v.num != 0 }

// Interface returns the value as a plain Go value suitable for JSON encoding:
// int64, float64, bool, string or nil.
func (v Value) Interface() any {
	if v.null {
		return nil
	}
	switch {
	case v.kind.IsInteger():
		return int64(v.num)
	case v.kind == KindBool:
		return v.num != 0
	case v.kind == KindString:
		return v.str
	default:
		return v.num
	}
}

func (v Value) appendKey(b *strings.Builder) {
	if v.null {
		b.WriteString("~")
		return
	}
	switch v.kind {
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindBool:
		if v.num != 0 {
			b.WriteByte('t')
		} else {
			b.WriteByte('f')
		}
	default:
		b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
	}
}

// Row is one validated record, values in schema order.
type Row struct {
	values []Value
}

// NewRow wraps values (in schema order) as a Row. The slice is not copied.
func NewRow(values []Value) Row { return Row{values: values} }

// Len returns the number of values.
func (r Row) Len() int { return len(r.values) }

// At returns the value at column position i.
func (r Row) At(i int) Value { return r.values[i] }

// Interfaces returns the row as plain Go values in schema order.
func (r Row) Interfaces() []any {
	out := make([]any, len(r.values))
	for i, v := range r.values {
		out[i] = v.Interface()
	}
	return out
}

// Key returns a canonical encoding of the row. Two rows have the same key
// exactly when every value is equal.
func (r Row) Key() string {
	var b strings.Builder
	for i, v := range r.values {
		if i > 0 {
			b.WriteByte('|')
		}
		v.appendKey(&b)
	}
	return b.String()
}

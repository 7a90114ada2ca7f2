// Package schema describes the tabular contract rows must satisfy before they
// reach a predictor: named columns with fixed primitive kinds.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind is the primitive type of a column.
type Kind int

// Supported column kinds.
const (
	KindInt8 Kind = iota + 1
	KindInt16
	KindInt32
	KindFloat32
	KindBool
	KindString
)

// String returns the dtype-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// IsInteger reports whether the kind holds whole numbers.
func (k Kind) IsInteger() bool {
	return k == KindInt8 || k == KindInt16 || k == KindInt32
}

// IsNumeric reports whether values of the kind can be used as numbers.
// Booleans count as numeric (0/1).
func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k == KindFloat32 || k == KindBool
}

// bounds returns the inclusive range of an integer kind.
func (k Kind) bounds() (lo, hi float64) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindInt32:
		return math.MinInt32, math.MaxInt32
	default:
		return -math.MaxFloat32, math.MaxFloat32
	}
}

// Column is a named, typed column of the schema.
type Column struct {
	Name string
	Kind Kind
}

// Schema is an ordered, immutable set of columns.
type Schema struct {
	columns  []Column
	index    map[string]int
	defaults []Value
}

// New builds a Schema from columns. Column names must be unique and kinds known.
func New(columns []Column) (*Schema, error) {
	s := &Schema{
		columns:  make([]Column, len(columns)),
		index:    make(map[string]int, len(columns)),
		defaults: make([]Value, len(columns)),
	}
	copy(s.columns, columns)
	for i, c := range s.columns {
		if _, dup := s.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if c.Kind < KindInt8 || c.Kind > KindString {
			return nil, fmt.Errorf("column %q: unsupported kind %d", c.Name, c.Kind)
		}
		s.index[c.Name] = i
		s.defaults[i] = defaultValue(c.Kind)
	}
	return s, nil
}

func defaultValue(k Kind) Value {
	switch k {
	case KindString:
		return StringValue(DefaultString)
	case KindBool:
		return BoolValue(false)
	default:
		return Value{kind: k}
	}
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the ordered column list.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column returns the column at position i.
func (s *Schema) Column(i int) Column { return s.columns[i] }

// Names returns the column names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Defaults returns a fresh slice holding the default value of every column.
func (s *Schema) Defaults() []Value {
	out := make([]Value, len(s.defaults))
	copy(out, s.defaults)
	return out
}

// DefaultRow returns a row with every column at its default value.
func (s *Schema) DefaultRow() Row {
	return Row{values: s.Defaults()}
}

// Coerce converts a decoded JSON value into a Value for the column at position i.
// The decoder must have been configured with UseNumber so numbers arrive as
// json.Number and integrality can be checked exactly.
func (s *Schema) Coerce(i int, raw any) (Value, error) {
	kind := s.columns[i].Kind
	if raw == nil {
		switch kind {
		case KindFloat32, KindString:
			return NullValue(kind), nil
		default:
			return Value{}, fmt.Errorf("%w for %s", ErrNullValue, kind)
		}
	}

	switch kind {
	case KindString:
		str, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected string, got %s", ErrTypeMismatch, jsonType(raw))
		}
		return StringValue(str), nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected bool, got %s", ErrTypeMismatch, jsonType(raw))
		}
		return BoolValue(b), nil

	default:
		num, ok := raw.(json.Number)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, kind, jsonType(raw))
		}
		f, err := num.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, num.String())
		}
		return numberValue(kind, f)
	}
}

func numberValue(kind Kind, f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: non-finite %s", ErrOutOfRange, kind)
	}
	lo, hi := kind.bounds()
	if f < lo || f > hi {
		return Value{}, fmt.Errorf("%w: %v outside [%v, %v] for %s", ErrOutOfRange, f, lo, hi, kind)
	}
	if kind.IsInteger() {
		if math.Trunc(f) != f {
			return Value{}, fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, f)
		}
		return IntValue(kind, int64(f)), nil
	}
	return Float32Value(float32(f)), nil
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

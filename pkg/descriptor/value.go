package descriptor

import (
	"fmt"
	"strings"
)

// ValueKind distinguishes the shapes an annotation argument can take
type ValueKind int

const (
	// ConstValue is a primitive or otherwise opaque constant
	ConstValue ValueKind = iota
	// NestedValue is another annotation, replicated recursively
	NestedValue
	// ListValue is an ordered sequence of values
	ListValue
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case ConstValue:
		return "const"
	case NestedValue:
		return "nested"
	case ListValue:
		return "list"
	default:
		return "unknown"
	}
}

// Value is an annotation argument or member value. The zero Value is a nil constant.
type Value struct {
	kind     ValueKind
	constant interface{}
	nested   *Annotation
	list     []Value
}

// Const wraps a constant value
func Const(v interface{}) Value {
	return Value{kind: ConstValue, constant: v}
}

// Nested wraps an annotation used as a value
func Nested(a *Annotation) Value {
	return Value{kind: NestedValue, nested: a}
}

// List wraps an ordered sequence of values
func List(values ...Value) Value {
	list := make([]Value, len(values))
	copy(list, values)
	return Value{kind: ListValue, list: list}
}

// ValueOf lifts a plain Go value into a Value. Values pass through, annotations
// become nested values, and anything else becomes a constant.
func ValueOf(v interface{}) Value {
	switch tv := v.(type) {
	case Value:
		return tv
	case *Annotation:
		return Nested(tv)
	case []Value:
		return List(tv...)
	default:
		return Const(v)
	}
}

// Kind returns the shape of the value
func (v Value) Kind() ValueKind {
	return v.kind
}

// Constant returns the wrapped constant, or nil for non-constant values
func (v Value) Constant() interface{} {
	return v.constant
}

// Annotation returns the nested annotation, or nil for non-nested values
func (v Value) Annotation() *Annotation {
	return v.nested
}

// Elements returns a copy of the list elements
func (v Value) Elements() []Value {
	if v.kind != ListValue {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Interface converts the value to plain Go data: constants as-is, lists as
// []interface{}, nested annotations as map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case NestedValue:
		if v.nested == nil {
			return nil
		}
		return v.nested.Map()
	case ListValue:
		out := make([]interface{}, len(v.list))
		for i, elem := range v.list {
			out[i] = elem.Interface()
		}
		return out
	default:
		return v.constant
	}
}

func (v Value) reaches(path map[*Annotation]bool) bool {
	switch v.kind {
	case NestedValue:
		return v.nested.reaches(path)
	case ListValue:
		for _, elem := range v.list {
			if elem.reaches(path) {
				return true
			}
		}
	}
	return false
}

func (v Value) clone() Value {
	switch v.kind {
	case NestedValue:
		return Nested(v.nested.Clone())
	case ListValue:
		list := make([]Value, len(v.list))
		for i, elem := range v.list {
			list[i] = elem.clone()
		}
		return Value{kind: ListValue, list: list}
	default:
		return v
	}
}

// String renders the value in directive syntax
func (v Value) String() string {
	switch v.kind {
	case NestedValue:
		if v.nested == nil {
			return "nil"
		}
		return v.nested.String()
	case ListValue:
		parts := make([]string, len(v.list))
		for i, elem := range v.list {
			parts[i] = elem.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		switch c := v.constant.(type) {
		case nil:
			return "nil"
		case string:
			return fmt.Sprintf("%q", c)
		default:
			return fmt.Sprintf("%v", c)
		}
	}
}

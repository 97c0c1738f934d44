package annotations

import (
	"fmt"
	"reflect"
	"strings"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// MemberKind tells how a named member of an annotation type is assigned
type MemberKind int

const (
	// UnknownMember is returned for names the annotation type does not declare
	UnknownMember MemberKind = iota
	// PropertyMember is assigned through a Set<Name> method on the pointer type
	PropertyMember
	// FieldMember is assigned directly to an exported struct field
	FieldMember
)

// String returns the string representation of the member kind
func (k MemberKind) String() string {
	switch k {
	case PropertyMember:
		return "property"
	case FieldMember:
		return "field"
	default:
		return "unknown"
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Definition describes an annotation type: the Go struct backing it and the
// constructors that may be invoked with positional arguments.
type Definition struct {
	Name        string       // registered name, used by descriptors
	Type        reflect.Type // struct type backing the annotation
	Description string       // human-readable description
	Examples    []string     // directive usage examples

	constructors []reflect.Value
}

// Define creates a definition for annotation type T. Each constructor must be
// a non-variadic func returning *T or (*T, error). Without constructors the
// zero value is the only, argument-less, construction path.
func Define[T any](name string, constructors ...interface{}) (*Definition, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, siggserrors.NewRegistrationError("annotation", name,
			fmt.Sprintf("type must be a struct, got %s", t.Kind()))
	}
	if name == "" {
		name = t.Name()
	}

	def := &Definition{Name: name, Type: t}
	for i, ctor := range constructors {
		fn := reflect.ValueOf(ctor)
		if reason := def.checkConstructor(fn); reason != "" {
			return nil, siggserrors.NewRegistrationError("annotation", name,
				fmt.Sprintf("constructor %d %s", i, reason))
		}
		def.constructors = append(def.constructors, fn)
	}
	return def, nil
}

// MustDefine is like Define but panics on error
func MustDefine[T any](name string, constructors ...interface{}) *Definition {
	def, err := Define[T](name, constructors...)
	if err != nil {
		panic(err)
	}
	return def
}

// checkConstructor returns why fn cannot construct the annotation type, or ""
func (d *Definition) checkConstructor(fn reflect.Value) string {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return "is not a function"
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return "is variadic"
	}
	ptr := reflect.PointerTo(d.Type)
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) != ptr {
			return fmt.Sprintf("must return %s, returns %s", ptr, ft.Out(0))
		}
	case 2:
		if ft.Out(0) != ptr || ft.Out(1) != errorType {
			return fmt.Sprintf("must return (%s, error)", ptr)
		}
	default:
		return fmt.Sprintf("must return %s or (%s, error)", ptr, ptr)
	}
	return ""
}

// Constructors returns the function types of the registered constructors
func (d *Definition) Constructors() []reflect.Type {
	out := make([]reflect.Type, len(d.constructors))
	for i, fn := range d.constructors {
		out[i] = fn.Type()
	}
	return out
}

// MemberKind resolves a named member. A Set<Name> method on *T makes it a
// property; otherwise an exported field makes it a field.
func (d *Definition) MemberKind(name string) MemberKind {
	if name == "" {
		return UnknownMember
	}
	if m, ok := reflect.PointerTo(d.Type).MethodByName(setterName(name)); ok && m.Type.NumIn() == 2 {
		return PropertyMember
	}
	if f, ok := d.Type.FieldByName(name); ok && f.IsExported() && len(f.Index) == 1 {
		return FieldMember
	}
	return UnknownMember
}

// Signature renders the constructors for error messages
func (d *Definition) Signature() string {
	if len(d.constructors) == 0 {
		return d.Name + "()"
	}
	sigs := make([]string, len(d.constructors))
	for i, fn := range d.constructors {
		ft := fn.Type()
		params := make([]string, ft.NumIn())
		for j := range params {
			params[j] = ft.In(j).String()
		}
		sigs[i] = fmt.Sprintf("%s(%s)", d.Name, strings.Join(params, ", "))
	}
	return strings.Join(sigs, " | ")
}

func setterName(member string) string {
	return "Set" + member
}

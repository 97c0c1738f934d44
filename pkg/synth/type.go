package synth

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/toyz/siggs/pkg/annotations"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

var typeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/toyz/siggs/synthesized-type"))

// Type is a synthesized record type standing in for a method's parameter list.
// Types are compared by identity: one *Type exists per method identity.
type Type struct {
	name   string
	id     uuid.UUID
	rtype  reflect.Type
	fields []*Field
	byName map[string]*Field
}

// Name returns the method identity the type was synthesized for
func (t *Type) Name() string { return t.name }

// ID returns a stable name-based UUID derived from the method identity
func (t *Type) ID() uuid.UUID { return t.id }

// ReflectType returns the underlying struct type. Structurally identical
// parameter lists may share it; the *Type is the nominal identity.
func (t *Type) ReflectType() reflect.Type { return t.rtype }

// NumField returns the number of fields
func (t *Type) NumField() int { return len(t.fields) }

// Fields returns the fields in parameter order
func (t *Type) Fields() []*Field {
	out := make([]*Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Field returns the field with the given public name
func (t *Type) Field(name string) (*Field, bool) {
	f, ok := t.byName[name]
	return f, ok
}

// Annotations returns the annotations attached to the named field
func (t *Type) Annotations(name string) ([]*annotations.Instance, bool) {
	f, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return f.Annotations(), true
}

// New is the argument-less construction path: every field holds its zero value
func (t *Type) New() *Instance {
	return &Instance{typ: t, ptr: reflect.New(t.rtype)}
}

// Wrap adopts a pointer to a value of the underlying struct type
func (t *Type) Wrap(ptr interface{}) (*Instance, error) {
	v := reflect.ValueOf(ptr)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != t.rtype {
		return nil, siggserrors.NewAccessorError(t.name, "*", fmt.Sprintf("cannot wrap %T", ptr))
	}
	return &Instance{typ: t, ptr: v}, nil
}

// String renders the type as a Go-like struct declaration
func (t *Type) String() string {
	var b strings.Builder
	b.WriteString(t.name)
	b.WriteString(" {")
	for i, f := range t.fields {
		if i > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %s %s", f.name, f.rtype)
	}
	b.WriteString(" }")
	return b.String()
}

// Field is one synthesized field with its accessor pair
type Field struct {
	owner       *Type
	name        string
	goName      string
	parameter   string
	rtype       reflect.Type
	index       int
	tag         reflect.StructTag
	annotations []*annotations.Instance
}

// Name returns the public field name
func (f *Field) Name() string { return f.name }

// GoName returns the exported name of the underlying struct field
func (f *Field) GoName() string { return f.goName }

// Parameter returns the name of the parameter the field was produced from
func (f *Field) Parameter() string { return f.parameter }

// Type returns the declared type of the field
func (f *Field) Type() reflect.Type { return f.rtype }

// Tag returns the struct tag of the underlying struct field
func (f *Field) Tag() reflect.StructTag { return f.tag }

// Annotations returns the replicated annotations in source order
func (f *Field) Annotations() []*annotations.Instance {
	out := make([]*annotations.Instance, len(f.annotations))
	copy(out, f.annotations)
	return out
}

// Get is the read accessor
func (f *Field) Get(inst *Instance) (interface{}, error) {
	if err := f.check(inst); err != nil {
		return nil, err
	}
	return inst.ptr.Elem().Field(f.index).Interface(), nil
}

// Set is the write accessor. Nil clears nillable fields; any other value
// must be assignable to the field type.
func (f *Field) Set(inst *Instance, value interface{}) error {
	if err := f.check(inst); err != nil {
		return err
	}
	target := inst.ptr.Elem().Field(f.index)

	if value == nil {
		switch f.rtype.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			target.Set(reflect.Zero(f.rtype))
			return nil
		}
		return siggserrors.NewAccessorError(f.owner.name, f.name, fmt.Sprintf("cannot assign nil to %s", f.rtype))
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(f.rtype) {
		return siggserrors.NewAccessorError(f.owner.name, f.name, fmt.Sprintf("cannot assign %s to %s", v.Type(), f.rtype))
	}
	target.Set(v)
	return nil
}

func (f *Field) check(inst *Instance) error {
	if inst == nil || inst.typ != f.owner {
		return siggserrors.NewAccessorError(f.owner.name, f.name, "instance belongs to a different type")
	}
	return nil
}

// Annotation returns the first annotation of type T attached to the field
func Annotation[T any](f *Field) (*T, bool) {
	return annotations.Find[T](f.annotations)
}

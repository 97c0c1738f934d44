package synth

import (
	"reflect"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// Instance is a value of a synthesized type
type Instance struct {
	typ *Type
	ptr reflect.Value // pointer to the underlying struct
}

// Type returns the synthesized type of the instance
func (i *Instance) Type() *Type { return i.typ }

// Interface returns a pointer to the underlying struct, suitable for
// decoders and validators that operate on struct pointers
func (i *Instance) Interface() interface{} { return i.ptr.Interface() }

// Get reads the named field through its accessor
func (i *Instance) Get(name string) (interface{}, error) {
	f, ok := i.typ.byName[name]
	if !ok {
		return nil, siggserrors.NewAccessorError(i.typ.name, name, "no such field")
	}
	return f.Get(i)
}

// Set writes the named field through its accessor
func (i *Instance) Set(name string, value interface{}) error {
	f, ok := i.typ.byName[name]
	if !ok {
		return siggserrors.NewAccessorError(i.typ.name, name, "no such field")
	}
	return f.Set(i, value)
}

// Map returns the field values keyed by public name
func (i *Instance) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(i.typ.fields))
	elem := i.ptr.Elem()
	for _, f := range i.typ.fields {
		out[f.name] = elem.Field(f.index).Interface()
	}
	return out
}

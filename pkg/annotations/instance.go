package annotations

import (
	"reflect"

	"github.com/toyz/siggs/pkg/descriptor"
)

// Tag is one struct tag entry contributed by an annotation
type Tag struct {
	Key   string
	Value string
}

// TagContributor is implemented by annotation types that surface themselves
// as struct tags on the synthesized field
type TagContributor interface {
	StructTags() []Tag
}

// Instance is a replicated annotation: a constructed value of the annotation
// type together with the descriptor it was built from.
type Instance struct {
	def    *Definition
	value  reflect.Value // *T
	source *descriptor.Annotation
}

// Name returns the annotation type name
func (i *Instance) Name() string {
	return i.def.Name
}

// Definition returns the annotation type definition
func (i *Instance) Definition() *Definition {
	return i.def
}

// Value returns the constructed annotation as *T
func (i *Instance) Value() interface{} {
	return i.value.Interface()
}

// Source returns a copy of the descriptor the instance was replicated from
func (i *Instance) Source() *descriptor.Annotation {
	return i.source.Clone()
}

// StructTags returns the tags contributed by the annotation, if any
func (i *Instance) StructTags() []Tag {
	if tc, ok := i.value.Interface().(TagContributor); ok {
		return tc.StructTags()
	}
	return nil
}

// As returns the annotation value as *T when the instance is of type T
func As[T any](i *Instance) (*T, bool) {
	if i == nil {
		return nil, false
	}
	v, ok := i.value.Interface().(*T)
	return v, ok
}

// Find returns the first instance of type T in the list
func Find[T any](instances []*Instance) (*T, bool) {
	for _, inst := range instances {
		if v, ok := As[T](inst); ok {
			return v, true
		}
	}
	return nil, false
}

// FindAll returns every instance of type T in the list
func FindAll[T any](instances []*Instance) []*T {
	var out []*T
	for _, inst := range instances {
		if v, ok := As[T](inst); ok {
			out = append(out, v)
		}
	}
	return out
}

package descriptor

import (
	"fmt"
	"reflect"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// MethodInfo is the view of a method supplied by an introspection facility:
// its declaring type, its name, and its ordered parameters.
type MethodInfo interface {
	DeclaringType() string
	MethodName() string
	Parameters() ([]Parameter, error)
}

// Parameter describes one declared method parameter
type Parameter struct {
	Name        string        // declared parameter name
	Type        reflect.Type  // declared parameter type
	Annotations []*Annotation // annotations written on this parameter only
}

// Method is a static MethodInfo
type Method struct {
	Type   string      // fully-qualified declaring type name
	Name   string      // method name
	Params []Parameter // ordered parameters
}

// DeclaringType returns the fully-qualified declaring type name
func (m *Method) DeclaringType() string { return m.Type }

// MethodName returns the method name
func (m *Method) MethodName() string { return m.Name }

// Parameters returns the declared parameters
func (m *Method) Parameters() ([]Parameter, error) { return m.Params, nil }

// IsNil reports whether m is nil or a typed nil pointer
func IsNil(m MethodInfo) bool {
	if m == nil {
		return true
	}
	rv := reflect.ValueOf(m)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Identity returns the cache identity of a method: declaring type + "." + method name
func Identity(m MethodInfo) string {
	return m.DeclaringType() + "." + m.MethodName()
}

// TypeName returns the fully-qualified name of a named type, dereferencing pointers
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Extract converts a method into an ordered list of parameter descriptors.
// The result is a fresh deep copy; annotations on the method itself or its
// results are never part of it.
func Extract(m MethodInfo) ([]Parameter, error) {
	if IsNil(m) {
		return nil, siggserrors.NewDescriptorError("method descriptor is nil")
	}
	if m.DeclaringType() == "" || m.MethodName() == "" {
		return nil, siggserrors.NewDescriptorErrorf("method descriptor %q has no declaring type or name", Identity(m))
	}
	identity := Identity(m)

	params, err := m.Parameters()
	if err != nil {
		return nil, siggserrors.NewDescriptorError("failed to read parameters").
			WithMethod(identity).
			WithCause(err)
	}

	out := make([]Parameter, 0, len(params))
	for i, p := range params {
		if p.Name == "" || p.Name == "_" {
			return nil, siggserrors.NewDescriptorErrorf("parameter %d has no name", i).WithMethod(identity)
		}
		if p.Type == nil {
			return nil, siggserrors.NewDescriptorError("parameter has no type").
				WithMethod(identity).
				WithParameter(p.Name)
		}

		annotations := make([]*Annotation, 0, len(p.Annotations))
		for j, a := range p.Annotations {
			if a == nil || a.Type == "" {
				return nil, siggserrors.NewDescriptorErrorf("annotation %d has no type", j).
					WithMethod(identity).
					WithParameter(p.Name)
			}
			if a.HasCycle() {
				return nil, siggserrors.NewDescriptorError("annotation cycle").
					WithMethod(identity).
					WithParameter(p.Name).
					WithAnnotation(a.Type)
			}
			annotations = append(annotations, a.Clone())
		}

		out = append(out, Parameter{
			Name:        p.Name,
			Type:        p.Type,
			Annotations: annotations,
		})
	}

	return out, nil
}

// ParamSpec supplies what reflection cannot recover for one parameter: its
// name and the annotations written on it.
type ParamSpec struct {
	Name        string
	Annotations []*Annotation
}

// Param is shorthand for building a ParamSpec
func Param(name string, annotations ...*Annotation) ParamSpec {
	return ParamSpec{Name: name, Annotations: annotations}
}

// FromMethod builds a Method from the method named name on recv. Parameter
// types come from reflection; names and annotations come from specs, which
// must cover every parameter in order.
func FromMethod(recv reflect.Type, name string, specs ...ParamSpec) (*Method, error) {
	if recv == nil {
		return nil, siggserrors.NewDescriptorError("receiver type is nil")
	}

	declaring := TypeName(recv)
	identity := declaring + "." + name

	fn, offset, ok := lookupMethod(recv, name)
	if !ok {
		return nil, siggserrors.NewDescriptorError("method not found").WithMethod(identity)
	}

	if fn.NumIn()-offset != len(specs) {
		return nil, siggserrors.NewDescriptorErrorf("method declares %d parameters, %d names supplied",
			fn.NumIn()-offset, len(specs)).WithMethod(identity)
	}

	method := &Method{Type: declaring, Name: name}
	for i, spec := range specs {
		method.Params = append(method.Params, Parameter{
			Name:        spec.Name,
			Type:        fn.In(i + offset),
			Annotations: spec.Annotations,
		})
	}
	return method, nil
}

// lookupMethod finds the method on the type or its pointer, returning the
// function type and the number of leading receiver inputs to skip.
func lookupMethod(recv reflect.Type, name string) (reflect.Type, int, bool) {
	if recv.Kind() == reflect.Interface {
		m, ok := recv.MethodByName(name)
		return m.Type, 0, ok
	}

	candidates := []reflect.Type{recv}
	if recv.Kind() != reflect.Pointer {
		candidates = append(candidates, reflect.PointerTo(recv))
	}
	for _, t := range candidates {
		if m, ok := t.MethodByName(name); ok {
			return m.Type, 1, true
		}
	}
	return nil, 0, false
}

// String returns the identity of the method with its parameter names
func (m *Method) String() string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("%s.%s(%v)", m.Type, m.Name, names)
}

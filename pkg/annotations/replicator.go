package annotations

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/toyz/siggs/pkg/descriptor"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// Target receives replicated annotations
type Target interface {
	Attach(*Instance)
}

// Replicator rebuilds annotation descriptors as annotation values using the
// types registered in a Registry.
type Replicator struct {
	registry Registry
}

// NewReplicator creates a replicator backed by the given registry
func NewReplicator(registry Registry) *Replicator {
	return &Replicator{registry: registry}
}

// ReplicateInto replicates a and attaches the result to target
func (r *Replicator) ReplicateInto(a *descriptor.Annotation, target Target) error {
	inst, err := r.Replicate(a)
	if err != nil {
		return err
	}
	target.Attach(inst)
	return nil
}

// ReplicateAll replicates every annotation in order, stopping at the first failure
func (r *Replicator) ReplicateAll(as []*descriptor.Annotation) ([]*Instance, error) {
	out := make([]*Instance, 0, len(as))
	for _, a := range as {
		inst, err := r.Replicate(a)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Replicate constructs a new annotation value equivalent to a: the matching
// constructor is invoked with the positional arguments, then property
// assignments run through their setters and field assignments are stored
// directly, each partition in source order.
func (r *Replicator) Replicate(a *descriptor.Annotation) (*Instance, error) {
	if a == nil || a.Type == "" {
		return nil, siggserrors.NewDescriptorError("annotation has no type")
	}
	if a.HasCycle() {
		return nil, siggserrors.NewDescriptorError("annotation cycle").WithAnnotation(a.Type)
	}

	def, ok := r.registry.Lookup(a.Type)
	if !ok {
		return nil, siggserrors.NewDescriptorErrorf("annotation type '%s' is not registered", a.Type).
			WithAnnotation(a.Type).
			WithSuggestion("register the annotation type with annotations.Register before synthesizing")
	}

	args := make([]interface{}, len(a.Args))
	for i, arg := range a.Args {
		resolved, err := r.resolve(arg)
		if err != nil {
			return nil, err
		}
		args[i] = resolved
	}

	ptr, err := r.construct(def, args)
	if err != nil {
		return nil, err
	}

	for _, named := range a.Properties() {
		if err := r.assignProperty(def, ptr, named); err != nil {
			return nil, err
		}
	}
	for _, named := range a.Fields() {
		if err := r.assignField(def, ptr, named); err != nil {
			return nil, err
		}
	}

	return &Instance{def: def, value: ptr, source: a.Clone()}, nil
}

// resolvedList marks a list value whose elements have been resolved
type resolvedList []interface{}

// resolve replicates nested annotations depth first; constants pass through
func (r *Replicator) resolve(v descriptor.Value) (interface{}, error) {
	switch v.Kind() {
	case descriptor.NestedValue:
		return r.Replicate(v.Annotation())
	case descriptor.ListValue:
		elems := v.Elements()
		out := make(resolvedList, len(elems))
		for i, elem := range elems {
			resolved, err := r.resolve(elem)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v.Constant(), nil
	}
}

func (r *Replicator) construct(def *Definition, args []interface{}) (reflect.Value, error) {
	if len(def.constructors) == 0 {
		if len(args) == 0 {
			return reflect.New(def.Type), nil
		}
		return reflect.Value{}, noConstructorError(def, args)
	}

	for _, fn := range def.constructors {
		ft := fn.Type()
		if ft.NumIn() != len(args) {
			continue
		}

		in := make([]reflect.Value, len(args))
		matched := true
		for i, arg := range args {
			v, ok := convert(arg, ft.In(i))
			if !ok {
				matched = false
				break
			}
			in[i] = v
		}
		if !matched {
			continue
		}

		out := fn.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, siggserrors.NewDescriptorError("annotation constructor failed").
				WithAnnotation(def.Name).
				WithCause(out[1].Interface().(error))
		}
		if out[0].IsNil() {
			return reflect.Value{}, siggserrors.NewDescriptorError("annotation constructor returned nil").
				WithAnnotation(def.Name)
		}
		return out[0], nil
	}

	return reflect.Value{}, noConstructorError(def, args)
}

func (r *Replicator) assignProperty(def *Definition, ptr reflect.Value, named descriptor.NamedArg) error {
	setter := ptr.MethodByName(setterName(named.Member))
	if !setter.IsValid() || setter.Type().NumIn() != 1 {
		err := siggserrors.NewDescriptorErrorf("annotation type '%s' has no property '%s'", def.Name, named.Member).
			WithAnnotation(def.Name).
			WithMember(named.Member)
		if def.MemberKind(named.Member) == FieldMember {
			err.WithSuggestion(fmt.Sprintf("'%s' is a field; assign it as a field", named.Member))
		}
		return err
	}

	resolved, err := r.resolve(named.Value)
	if err != nil {
		return err
	}
	v, ok := convert(resolved, setter.Type().In(0))
	if !ok {
		return mismatchError(def, named.Member, resolved, setter.Type().In(0))
	}
	setter.Call([]reflect.Value{v})
	return nil
}

func (r *Replicator) assignField(def *Definition, ptr reflect.Value, named descriptor.NamedArg) error {
	sf, ok := def.Type.FieldByName(named.Member)
	if !ok || !sf.IsExported() || len(sf.Index) != 1 {
		err := siggserrors.NewDescriptorErrorf("annotation type '%s' has no field '%s'", def.Name, named.Member).
			WithAnnotation(def.Name).
			WithMember(named.Member)
		if def.MemberKind(named.Member) == PropertyMember {
			err.WithSuggestion(fmt.Sprintf("'%s' is a property; assign it as a property", named.Member))
		}
		return err
	}

	resolved, err := r.resolve(named.Value)
	if err != nil {
		return err
	}
	v, ok := convert(resolved, sf.Type)
	if !ok {
		return mismatchError(def, named.Member, resolved, sf.Type)
	}
	ptr.Elem().Field(sf.Index[0]).Set(v)
	return nil
}

func noConstructorError(def *Definition, args []interface{}) error {
	kinds := make([]string, len(args))
	for i, arg := range args {
		kinds[i] = describe(arg)
	}
	return siggserrors.NewDescriptorErrorf("annotation type '%s' has no constructor accepting (%s)",
		def.Name, strings.Join(kinds, ", ")).
		WithAnnotation(def.Name).
		WithSuggestion("available constructors: " + def.Signature())
}

func mismatchError(def *Definition, member string, value interface{}, want reflect.Type) error {
	return siggserrors.NewDescriptorErrorf("cannot assign %s to member '%s' of type %s", describe(value), member, want).
		WithAnnotation(def.Name).
		WithMember(member)
}

func describe(v interface{}) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case *Instance:
		return "@" + tv.Name()
	case resolvedList:
		return "list"
	default:
		return reflect.TypeOf(v).String()
	}
}

// convert adapts a resolved value to the parameter or member type t
func convert(v interface{}, t reflect.Type) (reflect.Value, bool) {
	switch tv := v.(type) {
	case nil:
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false

	case *Instance:
		if tv.value.Type().AssignableTo(t) {
			return tv.value, true
		}
		if tv.value.Elem().Type().AssignableTo(t) {
			return tv.value.Elem(), true
		}
		return reflect.Value{}, false

	case resolvedList:
		if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
			t = reflect.TypeOf([]interface{}{})
		}
		switch t.Kind() {
		case reflect.Slice:
			out := reflect.MakeSlice(t, len(tv), len(tv))
			for i, elem := range tv {
				ev, ok := convert(elem, t.Elem())
				if !ok {
					return reflect.Value{}, false
				}
				out.Index(i).Set(ev)
			}
			return out, true
		case reflect.Array:
			if t.Len() != len(tv) {
				return reflect.Value{}, false
			}
			out := reflect.New(t).Elem()
			for i, elem := range tv {
				ev, ok := convert(elem, t.Elem())
				if !ok {
					return reflect.Value{}, false
				}
				out.Index(i).Set(ev)
			}
			return out, true
		}
		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	return convertScalar(rv, t)
}

// convertScalar converts between kinds without losing information
func convertScalar(rv reflect.Value, t reflect.Type) (reflect.Value, bool) {
	out := reflect.New(t).Elem()
	switch {
	case isInt(t.Kind()):
		var n int64
		switch {
		case isInt(rv.Kind()):
			n = rv.Int()
		case isUint(rv.Kind()):
			if rv.Uint() > math.MaxInt64 {
				return reflect.Value{}, false
			}
			n = int64(rv.Uint())
		case isFloat(rv.Kind()):
			f := rv.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= 1<<63 {
				return reflect.Value{}, false
			}
			n = int64(f)
		default:
			return reflect.Value{}, false
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, false
		}
		out.SetInt(n)
		return out, true

	case isUint(t.Kind()):
		var n uint64
		switch {
		case isInt(rv.Kind()):
			if rv.Int() < 0 {
				return reflect.Value{}, false
			}
			n = uint64(rv.Int())
		case isUint(rv.Kind()):
			n = rv.Uint()
		case isFloat(rv.Kind()):
			f := rv.Float()
			if f != math.Trunc(f) || f < 0 || f >= 1<<64 {
				return reflect.Value{}, false
			}
			n = uint64(f)
		default:
			return reflect.Value{}, false
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, false
		}
		out.SetUint(n)
		return out, true

	case isFloat(t.Kind()):
		var f float64
		switch {
		case isInt(rv.Kind()):
			f = float64(rv.Int())
		case isUint(rv.Kind()):
			f = float64(rv.Uint())
		case isFloat(rv.Kind()):
			f = rv.Float()
		default:
			return reflect.Value{}, false
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, false
		}
		out.SetFloat(f)
		return out, true

	case t.Kind() == reflect.String && rv.Kind() == reflect.String,
		t.Kind() == reflect.Bool && rv.Kind() == reflect.Bool:
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

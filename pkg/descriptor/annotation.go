package descriptor

import "strings"

// NamedArg is a named-member assignment on an annotation
type NamedArg struct {
	Member  string // member name on the annotation type
	IsField bool   // true for a field-like member, false for a property-like member
	Value   Value
}

// Annotation describes one piece of metadata attached to a parameter: the
// annotation type, the positional constructor arguments and the named-member
// assignments in source order.
type Annotation struct {
	Type  string     // registered annotation type name
	Args  []Value    // positional constructor arguments
	Named []NamedArg // named-member assignments
}

// NewAnnotation creates an annotation descriptor with positional arguments.
// Arguments are lifted with ValueOf.
func NewAnnotation(typeName string, args ...interface{}) *Annotation {
	a := &Annotation{Type: typeName}
	for _, arg := range args {
		a.Args = append(a.Args, ValueOf(arg))
	}
	return a
}

// WithProperty appends a property-like named assignment
func (a *Annotation) WithProperty(member string, v interface{}) *Annotation {
	a.Named = append(a.Named, NamedArg{Member: member, Value: ValueOf(v)})
	return a
}

// WithField appends a field-like named assignment
func (a *Annotation) WithField(member string, v interface{}) *Annotation {
	a.Named = append(a.Named, NamedArg{Member: member, IsField: true, Value: ValueOf(v)})
	return a
}

// Properties returns the property-like assignments in source order
func (a *Annotation) Properties() []NamedArg {
	return a.partition(false)
}

// Fields returns the field-like assignments in source order
func (a *Annotation) Fields() []NamedArg {
	return a.partition(true)
}

func (a *Annotation) partition(isField bool) []NamedArg {
	var out []NamedArg
	for _, n := range a.Named {
		if n.IsField == isField {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the annotation
func (a *Annotation) Clone() *Annotation {
	if a == nil {
		return nil
	}
	c := &Annotation{Type: a.Type}
	if a.Args != nil {
		c.Args = make([]Value, len(a.Args))
		for i, arg := range a.Args {
			c.Args[i] = arg.clone()
		}
	}
	if a.Named != nil {
		c.Named = make([]NamedArg, len(a.Named))
		for i, n := range a.Named {
			c.Named[i] = NamedArg{Member: n.Member, IsField: n.IsField, Value: n.Value.clone()}
		}
	}
	return c
}

// HasCycle reports whether the annotation reaches itself through its nested
// arguments or member values. Shared, acyclic nesting is not a cycle.
func (a *Annotation) HasCycle() bool {
	return a.reaches(make(map[*Annotation]bool))
}

func (a *Annotation) reaches(path map[*Annotation]bool) bool {
	if a == nil {
		return false
	}
	if path[a] {
		return true
	}
	path[a] = true
	defer delete(path, a)

	for _, arg := range a.Args {
		if arg.reaches(path) {
			return true
		}
	}
	for _, n := range a.Named {
		if n.Value.reaches(path) {
			return true
		}
	}
	return false
}

// Map converts the annotation to plain Go data
func (a *Annotation) Map() map[string]interface{} {
	args := make([]interface{}, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.Interface()
	}
	props := make(map[string]interface{})
	fields := make(map[string]interface{})
	for _, n := range a.Named {
		if n.IsField {
			fields[n.Member] = n.Value.Interface()
		} else {
			props[n.Member] = n.Value.Interface()
		}
	}
	return map[string]interface{}{
		"type":       a.Type,
		"args":       args,
		"properties": props,
		"fields":     fields,
	}
}

// String renders the annotation in directive syntax, e.g. @Complex("goodbye", B=10)
func (a *Annotation) String() string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(a.Type)
	if len(a.Args) == 0 && len(a.Named) == 0 {
		return b.String()
	}
	parts := make([]string, 0, len(a.Args)+len(a.Named))
	for _, arg := range a.Args {
		parts = append(parts, arg.String())
	}
	for _, n := range a.Named {
		parts = append(parts, n.Member+"="+n.Value.String())
	}
	b.WriteString("(")
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	return b.String()
}

package synth

import (
	"fmt"
	"go/token"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/toyz/siggs/pkg/annotations"
	siggserrors "github.com/toyz/siggs/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// bindingTagKeys are emitted for every field so binders see the public name
var bindingTagKeys = []string{"json", "form", "query", "schema"}

// FieldSpec accumulates one field while a type is being built
type FieldSpec struct {
	Name        string       // public field name
	Parameter   string       // originating parameter name
	Type        reflect.Type // declared type
	annotations []*annotations.Instance
}

// Attach implements annotations.Target
func (f *FieldSpec) Attach(inst *annotations.Instance) {
	f.annotations = append(f.annotations, inst)
}

// Annotations returns the annotations attached so far
func (f *FieldSpec) Annotations() []*annotations.Instance {
	return f.annotations
}

// Builder accumulates field specs and produces a Type. A Builder is used for
// a single synthesis and is not safe for concurrent use.
type Builder struct {
	name   string
	fields []*FieldSpec
	byName map[string]*FieldSpec
}

// NewBuilder creates a builder for the type with the given identity
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		byName: make(map[string]*FieldSpec),
	}
}

// AddField appends a field. Reusing a public name is an error.
func (b *Builder) AddField(name, parameter string, t reflect.Type) (*FieldSpec, error) {
	if name == "" {
		return nil, siggserrors.NewDescriptorError("field name cannot be empty").WithParameter(parameter)
	}
	if t == nil {
		return nil, siggserrors.NewDescriptorError("field type cannot be nil").WithParameter(parameter)
	}
	if existing, ok := b.byName[name]; ok {
		return nil, siggserrors.NewDuplicateFieldNameError(name, existing.Parameter, parameter)
	}

	spec := &FieldSpec{Name: name, Parameter: parameter, Type: t}
	b.fields = append(b.fields, spec)
	b.byName[name] = spec
	return spec, nil
}

// Build produces the type. It never returns a partially built type.
func (b *Builder) Build() (t *Type, err error) {
	caser := cases.Title(language.Und, cases.NoLower)
	used := make(map[string]bool, len(b.fields))

	structFields := make([]reflect.StructField, len(b.fields))
	goNames := make([]string, len(b.fields))
	tags := make([]reflect.StructTag, len(b.fields))

	for i, spec := range b.fields {
		goName := uniqueName(exportedName(caser, spec.Name), i, used)
		used[goName] = true
		goNames[i] = goName

		tag, tagErr := buildTag(spec)
		if tagErr != nil {
			return nil, tagErr
		}
		tags[i] = tag

		structFields[i] = reflect.StructField{
			Name: goName,
			Type: spec.Type,
			Tag:  tag,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = siggserrors.NewDescriptorErrorf("cannot define struct: %v", r).WithMethod(b.name)
		}
	}()
	rtype := reflect.StructOf(structFields)

	t = &Type{
		name:   b.name,
		id:     uuid.NewSHA1(typeNamespace, []byte(b.name)),
		rtype:  rtype,
		fields: make([]*Field, len(b.fields)),
		byName: make(map[string]*Field, len(b.fields)),
	}
	for i, spec := range b.fields {
		f := &Field{
			owner:       t,
			name:        spec.Name,
			goName:      goNames[i],
			parameter:   spec.Parameter,
			rtype:       spec.Type,
			index:       i,
			tag:         tags[i],
			annotations: append([]*annotations.Instance(nil), spec.annotations...),
		}
		t.fields[i] = f
		t.byName[f.name] = f
	}
	return t, nil
}

// exportedName maps a public name onto an exported Go identifier
func exportedName(caser cases.Caser, name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	goName := caser.String(b.String())
	if !token.IsIdentifier(goName) || !token.IsExported(goName) {
		goName = "F" + goName
	}
	return goName
}

func uniqueName(goName string, index int, used map[string]bool) string {
	if !used[goName] {
		return goName
	}
	for n := index + 1; ; n++ {
		candidate := goName + strconv.Itoa(n)
		if !used[candidate] {
			return candidate
		}
	}
}

// buildTag renders the binding tags followed by annotation contributed tags.
// Later entries for the same key replace earlier ones.
func buildTag(spec *FieldSpec) (reflect.StructTag, error) {
	values := make(map[string]string)
	var order []string
	set := func(key, value string) {
		if _, ok := values[key]; !ok {
			order = append(order, key)
		}
		values[key] = value
	}

	for _, key := range bindingTagKeys {
		set(key, spec.Name)
	}
	for _, inst := range spec.annotations {
		for _, tag := range inst.StructTags() {
			if !validTagKey(tag.Key) {
				return "", siggserrors.NewDescriptorErrorf("annotation contributes invalid struct tag key %q", tag.Key).
					WithParameter(spec.Parameter).
					WithAnnotation(inst.Name())
			}
			set(tag.Key, tag.Value)
		}
	}

	parts := make([]string, len(order))
	for i, key := range order {
		parts[i] = fmt.Sprintf("%s:%s", key, strconv.Quote(values[key]))
	}
	return reflect.StructTag(strings.Join(parts, " ")), nil
}

func validTagKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r <= ' ' || r == ':' || r == '"' || r == 0x7f {
			return false
		}
	}
	return true
}

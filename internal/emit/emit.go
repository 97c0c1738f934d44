// Package emit renders synthesized types as Go source: a struct with the
// binding tags of the synthesized fields, a constructor and Get/Set accessors.
package emit

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"

	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/synth"
)

// HeaderComment marks emitted files as generated
const HeaderComment = "Code generated by siggs. DO NOT EDIT."

// Emitter writes synthesized types into one Go file
type Emitter struct {
	packageName string
}

// New creates an emitter for the named package
func New(packageName string) *Emitter {
	return &Emitter{packageName: packageName}
}

// TypeName derives the Go type name for a synthesized type from the last two
// segments of its identity, e.g. "example.com/app.Handler.Send" becomes
// "HandlerSendParams"
func TypeName(t *synth.Type) string {
	name := t.Name()
	method := name
	owner := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		method = name[i+1:]
		owner = name[:i]
		if j := strings.LastIndexAny(owner, "./"); j >= 0 {
			owner = owner[j+1:]
		}
	}
	return upperFirst(owner) + upperFirst(method) + "Params"
}

// File builds the jennifer file holding every type
func (e *Emitter) File(types ...*synth.Type) (*jen.File, error) {
	if e.packageName == "" {
		return nil, siggserrors.New(siggserrors.ConfigurationErrorCode, "package name cannot be empty")
	}

	file := jen.NewFile(e.packageName)
	file.HeaderComment(HeaderComment)

	seen := make(map[string]string, len(types))
	for _, t := range types {
		name := TypeName(t)
		if other, exists := seen[name]; exists {
			return nil, siggserrors.Newf(siggserrors.ConfigurationErrorCode,
				"%s and %s would both be emitted as %s", other, t.Name(), name)
		}
		seen[name] = t.Name()

		if err := e.generateType(file, name, t); err != nil {
			return nil, err
		}
	}
	return file, nil
}

// Render writes the Go source for the types to w
func (e *Emitter) Render(w io.Writer, types ...*synth.Type) error {
	file, err := e.File(types...)
	if err != nil {
		return err
	}
	return file.Render(w)
}

func (e *Emitter) generateType(file *jen.File, name string, t *synth.Type) error {
	fields := t.Fields()
	if err := checkAccessors(name, fields); err != nil {
		return err
	}
	codes := make([]jen.Code, len(fields))
	for i, f := range fields {
		code, err := typeCode(f.Type())
		if err != nil {
			return siggserrors.NewDescriptorErrorf("field %s: %v", f.Name(), err).WithMethod(t.Name())
		}
		codes[i] = code
	}

	file.Commentf("%s mirrors the parameters of %s.", name, t.Name())
	file.Commentf("Type ID: %s", t.ID())
	file.Type().Id(name).StructFunc(func(g *jen.Group) {
		for i, f := range fields {
			for _, inst := range f.Annotations() {
				g.Comment(inst.Source().String())
			}
			g.Id(f.GoName()).Add(codes[i]).Tag(tagMap(f.Tag()))
		}
	}).Line()

	file.Commentf("New%s returns a %s with every field at its zero value.", name, name)
	file.Func().Id("New" + name).Params().Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values()),
	).Line()

	for i, f := range fields {
		file.Commentf("Get%s returns %s.", f.GoName(), f.Name())
		file.Func().Params(jen.Id("p").Op("*").Id(name)).Id("Get" + f.GoName()).Params().Add(codes[i]).Block(
			jen.Return(jen.Id("p").Dot(f.GoName())),
		).Line()

		file.Commentf("Set%s assigns %s.", f.GoName(), f.Name())
		file.Func().Params(jen.Id("p").Op("*").Id(name)).Id("Set" + f.GoName()).Params(jen.Id("v").Add(codes[i])).Block(
			jen.Id("p").Dot(f.GoName()).Op("=").Id("v"),
		).Line()
	}
	return nil
}

// checkAccessors rejects types whose Get/Set accessors would share a name
// with one of the struct fields
func checkAccessors(name string, fields []*synth.Field) error {
	owners := make(map[string]string, len(fields))
	for _, f := range fields {
		owners[f.GoName()] = f.Name()
	}
	for _, f := range fields {
		for _, method := range []string{"Get" + f.GoName(), "Set" + f.GoName()} {
			if other, ok := owners[method]; ok {
				return siggserrors.Newf(siggserrors.ConfigurationErrorCode,
					"%s: accessor %s of %s collides with the field of %s", name, method, f.Name(), other).
					WithSuggestion("rename one of the parameters")
			}
		}
	}
	return nil
}

// typeCode renders a runtime type as a type expression
func typeCode(t reflect.Type) (jen.Code, error) {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return jen.Id(t.Name()), nil
		}
		return jen.Qual(t.PkgPath(), t.Name()), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil
	case reflect.Slice:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil
	case reflect.Array:
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(t.Len())).Add(elem), nil
	case reflect.Map:
		key, err := typeCode(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := typeCode(t.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(elem), nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return jen.Interface(), nil
		}
	}
	return nil, fmt.Errorf("type %s has no Go source form", t)
}

// tagMap splits a struct tag into its key/value pairs
func tagMap(tag reflect.StructTag) map[string]string {
	out := make(map[string]string)
	s := string(tag)
	for s != "" {
		s = strings.TrimLeft(s, " ")
		i := strings.IndexByte(s, ':')
		if i <= 0 || i+1 >= len(s) || s[i+1] != '"' {
			break
		}
		key := s[:i]
		rest := s[i+1:]

		j := 1
		for j < len(rest) && rest[j] != '"' {
			if rest[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(rest) {
			break
		}
		value, err := strconv.Unquote(rest[:j+1])
		if err != nil {
			break
		}
		out[key] = value
		s = rest[j+1:]
	}
	return out
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

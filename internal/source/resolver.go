package source

import (
	"go/ast"
	"go/token"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/siggs/internal/utils"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// maxArrayBytes bounds the size of array parameter types
const maxArrayBytes = 1 << 30

var anyType = reflect.TypeOf((*interface{})(nil)).Elem()

// TypeResolver maps Go type expressions found in source to runtime types.
// Named types are registered by qualified name: predeclared types by their
// bare name, imported types as "<import path>.<Name>", and types declared in
// the loaded package by their bare name.
type TypeResolver struct {
	types *utils.BaseRegistry[reflect.Type]
}

// NewTypeResolver creates a resolver knowing the predeclared types plus
// time.Time, time.Duration and uuid.UUID
func NewTypeResolver() *TypeResolver {
	r := &TypeResolver{types: utils.NewBaseRegistry[reflect.Type]("type")}
	r.types.SetValidator(func(_ string, t reflect.Type, _ map[string]reflect.Type) error {
		if t == nil {
			return siggserrors.New(siggserrors.RegistrationErrorCode, "type cannot be nil")
		}
		return nil
	})

	builtins := map[string]reflect.Type{
		"bool":       reflect.TypeOf(false),
		"string":     reflect.TypeOf(""),
		"int":        reflect.TypeOf(int(0)),
		"int8":       reflect.TypeOf(int8(0)),
		"int16":      reflect.TypeOf(int16(0)),
		"int32":      reflect.TypeOf(int32(0)),
		"int64":      reflect.TypeOf(int64(0)),
		"uint":       reflect.TypeOf(uint(0)),
		"uint8":      reflect.TypeOf(uint8(0)),
		"uint16":     reflect.TypeOf(uint16(0)),
		"uint32":     reflect.TypeOf(uint32(0)),
		"uint64":     reflect.TypeOf(uint64(0)),
		"uintptr":    reflect.TypeOf(uintptr(0)),
		"float32":    reflect.TypeOf(float32(0)),
		"float64":    reflect.TypeOf(float64(0)),
		"complex64":  reflect.TypeOf(complex64(0)),
		"complex128": reflect.TypeOf(complex128(0)),
		"byte":       reflect.TypeOf(byte(0)),
		"rune":       reflect.TypeOf(rune(0)),
		"any":        anyType,
		"error":      reflect.TypeOf((*error)(nil)).Elem(),

		"time.Time":                   reflect.TypeOf(time.Time{}),
		"time.Duration":               reflect.TypeOf(time.Duration(0)),
		"github.com/google/uuid.UUID": reflect.TypeOf(uuid.UUID{}),
	}
	for name, t := range builtins {
		// names are unique and types non-nil
		_ = r.types.Register(name, t)
	}
	return r
}

// Register adds a named type. Use the import path qualified name for types
// from other packages, e.g. "example.com/app/model.User".
func (r *TypeResolver) Register(name string, t reflect.Type) error {
	return r.types.Register(name, t)
}

// RegisterType registers T under its import path qualified name
func RegisterType[T any](r *TypeResolver) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.PkgPath() == "" || t.Name() == "" {
		return siggserrors.NewRegistrationError("type", t.String(), "only named types can be registered by type")
	}
	return r.Register(t.PkgPath()+"."+t.Name(), t)
}

// Lookup returns the type registered under name
func (r *TypeResolver) Lookup(name string) (reflect.Type, bool) {
	return r.types.Get(name)
}

// Names lists the registered type names, sorted
func (r *TypeResolver) Names() []string {
	return r.types.List()
}

// Resolve converts a type expression to a runtime type. imports maps the
// file's import names to import paths.
func (r *TypeResolver) Resolve(expr ast.Expr, imports map[string]string) (reflect.Type, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		if t, ok := r.Lookup(e.Name); ok {
			return t, nil
		}
		return nil, unresolved(e.Name)

	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		if !ok {
			return nil, unresolved(exprString(expr))
		}
		path, ok := imports[pkg.Name]
		if !ok {
			return nil, siggserrors.NewDescriptorErrorf("package %s is not imported", pkg.Name)
		}
		name := path + "." + e.Sel.Name
		if t, ok := r.Lookup(name); ok {
			return t, nil
		}
		return nil, unresolved(name)

	case *ast.ParenExpr:
		return r.Resolve(e.X, imports)

	case *ast.StarExpr:
		elem, err := r.Resolve(e.X, imports)
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil

	case *ast.Ellipsis:
		elem, err := r.Resolve(e.Elt, imports)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil

	case *ast.ArrayType:
		elem, err := r.Resolve(e.Elt, imports)
		if err != nil {
			return nil, err
		}
		if e.Len == nil {
			return reflect.SliceOf(elem), nil
		}
		lit, ok := e.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return nil, siggserrors.NewDescriptorErrorf("array length %s is not an integer literal", exprString(e.Len))
		}
		n, err := strconv.Atoi(lit.Value)
		if err != nil {
			return nil, siggserrors.NewDescriptorErrorf("array length %s is invalid", lit.Value)
		}
		if size := uint64(elem.Size()); size > 0 && uint64(n) > maxArrayBytes/size {
			return nil, siggserrors.NewDescriptorErrorf("array [%d]%s exceeds %d bytes", n, elem, maxArrayBytes)
		}
		return reflect.ArrayOf(n, elem), nil

	case *ast.MapType:
		key, err := r.Resolve(e.Key, imports)
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, siggserrors.NewDescriptorErrorf("map key type %s is not comparable", key)
		}
		value, err := r.Resolve(e.Value, imports)
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, value), nil

	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return anyType, nil
		}
	}

	return nil, unresolved(exprString(expr))
}

func unresolved(name string) error {
	return siggserrors.NewDescriptorErrorf("cannot resolve type %s", name).
		WithSuggestion("register the type with TypeResolver.Register")
}

// exprString renders simple type expressions for error messages
func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	case *ast.StarExpr:
		return "*" + exprString(e.X)
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + exprString(e.Elt)
		}
		return "[" + exprString(e.Len) + "]" + exprString(e.Elt)
	case *ast.MapType:
		return "map[" + exprString(e.Key) + "]" + exprString(e.Value)
	case *ast.BasicLit:
		return e.Value
	case *ast.Ellipsis:
		return "..." + exprString(e.Elt)
	case *ast.FuncType:
		return "func(...)"
	case *ast.ChanType:
		return "chan " + exprString(e.Value)
	case *ast.InterfaceType:
		return "interface{...}"
	case *ast.StructType:
		return "struct{...}"
	}
	return strings.TrimSpace(reflect.TypeOf(expr).String())
}

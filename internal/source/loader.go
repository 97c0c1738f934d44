// Package source builds method descriptors from Go source files. Parameter
// names and types come from the method declaration; annotations come from
// `//siggs::param` directives in the method's doc comment:
//
//	//siggs::param message @Validate("required") @Alias("msg", OmitEmpty=true)
//	func (h *Handler) Send(message string) error
package source

import (
	"go/ast"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/toyz/siggs/internal/utils"
	"github.com/toyz/siggs/pkg/annotations"
	"github.com/toyz/siggs/pkg/descriptor"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// Loader loads method descriptors from a package directory
type Loader struct {
	reader     *utils.FileReader
	resolver   *TypeResolver
	directives *DirectiveParser
}

// NewLoader creates a loader. A nil resolver gets NewTypeResolver.
func NewLoader(registry annotations.Registry, resolver *TypeResolver) *Loader {
	if resolver == nil {
		resolver = NewTypeResolver()
	}
	return &Loader{
		reader:     utils.NewFileReader(),
		resolver:   resolver,
		directives: NewDirectiveParser(registry),
	}
}

// Resolver returns the type resolver used for parameter types
func (l *Loader) Resolver() *TypeResolver {
	return l.resolver
}

// ParseRef splits a "Type.Method" reference
func ParseRef(ref string) (typeName, methodName string, err error) {
	typeName, methodName, ok := strings.Cut(strings.TrimSpace(ref), ".")
	if !ok || typeName == "" || methodName == "" || strings.Contains(methodName, ".") {
		return "", "", siggserrors.Newf(siggserrors.ConfigurationErrorCode,
			"invalid method reference %q", ref).
			WithSuggestion("use the form Type.Method, e.g. Handler.Send")
	}
	return typeName, methodName, nil
}

// LoadRefs loads every "Type.Method" reference from dir
func (l *Loader) LoadRefs(dir string, refs []string) ([]*descriptor.Method, error) {
	methods := make([]*descriptor.Method, 0, len(refs))
	for _, ref := range refs {
		typeName, methodName, err := ParseRef(ref)
		if err != nil {
			return nil, err
		}
		m, err := l.LoadMethod(dir, typeName, methodName)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// Discover lists the methods in dir whose doc comments carry a parameter
// directive, as "Type.Method" references in file and declaration order
func (l *Loader) Discover(dir string) ([]string, error) {
	files, err := l.reader.GoFiles(dir)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, file := range files {
		f, err := l.reader.ParseGoFile(file)
		if err != nil {
			return nil, err
		}
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 || fn.Doc == nil {
				continue
			}
			recv := receiverName(fn.Recv.List[0].Type)
			if recv == "" || !hasDirective(fn.Doc) {
				continue
			}
			refs = append(refs, recv+"."+fn.Name.Name)
		}
	}
	return refs, nil
}

func hasDirective(doc *ast.CommentGroup) bool {
	for _, c := range doc.List {
		if IsDirective(c.Text) {
			return true
		}
	}
	return false
}

// LoadMethod finds the method declared on typeName in dir and describes it
func (l *Loader) LoadMethod(dir, typeName, methodName string) (*descriptor.Method, error) {
	files, err := l.reader.GoFiles(dir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		f, err := l.reader.ParseGoFile(file)
		if err != nil {
			return nil, err
		}

		fn := findMethod(f, typeName, methodName)
		if fn == nil {
			continue
		}

		declaring, err := declaringType(dir, f.Name.Name, typeName)
		if err != nil {
			return nil, err
		}
		return l.describe(f, fn, declaring)
	}

	return nil, siggserrors.NewDescriptorErrorf("method %s.%s not found in %s", typeName, methodName, dir)
}

// describe turns a method declaration into a descriptor
func (l *Loader) describe(f *ast.File, fn *ast.FuncDecl, declaring string) (*descriptor.Method, error) {
	identity := declaring + "." + fn.Name.Name
	method := &descriptor.Method{Type: declaring, Name: fn.Name.Name}
	imports := importNames(f)

	index := make(map[string]int)
	for _, field := range fn.Type.Params.List {
		if len(field.Names) == 0 {
			return nil, l.locate(siggserrors.NewDescriptorError("parameter has no name").
				WithMethod(identity), field)
		}

		t, err := l.resolver.Resolve(field.Type, imports)
		if err != nil {
			if de, ok := err.(*siggserrors.DescriptorError); ok {
				return nil, l.locate(de.WithMethod(identity).WithParameter(field.Names[0].Name), field)
			}
			return nil, err
		}

		for _, name := range field.Names {
			index[name.Name] = len(method.Params)
			method.Params = append(method.Params, descriptor.Parameter{Name: name.Name, Type: t})
		}
	}

	if fn.Doc == nil {
		return method, nil
	}
	for _, c := range fn.Doc.List {
		if !IsDirective(c.Text) {
			continue
		}

		param, anns, err := l.directives.Parse(c.Text)
		if err != nil {
			if se, ok := err.(*siggserrors.SyntaxError); ok {
				se.BaseError.WithLocation(l.reader.Position(c.Pos()))
			}
			return nil, err
		}

		i, ok := index[param]
		if !ok {
			return nil, l.locate(siggserrors.NewDescriptorErrorf("directive names unknown parameter %q", param).
				WithMethod(identity), c)
		}
		method.Params[i].Annotations = append(method.Params[i].Annotations, anns...)
	}

	return method, nil
}

func (l *Loader) locate(err *siggserrors.DescriptorError, node ast.Node) error {
	err.BaseError.WithLocation(l.reader.Position(node.Pos()))
	return err
}

// findMethod returns the declaration of typeName.methodName, with either a
// value or a pointer receiver
func findMethod(f *ast.File, typeName, methodName string) *ast.FuncDecl {
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 || fn.Name.Name != methodName {
			continue
		}
		if receiverName(fn.Recv.List[0].Type) == typeName {
			return fn
		}
	}
	return nil
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	}
	return ""
}

// importNames maps the names a file refers to its imports by onto import paths
func importNames(f *ast.File) map[string]string {
	names := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := defaultImportName(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		names[name] = importPath
	}
	return names
}

// defaultImportName guesses a package name from its import path, skipping
// major version suffixes
func defaultImportName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			base = path.Base(path.Dir(importPath))
		}
	}
	return strings.TrimPrefix(base, "go-")
}

// declaringType qualifies typeName with the import path of dir, falling back
// to the package name outside a module
func declaringType(dir, pkgName, typeName string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", siggserrors.WrapFileSystemError("resolve", dir, err)
	}

	module, err := utils.FindModule(abs)
	if err != nil {
		if siggserrors.HasCode(err, siggserrors.FileSystemErrorCode) {
			return pkgName + "." + typeName, nil
		}
		return "", err
	}

	importPath, err := module.ImportPath(abs)
	if err != nil {
		return "", err
	}
	return importPath + "." + typeName, nil
}

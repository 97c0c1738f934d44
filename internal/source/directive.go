package source

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/siggs/pkg/annotations"
	"github.com/toyz/siggs/pkg/descriptor"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// DirectivePrefix introduces a parameter annotation directive in a doc comment
const DirectivePrefix = "siggs::param"

// paramDirective is the root of a directive: a parameter name followed by its annotations
type paramDirective struct {
	Param       string            `parser:"@Ident"`
	Annotations []*annotationExpr `parser:"@@*"`
}

type annotationExpr struct {
	Name   []string   `parser:"'@' @Ident ( '.' @Ident )*"`
	Parens bool       `parser:"( @'('"`
	Args   []*argExpr `parser:"  ( @@ ( ',' @@ )* )? ')' )?"`
}

type argExpr struct {
	Member string     `parser:"( @Ident '=' )?"`
	Value  *valueExpr `parser:"@@"`
}

type valueExpr struct {
	Nested *annotationExpr `parser:"  @@"`
	String *string         `parser:"| @String"`
	Float  *float64        `parser:"| @Float"`
	Int    *int64          `parser:"| @Int"`
	Bool   *string         `parser:"| @Bool"`
	Nil    bool            `parser:"| @Nil"`
	IsList bool            `parser:"| @'['"`
	List   []*valueExpr    `parser:"  ( @@ ( ',' @@ )* )? ']'"`
}

// DirectiveParser parses `//siggs::param` directives into annotation descriptors
type DirectiveParser struct {
	parser   *participle.Parser[paramDirective]
	registry annotations.Registry
}

// NewDirectiveParser creates a parser. The registry decides whether a named
// argument targets a field or a property; it may be nil, in which case every
// named argument is a property.
func NewDirectiveParser(registry annotations.Registry) *DirectiveParser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Float", Pattern: `[-+]?\d+\.\d+([eE][-+]?\d+)?`},
		{Name: "Int", Pattern: `[-+]?\d+`},
		{Name: "Bool", Pattern: `(true|false)\b`},
		{Name: "Nil", Pattern: `nil\b`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[@(),=\[\].]`},
	})

	parser := participle.MustBuild[paramDirective](
		participle.Lexer(lex),
		participle.Unquote("String"),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	return &DirectiveParser{
		parser:   parser,
		registry: registry,
	}
}

// IsDirective reports whether a comment line is a parameter directive
func IsDirective(comment string) bool {
	_, ok := directiveBody(comment)
	return ok
}

// directiveBody strips the comment marker and directive prefix
func directiveBody(comment string) (string, bool) {
	content := strings.TrimSpace(comment)
	if !strings.HasPrefix(content, "//") {
		return "", false
	}
	content = strings.TrimSpace(strings.TrimPrefix(content, "//"))

	if !strings.HasPrefix(content, DirectivePrefix) {
		return "", false
	}
	body := strings.TrimPrefix(content, DirectivePrefix)
	if body != "" && body[0] != ' ' && body[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// Parse parses one directive comment, returning the parameter it names and
// the annotations in source order
func (p *DirectiveParser) Parse(comment string) (string, []*descriptor.Annotation, error) {
	body, ok := directiveBody(comment)
	if !ok {
		err := siggserrors.NewSyntaxError("comment is not a " + DirectivePrefix + " directive")
		err.Directive = comment
		return "", nil, err
	}

	parsed, err := p.parser.ParseString("", body)
	if err != nil {
		return "", nil, siggserrors.WrapParseError(comment, err)
	}

	result := make([]*descriptor.Annotation, 0, len(parsed.Annotations))
	for _, expr := range parsed.Annotations {
		result = append(result, p.annotation(expr))
	}
	return parsed.Param, result, nil
}

func (p *DirectiveParser) annotation(expr *annotationExpr) *descriptor.Annotation {
	a := descriptor.NewAnnotation(strings.Join(expr.Name, "."))

	var def *annotations.Definition
	if p.registry != nil {
		def, _ = p.registry.Lookup(a.Type)
	}

	for _, arg := range expr.Args {
		value := p.value(arg.Value)
		switch {
		case arg.Member == "":
			a.Args = append(a.Args, value)
		case def != nil && def.MemberKind(arg.Member) == annotations.FieldMember:
			a.WithField(arg.Member, value)
		default:
			a.WithProperty(arg.Member, value)
		}
	}
	return a
}

func (p *DirectiveParser) value(v *valueExpr) descriptor.Value {
	switch {
	case v.Nested != nil:
		return descriptor.Nested(p.annotation(v.Nested))
	case v.String != nil:
		return descriptor.Const(*v.String)
	case v.Float != nil:
		return descriptor.Const(*v.Float)
	case v.Int != nil:
		return descriptor.Const(int(*v.Int))
	case v.Bool != nil:
		return descriptor.Const(*v.Bool == "true")
	case v.IsList:
		elements := make([]descriptor.Value, 0, len(v.List))
		for _, el := range v.List {
			elements = append(elements, p.value(el))
		}
		return descriptor.List(elements...)
	}
	return descriptor.Const(nil)
}

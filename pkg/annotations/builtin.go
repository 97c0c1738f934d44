package annotations

import (
	"strings"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// Built-in annotation types

// Validate attaches go-playground/validator rules to a field
type Validate struct {
	Rules string
}

// NewValidate creates a Validate annotation from a rule string, e.g. "required,min=3"
func NewValidate(rules string) (*Validate, error) {
	if strings.TrimSpace(rules) == "" {
		return nil, siggserrors.NewDescriptorError("validation rules cannot be empty").
			WithAnnotation("Validate")
	}
	return &Validate{Rules: rules}, nil
}

// StructTags implements TagContributor
func (v *Validate) StructTags() []Tag {
	return []Tag{{Key: "validate", Value: v.Rules}}
}

// Alias renames a field for binders without changing its public name
type Alias struct {
	Name      string
	omitEmpty bool
}

// NewAlias creates an Alias annotation
func NewAlias(name string) *Alias {
	return &Alias{Name: name}
}

// OmitEmpty reports whether empty values are omitted when encoding
func (a *Alias) OmitEmpty() bool { return a.omitEmpty }

// SetOmitEmpty is the OmitEmpty property setter
func (a *Alias) SetOmitEmpty(v bool) { a.omitEmpty = v }

// StructTags implements TagContributor
func (a *Alias) StructTags() []Tag {
	jsonName := a.Name
	if a.omitEmpty {
		jsonName += ",omitempty"
	}
	return []Tag{
		{Key: "json", Value: jsonName},
		{Key: "form", Value: a.Name},
		{Key: "query", Value: a.Name},
		{Key: "schema", Value: a.Name},
	}
}

// Description documents a field
type Description struct {
	Text       string
	Example    string
	deprecated bool
}

// NewDescription creates a Description annotation
func NewDescription(text string) *Description {
	return &Description{Text: text}
}

// Deprecated reports whether the field is marked deprecated
func (d *Description) Deprecated() bool { return d.deprecated }

// SetDeprecated is the Deprecated property setter
func (d *Description) SetDeprecated(v bool) { d.deprecated = v }

// StructTags implements TagContributor
func (d *Description) StructTags() []Tag {
	return []Tag{{Key: "description", Value: d.Text}}
}

// ValidateDefinition describes the Validate annotation
var ValidateDefinition = documented(MustDefine[Validate]("Validate", NewValidate),
	"Adds validator rules to the synthesized field",
	`@Validate("required")`,
	`@Validate("required,min=3,max=64")`,
)

// AliasDefinition describes the Alias annotation
var AliasDefinition = documented(MustDefine[Alias]("Alias", NewAlias),
	"Renames the field for json, form, query and schema binding",
	`@Alias("user_id")`,
	`@Alias("note", OmitEmpty=true)`,
)

// DescriptionDefinition describes the Description annotation
var DescriptionDefinition = documented(MustDefine[Description]("Description", NewDescription),
	"Documents the synthesized field",
	`@Description("the message to send")`,
	`@Description("legacy id", Deprecated=true, Example="42")`,
)

func documented(def *Definition, text string, examples ...string) *Definition {
	def.Description = text
	def.Examples = examples
	return def
}

// RegisterBuiltins registers all built-in annotation types with the given registry
func RegisterBuiltins(r Registry) error {
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Builtins returns all built-in annotation type definitions
func Builtins() []*Definition {
	return []*Definition{
		ValidateDefinition,
		AliasDefinition,
		DescriptionDefinition,
	}
}

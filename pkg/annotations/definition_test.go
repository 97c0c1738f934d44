package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

func TestDefine_ValidatesConstructors(t *testing.T) {
	tests := []struct {
		name   string
		ctor   interface{}
		expect string
	}{
		{name: "not a function", ctor: "nope", expect: "not a function"},
		{name: "wrong result", ctor: func() *Simple { return nil }, expect: "must return *annotations.Complex"},
		{name: "variadic", ctor: func(...string) *Complex { return nil }, expect: "variadic"},
		{name: "second result not error", ctor: func() (*Complex, int) { return nil, 0 }, expect: "must return (*annotations.Complex, error)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Define[Complex]("Complex", tt.ctor)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
			assert.True(t, siggserrors.HasCode(err, siggserrors.RegistrationErrorCode))
		})
	}
}

func TestDefine_RequiresStruct(t *testing.T) {
	_, err := Define[int]("Number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
	assert.True(t, siggserrors.HasCode(err, siggserrors.RegistrationErrorCode))

	var regErr *siggserrors.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Number", regErr.ComponentName)

	assert.Panics(t, func() { MustDefine[string]("Text") })
}

func TestNewValidate_RejectsEmptyRules(t *testing.T) {
	_, err := NewValidate("  ")
	require.Error(t, err)
	assert.True(t, siggserrors.HasCode(err, siggserrors.DescriptorErrorCode))

	v, err := NewValidate("required")
	require.NoError(t, err)
	assert.Equal(t, "required", v.Rules)
}

func TestRegisterBuiltins_DuplicateIsRegistrationError(t *testing.T) {
	r := NewBuiltinRegistry()
	err := RegisterBuiltins(r)
	require.Error(t, err)
	assert.True(t, siggserrors.HasCode(err, siggserrors.RegistrationErrorCode))
	assert.Contains(t, err.Error(), "failed to register annotation 'Validate': already registered")
}

func TestDefine_DefaultsNameToTypeName(t *testing.T) {
	def, err := Define[Complex]("", NewComplex)
	require.NoError(t, err)
	assert.Equal(t, "Complex", def.Name)
}

func TestDefinition_MemberKind(t *testing.T) {
	def := MustDefine[Complex]("Complex", NewComplex)

	assert.Equal(t, PropertyMember, def.MemberKind("B"))
	assert.Equal(t, FieldMember, def.MemberKind("C"))
	assert.Equal(t, UnknownMember, def.MemberKind("a"))
	assert.Equal(t, UnknownMember, def.MemberKind("Missing"))
	assert.Equal(t, UnknownMember, def.MemberKind(""))

	assert.Equal(t, "property", PropertyMember.String())
	assert.Equal(t, "field", FieldMember.String())
}

func TestDefinition_Signature(t *testing.T) {
	def := MustDefine[Complex]("Complex", NewComplex, func(a string, b int) *Complex { return &Complex{a: a, b: b} })
	assert.Equal(t, "Complex(string) | Complex(string, int)", def.Signature())
	assert.Len(t, def.Constructors(), 2)

	assert.Equal(t, "Simple()", MustDefine[Simple]("Simple").Signature())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, Register[Complex](r, "Complex", NewComplex))
	require.NoError(t, Register[Simple](r, "Simple"))

	assert.True(t, r.IsRegistered("Complex"))
	assert.False(t, r.IsRegistered("Missing"))
	assert.Equal(t, []string{"Complex", "Simple"}, r.ListTypes())

	def, ok := r.Lookup("Complex")
	require.True(t, ok)
	assert.Equal(t, "Complex", def.Name)

	err := Register[Complex](r, "Complex", NewComplex)
	require.Error(t, err)
	assert.True(t, siggserrors.HasCode(err, siggserrors.RegistrationErrorCode))
	assert.Contains(t, err.Error(), "already registered")

	err = Register[Complex](r, "Broken", "not a function")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid definition")

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&Definition{}))
}

func TestBuiltins(t *testing.T) {
	r := NewBuiltinRegistry()
	assert.Equal(t, []string{"Alias", "Description", "Validate"}, r.ListTypes())

	for _, def := range Builtins() {
		assert.NotEmpty(t, def.Description, def.Name)
		assert.NotEmpty(t, def.Examples, def.Name)
	}

	assert.Error(t, RegisterBuiltins(r))
}

func TestBuiltins_StructTags(t *testing.T) {
	_, err := NewValidate("  ")
	require.Error(t, err)

	v, err := NewValidate("required,min=3")
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "validate", Value: "required,min=3"}}, v.StructTags())

	alias := NewAlias("msg")
	alias.SetOmitEmpty(true)
	assert.True(t, alias.OmitEmpty())
	assert.Equal(t, []Tag{
		{Key: "json", Value: "msg,omitempty"},
		{Key: "form", Value: "msg"},
		{Key: "query", Value: "msg"},
		{Key: "schema", Value: "msg"},
	}, alias.StructTags())

	desc := NewDescription("the message")
	desc.SetDeprecated(true)
	assert.True(t, desc.Deprecated())
	assert.Equal(t, []Tag{{Key: "description", Value: "the message"}}, desc.StructTags())
}

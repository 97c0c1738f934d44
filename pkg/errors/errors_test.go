package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_MessageIncludesCauseAndLocation(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(SyntaxErrorCode, "failed to parse", cause).
		WithLocation(SourceLocation{File: "handler.go", Line: 12, Column: 3})

	assert.Equal(t, "handler.go:12:3: failed to parse: boom", err.Error())
	assert.Equal(t, SyntaxErrorCode, err.ErrorCode())
	assert.True(t, errors.Is(err, cause))
}

func TestBaseError_ContextAndSuggestions(t *testing.T) {
	err := New(ConfigurationErrorCode, "bad config").
		WithContext("key", "value").
		WithSuggestion("fix it")

	assert.Equal(t, "value", err.Context()["key"])
	assert.Equal(t, []string{"fix it"}, err.Suggestions())
}

func TestDescriptorError_PrefixesOrigin(t *testing.T) {
	tests := []struct {
		name   string
		err    *DescriptorError
		expect string
	}{
		{
			name:   "method and parameter",
			err:    NewDescriptorError("bad").WithMethod("pkg.Example.Method").WithParameter("message"),
			expect: "pkg.Example.Method(message): bad",
		},
		{
			name:   "method only",
			err:    NewDescriptorError("bad").WithMethod("pkg.Example.Method"),
			expect: "pkg.Example.Method: bad",
		},
		{
			name:   "parameter only",
			err:    NewDescriptorError("bad").WithParameter("message"),
			expect: "parameter message: bad",
		},
		{
			name:   "bare",
			err:    NewDescriptorErrorf("bad %d", 1),
			expect: "bad 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Error())
			assert.Equal(t, DescriptorErrorCode, tt.err.ErrorCode())
		})
	}
}

func TestDescriptorError_As(t *testing.T) {
	var err error = fmt.Errorf("wrapped: %w",
		NewDescriptorError("no constructor").WithAnnotation("Complex").WithMember("B"))

	var descErr *DescriptorError
	require.True(t, errors.As(err, &descErr))
	assert.Equal(t, "Complex", descErr.Annotation)
	assert.Equal(t, "B", descErr.Member)
	assert.True(t, HasCode(err, DescriptorErrorCode))
	assert.False(t, HasCode(err, SyntaxErrorCode))
}

func TestDuplicateFieldNameError(t *testing.T) {
	err := NewDuplicateFieldNameError("value", "a", "b")

	assert.Equal(t, DuplicateFieldNameErrorCode, err.ErrorCode())
	assert.Contains(t, err.Error(), "'value'")
	assert.Contains(t, err.Error(), "'a'")
	assert.Contains(t, err.Error(), "'b'")
}

func TestConcurrencyViolation(t *testing.T) {
	err := NewConcurrencyViolation("pkg.Example.Method")

	assert.Equal(t, ConcurrencyViolationCode, err.ErrorCode())
	assert.Equal(t, "pkg.Example.Method", err.Key)
	assert.Contains(t, err.Error(), "pkg.Example.Method")
}

func TestBindingError(t *testing.T) {
	fieldErr := NewBindingError("pkg.Example.Method", "message", "required")
	assert.Equal(t, "message: required", fieldErr.Error())
	assert.Equal(t, "required", fieldErr.Message)

	wrapped := WrapBindingError("pkg.Example.Method", "decode", fmt.Errorf("bad input"))
	assert.Equal(t, "failed to decode pkg.Example.Method: bad input", wrapped.Error())
	assert.Empty(t, wrapped.Field)
}

func TestMultipleErrors(t *testing.T) {
	all := NewMultipleErrors()
	assert.True(t, all.IsEmpty())
	assert.Equal(t, "no errors", all.Error())

	all.Add(NewBindingError("T", "a", "required"))
	assert.Equal(t, "a: required", all.Error())

	all.Add(NewSyntaxError("bad directive"))
	assert.Equal(t, 2, all.Count())
	assert.Contains(t, all.Error(), "multiple errors (2 total)")
	assert.Len(t, all.GetByCode(BindingErrorCode), 1)
	assert.Equal(t, BindingErrorCode, all.ErrorCode())

	assert.True(t, HasCode(all, SyntaxErrorCode))

	var bindErr *BindingError
	require.True(t, errors.As(all, &bindErr))
	assert.Equal(t, "a", bindErr.Field)
}

func TestRegistrationError(t *testing.T) {
	err := NewRegistrationError("annotation", "Validate", "already registered")

	assert.Equal(t, "failed to register annotation 'Validate': already registered", err.Error())
	assert.Equal(t, "annotation", err.ComponentType)
	assert.Equal(t, "Validate", err.ComponentName)
}

func TestErrorCode_String(t *testing.T) {
	assert.NotEqual(t, DescriptorErrorCode.String(), SyntaxErrorCode.String())
	assert.NotEmpty(t, BindingErrorCode.String())
}

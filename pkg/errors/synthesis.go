package errors

import "fmt"

// DescriptorError reports an incomplete or malformed method, parameter or
// annotation descriptor. Synthesis of the enclosing type is abandoned.
type DescriptorError struct {
	*BaseError
	Method     string // method identity, e.g. "pkg.Example.Method"
	Parameter  string // parameter name, empty when the method itself is malformed
	Annotation string // annotation type name, empty when not annotation related
	Member     string // named member, empty when not member related
}

// NewDescriptorError creates a new descriptor error
func NewDescriptorError(message string) *DescriptorError {
	return &DescriptorError{
		BaseError: New(DescriptorErrorCode, message),
	}
}

// NewDescriptorErrorf creates a new descriptor error with a formatted message
func NewDescriptorErrorf(format string, args ...interface{}) *DescriptorError {
	return NewDescriptorError(fmt.Sprintf(format, args...))
}

// Error prefixes the message with the method and parameter being synthesized
func (e *DescriptorError) Error() string {
	msg := e.BaseError.Error()
	switch {
	case e.Method != "" && e.Parameter != "":
		return fmt.Sprintf("%s(%s): %s", e.Method, e.Parameter, msg)
	case e.Method != "":
		return fmt.Sprintf("%s: %s", e.Method, msg)
	case e.Parameter != "":
		return fmt.Sprintf("parameter %s: %s", e.Parameter, msg)
	}
	return msg
}

// WithMethod sets the method identity
func (e *DescriptorError) WithMethod(method string) *DescriptorError {
	e.Method = method
	return e
}

// WithParameter sets the parameter name
func (e *DescriptorError) WithParameter(parameter string) *DescriptorError {
	e.Parameter = parameter
	return e
}

// WithAnnotation sets the annotation type name
func (e *DescriptorError) WithAnnotation(annotation string) *DescriptorError {
	e.Annotation = annotation
	e.BaseError.WithContext("annotation", annotation)
	return e
}

// WithMember sets the annotation member name
func (e *DescriptorError) WithMember(member string) *DescriptorError {
	e.Member = member
	e.BaseError.WithContext("member", member)
	return e
}

// WithCause adds an underlying error cause
func (e *DescriptorError) WithCause(cause error) *DescriptorError {
	e.BaseError.WithCause(cause)
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *DescriptorError) WithSuggestion(suggestion string) *DescriptorError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// DuplicateFieldNameError reports two parameters resolving to the same field name
type DuplicateFieldNameError struct {
	*BaseError
	Field  string // the colliding field name
	First  string // parameter that claimed the name first
	Second string // parameter that collided with it
}

// NewDuplicateFieldNameError creates a new duplicate field name error
func NewDuplicateFieldNameError(field, first, second string) *DuplicateFieldNameError {
	message := fmt.Sprintf("field '%s' is produced by both parameter '%s' and parameter '%s'", field, first, second)
	err := &DuplicateFieldNameError{
		BaseError: New(DuplicateFieldNameErrorCode, message),
		Field:     field,
		First:     first,
		Second:    second,
	}
	err.WithContext("field", field)
	return err
}

// ConcurrencyViolation reports that two different types were produced for
// one method identity. It is never returned; detecting it panics.
type ConcurrencyViolation struct {
	*BaseError
	Key string
}

// NewConcurrencyViolation creates a new concurrency violation for the given cache key
func NewConcurrencyViolation(key string) *ConcurrencyViolation {
	return &ConcurrencyViolation{
		BaseError: Newf(ConcurrencyViolationCode, "two different types were synthesized for '%s'", key),
		Key:       key,
	}
}

package errors

import "fmt"

// SyntaxError represents an annotation directive that could not be parsed
type SyntaxError struct {
	*BaseError
	Directive string // the offending directive text
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *SyntaxError {
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause),
		Directive: item,
	}
}

// RegistrationError represents a conflicting or invalid registry entry
type RegistrationError struct {
	*BaseError
	ComponentType string // e.g. "annotation", "type"
	ComponentName string
}

// NewRegistrationError creates a new registration error
func NewRegistrationError(componentType, name, reason string) *RegistrationError {
	return &RegistrationError{
		BaseError:     Newf(RegistrationErrorCode, "failed to register %s '%s': %s", componentType, name, reason),
		ComponentType: componentType,
		ComponentName: name,
	}
}

// BindingError represents request data that could not be bound to, or
// validated against, a synthesized instance
type BindingError struct {
	*BaseError
	TypeName string
	Field    string
}

// Error prefixes the message with the offending field, if any
func (e *BindingError) Error() string {
	if e.Field == "" {
		return e.BaseError.Error()
	}
	return e.Field + ": " + e.BaseError.Error()
}

// WrapBindingError wraps a decoding or validation failure
func WrapBindingError(typeName, stage string, cause error) *BindingError {
	return &BindingError{
		BaseError: Wrap(BindingErrorCode, fmt.Sprintf("failed to %s %s", stage, typeName), cause),
		TypeName:  typeName,
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// NewAccessorError reports a failed read or write through a field accessor
func NewAccessorError(typeName, field, reason string) *BaseError {
	return Newf(AccessorErrorCode, "%s.%s: %s", typeName, field, reason).
		WithContext("type", typeName).
		WithContext("field", field)
}

// NewBindingError reports a single field that failed validation
func NewBindingError(typeName, field, message string) *BindingError {
	err := &BindingError{
		BaseError: New(BindingErrorCode, message),
		TypeName:  typeName,
		Field:     field,
	}
	err.WithContext("type", typeName)
	return err
}

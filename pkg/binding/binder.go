// Package binding fills synthesized instances from request data and
// validates them against the rules contributed by Validate annotations.
package binding

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/synth"
)

// Binder decodes and validates synthesized instances. A Binder is safe for
// concurrent use.
type Binder struct {
	validate *validator.Validate
	decoder  *schema.Decoder
}

// NewBinder creates a binder. Validation errors report public field names.
func NewBinder() *Binder {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Binder{
		validate: validate,
		decoder:  decoder,
	}
}

// Decode fills inst from form or query values keyed by public field name
func (b *Binder) Decode(inst *synth.Instance, values url.Values) error {
	if err := b.decoder.Decode(inst.Interface(), values); err != nil {
		return siggserrors.WrapBindingError(inst.Type().Name(), "decode", err)
	}
	return nil
}

// DecodeJSON fills inst from a JSON object keyed by public field name
func (b *Binder) DecodeJSON(inst *synth.Instance, r io.Reader) error {
	if err := json.UnmarshalRead(r, inst.Interface()); err != nil {
		return siggserrors.WrapBindingError(inst.Type().Name(), "decode", err)
	}
	return nil
}

// Validate checks inst against its validate tags. Field failures are
// collected into a *errors.MultipleErrors of *errors.BindingError.
func (b *Binder) Validate(inst *synth.Instance) error {
	err := b.validate.Struct(inst.Interface())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return siggserrors.WrapBindingError(inst.Type().Name(), "validate", err)
	}

	all := siggserrors.NewMultipleErrors()
	for _, fe := range fieldErrs {
		all.Add(siggserrors.NewBindingError(inst.Type().Name(), fe.Field(), formatValidationError(fe)))
	}
	return all
}

// Bind creates an instance of t, decodes values into it and validates it
func (b *Binder) Bind(t *synth.Type, values url.Values) (*synth.Instance, error) {
	inst := t.New()
	if err := b.Decode(inst, values); err != nil {
		return nil, err
	}
	if err := b.Validate(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// BindJSON creates an instance of t, decodes a JSON body into it and validates it
func (b *Binder) BindJSON(t *synth.Type, r io.Reader) (*synth.Instance, error) {
	inst := t.New()
	if err := b.DecodeJSON(inst, r); err != nil {
		return nil, err
	}
	if err := b.Validate(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// Package adapters binds web framework requests into synthesized instances.
package adapters

import (
	"errors"
	"net/http"

	"github.com/toyz/siggs/pkg/binding"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// ErrorResponse is the body written when a request cannot be bound
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// errorResponse maps a binding failure to a status code and body
func errorResponse(err error) (int, ErrorResponse) {
	if !siggserrors.HasCode(err, siggserrors.BindingErrorCode) {
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}

	resp := ErrorResponse{Error: "invalid request"}
	var all *siggserrors.MultipleErrors
	if errors.As(err, &all) {
		resp.Fields = make(map[string]string, all.Count())
		for _, e := range all.Errors {
			var be *siggserrors.BindingError
			if errors.As(e, &be) && be.Field != "" {
				resp.Fields[be.Field] = be.Message
			}
		}
		return http.StatusBadRequest, resp
	}

	resp.Error = err.Error()
	return http.StatusBadRequest, resp
}

func binderOrDefault(b *binding.Binder) *binding.Binder {
	if b == nil {
		return binding.NewBinder()
	}
	return b
}

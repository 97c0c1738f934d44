package adapters

import (
	"github.com/labstack/echo/v4"

	"github.com/toyz/siggs/pkg/binding"
	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/synth"
)

// EchoHandlerFunc receives a bound and validated instance
type EchoHandlerFunc func(c echo.Context, inst *synth.Instance) error

// EchoAdapter binds Echo v4 requests into synthesized instances
type EchoAdapter struct {
	binder *binding.Binder
}

// NewEchoAdapter creates a new Echo adapter. A nil binder gets binding.NewBinder.
func NewEchoAdapter(b *binding.Binder) *EchoAdapter {
	return &EchoAdapter{binder: binderOrDefault(b)}
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// Bind fills a new instance of t from the path, query and body of the
// request, then validates it
func (ea *EchoAdapter) Bind(c echo.Context, t *synth.Type) (*synth.Instance, error) {
	inst := t.New()
	if err := c.Bind(inst.Interface()); err != nil {
		return nil, siggserrors.WrapBindingError(t.Name(), "bind", err)
	}
	if err := ea.binder.Validate(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Handler converts fn to an echo.HandlerFunc. Requests that fail to bind are
// answered with an ErrorResponse and fn is not called.
func (ea *EchoAdapter) Handler(t *synth.Type, fn EchoHandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		inst, err := ea.Bind(c, t)
		if err != nil {
			status, body := errorResponse(err)
			return c.JSON(status, body)
		}
		return fn(c, inst)
	}
}

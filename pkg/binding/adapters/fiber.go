package adapters

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toyz/siggs/pkg/binding"
	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/synth"
)

// FiberHandlerFunc receives a bound and validated instance
type FiberHandlerFunc func(c *fiber.Ctx, inst *synth.Instance) error

// FiberAdapter binds Fiber requests into synthesized instances
type FiberAdapter struct {
	binder *binding.Binder
}

// NewFiberAdapter creates a new Fiber adapter. A nil binder gets binding.NewBinder.
func NewFiberAdapter(b *binding.Binder) *FiberAdapter {
	return &FiberAdapter{binder: binderOrDefault(b)}
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// Bind fills a new instance of t from the query string for bodiless methods
// and from the body otherwise, then validates it
func (fa *FiberAdapter) Bind(c *fiber.Ctx, t *synth.Type) (*synth.Instance, error) {
	inst := t.New()

	var err error
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodDelete:
		err = c.QueryParser(inst.Interface())
	default:
		err = c.BodyParser(inst.Interface())
	}
	if err != nil {
		return nil, siggserrors.WrapBindingError(t.Name(), "bind", err)
	}

	if err := fa.binder.Validate(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Handler converts fn to a fiber.Handler. Requests that fail to bind are
// answered with an ErrorResponse and fn is not called.
func (fa *FiberAdapter) Handler(t *synth.Type, fn FiberHandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inst, err := fa.Bind(c, t)
		if err != nil {
			status, body := errorResponse(err)
			return c.Status(status).JSON(body)
		}
		return fn(c, inst)
	}
}

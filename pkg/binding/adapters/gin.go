package adapters

import (
	"github.com/gin-gonic/gin"

	"github.com/toyz/siggs/pkg/binding"
	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/synth"
)

// GinHandlerFunc receives a bound and validated instance
type GinHandlerFunc func(c *gin.Context, inst *synth.Instance)

// GinAdapter binds Gin requests into synthesized instances
type GinAdapter struct {
	binder *binding.Binder
}

// NewGinAdapter creates a new Gin adapter. A nil binder gets binding.NewBinder.
func NewGinAdapter(b *binding.Binder) *GinAdapter {
	return &GinAdapter{binder: binderOrDefault(b)}
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// Bind fills a new instance of t using the binding Gin selects for the
// request method and content type, then validates it
func (ga *GinAdapter) Bind(c *gin.Context, t *synth.Type) (*synth.Instance, error) {
	inst := t.New()
	if err := c.ShouldBind(inst.Interface()); err != nil {
		return nil, siggserrors.WrapBindingError(t.Name(), "bind", err)
	}
	if err := ga.binder.Validate(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// Handler converts fn to a gin.HandlerFunc. Requests that fail to bind are
// aborted with an ErrorResponse and fn is not called.
func (ga *GinAdapter) Handler(t *synth.Type, fn GinHandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		inst, err := ga.Bind(c, t)
		if err != nil {
			status, body := errorResponse(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		fn(c, inst)
	}
}

package portal

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var authCtxKey = &contextKey{"auth_context"}

// LocalsAuthContextKey is the fiber locals key the AuthContext is stored under
const LocalsAuthContextKey = "auth_context"

type contextKey struct {
	name string
}

// WithAuthContext sets the AuthContext in the given context
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authCtxKey, ac)
}

// AuthContextFromContext finds the AuthContext in the given context
func AuthContextFromContext(ctx context.Context) (*AuthContext, bool) {
	raw, ok := ctx.Value(authCtxKey).(*AuthContext)
	return raw, ok && raw != nil
}

// ProvideAuthContext makes ac available to every downstream handler, both as
// a fiber local and on the request user context.
func ProvideAuthContext(ac *AuthContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalsAuthContextKey, ac)
		c.SetUserContext(WithAuthContext(c.UserContext(), ac))
		return c.Next()
	}
}

// GetAuthContext extracts the AuthContext from the fiber context
func GetAuthContext(c *fiber.Ctx) (*AuthContext, bool) {
	raw, ok := c.Locals(LocalsAuthContextKey).(*AuthContext)
	if ok && raw != nil {
		return raw, true
	}
	return AuthContextFromContext(c.UserContext())
}

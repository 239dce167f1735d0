package portal

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouteGuard admits requests to protected views only while the AuthContext
// is Authenticated. Everything else is sent to the login view.
type RouteGuard struct {
	auth             *AuthContext
	loginPath        string
	defaultRedirect  string
	rejectedRouteKey string
	secureCookies    bool
	Logger           Logger
}

type RouteGuardOption func(*RouteGuard)

// WithSecureCookies marks the rejected route cookie as Secure
func WithSecureCookies(secure bool) RouteGuardOption {
	return func(g *RouteGuard) {
		g.secureCookies = secure
	}
}

func WithGuardLogger(logger Logger) RouteGuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.Logger = logger
		}
	}
}

func NewRouteGuard(ac *AuthContext, cfg Config, opts ...RouteGuardOption) *RouteGuard {
	g := &RouteGuard{
		auth:             ac,
		loginPath:        "/login",
		defaultRedirect:  "/dashboard",
		rejectedRouteKey: "rejected_route",
		Logger:           defLogger{},
	}

	if cfg != nil {
		if p := cfg.GetLoginPath(); p != "" {
			g.loginPath = p
		}
		if p := cfg.GetDefaultRedirect(); p != "" {
			g.defaultRedirect = p
		}
		if k := cfg.GetRejectedRouteKey(); k != "" {
			g.rejectedRouteKey = k
		}
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// LoginPath is where anonymous requests are sent
func (g *RouteGuard) LoginPath() string {
	return g.loginPath
}

// Protect is the middleware wrapping protected routes
func (g *RouteGuard) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.auth != nil && g.auth.IsAuthenticated() {
			return c.Next()
		}
		return g.Deny(c)
	}
}

// Deny redirects to the login view. GET requests get a 302, any other
// method a 303 so the browser follows with a GET.
func (g *RouteGuard) Deny(c *fiber.Ctx) error {
	g.Logger.Info("anonymous request to protected route, redirecting to login", "path", c.OriginalURL())

	if c.Method() == fiber.MethodGet {
		g.SetRedirect(c)
		return c.Redirect(g.loginPath, http.StatusFound)
	}

	return c.Redirect(g.loginPath, http.StatusSeeOther)
}

// SetRedirect remembers the rejected route for a few minutes
func (g *RouteGuard) SetRedirect(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.rejectedRouteKey,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   g.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// GetRedirect returns and consumes the remembered route, falling back to
// the default redirect. Only local paths are honored.
func (g *RouteGuard) GetRedirect(c *fiber.Ctx) string {
	r := c.Cookies(g.rejectedRouteKey)
	if r != "" {
		g.cookieDel(c, g.rejectedRouteKey)
	}

	if !isLocalPath(r) || r == g.loginPath {
		return g.defaultRedirect
	}
	return r
}

func (g *RouteGuard) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   g.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

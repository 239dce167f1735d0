package portal

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardApp(t *testing.T, ac *AuthContext, cfg Config) (*fiber.App, *RouteGuard) {
	t.Helper()

	guard := NewRouteGuard(ac, cfg, WithGuardLogger(nopLogger{}))

	app := fiber.New()
	app.Get("/dashboard", guard.Protect(), func(c *fiber.Ctx) error {
		return c.SendString("dashboard")
	})
	app.Post("/notices", guard.Protect(), func(c *fiber.Ctx) error {
		return c.SendString("created")
	})
	app.Get("/after-login", func(c *fiber.Ctx) error {
		return c.SendString(guard.GetRedirect(c))
	})

	return app, guard
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRouteGuard_DeniesAnonymousGet(t *testing.T) {
	ac, _ := newTestAuth(t, "")
	app, _ := newGuardApp(t, ac, nil)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/dashboard?tab=1", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	cookie := findCookie(resp, "rejected_route")
	require.NotNil(t, cookie)
	assert.Equal(t, "/dashboard?tab=1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestRouteGuard_DeniesAnonymousPost(t *testing.T) {
	ac, _ := newTestAuth(t, "")
	app, _ := newGuardApp(t, ac, nil)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/notices", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
	assert.Nil(t, findCookie(resp, "rejected_route"))
}

func TestRouteGuard_DeniesOnceCredentialIsGone(t *testing.T) {
	ac, mem := newTestAuth(t, "")
	app, _ := newGuardApp(t, ac, nil)

	ac.Login("a.b.c")
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	delete(mem.values, DefaultStorageKey)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
}

func TestRouteGuard_AdmitsAuthenticated(t *testing.T) {
	ac, _ := newTestAuth(t, "tok")
	app, _ := newGuardApp(t, ac, nil)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "dashboard", string(body))

	ac.Logout()

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRouteGuard_ConfigOverrides(t *testing.T) {
	cfg := &MockConfig{}
	cfg.On("GetLoginPath").Return("/signin")
	cfg.On("GetDefaultRedirect").Return("/home")
	cfg.On("GetRejectedRouteKey").Return("back_to")

	ac, _ := newTestAuth(t, "")
	app, guard := newGuardApp(t, ac, cfg)
	assert.Equal(t, "/signin", guard.LoginPath())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, "/signin", resp.Header.Get(fiber.HeaderLocation))
	assert.NotNil(t, findCookie(resp, "back_to"))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/after-login", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "/home", string(body))
}

func TestRouteGuard_GetRedirect(t *testing.T) {
	tests := []struct {
		name     string
		cookie   string
		expected string
	}{
		{name: "no cookie", cookie: "", expected: "/dashboard"},
		{name: "local path", cookie: "/grades?exam=Quiz", expected: "/grades?exam=Quiz"},
		{name: "absolute url", cookie: "https://evil.example/x", expected: "/dashboard"},
		{name: "protocol relative", cookie: "//evil.example", expected: "/dashboard"},
		{name: "login page", cookie: "/login", expected: "/dashboard"},
	}

	ac, _ := newTestAuth(t, "")
	app, _ := newGuardApp(t, ac, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/after-login", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "rejected_route", Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.expected, string(body))

			if tt.cookie != "" {
				cleared := findCookie(resp, "rejected_route")
				require.NotNil(t, cleared)
				assert.Empty(t, cleared.Value)
			}
		})
	}
}

func TestIsLocalPath(t *testing.T) {
	assert.True(t, isLocalPath("/classes/3"))
	assert.False(t, isLocalPath(""))
	assert.False(t, isLocalPath("classes"))
	assert.False(t, isLocalPath("//evil.example"))
	assert.False(t, isLocalPath("/\\evil.example"))
}

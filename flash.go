package portal

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FlashCookie carries one message across a redirect
const FlashCookie = "portal_flash"

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash is a one shot alert shown on the next rendered page
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WithFlash stores a message for the next request and returns c so the
// call can be chained with Redirect.
func WithFlash(c *fiber.Ctx, kind, message string) *fiber.Ctx {
	raw, err := json.Marshal(Flash{Type: kind, Message: message})
	if err != nil {
		return c
	}

	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c
}

func WithSuccess(c *fiber.Ctx, message string) *fiber.Ctx {
	return WithFlash(c, FlashSuccess, message)
}

func WithError(c *fiber.Ctx, message string) *fiber.Ctx {
	return WithFlash(c, FlashDanger, message)
}

func WithInfo(c *fiber.Ctx, message string) *fiber.Ctx {
	return WithFlash(c, FlashInfo, message)
}

// ConsumeFlash reads and clears the pending message
func ConsumeFlash(c *fiber.Ctx) (Flash, bool) {
	v := c.Cookies(FlashCookie)
	if v == "" {
		return Flash{}, false
	}

	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return Flash{}, false
	}

	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return Flash{}, false
	}
	return f, true
}

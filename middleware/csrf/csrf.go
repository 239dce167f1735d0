// Package csrf protects the portal forms with stateless, HMAC signed
// tokens bound to a per browser cookie.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrTokenMismatch    = errors.New("CSRF token mismatch")
	ErrTokenMissing     = errors.New("CSRF token missing")
	ErrTokenExpired     = errors.New("CSRF token expired")
	ErrSecureKeyMissing = errors.New("CSRF secure key required")
)

// DefaultTokenLength is the nonce length in bytes
const DefaultTokenLength = 16

// DefaultContextKey is the fiber local holding the token
const DefaultContextKey = "csrf_token"

// DefaultFormFieldName is the form field carrying the token
const DefaultFormFieldName = "_token"

// DefaultHeaderName is the header carrying the token
const DefaultHeaderName = "X-CSRF-Token"

// DefaultCookieName holds the browser id tokens are bound to
const DefaultCookieName = "portal_csrf"

// Config defines the configuration for the CSRF middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(*fiber.Ctx) bool

	// TokenLength is the nonce length in bytes
	TokenLength int

	// ContextKey defines the fiber local for the token
	ContextKey string

	FormFieldName string
	HeaderName    string
	CookieName    string
	CookieSecure  bool

	// SafeMethods are never validated
	SafeMethods []string

	// Expiration is how long a token stays valid
	Expiration time.Duration

	// SecureKey signs tokens, at least 32 bytes. A random key is generated
	// when empty, so tokens do not survive a restart.
	SecureKey []byte

	ErrorHandler fiber.ErrorHandler
}

// New creates a new CSRF middleware
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Skip != nil && cfg.Skip(c) {
			return c.Next()
		}

		browserID := c.Cookies(cfg.CookieName)
		if _, err := uuid.Parse(browserID); err != nil {
			browserID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cfg.CookieName,
				Value:    browserID,
				Path:     "/",
				HTTPOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		token, err := generateToken(cfg, browserID, time.Now())
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, token)
		c.Locals(cfg.ContextKey+"_field", cfg.FormFieldName)
		if cfg.ContextKey != DefaultContextKey {
			// Token and TemplateData always read the default key
			c.Locals(DefaultContextKey, token)
			c.Locals(DefaultContextKey+"_field", cfg.FormFieldName)
		}

		if slices.Contains(cfg.SafeMethods, strings.ToUpper(c.Method())) {
			return c.Next()
		}

		received := c.FormValue(cfg.FormFieldName)
		if received == "" {
			received = c.Get(cfg.HeaderName)
		}

		if err := validateToken(cfg, received, browserID, time.Now()); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		return c.Next()
	}
}

// Token returns the token stored by the middleware for this request
func Token(c *fiber.Ctx) string {
	token, _ := c.Locals(DefaultContextKey).(string)
	return token
}

// TemplateData exposes the token and field name to views
func TemplateData(c *fiber.Ctx) map[string]any {
	field, _ := c.Locals(DefaultContextKey + "_field").(string)
	if field == "" {
		field = DefaultFormFieldName
	}
	return map[string]any{
		"csrf_token": Token(c),
		"csrf_field": field,
	}
}

// token layout: base64url("<unix>:<nonce hex>:<browser id>:<hmac hex>")
func generateToken(cfg Config, browserID string, now time.Time) (string, error) {
	nonce := make([]byte, cfg.TokenLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	payload := fmt.Sprintf("%d:%s:%s", now.UTC().Unix(), hex.EncodeToString(nonce), browserID)
	token := payload + ":" + hex.EncodeToString(sign(cfg.SecureKey, payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func validateToken(cfg Config, token, browserID string, now time.Time) error {
	if token == "" {
		return ErrTokenMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 {
		return ErrTokenMismatch
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	signature, err := hex.DecodeString(parts[3])
	if err != nil {
		return ErrTokenMismatch
	}

	if !hmac.Equal(signature, sign(cfg.SecureKey, strings.Join(parts[:3], ":"))) {
		return ErrTokenMismatch
	}

	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(browserID)) != 1 {
		return ErrTokenMismatch
	}

	if cfg.Expiration > 0 && now.UTC().After(time.Unix(timestamp, 0).Add(cfg.Expiration)) {
		return ErrTokenExpired
	}

	return nil
}

func sign(key []byte, payload string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultTokenLength
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodTrace}
	}

	if cfg.Expiration == 0 {
		cfg.Expiration = 12 * time.Hour
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	cfg.SecureKey = initializeSecureKey(cfg.SecureKey)

	return cfg
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return c.Status(fiber.StatusBadRequest).SendString("CSRF token missing")
	case errors.Is(err, ErrTokenMismatch):
		return c.Status(fiber.StatusForbidden).SendString("CSRF token mismatch")
	case errors.Is(err, ErrTokenExpired):
		return c.Status(fiber.StatusForbidden).SendString("CSRF token expired")
	default:
		return c.Status(fiber.StatusInternalServerError).SendString("CSRF validation error")
	}
}

func initializeSecureKey(current []byte) []byte {
	if len(current) > 0 {
		if len(current) < 32 {
			panic(fmt.Errorf("csrf: secure key must be at least 32 bytes, got %d", len(current)))
		}
		return current
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		panic(fmt.Errorf("csrf: unable to initialize secure key: %w", err))
	}
	return key
}

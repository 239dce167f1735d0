package portal

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// MiddlewareConfig controls UseDefaultMiddleware
type MiddlewareConfig struct {
	// AccessLog receives one line per request, nil disables it
	AccessLog io.Writer
	// StackTrace prints the panic stack on recover
	StackTrace bool
}

// UseDefaultMiddleware installs panic recovery, request ids and the access
// log, in that order, on app.
func UseDefaultMiddleware(app fiber.Router, cfg MiddlewareConfig) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.StackTrace,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			Output: cfg.AccessLog,
		}))
	}
}

// DefaultMiddlewareConfig logs to stdout
func DefaultMiddlewareConfig(debug bool) MiddlewareConfig {
	return MiddlewareConfig{
		AccessLog:  os.Stdout,
		StackTrace: debug,
	}
}

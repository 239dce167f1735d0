package portal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Storage is the durable key/value slot the SessionStore persists the
// credential into. Implementations live in the storage package.
type Storage interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CredentialSource exposes the current bearer credential read-only.
type CredentialSource interface {
	Get() (string, bool)
}

// Config holds portal options. NewRouteGuard reads the routing getters,
// WithSessionConfig the storage ones and WithPortalConfig the rest.
type Config interface {
	GetLoginPath() string
	GetDefaultRedirect() string
	GetRejectedRouteKey() string
	GetStorageKey() string
	GetStorageTimeout() time.Duration
	GetPhoneRegion() string
	GetDebug() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Println("[ERR] PORTAL " + formatLog(format, args...))
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Println("[INF] PORTAL " + formatLog(format, args...))
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Println("[DBG] PORTAL " + formatLog(format, args...))
}

// formatLog supports both printf style calls and trailing key/value pairs
func formatLog(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}

	if strings.Contains(format, "%") {
		return fmt.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(format)
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		if i+1 >= len(args) {
			fmt.Fprintf(&b, "%v", args[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
	}
	return b.String()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

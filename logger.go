package portal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger adapts a zerolog.Logger to Logger. Trailing args are read as
// key/value pairs unless the message carries printf verbs.
type ZeroLogger struct {
	log zerolog.Logger
}

// NewZeroLogger writes to w, human readable when pretty is set
func NewZeroLogger(w io.Writer, debug, pretty bool) *ZeroLogger {
	if w == nil {
		w = os.Stderr
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &ZeroLogger{
		log: zerolog.New(w).Level(level).With().Timestamp().Str("app", "portal").Logger(),
	}
}

// FromZerolog wraps an already configured logger
func FromZerolog(l zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{log: l}
}

// Named returns a child logger tagged with component
func (z *ZeroLogger) Named(component string) *ZeroLogger {
	return &ZeroLogger{log: z.log.With().Str("component", component).Logger()}
}

func (z *ZeroLogger) Zerolog() zerolog.Logger {
	return z.log
}

func (z *ZeroLogger) Debug(format string, args ...any) {
	z.emit(z.log.Debug(), format, args)
}

func (z *ZeroLogger) Info(format string, args ...any) {
	z.emit(z.log.Info(), format, args)
}

func (z *ZeroLogger) Error(format string, args ...any) {
	z.emit(z.log.Error(), format, args)
}

func (z *ZeroLogger) emit(e *zerolog.Event, format string, args []any) {
	if e == nil {
		return
	}

	if strings.Contains(format, "%") {
		e.Msgf(format, args...)
		return
	}

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			e = e.Interface("extra", args[i])
			break
		}

		key := fmt.Sprint(args[i])
		switch v := args[i+1].(type) {
		case error:
			if key == "error" || key == "err" {
				e = e.Err(v)
			} else {
				e = e.AnErr(key, v)
			}
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case bool:
			e = e.Bool(key, v)
		case time.Duration:
			e = e.Dur(key, v)
		default:
			e = e.Interface(key, v)
		}
	}

	e.Msg(format)
}

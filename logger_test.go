package portal

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZeroLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewZeroLogger(&buf, true, false)

	log.Info("auth state changed", "from", StateAnonymous, "to", "authenticated", "attempt", 2, "ok", true)
	log.Error("request failed", "error", errors.New("boom"), "latency", time.Second)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "auth state changed", lines[0]["message"])
	assert.Equal(t, "anonymous", lines[0]["from"])
	assert.Equal(t, "authenticated", lines[0]["to"])
	assert.Equal(t, float64(2), lines[0]["attempt"])
	assert.Equal(t, true, lines[0]["ok"])
	assert.Equal(t, "portal", lines[0]["app"])

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestZeroLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	log := NewZeroLogger(&buf, true, false)

	log.Debug("loaded %d records for %s", 3, "grades")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "loaded 3 records for grades", lines[0]["message"])
}

func TestZeroLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := NewZeroLogger(&buf, false, false)

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestZeroLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	log := NewZeroLogger(&buf, false, false).Named("guard")

	log.Info("denied", "path", "/grades")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "guard", lines[0]["component"])
	assert.Equal(t, "/grades", lines[0]["path"])
}

func TestFormatLog(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		args     []any
		expected string
	}{
		{name: "plain", format: "hello", expected: "hello"},
		{name: "printf", format: "user %s has %d grades", args: []any{"ada", 3}, expected: "user ada has 3 grades"},
		{name: "key values", format: "login failed", args: []any{"username", "ada", "status", 401}, expected: "login failed username=ada status=401"},
		{name: "odd args", format: "odd", args: []any{"key", "value", "dangling"}, expected: "odd key=value dangling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatLog(tt.format, tt.args...))
		})
	}
}

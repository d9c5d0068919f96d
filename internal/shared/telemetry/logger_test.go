package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Error("chat.failed", map[string]any{
		"stage":      "synthesis",
		"error":      errors.New("boom"),
		"request_id": "req-1",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &payload))
	assert.Equal(t, "error", payload["level"])
	assert.Equal(t, "chat.failed", payload["message"])
	assert.Equal(t, "synthesis", payload["stage"])
	assert.Equal(t, "boom", payload["error"])
	assert.Equal(t, "req-1", payload["request_id"])
	assert.Contains(t, payload, "ts")
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("fatal"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

// Not parallel: InitWriter replaces the process default logger.
func TestFromCarriesBindingsAndEvent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	InitWriter(&buf, "info")

	ctx := With(context.Background(), "claimReference", "REBC-A89F-7776")
	ctx = With(ctx, "eventType", "status")
	From(ctx).Info("sent", Event("claim-email-requested", "outcome", "true"))
	From(ctx).Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sent", line["msg"])
	assert.Equal(t, "REBC-A89F-7776", line["claimReference"])
	assert.Equal(t, "status", line["eventType"])
	assert.Equal(t, map[string]any{"type": "claim-email-requested", "outcome": "true"}, line["event"])
	assert.NotContains(t, line, "trace_id")
}

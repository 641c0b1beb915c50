package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/jwebster45206/five-acts/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTo_ProductionIsJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	l := SetupTo(&buf, &config.Config{Environment: "production", LogLevel: slog.LevelInfo})
	WithSession(l, "abc").Info("Act started", "act", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Act started", line["msg"])
	assert.Equal(t, "abc", line["session_id"])
	assert.Equal(t, float64(2), line["act"])
}

func TestSetupTo_DevelopmentIsTextAndLeveled(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	l := SetupTo(&buf, &config.Config{Environment: "development", LogLevel: slog.LevelWarn})
	l.Info("hidden")
	l.Warn("Moment not found, skipping", "moment_id", "ghost")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "moment_id=ghost"))
}

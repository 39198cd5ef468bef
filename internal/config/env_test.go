package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("TIERVIEW_LOG_LEVEL", "")
	t.Setenv("TIERVIEW_FORMAT", "")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, e.Level())
}

func TestLoadEnv_Values(t *testing.T) {
	t.Setenv("TIERVIEW_CONFIG", "/etc/tierview/standup.cue")
	t.Setenv("TIERVIEW_DB", "/var/lib/tierview.db")
	t.Setenv("TIERVIEW_LOG_LEVEL", "DEBUG")
	t.Setenv("TIERVIEW_JWT", "a.b.c")
	t.Setenv("TIERVIEW_URL", "http://localhost:8080/standup")
	t.Setenv("TIERVIEW_FORMAT", "json")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/etc/tierview/standup.cue", e.ConfigPath)
	assert.Equal(t, "/var/lib/tierview.db", e.DBPath)
	assert.Equal(t, "a.b.c", e.Token)
	assert.Equal(t, "http://localhost:8080/standup", e.MeetingURL)
	assert.Equal(t, "json", e.Format)
	assert.Equal(t, slog.LevelDebug, e.Level())
}

func TestEnv_Level(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, Env{LogLevel: "warning"}.Level())
	assert.Equal(t, slog.LevelError, Env{LogLevel: " error "}.Level())
	assert.Equal(t, slog.LevelInfo, Env{LogLevel: "loud"}.Level())
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesFile = `
conference: {
	room:              "standup"
	local_address:     "standup@conference.meet.example.com/me"
	focus_user_jid:    "focus@auth.meet.example.com"
	gateway_pattern:   "jigasi@auth.meet.example.com"
	no_tier_signature: "/mobile-"
	view: {
		layout: "layout-4"
		width:  1000
		height: 800
	}
	delays: controls_ms: 0
}
`

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conference.cue")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writeRules(t, rulesFile)
	out, _, err := execute(t, "", "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+path+` valid (room standup, layout "layout-4")`+"\n", out)
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "validate", writeRules(t, rulesFile))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "standup", resp.Data.Conference.Room)
	assert.True(t, resp.Data.Conference.View.TileView, "defaults are filled in")
	assert.Equal(t, 10, resp.Data.Conference.Delays.TileViewMS)
}

func TestValidateCommand_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad layout", `conference: {room: "r", view: layout: "layout-99"}`, "rules do not satisfy the schema"},
		{"missing room", `conference: {view: layout: "layout-1"}`, "rules do not satisfy the schema"},
		{"bad tier", `conference: {room: "r", local_tier: "tier-7"}`, "rules do not satisfy the schema"},
		{"bad signature", `conference: {room: "r", no_tier_signature: "("}`, "invalid address rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", "validate", writeRules(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error [E_INVALID]: "+tt.want)
		})
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	out, _, err := execute(t, "", "validate", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestValidateCommand_NoPath(t *testing.T) {
	out, _, err := execute(t, "", "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "TIERVIEW_CONFIG is unset")
}

func TestValidateCommand_PathFromEnv(t *testing.T) {
	path := writeRules(t, rulesFile)
	t.Setenv("TIERVIEW_CONFIG", path)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), path+" valid")
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/identity"
	"github.com/roach88/tierview/internal/sink"
)

const streamInput = `# local join, then one remote guest
{"type":"presence","from":"standup@conference.meet.example.com/me","node":{"tagName":"presence","children":[{"tagName":"userType","value":"tier-1"}]}}
{"type":"presence","id":"bob","xml":"<presence from='standup@conference.meet.example.com/bob'><userType>tier-2</userType></presence>"}
this is not json
{"type":"resize","width":1000,"height":800}
`

func decodeFrames(t *testing.T, out string) []sink.Frame {
	t.Helper()
	var frames []sink.Frame
	dec := json.NewDecoder(strings.NewReader(out))
	for {
		var f sink.Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
}

func lastFrame(frames []sink.Frame, kind sink.FrameKind, participantID string) (sink.Frame, bool) {
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		if f.Kind == kind && f.ParticipantID == participantID {
			return f, true
		}
	}
	return sink.Frame{}, false
}

func TestStreamCommand_JSONFrames(t *testing.T) {
	out, stderr, err := execute(t, streamInput, "stream", "--config", writeRules(t, rulesFile))
	require.NoError(t, err)

	frames := decodeFrames(t, out)
	require.NotEmpty(t, frames)

	me, ok := lastFrame(frames, sink.KindPlacement, "me")
	require.True(t, ok, "local placement emitted")
	assert.True(t, me.Local)
	assert.Equal(t, "tier-1", me.Tier)
	assert.Equal(t, "480px", me.Placement.Width)

	bob, ok := lastFrame(frames, sink.KindPlacement, "bob")
	require.True(t, ok, "remote placement emitted")
	assert.Equal(t, "tier-2", bob.Tier)
	assert.Equal(t, "485px", bob.Placement.Width)
	assert.NotEmpty(t, bob.PassID)

	ctrl, ok := lastFrame(frames, sink.KindControls, "")
	require.True(t, ok, "controls emitted after the local tier settles")
	assert.Equal(t, "tier-1", ctrl.Tier)
	assert.True(t, ctrl.Controls.Has("microphone"))

	_, ok = lastFrame(frames, sink.KindContainer, "")
	assert.True(t, ok)

	assert.Contains(t, stderr, "rejected input")
	assert.Contains(t, stderr, "line=4")
	assert.Contains(t, stderr, "events=3")
	assert.Contains(t, stderr, "rejected=1")
}

func TestStreamCommand_CBOR(t *testing.T) {
	out, _, err := execute(t, streamInput, "stream", "--config", writeRules(t, rulesFile), "--sink", "cbor")
	require.NoError(t, err)

	dec := cbor.NewDecoder(bytes.NewReader([]byte(out)))
	kinds := map[sink.FrameKind]int{}
	for {
		var f sink.Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		kinds[f.Kind]++
	}
	assert.GreaterOrEqual(t, kinds[sink.KindPlacement], 2)
	assert.GreaterOrEqual(t, kinds[sink.KindControls], 1)
}

func TestStreamCommand_SessionRestoresTier(t *testing.T) {
	rules := writeRules(t, rulesFile)
	db := filepath.Join(t.TempDir(), "tierview.db")

	first := `{"type":"presence","id":"bob","xml":"<presence from='standup@conference.meet.example.com/bob'><userType>tier-1</userType></presence>"}` + "\n"
	_, _, err := execute(t, first, "stream", "--config", rules, "--db", db, "--session", "standup-1")
	require.NoError(t, err)

	// Rejoining without a tier restores the one persisted in the session.
	rejoin := `{"type":"presence","id":"bob","xml":"<presence from='standup@conference.meet.example.com/bob'><nick>Bob</nick></presence>"}` + "\n"
	out, _, err := execute(t, rejoin, "stream", "--config", rules, "--db", db, "--session", "standup-1")
	require.NoError(t, err)

	bob, ok := lastFrame(decodeFrames(t, out), sink.KindPlacement, "bob")
	require.True(t, ok)
	assert.Equal(t, "tier-1", bob.Tier)

	// A different session starts from the default tier.
	out, _, err = execute(t, rejoin, "stream", "--config", rules, "--db", db, "--session", "standup-2")
	require.NoError(t, err)
	bob, ok = lastFrame(decodeFrames(t, out), sink.KindPlacement, "bob")
	require.True(t, ok)
	assert.Equal(t, "tier-3", bob.Tier)
}

func TestStreamCommand_Errors(t *testing.T) {
	t.Run("no config", func(t *testing.T) {
		_, _, err := execute(t, "", "stream")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "no rules file")
	})

	t.Run("missing config", func(t *testing.T) {
		_, _, err := execute(t, "", "stream", "--config", filepath.Join(t.TempDir(), "nope.cue"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("invalid config", func(t *testing.T) {
		_, _, err := execute(t, "", "stream", "--config", writeRules(t, `conference: {}`))
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})

	t.Run("unknown sink", func(t *testing.T) {
		_, _, err := execute(t, "", "stream", "--config", writeRules(t, rulesFile), "--sink", "xml")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "invalid --sink")
	})
}

func TestStreamCommand_LocalTierSources(t *testing.T) {
	claims := identity.Claims{Room: "standup"}
	claims.Context.User = identity.User{ID: "u-1", Role: "tier-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	t.Run("token", func(t *testing.T) {
		_, stderr, err := execute(t, "", "stream", "--config", writeRules(t, rulesFile), "--jwt", token)
		require.NoError(t, err)
		assert.Contains(t, stderr, "tier=tier-1 source=token")
	})

	t.Run("config wins over token", func(t *testing.T) {
		rules := strings.Replace(rulesFile, `room:              "standup"`, `room: "standup", local_tier: "tier-2"`, 1)
		_, stderr, err := execute(t, "", "stream", "--config", writeRules(t, rules), "--jwt", token)
		require.NoError(t, err)
		assert.Contains(t, stderr, "tier=tier-2 source=config")
	})

	t.Run("bad token falls through", func(t *testing.T) {
		_, stderr, err := execute(t, "", "stream", "--config", writeRules(t, rulesFile), "--jwt", "garbage")
		require.NoError(t, err)
		assert.Contains(t, stderr, "ignoring meeting token")
		assert.Contains(t, stderr, "tier=tier-3 source=default")
	})

	t.Run("url", func(t *testing.T) {
		_, stderr, err := execute(t, "", "stream",
			"--config", writeRules(t, rulesFile),
			"--url", "http://localhost:8080/standup?role=tier-0")
		require.NoError(t, err)
		assert.Contains(t, stderr, "tier=tier-0 source=url")
	})
}

func TestReadEvents_SkipsOverlongLines(t *testing.T) {
	input := `{"type":"layout","layout":"layout-9"}` + "\n" +
		`{"type":"leave","id":"` + strings.Repeat("x", 200) + `"}` + "\n" +
		"\n" +
		`{"type":"tile_view","on":false}` // no trailing newline

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	var got []coordinator.EventType
	enqueue := func(ev coordinator.Event) error {
		got = append(got, ev.Type)
		return nil
	}

	stats, err := readEvents(strings.NewReader(input), 64, enqueue, logger)
	require.NoError(t, err)
	assert.Equal(t, StreamStats{Events: 2, Rejected: 1}, stats)
	assert.Equal(t, []coordinator.EventType{coordinator.EventTypeLayout, coordinator.EventTypeTileView}, got)
	assert.Contains(t, logs.String(), "line=2")
	assert.Contains(t, logs.String(), "line exceeds 64 bytes")
}

func TestReadEvents_EnqueueRefused(t *testing.T) {
	input := `{"type":"layout","layout":"layout-9"}` + "\n" + `{"type":"tile_view","on":true}` + "\n"
	refused := errors.New("coordinator stopped")

	stats, err := readEvents(strings.NewReader(input), maxInputLine, func(coordinator.Event) error {
		return refused
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorIs(t, err, refused)
	assert.Contains(t, err.Error(), "line 1")
	assert.Zero(t, stats.Events)
}

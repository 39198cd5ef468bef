package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tierview/internal/roster"
	"github.com/roach88/tierview/internal/sink"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "01-layout4-basic.yaml"))
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(s.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, first.Frames, second.Frames)
}

func TestRun_PassIDs(t *testing.T) {
	s := mustParse(t, `
name: pass-ids
description: frames of one flush share a pass id
view: {layout: layout-4, width: 1000, height: 800}
steps:
  - presence: {id: me, user_type: tier-1}
  - presence: {id: bob, user_type: tier-2}
assertions:
  - type: roster_size
    count: 1
`)
	result, err := Run(s)
	require.NoError(t, err)

	var passes []string
	for _, f := range result.Frames {
		if f.Kind != sink.KindControls {
			passes = append(passes, f.PassID)
		}
	}
	assert.Equal(t, []string{"pass-1", "pass-1", "pass-2"}, passes)

	s.PassID = "fixed"
	result, err = Run(s)
	require.NoError(t, err)
	for _, f := range result.Frames {
		if f.Kind == sink.KindPlacement {
			assert.Equal(t, "fixed", f.PassID)
		}
	}
}

func TestRun_FailedAssertionsReported(t *testing.T) {
	s := mustParse(t, `
name: failing
description: assertions that do not hold fail the result
view: {layout: layout-4, width: 1000, height: 800}
steps:
  - presence: {id: bob, user_type: tier-2}
assertions:
  - type: tier
    id: bob
    expect: tier-1
  - type: tier
    id: ghost
    expect: tier-1
  - type: roster_size
    count: 5
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 3)
}

func TestRun_RejectedStepReported(t *testing.T) {
	s := mustParse(t, `
name: rejected
description: a step the coordinator rejects fails the result without aborting
steps:
  - resize: {width: 10, height: 10}
  - presence: {id: bob, user_type: tier-2}
assertions:
  - type: roster_size
    count: 1
`)
	s.Steps[0].Resize.ClientWidth = -1

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0]")
	assert.Equal(t, 1, result.RosterSize, "later steps still run")
}

func TestRun_ConferenceOverrides(t *testing.T) {
	s := mustParse(t, `
name: overrides
description: local address and local tier come from the scenario
conference:
  local_address: standup@conference.meet.example.com/host
  local_tier: tier-0
steps:
  - presence: {id: host}
assertions:
  - type: role
    id: host
    expect: moderator
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	m, ok := result.Member("host")
	require.True(t, ok)
	assert.True(t, m.Local)
	assert.Equal(t, roster.Tier0, m.Tier)
}

func TestRun_WithDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.db")
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "03-tile-view-off.yaml"))
	require.NoError(t, err)

	result, err := Run(s, WithDatabase(path))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.FileExists(t, path)
}

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

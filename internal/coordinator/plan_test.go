package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/roster"
)

func member(id string, tier roster.Tier) roster.Member {
	return roster.Member{ID: id, Address: room + "/" + id, Tier: tier}
}

func TestBuildPlan_OrdinalsPerTier(t *testing.T) {
	local := member("me", roster.Tier1)
	local.Local = true
	snap := roster.Snapshot{
		Members: []roster.Member{
			local,
			member("a", roster.Tier2),
			member("b", roster.Tier1),
			member("c", roster.Tier2),
		},
		Tier1Count: 2,
		Tier2Count: 2,
	}
	rules := geometry.Compute(geometry.LayoutOf(9), 2, 2, geometry.Viewport{ClientWidth: 1920, ClientHeight: 1080})

	plan := BuildPlan(rules, snap)
	require.Len(t, plan.Assignments, 4)

	want := map[string]int{"me": 1, "a": 1, "b": 2, "c": 2}
	for _, a := range plan.Assignments {
		assert.Equal(t, want[a.ParticipantID], a.Ordinal, a.ParticipantID)
	}

	me, _ := plan.Get("me")
	b, _ := plan.Get("b")
	assert.NotEmpty(t, me.Placement.Left, "first corner is left-anchored")
	assert.NotEmpty(t, b.Placement.Right, "second corner is right-anchored")
	assert.True(t, me.Local)
}

func TestBuildPlan_SkipsFocusAndClearsUntiled(t *testing.T) {
	focus := member("focus", roster.Tier2)
	focus.IsFocus = true
	snap := roster.Snapshot{
		Members: []roster.Member{
			focus,
			member("mod", roster.Tier0),
			member("aud", roster.Tier3),
			member("a", roster.Tier2),
		},
		Tier2Count: 1,
	}
	rules := geometry.Compute(geometry.LayoutOf(1), 0, 1, defaultViewport)

	plan := BuildPlan(rules, snap)

	_, ok := plan.Get("focus")
	assert.False(t, ok)
	for _, id := range []string{"mod", "aud"} {
		a, ok := plan.Get(id)
		require.True(t, ok)
		assert.Zero(t, a.Ordinal)
		assert.True(t, a.Placement.IsEmpty())
	}
	a, _ := plan.Get("a")
	assert.Equal(t, 1, a.Ordinal)
	assert.False(t, a.Placement.IsEmpty())
}

func TestBuildPlan_DisabledRules(t *testing.T) {
	snap := roster.Snapshot{Members: []roster.Member{member("a", roster.Tier1)}, Tier1Count: 1}

	plan := BuildPlan(geometry.Rules{}, snap)
	a, ok := plan.Get("a")
	require.True(t, ok)
	assert.True(t, a.Placement.IsEmpty())
	assert.True(t, plan.Container().IsEmpty())
}

func TestPlan_FingerprintDeterministic(t *testing.T) {
	snap := roster.Snapshot{
		Members:    []roster.Member{member("a", roster.Tier1), member("b", roster.Tier2)},
		Tier1Count: 1,
		Tier2Count: 1,
	}
	rules := geometry.Compute(geometry.LayoutOf(2), 1, 1, defaultViewport)

	fp1, err := BuildPlan(rules, snap).Fingerprint()
	require.NoError(t, err)
	fp2, err := BuildPlan(rules, snap).Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	other := geometry.Compute(geometry.LayoutOf(3), 1, 1, defaultViewport)
	fp3, err := BuildPlan(other, snap).Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

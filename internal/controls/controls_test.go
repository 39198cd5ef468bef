package controls

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/tierview/internal/roster"
)

func TestFor(t *testing.T) {
	tests := []struct {
		tier       roster.Tier
		wantTier   roster.Tier
		toolbarLen int
		has        []string
		hasNot     []string
		settings   []string
	}{
		{
			tier:       roster.Tier0,
			wantTier:   roster.Tier0,
			toolbarLen: 18,
			has:        []string{"recording", "mute-everyone", "layout", "invite"},
			hasNot:     []string{"microphone", "camera"},
			settings:   []string{"devices", "language", "moderator", "profile", "calendar"},
		},
		{
			tier:       roster.Tier1,
			wantTier:   roster.Tier1,
			toolbarLen: 8,
			has:        []string{"microphone", "camera", "desktop"},
			hasNot:     []string{"recording", "layout"},
			settings:   []string{"devices"},
		},
		{
			tier:       roster.Tier2,
			wantTier:   roster.Tier2,
			toolbarLen: 8,
			has:        []string{"microphone", "camera"},
			settings:   []string{"devices"},
		},
		{
			tier:       roster.Tier3,
			wantTier:   roster.Tier3,
			toolbarLen: 5,
			has:        []string{"chat", "tileview"},
			hasNot:     []string{"microphone", "camera", "desktop"},
			settings:   []string{"devices"},
		},
		{
			tier:       "bogus",
			wantTier:   roster.Tier3,
			toolbarLen: 5,
			settings:   []string{"devices"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			s := For(tt.tier)
			assert.Equal(t, tt.wantTier, s.Tier)
			assert.Len(t, s.Toolbar, tt.toolbarLen)
			assert.Equal(t, tt.settings, s.Settings)
			for _, b := range tt.has {
				assert.True(t, s.Has(b), "missing %s", b)
			}
			for _, b := range tt.hasNot {
				assert.False(t, s.Has(b), "unexpected %s", b)
			}
		})
	}
}

func TestFor_ReturnsCopies(t *testing.T) {
	a := For(roster.Tier0)
	a.Toolbar[0] = "mutated"
	assert.Equal(t, "fullscreen", For(roster.Tier0).Toolbar[0])
}

func TestSurface_Canonical(t *testing.T) {
	c := For(roster.Tier3).Canonical()
	assert.Equal(t, "tier-3", c["tier"])
	assert.Equal(t, []string{"fullscreen", "chat", "settings", "tileview", "videoquality"}, c["toolbar"])
	assert.Equal(t, []string{"devices"}, c["settings"])
}

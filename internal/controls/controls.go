// Package controls maps a participant tier to the toolbar and settings
// sections the local client may show.
package controls

import (
	"slices"

	"github.com/roach88/tierview/internal/roster"
)

// Surface is the set of controls enabled for a tier.
type Surface struct {
	Tier     roster.Tier `json:"tier"`
	Toolbar  []string    `json:"toolbar"`
	Settings []string    `json:"settings"`
}

var moderatorToolbar = []string{
	"fullscreen",
	"profile",
	"recording",
	"desktop",
	"chat",
	"security",
	"background",
	"layout",
	"videoquality",
	"livestreaming",
	"sharedvideo",
	"settings",
	"mute-everyone",
	"shortcuts",
	"stats",
	"embedmeeting",
	"tileview",
	"invite",
}

var moderatorSettings = []string{"devices", "language", "moderator", "profile", "calendar"}

var speakerToolbar = []string{
	"fullscreen",
	"microphone",
	"camera",
	"chat",
	"desktop",
	"settings",
	"tileview",
	"videoquality",
}

var audienceToolbar = []string{"fullscreen", "chat", "settings", "tileview", "videoquality"}

var basicSettings = []string{"devices"}

// For returns the controls for a tier. Invalid tiers get the audience set.
func For(t roster.Tier) Surface {
	switch t {
	case roster.Tier0:
		return surface(t, moderatorToolbar, moderatorSettings)
	case roster.Tier1, roster.Tier2:
		return surface(t, speakerToolbar, basicSettings)
	case roster.Tier3:
		return surface(t, audienceToolbar, basicSettings)
	}
	return surface(roster.Tier3, audienceToolbar, basicSettings)
}

// Has reports whether the toolbar includes button.
func (s Surface) Has(button string) bool {
	return slices.Contains(s.Toolbar, button)
}

// Canonical returns s as a map for canonical encoding.
func (s Surface) Canonical() map[string]any {
	return map[string]any{
		"tier":     string(s.Tier),
		"toolbar":  slices.Clone(s.Toolbar),
		"settings": slices.Clone(s.Settings),
	}
}

func surface(t roster.Tier, toolbar, settings []string) Surface {
	return Surface{
		Tier:     t,
		Toolbar:  slices.Clone(toolbar),
		Settings: slices.Clone(settings),
	}
}

// Package config loads conference rules from CUE files and process
// settings from the environment.
//
// A rules file is unified with an embedded schema that constrains tier and
// layout names and fills in defaults:
//
//	conference: {
//		room:          "standup"
//		local_address: "standup@conference.meet.example.com/abcd1234"
//		view: layout:  "layout-9"
//	}
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/roster"
)

//go:embed schema.cue
var schemaCUE []byte

// Conference is a decoded rules file.
type Conference struct {
	Room            string `json:"room"`
	LocalAddress    string `json:"local_address"`
	FocusUserJID    string `json:"focus_user_jid"`
	HiddenDomain    string `json:"hidden_domain"`
	GatewayPattern  string `json:"gateway_pattern"`
	NoTierSignature string `json:"no_tier_signature"`
	LocalTier       string `json:"local_tier,omitempty"`
	View            View   `json:"view"`
	Delays          Delays `json:"delays"`
}

// View is the initial layout state.
type View struct {
	Layout   string `json:"layout"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	TileView bool   `json:"tile_view"`
}

// Delays are the coalescing windows in milliseconds.
type Delays struct {
	LayoutMS   int `json:"layout_ms"`
	TileViewMS int `json:"tile_view_ms"`
	ControlsMS int `json:"controls_ms"`
}

// Load reads and validates a rules file.
func Load(path string) (Conference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Conference{}, &Error{Code: ErrCodeNotFound, Path: path, Message: "read config", Err: err}
	}
	c, err := Parse(data, path)
	if err != nil {
		return Conference{}, err
	}
	return c, nil
}

// Parse validates CUE source against the schema and decodes it.
// filename is only used in error positions.
func Parse(data []byte, filename string) (Conference, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Conference{}, fmt.Errorf("compile embedded schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Conference{}, invalid(filename, "compile", err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Conference{}, invalid(filename, "validate", err)
	}

	var c Conference
	if err := unified.LookupPath(cue.ParsePath("conference")).Decode(&c); err != nil {
		return Conference{}, invalid(filename, "decode", err)
	}
	return c, nil
}

// Default returns the schema defaults for a room.
func Default(room string) Conference {
	c, err := Parse(fmt.Appendf(nil, "conference: room: %q\n", room), "default.cue")
	if err != nil {
		panic(fmt.Sprintf("config: schema defaults: %v", err))
	}
	return c
}

func invalid(path, stage string, err error) *Error {
	return &Error{
		Code:    ErrCodeInvalid,
		Path:    path,
		Message: stage + " failed",
		Err:     fmt.Errorf("%s", cueerrors.Details(err, nil)),
	}
}

// RosterRules returns the address rules for roster.NewStore.
func (c Conference) RosterRules() roster.Rules {
	return roster.Rules{
		LocalAddress:    c.LocalAddress,
		FocusUserJID:    c.FocusUserJID,
		HiddenDomain:    c.HiddenDomain,
		GatewayPattern:  c.GatewayPattern,
		NoTierSignature: c.NoTierSignature,
	}
}

// CoordinatorDelays converts the configured windows.
func (c Conference) CoordinatorDelays() coordinator.Delays {
	return coordinator.Delays{
		Layout:   time.Duration(c.Delays.LayoutMS) * time.Millisecond,
		TileView: time.Duration(c.Delays.TileViewMS) * time.Millisecond,
		Controls: time.Duration(c.Delays.ControlsMS) * time.Millisecond,
	}
}

// ViewOption returns the initial layout state as a coordinator option.
func (c Conference) ViewOption() coordinator.Option {
	return coordinator.WithView(
		geometry.ParseLayout(c.View.Layout),
		geometry.Viewport{ClientWidth: c.View.Width, ClientHeight: c.View.Height},
		c.View.TileView,
	)
}

// ConfiguredLocalTier returns local_tier when the file sets one.
func (c Conference) ConfiguredLocalTier() (roster.Tier, bool) {
	return roster.ParseTier(c.LocalTier)
}

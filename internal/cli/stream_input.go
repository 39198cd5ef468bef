package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/presence"
	"github.com/roach88/tierview/internal/roster"
)

// Stream input types, one JSON object per line.
const (
	InputPresence = "presence"
	InputLeave    = "leave"
	InputLayout   = "layout"
	InputResize   = "resize"
	InputTileView = "tile_view"
	InputMakeTier = "make_tier"
)

// StreamInput is one line of stream input:
//
//	{"type":"presence","id":"abcd","xml":"<presence from='room@conf/abcd'>...</presence>"}
//	{"type":"presence","from":"room@conf/abcd","node":{"tagName":"presence","children":[...]}}
//	{"type":"leave","id":"abcd"}
//	{"type":"layout","layout":"layout-4"}
//	{"type":"resize","width":1280,"height":720}
//	{"type":"tile_view","on":false}
//	{"type":"make_tier","id":"abcd","tier":"tier-1"}
type StreamInput struct {
	Type string `json:"type"`

	ID   string         `json:"id,omitempty"`
	From string         `json:"from,omitempty"`
	XML  string         `json:"xml,omitempty"`
	Node *presence.Node `json:"node,omitempty"`

	Layout string `json:"layout,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	On     *bool  `json:"on,omitempty"`
	Tier   string `json:"tier,omitempty"`
}

// ParseStreamInput decodes one input line into a coordinator event.
func ParseStreamInput(line []byte) (coordinator.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var in StreamInput
	if err := dec.Decode(&in); err != nil {
		return coordinator.Event{}, fmt.Errorf("decode input: %w", err)
	}
	return in.Event()
}

// Event converts the input into a coordinator event.
func (in StreamInput) Event() (coordinator.Event, error) {
	switch in.Type {
	case InputPresence:
		return in.presenceEvent()

	case InputLeave:
		if in.ID == "" {
			return coordinator.Event{}, errors.New("leave: id is required")
		}
		return coordinator.LeaveEvent(in.ID), nil

	case InputLayout:
		return coordinator.LayoutEvent(geometry.Layout(in.Layout)), nil

	case InputResize:
		if in.Width < 0 || in.Height < 0 {
			return coordinator.Event{}, errors.New("resize: negative viewport")
		}
		return coordinator.ResizeEvent(geometry.Viewport{ClientWidth: in.Width, ClientHeight: in.Height}), nil

	case InputTileView:
		if in.On == nil {
			return coordinator.Event{}, errors.New("tile_view: on is required")
		}
		return coordinator.TileViewEvent(*in.On), nil

	case InputMakeTier:
		t, ok := roster.ParseTier(in.Tier)
		if !ok {
			return coordinator.Event{}, fmt.Errorf("make_tier: invalid tier %q", in.Tier)
		}
		if in.ID == "" {
			return coordinator.Event{}, errors.New("make_tier: id is required")
		}
		return coordinator.MakeTierEvent(in.ID, t), nil

	case "":
		return coordinator.Event{}, errors.New("type is required")
	}
	return coordinator.Event{}, fmt.Errorf("unknown input type %q", in.Type)
}

func (in StreamInput) presenceEvent() (coordinator.Event, error) {
	var tree presence.Node
	switch {
	case in.XML != "" && in.Node != nil:
		return coordinator.Event{}, errors.New("presence: xml and node are exclusive")
	case in.XML != "":
		n, err := presence.ParseXML([]byte(in.XML))
		if err != nil {
			return coordinator.Event{}, fmt.Errorf("presence: %w", err)
		}
		tree = n
	case in.Node != nil:
		tree = *in.Node
	default:
		return coordinator.Event{}, errors.New("presence: xml or node is required")
	}

	from := in.From
	if from == "" {
		from = tree.Attr("from")
	}
	if from == "" && in.ID == "" {
		return coordinator.Event{}, errors.New("presence: id or from is required")
	}
	return coordinator.PresenceEvent(in.ID, from, tree), nil
}

package coordinator

import (
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/presence"
	"github.com/roach88/tierview/internal/roster"
)

// EventType distinguishes coordinator inputs.
type EventType int

const (
	// EventTypePresence carries one presence update.
	EventTypePresence EventType = iota + 1
	// EventTypeLayout selects a layout template.
	EventTypeLayout
	// EventTypeResize reports a new viewport.
	EventTypeResize
	// EventTypeTileView turns tile view on or off.
	EventTypeTileView
	// EventTypeMakeTier is a moderator command re-tiering one participant.
	EventTypeMakeTier
	// EventTypeLeave removes a participant (kicked or left).
	EventTypeLeave

	// Timer expiries, enqueued by the coordinator itself.
	eventTypeFlushLayout
	eventTypeFlushControls
)

var eventTypeNames = map[EventType]string{
	EventTypePresence:      "presence",
	EventTypeLayout:        "layout",
	EventTypeResize:        "resize",
	EventTypeTileView:      "tile_view",
	EventTypeMakeTier:      "make_tier",
	EventTypeLeave:         "leave",
	eventTypeFlushLayout:   "flush_layout",
	eventTypeFlushControls: "flush_controls",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is one coordinator input. Only the fields of its Type are read.
type Event struct {
	Type EventType

	// Presence and leave.
	ParticipantID string
	Source        string
	Tree          presence.Node
	// Fields, when set, is used instead of decoding Tree.
	Fields *presence.Fields

	Layout   geometry.Layout
	Viewport geometry.Viewport
	TileView bool
	Tier     roster.Tier
}

// PresenceEvent wraps a presence tree from source.
func PresenceEvent(participantID, source string, tree presence.Node) Event {
	return Event{Type: EventTypePresence, ParticipantID: participantID, Source: source, Tree: tree}
}

// DecodedPresenceEvent wraps already decoded presence fields.
func DecodedPresenceEvent(participantID, source string, f presence.Fields) Event {
	return Event{Type: EventTypePresence, ParticipantID: participantID, Source: source, Fields: &f}
}

// LayoutEvent selects l. None clears the selection.
func LayoutEvent(l geometry.Layout) Event {
	return Event{Type: EventTypeLayout, Layout: l}
}

// ResizeEvent reports a new viewport.
func ResizeEvent(v geometry.Viewport) Event {
	return Event{Type: EventTypeResize, Viewport: v}
}

// TileViewEvent turns tile view on or off.
func TileViewEvent(on bool) Event {
	return Event{Type: EventTypeTileView, TileView: on}
}

// MakeTierEvent asks participantID to take tier.
func MakeTierEvent(participantID string, tier roster.Tier) Event {
	return Event{Type: EventTypeMakeTier, ParticipantID: participantID, Tier: tier}
}

// LeaveEvent removes participantID.
func LeaveEvent(participantID string) Event {
	return Event{Type: EventTypeLeave, ParticipantID: participantID}
}

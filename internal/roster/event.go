package roster

import "slices"

// EventKind names a semantic roster change.
type EventKind string

const (
	EventJoined             EventKind = "JOINED"
	EventLeft               EventKind = "LEFT"
	EventRoleChanged        EventKind = "ROLE_CHANGED"
	EventUserTypeChanged    EventKind = "USERTYPE_CHANGED"
	EventBotTypeChanged     EventKind = "BOT_TYPE_CHANGED"
	EventStatusChanged      EventKind = "STATUS_CHANGED"
	EventVersionChanged     EventKind = "VERSION_CHANGED"
	EventDisplayNameChanged EventKind = "DISPLAY_NAME_CHANGED"
	// EventConferenceJoined fires once, on the local occupant's first presence.
	EventConferenceJoined EventKind = "CONFERENCE_JOINED"
)

// Event is one change notification.
//
// Payload carries the new value for the change kind (tier, role, status,
// version, bot type or nick). Member is the record after the change; for
// LEFT it is the record that was removed.
type Event struct {
	Kind          EventKind `json:"kind"`
	ParticipantID string    `json:"participantId"`
	Local         bool      `json:"local,omitempty"`
	Payload       string    `json:"payload,omitempty"`
	Member        Member    `json:"member"`
}

// ChangeSet is everything one Apply call changed, in emission order.
type ChangeSet struct {
	Events []Event
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Events) == 0
}

// Has reports whether an event of the given kind is present.
func (c ChangeSet) Has(kind EventKind) bool {
	return slices.ContainsFunc(c.Events, func(e Event) bool { return e.Kind == kind })
}

// Kinds lists the event kinds in order.
func (c ChangeSet) Kinds() []EventKind {
	kinds := make([]EventKind, len(c.Events))
	for i, e := range c.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

// AffectsLayout reports whether tier composition or membership changed.
func (c ChangeSet) AffectsLayout() bool {
	return c.Has(EventJoined) || c.Has(EventLeft) || c.Has(EventUserTypeChanged)
}

func (c *ChangeSet) add(kind EventKind, m Member, payload string) {
	c.Events = append(c.Events, Event{
		Kind:          kind,
		ParticipantID: m.ID,
		Local:         m.Local,
		Payload:       payload,
		Member:        m,
	})
}

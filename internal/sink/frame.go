package sink

import (
	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/presence"
)

// FrameKind discriminates stream frames.
type FrameKind string

const (
	KindPlacement FrameKind = "placement"
	KindContainer FrameKind = "container"
	KindControls  FrameKind = "controls"
	KindAnnounce  FrameKind = "announce"
)

// Frame is one update on the wire. Only the fields of its Kind are set.
type Frame struct {
	Kind          FrameKind           `json:"kind"`
	PassID        string              `json:"passId,omitempty"`
	Seq           int64               `json:"seq,omitempty"`
	ParticipantID string              `json:"participantId,omitempty"`
	Tier          string              `json:"tier,omitempty"`
	Local         bool                `json:"local,omitempty"`
	Ordinal       int                 `json:"ordinal,omitempty"`
	Placement     *geometry.Placement `json:"placement,omitempty"`
	Controls      *controls.Surface   `json:"controls,omitempty"`
	Presence      *presence.Node      `json:"presence,omitempty"`
}

// PlacementFrame converts an assignment.
func PlacementFrame(a coordinator.Assignment) Frame {
	p := a.Placement
	return Frame{
		Kind:          KindPlacement,
		PassID:        a.PassID,
		Seq:           a.Seq,
		ParticipantID: a.ParticipantID,
		Tier:          string(a.Tier),
		Local:         a.Local,
		Ordinal:       a.Ordinal,
		Placement:     &p,
	}
}

// ContainerFrame converts a container update.
func ContainerFrame(c coordinator.ContainerUpdate) Frame {
	p := c.Placement
	return Frame{Kind: KindContainer, PassID: c.PassID, Seq: c.Seq, Placement: &p}
}

// ControlsFrame converts a control surface.
func ControlsFrame(s controls.Surface) Frame {
	return Frame{Kind: KindControls, Tier: string(s.Tier), Controls: &s}
}

// AnnounceFrame converts a re-announced presence element.
func AnnounceFrame(n presence.Node) Frame {
	return Frame{Kind: KindAnnounce, Presence: &n}
}

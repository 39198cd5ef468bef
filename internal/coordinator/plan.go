package coordinator

import (
	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/roster"
)

// Assignment is the placement of one member.
//
// PassID and Seq are stamped when the assignment is emitted to a sink; a
// freshly built Plan leaves them empty.
type Assignment struct {
	PassID        string             `json:"passId,omitempty"`
	Seq           int64              `json:"seq,omitempty"`
	ParticipantID string             `json:"participantId"`
	Tier          roster.Tier        `json:"tier"`
	Local         bool               `json:"local,omitempty"`
	Ordinal       int                `json:"ordinal,omitempty"`
	Placement     geometry.Placement `json:"placement"`
}

// ContainerUpdate is the remote container box of one pass.
type ContainerUpdate struct {
	PassID    string             `json:"passId,omitempty"`
	Seq       int64              `json:"seq,omitempty"`
	Placement geometry.Placement `json:"placement"`
}

// Plan is the full placement for a roster snapshot.
type Plan struct {
	Rules       geometry.Rules `json:"rules"`
	Assignments []Assignment   `json:"assignments"`
}

// BuildPlan places every non-focus member of snap, in snapshot order.
//
// Ordinals count tiled members of the same tier, so the local occupant
// (first in the snapshot) takes ordinal 1 of its tier. Members that are not
// tiled get an empty placement and no ordinal.
func BuildPlan(rules geometry.Rules, snap roster.Snapshot) Plan {
	plan := Plan{
		Rules:       rules,
		Assignments: make([]Assignment, 0, len(snap.Members)),
	}
	ordinals := map[roster.Tier]int{}
	for _, m := range snap.Members {
		if m.IsFocus {
			continue
		}
		a := Assignment{
			ParticipantID: m.ID,
			Tier:          m.Tier,
			Local:         m.Local,
		}
		if m.Tiled() {
			ordinals[m.Tier]++
			a.Ordinal = ordinals[m.Tier]
			a.Placement = geometry.Place(rules, m.Tier, a.Ordinal)
		}
		plan.Assignments = append(plan.Assignments, a)
	}
	return plan
}

// Container returns the remote container box.
func (p Plan) Container() geometry.Placement {
	return p.Rules.Container
}

// Get returns the assignment of a participant.
func (p Plan) Get(participantID string) (Assignment, bool) {
	for _, a := range p.Assignments {
		if a.ParticipantID == participantID {
			return a, true
		}
	}
	return Assignment{}, false
}

// Canonical returns the plan as a map for canonical encoding: layout,
// container and members in plan order.
func (p Plan) Canonical() map[string]any {
	members := make([]any, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		members = append(members, map[string]any{
			"id":        a.ParticipantID,
			"tier":      string(a.Tier),
			"local":     a.Local,
			"ordinal":   a.Ordinal,
			"placement": a.Placement.Canonical(),
		})
	}
	return map[string]any{
		"layout":    string(p.Rules.Layout),
		"container": p.Rules.Container.Canonical(),
		"members":   members,
	}
}

// Fingerprint returns a content hash of the plan.
func (p Plan) Fingerprint() (string, error) {
	return canon.Fingerprint(canon.DomainPlan, p.Canonical())
}

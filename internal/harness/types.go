package harness

import (
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/roster"
	"github.com/roach88/tierview/internal/sink"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step was accepted and every assertion held.
	Pass bool `json:"pass"`

	// Errors holds rejected steps and failed assertions.
	Errors []string `json:"errors,omitempty"`

	// Frames is everything the coordinator emitted, in order.
	Frames []sink.Frame `json:"frames"`

	// Plan is the placement plan after the last step.
	Plan coordinator.Plan `json:"plan"`

	// Snapshot is the roster after the last step.
	Snapshot roster.Snapshot `json:"snapshot"`

	// RosterSize counts remote members, focus included.
	RosterSize int `json:"rosterSize"`

	// SessionTiers is the persisted tier map after the last step.
	SessionTiers map[string]roster.Tier `json:"sessionTiers"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Errors:       []string{},
		Frames:       []sink.Frame{},
		SessionTiers: map[string]roster.Tier{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Member finds a participant in the final snapshot.
func (r *Result) Member(id string) (roster.Member, bool) {
	for _, m := range r.Snapshot.Members {
		if m.ID == id {
			return m, true
		}
	}
	return roster.Member{}, false
}

// CountFrames counts emitted frames of a kind; an empty kind counts all.
func (r *Result) CountFrames(kind sink.FrameKind) int {
	if kind == "" {
		return len(r.Frames)
	}
	n := 0
	for _, f := range r.Frames {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

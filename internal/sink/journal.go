package sink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/session"
)

// PlacementRecorder persists placements. Implemented by session.Session.
type PlacementRecorder interface {
	RecordPlacement(ctx context.Context, rec session.PlacementRecord) error
}

// Journal forwards to another sink and appends every placement it
// accepted to a session journal. Journal failures are logged and never
// reach the coordinator: the placement was already delivered.
type Journal struct {
	next   Sink
	rec    PlacementRecorder
	logger *slog.Logger
}

// Sink is the coordinator.Sink interface, restated so callers of this
// package need not import coordinator.
type Sink = coordinator.Sink

// NewJournal wraps next. A nil next only journals.
func NewJournal(next Sink, rec PlacementRecorder) *Journal {
	return &Journal{next: next, rec: rec, logger: slog.Default()}
}

// SetLogger sets the logger for journal failures.
func (j *Journal) SetLogger(l *slog.Logger) {
	if l != nil {
		j.logger = l
	}
}

// ApplyPlacement implements coordinator.Sink.
func (j *Journal) ApplyPlacement(ctx context.Context, a coordinator.Assignment) error {
	if j.next != nil {
		if err := j.next.ApplyPlacement(ctx, a); err != nil {
			return err
		}
	}
	err := j.rec.RecordPlacement(ctx, session.PlacementRecord{
		PassID:        a.PassID,
		Seq:           a.Seq,
		ParticipantID: a.ParticipantID,
		Tier:          a.Tier,
		Placement:     a.Placement,
	})
	if err != nil {
		j.logger.Warn("journal placement failed",
			"pass", a.PassID,
			"participant", a.ParticipantID,
			"error", err,
		)
	}
	return nil
}

// ApplyContainer implements coordinator.Sink.
func (j *Journal) ApplyContainer(ctx context.Context, c coordinator.ContainerUpdate) error {
	if j.next == nil {
		return nil
	}
	return j.next.ApplyContainer(ctx, c)
}

// ApplyControls implements coordinator.Sink.
func (j *Journal) ApplyControls(ctx context.Context, s controls.Surface) error {
	if j.next == nil {
		return nil
	}
	return j.next.ApplyControls(ctx, s)
}

// Tee fans every update out to several sinks. All sinks are called even
// when one fails; the errors are joined.
type Tee []Sink

// ApplyPlacement implements coordinator.Sink.
func (t Tee) ApplyPlacement(ctx context.Context, a coordinator.Assignment) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.ApplyPlacement(ctx, a))
	}
	return errors.Join(errs...)
}

// ApplyContainer implements coordinator.Sink.
func (t Tee) ApplyContainer(ctx context.Context, c coordinator.ContainerUpdate) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.ApplyContainer(ctx, c))
	}
	return errors.Join(errs...)
}

// ApplyControls implements coordinator.Sink.
func (t Tee) ApplyControls(ctx context.Context, s controls.Surface) error {
	var errs []error
	for _, sk := range t {
		errs = append(errs, sk.ApplyControls(ctx, s))
	}
	return errors.Join(errs...)
}

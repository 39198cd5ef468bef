package sink

import (
	"context"
	"log/slog"

	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/coordinator"
)

// Log writes every update to a structured logger at debug level.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log sink. A nil logger uses slog.Default().
func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{logger: l}
}

// ApplyPlacement implements coordinator.Sink.
func (l *Log) ApplyPlacement(ctx context.Context, a coordinator.Assignment) error {
	p := a.Placement
	l.logger.DebugContext(ctx, "placement",
		"pass", a.PassID,
		"seq", a.Seq,
		"participant", a.ParticipantID,
		"tier", a.Tier,
		"ordinal", a.Ordinal,
		"width", p.Width,
		"height", p.Height,
		"hidden", p.Hidden,
	)
	return nil
}

// ApplyContainer implements coordinator.Sink.
func (l *Log) ApplyContainer(ctx context.Context, c coordinator.ContainerUpdate) error {
	l.logger.DebugContext(ctx, "container",
		"pass", c.PassID,
		"seq", c.Seq,
		"width", c.Placement.Width,
		"height", c.Placement.Height,
		"margin_top", c.Placement.MarginTop,
		"margin_left", c.Placement.MarginLeft,
	)
	return nil
}

// ApplyControls implements coordinator.Sink.
func (l *Log) ApplyControls(ctx context.Context, s controls.Surface) error {
	l.logger.DebugContext(ctx, "controls", "tier", s.Tier, "toolbar", s.Toolbar)
	return nil
}

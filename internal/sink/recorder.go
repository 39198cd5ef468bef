package sink

import (
	"context"
	"slices"
	"sync"

	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/presence"
)

// Recorder keeps every frame in memory, in arrival order.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ApplyPlacement implements coordinator.Sink.
func (r *Recorder) ApplyPlacement(_ context.Context, a coordinator.Assignment) error {
	r.add(PlacementFrame(a))
	return nil
}

// ApplyContainer implements coordinator.Sink.
func (r *Recorder) ApplyContainer(_ context.Context, c coordinator.ContainerUpdate) error {
	r.add(ContainerFrame(c))
	return nil
}

// ApplyControls implements coordinator.Sink.
func (r *Recorder) ApplyControls(_ context.Context, s controls.Surface) error {
	r.add(ControlsFrame(s))
	return nil
}

// Announce implements coordinator.Announcer.
func (r *Recorder) Announce(_ context.Context, n presence.Node) error {
	r.add(AnnounceFrame(n))
	return nil
}

func (r *Recorder) add(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

// Frames returns a copy of everything recorded.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.frames)
}

// Count returns how many frames of kind were recorded. An empty kind
// counts everything.
func (r *Recorder) Count(kind FrameKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == "" {
		return len(r.frames)
	}
	n := 0
	for _, f := range r.frames {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent placement frame for a participant.
func (r *Recorder) Last(participantID string) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.frames) - 1; i >= 0; i-- {
		f := r.frames[i]
		if f.Kind == KindPlacement && f.ParticipantID == participantID {
			return f, true
		}
	}
	return Frame{}, false
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

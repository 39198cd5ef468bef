package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/presence"
)

// cborMode encodes with Core Deterministic Encoding (RFC 8949 4.2): sorted
// map keys, shortest integers, definite lengths.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sink: CBOR encoder initialization failed: " + err.Error())
	}
}

type encoder interface {
	Encode(v any) error
}

// Stream writes one frame per update to w. It also implements
// coordinator.Announcer.
type Stream struct {
	mu  sync.Mutex
	enc encoder
}

// NewJSON creates a stream of newline-delimited JSON frames.
func NewJSON(w io.Writer) *Stream {
	return &Stream{enc: json.NewEncoder(w)}
}

// NewCBOR creates a stream of concatenated deterministic CBOR frames.
func NewCBOR(w io.Writer) *Stream {
	return &Stream{enc: cborMode.NewEncoder(w)}
}

// New picks a stream by format name: "json" or "cbor".
func New(format string, w io.Writer) (*Stream, error) {
	switch format {
	case "", "json":
		return NewJSON(w), nil
	case "cbor":
		return NewCBOR(w), nil
	}
	return nil, fmt.Errorf("unknown sink format %q", format)
}

// ApplyPlacement implements coordinator.Sink.
func (s *Stream) ApplyPlacement(_ context.Context, a coordinator.Assignment) error {
	return s.write(PlacementFrame(a))
}

// ApplyContainer implements coordinator.Sink.
func (s *Stream) ApplyContainer(_ context.Context, c coordinator.ContainerUpdate) error {
	return s.write(ContainerFrame(c))
}

// ApplyControls implements coordinator.Sink.
func (s *Stream) ApplyControls(_ context.Context, c controls.Surface) error {
	return s.write(ControlsFrame(c))
}

// Announce implements coordinator.Announcer.
func (s *Stream) Announce(_ context.Context, n presence.Node) error {
	return s.write(AnnounceFrame(n))
}

func (s *Stream) write(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(f); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Kind, err)
	}
	return nil
}

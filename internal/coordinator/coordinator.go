package coordinator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/presence"
	"github.com/roach88/tierview/internal/roster"
)

// Sink receives placement updates. Implementations render them or write
// them somewhere; see package sink.
type Sink interface {
	ApplyPlacement(ctx context.Context, a Assignment) error
	ApplyContainer(ctx context.Context, c ContainerUpdate) error
	ApplyControls(ctx context.Context, s controls.Surface) error
}

// Announcer re-broadcasts the local occupant's presence. Used after a
// moderator changes the local tier so everyone else learns about it.
type Announcer interface {
	Announce(ctx context.Context, n presence.Node) error
}

// Observer is told about every roster change, in order.
type Observer interface {
	Observe(ctx context.Context, ev roster.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev roster.Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, ev roster.Event) {
	f(ctx, ev)
}

// Delays are the coalescing windows before a pending recompute runs.
type Delays struct {
	// Layout applies to roster, layout and resize triggers.
	Layout time.Duration
	// TileView applies to tile view toggles.
	TileView time.Duration
	// Controls applies to control surface updates.
	Controls time.Duration
}

// DefaultDelays returns the stock coalescing windows.
func DefaultDelays() Delays {
	return Delays{
		Layout:   0,
		TileView: 10 * time.Millisecond,
		Controls: 200 * time.Millisecond,
	}
}

// Coordinator turns roster, layout and viewport changes into placement
// updates.
//
// All state is owned by one goroutine. Either call Run once and feed it
// with Enqueue from anywhere, or drive it synchronously with Handle and
// Flush from a single caller. Never both.
type Coordinator struct {
	roster    *roster.Store
	sink      Sink
	announcer Announcer
	observers []Observer
	queue     *eventQueue
	passIDs   PassIDGenerator
	seq       roster.Sequencer
	delays    Delays
	logger    *slog.Logger

	layout   geometry.Layout
	viewport geometry.Viewport
	tileView bool

	// Canonical bytes of the last emitted updates.
	last          map[string][]byte
	lastContainer []byte
	lastControls  []byte

	running         bool
	layoutPending   bool
	layoutArmed     bool
	controlsPending bool
	controlsArmed   bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver registers an observer for roster events.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observers = append(c.observers, o)
	}
}

// WithAnnouncer sets where re-announced presences go.
func WithAnnouncer(a Announcer) Option {
	return func(c *Coordinator) {
		c.announcer = a
	}
}

// WithPassIDs replaces the pass id generator.
func WithPassIDs(g PassIDGenerator) Option {
	return func(c *Coordinator) {
		c.passIDs = g
	}
}

// WithSequencer replaces the emission sequence clock.
func WithSequencer(s roster.Sequencer) Option {
	return func(c *Coordinator) {
		c.seq = s
	}
}

// WithDelays replaces the coalescing windows.
func WithDelays(d Delays) Option {
	return func(c *Coordinator) {
		c.delays = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithView sets the initial layout, viewport and tile view state.
func WithView(l geometry.Layout, v geometry.Viewport, tileView bool) Option {
	return func(c *Coordinator) {
		c.layout = geometry.ParseLayout(string(l))
		c.viewport = v
		c.tileView = tileView
	}
}

// New creates a coordinator over r, emitting to sink.
func New(r *roster.Store, sink Sink, opts ...Option) *Coordinator {
	c := &Coordinator{
		roster:   r,
		sink:     sink,
		queue:    newEventQueue(),
		passIDs:  UUIDv7Generator{},
		seq:      roster.NewClock(),
		delays:   DefaultDelays(),
		logger:   slog.Default(),
		tileView: true,
		last:     make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = discard{}
	}
	return c
}

// Enqueue submits an event to the Run loop.
// Thread-safe: may be called from any goroutine.
func (c *Coordinator) Enqueue(ev Event) error {
	if !c.queue.Enqueue(ev) {
		return errStopped()
	}
	return nil
}

// Run starts the single-writer event loop. It blocks until ctx is
// cancelled or Stop is called.
//
// Event failures are logged with the event type and processing continues;
// a failed sink update is retried by the next recompute.
func (c *Coordinator) Run(ctx context.Context) error {
	c.running = true
	defer func() { c.running = false }()
	c.logger.Info("coordinator starting",
		"layout", c.layout,
		"tile_view", c.tileView,
	)

	// Settle anything queued up by Handle before Run.
	c.arm()

	for {
		ev, ok := c.queue.TryDequeue()
		if ok {
			if err := c.handle(ctx, ev); err != nil {
				c.logger.Error("event failed", "event", ev.Type, "participant", ev.ParticipantID, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			c.logger.Info("coordinator stopping: context cancelled")
			c.queue.Close()
			return ctx.Err()

		case _, open := <-c.queue.Wait():
			// A buffered wake-up can outlive the events it announced;
			// only a closed and drained queue ends the loop.
			if !open && c.queue.Len() == 0 {
				c.logger.Info("coordinator stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns once it has drained.
func (c *Coordinator) Stop() {
	c.queue.Close()
}

// Handle applies one event immediately. Recomputes it triggers stay
// pending until Flush (or, under Run, until their coalescing timer fires).
func (c *Coordinator) Handle(ctx context.Context, ev Event) error {
	return c.handle(ctx, ev)
}

// Flush runs any pending recompute and control surface update now.
func (c *Coordinator) Flush(ctx context.Context) error {
	var errs []error
	if c.layoutPending {
		if _, err := c.Recompute(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.controlsPending {
		if err := c.applyControls(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) handle(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventTypePresence:
		var f presence.Fields
		if ev.Fields != nil {
			f = *ev.Fields
		} else {
			f = presence.Decode(ev.Tree)
		}
		c.absorb(ctx, c.roster.Apply(ctx, ev.ParticipantID, f, ev.Source))

	case EventTypeLeave:
		if ev.ParticipantID == "" {
			return errInvalidEvent(ev.Type, "missing participant id")
		}
		c.absorb(ctx, c.roster.Apply(ctx, ev.ParticipantID, presence.Fields{Left: true}, ""))

	case EventTypeLayout:
		c.layout = geometry.ParseLayout(string(ev.Layout))
		c.markLayout(c.delays.Layout)

	case EventTypeResize:
		if ev.Viewport.ClientWidth < 0 || ev.Viewport.ClientHeight < 0 {
			return errInvalidEvent(ev.Type, "negative viewport")
		}
		c.viewport = ev.Viewport
		c.markLayout(c.delays.Layout)

	case EventTypeTileView:
		c.tileView = ev.TileView
		c.markLayout(c.delays.TileView)

	case EventTypeMakeTier:
		return c.makeTier(ctx, ev)

	case eventTypeFlushLayout:
		c.layoutArmed = false
		if c.layoutPending {
			_, err := c.Recompute(ctx)
			return err
		}

	case eventTypeFlushControls:
		c.controlsArmed = false
		if c.controlsPending {
			return c.applyControls(ctx)
		}

	default:
		return errInvalidEvent(ev.Type, "unknown event type")
	}
	return nil
}

// makeTier applies a moderator's tier command. Only the addressed client
// acts on it: it takes the tier, re-announces it and lays out again.
func (c *Coordinator) makeTier(ctx context.Context, ev Event) error {
	if !ev.Tier.Valid() {
		return errInvalidEvent(ev.Type, "invalid tier "+string(ev.Tier))
	}
	local := c.roster.Local()
	if local.ID == "" || ev.ParticipantID != local.ID {
		c.logger.Debug("tier command for another participant", "participant", ev.ParticipantID)
		return nil
	}

	c.absorb(ctx, c.roster.SetLocalTier(ev.Tier))
	c.markLayout(c.delays.Layout)

	if c.announcer != nil {
		if err := c.announcer.Announce(ctx, presence.TierNode(string(ev.Tier))); err != nil {
			c.logger.Warn("announce tier failed", "tier", ev.Tier, "error", err)
		}
	}
	return nil
}

// absorb forwards roster events and marks what they invalidate.
func (c *Coordinator) absorb(ctx context.Context, cs roster.ChangeSet) {
	for _, ev := range cs.Events {
		for _, o := range c.observers {
			o.Observe(ctx, ev)
		}
		if ev.Local && (ev.Kind == roster.EventUserTypeChanged || ev.Kind == roster.EventConferenceJoined) {
			c.markControls()
		}
	}
	if cs.AffectsLayout() {
		c.markLayout(c.delays.Layout)
	}
}

func (c *Coordinator) markLayout(d time.Duration) {
	c.layoutPending = true
	if c.running && !c.layoutArmed {
		c.layoutArmed = true
		c.after(d, eventTypeFlushLayout)
	}
}

func (c *Coordinator) markControls() {
	c.controlsPending = true
	if c.running && !c.controlsArmed {
		c.controlsArmed = true
		c.after(c.delays.Controls, eventTypeFlushControls)
	}
}

// arm starts timers for work left pending before Run began.
func (c *Coordinator) arm() {
	if c.layoutPending {
		c.markLayout(c.delays.Layout)
	}
	if c.controlsPending {
		c.markControls()
	}
}

func (c *Coordinator) after(d time.Duration, t EventType) {
	if d <= 0 {
		c.queue.Enqueue(Event{Type: t})
		return
	}
	time.AfterFunc(d, func() {
		c.queue.Enqueue(Event{Type: t})
	})
}

// Plan computes the placement plan for the current state without
// emitting anything.
func (c *Coordinator) Plan() Plan {
	snap := c.roster.Snapshot()
	var rules geometry.Rules
	if c.tileView {
		rules = geometry.Compute(c.layout, snap.Tier1Count, snap.Tier2Count, c.viewport)
	}
	return BuildPlan(rules, snap)
}

// Recompute builds the plan and sends every placement that differs from
// the last one emitted for that member. Departed members are forgotten.
// It returns the number of updates sent, container included.
func (c *Coordinator) Recompute(ctx context.Context) (int, error) {
	c.layoutPending = false
	plan := c.Plan()

	var passID string
	pass := func() string {
		if passID == "" {
			passID = c.passIDs.Generate()
		}
		return passID
	}

	var errs []error
	sent := 0
	live := make(map[string]struct{}, len(plan.Assignments))
	for _, a := range plan.Assignments {
		live[a.ParticipantID] = struct{}{}
		key := canon.MustMarshal(a.Placement.Canonical())
		if prev, ok := c.last[a.ParticipantID]; ok && bytes.Equal(prev, key) {
			continue
		}
		a.PassID = pass()
		a.Seq = c.seq.Next()
		if err := c.sink.ApplyPlacement(ctx, a); err != nil {
			errs = append(errs, errSink(a.ParticipantID, "placement", err))
			continue
		}
		c.last[a.ParticipantID] = key
		sent++
	}
	for id := range c.last {
		if _, ok := live[id]; !ok {
			delete(c.last, id)
		}
	}

	container := plan.Container()
	key := canon.MustMarshal(container.Canonical())
	if c.lastContainer == nil || !bytes.Equal(c.lastContainer, key) {
		update := ContainerUpdate{PassID: pass(), Seq: c.seq.Next(), Placement: container}
		if err := c.sink.ApplyContainer(ctx, update); err != nil {
			errs = append(errs, errSink("", "container", err))
		} else {
			c.lastContainer = key
			sent++
		}
	}

	if sent > 0 {
		c.logger.Debug("placements updated",
			"pass", passID,
			"sent", sent,
			"layout", c.layout,
			"tier1", plan.Rules.Tier1Count,
			"tier2", plan.Rules.Tier2Count,
		)
	}
	return sent, errors.Join(errs...)
}

func (c *Coordinator) applyControls(ctx context.Context) error {
	c.controlsPending = false
	s := controls.For(c.roster.Local().Tier)
	key := canon.MustMarshal(s.Canonical())
	if bytes.Equal(key, c.lastControls) {
		return nil
	}
	if err := c.sink.ApplyControls(ctx, s); err != nil {
		return errSink("", "controls", err)
	}
	c.lastControls = key
	c.logger.Debug("controls updated", "tier", s.Tier, "buttons", len(s.Toolbar))
	return nil
}

// Roster returns the roster the coordinator drives. Only safe to read
// from the goroutine that owns the coordinator.
func (c *Coordinator) Roster() *roster.Store {
	return c.roster
}

// Layout returns the selected layout.
func (c *Coordinator) Layout() geometry.Layout {
	return c.layout
}

// Viewport returns the last reported viewport.
func (c *Coordinator) Viewport() geometry.Viewport {
	return c.viewport
}

// TileView reports whether tile view is on.
func (c *Coordinator) TileView() bool {
	return c.tileView
}

type discard struct{}

func (discard) ApplyPlacement(context.Context, Assignment) error      { return nil }
func (discard) ApplyContainer(context.Context, ContainerUpdate) error { return nil }
func (discard) ApplyControls(context.Context, controls.Surface) error { return nil }

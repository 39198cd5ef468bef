package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/config"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/presence"
	"github.com/roach88/tierview/internal/roster"
	"github.com/roach88/tierview/internal/session"
	"github.com/roach88/tierview/internal/sink"
	"github.com/roach88/tierview/internal/testutil"
)

// DefaultRoom is the room scenarios run in unless they override the local
// address.
const DefaultRoom = "room@conference.meet.example.com"

// DefaultConference returns the rules every scenario starts from.
func DefaultConference() config.Conference {
	c := config.Default(DefaultRoom)
	c.LocalAddress = DefaultRoom + "/me"
	c.FocusUserJID = "focus@auth.meet.example.com"
	c.HiddenDomain = "recorder.meet.example.com"
	c.GatewayPattern = "jigasi@auth.meet.example.com"
	c.NoTierSignature = "/mobile-"
	return c
}

// Harness executes one scenario. It owns the roster, coordinator and
// session store of that run.
type Harness struct {
	scenario *Scenario
	conf     config.Conference
	room     string
	coord    *coordinator.Coordinator
	session  *session.Session
	recorder *sink.Recorder
	logger   *slog.Logger
}

// Option configures a run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
	dbPath string
}

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}

// WithDatabase keeps the session store at path instead of in memory.
func WithDatabase(path string) Option {
	return func(o *runOptions) {
		o.dbPath = path
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Open a fresh session store and seed its tier map
//  2. Build the roster and coordinator from the conference rules
//  3. Apply each step and flush
//  4. Evaluate assertions against the final state
//
// Rejected steps and failed assertions are reported in the result; the
// error return is for infrastructure failures only.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		dbPath: ":memory:",
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()

	st, err := session.Open(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	defer st.Close()
	st.SetLogger(o.logger)

	h, err := newHarness(ctx, scenario, st, o.logger)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.apply(ctx, step); err != nil {
			if coordinator.IsInvalidEvent(err) {
				result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
				continue
			}
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if err := h.coord.Flush(ctx); err != nil {
			return nil, fmt.Errorf("steps[%d]: flush: %w", i, err)
		}
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(ctx context.Context, scenario *Scenario, st *session.Store, logger *slog.Logger) (*Harness, error) {
	conf := applyOverrides(DefaultConference(), scenario.Conference)
	room, _, _ := strings.Cut(conf.LocalAddress, "/")

	sess, err := st.Begin(ctx, "sess-"+scenario.Name, room)
	if err != nil {
		return nil, fmt.Errorf("failed to begin session: %w", err)
	}
	for _, id := range canon.SortedKeys(scenario.SessionTiers) {
		if err := sess.SaveTier(ctx, id, roster.Tier(scenario.SessionTiers[id])); err != nil {
			return nil, fmt.Errorf("failed to seed session tiers: %w", err)
		}
	}

	rosterOpts := []roster.Option{
		roster.WithSequencer(testutil.NewDeterministicClock()),
		roster.WithTierLookup(sess),
		roster.WithLogger(logger),
	}
	if t, ok := conf.ConfiguredLocalTier(); ok {
		rosterOpts = append(rosterOpts, roster.WithLocalTier(t))
	}
	r, err := roster.NewStore(conf.RosterRules(), rosterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create roster: %w", err)
	}

	var passIDs coordinator.PassIDGenerator = coordinator.NewSequenceGenerator("pass")
	if scenario.PassID != "" {
		passIDs = testutil.NewFixedPassID(scenario.PassID)
	}

	tileView := true
	if scenario.View.TileView != nil {
		tileView = *scenario.View.TileView
	}

	rec := sink.NewRecorder()
	coord := coordinator.New(r, sink.NewJournal(rec, sess),
		coordinator.WithView(
			geometry.ParseLayout(scenario.View.Layout),
			geometry.Viewport{ClientWidth: scenario.View.Width, ClientHeight: scenario.View.Height},
			tileView,
		),
		coordinator.WithAnnouncer(rec),
		coordinator.WithObserver(sess),
		coordinator.WithPassIDs(passIDs),
		coordinator.WithSequencer(testutil.NewDeterministicClock()),
		coordinator.WithDelays(coordinator.Delays{}),
		coordinator.WithLogger(logger),
	)

	return &Harness{
		scenario: scenario,
		conf:     conf,
		room:     room,
		coord:    coord,
		session:  sess,
		recorder: rec,
		logger:   logger,
	}, nil
}

func applyOverrides(c config.Conference, o *ConferenceOverrides) config.Conference {
	if o == nil {
		return c
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.LocalAddress, o.LocalAddress)
	set(&c.FocusUserJID, o.FocusUserJID)
	set(&c.HiddenDomain, o.HiddenDomain)
	set(&c.GatewayPattern, o.GatewayPattern)
	set(&c.NoTierSignature, o.NoTierSignature)
	if o.LocalTier != "" {
		c.LocalTier = o.LocalTier
	}
	return c
}

// apply converts one step into a coordinator event and handles it.
func (h *Harness) apply(ctx context.Context, s Step) error {
	ev, err := h.event(s)
	if err != nil {
		return err
	}
	return h.coord.Handle(ctx, ev)
}

func (h *Harness) event(s Step) (coordinator.Event, error) {
	switch {
	case s.Presence != nil:
		return h.presenceEvent(*s.Presence)
	case s.Leave != "":
		return coordinator.LeaveEvent(s.Leave), nil
	case s.Layout != nil:
		return coordinator.LayoutEvent(geometry.Layout(*s.Layout)), nil
	case s.Resize != nil:
		return coordinator.ResizeEvent(*s.Resize), nil
	case s.TileView != nil:
		return coordinator.TileViewEvent(*s.TileView), nil
	case s.MakeTier != nil:
		return coordinator.MakeTierEvent(s.MakeTier.ID, roster.Tier(s.MakeTier.Tier)), nil
	}
	return coordinator.Event{}, fmt.Errorf("empty step")
}

func (h *Harness) presenceEvent(p PresenceStep) (coordinator.Event, error) {
	from := p.From
	if from == "" {
		from = h.room + "/" + p.ID
	}
	id := p.ID
	if from == h.conf.LocalAddress {
		id = ""
	}

	if p.XML != "" {
		tree, err := presence.ParseXML([]byte(p.XML))
		if err != nil {
			return coordinator.Event{}, fmt.Errorf("presence %s: %w", p.ID, err)
		}
		return coordinator.PresenceEvent(id, from, tree), nil
	}

	return coordinator.DecodedPresenceEvent(id, from, presence.Fields{
		Tier:    p.UserType,
		Nick:    p.Nick,
		JID:     p.JID,
		Status:  p.Status,
		Version: p.Version,
		BotType: p.BotType,
	}), nil
}

// collect copies the final state into result.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	result.Frames = h.recorder.Frames()
	result.Plan = h.coord.Plan()
	result.Snapshot = h.coord.Roster().Snapshot()
	result.RosterSize = h.coord.Roster().Len()

	tiers, err := h.session.Tiers(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session tiers: %w", err)
	}
	result.SessionTiers = tiers
	return nil
}

package roster

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/tierview/internal/presence"
)

// TierLookup reads a previously persisted tier for a participant.
// Implemented by session.Store.
type TierLookup interface {
	LookupTier(ctx context.Context, participantID string) (Tier, bool, error)
}

// tierRule names which rule decided a member's tier. Logged, never stored.
type tierRule string

const (
	ruleExplicit         tierRule = "explicit"
	ruleSessionRestore   tierRule = "session-restore"
	ruleMobileCompat     tierRule = "mobile-compat"
	ruleNewMemberDefault tierRule = "new-member-default"
	ruleGatewayOverride  tierRule = "gateway-override"
)

// Store is the authoritative participant roster.
//
// Store is NOT safe for concurrent use. All calls must come from one
// goroutine (the coordinator's Run loop, or a single test caller).
type Store struct {
	rules   compiledRules
	members map[string]*Member
	local   Member
	joined  bool
	clock   Sequencer
	lookup  TierLookup
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSequencer replaces the join-order clock.
func WithSequencer(seq Sequencer) Option {
	return func(s *Store) {
		s.clock = seq
	}
}

// WithTierLookup enables restoring persisted tiers for members that join
// without one.
func WithTierLookup(l TierLookup) Option {
	return func(s *Store) {
		s.lookup = l
	}
}

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithLocalTier sets the local occupant's starting tier (usually from the
// meeting token). Defaults to tier-3.
func WithLocalTier(t Tier) Option {
	return func(s *Store) {
		if t.Valid() {
			s.local.Tier = t
		}
	}
}

// NewStore creates an empty roster.
func NewStore(rules Rules, opts ...Option) (*Store, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	s := &Store{
		rules:   compiled,
		members: make(map[string]*Member),
		local: Member{
			ID:      ResourceOf(rules.LocalAddress),
			Address: rules.LocalAddress,
			Tier:    Tier3,
			Local:   true,
		},
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Apply folds one decoded presence into the roster.
//
// participantID may be empty, in which case the resource of source is used.
// Updates for the local occupant only touch local bookkeeping. Nothing here
// fails: unknown ids that leave are ignored, duplicate joins merge.
func (s *Store) Apply(ctx context.Context, participantID string, f presence.Fields, source string) ChangeSet {
	if s.rules.isLocal(source) {
		return s.applyLocal(f)
	}

	if participantID == "" {
		participantID = ResourceOf(source)
	}
	if participantID == "" {
		s.logger.Debug("ignoring presence without participant id", "source", source)
		return ChangeSet{}
	}

	if f.Left {
		return s.leave(participantID)
	}

	if m, ok := s.members[participantID]; ok {
		return s.merge(m, f)
	}
	return s.join(ctx, participantID, f, source)
}

func (s *Store) join(ctx context.Context, id string, f presence.Fields, source string) ChangeSet {
	addr := source
	if f.JID != nil {
		addr = *f.JID
	}

	m := &Member{
		ID:         id,
		Address:    addr,
		JoinSeq:    s.clock.Next(),
		IsFocus:    s.rules.isFocus(addr),
		hiddenAddr: s.rules.isHiddenDomain(addr),
	}
	m.mergeMeta(f)

	tier, rule := s.resolveNewTier(ctx, id, addr, f.Tier)
	if s.rules.isGateway(addr) {
		tier, rule = Tier2, ruleGatewayOverride
	}
	m.Tier = tier
	s.members[id] = m

	s.logger.Debug("member joined",
		"id", id,
		"tier", tier,
		"rule", rule,
		"focus", m.IsFocus,
	)

	var cs ChangeSet
	cs.add(EventJoined, *m, string(m.Tier))
	cs.add(EventUserTypeChanged, *m, string(m.Tier))
	if f.Version != nil {
		cs.add(EventVersionChanged, *m, m.Version)
	}
	return cs
}

// resolveNewTier picks the tier of a member seen for the first time.
//
// The absent-tier rules are separate: legacy mobile clients
// never announce a tier and are shown as tier-2, everyone else without a
// tier starts at tier-3 unless this session already knew their tier.
func (s *Store) resolveNewTier(ctx context.Context, id, addr string, raw *string) (Tier, tierRule) {
	if raw != nil {
		if t, ok := ParseTier(*raw); ok {
			return t, ruleExplicit
		}
		s.logger.Debug("invalid tier in presence", "id", id, "value", *raw)
		return Tier3, ruleNewMemberDefault
	}

	if s.rules.lacksTierInfo(addr) {
		return Tier2, ruleMobileCompat
	}

	if s.lookup != nil {
		t, ok, err := s.lookup.LookupTier(ctx, id)
		if err != nil {
			s.logger.Warn("tier lookup failed", "id", id, "error", err)
		} else if ok && t.Valid() {
			return t, ruleSessionRestore
		}
	}

	return Tier3, ruleNewMemberDefault
}

func (s *Store) merge(m *Member, f presence.Fields) ChangeSet {
	if f.JID != nil && *f.JID != m.Address {
		m.Address = *f.JID
		m.hiddenAddr = s.rules.isHiddenDomain(m.Address)
	}
	// The first presences of the focus sometimes lack its address; mark it
	// as soon as one arrives, never unmark.
	if !m.IsFocus && s.rules.isFocus(m.Address) {
		m.IsFocus = true
	}

	prevRole := m.Role()
	tier := m.Tier
	if f.Tier != nil {
		if t, ok := ParseTier(*f.Tier); ok {
			tier = t
		}
	}
	if s.rules.isGateway(m.Address) {
		tier = Tier2
	}
	tierChanged := tier != m.Tier
	m.Tier = tier

	statusChanged, versionChanged, botChanged, nickChanged := m.mergeMeta(f)

	var cs ChangeSet
	if m.Role() != prevRole {
		cs.add(EventRoleChanged, *m, string(m.Role()))
	}
	if botChanged {
		cs.add(EventBotTypeChanged, *m, m.BotType)
	}
	if nickChanged && !m.IsFocus {
		cs.add(EventDisplayNameChanged, *m, m.Nick)
	}
	if statusChanged {
		cs.add(EventStatusChanged, *m, m.Status)
	}
	if tierChanged {
		s.logger.Info("received new userType", "id", m.ID, "address", m.Address, "tier", m.Tier)
		cs.add(EventUserTypeChanged, *m, string(m.Tier))
	}
	if versionChanged {
		s.logger.Info("received version", "id", m.ID, "address", m.Address, "version", m.Version)
		cs.add(EventVersionChanged, *m, m.Version)
	}
	return cs
}

func (s *Store) leave(id string) ChangeSet {
	m, ok := s.members[id]
	if !ok {
		return ChangeSet{}
	}
	delete(s.members, id)
	s.logger.Debug("member left", "id", id)

	var cs ChangeSet
	cs.add(EventLeft, *m, "")
	return cs
}

func (s *Store) applyLocal(f presence.Fields) ChangeSet {
	var cs ChangeSet
	if f.Tier != nil {
		if t, ok := ParseTier(*f.Tier); ok {
			cs = s.SetLocalTier(t)
		}
	}
	if f.JID != nil {
		s.local.Address = *f.JID
		s.local.hiddenAddr = s.rules.isHiddenDomain(s.local.Address)
	}
	s.local.mergeMeta(f)

	if !s.joined {
		s.joined = true
		s.logger.Info("conference joined", "id", s.local.ID, "tier", s.local.Tier)
		cs.add(EventConferenceJoined, s.local, string(s.local.Tier))
	}
	return cs
}

// SetLocalTier changes the local occupant's tier, as when a moderator
// re-tiers this client. Emits ROLE_CHANGED when the local role flips and
// USERTYPE_CHANGED when the tier differs.
func (s *Store) SetLocalTier(t Tier) ChangeSet {
	var cs ChangeSet
	if !t.Valid() || t == s.local.Tier {
		return cs
	}

	prevRole := s.local.Tier.localRole()
	s.local.Tier = t
	if role := t.localRole(); role != prevRole {
		cs.add(EventRoleChanged, s.local, string(role))
	}
	cs.add(EventUserTypeChanged, s.local, string(t))
	return cs
}

// Get returns a copy of the member with the given id. The local occupant
// is found by its own id.
func (s *Store) Get(id string) (Member, bool) {
	if id != "" && id == s.local.ID {
		return s.local, true
	}
	m, ok := s.members[id]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Local returns a copy of the local occupant.
func (s *Store) Local() Member {
	return s.local
}

// Joined reports whether the local occupant's own presence has been seen.
func (s *Store) Joined() bool {
	return s.joined
}

// Len returns the number of remote members, focus included.
func (s *Store) Len() int {
	return len(s.members)
}

// Snapshot is an immutable view of the roster for layout.
type Snapshot struct {
	// Members holds the local occupant first (when its address is known),
	// then remote members in join order.
	Members    []Member
	Tier1Count int
	Tier2Count int
}

// Snapshot copies the roster and recounts tiers from scratch.
func (s *Store) Snapshot() Snapshot {
	members := make([]Member, 0, len(s.members)+1)
	if s.local.ID != "" {
		members = append(members, s.local)
	}
	remote := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		remote = append(remote, *m)
	}
	slices.SortFunc(remote, func(a, b Member) int {
		return cmp.Or(cmp.Compare(a.JoinSeq, b.JoinSeq), strings.Compare(a.ID, b.ID))
	})
	members = append(members, remote...)

	snap := Snapshot{Members: members}
	for _, m := range members {
		if !m.Tiled() {
			continue
		}
		switch m.Tier {
		case Tier1:
			snap.Tier1Count++
		case Tier2:
			snap.Tier2Count++
		}
	}
	return snap
}

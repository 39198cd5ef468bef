package roster

import (
	"github.com/roach88/tierview/internal/presence"
)

// Member is one live participant.
//
// Role, Affiliation and IsHiddenDomain are methods so they can never drift
// from Tier and Address.
type Member struct {
	ID       string             `json:"id"`
	Address  string             `json:"address"`
	Tier     Tier               `json:"tier"`
	IsFocus  bool               `json:"isFocus,omitempty"`
	Nick     string             `json:"nick,omitempty"`
	StatsID  string             `json:"statsId,omitempty"`
	Status   string             `json:"status,omitempty"`
	Version  string             `json:"version,omitempty"`
	BotType  string             `json:"botType,omitempty"`
	Identity *presence.Identity `json:"identity,omitempty"`
	JoinSeq  int64              `json:"joinSeq"`
	Local    bool               `json:"local,omitempty"`

	// hiddenAddr is recomputed by the store whenever Address changes.
	hiddenAddr bool
}

// Role derives the member's conference role from its tier.
func (m Member) Role() Role {
	return m.Tier.Role()
}

// Affiliation derives the member's room affiliation from its tier.
func (m Member) Affiliation() Affiliation {
	return m.Tier.Affiliation()
}

// IsHiddenDomain reports whether the member is kept off the tiled stage:
// its address is on the hidden domain, or its tier is never tiled.
func (m Member) IsHiddenDomain() bool {
	return m.hiddenAddr || m.Tier == Tier3 || m.Tier == Tier0
}

// Tiled reports whether the member takes part in tier geometry.
func (m Member) Tiled() bool {
	return !m.IsFocus && !m.IsHiddenDomain() && m.Tier.Tiled()
}

// mergeMeta applies last-write-wins metadata and reports which fields changed.
func (m *Member) mergeMeta(f presence.Fields) (status, version, bot, nick bool) {
	if f.Status != nil && *f.Status != m.Status {
		m.Status = *f.Status
		status = true
	}
	if f.Version != nil && *f.Version != m.Version {
		m.Version = *f.Version
		version = true
	}
	if f.BotType != nil && *f.BotType != m.BotType {
		m.BotType = *f.BotType
		bot = true
	}
	if f.Nick != nil && *f.Nick != m.Nick {
		m.Nick = *f.Nick
		nick = true
	}
	if f.StatsID != nil {
		m.StatsID = *f.StatsID
	}
	if f.Identity != nil {
		id := *f.Identity
		m.Identity = &id
	}
	return status, version, bot, nick
}

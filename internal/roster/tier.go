package roster

// Tier is the coarse visual-priority class of a participant.
type Tier string

const (
	// Tier0 is the moderator tier. Never placed in the tiled layouts.
	Tier0 Tier = "tier-0"
	// Tier1 gets the large feature tiles.
	Tier1 Tier = "tier-1"
	// Tier2 fills the small-tile grid.
	Tier2 Tier = "tier-2"
	// Tier3 is the audience default. Never placed in the tiled layouts.
	Tier3 Tier = "tier-3"
)

// Tiers lists every valid tier, highest priority first.
var Tiers = []Tier{Tier0, Tier1, Tier2, Tier3}

// ParseTier validates a raw userType value.
func ParseTier(s string) (Tier, bool) {
	switch t := Tier(s); t {
	case Tier0, Tier1, Tier2, Tier3:
		return t, true
	}
	return "", false
}

// Valid reports whether t is one of the four tiers.
func (t Tier) Valid() bool {
	_, ok := ParseTier(string(t))
	return ok
}

// Tiled reports whether members of this tier take part in tile geometry.
func (t Tier) Tiled() bool {
	return t == Tier1 || t == Tier2
}

// Role is the conference role derived from a tier.
type Role string

const (
	RoleModerator   Role = "moderator"
	RoleParticipant Role = "participant"
	// RoleNone is only used for the local occupant when it does not own the room.
	RoleNone Role = "none"
)

// Affiliation is the room affiliation derived from a tier.
type Affiliation string

const (
	AffiliationOwner Affiliation = "owner"
	AffiliationNone  Affiliation = "none"
)

// Role derives the conference role: tier-0 moderates, everyone else participates.
func (t Tier) Role() Role {
	if t == Tier0 {
		return RoleModerator
	}
	return RoleParticipant
}

// Affiliation derives the room affiliation: tier-0 owns the room.
func (t Tier) Affiliation() Affiliation {
	if t == Tier0 {
		return AffiliationOwner
	}
	return AffiliationNone
}

// localRole is the role the local occupant reports for itself: its role
// when it owns the room, none otherwise.
func (t Tier) localRole() Role {
	if t.Affiliation() == AffiliationOwner {
		return t.Role()
	}
	return RoleNone
}

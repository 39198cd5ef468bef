package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/roster"
)

// Scenario is one conference script with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Conference overrides the default rules. Unset fields keep the
	// harness defaults (see DefaultRoom).
	Conference *ConferenceOverrides `yaml:"conference,omitempty"`

	// View is the initial layout state.
	View View `yaml:"view"`

	// PassID, when set, names every recompute pass the same.
	PassID string `yaml:"pass_id,omitempty"`

	// SessionTiers seeds the session tier map before the first step.
	SessionTiers map[string]string `yaml:"session_tiers,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// ConferenceOverrides replaces individual conference rules.
type ConferenceOverrides struct {
	LocalAddress    *string `yaml:"local_address,omitempty"`
	FocusUserJID    *string `yaml:"focus_user_jid,omitempty"`
	HiddenDomain    *string `yaml:"hidden_domain,omitempty"`
	GatewayPattern  *string `yaml:"gateway_pattern,omitempty"`
	NoTierSignature *string `yaml:"no_tier_signature,omitempty"`
	LocalTier       string  `yaml:"local_tier,omitempty"`
}

// View is the initial layout, viewport and tile view state.
type View struct {
	Layout   string `yaml:"layout"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	TileView *bool  `yaml:"tile_view,omitempty"`
}

// Step is one input. Exactly one field must be set.
type Step struct {
	Presence *PresenceStep     `yaml:"presence,omitempty"`
	Leave    string            `yaml:"leave,omitempty"`
	Layout   *string           `yaml:"layout,omitempty"`
	Resize   *geometry.Viewport `yaml:"resize,omitempty"`
	TileView *bool             `yaml:"tile_view,omitempty"`
	MakeTier *MakeTierStep     `yaml:"make_tier,omitempty"`
}

// PresenceStep is a presence from one occupant. Either XML carries the raw
// stanza, or the individual fields describe it.
type PresenceStep struct {
	// ID is the occupant resource. The local occupant is addressed by the
	// resource of the local address.
	ID string `yaml:"id"`

	// From overrides the occupant address (room/ID by default).
	From string `yaml:"from,omitempty"`

	XML string `yaml:"xml,omitempty"`

	UserType *string `yaml:"user_type,omitempty"`
	Nick     *string `yaml:"nick,omitempty"`
	JID      *string `yaml:"jid,omitempty"`
	Status   *string `yaml:"status,omitempty"`
	Version  *string `yaml:"version,omitempty"`
	BotType  *string `yaml:"bot_type,omitempty"`
}

// MakeTierStep is a moderator tier command.
type MakeTierStep struct {
	ID   string `yaml:"id"`
	Tier string `yaml:"tier"`
}

func (s Step) kinds() []string {
	var kinds []string
	if s.Presence != nil {
		kinds = append(kinds, "presence")
	}
	if s.Leave != "" {
		kinds = append(kinds, "leave")
	}
	if s.Layout != nil {
		kinds = append(kinds, "layout")
	}
	if s.Resize != nil {
		kinds = append(kinds, "resize")
	}
	if s.TileView != nil {
		kinds = append(kinds, "tile_view")
	}
	if s.MakeTier != nil {
		kinds = append(kinds, "make_tier")
	}
	return kinds
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// ID names the participant (tier, role, placement).
	ID string `yaml:"id,omitempty"`

	// Expect is the expected tier or role.
	Expect string `yaml:"expect,omitempty"`

	// Placement lists expected placement properties by their JSON name.
	// Subset match; an empty string expects the property unset.
	Placement map[string]string `yaml:"placement,omitempty"`

	// Kind filters emitted_count by frame kind. Empty counts every frame.
	Kind string `yaml:"kind,omitempty"`

	Count *int `yaml:"count,omitempty"`
	Tier1 *int `yaml:"tier1,omitempty"`
	Tier2 *int `yaml:"tier2,omitempty"`
}

// Assertion type constants.
const (
	AssertTier         = "tier"
	AssertRole         = "role"
	AssertRosterSize   = "roster_size"
	AssertPlacement    = "placement"
	AssertEmittedCount = "emitted_count"
	AssertTierCounts   = "tier_counts"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.View.Width < 0 || s.View.Height < 0 {
		return fmt.Errorf("view: width and height must be non-negative")
	}
	if s.Conference != nil && s.Conference.LocalTier != "" {
		if _, ok := roster.ParseTier(s.Conference.LocalTier); !ok {
			return fmt.Errorf("conference.local_tier: invalid tier %q", s.Conference.LocalTier)
		}
	}
	for id, tier := range s.SessionTiers {
		if _, ok := roster.ParseTier(tier); !ok {
			return fmt.Errorf("session_tiers.%s: invalid tier %q", id, tier)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s Step) error {
	kinds := s.kinds()
	switch len(kinds) {
	case 0:
		return fmt.Errorf("steps[%d]: no action given", index)
	case 1:
	default:
		return fmt.Errorf("steps[%d]: more than one action: %v", index, kinds)
	}

	switch {
	case s.Presence != nil:
		if s.Presence.ID == "" && s.Presence.From == "" {
			return fmt.Errorf("steps[%d].presence: id or from is required", index)
		}
	case s.Resize != nil:
		if s.Resize.ClientWidth < 0 || s.Resize.ClientHeight < 0 {
			return fmt.Errorf("steps[%d].resize: width and height must be non-negative", index)
		}
	case s.MakeTier != nil:
		if s.MakeTier.ID == "" {
			return fmt.Errorf("steps[%d].make_tier: id is required", index)
		}
		if _, ok := roster.ParseTier(s.MakeTier.Tier); !ok {
			return fmt.Errorf("steps[%d].make_tier: invalid tier %q", index, s.MakeTier.Tier)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTier, AssertRole:
		if a.ID == "" || a.Expect == "" {
			return fmt.Errorf("assertions[%d]: id and expect are required for %s", index, a.Type)
		}
	case AssertPlacement:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for placement", index)
		}
		if len(a.Placement) == 0 {
			return fmt.Errorf("assertions[%d]: placement map is required", index)
		}
	case AssertRosterSize, AssertEmittedCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertTierCounts:
		if a.Tier1 == nil && a.Tier2 == nil {
			return fmt.Errorf("assertions[%d]: tier1 or tier2 is required for tier_counts", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/sink"
)

// Snapshot is the golden view of a finished scenario: the final plan,
// persisted tiers and how many frames of each kind were emitted.
func Snapshot(name string, r *Result) ([]byte, error) {
	tiers := make(map[string]any, len(r.SessionTiers))
	for id, t := range r.SessionTiers {
		tiers[id] = string(t)
	}
	emitted := map[string]any{}
	for _, kind := range []sink.FrameKind{sink.KindPlacement, sink.KindContainer, sink.KindControls, sink.KindAnnounce} {
		emitted[string(kind)] = r.CountFrames(kind)
	}
	return canon.Marshal(map[string]any{
		"scenario":      name,
		"emitted":       emitted,
		"plan":          r.Plan.Canonical(),
		"session_tiers": tiers,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

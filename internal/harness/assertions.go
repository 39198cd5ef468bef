package harness

import (
	"fmt"
	"strconv"

	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/sink"
)

// EvaluateAssertions checks every assertion against result and returns the
// failure messages. It does not stop at the first failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if msg := evaluate(result, a); msg != "" {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) string {
	switch a.Type {
	case AssertTier:
		m, ok := r.Member(a.ID)
		if !ok {
			return fmt.Sprintf("participant %q not in roster", a.ID)
		}
		if string(m.Tier) != a.Expect {
			return fmt.Sprintf("participant %q: tier %q, want %q", a.ID, m.Tier, a.Expect)
		}

	case AssertRole:
		m, ok := r.Member(a.ID)
		if !ok {
			return fmt.Sprintf("participant %q not in roster", a.ID)
		}
		if string(m.Role()) != a.Expect {
			return fmt.Sprintf("participant %q: role %q, want %q", a.ID, m.Role(), a.Expect)
		}

	case AssertRosterSize:
		if r.RosterSize != *a.Count {
			return fmt.Sprintf("roster size %d, want %d", r.RosterSize, *a.Count)
		}

	case AssertPlacement:
		return checkPlacement(r, a)

	case AssertEmittedCount:
		if n := r.CountFrames(sink.FrameKind(a.Kind)); n != *a.Count {
			return fmt.Sprintf("emitted %d %s frames, want %d", n, kindLabel(a.Kind), *a.Count)
		}

	case AssertTierCounts:
		if a.Tier1 != nil && r.Snapshot.Tier1Count != *a.Tier1 {
			return fmt.Sprintf("tier-1 count %d, want %d", r.Snapshot.Tier1Count, *a.Tier1)
		}
		if a.Tier2 != nil && r.Snapshot.Tier2Count != *a.Tier2 {
			return fmt.Sprintf("tier-2 count %d, want %d", r.Snapshot.Tier2Count, *a.Tier2)
		}

	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}

func checkPlacement(r *Result, a Assertion) string {
	assignment, ok := r.Plan.Get(a.ID)
	if !ok {
		return fmt.Sprintf("participant %q has no placement", a.ID)
	}
	got := assignment.Placement.Canonical()
	for _, key := range canon.SortedKeys(a.Placement) {
		want := a.Placement[key]
		v, ok := got[key]
		if !ok {
			return fmt.Sprintf("unknown placement property %q", key)
		}
		var s string
		switch v := v.(type) {
		case string:
			s = v
		case bool:
			s = strconv.FormatBool(v)
		}
		if s != want {
			return fmt.Sprintf("participant %q: %s = %q, want %q", a.ID, key, s, want)
		}
	}
	return ""
}

func kindLabel(kind string) string {
	if kind == "" {
		return "total"
	}
	return kind
}

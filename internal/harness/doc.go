// Package harness runs conference scenarios against the real roster and
// coordinator.
//
// A scenario is a YAML file: optional conference rule overrides, the
// initial view, a list of steps and assertions on the final state.
//
//	name: hd-feature-and-grid
//	description: one tier-1 speaker and two tier-2 guests on layout-1
//	view: {layout: layout-1, width: 1280, height: 1080}
//	steps:
//	  - presence: {id: me, user_type: tier-1}
//	  - presence: {id: bob, user_type: tier-2}
//	assertions:
//	  - type: tier
//	    id: bob
//	    expect: tier-2
//
// Steps are applied with Coordinator.Handle and flushed immediately, so no
// coalescing timers run and every execution is deterministic. Pass ids come
// from a sequence generator (or the fixed id a scenario names), and each
// run gets a fresh in-memory session store.
//
// Golden files hold the canonical JSON of the final plan plus emitted frame
// counts. Regenerate them with:
//
//	go test ./internal/harness -update
package harness

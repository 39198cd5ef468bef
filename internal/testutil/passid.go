package testutil

// FixedPassID names every recompute pass the same. Golden files written
// with it do not change when a scenario gains or loses a pass.
//
// Thread-safety: FixedPassID is stateless and safe for concurrent use.
type FixedPassID struct {
	id string
}

// NewFixedPassID creates the generator. An empty id is "test-pass".
//
// Scenarios set it with:
//
//	pass_id: "pass-fixed"
func NewFixedPassID(id string) *FixedPassID {
	if id == "" {
		id = "test-pass"
	}
	return &FixedPassID{id: id}
}

// Generate returns the fixed id. Satisfies coordinator.PassIDGenerator.
func (g *FixedPassID) Generate() string {
	return g.id
}

package testutil

// DefaultRunID is used when a scenario does not set run_id.
const DefaultRunID = "test-run-default"

// FixedRunGenerator generates the same run ID every time.
//
// Unlike engine.FixedGenerator which returns IDs in sequence, this generator
// always returns the same ID, so every evaluation of a scenario lands in
// one run and golden traces are byte-identical across executions.
//
// Thread-safety: FixedRunGenerator is stateless and safe for concurrent use.
type FixedRunGenerator struct {
	id string
}

// NewFixedRunGenerator creates a new fixed run ID generator.
//
// The ID is typically set in the scenario YAML:
//
//	run_id: "test-run-pareto-properties"
//
// If id is empty, Generate() returns DefaultRunID.
func NewFixedRunGenerator(id string) *FixedRunGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator.
func (g *FixedRunGenerator) Generate() string {
	return g.id
}

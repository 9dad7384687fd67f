// Package engine evaluates distribution functions and records them.
//
// Every request becomes an ir.Evaluation stamped with a run ID and a seq
// number from the logical Clock. The engine writes the evaluation, computes
// (or recalls) the values, then writes exactly one ir.Outcome:
//
//	Request → Evaluation (seq n) → [cache lookup | compute] → Outcome (seq n+1)
//
// Deterministic functions (everything except rng) are memoised by cache
// key; the earliest successful outcome for a key is reused and the new
// outcome is marked cached. Random draws come from a PCG generator seeded
// by the request, so a stored rng outcome can be reproduced.
//
// Replay recomputes a stored run through the same code path and reports
// any outcome that differs.
//
// ORDERING:
// All records are stamped with Clock.Next(); wall-clock time never orders
// anything. Evaluations are serialised so seq numbers follow write order.
package engine

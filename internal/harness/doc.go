// Package harness provides conformance testing for distlab model specs.
//
// The harness loads a directory of CUE specs, evaluates scenario checks and
// properties through a real engine, and snapshots the recorded trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs: ../specs            # CUE directory, relative to this file
//	run_id: test-run-example   # optional
//	seed: 42                   # seeds rng evaluations
//	checks:
//	  - spec: income
//	    function: cdf
//	    points: [1, 2]
//	    expect: [0, 0.75]
//	    tolerance: 1e-12
//	  - spec: coin
//	    function: lpdf
//	    expect_error: UNKNOWN_FUNCTION
//	properties:
//	  - type: integrates_to_one
//	    spec: income
//	  - type: moments
//	    spec: coin
//	    draws: 100000
//	    stats: [mean, variance]
//
// # Properties
//
//   - integrates_to_one: the PMF sums, or the PDF integrates, to 1
//   - cdf_monotone: the CDF lies in [0, 1] and never decreases
//   - complement: exp(lcdf) + exp(lccdf) = 1 pointwise
//   - moments: sample mean and variance of seeded draws converge to the
//     closed forms; skipped when a moment is infinite
//
// # Determinism
//
// Each scenario runs against a fresh in-memory store with a deterministic
// clock and a fixed run ID, so seq numbers and draws are reproducible and
// golden files under testdata/golden compare byte for byte.
package harness

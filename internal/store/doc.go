// Package store provides SQLite-backed durable storage for distlab
// evaluation history.
//
// The store is an append-only log with two tables:
//   - evaluations: what was asked (family, parameters, function, points)
//   - outcomes: what came back, exactly one per evaluation
//
// # Ordering
//
// All ordering uses seq INTEGER (logical clock), never timestamps, and every
// multi-row query ends with ORDER BY seq ASC, id COLLATE BINARY ASC so
// results are identical across runs.
//
// # Memoisation
//
// Evaluations carry a cache key (see ir.CacheKey). LookupCached returns the
// earliest successful outcome recorded under a key, which lets the engine
// skip recomputing deterministic functions.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

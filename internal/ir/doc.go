// Package ir provides the canonical record types of distlab: model specs,
// evaluation requests and their outcomes.
//
// This package contains type definitions and hashing only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Identities are SHA-256 hashes of RFC 8785 canonical JSON with a
//     versioned domain prefix
//   - Canonical JSON carries finite floats only; non-finite results travel
//     as the strings "inf", "-inf" and "nan" (see Values)
//   - All JSON tags use snake_case
//   - Records are ordered by a logical clock (seq), never by wall-clock time
package ir

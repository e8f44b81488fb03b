// Package authcore provides the credential and session lifecycle core for
// the Crewdesk workforce dashboards: password login with per-principal
// lockout, signed JWT access/refresh token pairs, session expiry and
// refresh semantics, and capability-based permission checks.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types ([session.Session], [MetricsSnapshot], [AuditEvent]).
// Internal coordination — lockout counters, audit dispatch — lives under
// internal/ and the focused subpackages.
//
// # What this package must NOT do
//
//   - Persist user records: the [UserDirectory] is supplied by the caller
//     and treated as read-only.
//   - Retain per-session server state: tokens are self-contained, and the
//     optional session store only holds what the caller asks it to hold.
//     Logout therefore cannot revoke an already-issued token; deployments
//     needing revocation must layer a denylist or shorten the access TTL.
//   - Rate-limit by IP or client: lockout is advisory against a single
//     principal only.
//
// # Performance contract
//
// Authenticate is the hot path. It verifies one signature and allocates
// only the returned claims; no backend round-trips. Login and Refresh are
// allowed one lockout-counter and one session-store round-trip per call.
package authcore

// Package token issues and verifies the signed claims tokens used by the
// session core.
//
// Tokens are stateless JWTs: everything a request needs (principal, role,
// permission set, kind, expiry) travels inside the token, and nothing is
// recorded server-side at issuance. That keeps verification to a single
// signature check but means an issued token cannot be revoked before its
// expiry — a deliberate limitation of this design, compensated for by the
// short access TTL.
//
// Verification failures (bad signature, malformed input, expiry) all
// surface as [ErrInvalid]. The distinction is available in the wrapped
// error message for internal logs, but callers must not branch on it.
package token

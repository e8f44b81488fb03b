// Package middleware exposes HTTP middleware adapters for bearer-token
// authentication and capability gating built on top of authcore.Engine.
//
// # Guards
//
//   - [Guard] — authenticates the Authorization bearer token and injects
//     the resulting identity into the request context.
//   - [RequirePermission] — layers a capability check on top of an
//     already-authenticated request.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate and Engine.Authorize.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware

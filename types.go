package authcore

import (
	"context"

	"github.com/crewdesk/authcore/permission"
)

// Role identifies a principal's role in the dashboard. The value set is
// closed at provisioning time; the core treats it as an opaque label and
// copies it into token claims unchanged.
type Role string

const (
	// RoleAdmin is an exported constant or variable used by the session core.
	RoleAdmin Role = "admin"
	// RoleManager is an exported constant or variable used by the session core.
	RoleManager Role = "manager"
	// RoleEmployee is an exported constant or variable used by the session core.
	RoleEmployee Role = "employee"
)

// Profile is the display subset of a user record. It is denormalized into
// the Session at login so dashboards can render without a directory read.
type Profile struct {
	DisplayName string
	Role        Role
	Permissions permission.Set
}

// UserRecord is the account record returned by [UserDirectory]. The
// credential hash is opaque to the core and never logged.
type UserRecord struct {
	PrincipalID    string
	CredentialHash string
	Profile        Profile
}

// UserDirectory is the interface callers implement to connect authcore to
// their user database. Lookup is a pure read; implementations return
// [ErrPrincipalNotFound] for unknown principals.
//
// The core funnels a not-found answer into the same failure path as a
// wrong password, so directory implementations do not need to worry about
// account enumeration themselves.
type UserDirectory interface {
	Lookup(ctx context.Context, principalID string) (UserRecord, error)
}

// AuthResult is returned by [Engine.Authenticate]. It carries the
// authenticated principal's identity and the permission set frozen into
// the token at issuance.
type AuthResult struct {
	PrincipalID string
	SessionID   string
	Role        Role
	Permissions permission.Set
}

// SessionStatus is the tagged result of [Engine.Validate].
type SessionStatus uint8

const (
	// StatusAuthenticated means the access token is valid; proceed.
	StatusAuthenticated SessionStatus = iota
	// StatusNeedsRefresh means the access token is no longer valid but the
	// refresh token still is; call [Engine.Refresh].
	StatusNeedsRefresh
	// StatusInvalid means both tokens are unusable; the caller must
	// re-authenticate through [Engine.Login].
	StatusInvalid
)

// String returns the lower-case name of the status for logs and tests.
func (s SessionStatus) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusNeedsRefresh:
		return "needs_refresh"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

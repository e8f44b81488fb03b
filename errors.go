package authcore

import "errors"

var (
	// ErrLockedOut is an exported constant or variable used by the session core.
	ErrLockedOut = errors.New("account temporarily locked")
	// ErrInvalidCredentials is an exported constant or variable used by the session core.
	// Unknown principals and wrong passwords both surface this error; callers
	// must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPrincipalNotFound is returned by UserDirectory implementations.
	// The Engine never forwards it to login callers.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrTokenInvalid is an exported constant or variable used by the session core.
	// Signature mismatch, malformed input, and expiry all collapse to this
	// value at the API boundary.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrSessionExpired is an exported constant or variable used by the session core.
	ErrSessionExpired = errors.New("session expired")
	// ErrConfigInvalid wraps every configuration validation failure. It is
	// fatal: Build refuses to construct an Engine.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrLockoutUnavailable is an exported constant or variable used by the session core.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
	// ErrSessionStoreUnavailable is an exported constant or variable used by the session core.
	ErrSessionStoreUnavailable = errors.New("session store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the session core.
	ErrEngineNotReady = errors.New("engine not initialized")
)

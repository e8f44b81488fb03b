package session

// Session defines a public type used by authcore APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	SessionID   string
	PrincipalID string

	DisplayName string
	Role        string
	Permissions []string

	AccessToken  string
	RefreshToken string

	CreatedAt       int64
	RefreshedAt     int64
	AccessExpiresAt int64
	ExpiresAt       int64
}

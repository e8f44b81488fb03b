package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/crewdesk/authcore/internal/limiters"
	"github.com/crewdesk/authcore/session"
	"github.com/crewdesk/authcore/token"
)

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLoginLockedOut   = "login_locked_out"
	auditEventLockoutTriggered = "lockout_triggered"
	auditEventRefreshSuccess   = "refresh_success"
	auditEventRefreshInvalid   = "refresh_invalid"
	auditEventLogoutSession    = "logout_session"
	auditEventLogoutAll        = "logout_all"
	auditEventPermissionDenied = "permission_denied"
)

// AuditErrorCode defines a public type used by authcore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrLockedOut          AuditErrorCode = "locked_out"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrSessionExpired     AuditErrorCode = "session_expired"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLockedOut):
		return auditErrLockedOut
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrSessionExpired), errors.Is(err, token.ErrExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, token.ErrInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrLockoutUnavailable),
		errors.Is(err, ErrSessionStoreUnavailable),
		errors.Is(err, limiters.ErrUnavailable),
		errors.Is(err, session.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	principalID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		PrincipalID: principalID,
		SessionID:   sessionID,
		IP:          clientIPFromContext(ctx),
		Success:     success,
		Metadata:    metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

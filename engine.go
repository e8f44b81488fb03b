package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/authcore/credential"
	"github.com/crewdesk/authcore/internal/limiters"
	"github.com/crewdesk/authcore/permission"
	"github.com/crewdesk/authcore/session"
	"github.com/crewdesk/authcore/token"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	directory    UserDirectory
	verifier     credential.Verifier
	issuer       *token.Issuer
	lockout      limiters.Guard
	sessionStore *session.Store
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close stops the audit dispatcher. Idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped due to a full
// buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies a principal's password and establishes a session.
//
// Unknown principals and wrong passwords return [ErrInvalidCredentials]
// with no distinction observable to the caller; a locked-out principal
// gets [ErrLockedOut] before any credential work happens. Each failed
// attempt counts exactly once toward lockout.
func (e *Engine) Login(ctx context.Context, principalID, password string) (*session.Session, error) {
	if e == nil || e.directory == nil {
		return nil, ErrEngineNotReady
	}

	// Lockout is checked before anything else, the empty-input fast path
	// included: a locked-out principal learns nothing about how its input
	// was judged, and the directory is never consulted.
	locked, err := e.lockout.Check(ctx, principalID)
	if err != nil {
		// Fail closed: unknown lockout state never admits a login.
		return nil, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if locked {
		e.metricInc(MetricLoginLockedOut)
		e.emitAudit(ctx, auditEventLoginLockedOut, false, principalID, "", ErrLockedOut, nil)
		return nil, ErrLockedOut
	}

	if principalID == "" || password == "" {
		return nil, e.failLogin(ctx, principalID)
	}

	record, err := e.directory.Lookup(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			// Burn a verification against the dummy hash so an unknown
			// principal costs roughly the same as a wrong password.
			_, _ = e.verifier.Verify(password, e.verifier.DummyHash())
			return nil, e.failLogin(ctx, principalID)
		}
		return nil, fmt.Errorf("directory lookup: %w", err)
	}

	ok, err := e.verifier.Verify(password, record.CredentialHash)
	if err != nil {
		// A stored hash the verifier cannot parse is a provisioning
		// defect, not a failed attempt.
		return nil, fmt.Errorf("credential verify: %w", err)
	}
	if !ok {
		return nil, e.failLogin(ctx, principalID)
	}

	if err := e.lockout.Reset(ctx, principalID); err != nil {
		log.Printf("authcore: lockout reset for %q failed: %v", principalID, err)
	}

	sess, err := e.establishSession(ctx, record)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, true, principalID, sess.SessionID, nil, nil)

	return sess, nil
}

// failLogin is the single funnel for failed attempts: wrong password and
// unknown principal both land here, so the failure counter moves exactly
// once per attempt and both paths return the identical error.
func (e *Engine) failLogin(ctx context.Context, principalID string) error {
	e.metricInc(MetricLoginFailure)

	lockedNow, err := e.lockout.RecordFailure(ctx, principalID)
	if err != nil {
		log.Printf("authcore: lockout record for %q failed: %v", principalID, err)
	} else if lockedNow {
		e.metricInc(MetricLockoutTriggered)
		e.emitAudit(ctx, auditEventLockoutTriggered, false, principalID, "", ErrLockedOut, nil)
	}

	e.emitAudit(ctx, auditEventLoginFailure, false, principalID, "", ErrInvalidCredentials, nil)
	return ErrInvalidCredentials
}

func (e *Engine) establishSession(ctx context.Context, record UserRecord) (*session.Session, error) {
	now := time.Now()
	sessionID := uuid.NewString()
	perms := record.Profile.Permissions.Names()

	input := token.ClaimsInput{
		PrincipalID: record.PrincipalID,
		SessionID:   sessionID,
		Role:        string(record.Profile.Role),
		Permissions: perms,
	}

	accessToken, err := e.issuer.Issue(input, token.KindAccess, e.config.Token.AccessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := e.issuer.Issue(input, token.KindRefresh, e.config.Token.RefreshTTL)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		SessionID:       sessionID,
		PrincipalID:     record.PrincipalID,
		DisplayName:     record.Profile.DisplayName,
		Role:            string(record.Profile.Role),
		Permissions:     perms,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		CreatedAt:       now.Unix(),
		RefreshedAt:     now.Unix(),
		AccessExpiresAt: now.Add(e.config.Token.AccessTTL).Unix(),
		ExpiresAt:       now.Add(e.config.Token.RefreshTTL).Unix(),
	}

	if e.sessionStore != nil {
		if err := e.sessionStore.Save(ctx, sess, e.config.Token.RefreshTTL); err != nil {
			// The record is bookkeeping; the signed tokens are the
			// authority. Losing the record must not fail the login.
			log.Printf("authcore: session record save failed: %v", err)
		}
	}

	return sess, nil
}

// Validate classifies a token pair: Authenticated while the access token
// verifies, NeedsRefresh once only the refresh token does, Invalid when
// neither is usable.
func (e *Engine) Validate(ctx context.Context, accessToken, refreshToken string) SessionStatus {
	if e == nil || e.issuer == nil {
		return StatusInvalid
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricValidateLatency, time.Since(start))
		}
	}()

	if _, err := e.issuer.VerifyKind(accessToken, token.KindAccess); err == nil {
		e.metricInc(MetricValidateAuthenticated)
		return StatusAuthenticated
	}

	if _, err := e.issuer.VerifyKind(refreshToken, token.KindRefresh); err == nil {
		e.metricInc(MetricValidateNeedsRefresh)
		return StatusNeedsRefresh
	}

	e.metricInc(MetricValidateInvalid)
	return StatusInvalid
}

// Authenticate verifies a bearer access token and returns the identity it
// carries. This is the per-request hot path: one signature check, no
// backend round trips.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*AuthResult, error) {
	if e == nil || e.issuer == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.issuer.VerifyKind(accessToken, token.KindAccess)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrTokenInvalid
	}

	return &AuthResult{
		PrincipalID: claims.PrincipalID,
		SessionID:   claims.SessionID,
		Role:        Role(claims.Role),
		Permissions: permission.NewSet(claims.Permissions...),
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is returned unchanged: its expiry bounds the
// session's total lifetime, and no rotation takes place.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*session.Session, error) {
	if e == nil || e.issuer == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.issuer.VerifyKind(refreshToken, token.KindRefresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if errors.Is(err, token.ErrExpired) {
			e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", ErrSessionExpired, nil)
			return nil, ErrSessionExpired
		}
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", ErrTokenInvalid, nil)
		return nil, ErrTokenInvalid
	}

	now := time.Now()
	input := token.ClaimsInput{
		PrincipalID: claims.PrincipalID,
		SessionID:   claims.SessionID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}

	accessToken, err := e.issuer.Issue(input, token.KindAccess, e.config.Token.AccessTTL)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	sess := e.refreshedSession(ctx, claims, accessToken, refreshToken, now)

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, claims.PrincipalID, claims.SessionID, nil, nil)

	return sess, nil
}

// refreshedSession updates the stored session record when one exists and
// otherwise reconstructs the session from the refresh claims alone.
func (e *Engine) refreshedSession(
	ctx context.Context,
	claims *token.Claims,
	accessToken, refreshToken string,
	now time.Time,
) *session.Session {
	accessExpiry := now.Add(e.config.Token.AccessTTL).Unix()
	refreshExpiry := claims.ExpiresAt.Unix()

	if e.sessionStore != nil && claims.SessionID != "" {
		stored, err := e.sessionStore.Get(ctx, claims.SessionID)
		if err == nil {
			stored.AccessToken = accessToken
			stored.RefreshedAt = now.Unix()
			stored.AccessExpiresAt = accessExpiry
			if ttl := time.Unix(stored.ExpiresAt, 0).Sub(now); ttl > 0 {
				if err := e.sessionStore.Touch(ctx, stored, ttl); err != nil {
					log.Printf("authcore: session record touch failed: %v", err)
				}
			}
			return stored
		}
		if !errors.Is(err, session.ErrNotFound) {
			log.Printf("authcore: session record get failed: %v", err)
		}
	}

	return &session.Session{
		SessionID:       claims.SessionID,
		PrincipalID:     claims.PrincipalID,
		Role:            claims.Role,
		Permissions:     claims.Permissions,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		CreatedAt:       claims.IssuedAt.Unix(),
		RefreshedAt:     now.Unix(),
		AccessExpiresAt: accessExpiry,
		ExpiresAt:       refreshExpiry,
	}
}

// Logout drops the session record for the presented token. Issued tokens
// remain cryptographically valid until expiry; logout cannot revoke them.
func (e *Engine) Logout(ctx context.Context, tokenStr string) error {
	if e == nil || e.issuer == nil {
		return ErrEngineNotReady
	}

	claims, err := e.issuer.Verify(tokenStr)
	if err != nil {
		return ErrTokenInvalid
	}

	if e.sessionStore != nil && claims.SessionID != "" {
		if err := e.sessionStore.Delete(ctx, claims.SessionID); err != nil {
			return fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogoutSession, true, claims.PrincipalID, claims.SessionID, nil, nil)

	return nil
}

// LogoutAll drops every session record for a principal. Requires a
// session store; without one there is nothing to drop.
func (e *Engine) LogoutAll(ctx context.Context, principalID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.sessionStore == nil || principalID == "" {
		return nil
	}

	if err := e.sessionStore.DeleteAllForPrincipal(ctx, principalID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogoutAll, true, principalID, "", nil, nil)

	return nil
}

// ActiveSessions lists the stored session records for a principal.
// Returns an empty slice when no session store is configured.
func (e *Engine) ActiveSessions(ctx context.Context, principalID string) ([]*session.Session, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.sessionStore == nil {
		return []*session.Session{}, nil
	}

	ids, err := e.sessionStore.ActiveSessionIDs(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}

	sessions := make([]*session.Session, 0, len(ids))
	for _, id := range ids {
		sess, err := e.sessionStore.Get(ctx, id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, nil
}

// HasPermission reports whether the authenticated identity holds the
// capability. Pure function over the claims frozen at issuance: directory
// changes do not apply until the next login or refresh.
func (e *Engine) HasPermission(res *AuthResult, capability string) bool {
	if res == nil {
		return false
	}
	return res.Permissions.Has(capability)
}

// Authorize is [Engine.HasPermission] plus observability: denials count
// and emit an audit event with the capability that was refused.
func (e *Engine) Authorize(ctx context.Context, res *AuthResult, capability string) bool {
	if e.HasPermission(res, capability) {
		return true
	}

	e.metricInc(MetricPermissionDenied)

	var principalID string
	if res != nil {
		principalID = res.PrincipalID
	}
	e.emitAudit(ctx, auditEventPermissionDenied, false, principalID, "", nil, func() map[string]string {
		return map[string]string{"capability": capability}
	})

	return false
}

package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateNeedsRefresh(t *testing.T) {
	ctx := context.Background()
	// Nanosecond access TTL: the access token is expired by the time it
	// is checked, while the refresh token stays valid.
	engine := newTestEngine(t, nil, withTTLs(time.Nanosecond, 7*24*time.Hour))

	sess, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if status := engine.Validate(ctx, sess.AccessToken, sess.RefreshToken); status != StatusNeedsRefresh {
		t.Fatalf("Validate = %v, want needs_refresh", status)
	}
}

func TestValidateInvalidWhenBothExpired(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil, withTTLs(time.Nanosecond, time.Nanosecond))

	sess, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if status := engine.Validate(ctx, sess.AccessToken, sess.RefreshToken); status != StatusInvalid {
		t.Fatalf("Validate = %v, want invalid", status)
	}
}

func TestValidateGarbage(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil)

	if status := engine.Validate(ctx, "garbage", "more-garbage"); status != StatusInvalid {
		t.Fatalf("Validate = %v, want invalid", status)
	}
	if status := engine.Validate(ctx, "", ""); status != StatusInvalid {
		t.Fatalf("Validate = %v, want invalid", status)
	}
}

func TestValidateSwappedKinds(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil)

	sess, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A refresh token in the access slot must not authenticate, but the
	// valid refresh token in its own slot still allows refresh.
	if status := engine.Validate(ctx, sess.RefreshToken, sess.RefreshToken); status != StatusNeedsRefresh {
		t.Fatalf("Validate = %v, want needs_refresh", status)
	}
}

func TestRefreshPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	engine := newTestEngine(t, client)

	orig, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := engine.Refresh(ctx, orig.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if refreshed.PrincipalID != "alice" || refreshed.Role != "manager" {
		t.Fatalf("identity changed on refresh: %+v", refreshed)
	}
	if refreshed.SessionID != orig.SessionID {
		t.Fatalf("session ID changed: %q != %q", refreshed.SessionID, orig.SessionID)
	}
	if len(refreshed.Permissions) != len(orig.Permissions) {
		t.Fatalf("permissions changed: %v != %v", refreshed.Permissions, orig.Permissions)
	}

	// No rotation: the refresh token survives unchanged.
	if refreshed.RefreshToken != orig.RefreshToken {
		t.Fatal("refresh token rotated")
	}
	if refreshed.AccessToken == orig.AccessToken {
		t.Fatal("access token not reissued")
	}

	if _, err := engine.Authenticate(ctx, refreshed.AccessToken); err != nil {
		t.Fatalf("new access token rejected: %v", err)
	}
}

func TestRefreshUpdatesStoredRecord(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	engine := newTestEngine(t, client)

	orig, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := engine.Refresh(ctx, orig.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	sessions, err := engine.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session record, got %d", len(sessions))
	}
	if sessions[0].AccessToken != refreshed.AccessToken {
		t.Fatal("stored record not updated with new access token")
	}
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil)

	sess, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.Refresh(ctx, sess.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Refresh(access) = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshExpired(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil, withTTLs(time.Nanosecond, time.Nanosecond))

	sess, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.Refresh(ctx, sess.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Refresh(expired) = %v, want ErrSessionExpired", err)
	}
}

func TestRefreshGarbage(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, nil)

	for _, in := range []string{"", "garbage", "a.b.c"} {
		if _, err := engine.Refresh(ctx, in); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Refresh(%q) = %v, want ErrTokenInvalid", in, err)
		}
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	engine := newTestEngine(t, client)

	sess, err := engine.Login(ctx, "alice", "alice-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := engine.Logout(ctx, sess.AccessToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	sessions, err := engine.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("session record survived logout: %+v", sessions)
	}

	// Stateless tokens stay verifiable after logout; only the record is
	// gone. This is the documented no-revocation limitation.
	if _, err := engine.Authenticate(ctx, sess.AccessToken); err != nil {
		t.Fatalf("Authenticate after logout = %v, want nil", err)
	}

	if err := engine.Logout(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Logout(garbage) = %v, want ErrTokenInvalid", err)
	}
}

func TestLogoutAll(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	engine := newTestEngine(t, client)

	if _, err := engine.Login(ctx, "alice", "alice-password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "alice-password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	sessions, err := engine.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 session records, got %d", len(sessions))
	}

	if err := engine.LogoutAll(ctx, "alice"); err != nil {
		t.Fatalf("LogoutAll failed: %v", err)
	}

	sessions, err = engine.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("session records survived LogoutAll: %+v", sessions)
	}
}

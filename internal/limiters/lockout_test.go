package limiters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testConfig() Config {
	return Config{Threshold: 5, Duration: 15 * time.Minute}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed to start: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func runGuardThresholdTest(t *testing.T, guard Guard) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		locked, err := guard.RecordFailure(ctx, "alice")
		if err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i+1, err)
		}
		if locked {
			t.Fatalf("locked after %d failures, threshold is 5", i+1)
		}
	}

	locked, err := guard.RecordFailure(ctx, "alice")
	if err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if !locked {
		t.Fatal("not locked after 5 failures")
	}

	locked, err = guard.Check(ctx, "alice")
	if err != nil || !locked {
		t.Fatalf("Check = (%v, %v), want (true, nil)", locked, err)
	}

	// Other principals are unaffected.
	locked, err = guard.Check(ctx, "bob")
	if err != nil || locked {
		t.Fatalf("Check(bob) = (%v, %v), want (false, nil)", locked, err)
	}
}

func runGuardResetTest(t *testing.T, guard Guard) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := guard.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := guard.Reset(ctx, "alice"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	// Counter starts over: four fresh failures stay below threshold.
	for i := 0; i < 4; i++ {
		locked, err := guard.RecordFailure(ctx, "alice")
		if err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
		if locked {
			t.Fatalf("locked after reset + %d failures", i+1)
		}
	}
}

func TestMemoryGuardThreshold(t *testing.T) {
	runGuardThresholdTest(t, NewMemoryGuard(testConfig()))
}

func TestMemoryGuardReset(t *testing.T) {
	runGuardResetTest(t, NewMemoryGuard(testConfig()))
}

func TestMemoryGuardLazyExpiry(t *testing.T) {
	ctx := context.Background()

	current := time.Now()
	guard := NewMemoryGuard(testConfig())
	guard.now = func() time.Time { return current }

	for i := 0; i < 5; i++ {
		if _, err := guard.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if locked, _ := guard.Check(ctx, "alice"); !locked {
		t.Fatal("not locked after threshold")
	}

	// One second shy of the window: still locked.
	current = current.Add(15*time.Minute - time.Second)
	if locked, _ := guard.Check(ctx, "alice"); !locked {
		t.Fatal("lockout expired early")
	}

	current = current.Add(2 * time.Second)
	if locked, _ := guard.Check(ctx, "alice"); locked {
		t.Fatal("lockout survived its window")
	}

	// The expired counter is gone entirely, not just unlocked.
	locked, err := guard.RecordFailure(ctx, "alice")
	if err != nil || locked {
		t.Fatalf("RecordFailure after expiry = (%v, %v), want (false, nil)", locked, err)
	}
}

func TestMemoryGuardWindowAnchoredAtLastFailure(t *testing.T) {
	ctx := context.Background()

	current := time.Now()
	guard := NewMemoryGuard(testConfig())
	guard.now = func() time.Time { return current }

	// Five failures spread over 12 minutes. Each one restarts the window,
	// so the counter never expires between them even though the span
	// exceeds no single 15-minute stretch without a failure.
	for i := 0; i < 5; i++ {
		locked, err := guard.RecordFailure(ctx, "alice")
		if err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i+1, err)
		}
		if want := i == 4; locked != want {
			t.Fatalf("RecordFailure %d locked = %v, want %v", i+1, locked, want)
		}
		if i < 4 {
			current = current.Add(3 * time.Minute)
		}
	}

	// Four minutes past the last failure: still inside its window.
	current = current.Add(4 * time.Minute)
	if locked, _ := guard.Check(ctx, "alice"); !locked {
		t.Fatal("lockout expired before the last failure's window")
	}

	// A full window after the last failure: clear.
	current = current.Add(11*time.Minute + time.Second)
	if locked, _ := guard.Check(ctx, "alice"); locked {
		t.Fatal("lockout survived a full quiet window")
	}
}

func TestRedisGuardWindowAnchoredAtLastFailure(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	guard := NewRedisGuard(client, testConfig())

	for i := 0; i < 5; i++ {
		locked, err := guard.RecordFailure(ctx, "alice")
		if err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i+1, err)
		}
		if want := i == 4; locked != want {
			t.Fatalf("RecordFailure %d locked = %v, want %v", i+1, locked, want)
		}
		if i < 4 {
			mr.FastForward(3 * time.Minute)
		}
	}

	mr.FastForward(4 * time.Minute)
	if locked, _ := guard.Check(ctx, "alice"); !locked {
		t.Fatal("lockout expired before the last failure's window")
	}

	mr.FastForward(11*time.Minute + time.Second)
	if locked, _ := guard.Check(ctx, "alice"); locked {
		t.Fatal("lockout survived a full quiet window")
	}
}

func TestMemoryGuardConcurrentFailures(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryGuard(Config{Threshold: 1000, Duration: time.Hour})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := guard.RecordFailure(ctx, "alice"); err != nil {
					t.Errorf("RecordFailure failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	guard.mu.Lock()
	count := guard.entries["alice"].count
	guard.mu.Unlock()

	if count != 500 {
		t.Fatalf("count = %d, want 500 (lost increments)", count)
	}
}

func TestRedisGuardThreshold(t *testing.T) {
	_, client := newTestRedis(t)
	runGuardThresholdTest(t, NewRedisGuard(client, testConfig()))
}

func TestRedisGuardReset(t *testing.T) {
	_, client := newTestRedis(t)
	runGuardResetTest(t, NewRedisGuard(client, testConfig()))
}

func TestRedisGuardWindowExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	guard := NewRedisGuard(client, testConfig())

	for i := 0; i < 5; i++ {
		if _, err := guard.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if locked, _ := guard.Check(ctx, "alice"); !locked {
		t.Fatal("not locked after threshold")
	}

	mr.FastForward(15*time.Minute + time.Second)

	locked, err := guard.Check(ctx, "alice")
	if err != nil || locked {
		t.Fatalf("Check after window = (%v, %v), want (false, nil)", locked, err)
	}
}

func TestRedisGuardBackendDown(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	guard := NewRedisGuard(client, testConfig())

	mr.Close()

	if _, err := guard.Check(ctx, "alice"); err == nil {
		t.Fatal("expected backend error from Check")
	}
	if _, err := guard.RecordFailure(ctx, "alice"); err == nil {
		t.Fatal("expected backend error from RecordFailure")
	}
}

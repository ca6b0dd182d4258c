package auth

import (
	"testing"
	"time"
)

func TestLimiterAllowsWithinLimit(t *testing.T) {
	now := testNow()
	limiter := NewLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("ip:login", now)
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	allowed, retryAfter := limiter.Allow("ip:login", now.Add(10*time.Second))
	if allowed {
		t.Fatal("fourth attempt should be denied")
	}
	if retryAfter != 50*time.Second {
		t.Fatalf("retry after = %v, want 50s", retryAfter)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	now := testNow()
	limiter := NewLimiter(1, time.Minute)

	if allowed, _ := limiter.Allow("k", now); !allowed {
		t.Fatal("first attempt should be allowed")
	}
	if allowed, _ := limiter.Allow("k", now.Add(30*time.Second)); allowed {
		t.Fatal("second attempt in window should be denied")
	}
	if allowed, _ := limiter.Allow("k", now.Add(time.Minute)); !allowed {
		t.Fatal("attempt after window should be allowed")
	}
}

func TestLimiterKeysIndependent(t *testing.T) {
	now := testNow()
	limiter := NewLimiter(1, time.Minute)

	limiter.Allow("a", now)
	if allowed, _ := limiter.Allow("b", now); !allowed {
		t.Fatal("keys should not share windows")
	}
}

func TestLimiterSweep(t *testing.T) {
	now := testNow()
	limiter := NewLimiter(5, time.Minute)
	limiter.Allow("stale", now)
	limiter.Allow("fresh", now.Add(50*time.Second))

	removed := limiter.Sweep(now.Add(70 * time.Second))
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestLimiterBlockedAndRecord(t *testing.T) {
	now := testNow()
	limiter := NewLimiter(2, time.Minute)

	// Blocked never consumes an attempt.
	for i := 0; i < 5; i++ {
		if blocked, _ := limiter.Blocked("k", now); blocked {
			t.Fatalf("check %d should not block", i+1)
		}
	}

	limiter.Record("k", now)
	if blocked, _ := limiter.Blocked("k", now); blocked {
		t.Fatal("one recorded attempt should not block")
	}
	limiter.Record("k", now.Add(10*time.Second))

	blocked, retryAfter := limiter.Blocked("k", now.Add(20*time.Second))
	if !blocked {
		t.Fatal("limit reached, should block")
	}
	if retryAfter != 40*time.Second {
		t.Fatalf("retry after = %v, want 40s", retryAfter)
	}

	// The window resets from the first recorded attempt.
	if blocked, _ := limiter.Blocked("k", now.Add(time.Minute)); blocked {
		t.Fatal("expired window should not block")
	}
	limiter.Record("k", now.Add(time.Minute))
	if blocked, _ := limiter.Blocked("k", now.Add(time.Minute)); blocked {
		t.Fatal("fresh window with one attempt should not block")
	}
}

func TestLimiterNilSafe(t *testing.T) {
	var limiter *Limiter
	if allowed, _ := limiter.Allow("k", testNow()); !allowed {
		t.Fatal("nil limiter should allow")
	}
	if blocked, _ := limiter.Blocked("k", testNow()); blocked {
		t.Fatal("nil limiter should not block")
	}
	limiter.Record("k", testNow())
	if removed := limiter.Sweep(testNow()); removed != 0 {
		t.Fatalf("nil sweep removed %d", removed)
	}
}

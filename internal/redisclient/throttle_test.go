package redisclient

import (
	"context"
	"testing"
	"time"
)

// A nil throttle is how the service runs without redis configured; every
// method must be a safe no-op.
func TestNilThrottleIsNoOp(t *testing.T) {
	var throttle *LoginThrottle
	ctx := context.Background()

	allowed, retryAfter, err := throttle.Allow(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("nil throttle Allow errored: %v", err)
	}
	if !allowed {
		t.Fatalf("nil throttle must allow")
	}
	if retryAfter != 0 {
		t.Fatalf("nil throttle retryAfter: got %v want 0", retryAfter)
	}

	if err := throttle.RecordFailure(ctx, "ada@example.com"); err != nil {
		t.Fatalf("nil throttle RecordFailure errored: %v", err)
	}
	if err := throttle.Reset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("nil throttle Reset errored: %v", err)
	}
}

func TestNewLoginThrottleDefaults(t *testing.T) {
	throttle := NewLoginThrottle(nil, 0, 0)

	if throttle.limit != 10 {
		t.Fatalf("limit default: got %d want 10", throttle.limit)
	}
	if throttle.window != 15*time.Minute {
		t.Fatalf("window default: got %v want 15m", throttle.window)
	}
}

func TestThrottleKeyIsCaseInsensitive(t *testing.T) {
	throttle := NewLoginThrottle(nil, 10, time.Minute)

	upper := throttle.key("Ada@Example.COM")
	lower := throttle.key("ada@example.com")

	if upper != lower {
		t.Fatalf("keys must normalize case: %q vs %q", upper, lower)
	}
	if lower != "login:attempts:ada@example.com" {
		t.Fatalf("unexpected key shape: %q", lower)
	}
}

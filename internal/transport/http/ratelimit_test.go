package http

import (
	"testing"
	"time"
)

func TestKeyedLimiterPerKeyAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if l.allow("10.0.0.1") {
		t.Fatalf("fourth attempt inside the window should be refused")
	}
	if !l.allow("10.0.0.2") {
		t.Fatalf("other keys have their own budget")
	}

	// One token refills every window/attempts.
	now = now.Add(20 * time.Second)
	if !l.allow("10.0.0.1") {
		t.Fatalf("expected a refilled token")
	}

	now = now.Add(2 * time.Minute)
	l.allow("10.0.0.3")
	if _, ok := l.entries["10.0.0.2"]; ok {
		t.Fatalf("idle keys should be swept")
	}
}

func TestEventLimiterDisabled(t *testing.T) {
	l := newEventLimiter(0, 0)
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatalf("disabled limiter refused event %d", i)
		}
	}

	l = newEventLimiter(1, 2)
	if !l.Allow() || !l.Allow() {
		t.Fatalf("burst should be available")
	}
	if l.Allow() {
		t.Fatalf("expected limiter to refuse after burst")
	}
}

package rate_limiter

import (
	"context"
	"testing"
	"time"
)

func TestGetVisitor(t *testing.T) {
	t.Cleanup(func() {
		CleanupAllVisitors()
		Configure(5, 10)
	})
	Configure(1, 2)

	l := GetVisitor("10.0.0.1")
	if !l.Allow() || !l.Allow() {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow() {
		t.Error("expected third request to be limited")
	}

	if GetVisitor("10.0.0.1") != l {
		t.Error("expected the same limiter for the same client")
	}
	if VisitorCount() != 1 {
		t.Errorf("expected 1 visitor, got %d", VisitorCount())
	}
}

func TestRegistryEvictsIdle(t *testing.T) {
	g := NewRegistry(1, 1)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return clock }

	g.Limiter("10.0.0.2")
	clock = clock.Add(10 * time.Minute)
	g.Limiter("10.0.0.3")

	g.evictIdle(visitorIdleTimeout)

	if g.Len() != 1 {
		t.Errorf("expected 1 visitor after eviction, got %d", g.Len())
	}
}

func TestRegistryRunStops(t *testing.T) {
	g := NewRegistry(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

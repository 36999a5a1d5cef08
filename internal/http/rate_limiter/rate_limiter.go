// Package rate_limiter keeps one token bucket per client address.
package rate_limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorIdleTimeout = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Registry hands out limiters keyed by client and forgets idle clients.
type Registry struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRegistry(rps float64, burst int) *Registry {
	return &Registry{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: map[string]*visitor{},
		now:      time.Now,
	}
}

var defaultRegistry = NewRegistry(5, 10)

// Configure sets the per-client rate for limiters created from now on.
func Configure(rps float64, burst int) { defaultRegistry.Configure(rps, burst) }

// GetVisitor returns the limiter for ip, creating it on first sight.
func GetVisitor(ip string) *rate.Limiter { return defaultRegistry.Limiter(ip) }

// StartVisitorCleanupLoop forgets idle clients every minute until ctx is done.
func StartVisitorCleanupLoop(ctx context.Context) { defaultRegistry.Run(ctx, time.Minute) }

func CleanupAllVisitors() { defaultRegistry.Reset() }

func VisitorCount() int { return defaultRegistry.Len() }

func (g *Registry) Configure(rps float64, burst int) {
	g.mu.Lock()
	g.rps, g.burst = rate.Limit(rps), burst
	g.mu.Unlock()
}

func (g *Registry) Limiter(key string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(g.rps, g.burst)}
		g.visitors[key] = v
	}
	v.lastSeen = g.now()
	return v.limiter
}

// Run evicts idle visitors on every tick.
func (g *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.evictIdle(visitorIdleTimeout)
		}
	}
}

func (g *Registry) evictIdle(idle time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := g.now().Add(-idle)
	for key, v := range g.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(g.visitors, key)
		}
	}
}

func (g *Registry) Reset() {
	g.mu.Lock()
	g.visitors = map[string]*visitor{}
	g.mu.Unlock()
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.visitors)
}

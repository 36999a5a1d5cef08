package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/realtime"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WatchedTables are the tables whose changes invalidate the dashboard.
var WatchedTables = []string{realtime.TableProducts, realtime.TableSuppliers, realtime.TableCategories}

// ErrStaleRefresh is returned when a refresh finished after a newer one was
// issued. Its result is dropped.
var ErrStaleRefresh = errors.New("dashboard refresh superseded by a newer one")

// Fetcher loads the raw dashboard input. since bounds the movement history.
type Fetcher interface {
	Fetch(ctx context.Context, since time.Time) (Dataset, error)
}

// Cache keeps the latest snapshot outside the process.
type Cache interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Store(ctx context.Context, snap Snapshot) error
}

// Publisher pushes installed snapshots to live viewers.
type Publisher interface {
	PublishSnapshot(snap Snapshot)
}

// Subscriber is the change listener a Service mounts on.
type Subscriber interface {
	Subscribe(ctx context.Context, tables []string, onInvalidate func(ctx context.Context)) (*realtime.Subscription, error)
}

// Service owns the current snapshot. Every refresh takes a sequence number
// when it starts; only a refresh that is still the latest issued when it
// completes is installed.
type Service struct {
	fetcher   Fetcher
	cache     Cache
	publisher Publisher
	opts      Options
	now       func() time.Time

	issued  atomic.Uint64
	mu      sync.RWMutex
	current *Snapshot

	// emitMu orders cache writes and broadcasts without holding mu.
	emitMu  sync.Mutex
	emitted uint64

	refreshes metric.Int64Counter
}

// NewService builds a Service. cache and publisher may be nil.
func NewService(fetcher Fetcher, opts Options, cache Cache, publisher Publisher) *Service {
	meter := otel.Meter("github.com/rogerio-castellano/inventory-master/internal/dashboard")
	refreshes, err := meter.Int64Counter("dashboard.refreshes",
		metric.WithDescription("Dashboard refreshes by outcome"))
	if err != nil {
		log.Warn().Err(err).Msg("could not create dashboard.refreshes counter")
	}

	return &Service{
		fetcher:   fetcher,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
		refreshes: refreshes,
	}
}

func (s *Service) record(ctx context.Context, outcome string) {
	if s.refreshes != nil {
		s.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// Refresh refetches everything and rebuilds the snapshot. A failed fetch
// leaves the previous snapshot in place and is not retried.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	seq := s.issued.Add(1)
	now := s.now()

	ds, err := s.fetcher.Fetch(ctx, TrendStart(now, s.opts.TrendDays))
	if err != nil {
		s.record(ctx, "failed")
		return Snapshot{}, fmt.Errorf("fetch dashboard data: %w", err)
	}

	snap := Build(ds, s.opts, now)
	snap.Sequence = seq

	if !s.install(&snap) {
		s.record(ctx, "discarded")
		log.Debug().Uint64("sequence", seq).Uint64("latest", s.issued.Load()).Msg("discarding stale dashboard refresh")
		return Snapshot{}, ErrStaleRefresh
	}
	s.record(ctx, "installed")
	s.emit(ctx, snap)

	log.Debug().Uint64("sequence", seq).Int("products", snap.Stats.TotalProducts).Msg("dashboard snapshot installed")
	return snap, nil
}

// install swaps in snap if its sequence is still the latest issued.
func (s *Service) install(snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Sequence != s.issued.Load() || (s.current != nil && s.current.Sequence > snap.Sequence) {
		return false
	}
	s.current = snap
	return true
}

// emit writes snap to the cache and the publisher unless a newer snapshot
// already went out.
func (s *Service) emit(ctx context.Context, snap Snapshot) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if snap.Sequence < s.emitted {
		return
	}
	s.emitted = snap.Sequence

	if s.cache != nil {
		if err := s.cache.Store(ctx, snap); err != nil {
			log.Warn().Err(err).Uint64("sequence", snap.Sequence).Msg("could not cache dashboard snapshot")
		}
	}
	if s.publisher != nil {
		s.publisher.PublishSnapshot(snap)
	}
}

// Current returns the installed snapshot, falling back to the cache and then
// to a synchronous refresh.
func (s *Service) Current(ctx context.Context) (Snapshot, error) {
	if snap, ok := s.installed(); ok {
		return snap, nil
	}

	if s.cache != nil {
		snap, ok, err := s.cache.Load(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("could not load cached dashboard snapshot")
		} else if ok {
			return snap, nil
		}
	}

	snap, err := s.Refresh(ctx)
	if errors.Is(err, ErrStaleRefresh) {
		if installed, ok := s.installed(); ok {
			return installed, nil
		}
	}
	return snap, err
}

func (s *Service) installed() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return *s.current, true
}

// Mount computes the first snapshot and keeps it fresh: every change on
// WatchedTables triggers a full refresh. Closing the returned subscription
// unmounts the service.
func (s *Service) Mount(ctx context.Context, listener Subscriber) (*realtime.Subscription, error) {
	if _, err := s.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("initial dashboard refresh failed")
	}

	sub, err := listener.Subscribe(ctx, WatchedTables, func(ctx context.Context) {
		if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleRefresh) {
			log.Error().Err(err).Msg("dashboard refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("mount dashboard: %w", err)
	}
	return sub, nil
}

package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Manager multiplexes table-scoped change events into a single invalidate
// signal per subscription.
type Manager struct {
	source  Source
	changes metric.Int64Counter
}

func NewManager(source Source) *Manager {
	meter := otel.Meter("github.com/rogerio-castellano/inventory-master/internal/realtime")
	changes, err := meter.Int64Counter("realtime.changes",
		metric.WithDescription("Change notifications received per table"))
	if err != nil {
		log.Warn().Err(err).Msg("could not create realtime.changes counter")
	}
	return &Manager{source: source, changes: changes}
}

// Subscription is a live listener. Close releases it.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops the subscription and waits for an in-flight callback to
// return. No callback runs after Close returns. It must not be called from
// inside the callback.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Done is closed once the subscription has stopped, either through Close or
// because the source dropped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe listens on tables and calls onInvalidate once per burst of
// changes. Changes arriving while onInvalidate runs collapse into a single
// follow-up call, so callbacks never overlap.
func (m *Manager) Subscribe(ctx context.Context, tables []string, onInvalidate func(ctx context.Context)) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	events, err := m.source.Listen(subCtx, tables)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to %v: %w", tables, err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	invalidate := make(chan struct{}, 1)

	go func() {
		defer close(invalidate)
		for c := range events {
			log.Debug().Str("table", c.Table).Str("op", string(c.Op)).Msg("change received")
			if m.changes != nil {
				m.changes.Add(subCtx, 1, metric.WithAttributes(attribute.String("table", c.Table)))
			}
			select {
			case invalidate <- struct{}{}:
			default:
			}
		}
		if subCtx.Err() == nil {
			log.Warn().Strs("tables", tables).Msg("change subscription dropped by source")
		}
	}()

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-invalidate:
				if !ok || subCtx.Err() != nil {
					return
				}
				onInvalidate(subCtx)
			}
		}
	}()

	return sub, nil
}

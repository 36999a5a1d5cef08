package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type memoryListener struct {
	tables map[string]bool
	events chan Change
}

// MemorySource is an in-process Source fed by Publish. It backs the
// in-memory repositories.
type MemorySource struct {
	mu        sync.RWMutex
	listeners map[int]*memoryListener
	nextID    int
}

func NewMemorySource() *MemorySource {
	return &MemorySource{listeners: make(map[int]*memoryListener)}
}

func (s *MemorySource) Listen(ctx context.Context, tables []string) (<-chan Change, error) {
	l := &memoryListener{
		tables: make(map[string]bool, len(tables)),
		events: make(chan Change, 64),
	}
	for _, t := range tables {
		l.tables[t] = true
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.listeners, id)
		close(l.events)
		s.mu.Unlock()
	}()

	return l.events, nil
}

// Publish fans c out to every listener watching its table. Full listener
// buffers drop the event; one pending event is enough to trigger a refetch.
func (s *MemorySource) Publish(c Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, l := range s.listeners {
		if !l.tables[c.Table] {
			continue
		}
		select {
		case l.events <- c:
		default:
			log.Warn().Int("listener", id).Str("table", c.Table).Msg("change listener buffer full, dropping event")
		}
	}
}

func (s *MemorySource) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

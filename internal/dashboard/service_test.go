package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	gates map[int]chan struct{}
	sets  map[int]Dataset
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context, since time.Time) (Dataset, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	gate := f.gates[call]
	ds := f.sets[call]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Dataset{}, ctx.Err()
		}
	}
	return ds, err
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memoryCache struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (c *memoryCache) Load(context.Context) (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return Snapshot{}, false, nil
	}
	return *c.snap, true, nil
}

func (c *memoryCache) Store(_ context.Context, snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = &snap
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	sequences []uint64
}

func (p *recordingPublisher) PublishSnapshot(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sequences = append(p.sequences, snap.Sequence)
}

func (p *recordingPublisher) Sequences() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint64(nil), p.sequences...)
}

func datasetOf(n int) Dataset {
	ds := Dataset{}
	for i := 0; i < n; i++ {
		ds.Products = append(ds.Products, product("p", 1, 1, 0))
	}
	return ds
}

func TestRefresh_InstallsCachesAndPublishes(t *testing.T) {
	fetcher := &stubFetcher{sets: map[int]Dataset{1: datasetOf(3)}}
	cache := &memoryCache{}
	pub := &recordingPublisher{}
	svc := NewService(fetcher, DefaultOptions(), cache, pub)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Sequence)
	assert.Equal(t, 3, snap.Stats.TotalProducts)
	assert.Len(t, snap.Trend, 7)

	cached, ok, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), cached.Sequence)
	assert.Equal(t, []uint64{1}, pub.Sequences())

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), current.Sequence)
	assert.Equal(t, 1, fetcher.Calls())
}

func TestRefresh_StaleResultIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &stubFetcher{
		gates: map[int]chan struct{}{1: gate},
		sets:  map[int]Dataset{1: datasetOf(1), 2: datasetOf(2)},
	}
	pub := &recordingPublisher{}
	svc := NewService(fetcher, DefaultOptions(), nil, pub)

	type result struct {
		snap Snapshot
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		snap, err := svc.Refresh(context.Background())
		slow <- result{snap, err}
	}()

	require.Eventually(t, func() bool { return fetcher.Calls() == 1 }, time.Second, 5*time.Millisecond)

	fresh, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fresh.Sequence)

	close(gate)
	res := <-slow
	assert.ErrorIs(t, res.err, ErrStaleRefresh)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), current.Sequence)
	assert.Equal(t, 2, current.Stats.TotalProducts)
	assert.Equal(t, []uint64{2}, pub.Sequences())
}

// stallingCache blocks every Store until release is closed.
type stallingCache struct {
	memoryCache
	entered chan struct{}
	release chan struct{}
}

func (c *stallingCache) Store(ctx context.Context, snap Snapshot) error {
	c.entered <- struct{}{}
	<-c.release
	return c.memoryCache.Store(ctx, snap)
}

func TestCurrent_NotBlockedBySlowCacheWrite(t *testing.T) {
	fetcher := &stubFetcher{sets: map[int]Dataset{1: datasetOf(2)}}
	cache := &stallingCache{entered: make(chan struct{}, 1), release: make(chan struct{})}
	pub := &recordingPublisher{}
	svc := NewService(fetcher, DefaultOptions(), cache, pub)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		done <- err
	}()

	select {
	case <-cache.entered:
	case <-time.After(time.Second):
		t.Fatal("refresh never reached the cache")
	}

	got := make(chan Snapshot, 1)
	go func() {
		snap, _ := svc.Current(context.Background())
		got <- snap
	}()
	select {
	case snap := <-got:
		assert.Equal(t, uint64(1), snap.Sequence)
		assert.Equal(t, 2, snap.Stats.TotalProducts)
	case <-time.After(time.Second):
		t.Fatal("Current waited for the cache write")
	}

	close(cache.release)
	require.NoError(t, <-done)
	assert.Equal(t, []uint64{1}, pub.Sequences())
}

func TestRefresh_FetchErrorKeepsPreviousSnapshot(t *testing.T) {
	fetcher := &stubFetcher{sets: map[int]Dataset{1: datasetOf(4)}}
	svc := NewService(fetcher, DefaultOptions(), nil, nil)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	fetcher.mu.Lock()
	fetcher.err = errors.New("connection refused")
	fetcher.mu.Unlock()

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleRefresh)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, current.Stats.TotalProducts)
	assert.Equal(t, 2, fetcher.Calls(), "failed fetches are not retried")
}

func TestCurrent_FallsBackToCache(t *testing.T) {
	fetcher := &stubFetcher{}
	cache := &memoryCache{snap: &Snapshot{Sequence: 42}}
	svc := NewService(fetcher, DefaultOptions(), cache, nil)

	snap, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), snap.Sequence)
	assert.Zero(t, fetcher.Calls())
}

func TestMount_RefreshesOnChange(t *testing.T) {
	source := realtime.NewMemorySource()
	fetcher := &stubFetcher{}
	pub := &recordingPublisher{}
	svc := NewService(fetcher, DefaultOptions(), nil, pub)

	sub, err := svc.Mount(context.Background(), realtime.NewManager(source))
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, 1, fetcher.Calls())

	source.Publish(realtime.Change{Table: realtime.TableProducts, Op: realtime.OpUpdate})
	require.Eventually(t, func() bool { return len(pub.Sequences()) >= 2 }, time.Second, 5*time.Millisecond)

	sub.Close()
	calls := fetcher.Calls()
	source.Publish(realtime.Change{Table: realtime.TableSuppliers, Op: realtime.OpInsert})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, fetcher.Calls())
}

func TestBuild_UsesOptions(t *testing.T) {
	products := []models.Product{
		product("a", 1, 0, 5),
		product("b", 1, 1, 5),
		product("c", 1, 2, 5),
	}
	snap := Build(Dataset{Products: products}, Options{TopN: 2, LowStockLimit: 1, TrendDays: 3}, time.Now())

	assert.Len(t, snap.TopProducts, 2)
	assert.Len(t, snap.LowStockItems, 1)
	assert.Len(t, snap.Trend, 3)
	assert.Len(t, snap.StockLevels, 3)
	assert.Equal(t, 3, snap.Stats.LowStockProducts)
}

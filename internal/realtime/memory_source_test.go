package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource_DeliversWatchedTablesOnly(t *testing.T) {
	src := NewMemorySource()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := src.Listen(ctx, []string{TableProducts})
	require.NoError(t, err)

	src.Publish(Change{Table: TableSuppliers, Op: OpInsert})
	src.Publish(Change{Table: TableProducts, Op: OpDelete})

	select {
	case c := <-events:
		assert.Equal(t, Change{Table: TableProducts, Op: OpDelete}, c)
	case <-time.After(time.Second):
		t.Fatal("expected a products change")
	}

	select {
	case c := <-events:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestMemorySource_ClosesOnCancel(t *testing.T) {
	src := NewMemorySource()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := src.Listen(ctx, []string{TableProducts})
	require.NoError(t, err)
	assert.Equal(t, 1, src.ListenerCount())

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
	assert.Equal(t, 0, src.ListenerCount())

	src.Publish(Change{Table: TableProducts, Op: OpInsert})
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "products_changes", ChannelName(TableProducts))
	assert.Equal(t, TableCategories, TableFromChannel(ChannelName(TableCategories)))
}

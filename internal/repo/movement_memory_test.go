package repo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMovements_OrderAndPaging(t *testing.T) {
	r := NewInMemoryMovementRepository()
	pid := uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	r.AddMovement(pid, 1, base)
	r.AddMovement(pid, 2, base.Add(time.Hour))
	r.AddMovement(pid, 3, base.Add(time.Hour))
	r.AddMovement(pid, 4, base.Add(2*time.Hour))
	r.AddMovement(uuid.New(), 99, base)

	all, total, err := r.GetByProductID(t.Context(), pid, MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	deltas := make([]int, len(all))
	for i, m := range all {
		deltas[i] = m.Delta
	}
	assert.Equal(t, []int{4, 3, 2, 1}, deltas)

	offset, limit := 1, 2
	page, total, err := r.GetByProductID(t.Context(), pid, MovementFilter{Offset: &offset, Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].Delta)
	assert.Equal(t, 2, page[1].Delta)

	far := 10
	page, total, err = r.GetByProductID(t.Context(), pid, MovementFilter{Offset: &far})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, page)
}

func TestInMemoryMovements_DateRangeInclusive(t *testing.T) {
	r := NewInMemoryMovementRepository()
	pid := uuid.New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		r.AddMovement(pid, i+1, base.AddDate(0, 0, i))
	}

	since, until := base.AddDate(0, 0, 1), base.AddDate(0, 0, 3)
	got, total, err := r.GetByProductID(t.Context(), pid, MovementFilter{Since: &since, Until: &until})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 3)
	assert.Equal(t, 4, got[0].Delta)
	assert.Equal(t, 2, got[2].Delta)

	recent, err := r.ListSince(t.Context(), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 4, recent[0].Delta)
	assert.Equal(t, 5, recent[1].Delta)
}

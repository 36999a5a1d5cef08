package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 5, cfg.Dashboard.TopN)
	assert.Equal(t, 5, cfg.Dashboard.LowStockLimit)
	assert.Equal(t, 7, cfg.Dashboard.TrendDays)
	assert.Equal(t, 10*time.Minute, cfg.Dashboard.SnapshotTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://app@localhost/inventory")
	t.Setenv("DASHBOARD_TOP_N", "10")
	t.Setenv("SNAPSHOT_TTL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Dashboard.TopN)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.SnapshotTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE": "postgres", "DATABASE_URL": ""}},
		{"unknown store", map[string]string{"STORE": "sqlite"}},
		{"bad ttl", map[string]string{"STORE": "memory", "SNAPSHOT_TTL": "soon"}},
		{"production without secret", map[string]string{"STORE": "memory", "ENV": "production", "JWT_SECRET": ""}},
		{"zero top n", map[string]string{"STORE": "memory", "DASHBOARD_TOP_N": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

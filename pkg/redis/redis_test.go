package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Enabled = false

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(Disabled(), "test")

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(Disabled(), "test")

	type payload struct {
		Sharpe float64 `json:"sharpe"`
	}

	calls := 0
	var got payload
	err := cache.GetOrSet(context.Background(), "k", &got, TTLShort, func() (interface{}, error) {
		calls++
		return payload{Sharpe: 1.25}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.25, got.Sharpe)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "SnapshotKey",
			fn:       func() string { return SnapshotKey("block-1", 2) },
			expected: "snapshot:block-1:rf2.0000",
		},
		{
			name:     "BenchmarkKey",
			fn:       func() string { return BenchmarkKey("KOSPI", "2024-01-01", "2024-06-30") },
			expected: "benchmark:KOSPI:2024-01-01:2024-06-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}

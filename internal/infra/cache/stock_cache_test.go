//go:build unit

package cache_test

import (
	"context"
	"testing"
	"time"

	"bakery-flashsale/internal/infra/cache"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*cache.StockCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewStockCache(rdb, ttl), mr
}

func sampleView() *queries.SaleStockView {
	saleID := uuid.New()
	return &queries.SaleStockView{
		SaleID: saleID,
		Status: "active",
		Items: []queries.StockView{
			{SaleID: saleID, ProductID: uuid.New(), StockLimit: 5, Remaining: 3, PendingCount: 1, SoldCount: 1, PerUserLimit: 2},
		},
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestStockCache_GetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("キャッシュが無い場合はミスになる", func(t *testing.T) {
		c, _ := newCache(t, 2*time.Second)

		got, ok, err := c.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("保存したスナップショットを読み出せる", func(t *testing.T) {
		c, _ := newCache(t, 2*time.Second)
		view := sampleView()

		require.NoError(t, c.Set(ctx, view))
		got, ok, err := c.Get(ctx, view.SaleID)
		require.NoError(t, err)
		require.True(t, ok)
		if diff := cmp.Diff(view, got); diff != "" {
			t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("TTL経過後はミスになる", func(t *testing.T) {
		c, mr := newCache(t, 2*time.Second)
		view := sampleView()

		require.NoError(t, c.Set(ctx, view))
		mr.FastForward(3 * time.Second)

		_, ok, err := c.Get(ctx, view.SaleID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("TTLが0なら保存しない", func(t *testing.T) {
		c, mr := newCache(t, 0)
		view := sampleView()

		require.NoError(t, c.Set(ctx, view))
		assert.Empty(t, mr.Keys())
	})

	t.Run("壊れたエントリはミス扱い", func(t *testing.T) {
		c, mr := newCache(t, 2*time.Second)
		saleID := uuid.New()
		require.NoError(t, mr.Set("flashsale:stock:"+saleID.String(), "{not json"))

		_, ok, err := c.Get(ctx, saleID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Redis停止時はエラーを返す", func(t *testing.T) {
		c, mr := newCache(t, 2*time.Second)
		mr.Close()

		_, _, err := c.Get(ctx, uuid.New())
		assert.Error(t, err)
	})
}

func TestStockCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Minute)
	view := sampleView()
	require.NoError(t, c.Set(ctx, view))
	require.True(t, mr.Exists("flashsale:stock:"+view.SaleID.String()))

	require.NoError(t, c.Invalidate(ctx, view.SaleID))
	assert.False(t, mr.Exists("flashsale:stock:"+view.SaleID.String()))

	// idempotent
	require.NoError(t, c.Invalidate(ctx, view.SaleID))
}

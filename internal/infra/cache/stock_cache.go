package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "flashsale:stock:"

// StockCache keeps the storefront stock listing of a sale in Redis for a short TTL.
type StockCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStockCache(rdb redis.Cmdable, ttl time.Duration) *StockCache {
	return &StockCache{rdb: rdb, ttl: ttl}
}

func stockKey(saleID uuid.UUID) string {
	return stockKeyPrefix + saleID.String()
}

func (c *StockCache) Get(ctx context.Context, saleID uuid.UUID) (*queries.SaleStockView, bool, error) {
	raw, err := c.rdb.Get(ctx, stockKey(saleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to read stock snapshot")
	}

	var view queries.SaleStockView
	if err := json.Unmarshal(raw, &view); err != nil {
		// a corrupt entry behaves like a miss and gets overwritten
		return nil, false, nil
	}
	return &view, true, nil
}

func (c *StockCache) Set(ctx context.Context, view *queries.SaleStockView) error {
	if c.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return errs.Wrap(err, "failed to encode stock snapshot")
	}
	if err := c.rdb.Set(ctx, stockKey(view.SaleID), raw, c.ttl).Err(); err != nil {
		return errs.Wrap(err, "failed to write stock snapshot")
	}
	return nil
}

func (c *StockCache) Invalidate(ctx context.Context, saleID uuid.UUID) error {
	if err := c.rdb.Del(ctx, stockKey(saleID)).Err(); err != nil {
		return errs.Wrap(err, "failed to invalidate stock snapshot")
	}
	return nil
}

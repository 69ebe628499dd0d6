//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type countingRecorder struct {
	mu        sync.Mutex
	outcomes  map[string]int
	released  map[reservation.ReleaseReason]int
	completed int
	sweeps    int
	published int
	failed    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		outcomes: map[string]int{},
		released: map[reservation.ReleaseReason]int{},
	}
}

func (r *countingRecorder) ReservationOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func (r *countingRecorder) HoldReleased(reason reservation.ReleaseReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released[reason]++
}

func (r *countingRecorder) HoldCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *countingRecorder) SweepCompleted(time.Duration, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
}

func (r *countingRecorder) OutboxPublished(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.published++
	} else {
		r.failed++
	}
}

type countingCache struct {
	mu          sync.Mutex
	invalidated map[uuid.UUID]int
}

func (c *countingCache) Invalidate(_ context.Context, saleID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidated == nil {
		c.invalidated = map[uuid.UUID]int{}
	}
	c.invalidated[saleID]++
	return nil
}

func (c *countingCache) count(saleID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated[saleID]
}

type fixture struct {
	store        *memStore
	clock        *clock.MockClock
	cfg          config.Config
	recorder     *countingRecorder
	cache        *countingCache
	sales        commands.SaleCommands
	expiry       commands.ExpiryCommands
	reservations commands.ReservationCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    newMemStore(),
		clock:    clock.NewMockClock(baseTime),
		cfg:      config.NewTestConfig(),
		recorder: newCountingRecorder(),
		cache:    &countingCache{},
	}
	return rebuild(f)
}

// rebuild wires the commands again after a test changed f.cfg.
func rebuild(f *fixture) *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.sales = commands.NewSaleCommands(f.store, f.clock, f.cache, logger)
	f.expiry = commands.NewExpiryCommands(f.store, f.clock, f.cfg, f.recorder, f.cache, logger)
	f.reservations = commands.NewReservationCommands(f.store, f.expiry, f.clock, f.cfg, f.recorder, f.cache, logger)
	return f
}

type itemOpt struct {
	stock        int
	perUserLimit int
}

// activeSale creates a sale that started a minute ago with one item and returns its ids.
func (f *fixture) activeSale(t *testing.T, opt itemOpt) (uuid.UUID, uuid.UUID) {
	t.Helper()

	productID := uuid.New()
	res, err := f.sales.CreateSale(context.Background(), commands.CreateSaleRequest{
		Name:     "朝のクロワッサン祭り",
		StartsAt: baseTime.Add(-time.Minute),
		EndsAt:   baseTime.Add(time.Hour),
		Items: []commands.CreateSaleItem{{
			ProductID:     productID,
			FlashPrice:    decimal.RequireFromString("180"),
			OriginalPrice: decimal.RequireFromString("240"),
			StockLimit:    opt.stock,
			PerUserLimit:  opt.perUserLimit,
		}},
	})
	require.NoError(t, err)
	return res.SaleID, productID
}

func (f *fixture) reserve(saleID, productID, userID uuid.UUID, q int) (*commands.ReserveResult, error) {
	return f.reservations.Reserve(context.Background(), commands.ReserveRequest{
		SaleID:    saleID,
		ProductID: productID,
		UserID:    userID,
		Quantity:  q,
	})
}

// requireBalanced checks remaining + pending + sold against the stock limit and
// pending against the sum of pending holds.
func (f *fixture) requireBalanced(t *testing.T, saleID, productID uuid.UUID) {
	t.Helper()

	it := f.store.item(saleID, productID)
	require.NoError(t, it.CheckBalance())

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	held := 0
	for _, res := range f.store.state.reservations {
		if res.SaleID() == saleID && res.ProductID() == productID && res.Status() == reservation.StatusPending {
			held += res.Quantity()
		}
	}
	require.Equal(t, it.PendingCount(), held, "pending counter must equal the sum of pending holds")
}

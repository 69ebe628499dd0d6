//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/domain/user"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestReserve(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 10, perUserLimit: 2})
		userID := uuid.New()

		res, err := f.reserve(saleID, productID, userID, 2)
		require.NoError(t, err)

		assert.False(t, res.Replayed)
		assert.Equal(t, reservation.StatusPending, res.Reservation.Status)
		assert.Equal(t, baseTime.Add(f.cfg.Reservation.HoldWindow), res.Reservation.ExpiresAt)
		assert.Equal(t, 2, res.Reservation.Quantity)

		it := f.store.item(saleID, productID)
		assert.Equal(t, 8, it.Remaining())
		assert.Equal(t, 2, it.PendingCount())
		assert.Equal(t, 2, f.store.claimed(shared.QuotaKey{SaleID: saleID, ProductID: productID, UserID: userID}))
		assert.Equal(t, []string{string(reservation.EventCreated)}, f.store.outboxTopics())
		assert.Equal(t, 1, f.recorder.outcomes[commands.OutcomeReserved])
		assert.Equal(t, 1, f.cache.count(saleID))
		f.requireBalanced(t, saleID, productID)
	})

	t.Run("存在しないセールはNG", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reserve(uuid.New(), uuid.New(), uuid.New(), 1)
		require.ErrorIs(t, err, errs.ErrSaleNotFound)
	})

	t.Run("セール外の商品はNG", func(t *testing.T) {
		f := newFixture(t)
		saleID, _ := f.activeSale(t, itemOpt{stock: 1, perUserLimit: 1})
		_, err := f.reserve(saleID, uuid.New(), uuid.New(), 1)
		require.ErrorIs(t, err, errs.ErrSaleItemNotFound)
	})

	t.Run("数量0はNG", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 1, perUserLimit: 1})
		_, err := f.reserve(saleID, productID, uuid.New(), 0)
		require.True(t, errs.Is(err, errs.ErrDomainValidation), "got %v", err)
		assert.Equal(t, 1, f.recorder.outcomes[commands.OutcomeRejected])
	})

	t.Run("開始前のセールはNG", func(t *testing.T) {
		f := newFixture(t)
		productID := uuid.New()
		created, err := f.sales.CreateSale(context.Background(), commands.CreateSaleRequest{
			Name:     "夜のバゲット",
			StartsAt: baseTime.Add(time.Hour),
			EndsAt:   baseTime.Add(2 * time.Hour),
			Items: []commands.CreateSaleItem{{
				ProductID:     productID,
				FlashPrice:    decimal.RequireFromString("200"),
				OriginalPrice: decimal.RequireFromString("300"),
				StockLimit:    3,
				PerUserLimit:  1,
			}},
		})
		require.NoError(t, err)

		_, err = f.reserve(created.SaleID, productID, uuid.New(), 1)
		require.ErrorIs(t, err, errs.ErrSaleNotActive)
		assert.Equal(t, 3, f.store.item(created.SaleID, productID).Remaining())
	})

	t.Run("終了後のセールはNG", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 3, perUserLimit: 1})
		f.clock.Add(time.Hour)

		_, err := f.reserve(saleID, productID, uuid.New(), 1)
		require.ErrorIs(t, err, errs.ErrSaleNotActive)
	})

	t.Run("在庫不足は状態を変えない", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 1, perUserLimit: 5})
		userID := uuid.New()

		_, err := f.reserve(saleID, productID, userID, 2)
		require.ErrorIs(t, err, errs.ErrInsufficientStock)

		assert.Equal(t, 1, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 0, f.store.claimed(shared.QuotaKey{SaleID: saleID, ProductID: productID, UserID: userID}))
		assert.Equal(t, 0, f.store.reservationCount())
		assert.Empty(t, f.store.outboxTopics())
		assert.Equal(t, 1, f.recorder.outcomes[commands.OutcomeInsufficientStock])
	})

	t.Run("上限2のユーザーの3個目はNG", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 10, perUserLimit: 2})
		userID := uuid.New()

		_, err := f.reserve(saleID, productID, userID, 1)
		require.NoError(t, err)
		_, err = f.reserve(saleID, productID, userID, 1)
		require.NoError(t, err)

		_, err = f.reserve(saleID, productID, userID, 1)
		require.ErrorIs(t, err, errs.ErrLimitExceeded)
		assert.Equal(t, 8, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 1, f.recorder.outcomes[commands.OutcomeLimitExceeded])
	})

	t.Run("上限は確定後も数える", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 10, perUserLimit: 1})
		userID := uuid.New()

		res, err := f.reserve(saleID, productID, userID, 1)
		require.NoError(t, err)
		_, err = f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.NoError(t, err)

		_, err = f.reserve(saleID, productID, userID, 1)
		require.ErrorIs(t, err, errs.ErrLimitExceeded)
	})

	t.Run("outbox書き込み失敗でロールバック", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 3, perUserLimit: 3})
		userID := uuid.New()
		f.store.failOutboxAppend = errors.New("disk full")

		_, err := f.reserve(saleID, productID, userID, 1)
		require.True(t, errs.Is(err, errs.ErrDatabaseOperationFailed), "got %v", err)

		assert.Equal(t, 3, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 0, f.store.claimed(shared.QuotaKey{SaleID: saleID, ProductID: productID, UserID: userID}))
		assert.Equal(t, 0, f.store.reservationCount())
		assert.Equal(t, 1, f.recorder.outcomes[commands.OutcomeError])
	})
}

func TestReserve_FiveUnitsSixCustomers(t *testing.T) {
	f := newFixture(t)
	saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 1})

	for i := 0; i < 5; i++ {
		_, err := f.reserve(saleID, productID, uuid.New(), 1)
		require.NoError(t, err)
	}

	_, err := f.reserve(saleID, productID, uuid.New(), 1)
	require.ErrorIs(t, err, errs.ErrInsufficientStock)

	it := f.store.item(saleID, productID)
	assert.Equal(t, 0, it.Remaining())
	assert.Equal(t, 5, it.PendingCount())
	f.requireBalanced(t, saleID, productID)
}

func TestReserve_Concurrent(t *testing.T) {
	t.Run("在庫k個にN人が同時に予約するとk人だけ成功", func(t *testing.T) {
		const stock, attempts = 7, 40
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: stock, perUserLimit: 1})

		results := make([]error, attempts)
		var g errgroup.Group
		for i := 0; i < attempts; i++ {
			g.Go(func() error {
				_, err := f.reserve(saleID, productID, uuid.New(), 1)
				results[i] = err
				return nil
			})
		}
		require.NoError(t, g.Wait())

		succeeded, insufficient := 0, 0
		for _, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errs.ErrInsufficientStock):
				insufficient++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, stock, succeeded)
		assert.Equal(t, attempts-stock, insufficient)
		assert.Equal(t, 0, f.store.item(saleID, productID).Remaining())
		f.requireBalanced(t, saleID, productID)
	})

	t.Run("同一ユーザーの同時予約は上限まで", func(t *testing.T) {
		const attempts = 12
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 100, perUserLimit: 2})
		userID := uuid.New()

		results := make([]error, attempts)
		var g errgroup.Group
		for i := 0; i < attempts; i++ {
			g.Go(func() error {
				_, err := f.reserve(saleID, productID, userID, 1)
				results[i] = err
				return nil
			})
		}
		require.NoError(t, g.Wait())

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			require.ErrorIs(t, err, errs.ErrLimitExceeded)
		}
		assert.Equal(t, 2, succeeded)
		assert.Equal(t, 98, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 2, f.store.claimed(shared.QuotaKey{SaleID: saleID, ProductID: productID, UserID: userID}))
	})
}

func TestReserve_Idempotency(t *testing.T) {
	t.Run("同じキーの再送は同じ予約を返す", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 3})
		key := uuid.New()
		req := commands.ReserveRequest{SaleID: saleID, ProductID: productID, UserID: uuid.New(), Quantity: 2, IdempotencyKey: &key}

		first, err := f.reservations.Reserve(context.Background(), req)
		require.NoError(t, err)
		second, err := f.reservations.Reserve(context.Background(), req)
		require.NoError(t, err)

		assert.False(t, first.Replayed)
		assert.True(t, second.Replayed)
		assert.Equal(t, first.Reservation.ID, second.Reservation.ID)
		assert.Equal(t, 3, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 1, f.recorder.outcomes[commands.OutcomeReplayed])
	})

	t.Run("同じキーで内容が違うとNG", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 3})
		key := uuid.New()
		req := commands.ReserveRequest{SaleID: saleID, ProductID: productID, UserID: uuid.New(), Quantity: 1, IdempotencyKey: &key}

		_, err := f.reservations.Reserve(context.Background(), req)
		require.NoError(t, err)

		req.Quantity = 2
		_, err = f.reservations.Reserve(context.Background(), req)
		require.ErrorIs(t, err, errs.ErrIdempotencyConflict)
		assert.Equal(t, 4, f.store.item(saleID, productID).Remaining())
	})

	t.Run("別ユーザーの同じキーは別の予約", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 3})
		key := uuid.New()

		for i := 0; i < 2; i++ {
			res, err := f.reservations.Reserve(context.Background(), commands.ReserveRequest{
				SaleID: saleID, ProductID: productID, UserID: uuid.New(), Quantity: 1, IdempotencyKey: &key,
			})
			require.NoError(t, err)
			assert.False(t, res.Replayed)
		}
		assert.Equal(t, 3, f.store.item(saleID, productID).Remaining())
	})

	t.Run("セール終了後の再送も元の予約を返す", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 3})
		key := uuid.New()
		req := commands.ReserveRequest{SaleID: saleID, ProductID: productID, UserID: uuid.New(), Quantity: 1, IdempotencyKey: &key}

		first, err := f.reservations.Reserve(context.Background(), req)
		require.NoError(t, err)
		require.NoError(t, f.sales.CancelSale(context.Background(), saleID))

		again, err := f.reservations.Reserve(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, first.Reservation.ID, again.Reservation.ID)

		fresh := uuid.New()
		req.IdempotencyKey = &fresh
		_, err = f.reservations.Reserve(context.Background(), req)
		require.ErrorIs(t, err, errs.ErrSaleNotActive)
		assert.Equal(t, 4, f.store.item(saleID, productID).Remaining())
	})

	t.Run("同時の再送でも在庫は一度だけ減る", func(t *testing.T) {
		const attempts = 8
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 5})
		key := uuid.New()
		req := commands.ReserveRequest{SaleID: saleID, ProductID: productID, UserID: uuid.New(), Quantity: 1, IdempotencyKey: &key}

		ids := make([]uuid.UUID, attempts)
		var g errgroup.Group
		for i := 0; i < attempts; i++ {
			g.Go(func() error {
				res, err := f.reservations.Reserve(context.Background(), req)
				if err != nil {
					return err
				}
				ids[i] = res.Reservation.ID
				return nil
			})
		}
		require.NoError(t, g.Wait())

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		assert.Equal(t, 4, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 1, f.store.reservationCount())
	})
}

func TestConfirmPurchase(t *testing.T) {
	t.Run("期限内の確定は在庫を売上に移す", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		res, err := f.reserve(saleID, productID, uuid.New(), 2)
		require.NoError(t, err)

		f.clock.Add(4 * time.Minute)
		summary, err := f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusCompleted, summary.Status)
		require.NotNil(t, summary.ClosedAt)
		it := f.store.item(saleID, productID)
		assert.Equal(t, 3, it.Remaining())
		assert.Equal(t, 0, it.PendingCount())
		assert.Equal(t, 2, it.SoldCount())
		assert.Equal(t, 1, f.recorder.completed)
		assert.Equal(t, []string{string(reservation.EventCreated), string(reservation.EventCompleted)}, f.store.outboxTopics())
		f.requireBalanced(t, saleID, productID)
	})

	t.Run("二度目の確定はAlreadyTerminal", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		res, err := f.reserve(saleID, productID, uuid.New(), 1)
		require.NoError(t, err)

		_, err = f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.NoError(t, err)
		_, err = f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.ErrorIs(t, err, errs.ErrAlreadyTerminal)
		assert.Equal(t, 1, f.store.item(saleID, productID).SoldCount())
	})

	t.Run("期限切れの確定は解放してExpiredを返す", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		res, err := f.reserve(saleID, productID, uuid.New(), 1)
		require.NoError(t, err)

		f.clock.Add(f.cfg.Reservation.HoldWindow)
		_, err = f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.ErrorIs(t, err, errs.ErrReservationExpired)
		assert.True(t, errs.Is(err, errs.ErrAlreadyTerminal), "expired is also terminal")

		stored, ok := f.store.reservation(res.Reservation.ID)
		require.True(t, ok)
		assert.Equal(t, reservation.StatusExpired, stored.Status())
		require.NotNil(t, stored.ReleaseReason())
		assert.Equal(t, reservation.ReasonTimeout, *stored.ReleaseReason())

		it := f.store.item(saleID, productID)
		assert.Equal(t, 5, it.Remaining())
		assert.Equal(t, 0, it.SoldCount())
		assert.Equal(t, 1, f.recorder.released[reservation.ReasonTimeout])
	})

	t.Run("存在しない予約はNotFound", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reservations.ConfirmPurchase(context.Background(), uuid.New())
		require.ErrorIs(t, err, errs.ErrReservationNotFound)
	})

	t.Run("セール中止後も保持中の予約は確定できる", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		res, err := f.reserve(saleID, productID, uuid.New(), 1)
		require.NoError(t, err)
		require.NoError(t, f.sales.CancelSale(context.Background(), saleID))

		_, err = f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.store.item(saleID, productID).SoldCount())
	})
}

func TestCancel(t *testing.T) {
	t.Run("保持中の予約は取り消せる", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		userID := uuid.New()
		res, err := f.reserve(saleID, productID, userID, 2)
		require.NoError(t, err)

		got, err := f.reservations.Cancel(context.Background(), res.Reservation.ID, user.Actor{UserID: userID, Role: user.RoleCustomer})
		require.NoError(t, err)

		assert.False(t, got.AlreadyReleased)
		assert.Equal(t, reservation.StatusExpired, got.Reservation.Status)
		require.NotNil(t, got.Reservation.ReleaseReason)
		assert.Equal(t, reservation.ReasonCancelled, *got.Reservation.ReleaseReason)
		assert.Equal(t, 5, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 0, f.store.claimed(shared.QuotaKey{SaleID: saleID, ProductID: productID, UserID: userID}))
		assert.Equal(t, 1, f.recorder.released[reservation.ReasonCancelled])
		f.requireBalanced(t, saleID, productID)
	})

	t.Run("他人の予約は取り消せない", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		res, err := f.reserve(saleID, productID, uuid.New(), 1)
		require.NoError(t, err)

		_, err = f.reservations.Cancel(context.Background(), res.Reservation.ID, user.Actor{UserID: uuid.New(), Role: user.RoleCustomer})
		require.ErrorIs(t, err, errs.ErrNotOwner)
		assert.Equal(t, 4, f.store.item(saleID, productID).Remaining())
	})

	t.Run("確定後の取消はAlreadyTerminalで在庫は不変", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		userID := uuid.New()
		res, err := f.reserve(saleID, productID, userID, 1)
		require.NoError(t, err)
		_, err = f.reservations.ConfirmPurchase(context.Background(), res.Reservation.ID)
		require.NoError(t, err)

		_, err = f.reservations.Cancel(context.Background(), res.Reservation.ID, user.Actor{UserID: userID, Role: user.RoleCustomer})
		require.ErrorIs(t, err, errs.ErrAlreadyTerminal)

		it := f.store.item(saleID, productID)
		assert.Equal(t, 4, it.Remaining())
		assert.Equal(t, 1, it.SoldCount())
	})

	t.Run("期限切れ後の取消は解放済みとして成功", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		userID := uuid.New()
		res, err := f.reserve(saleID, productID, userID, 1)
		require.NoError(t, err)

		f.clock.Add(f.cfg.Reservation.HoldWindow)
		_, err = f.expiry.SweepDue(context.Background())
		require.NoError(t, err)

		got, err := f.reservations.Cancel(context.Background(), res.Reservation.ID, user.Actor{UserID: userID, Role: user.RoleCustomer})
		require.NoError(t, err)
		assert.True(t, got.AlreadyReleased)
		assert.Equal(t, 5, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 0, f.recorder.released[reservation.ReasonCancelled])
	})

	t.Run("取消と掃除の競合でも在庫は一度だけ戻る", func(t *testing.T) {
		f := newFixture(t)
		saleID, productID := f.activeSale(t, itemOpt{stock: 5, perUserLimit: 2})
		userID := uuid.New()
		res, err := f.reserve(saleID, productID, userID, 2)
		require.NoError(t, err)
		f.clock.Add(f.cfg.Reservation.HoldWindow)

		var g errgroup.Group
		g.Go(func() error {
			_, err := f.reservations.Cancel(context.Background(), res.Reservation.ID, user.Actor{UserID: userID, Role: user.RoleCustomer})
			return err
		})
		g.Go(func() error {
			_, err := f.expiry.SweepDue(context.Background())
			return err
		})
		require.NoError(t, g.Wait())

		assert.Equal(t, 5, f.store.item(saleID, productID).Remaining())
		assert.Equal(t, 1, f.recorder.released[reservation.ReasonCancelled]+f.recorder.released[reservation.ReasonTimeout])
		f.requireBalanced(t, saleID, productID)
	})
}

package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/infra/repository"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool       *pgxpool.Pool
	maxRetries int
	base       time.Duration
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{
		pool:       pool,
		maxRetries: 3,
		base:       50 * time.Millisecond,
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Each attempt rolls back explicitly; defers inside the loop would pile up.
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	maxRetries := u.maxRetries
	base := u.base

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !isRetryableError(err) {
			return err
		}
		if attempt == maxRetries {
			slog.Error("transaction failed after max retries",
				"attempts", attempt+1,
				"error", err.Error())
			return errs.Mark(err, errMaxRetriesExceeded)
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	saleRepo        *repository.SaleRepository
	stockLedger     *repository.StockLedger
	reservationRepo *repository.ReservationRepository
	quotaRepo       *repository.QuotaRepository
	outboxRepo      *repository.OutboxRepository
}

func (t *pgTx) Sales() shared.SaleRepository {
	if t.saleRepo == nil {
		t.saleRepo = repository.NewSaleRepository(t.dbtx)
	}
	return t.saleRepo
}

func (t *pgTx) Stock() shared.StockLedger {
	if t.stockLedger == nil {
		t.stockLedger = repository.NewStockLedger(t.dbtx)
	}
	return t.stockLedger
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Quotas() shared.QuotaRepository {
	if t.quotaRepo == nil {
		t.quotaRepo = repository.NewQuotaRepository(t.dbtx)
	}
	return t.quotaRepo
}

func (t *pgTx) Outbox() shared.OutboxRepository {
	if t.outboxRepo == nil {
		t.outboxRepo = repository.NewOutboxRepository(t.dbtx)
	}
	return t.outboxRepo
}

// commandReads run on the pool outside any transaction.
type commandReads struct {
	dbtx db.DBTX
}

func (r *commandReads) SaleByID(ctx context.Context, id uuid.UUID) (*flashsale.FlashSale, error) {
	return repository.NewSaleRepository(r.dbtx).FindByID(ctx, id)
}

func (r *commandReads) ReservationByIdempotencyKey(ctx context.Context, userID, key uuid.UUID) (*reservation.Reservation, error) {
	return repository.NewReservationRepository(r.dbtx).FindByIdempotencyKey(ctx, userID, key)
}

func (r *commandReads) QuotaClaimed(ctx context.Context, key shared.QuotaKey) (int, error) {
	return repository.NewQuotaRepository(r.dbtx).Claimed(ctx, key)
}

func (r *commandReads) DueReservationIDs(ctx context.Context, now time.Time, exclude []uuid.UUID, limit int) ([]uuid.UUID, error) {
	return repository.NewReservationRepository(r.dbtx).DueIDs(ctx, now, exclude, limit)
}

func (r *commandReads) DueReservationIDsForItem(ctx context.Context, saleID, productID uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	return repository.NewReservationRepository(r.dbtx).DueIDsForItem(ctx, saleID, productID, now, limit)
}

package commands

//go:generate mockgen -source=sale.go -destination=../../testutil/mock/commands/sale.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateSaleItem struct {
	ProductID     uuid.UUID
	FlashPrice    decimal.Decimal
	OriginalPrice decimal.Decimal
	StockLimit    int
	PerUserLimit  int
}

type CreateSaleRequest struct {
	Name        string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Items       []CreateSaleItem
}

type CreateSaleResult struct {
	SaleID uuid.UUID
	Status flashsale.Status
}

type SaleCommands interface {
	CreateSale(ctx context.Context, req CreateSaleRequest) (*CreateSaleResult, error)
	CancelSale(ctx context.Context, saleID uuid.UUID) error
}

type saleUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	cache  StockCache
	logger *slog.Logger
}

func NewSaleCommands(uow shared.UnitOfWork, clk clock.Clock, cache StockCache, logger *slog.Logger) SaleCommands {
	return &saleUseCaseImpl{uow: uow, clock: clk, cache: cache, logger: logger}
}

func (uc *saleUseCaseImpl) CreateSale(ctx context.Context, req CreateSaleRequest) (*CreateSaleResult, error) {
	now := uc.clock.Now()

	name, err := flashsale.NewName(req.Name)
	if err != nil {
		return nil, domainErr(err)
	}

	specs := make([]flashsale.ItemSpec, 0, len(req.Items))
	for _, it := range req.Items {
		pricing, err := flashsale.NewPricing(it.FlashPrice, it.OriginalPrice)
		if err != nil {
			return nil, domainErr(err)
		}
		specs = append(specs, flashsale.ItemSpec{
			ProductID:    it.ProductID,
			Pricing:      pricing,
			StockLimit:   it.StockLimit,
			PerUserLimit: it.PerUserLimit,
		})
	}

	sale, err := flashsale.NewFlashSale(now, name, req.Description, req.StartsAt, req.EndsAt, specs)
	if err != nil {
		return nil, domainErr(err)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Sales().Create(ctx, sale); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "flash sale created",
		slog.String("sale_id", sale.ID().String()),
		slog.Int("items", len(sale.Items())),
		slog.Time("starts_at", sale.StartsAt()),
		slog.Time("ends_at", sale.EndsAt()))

	return &CreateSaleResult{SaleID: sale.ID(), Status: sale.StatusAt(now)}, nil
}

func (uc *saleUseCaseImpl) CancelSale(ctx context.Context, saleID uuid.UUID) error {
	now := uc.clock.Now()

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sale, err := tx.Sales().FindByID(ctx, saleID)
		if err != nil {
			return lookupErr(err, errs.ErrSaleNotFound)
		}
		if err := sale.Cancel(now); err != nil {
			return errs.Mark(err, errs.ErrSaleNotActive)
		}
		if err := tx.Sales().Cancel(ctx, saleID, now); err != nil {
			return conditionalErr(err, errs.ErrSaleNotActive)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := uc.cache.Invalidate(ctx, saleID); err != nil {
		uc.logger.WarnContext(ctx, "failed to invalidate stock cache",
			slog.String("sale_id", saleID.String()),
			slog.String("error", err.Error()))
	}
	uc.logger.InfoContext(ctx, "flash sale cancelled", slog.String("sale_id", saleID.String()))
	return nil
}

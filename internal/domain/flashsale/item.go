package flashsale

import (
	"github.com/google/uuid"
)

// Item is one product offered in a sale together with its stock counters.
// remaining + pending + sold == stockLimit holds after every method call.
type Item struct {
	saleID       uuid.UUID
	productID    uuid.UUID
	pricing      Pricing
	stockLimit   int
	soldCount    int
	pendingCount int
	remaining    int
	perUserLimit int
}

type ItemSpec struct {
	ProductID    uuid.UUID
	Pricing      Pricing
	StockLimit   int
	PerUserLimit int
}

func newItem(saleID uuid.UUID, spec ItemSpec) (*Item, error) {
	if spec.StockLimit < 1 {
		return nil, ErrInvalidStockLimit
	}
	if spec.PerUserLimit < 1 {
		return nil, ErrInvalidPerUserLimit
	}
	return &Item{
		saleID:       saleID,
		productID:    spec.ProductID,
		pricing:      spec.Pricing,
		stockLimit:   spec.StockLimit,
		remaining:    spec.StockLimit,
		perUserLimit: spec.PerUserLimit,
	}, nil
}

func ReconstructItem(
	saleID, productID uuid.UUID,
	pricing Pricing,
	stockLimit, soldCount, pendingCount, remaining, perUserLimit int,
) *Item {
	return &Item{
		saleID:       saleID,
		productID:    productID,
		pricing:      pricing,
		stockLimit:   stockLimit,
		soldCount:    soldCount,
		pendingCount: pendingCount,
		remaining:    remaining,
		perUserLimit: perUserLimit,
	}
}

func (i *Item) SaleID() uuid.UUID    { return i.saleID }
func (i *Item) ProductID() uuid.UUID { return i.productID }
func (i *Item) Pricing() Pricing     { return i.pricing }
func (i *Item) StockLimit() int      { return i.stockLimit }
func (i *Item) SoldCount() int       { return i.soldCount }
func (i *Item) PendingCount() int    { return i.pendingCount }
func (i *Item) Remaining() int       { return i.remaining }
func (i *Item) PerUserLimit() int    { return i.perUserLimit }

// Hold moves q units from remaining to pending.
func (i *Item) Hold(q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	if i.remaining < q {
		return ErrInsufficientStock
	}
	i.remaining -= q
	i.pendingCount += q
	return nil
}

// Sell moves q held units from pending to sold.
func (i *Item) Sell(q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	if i.pendingCount < q {
		return ErrCounterUnderflow
	}
	i.pendingCount -= q
	i.soldCount += q
	return nil
}

// Return moves q held units from pending back to remaining.
func (i *Item) Return(q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	if i.pendingCount < q {
		return ErrCounterUnderflow
	}
	i.pendingCount -= q
	i.remaining += q
	return nil
}

func (i *Item) CheckBalance() error {
	if i.remaining < 0 || i.pendingCount < 0 || i.soldCount < 0 || i.soldCount > i.stockLimit {
		return ErrBalanceViolated
	}
	if i.remaining+i.pendingCount+i.soldCount != i.stockLimit {
		return ErrBalanceViolated
	}
	return nil
}

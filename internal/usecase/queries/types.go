package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)

// StockView is the live counter state of one sale item.
type StockView struct {
	SaleID       uuid.UUID `json:"sale_id"`
	ProductID    uuid.UUID `json:"product_id"`
	StockLimit   int       `json:"stock_limit"`
	Remaining    int       `json:"remaining"`
	PendingCount int       `json:"pending_count"`
	SoldCount    int       `json:"sold_count"`
	PerUserLimit int       `json:"per_user_limit"`
}

type SaleStockView struct {
	SaleID      uuid.UUID   `json:"sale_id"`
	Status      string      `json:"status"`
	Items       []StockView `json:"items"`
	GeneratedAt time.Time   `json:"generated_at"`
}

type SaleItemView struct {
	ProductID       uuid.UUID       `json:"product_id"`
	FlashPrice      decimal.Decimal `json:"flash_price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StockLimit      int             `json:"stock_limit"`
	SoldCount       int             `json:"sold_count"`
	PendingCount    int             `json:"pending_count"`
	Remaining       int             `json:"remaining"`
	PerUserLimit    int             `json:"per_user_limit"`
}

type SaleView struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StartsAt    time.Time      `json:"starts_at"`
	EndsAt      time.Time      `json:"ends_at"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	Status      string         `json:"status"`
	Items       []SaleItemView `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
}

type ReservationView struct {
	ID            uuid.UUID  `json:"id"`
	SaleID        uuid.UUID  `json:"sale_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Quantity      int        `json:"quantity"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ReleaseReason *string    `json:"release_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

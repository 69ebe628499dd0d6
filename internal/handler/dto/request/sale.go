package request

import (
	"time"

	"bakery-flashsale/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prices are checked by the domain; the validator does not look inside decimal.Decimal.
type CreateSaleItemRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	FlashPrice    decimal.Decimal `json:"flash_price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	StockLimit    int             `json:"stock_limit" binding:"required,min=1"`
	PerUserLimit  int             `json:"per_user_limit" binding:"required,min=1"`
}

type CreateSaleRequest struct {
	Name        string                  `json:"name" binding:"required,max=200"`
	Description string                  `json:"description" binding:"max=2000"`
	StartsAt    time.Time               `json:"starts_at" binding:"required"`
	EndsAt      time.Time               `json:"ends_at" binding:"required,gtfield=StartsAt"`
	Items       []CreateSaleItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

func (r CreateSaleRequest) ToCommand() commands.CreateSaleRequest {
	items := make([]commands.CreateSaleItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = commands.CreateSaleItem{
			ProductID:     it.ProductID,
			FlashPrice:    it.FlashPrice,
			OriginalPrice: it.OriginalPrice,
			StockLimit:    it.StockLimit,
			PerUserLimit:  it.PerUserLimit,
		}
	}
	return commands.CreateSaleRequest{
		Name:        r.Name,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		Items:       items,
	}
}

package response

import (
	"time"

	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"
)

type CreateSaleResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func FromCreateSaleResult(r *commands.CreateSaleResult) CreateSaleResponse {
	return CreateSaleResponse{ID: r.SaleID.String(), Status: r.Status.String()}
}

type SaleItemResponse struct {
	ProductID       string `json:"product_id"`
	FlashPrice      string `json:"flash_price"`
	OriginalPrice   string `json:"original_price"`
	DiscountPercent string `json:"discount_percent"`
	StockLimit      int    `json:"stock_limit"`
	Remaining       int    `json:"remaining"`
	SoldCount       int    `json:"sold_count"`
	PerUserLimit    int    `json:"per_user_limit"`
}

type SaleResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	StartsAt    time.Time          `json:"starts_at"`
	EndsAt      time.Time          `json:"ends_at"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	Items       []SaleItemResponse `json:"items"`
}

func FromSaleView(v *queries.SaleView) SaleResponse {
	items := make([]SaleItemResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = SaleItemResponse{
			ProductID:       it.ProductID.String(),
			FlashPrice:      it.FlashPrice.StringFixed(2),
			OriginalPrice:   it.OriginalPrice.StringFixed(2),
			DiscountPercent: it.DiscountPercent.StringFixed(2),
			StockLimit:      it.StockLimit,
			Remaining:       it.Remaining,
			SoldCount:       it.SoldCount,
			PerUserLimit:    it.PerUserLimit,
		}
	}
	return SaleResponse{
		ID:          v.ID.String(),
		Name:        v.Name,
		Description: v.Description,
		Status:      v.Status,
		StartsAt:    v.StartsAt,
		EndsAt:      v.EndsAt,
		CancelledAt: v.CancelledAt,
		Items:       items,
	}
}

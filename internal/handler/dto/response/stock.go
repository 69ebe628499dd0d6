package response

import (
	"time"

	"bakery-flashsale/internal/usecase/queries"
)

type StockResponse struct {
	SaleID       string `json:"sale_id"`
	ProductID    string `json:"product_id"`
	StockLimit   int    `json:"stock_limit"`
	Remaining    int    `json:"remaining"`
	PendingCount int    `json:"pending_count"`
	SoldCount    int    `json:"sold_count"`
	PerUserLimit int    `json:"per_user_limit"`
	Available    bool   `json:"available"`
}

type SaleStockResponse struct {
	SaleID      string          `json:"sale_id"`
	Status      string          `json:"status"`
	Items       []StockResponse `json:"items"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func FromStockView(v queries.StockView) StockResponse {
	return StockResponse{
		SaleID:       v.SaleID.String(),
		ProductID:    v.ProductID.String(),
		StockLimit:   v.StockLimit,
		Remaining:    v.Remaining,
		PendingCount: v.PendingCount,
		SoldCount:    v.SoldCount,
		PerUserLimit: v.PerUserLimit,
		Available:    v.Remaining > 0,
	}
}

func FromSaleStockView(v *queries.SaleStockView) SaleStockResponse {
	items := make([]StockResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = FromStockView(it)
	}
	return SaleStockResponse{
		SaleID:      v.SaleID.String(),
		Status:      v.Status,
		Items:       items,
		GeneratedAt: v.GeneratedAt,
	}
}

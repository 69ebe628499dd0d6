package request

import (
	"bakery-flashsale/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReserveRequest struct {
	SaleID    uuid.UUID `json:"sale_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

func (r ReserveRequest) ToCommand(userID uuid.UUID, idempotencyKey *uuid.UUID) commands.ReserveRequest {
	return commands.ReserveRequest{
		SaleID:         r.SaleID,
		ProductID:      r.ProductID,
		UserID:         userID,
		Quantity:       r.Quantity,
		IdempotencyKey: idempotencyKey,
	}
}

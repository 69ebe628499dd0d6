package api

import (
	"net/http"

	"bakery-flashsale/internal/handler/httperr"
	"bakery-flashsale/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target    error
	status    int
	code      string
	message   string
	retryable bool
}

// Order matters: ErrReservationExpired is also an ErrAlreadyTerminal.
var usecaseErrors = []errorMapping{
	{target: errs.ErrInsufficientStock, status: http.StatusConflict, code: "insufficient_stock", message: "Insufficient stock", retryable: true},
	{target: errs.ErrLimitExceeded, status: http.StatusUnprocessableEntity, code: "limit_exceeded", message: "Per-user purchase limit reached"},
	{target: errs.ErrSaleNotActive, status: http.StatusConflict, code: "sale_not_active", message: "Flash sale is not active"},
	{target: errs.ErrReservationExpired, status: http.StatusConflict, code: "reservation_expired", message: "Reservation has expired"},
	{target: errs.ErrAlreadyTerminal, status: http.StatusConflict, code: "already_terminal", message: "Reservation is no longer pending"},
	{target: errs.ErrIdempotencyConflict, status: http.StatusConflict, code: "idempotency_conflict", message: "Idempotency key was used for a different request"},
	{target: errs.ErrNotOwner, status: http.StatusForbidden, code: "not_owner", message: "Reservation belongs to another user"},
	{target: errs.ErrSaleNotFound, status: http.StatusNotFound, code: "sale_not_found", message: "Flash sale not found"},
	{target: errs.ErrSaleItemNotFound, status: http.StatusNotFound, code: "sale_item_not_found", message: "Product is not part of this sale"},
	{target: errs.ErrReservationNotFound, status: http.StatusNotFound, code: "reservation_not_found", message: "Reservation not found"},
	{target: errs.ErrDomainValidation, status: http.StatusBadRequest, code: "validation_failed", message: "Domain validation failed"},
}

func abortWithUsecaseError(c *gin.Context, err error) {
	for _, m := range usecaseErrors {
		if errs.Is(err, m.target) {
			if m.retryable {
				c.Header("Retry-After", "1")
			}
			httperr.AbortWithError(c, m.status, err, m.message, httperr.Detail{Code: m.code, Retryable: m.retryable})
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", httperr.Detail{Code: "internal"})
}

func abortBadRequest(c *gin.Context, err error, msg string) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, msg, httperr.Detail{Code: "bad_request"})
}

func abortUnauthenticated(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("actor missing from context"), "Unauthorized",
		httperr.Detail{Code: "unauthorized"})
}

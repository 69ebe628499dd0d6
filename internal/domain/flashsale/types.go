package flashsale

import "errors"

var (
	ErrInvalidName          = errors.New("sale name must be 1..200 characters")
	ErrInvalidWindow        = errors.New("sale must start before it ends")
	ErrSaleAlreadyOver      = errors.New("sale window already over")
	ErrNoItems              = errors.New("sale must have at least one item")
	ErrDuplicateProduct     = errors.New("product listed twice in one sale")
	ErrInvalidStockLimit    = errors.New("stock limit must be at least 1")
	ErrInvalidPerUserLimit  = errors.New("per-user limit must be at least 1")
	ErrInvalidPrice         = errors.New("flash price must be between 0 and the original price")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrCounterUnderflow     = errors.New("pending count would go negative")
	ErrBalanceViolated      = errors.New("remaining + pending + sold must equal stock limit")
	ErrSaleAlreadyCancelled = errors.New("sale already cancelled")
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
)

func (s Status) String() string {
	return string(s)
}

package errs

import "errors"

// Sentinel errors shared by the usecase layers. Handlers translate these into HTTP statuses.
var (
	// Sale errors
	ErrSaleNotFound     = errors.New("flash sale not found")
	ErrSaleNotActive    = errors.New("flash sale not active")
	ErrSaleItemNotFound = errors.New("sale item not found")

	// Stock errors
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLimitExceeded     = errors.New("per-user limit exceeded")

	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyTerminal     = errors.New("reservation already terminal")
	ErrReservationExpired  = Mark(errors.New("reservation expired"), ErrAlreadyTerminal)
	ErrNotOwner            = errors.New("reservation belongs to another user")

	// Idempotency errors
	ErrIdempotencyConflict = errors.New("idempotency key reused with different request")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

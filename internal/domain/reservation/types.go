package reservation

import "errors"

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidHoldWindow = errors.New("hold window must be positive")
	ErrNotPending        = errors.New("reservation is not pending")
	ErrHoldExpired       = errors.New("hold window elapsed")
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidReason     = errors.New("invalid release reason")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// ReleaseReason records why a hold went back to stock.
type ReleaseReason string

const (
	ReasonTimeout   ReleaseReason = "timeout"
	ReasonCancelled ReleaseReason = "cancelled"
)

func (r ReleaseReason) String() string {
	return string(r)
}

func ParseReleaseReason(s string) (ReleaseReason, error) {
	switch r := ReleaseReason(s); r {
	case ReasonTimeout, ReasonCancelled:
		return r, nil
	default:
		return "", ErrInvalidReason
	}
}

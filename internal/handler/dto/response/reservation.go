package response

import (
	"time"

	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"
)

type ReservationResponse struct {
	ID            string     `json:"id"`
	SaleID        string     `json:"sale_id"`
	ProductID     string     `json:"product_id"`
	UserID        string     `json:"user_id"`
	Quantity      int        `json:"quantity"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ReleaseReason *string    `json:"release_reason,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

type ReserveResponse struct {
	ReservationResponse
	Replayed bool `json:"replayed"`
}

type CancelResponse struct {
	ReservationResponse
	AlreadyReleased bool `json:"already_released"`
}

func FromReservationSummary(s commands.ReservationSummary) ReservationResponse {
	resp := ReservationResponse{
		ID:        s.ID.String(),
		SaleID:    s.SaleID.String(),
		ProductID: s.ProductID.String(),
		UserID:    s.UserID.String(),
		Quantity:  s.Quantity,
		Status:    s.Status.String(),
		ExpiresAt: s.ExpiresAt,
		ClosedAt:  s.ClosedAt,
	}
	if s.ReleaseReason != nil {
		reason := s.ReleaseReason.String()
		resp.ReleaseReason = &reason
	}
	return resp
}

func FromReserveResult(r *commands.ReserveResult) ReserveResponse {
	return ReserveResponse{
		ReservationResponse: FromReservationSummary(r.Reservation),
		Replayed:            r.Replayed,
	}
}

func FromCancelResult(r *commands.CancelResult) CancelResponse {
	return CancelResponse{
		ReservationResponse: FromReservationSummary(r.Reservation),
		AlreadyReleased:     r.AlreadyReleased,
	}
}

func FromReservationView(v *queries.ReservationView) ReservationResponse {
	return ReservationResponse{
		ID:            v.ID.String(),
		SaleID:        v.SaleID.String(),
		ProductID:     v.ProductID.String(),
		UserID:        v.UserID.String(),
		Quantity:      v.Quantity,
		Status:        v.Status,
		ExpiresAt:     v.ExpiresAt,
		ReleaseReason: v.ReleaseReason,
		ClosedAt:      v.ClosedAt,
	}
}

type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

func FromReservationViews(views []queries.ReservationView) ReservationListResponse {
	resp := ReservationListResponse{Reservations: make([]ReservationResponse, 0, len(views))}
	for i := range views {
		resp.Reservations = append(resp.Reservations, FromReservationView(&views[i]))
	}
	return resp
}

package flashsale

import (
	"time"

	"github.com/google/uuid"
)

type FlashSale struct {
	id          uuid.UUID
	name        Name
	description string
	startsAt    time.Time
	endsAt      time.Time
	cancelledAt *time.Time
	items       []*Item
	createdAt   time.Time
}

// NewFlashSale validates a new sale at the given instant. A sale may be created
// after it started but never after it is over.
func NewFlashSale(now time.Time, name Name, description string, startsAt, endsAt time.Time, specs []ItemSpec) (*FlashSale, error) {
	if !startsAt.Before(endsAt) {
		return nil, ErrInvalidWindow
	}
	if !now.Before(endsAt) {
		return nil, ErrSaleAlreadyOver
	}
	if len(specs) == 0 {
		return nil, ErrNoItems
	}

	id := uuid.New()
	seen := make(map[uuid.UUID]struct{}, len(specs))
	items := make([]*Item, 0, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.ProductID]; dup {
			return nil, ErrDuplicateProduct
		}
		seen[spec.ProductID] = struct{}{}

		item, err := newItem(id, spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &FlashSale{
		id:          id,
		name:        name,
		description: description,
		startsAt:    startsAt,
		endsAt:      endsAt,
		items:       items,
		createdAt:   now,
	}, nil
}

func ReconstructFlashSale(
	id uuid.UUID,
	name Name,
	description string,
	startsAt, endsAt time.Time,
	cancelledAt *time.Time,
	items []*Item,
	createdAt time.Time,
) *FlashSale {
	return &FlashSale{
		id:          id,
		name:        name,
		description: description,
		startsAt:    startsAt,
		endsAt:      endsAt,
		cancelledAt: cancelledAt,
		items:       items,
		createdAt:   createdAt,
	}
}

func (s *FlashSale) StatusAt(now time.Time) Status {
	switch {
	case s.cancelledAt != nil:
		return StatusEnded
	case now.Before(s.startsAt):
		return StatusScheduled
	case now.Before(s.endsAt):
		return StatusActive
	default:
		return StatusEnded
	}
}

func (s *FlashSale) IsActiveAt(now time.Time) bool {
	return s.StatusAt(now) == StatusActive
}

// Cancel ends the sale early. Holds already placed stay committable until they expire.
func (s *FlashSale) Cancel(now time.Time) error {
	if s.cancelledAt != nil {
		return ErrSaleAlreadyCancelled
	}
	if !now.Before(s.endsAt) {
		return ErrSaleAlreadyOver
	}
	s.cancelledAt = &now
	return nil
}

func (s *FlashSale) ItemFor(productID uuid.UUID) (*Item, bool) {
	for _, it := range s.items {
		if it.productID == productID {
			return it, true
		}
	}
	return nil, false
}

func (s *FlashSale) ID() uuid.UUID           { return s.id }
func (s *FlashSale) Name() Name              { return s.name }
func (s *FlashSale) Description() string     { return s.description }
func (s *FlashSale) StartsAt() time.Time     { return s.startsAt }
func (s *FlashSale) EndsAt() time.Time       { return s.endsAt }
func (s *FlashSale) CancelledAt() *time.Time { return s.cancelledAt }
func (s *FlashSale) Items() []*Item          { return s.items }
func (s *FlashSale) CreatedAt() time.Time    { return s.createdAt }

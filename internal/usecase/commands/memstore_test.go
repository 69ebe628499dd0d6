//go:build unit

package commands_test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
)

// memStore is an in-memory ledger with the conditional-write semantics of the
// Postgres repositories. Transactions are serialized and rolled back on error.
type memStore struct {
	mu    sync.Mutex
	state memState

	// failOutboxAppend makes the next outbox append fail once.
	failOutboxAppend error
	// failStatusUpdate makes every status update of the listed holds fail.
	failStatusUpdate map[uuid.UUID]error
}

type itemKey struct {
	saleID    uuid.UUID
	productID uuid.UUID
}

type idemKey struct {
	userID uuid.UUID
	key    uuid.UUID
}

type memSale struct {
	sale        *flashsale.FlashSale
	cancelledAt *time.Time
}

type memEvent struct {
	shared.OutboxEvent
	publishedAt *time.Time
	lastError   string
}

type memState struct {
	sales        map[uuid.UUID]memSale
	items        map[itemKey]flashsale.Item
	reservations map[uuid.UUID]reservation.Reservation
	idem         map[idemKey]uuid.UUID
	quotas       map[shared.QuotaKey]int
	outbox       []memEvent
	nextEventID  int64
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		sales:        map[uuid.UUID]memSale{},
		items:        map[itemKey]flashsale.Item{},
		reservations: map[uuid.UUID]reservation.Reservation{},
		idem:         map[idemKey]uuid.UUID{},
		quotas:       map[shared.QuotaKey]int{},
	}}
}

func (s memState) clone() memState {
	c := memState{
		sales:        make(map[uuid.UUID]memSale, len(s.sales)),
		items:        make(map[itemKey]flashsale.Item, len(s.items)),
		reservations: make(map[uuid.UUID]reservation.Reservation, len(s.reservations)),
		idem:         make(map[idemKey]uuid.UUID, len(s.idem)),
		quotas:       make(map[shared.QuotaKey]int, len(s.quotas)),
		outbox:       append([]memEvent(nil), s.outbox...),
		nextEventID:  s.nextEventID,
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.idem {
		c.idem[k] = v
	}
	for k, v := range s.quotas {
		c.quotas[k] = v
	}
	return c
}

// ----- shared.UnitOfWork -----

func (m *memStore) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.state.clone()
	if err := fn(ctx, &memTx{m: m}); err != nil {
		m.state = saved
		return err
	}
	return nil
}

func (m *memStore) CommandReads() shared.CommandReads {
	return &memReads{m: m}
}

// ----- test helpers -----

// item returns a copy of the ledger row; mutating it does not touch the store.
func (m *memStore) item(saleID, productID uuid.UUID) *flashsale.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.state.items[itemKey{saleID, productID}]
	return &it
}

func (m *memStore) claimed(key shared.QuotaKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.quotas[key]
}

func (m *memStore) reservation(id uuid.UUID) (reservation.Reservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.reservations[id]
	return r, ok
}

func (m *memStore) pendingOutbox() []memEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []memEvent
	for _, e := range m.state.outbox {
		if e.publishedAt == nil {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) outboxTopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	topics := make([]string, 0, len(m.state.outbox))
	for _, e := range m.state.outbox {
		topics = append(topics, e.Topic)
	}
	return topics
}

func (m *memStore) reservationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.reservations)
}

// ----- shared.Tx -----

type memTx struct {
	m *memStore
}

func (t *memTx) Sales() shared.SaleRepository               { return memSales{t.m} }
func (t *memTx) Stock() shared.StockLedger                  { return memLedger{t.m} }
func (t *memTx) Reservations() shared.ReservationRepository { return memReservations{t.m} }
func (t *memTx) Quotas() shared.QuotaRepository             { return memQuotas{t.m} }
func (t *memTx) Outbox() shared.OutboxRepository            { return memOutbox{t.m} }

// ----- command reads (pool, outside transactions) -----

type memReads struct {
	m *memStore
}

func (r *memReads) SaleByID(_ context.Context, id uuid.UUID) (*flashsale.FlashSale, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.findSale(id)
}

func (r *memReads) ReservationByIdempotencyKey(_ context.Context, userID, key uuid.UUID) (*reservation.Reservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	id, ok := r.m.state.idem[idemKey{userID, key}]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	res := r.m.state.reservations[id]
	return &res, nil
}

func (r *memReads) QuotaClaimed(_ context.Context, key shared.QuotaKey) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.quotas[key], nil
}

func (r *memReads) DueReservationIDs(_ context.Context, now time.Time, exclude []uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.dueIDs(now, limit, func(res reservation.Reservation) bool {
		return !slices.Contains(exclude, res.ID())
	}), nil
}

func (r *memReads) DueReservationIDsForItem(_ context.Context, saleID, productID uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.dueIDs(now, limit, func(res reservation.Reservation) bool {
		return res.SaleID() == saleID && res.ProductID() == productID
	}), nil
}

func (s memState) findSale(id uuid.UUID) (*flashsale.FlashSale, error) {
	row, ok := s.sales[id]
	if !ok {
		return nil, infra.WrapRepoErr("flash sale not found", nil, infra.KindNotFound)
	}
	items := make([]*flashsale.Item, 0, len(row.sale.Items()))
	for _, it := range row.sale.Items() {
		cp := s.items[itemKey{id, it.ProductID()}]
		items = append(items, &cp)
	}
	sale := row.sale
	return flashsale.ReconstructFlashSale(
		sale.ID(), sale.Name(), sale.Description(), sale.StartsAt(), sale.EndsAt(),
		row.cancelledAt, items, sale.CreatedAt(),
	), nil
}

func (s memState) dueIDs(now time.Time, limit int, match func(reservation.Reservation) bool) []uuid.UUID {
	var due []reservation.Reservation
	for _, res := range s.reservations {
		if res.IsDueAt(now) && match(res) {
			due = append(due, res)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ExpiresAt().Equal(due[j].ExpiresAt()) {
			return due[i].ExpiresAt().Before(due[j].ExpiresAt())
		}
		return due[i].ID().String() < due[j].ID().String()
	})
	if len(due) > limit {
		due = due[:limit]
	}
	ids := make([]uuid.UUID, 0, len(due))
	for _, res := range due {
		ids = append(ids, res.ID())
	}
	return ids
}

// ----- repositories (called with the store lock held by Within) -----

type memSales struct{ m *memStore }

func (r memSales) Create(_ context.Context, sale *flashsale.FlashSale) error {
	if _, dup := r.m.state.sales[sale.ID()]; dup {
		return infra.WrapRepoErr("flash sale exists", nil, infra.KindDuplicateKey)
	}
	r.m.state.sales[sale.ID()] = memSale{sale: sale, cancelledAt: sale.CancelledAt()}
	for _, it := range sale.Items() {
		r.m.state.items[itemKey{sale.ID(), it.ProductID()}] = *it
	}
	return nil
}

func (r memSales) FindByID(_ context.Context, id uuid.UUID) (*flashsale.FlashSale, error) {
	return r.m.state.findSale(id)
}

func (r memSales) Cancel(_ context.Context, id uuid.UUID, at time.Time) error {
	row, ok := r.m.state.sales[id]
	if !ok || row.cancelledAt != nil || !at.Before(row.sale.EndsAt()) {
		return infra.WrapRepoErr("flash sale not cancellable", nil, infra.KindConflict)
	}
	row.cancelledAt = &at
	r.m.state.sales[id] = row
	return nil
}

type memLedger struct{ m *memStore }

func (l memLedger) TryDecrement(_ context.Context, saleID, productID uuid.UUID, q int) (int, error) {
	k := itemKey{saleID, productID}
	it, ok := l.m.state.items[k]
	if !ok {
		return 0, infra.WrapRepoErr("sale item not found", nil, infra.KindNotFound)
	}
	if err := it.Hold(q); err != nil {
		return 0, infra.WrapRepoErr("insufficient stock", nil, infra.KindConflict)
	}
	l.m.state.items[k] = it
	return it.PerUserLimit(), nil
}

func (l memLedger) FoldIntoSold(_ context.Context, saleID, productID uuid.UUID, q int) error {
	k := itemKey{saleID, productID}
	it := l.m.state.items[k]
	if err := it.Sell(q); err != nil {
		return infra.WrapRepoErr("pending count below committed quantity", nil, infra.KindConflict)
	}
	l.m.state.items[k] = it
	return nil
}

func (l memLedger) Return(_ context.Context, saleID, productID uuid.UUID, q int) error {
	k := itemKey{saleID, productID}
	it := l.m.state.items[k]
	if err := it.Return(q); err != nil {
		return infra.WrapRepoErr("pending count below released quantity", nil, infra.KindConflict)
	}
	l.m.state.items[k] = it
	return nil
}

type memReservations struct{ m *memStore }

func (r memReservations) Create(_ context.Context, res *reservation.Reservation) error {
	if key := res.IdempotencyKey(); key != nil {
		k := idemKey{res.UserID(), *key}
		if _, dup := r.m.state.idem[k]; dup {
			return infra.WrapRepoErr("idempotency key exists", nil, infra.KindDuplicateKey)
		}
		r.m.state.idem[k] = res.ID()
	}
	r.m.state.reservations[res.ID()] = *res
	return nil
}

func (r memReservations) FindForUpdate(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.m.state.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return &res, nil
}

func (r memReservations) UpdateStatus(_ context.Context, res *reservation.Reservation) error {
	if err, ok := r.m.failStatusUpdate[res.ID()]; ok {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	stored, ok := r.m.state.reservations[res.ID()]
	if !ok || stored.Status() != reservation.StatusPending {
		return infra.WrapRepoErr("reservation not pending", nil, infra.KindConflict)
	}
	r.m.state.reservations[res.ID()] = *res
	return nil
}

func (r memReservations) PurgeTerminal(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for id, res := range r.m.state.reservations {
		closed := res.ExpiresAt()
		if res.ClosedAt() != nil {
			closed = *res.ClosedAt()
		}
		if res.Status().IsTerminal() && closed.Before(before) {
			delete(r.m.state.reservations, id)
			if key := res.IdempotencyKey(); key != nil {
				delete(r.m.state.idem, idemKey{res.UserID(), *key})
			}
			n++
		}
	}
	return n, nil
}

type memQuotas struct{ m *memStore }

func (r memQuotas) Claim(_ context.Context, key shared.QuotaKey, q, limit int) (int, error) {
	claimed := r.m.state.quotas[key] + q
	if claimed > limit {
		return 0, infra.WrapRepoErr("per-user limit reached", nil, infra.KindConflict)
	}
	r.m.state.quotas[key] = claimed
	return claimed, nil
}

func (r memQuotas) Return(_ context.Context, key shared.QuotaKey, q int) error {
	if r.m.state.quotas[key] < q {
		return infra.WrapRepoErr("quota below released quantity", nil, infra.KindConflict)
	}
	r.m.state.quotas[key] -= q
	return nil
}

type memOutbox struct{ m *memStore }

func (o memOutbox) Append(_ context.Context, msg shared.OutboxMessage) error {
	if err := o.m.failOutboxAppend; err != nil {
		o.m.failOutboxAppend = nil
		return infra.WrapRepoErr("failed to append outbox event", err)
	}
	o.m.state.nextEventID++
	o.m.state.outbox = append(o.m.state.outbox, memEvent{OutboxEvent: shared.OutboxEvent{
		ID:       o.m.state.nextEventID,
		Topic:    msg.Topic,
		EventKey: msg.EventKey,
		Payload:  msg.Payload,
	}})
	return nil
}

func (o memOutbox) LockUnpublished(_ context.Context, limit int) ([]shared.OutboxEvent, error) {
	var out []shared.OutboxEvent
	for _, e := range o.m.state.outbox {
		if e.publishedAt == nil && len(out) < limit {
			out = append(out, e.OutboxEvent)
		}
	}
	return out, nil
}

func (o memOutbox) MarkPublished(_ context.Context, id int64, at time.Time) error {
	for i := range o.m.state.outbox {
		if o.m.state.outbox[i].ID == id {
			o.m.state.outbox[i].publishedAt = &at
			return nil
		}
	}
	return infra.WrapRepoErr("outbox event not found", nil, infra.KindNotFound)
}

func (o memOutbox) MarkFailed(_ context.Context, id int64, reason string) error {
	for i := range o.m.state.outbox {
		if o.m.state.outbox[i].ID == id {
			o.m.state.outbox[i].Attempts++
			o.m.state.outbox[i].lastError = reason
			return nil
		}
	}
	return infra.WrapRepoErr("outbox event not found", nil, infra.KindNotFound)
}

func (o memOutbox) PurgePublished(_ context.Context, before time.Time) (int64, error) {
	kept := o.m.state.outbox[:0]
	var n int64
	for _, e := range o.m.state.outbox {
		if e.publishedAt != nil && e.publishedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	o.m.state.outbox = kept
	return n, nil
}

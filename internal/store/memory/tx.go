package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/slotindex"
	"github.com/masterries/AppointmentManager/internal/store"
)

// memTx buffers writes in maps of its own and reads through them to the
// committed state. Nothing is visible outside the transaction until commit,
// and rollback is dropping the buffers. A memTx belongs to the goroutine
// running the transaction func.
//
// stylistID is uuid.Nil for salon-wide transactions, which may not touch a slot index.
type memTx struct {
	s         *Store
	stylistID uuid.UUID

	stylists     map[uuid.UUID]domain.Stylist
	services     map[uuid.UUID]domain.Service
	appointments map[uuid.UUID]domain.Appointment
	inserted     map[uuid.UUID]struct{}
	// A nil value marks a delete.
	blocks     map[uuid.UUID]*domain.BlockedSlot
	exceptions map[uuid.UUID]*domain.CalendarException
	// businessHours is non-nil once the transaction replaced the week.
	businessHours map[time.Weekday]domain.BusinessHours
	audit         []domain.AuditEntry
	notes         []domain.ClientNote
	// idx is a private copy of the stylist's index, taken on first use.
	idx *slotindex.Index
}

var _ store.Tx = (*memTx)(nil)

func newTx(s *Store, stylistID uuid.UUID) *memTx {
	return &memTx{
		s:            s,
		stylistID:    stylistID,
		stylists:     make(map[uuid.UUID]domain.Stylist),
		services:     make(map[uuid.UUID]domain.Service),
		appointments: make(map[uuid.UUID]domain.Appointment),
		inserted:     make(map[uuid.UUID]struct{}),
		blocks:       make(map[uuid.UUID]*domain.BlockedSlot),
		exceptions:   make(map[uuid.UUID]*domain.CalendarException),
	}
}

// commit publishes the buffered writes in one step. Appointment ids are
// checked again because a transaction on another stylist may have committed
// the same idempotent id in the meantime.
func (t *memTx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.inserted {
		if _, exists := s.appointments[id]; exists {
			return store.ErrIdempotencyConflict
		}
	}

	for id, st := range t.stylists {
		s.stylists[id] = st
	}
	for id, svc := range t.services {
		s.services[id] = svc
	}
	for id, a := range t.appointments {
		s.appointments[id] = a
	}
	for id, b := range t.blocks {
		if b == nil {
			delete(s.blocks, id)
		} else {
			s.blocks[id] = *b
		}
	}
	for id, e := range t.exceptions {
		if e == nil {
			delete(s.exceptions, id)
		} else {
			s.exceptions[id] = *e
		}
	}
	if t.businessHours != nil {
		s.businessHours = t.businessHours
	}
	s.audit = append(s.audit, t.audit...)
	s.notes = append(s.notes, t.notes...)
	if t.idx != nil {
		s.indexes[t.stylistID] = t.idx
	}
	return nil
}

func (t *memTx) index(stylistID uuid.UUID) (*slotindex.Index, error) {
	if t.stylistID == uuid.Nil || stylistID != t.stylistID {
		return nil, errWrongStylist
	}
	if t.idx == nil {
		t.s.mu.RLock()
		committed, ok := t.s.indexes[stylistID]
		if ok {
			t.idx = committed.Clone()
		}
		t.s.mu.RUnlock()
		if !ok {
			t.idx = slotindex.New()
		}
	}
	return t.idx, nil
}

func (t *memTx) GetStylist(ctx context.Context, id uuid.UUID) (domain.Stylist, error) {
	if st, ok := t.stylists[id]; ok {
		st.WorkingHours = cloneHours(st.WorkingHours)
		return st, nil
	}
	return t.s.GetStylist(ctx, id)
}

func (t *memTx) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	if svc, ok := t.services[id]; ok {
		return svc, nil
	}
	return t.s.GetService(ctx, id)
}

func (t *memTx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if a, ok := t.appointments[id]; ok {
		return a, nil
	}
	return t.s.GetAppointment(ctx, id)
}

func (t *memTx) GetBlock(ctx context.Context, id uuid.UUID) (domain.BlockedSlot, error) {
	if b, ok := t.blocks[id]; ok {
		if b == nil {
			return domain.BlockedSlot{}, store.ErrNotFound
		}
		return *b, nil
	}
	return t.s.GetBlock(ctx, id)
}

func (t *memTx) GetException(ctx context.Context, id uuid.UUID) (domain.CalendarException, error) {
	if e, ok := t.exceptions[id]; ok {
		if e == nil {
			return domain.CalendarException{}, store.ErrNotFound
		}
		out := *e
		out.Hours = append([]domain.ClockRange(nil), e.Hours...)
		return out, nil
	}
	return t.s.GetException(ctx, id)
}

func (t *memTx) ListExceptions(ctx context.Context, stylistID *uuid.UUID, from, to domain.Date) ([]domain.CalendarException, error) {
	committed, err := t.s.ListExceptions(ctx, stylistID, from, to)
	if err != nil {
		return nil, err
	}
	out := committed[:0]
	for _, e := range committed {
		if _, touched := t.exceptions[e.ID]; !touched {
			out = append(out, e)
		}
	}
	for _, e := range t.exceptions {
		if e == nil || !exceptionMatches(*e, stylistID, from, to) {
			continue
		}
		c := *e
		c.Hours = append([]domain.ClockRange(nil), e.Hours...)
		out = append(out, c)
	}
	sortExceptions(out)
	return out, nil
}

func (t *memTx) ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error) {
	if t.businessHours == nil {
		return t.s.ListBusinessHours(ctx)
	}
	out := make([]domain.BusinessHours, 0, len(t.businessHours))
	for _, bh := range t.businessHours {
		out = append(out, bh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (t *memTx) ListOccupancy(ctx context.Context, stylistID uuid.UUID, window domain.TimeInterval) ([]domain.Occupancy, error) {
	if stylistID != t.stylistID || t.idx == nil {
		return t.s.ListOccupancy(ctx, stylistID, window)
	}
	return t.idx.Conflicts(window), nil
}

func (t *memTx) appointmentExists(id uuid.UUID) bool {
	if _, ok := t.appointments[id]; ok {
		return true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	_, ok := t.s.appointments[id]
	return ok
}

func (t *memTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	idx, err := t.index(appt.StylistID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.Must(uuid.NewV7())
	}
	if t.appointmentExists(appt.ID) {
		return domain.Appointment{}, store.ErrIdempotencyConflict
	}
	if appt.Status == "" {
		appt.Status = domain.StatusConfirmed
	}
	now := time.Now().UTC()
	appt.CreatedAt, appt.UpdatedAt = now, now

	if appt.Status.Occupies() {
		if err := idx.Insert(appt.Occupancy()); err != nil {
			return domain.Appointment{}, indexErr(err)
		}
	}
	t.appointments[appt.ID] = appt
	t.inserted[appt.ID] = struct{}{}
	return appt, nil
}

func (t *memTx) TransitionAppointment(ctx context.Context, tr store.Transition) (domain.Appointment, error) {
	prev, err := t.GetAppointment(ctx, tr.ID)
	if err != nil {
		return domain.Appointment{}, err
	}
	idx, err := t.index(prev.StylistID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if prev.Status != tr.From {
		return domain.Appointment{}, store.ErrStaleStatus
	}

	next := prev
	next.Status = tr.To
	next.UpdatedAt = time.Now().UTC()
	at := tr.At.UTC()
	switch tr.To {
	case domain.StatusCancelled:
		next.CancelledAt = &at
	case domain.StatusCompleted:
		next.CompletedAt = &at
	}
	if tr.Notes != nil {
		next.Notes = *tr.Notes
	}

	if prev.Status.Occupies() && !next.Status.Occupies() {
		idx.Remove(prev.ID)
	}
	t.appointments[next.ID] = next
	return next, nil
}

func (t *memTx) InsertBlock(ctx context.Context, block domain.BlockedSlot) (domain.BlockedSlot, error) {
	idx, err := t.index(block.StylistID)
	if err != nil {
		return domain.BlockedSlot{}, err
	}
	if block.ID == uuid.Nil {
		block.ID = uuid.Must(uuid.NewV7())
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	if err := idx.Insert(block.Occupancy()); err != nil {
		return domain.BlockedSlot{}, indexErr(err)
	}
	b := block
	t.blocks[block.ID] = &b
	return block, nil
}

func (t *memTx) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	block, err := t.GetBlock(ctx, id)
	if err != nil {
		return err
	}
	idx, err := t.index(block.StylistID)
	if err != nil {
		return err
	}
	idx.Remove(id)
	t.blocks[id] = nil
	return nil
}

func (t *memTx) UpsertStylist(ctx context.Context, st domain.Stylist) (domain.Stylist, error) {
	if st.ID == uuid.Nil {
		st.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now().UTC()
	if prev, err := t.GetStylist(ctx, st.ID); err == nil {
		st.CreatedAt = prev.CreatedAt
	} else {
		st.CreatedAt = now
	}
	st.UpdatedAt = now
	st.WorkingHours = cloneHours(st.WorkingHours)
	t.stylists[st.ID] = st

	st.WorkingHours = cloneHours(st.WorkingHours)
	return st, nil
}

func (t *memTx) UpsertService(ctx context.Context, svc domain.Service) (domain.Service, error) {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now().UTC()
	if prev, err := t.GetService(ctx, svc.ID); err == nil {
		svc.CreatedAt = prev.CreatedAt
	} else {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now
	t.services[svc.ID] = svc
	return svc, nil
}

func (t *memTx) SetBusinessHours(ctx context.Context, hours []domain.BusinessHours) error {
	next := make(map[time.Weekday]domain.BusinessHours, len(hours))
	for _, bh := range hours {
		next[bh.Weekday] = bh
	}
	t.businessHours = next
	return nil
}

func (t *memTx) InsertException(ctx context.Context, e domain.CalendarException) (domain.CalendarException, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.Must(uuid.NewV7())
	}
	if _, err := t.GetException(ctx, e.ID); err == nil {
		return domain.CalendarException{}, store.ErrConflict
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Hours = append([]domain.ClockRange(nil), e.Hours...)
	stored := e
	t.exceptions[e.ID] = &stored
	return e, nil
}

func (t *memTx) DeleteException(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetException(ctx, id); err != nil {
		return err
	}
	t.exceptions[id] = nil
	return nil
}

func (t *memTx) InsertClientNote(ctx context.Context, n domain.ClientNote) (domain.ClientNote, error) {
	if t.stylistID == uuid.Nil || n.StylistID != t.stylistID {
		return domain.ClientNote{}, errWrongStylist
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	t.notes = append(t.notes, n)
	return n, nil
}

func (t *memTx) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.Must(uuid.NewV7())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	t.audit = append(t.audit, entry)
	return nil
}

func indexErr(err error) error {
	if errors.Is(err, slotindex.ErrOverlap) {
		return store.ErrConflict
	}
	return err
}

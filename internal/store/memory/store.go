// Package memory is a non-durable store with the same atomicity, isolation and
// per-stylist serialization guarantees as the Postgres store. Readers only ever
// see committed state. It backs development runs and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/slotindex"
	"github.com/masterries/AppointmentManager/internal/store"
)

const defaultLockTimeout = 2 * time.Second

var errWrongStylist = errors.New("memory: write outside the locked stylist")

type Store struct {
	lockTimeout time.Duration

	locksMu sync.Mutex
	locks   map[uuid.UUID]*semaphore.Weighted
	global  *semaphore.Weighted

	mu            sync.RWMutex
	stylists      map[uuid.UUID]domain.Stylist
	services      map[uuid.UUID]domain.Service
	appointments  map[uuid.UUID]domain.Appointment
	blocks        map[uuid.UUID]domain.BlockedSlot
	exceptions    map[uuid.UUID]domain.CalendarException
	businessHours map[time.Weekday]domain.BusinessHours
	audit         []domain.AuditEntry
	notes         []domain.ClientNote
	indexes       map[uuid.UUID]*slotindex.Index
}

var _ store.Repository = (*Store)(nil)

type Option func(*Store)

// WithLockTimeout bounds how long a transaction waits for a stylist boundary.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		lockTimeout:   defaultLockTimeout,
		locks:         make(map[uuid.UUID]*semaphore.Weighted),
		global:        semaphore.NewWeighted(1),
		stylists:      make(map[uuid.UUID]domain.Stylist),
		services:      make(map[uuid.UUID]domain.Service),
		appointments:  make(map[uuid.UUID]domain.Appointment),
		blocks:        make(map[uuid.UUID]domain.BlockedSlot),
		exceptions:    make(map[uuid.UUID]domain.CalendarException),
		businessHours: make(map[time.Weekday]domain.BusinessHours),
		indexes:       make(map[uuid.UUID]*slotindex.Index),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) stylistLock(id uuid.UUID) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = semaphore.NewWeighted(1)
		s.locks[id] = l
	}
	return l
}

func (s *Store) acquire(ctx context.Context, sem *semaphore.Weighted) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	if err := sem.Acquire(lockCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return store.ErrLockTimeout
	}
	return nil
}

func (s *Store) InStylistTransaction(ctx context.Context, stylistID uuid.UUID, fn func(ctx context.Context, tx store.Tx) error) error {
	sem := s.stylistLock(stylistID)
	if err := s.acquire(ctx, sem); err != nil {
		return err
	}
	defer sem.Release(1)
	return s.run(ctx, newTx(s, stylistID), fn)
}

func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := s.acquire(ctx, s.global); err != nil {
		return err
	}
	defer s.global.Release(1)
	return s.run(ctx, newTx(s, uuid.Nil), fn)
}

// run commits tx only when fn succeeds. On error or panic the buffered writes
// are simply dropped.
func (s *Store) run(ctx context.Context, tx *memTx, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) GetStylist(ctx context.Context, id uuid.UUID) (domain.Stylist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stylists[id]
	if !ok {
		return domain.Stylist{}, store.ErrNotFound
	}
	st.WorkingHours = cloneHours(st.WorkingHours)
	return st, nil
}

func (s *Store) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return domain.Service{}, store.ErrNotFound
	}
	return svc, nil
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appt, ok := s.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return appt, nil
}

func (s *Store) GetBlock(ctx context.Context, id uuid.UUID) (domain.BlockedSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return domain.BlockedSlot{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) GetException(ctx context.Context, id uuid.UUID) (domain.CalendarException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exceptions[id]
	if !ok {
		return domain.CalendarException{}, store.ErrNotFound
	}
	e.Hours = append([]domain.ClockRange(nil), e.Hours...)
	return e, nil
}

func (s *Store) ListExceptions(ctx context.Context, stylistID *uuid.UUID, from, to domain.Date) ([]domain.CalendarException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CalendarException
	for _, e := range s.exceptions {
		if !exceptionMatches(e, stylistID, from, to) {
			continue
		}
		e.Hours = append([]domain.ClockRange(nil), e.Hours...)
		out = append(out, e)
	}
	sortExceptions(out)
	return out, nil
}

func exceptionMatches(e domain.CalendarException, stylistID *uuid.UUID, from, to domain.Date) bool {
	if e.StartDate.After(to) || e.EndDate.Before(from) {
		return false
	}
	return e.Global() || (stylistID != nil && *e.StylistID == *stylistID)
}

func sortExceptions(out []domain.CalendarException) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate == out[j].StartDate {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
}

func (s *Store) ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.BusinessHours, 0, len(s.businessHours))
	for _, bh := range s.businessHours {
		out = append(out, bh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (s *Store) ListOccupancy(ctx context.Context, stylistID uuid.UUID, window domain.TimeInterval) ([]domain.Occupancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[stylistID]
	if !ok {
		return nil, nil
	}
	return idx.Conflicts(window), nil
}

func (s *Store) ListAppointments(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Appointment
	for _, a := range s.appointments {
		if filter.StylistID != nil && a.StylistID != *filter.StylistID {
			continue
		}
		if filter.ClientID != "" && a.ClientID != filter.ClientID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, a.Status) {
			continue
		}
		if !filter.From.IsZero() && a.StartTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !a.StartTime.Before(filter.To) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) ListAuditEntries(ctx context.Context, filter store.AuditFilter) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		e := s.audit[i]
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListClientNotes(ctx context.Context, filter store.ClientNoteFilter) ([]domain.ClientNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ClientNote
	for i := len(s.notes) - 1; i >= 0; i-- {
		n := s.notes[i]
		if n.StylistID != filter.StylistID {
			continue
		}
		if filter.ClientID != "" && n.ClientID != filter.ClientID {
			continue
		}
		out = append(out, n)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListElapsed(ctx context.Context, cutoff time.Time, limit int) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Appointment
	for _, a := range s.appointments {
		if a.Status == domain.StatusConfirmed && !a.EndTime.After(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func hasStatus(statuses []domain.AppointmentStatus, st domain.AppointmentStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func cloneHours(h domain.WeeklyHours) domain.WeeklyHours {
	if h == nil {
		return nil
	}
	out := make(domain.WeeklyHours, len(h))
	for wd, ranges := range h {
		out[wd] = append([]domain.ClockRange(nil), ranges...)
	}
	return out
}

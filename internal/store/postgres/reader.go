package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/masterries/AppointmentManager/internal/domain"
)

// reader serves store.Reader from either the pool or an open transaction.
type reader struct {
	db bun.IDB
}

func (r reader) GetStylist(ctx context.Context, id uuid.UUID) (domain.Stylist, error) {
	var m domain.Stylist
	if err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.Stylist{}, notFound(err)
	}
	return m, nil
}

func (r reader) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	var m domain.Service
	if err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.Service{}, notFound(err)
	}
	return m, nil
}

func (r reader) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var m domain.Appointment
	if err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.Appointment{}, notFound(err)
	}
	return m, nil
}

func (r reader) GetBlock(ctx context.Context, id uuid.UUID) (domain.BlockedSlot, error) {
	var m domain.BlockedSlot
	if err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.BlockedSlot{}, notFound(err)
	}
	return m, nil
}

func (r reader) GetException(ctx context.Context, id uuid.UUID) (domain.CalendarException, error) {
	var m domain.CalendarException
	if err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.CalendarException{}, notFound(err)
	}
	return m, nil
}

func (r reader) ListExceptions(ctx context.Context, stylistID *uuid.UUID, from, to domain.Date) ([]domain.CalendarException, error) {
	var rows []domain.CalendarException
	q := r.db.NewSelect().
		Model(&rows).
		Where("start_date <= ?", to).
		Where("end_date >= ?", from)
	if stylistID != nil {
		q = q.Where("(stylist_id IS NULL OR stylist_id = ?)", *stylistID)
	} else {
		q = q.Where("stylist_id IS NULL")
	}
	if err := q.OrderExpr("start_date ASC, created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r reader) ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error) {
	var rows []domain.BusinessHours
	if err := r.db.NewSelect().Model(&rows).OrderExpr("weekday ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r reader) ListOccupancy(ctx context.Context, stylistID uuid.UUID, window domain.TimeInterval) ([]domain.Occupancy, error) {
	var rows []domain.Occupancy
	err := r.db.NewSelect().
		Model(&rows).
		Where("stylist_id = ?", stylistID).
		Where("start_time < ?", window.End).
		Where("end_time > ?", window.Start).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/store"
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgLockNotAvailable   = "55P03"

	slotIndexConstraint    = "slot_index_no_overlap"
	appointmentsPrimaryKey = "appointments_pkey"
)

type Repo struct {
	reader
	db          *bun.DB
	lockTimeout time.Duration
}

var _ store.Repository = (*Repo)(nil)

// NewRepo returns a repository whose stylist boundaries give up after lockTimeout.
func NewRepo(db *bun.DB, lockTimeout time.Duration) *Repo {
	return &Repo{reader: reader{db: db}, db: db, lockTimeout: lockTimeout}
}

type pgTx struct {
	reader
	tx bun.Tx
}

var _ store.Tx = pgTx{}

func (r *Repo) InStylistTransaction(ctx context.Context, stylistID uuid.UUID, fn func(ctx context.Context, tx store.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockStylistCalendar(ctx, tx, stylistID, r.lockTimeout); err != nil {
			return err
		}
		return fn(ctx, pgTx{reader: reader{db: tx}, tx: tx})
	})
}

func (r *Repo) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, pgTx{reader: reader{db: tx}, tx: tx})
	})
}

func lockStylistCalendar(ctx context.Context, tx bun.Tx, stylistID uuid.UUID, timeout time.Duration) error {
	if timeout > 0 {
		if _, err := tx.NewRaw(lockTimeoutSQL(timeout)).Exec(ctx); err != nil {
			return err
		}
	}
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", stylistID.String()).Exec(ctx)
	if isPgCode(err, pgLockNotAvailable) {
		return store.ErrLockTimeout
	}
	return err
}

// lockTimeoutSQL renders SET LOCAL; the statement takes no bind parameters.
func lockTimeoutSQL(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// translateInsertErr maps constraint violations raised by slot and appointment inserts.
func translateInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == slotIndexConstraint:
		return store.ErrConflict
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == appointmentsPrimaryKey:
		return store.ErrIdempotencyConflict
	case pgErr.Code == pgUniqueViolation:
		return store.ErrConflict
	case pgErr.Code == pgLockNotAvailable:
		return store.ErrLockTimeout
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (r *Repo) ListAppointments(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().Model(&rows)
	if filter.StylistID != nil {
		q = q.Where("stylist_id = ?", *filter.StylistID)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(filter.Statuses))
	}
	if !filter.From.IsZero() {
		q = q.Where("start_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("start_time < ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.OrderExpr("start_time ASC, id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) ListAuditEntries(ctx context.Context, filter store.AuditFilter) ([]domain.AuditEntry, error) {
	var rows []domain.AuditEntry
	q := r.db.NewSelect().Model(&rows)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.OrderExpr("created_at DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) ListClientNotes(ctx context.Context, filter store.ClientNoteFilter) ([]domain.ClientNote, error) {
	var rows []domain.ClientNote
	q := r.db.NewSelect().Model(&rows).Where("stylist_id = ?", filter.StylistID)
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.OrderExpr("created_at DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) ListElapsed(ctx context.Context, cutoff time.Time, limit int) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", domain.StatusConfirmed).
		Where("end_time <= ?", cutoff).
		OrderExpr("end_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (t pgTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Appointment{}, translateInsertErr(err)
	}
	if m.Status.Occupies() {
		occ := m.Occupancy()
		if _, err := t.tx.NewInsert().Model(&occ).Exec(ctx); err != nil {
			return domain.Appointment{}, translateInsertErr(err)
		}
	}
	return m, nil
}

func (t pgTx) TransitionAppointment(ctx context.Context, tr store.Transition) (domain.Appointment, error) {
	var m domain.Appointment
	q := t.tx.NewUpdate().
		Model(&m).
		Set("status = ?", tr.To).
		Set("updated_at = ?", time.Now().UTC())
	switch tr.To {
	case domain.StatusCancelled:
		q = q.Set("cancelled_at = ?", tr.At.UTC())
	case domain.StatusCompleted:
		q = q.Set("completed_at = ?", tr.At.UTC())
	}
	if tr.Notes != nil {
		q = q.Set("notes = ?", *tr.Notes)
	}
	err := q.Where("id = ?", tr.ID).
		Where("status = ?", tr.From).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := t.GetAppointment(ctx, tr.ID); getErr != nil {
			return domain.Appointment{}, getErr
		}
		return domain.Appointment{}, store.ErrStaleStatus
	}
	if err != nil {
		return domain.Appointment{}, err
	}

	if tr.From.Occupies() && !tr.To.Occupies() {
		if _, err := t.tx.NewDelete().
			Model((*domain.Occupancy)(nil)).
			Where("ref_id = ?", tr.ID).
			Exec(ctx); err != nil {
			return domain.Appointment{}, err
		}
	}
	return m, nil
}

func (t pgTx) InsertBlock(ctx context.Context, block domain.BlockedSlot) (domain.BlockedSlot, error) {
	m := block
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.BlockedSlot{}, translateInsertErr(err)
	}
	occ := m.Occupancy()
	if _, err := t.tx.NewInsert().Model(&occ).Exec(ctx); err != nil {
		return domain.BlockedSlot{}, translateInsertErr(err)
	}
	return m, nil
}

func (t pgTx) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.NewDelete().
		Model((*domain.BlockedSlot)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	_, err = t.tx.NewDelete().
		Model((*domain.Occupancy)(nil)).
		Where("ref_id = ?", id).
		Exec(ctx)
	return err
}

func (t pgTx) UpsertStylist(ctx context.Context, s domain.Stylist) (domain.Stylist, error) {
	m := s
	if m.WorkingHours == nil {
		m.WorkingHours = domain.WeeklyHours{}
	}
	err := t.tx.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("name = EXCLUDED.name").
		Set("working_hours = EXCLUDED.working_hours").
		Set("active = EXCLUDED.active").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Scan(ctx)
	if err != nil {
		return domain.Stylist{}, translateInsertErr(err)
	}
	return m, nil
}

func (t pgTx) UpsertService(ctx context.Context, s domain.Service) (domain.Service, error) {
	m := s
	err := t.tx.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("duration_minutes = EXCLUDED.duration_minutes").
		Set("active = EXCLUDED.active").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Scan(ctx)
	if err != nil {
		return domain.Service{}, translateInsertErr(err)
	}
	return m, nil
}

func (t pgTx) SetBusinessHours(ctx context.Context, hours []domain.BusinessHours) error {
	if _, err := t.tx.NewDelete().
		Model((*domain.BusinessHours)(nil)).
		Where("TRUE").
		Exec(ctx); err != nil {
		return err
	}
	if len(hours) == 0 {
		return nil
	}
	rows := make([]domain.BusinessHours, len(hours))
	copy(rows, hours)
	_, err := t.tx.NewInsert().Model(&rows).Exec(ctx)
	return translateInsertErr(err)
}

func (t pgTx) InsertException(ctx context.Context, e domain.CalendarException) (domain.CalendarException, error) {
	m := e
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.CalendarException{}, translateInsertErr(err)
	}
	return m, nil
}

func (t pgTx) DeleteException(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.NewDelete().
		Model((*domain.CalendarException)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t pgTx) InsertClientNote(ctx context.Context, n domain.ClientNote) (domain.ClientNote, error) {
	m := n
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.ClientNote{}, translateInsertErr(err)
	}
	return m, nil
}

func (t pgTx) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	m := entry
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	return err
}

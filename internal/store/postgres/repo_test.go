package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/masterries/AppointmentManager/internal/store"
)

func TestTranslateInsertErr(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "slot overlap",
			err:  &pgconn.PgError{Code: pgExclusionViolation, ConstraintName: slotIndexConstraint},
			want: store.ErrConflict,
		},
		{
			name: "wrapped slot overlap",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgExclusionViolation, ConstraintName: slotIndexConstraint}),
			want: store.ErrConflict,
		},
		{
			name: "appointment id reused",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: appointmentsPrimaryKey},
			want: store.ErrIdempotencyConflict,
		},
		{
			name: "other unique violation",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "stylists_user_id_idx"},
			want: store.ErrConflict,
		},
		{
			name: "lock not available",
			err:  &pgconn.PgError{Code: pgLockNotAvailable},
			want: store.ErrLockTimeout,
		},
		{
			name: "not a postgres error",
			err:  other,
			want: other,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateInsertErr(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("translateInsertErr = %v, want %v", got, tt.want)
			}
		})
	}

	if translateInsertErr(nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestLockTimeoutSQL(t *testing.T) {
	if got := lockTimeoutSQL(1500 * time.Millisecond); got != "SET LOCAL lock_timeout = '1500ms'" {
		t.Fatalf("lockTimeoutSQL = %q", got)
	}
	if got := lockTimeoutSQL(time.Microsecond); got != "SET LOCAL lock_timeout = '1ms'" {
		t.Fatalf("sub-millisecond timeout = %q, want 1ms", got)
	}
}

package schedulingv1

import "time"

// Identifiers are UUID strings. Dates are "YYYY-MM-DD" in the salon's time
// zone. Clock windows are "HH:MM-HH:MM"; "24:00" closes at midnight.

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Appointment struct {
	ID              string     `json:"id"`
	StylistID       string     `json:"stylist_id"`
	ServiceID       string     `json:"service_id"`
	ClientID        string     `json:"client_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	RescheduledFrom string     `json:"rescheduled_from,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type BlockedSlot struct {
	ID        string    `json:"id"`
	StylistID string    `json:"stylist_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkingHours is keyed by lowercase weekday name ("monday").
type WorkingHours map[string][]string

type Stylist struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Name         string       `json:"name"`
	WorkingHours WorkingHours `json:"working_hours"`
	Active       bool         `json:"active"`
}

type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          bool   `json:"active"`
}

type BusinessDay struct {
	Weekday string `json:"weekday"`
	Open    string `json:"open,omitempty"`
	Close   string `json:"close,omitempty"`
	Closed  bool   `json:"closed,omitempty"`
}

type CalendarException struct {
	ID        string   `json:"id"`
	StylistID string   `json:"stylist_id,omitempty"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Closed    bool     `json:"closed"`
	Hours     []string `json:"hours,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

type AuditEntry struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	ActorRole  string         `json:"actor_role"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type AvailableSlotsRequest struct {
	StylistID string `json:"stylist_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
}

type AvailableSlotsResponse struct {
	Slots []Interval `json:"slots"`
}

type EffectiveHoursRequest struct {
	StylistID string `json:"stylist_id"`
	Date      string `json:"date"`
}

type EffectiveHoursResponse struct {
	Hours    []Interval `json:"hours"`
	Occupied []Interval `json:"occupied"`
}

// BookRequest is retried safely when the call carries an "idempotency-key"
// metadata entry.
type BookRequest struct {
	StylistID string    `json:"stylist_id"`
	ServiceID string    `json:"service_id"`
	ClientID  string    `json:"client_id"`
	Start     time.Time `json:"start"`
	Notes     string    `json:"notes,omitempty"`
}

type BookResponse struct {
	Appointment Appointment `json:"appointment"`
}

type BlockRequest struct {
	StylistID string    `json:"stylist_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Reason    string    `json:"reason,omitempty"`
}

type BlockResponse struct {
	Block BlockedSlot `json:"block"`
}

type UnblockRequest struct {
	BlockID string `json:"block_id"`
}

type UnblockResponse struct {
	Block BlockedSlot `json:"block"`
}

type CancelRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason,omitempty"`
}

type CancelResponse struct {
	Appointment Appointment `json:"appointment"`
}

type RescheduleRequest struct {
	AppointmentID string    `json:"appointment_id"`
	NewStart      time.Time `json:"new_start"`
}

type RescheduleResponse struct {
	Appointment Appointment `json:"appointment"`
}

type CompleteRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Notes         *string `json:"notes,omitempty"`
}

type CompleteResponse struct {
	Appointment Appointment `json:"appointment"`
}

type GetAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type GetAppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

type ListAppointmentsRequest struct {
	StylistID string     `json:"stylist_id,omitempty"`
	ClientID  string     `json:"client_id,omitempty"`
	Statuses  []string   `json:"statuses,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}

type ListAppointmentsResponse struct {
	Appointments []Appointment `json:"appointments"`
}

type UpsertStylistRequest struct {
	ID           string       `json:"id,omitempty"`
	UserID       string       `json:"user_id"`
	Name         string       `json:"name"`
	WorkingHours WorkingHours `json:"working_hours"`
	Active       bool         `json:"active"`
}

type UpsertStylistResponse struct {
	Stylist Stylist `json:"stylist"`
}

type UpsertServiceRequest struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          bool   `json:"active"`
}

type UpsertServiceResponse struct {
	Service Service `json:"service"`
}

type SetWorkingHoursRequest struct {
	StylistID string       `json:"stylist_id"`
	Hours     WorkingHours `json:"hours"`
}

type SetWorkingHoursResponse struct {
	Stylist Stylist `json:"stylist"`
}

type SetBusinessHoursRequest struct {
	Days []BusinessDay `json:"days"`
}

type SetBusinessHoursResponse struct {
	Days []BusinessDay `json:"days"`
}

type AddCalendarExceptionRequest struct {
	// StylistID is empty for a salon-wide exception.
	StylistID string   `json:"stylist_id,omitempty"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date,omitempty"`
	Closed    bool     `json:"closed"`
	Hours     []string `json:"hours,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

type AddCalendarExceptionResponse struct {
	Exception CalendarException `json:"exception"`
}

type RemoveCalendarExceptionRequest struct {
	ExceptionID string `json:"exception_id"`
}

type RemoveCalendarExceptionResponse struct {
	Exception CalendarException `json:"exception"`
}

type ListAuditLogRequest struct {
	ActorID    string `json:"actor_id,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type ListAuditLogResponse struct {
	Entries []AuditEntry `json:"entries"`
}

type ClientNote struct {
	ID        string    `json:"id"`
	StylistID string    `json:"stylist_id"`
	ClientID  string    `json:"client_id"`
	Note      string    `json:"note"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AddClientNoteRequest struct {
	StylistID string `json:"stylist_id"`
	ClientID  string `json:"client_id"`
	Note      string `json:"note"`
}

type AddClientNoteResponse struct {
	Note ClientNote `json:"note"`
}

type ListClientNotesRequest struct {
	StylistID string `json:"stylist_id"`
	ClientID  string `json:"client_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type ListClientNotesResponse struct {
	Notes []ClientNote `json:"notes"`
}

package booking

import (
	"github.com/masterries/AppointmentManager/internal/domain"
)

// Every mutating operation checks its actor explicitly; there is no ambient
// permission model.

func requireActor(actor domain.Actor) error {
	if !actor.Valid() {
		return newError(KindUnauthorized, "caller identity is missing")
	}
	return nil
}

func ownsStylist(actor domain.Actor, st domain.Stylist) bool {
	return actor.Role == domain.RoleStylist && st.UserID != "" && st.UserID == actor.UserID
}

func requireAdmin(actor domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return newError(KindUnauthorized, "only an administrator may do this")
	}
	return nil
}

// canBook: clients book for themselves, a stylist books on their own calendar
// for any client, admins book anything.
func canBook(actor domain.Actor, clientID string, st domain.Stylist) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	switch {
	case actor.IsAdmin():
		return nil
	case actor.Role == domain.RoleClient && clientID == actor.UserID:
		return nil
	case ownsStylist(actor, st):
		return nil
	}
	return newError(KindUnauthorized, "not allowed to book for client %q", clientID).withStylist(st.ID)
}

func canManageCalendar(actor domain.Actor, st domain.Stylist) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || ownsStylist(actor, st) {
		return nil
	}
	return newError(KindUnauthorized, "not allowed to change this stylist's calendar").withStylist(st.ID)
}

// canTouchAppointment covers cancel, reschedule and reads.
func canTouchAppointment(actor domain.Actor, appt domain.Appointment, st domain.Stylist) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	switch {
	case actor.IsAdmin():
		return nil
	case actor.Role == domain.RoleClient && appt.ClientID == actor.UserID:
		return nil
	case ownsStylist(actor, st):
		return nil
	}
	return newError(KindUnauthorized, "not allowed to access this appointment").withAppointment(appt.ID)
}

// canAccessClientNotes: notes stay with the stylist who keeps them, plus admins.
func canAccessClientNotes(actor domain.Actor, st domain.Stylist) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || ownsStylist(actor, st) {
		return nil
	}
	return newError(KindUnauthorized, "client notes are private to their stylist").withStylist(st.ID)
}

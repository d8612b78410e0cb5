package domain

type Role string

const (
	RoleClient  Role = "client"
	RoleStylist Role = "stylist"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleStylist, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	UserID string
	Role   Role
}

// System is used for time-driven work such as the completion sweep.
var System = Actor{UserID: "system", Role: RoleAdmin}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Valid() bool {
	return a.UserID != "" && a.Role.Valid()
}

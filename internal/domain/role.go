package domain

// Role is a user's authorization level.
type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// ValidRoles returns every role in privilege order.
func ValidRoles() []Role {
	return []Role{RoleUser, RolePublisher, RoleAdmin}
}

// IsValidRole reports whether r names a known role.
func IsValidRole(r string) bool {
	for _, v := range ValidRoles() {
		if string(v) == r {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

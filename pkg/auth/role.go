package auth

// Role is the closed set of actor roles known to the marketplace.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "service_provider"
	RoleAdmin    Role = "admin"
)

// IsValid returns true if the role is a recognized marketplace role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

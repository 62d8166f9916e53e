package identity

// Role is the closed set of profile roles. Authorization decisions are pure
// functions over this enumeration, independent of how profiles are stored.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// In reports membership of r in the allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AdminRoles is the allowed set for administrator-gated operations.
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// Profile is the caller's directory record. Read-only to this pipeline.
type Profile struct {
	ID        string
	Role      Role
	Email     string
	Name      string
	CompanyID string
}

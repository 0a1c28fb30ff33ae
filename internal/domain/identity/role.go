package identity

import "github.com/erp/console/internal/domain/shared"

// Role is the closed set of console roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// AllRoles lists every known role
var AllRoles = []Role{RoleAdmin, RoleManager, RoleUser}

// ParseRole validates a role coming from the API. Matching is case-sensitive.
func ParseRole(raw string) (Role, error) {
	return shared.ParseEnum("role", raw, AllRoles...)
}

// UnmarshalText rejects unknown roles at the decoding boundary
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// String returns the role name
func (r Role) String() string {
	return string(r)
}

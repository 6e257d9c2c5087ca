package domain

import "fmt"

// Role constants define the closed set of user roles. Authorization is
// set-membership over these values, not a hierarchy.
const (
	RoleGuest      = "GUEST"
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []string {
	return []string{RoleGuest, RoleUser, RoleAdmin, RoleSuperAdmin}
}

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRoles validates a set of role strings against the closed role set.
// Unknown roles are rejected here, at the data-model boundary, rather than
// at comparison time.
func ParseRoles(roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("roles must not be empty")
	}
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if !IsValidRole(r) {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

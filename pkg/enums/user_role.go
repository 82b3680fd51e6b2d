package enums

import (
	"fmt"
	"strings"
)

// UserRole separates customers from staff accounts in the seed catalog.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleAdmin,
}

// legacy catalog exports use Spanish role names
var userRoleAliases = map[string]UserRole{
	"cliente":       UserRoleCustomer,
	"administrador": UserRoleAdmin,
	"admin":         UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUserRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	if alias, ok := userRoleAliases[normalized]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

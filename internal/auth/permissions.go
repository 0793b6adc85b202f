package auth

import "errors"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Permissions per role.
var Permissions = map[string][]string{
	RoleAdmin: {
		"users:read",
		"users:write",
		"robots:write",
		"robots:delete",
		"requests:moderate",
		"plans:write",
		"system:admin",
	},
	RoleUser: {
		"users:read:self",
		"users:write:self",
		"robots:read",
		"payments:write:self",
	},
}

// HasPermission reports whether the role carries the permission.
func HasPermission(role, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the claims belong to an administrator.
func IsAdmin(claims *Claims) bool {
	return claims.Role == RoleAdmin
}

// ValidateRole rejects unknown role values.
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return errors.New("invalid role")
	}
}

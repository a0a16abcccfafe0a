package models

import "fmt"

// Role is the semantic account role used throughout the core. Storage and
// token adapters convert to/from the string form explicitly via String and
// ParseRole; the core never works with raw role strings.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	default:
		return "USER"
	}
}

// ParseRole maps a stored role string back to the enum. Unknown values are
// rejected so that a corrupted row cannot be silently promoted.
func ParseRole(s string) (Role, error) {
	switch s {
	case "USER":
		return RoleUser, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}

package user

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
)

// Role is who a User is on the portal: RoleStudent or RoleAdmin.
// The zero value is not a valid Role.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleAdmin
)

var (
	Roles = []Role{RoleStudent, RoleAdmin}

	ErrInvalidRole = errors.New("invalid role")
)

// ParseRole parses the text form of a Role ("student" | "admin"), ignoring case & surrounding spaces.
func ParseRole(s string) (Role, error) {
	switch core.CleanString(s, true /* lower */) {
	case "student":
		return RoleStudent, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, errors.Wrapf(ErrInvalidRole, "%q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Label is the human readable name of the Role.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrInvalidRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

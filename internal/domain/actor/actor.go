package actor

import "strings"

type Role string

const (
	RoleStudent   Role = "student"
	RoleFaculty   Role = "faculty"
	RoleOther     Role = "other"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// ParseRole accepts any casing; unknown roles return false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleFaculty, RoleOther, RoleLibrarian, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) IsStaff() bool { return r == RoleLibrarian || r == RoleAdmin }

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsStaff() bool { return a.Role.IsStaff() }

// Owns reports whether the actor is the given user.
func (a Actor) Owns(userID string) bool { return a.UserID != "" && a.UserID == userID }

// CanAccess is true for staff and for the owner of the resource.
func (a Actor) CanAccess(ownerID string) bool { return a.IsStaff() || a.Owns(ownerID) }

package users

import (
	"strings"

	"schoolportal/internal/apperr"
)

// Role decides which dashboard and which API calls a user may reach.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleFaculty, RoleStudent}

// ParseRole validates a role name coming from the outside.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperr.Invalid("role", "role must be one of: admin, faculty, student")
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is a row of the users table.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
	Fullname     string `db:"fullname" json:"fullname"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsFaculty() bool { return u.Role == RoleFaculty }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// NormalizeEmail trims and lower-cases an address so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" form:"role" validate:"required,oneof=admin faculty student"`
	Fullname string `json:"fullname" form:"fullname" validate:"required,max=120"`
}

func (nu *NewUser) normalize() {
	nu.Email = NormalizeEmail(nu.Email)
	nu.Role = strings.ToLower(strings.TrimSpace(nu.Role))
	nu.Fullname = strings.TrimSpace(nu.Fullname)
}

package models

import "time"

// UserRole represents the closed set of roles a profile can hold.
type UserRole string

const (
	RoleAdmin         UserRole = "admin"
	RoleSubAdmin      UserRole = "sub_admin"
	RoleClassTeacher  UserRole = "class_teacher"
	RoleCommonTeacher UserRole = "common_teacher"
	RoleInternTeacher UserRole = "intern_teacher"
	RoleStudent       UserRole = "student"
)

// AllRoles lists every declared role in display order.
var AllRoles = []UserRole{
	RoleAdmin,
	RoleSubAdmin,
	RoleClassTeacher,
	RoleCommonTeacher,
	RoleInternTeacher,
	RoleStudent,
}

// TeachingRoles lists the roles allowed to own or teach a class.
var TeachingRoles = []UserRole{RoleClassTeacher, RoleCommonTeacher, RoleInternTeacher}

// Valid reports whether the role belongs to the enumeration.
func (r UserRole) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsTeaching reports whether the role is one of the teacher roles.
func (r UserRole) IsTeaching() bool {
	switch r {
	case RoleClassTeacher, RoleCommonTeacher, RoleInternTeacher:
		return true
	default:
		return false
	}
}

// IsAdministrative is true for admin and sub_admin.
func (r UserRole) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleSubAdmin
}

// User is the sign-in identity stored in the users table.
type User struct {
	ID                string     `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	EmailVerifiedAt   *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	VerificationToken *string    `db:"verification_token" json:"-"`
	LastLogin         *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Verified reports whether the identity confirmed its email address.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

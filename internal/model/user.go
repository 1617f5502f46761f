package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // Default role
	UserRoleAdmin UserRole = "admin" // Back-office administrator
)

// IsValid returns true if the role is known
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	default:
		return false
	}
}

// Field length limits for users
const (
	MaxUserNameLength  = 255
	MaxUserEmailLength = 255
	MinPasswordLength  = 8
	MaxPasswordLength  = 72 // bcrypt input limit
)

// UserSortColumns lists the columns a user listing may be ordered by
var UserSortColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"email":      true,
	"role":       true,
	"created_at": true,
	"updated_at": true,
}

// UserSearchColumns are matched case-insensitively by the search parameter
var UserSearchColumns = []string{"name", "email"}

// User represents a back-office user account
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null;index"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose password hash
	Role         UserRole  `json:"role" gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserInput is the allow-listed body accepted on create and update.
// Role, identifiers and timestamps in a request body are never read.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims whitespace and lower-cases the email
func (r *UserInput) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate validates the user input. A password is mandatory on create;
// on update an empty password means "keep the current one".
func (r *UserInput) Validate(creating bool) []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: msgRequired("name")})
	} else if tooLong(r.Name, MaxUserNameLength) {
		errors = append(errors, FieldError{Field: "name", Message: msgMax("name", MaxUserNameLength)})
	}

	switch {
	case r.Email == "":
		errors = append(errors, FieldError{Field: "email", Message: msgRequired("email")})
	case !IsValidEmail(r.Email):
		errors = append(errors, FieldError{Field: "email", Message: msgEmail("email")})
	case tooLong(r.Email, MaxUserEmailLength):
		errors = append(errors, FieldError{Field: "email", Message: msgMax("email", MaxUserEmailLength)})
	}

	switch {
	case r.Password == "" && creating:
		errors = append(errors, FieldError{Field: "password", Message: msgRequired("password")})
	case r.Password == "":
		// unchanged
	case utf8.RuneCountInString(r.Password) < MinPasswordLength:
		errors = append(errors, FieldError{Field: "password", Message: msgMin("password", MinPasswordLength)})
	case len(r.Password) > MaxPasswordLength:
		errors = append(errors, FieldError{Field: "password", Message: msgMax("password", MaxPasswordLength)})
	}

	return errors
}

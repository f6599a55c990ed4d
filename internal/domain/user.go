package domain

import (
	"fmt"
	"time"
)

// UserRole represents a user's access level within a course context
type UserRole string

const (
	UserRoleStudent    UserRole = "student"
	UserRoleTA         UserRole = "ta"
	UserRoleInstructor UserRole = "instructor"
)

// User represents an authenticated account. Accounts are provisioned
// automatically on first sight of a token subject, with the student role.
type User struct {
	ID        string
	Subject   string
	Email     string
	Role      UserRole
	CreatedAt time.Time
}

// NewUser creates a new User instance
func NewUser(id, subject, email string, role UserRole, createdAt time.Time) *User {
	return &User{
		ID:        id,
		Subject:   subject,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// CanReview reports whether the user may flag logs and submit corrections
func (u *User) CanReview() bool {
	return u.Role == UserRoleTA || u.Role == UserRoleInstructor
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if u.Subject == "" {
		return fmt.Errorf("user Subject is required")
	}

	if !isValidUserRole(u.Role) {
		return fmt.Errorf("user Role is invalid: %s", u.Role)
	}

	return nil
}

// isValidUserRole checks if a UserRole is valid
func isValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleStudent, UserRoleTA, UserRoleInstructor:
		return true
	}
	return false
}

// ParseUserRole converts a string into a UserRole
func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !isValidUserRole(role) {
		return "", fmt.Errorf("invalid user role: %s", s)
	}
	return role, nil
}

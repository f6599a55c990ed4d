package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCanReview(t *testing.T) {
	tests := []struct {
		role UserRole
		want bool
	}{
		{UserRoleStudent, false},
		{UserRoleTA, true},
		{UserRoleInstructor, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := User{Role: tt.role}
			assert.Equal(t, tt.want, u.CanReview())
		})
	}
}

func TestValidateUser(t *testing.T) {
	now := time.Now()

	u := NewUser("u1", "auth0|abc", "student@example.edu", UserRoleStudent, now)
	require.NoError(t, ValidateUser(u))

	u.Role = "admin"
	err := ValidateUser(u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Role is invalid")

	u = NewUser("u1", "", "student@example.edu", UserRoleStudent, now)
	err = ValidateUser(u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Subject is required")
}

func TestCourseEffectiveSystemPrompt(t *testing.T) {
	c := Course{SystemPrompt: ""}
	assert.Equal(t, DefaultSystemPrompt, c.EffectiveSystemPrompt())

	c.SystemPrompt = "You are the CS 2110 assistant."
	assert.Equal(t, "You are the CS 2110 assistant.", c.EffectiveSystemPrompt())
}

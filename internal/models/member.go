package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole represents the role of a member in the organization
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// Member represents a registered visitation volunteer
type Member struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never expose in JSON
	Role         MemberRole `json:"role" db:"role"`
	Active       bool       `json:"active" db:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the member has administrator privileges
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// RegisterRequest is the payload for member sign-up
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for member sign-in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the payload for a member changing their own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdateMemberRequest is the admin payload for changing role/active status
type UpdateMemberRequest struct {
	Role   *MemberRole `json:"role,omitempty" binding:"omitempty,oneof=ADMIN MEMBER"`
	Active *bool       `json:"active,omitempty"`
}

// UpdateProfileRequest is the payload for a member updating their own profile
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,min=2"`
}

// RefreshRequest carries a refresh token for rotation
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned on successful register, login, or token refresh
type AuthResponse struct {
	Member       *Member `json:"member"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"` // Access token lifetime in seconds
}

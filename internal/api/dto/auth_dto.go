package dto

import (
	"time"

	"github.com/spec-kit/referral-service/internal/domain"
)

// RegisterRequest payload for new customer accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse renders an account. is_firm_manager and is_superuser are derived from role.
type UserResponse struct {
	ID            int64       `json:"id"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	FullName      string      `json:"full_name"`
	Role          domain.Role `json:"role"`
	FirmID        *string     `json:"firm_id"`
	IsFirmManager bool        `json:"is_firm_manager"`
	IsSuperuser   bool        `json:"is_superuser"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
}

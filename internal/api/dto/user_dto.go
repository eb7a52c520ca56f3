package dto

import (
	"time"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for self registration.
type RegisterRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Team     domain.Team `json:"team"`
	Role     domain.Role `json:"role"`
}

// CreateUserRequest payload for admin user creation. The role is always User.
type CreateUserRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Team     domain.Team `json:"team"`
}

// SessionUser describes the logged-in account.
type SessionUser struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Team     string      `json:"team"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token        string      `json:"token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	LandingRoute string      `json:"landing_route"`
	User         SessionUser `json:"user"`
}

// NewSessionUser converts a session.
func NewSessionUser(sess domain.Session) SessionUser {
	return SessionUser{
		UserID:   sess.UserID,
		Username: sess.Username,
		Role:     sess.Role,
		Team:     sess.Team,
	}
}

package dto

import (
	"strings"

	"github.com/Jorge-Marco5/go-api-template/internal/domain"
)

// RegisterRequest represents the registration payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// Validate applies the same checks the route validators run: a minimal
// password length and a plausible email.
func (r *RegisterRequest) Validate() (bool, string) {
	if len(r.Password) < 6 {
		return false, "password must be at least 6 characters"
	}
	if !strings.Contains(r.Email, "@") {
		return false, "email must be valid"
	}
	return true, ""
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body fallback when the refresh cookie is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthData is the data payload returned by register and login.
type AuthData struct {
	User         *domain.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
}

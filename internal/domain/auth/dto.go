package auth

import (
	"github.com/google/uuid"

	"github.com/socialpay/socialpay-api/internal/domain/user"
)

// RegisterRequest for POST /auth/register. At least one of Email or Phone is required.
type RegisterRequest struct {
	Name       string     `json:"name" validate:"required,min=2,max=120"`
	Email      string     `json:"email" validate:"omitempty,email,max=255"`
	Phone      string     `json:"phone" validate:"omitempty,min=7,max=32"`
	Password   string     `json:"password" validate:"required,min=8,max=128"`
	ReferrerID *uuid.UUID `json:"referrer_id"`
}

// LoginRequest for POST /auth/login. Identifier is an email or phone number.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User        *user.User `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"ijazah/pkg/domain"
)

// User is an account that can authenticate against the issuance service.
// Students are linked to their holder record through Holder.UserID.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token and basic profile data.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
}

// Profile is the public-safe view of a user returned by /auth/me.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

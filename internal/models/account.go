package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is an operator who can create and manage groups.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// Email is the login identifier (unique).
	Email string

	// DisplayName is shown in group listings.
	DisplayName string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// NewAccount returns an account with a fresh ID and timestamps.
func NewAccount(email, displayName, passwordHash string) *Account {
	now := time.Now().Unix()
	return &Account{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

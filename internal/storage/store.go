// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/cashflow/internal/models"
)

// ErrNotFound is returned (possibly wrapped) when a requested record does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("conflict")

// Store defines the interface for roster, debt and account storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group with its ordered members and channels.
	// ID and CreatedAt are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID with members in roster order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByOwner returns the groups owned by an account, newest first.
	ListGroupsByOwner(ctx context.Context, ownerID string) ([]*models.Group, error)

	// DeleteGroup removes a group together with its members and debts.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddDebts records debts against a group in a single transaction.
	AddDebts(ctx context.Context, groupID string, debts []*models.Debt) error

	// ListDebts returns a group's debts in the order they were recorded.
	ListDebts(ctx context.Context, groupID string) ([]*models.Debt, error)

	// CreateAccount persists a new account. Returns ErrConflict if the email
	// is taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccountByEmail looks up an account by email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByID looks up an account by ID.
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)

	// Close releases any resources held by the store.
	Close() error
}

// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitperfect/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyMember is returned when adding a user to a group they already belong to.
	ErrAlreadyMember = errors.New("already a member of this group")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. user.ID must be set.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore

	// CreateGroup persists a new group together with its initial members.
	// The ID, JoinCode and CreatedAt fields are populated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByJoinCode retrieves a group by its join code.
	GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error)

	// ListGroupsByMember returns every group the user belongs to, newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMember adds a user to a group. Returns ErrAlreadyMember if they
	// already belong to it.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// DeleteGroup removes a group with its memberships and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists a new expense with its items.
	// ID and CreatedAt fields are populated when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its items.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense and its items.
	DeleteExpense(ctx context.Context, expenseID string) error

	// GroupLedger reads a group's roster and all its expenses (oldest first)
	// inside a single read transaction.
	GroupLedger(ctx context.Context, groupID string) (*models.Ledger, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/housesplit/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned (wrapped) when a write lost a race with another writer.
	ErrConflict = errors.New("record changed concurrently")
)

// Store defines the record store the engine reads snapshots from.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer. Writes are last-write-wins per record.
type Store interface {
	// CreateExpense persists a new expense.
	// The expense.ID, CreatedAt and UpdatedAt fields will be populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by its ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an existing expense, including participants and shares.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns the expenses of the given periods, newest first.
	// With no periods, every expense is returned.
	ListExpenses(ctx context.Context, periods ...models.Period) ([]models.Expense, error)

	// GetSettlement retrieves a settlement by its ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// FindSettlement retrieves the settlement for a (debtor, creditor, period) key.
	FindSettlement(ctx context.Context, key models.SettlementKey) (*models.Settlement, error)

	// CreateSettlement inserts a new settlement and assigns its ID. It fails with
	// ErrConflict when the (debtor, creditor, period) key already has a record.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// UpdateSettlement replaces the settlement with the same ID, provided its stored
	// status is still from. It fails with ErrConflict when the status has changed.
	UpdateSettlement(ctx context.Context, settlement *models.Settlement, from models.Status) error

	// ListSettlements returns the settlements of the given periods.
	// With no periods, every settlement is returned.
	ListSettlements(ctx context.Context, periods ...models.Period) ([]models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}

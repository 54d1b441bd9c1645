// Package storage defines the per-user store ports the services are written
// against. Every operation is scoped by an explicit user namespace; nothing
// reads ambient session state.
package storage

import (
	"context"

	"spendwise/internal/core"
)

// TransactionStore is CRUD access to a user's transaction collection.
// ListTransactions returns newest first (createdAt descending); a limit of
// zero or less means no limit. QueryTransactionsByCategory matches the stored
// denormalized category name exactly.
type TransactionStore interface {
	ListTransactions(ctx context.Context, user string, limit int) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, user string, t core.Transaction) (string, error)
	UpdateTransaction(ctx context.Context, user, id string, t core.Transaction) error
	DeleteTransaction(ctx context.Context, user, id string) error
	QueryTransactionsByCategory(ctx context.Context, user, category string) ([]core.Transaction, error)
}

// CategoryStore is CRUD access to a user's category collection.
type CategoryStore interface {
	ListCategories(ctx context.Context, user string) ([]core.Category, error)
	CreateCategory(ctx context.Context, user string, c core.Category) (string, error)
	UpdateCategory(ctx context.Context, user, id, name string) error
	DeleteCategory(ctx context.Context, user, id string) error
}

// Batch accumulates mutations and commits them as one atomic unit: after
// Commit either every staged operation is visible or none is. A batch that
// fails leaves prior state unchanged and is not reusable.
type Batch interface {
	UpdateTransactionCategory(id, category string)
	DeleteTransaction(id string)
	CreateCategory(name string)
	UpdateCategory(id, name string)
	DeleteCategory(id string)
	Commit(ctx context.Context) error
}

// Store is the full per-user document store surface.
type Store interface {
	TransactionStore
	CategoryStore
	Batch(user string) Batch
	Close() error
}

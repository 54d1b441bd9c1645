// Package sqlite implements the store ports on a local single-file database.
// Batches map onto a single transaction, which gives the same all-or-nothing
// visibility the hosted backend provides via its native batch primitive.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const txnColumns = "id, date, type, amount, category, description, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var createdAt int64
	err := row.Scan(&t.ID, &t.Date, &t.Type, &t.Amount, &t.Category, &t.Description, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, user string, limit int) ([]core.Transaction, error) {
	q := "SELECT " + txnColumns + " FROM transactions WHERE user = ? ORDER BY created_at DESC, id DESC"
	args := []any{user}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, core.StoreFailure("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, core.StoreFailure("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreFailure("list transactions", err)
	}
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, user string, t core.Transaction) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (id, user, date, type, amount, category, description, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, user, t.Date, t.Type, t.Amount, t.Category, t.Description, time.Now().UTC().UnixNano())
	if err != nil {
		return "", core.StoreFailure("create transaction", err)
	}
	return id, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, user, id string, t core.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET date = ?, type = ?, amount = ?, category = ?, description = ? WHERE user = ? AND id = ?",
		t.Date, t.Type, t.Amount, t.Category, t.Description, user, id)
	if err != nil {
		return core.StoreFailure("update transaction", err)
	}
	return requireAffected(res, "transaction", id)
}

func (s *Store) DeleteTransaction(ctx context.Context, user, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE user = ? AND id = ?", user, id)
	if err != nil {
		return core.StoreFailure("delete transaction", err)
	}
	return requireAffected(res, "transaction", id)
}

func (s *Store) QueryTransactionsByCategory(ctx context.Context, user, category string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE user = ? AND category = ? ORDER BY created_at DESC, id DESC",
		user, category)
	if err != nil {
		return nil, core.StoreFailure("query transactions by category", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, core.StoreFailure("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreFailure("query transactions by category", err)
	}
	return out, nil
}

func (s *Store) ListCategories(ctx context.Context, user string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM categories WHERE user = ? ORDER BY created_at, id", user)
	if err != nil {
		return nil, core.StoreFailure("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, core.StoreFailure("scan category", err)
		}
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreFailure("list categories", err)
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, user string, c core.Category) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, user, name, created_at) VALUES (?, ?, ?, ?)",
		id, user, c.Name, time.Now().UTC().UnixNano())
	if err != nil {
		return "", core.StoreFailure("create category", err)
	}
	return id, nil
}

func (s *Store) UpdateCategory(ctx context.Context, user, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ? WHERE user = ? AND id = ?", name, user, id)
	if err != nil {
		return core.StoreFailure("update category", err)
	}
	return requireAffected(res, "category", id)
}

func (s *Store) DeleteCategory(ctx context.Context, user, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE user = ? AND id = ?", user, id)
	if err != nil {
		return core.StoreFailure("delete category", err)
	}
	return requireAffected(res, "category", id)
}

func (s *Store) Batch(user string) storage.Batch {
	return &batch{store: s, user: user}
}

type batch struct {
	store *Store
	user  string
	ops   []func(ctx context.Context, tx *sql.Tx) error
}

func (b *batch) UpdateTransactionCategory(id, category string) {
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE transactions SET category = ? WHERE user = ? AND id = ?", category, b.user, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "transaction", id)
	})
}

func (b *batch) DeleteTransaction(id string) {
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE user = ? AND id = ?", b.user, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "transaction", id)
	})
}

func (b *batch) CreateCategory(name string) {
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, user, name, created_at) VALUES (?, ?, ?, ?)",
			uuid.NewString(), b.user, name, time.Now().UTC().UnixNano())
		return err
	})
}

func (b *batch) UpdateCategory(id, name string) {
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE categories SET name = ? WHERE user = ? AND id = ?", name, b.user, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "category", id)
	})
}

func (b *batch) DeleteCategory(id string) {
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE user = ? AND id = ?", b.user, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "category", id)
	})
}

func (b *batch) Commit(ctx context.Context) error {
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return core.StoreFailure("begin batch", err)
	}
	for _, op := range b.ops {
		if err := op(ctx, tx); err != nil {
			tx.Rollback()
			if core.IsNotFound(err) {
				return err
			}
			return core.StoreFailure("apply batch", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.StoreFailure("commit batch", err)
	}
	return nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.StoreFailure("rows affected", err)
	}
	if n == 0 {
		return core.NotFound(kind, id)
	}
	return nil
}

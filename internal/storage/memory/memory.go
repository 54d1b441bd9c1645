// Package memory implements the store ports in process memory. It backs local
// development and the service tests, including batch-failure injection, and
// mirrors the commit-or-nothing contract of the real backends by applying
// every batch to a copy and swapping it in only on success.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	users map[string]*userData

	// Injectable faults for tests. commitErr fails the next Commit;
	// readErr fails every read until cleared.
	commitErr error
	readErr   error
}

type userData struct {
	txns     map[string]core.Transaction
	txnOrder []string
	cats     map[string]core.Category
	catOrder []string
}

func New() *Store {
	return &Store{users: make(map[string]*userData)}
}

// FailNextCommit makes the next batch Commit return the given error without
// applying any staged operation.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// FailReads makes every read return the given error until called with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *Store) Close() error { return nil }

func (s *Store) user(name string) *userData {
	u, ok := s.users[name]
	if !ok {
		u = &userData{
			txns: make(map[string]core.Transaction),
			cats: make(map[string]core.Category),
		}
		s.users[name] = u
	}
	return u
}

func (u *userData) clone() *userData {
	c := &userData{
		txns:     make(map[string]core.Transaction, len(u.txns)),
		txnOrder: append([]string(nil), u.txnOrder...),
		cats:     make(map[string]core.Category, len(u.cats)),
		catOrder: append([]string(nil), u.catOrder...),
	}
	for id, t := range u.txns {
		c.txns[id] = t
	}
	for id, cat := range u.cats {
		c.cats[id] = cat
	}
	return c
}

func (s *Store) ListTransactions(_ context.Context, user string, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, core.StoreFailure("list transactions", s.readErr)
	}
	u := s.user(user)
	// Insertion order doubles as createdAt order; newest first.
	out := make([]core.Transaction, 0, len(u.txnOrder))
	for i := len(u.txnOrder) - 1; i >= 0; i-- {
		out = append(out, u.txns[u.txnOrder[i]])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, user string, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	u.txns[t.ID] = t
	u.txnOrder = append(u.txnOrder, t.ID)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, user, id string, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	prev, ok := u.txns[id]
	if !ok {
		return core.NotFound("transaction", id)
	}
	t.ID = id
	t.CreatedAt = prev.CreatedAt
	u.txns[id] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	if _, ok := u.txns[id]; !ok {
		return core.NotFound("transaction", id)
	}
	delete(u.txns, id)
	u.txnOrder = removeID(u.txnOrder, id)
	return nil
}

func (s *Store) QueryTransactionsByCategory(_ context.Context, user, category string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, core.StoreFailure("query transactions by category", s.readErr)
	}
	u := s.user(user)
	var out []core.Transaction
	for _, id := range u.txnOrder {
		if t := u.txns[id]; t.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, user string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, core.StoreFailure("list categories", s.readErr)
	}
	u := s.user(user)
	out := make([]core.Category, 0, len(u.catOrder))
	for _, id := range u.catOrder {
		out = append(out, u.cats[id])
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, user string, c core.Category) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	u.cats[c.ID] = c
	u.catOrder = append(u.catOrder, c.ID)
	return c.ID, nil
}

func (s *Store) UpdateCategory(_ context.Context, user, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	c, ok := u.cats[id]
	if !ok {
		return core.NotFound("category", id)
	}
	c.Name = name
	u.cats[id] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	if _, ok := u.cats[id]; !ok {
		return core.NotFound("category", id)
	}
	delete(u.cats, id)
	u.catOrder = removeID(u.catOrder, id)
	return nil
}

func (s *Store) Batch(user string) storage.Batch {
	return &batch{store: s, userName: user}
}

type batchOp func(u *userData) error

type batch struct {
	store    *Store
	userName string
	ops      []batchOp
}

func (b *batch) UpdateTransactionCategory(id, category string) {
	b.ops = append(b.ops, func(u *userData) error {
		t, ok := u.txns[id]
		if !ok {
			return core.NotFound("transaction", id)
		}
		t.Category = category
		u.txns[id] = t
		return nil
	})
}

func (b *batch) DeleteTransaction(id string) {
	b.ops = append(b.ops, func(u *userData) error {
		if _, ok := u.txns[id]; !ok {
			return core.NotFound("transaction", id)
		}
		delete(u.txns, id)
		u.txnOrder = removeID(u.txnOrder, id)
		return nil
	})
}

func (b *batch) CreateCategory(name string) {
	b.ops = append(b.ops, func(u *userData) error {
		c := core.Category{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
		u.cats[c.ID] = c
		u.catOrder = append(u.catOrder, c.ID)
		return nil
	})
}

func (b *batch) UpdateCategory(id, name string) {
	b.ops = append(b.ops, func(u *userData) error {
		c, ok := u.cats[id]
		if !ok {
			return core.NotFound("category", id)
		}
		c.Name = name
		u.cats[id] = c
		return nil
	})
}

func (b *batch) DeleteCategory(id string) {
	b.ops = append(b.ops, func(u *userData) error {
		if _, ok := u.cats[id]; !ok {
			return core.NotFound("category", id)
		}
		delete(u.cats, id)
		u.catOrder = removeID(u.catOrder, id)
		return nil
	})
}

// Commit applies every staged operation to a copy of the user's data and
// swaps the copy in only when all of them succeed.
func (b *batch) Commit(_ context.Context) error {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return core.StoreFailure("commit batch", err)
	}

	staged := s.user(b.userName).clone()
	for _, op := range b.ops {
		if err := op(staged); err != nil {
			return err
		}
	}
	s.users[b.userName] = staged
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

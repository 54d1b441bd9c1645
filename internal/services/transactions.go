package services

import (
	"context"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/storage"
)

// TransactionService validates and normalizes transactions before handing
// them to the store.
type TransactionService struct {
	store  storage.Store
	logger *log.Logger
}

func NewTransactionService(store storage.Store, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger.WithComponent(log.ComponentTransactions),
	}
}

// List returns the user's transactions newest first. A limit of zero or less
// returns everything.
func (s *TransactionService) List(ctx context.Context, user string, limit int) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, user, limit)
}

// Add normalizes, validates and stores a new transaction, returning its id.
func (s *TransactionService) Add(ctx context.Context, user string, t core.Transaction) (string, error) {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return "", err
	}
	id, err := s.store.CreateTransaction(ctx, user, t)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "Transaction added",
		log.FieldUser, user,
		log.FieldTxnID, id,
		"type", t.Type,
		"amount", t.Amount,
		log.FieldCategory, t.Category)
	return id, nil
}

// Update replaces the editable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, user, id string, t core.Transaction) error {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, user, id, t); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction updated", log.FieldUser, user, log.FieldTxnID, id)
	return nil
}

// Delete removes a single transaction.
func (s *TransactionService) Delete(ctx context.Context, user, id string) error {
	if err := s.store.DeleteTransaction(ctx, user, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldUser, user, log.FieldTxnID, id)
	return nil
}

// DeleteAll removes every transaction of the user in one batch. This backs
// the settings page's danger zone; categories are untouched.
func (s *TransactionService) DeleteAll(ctx context.Context, user string) (int, error) {
	txns, err := s.store.ListTransactions(ctx, user, 0)
	if err != nil {
		return 0, err
	}
	if len(txns) == 0 {
		return 0, nil
	}

	batch := s.store.Batch(user)
	for _, t := range txns {
		batch.DeleteTransaction(t.ID)
	}
	if err := batch.Commit(ctx); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "All transactions deleted",
		log.FieldUser, user, log.FieldCount, len(txns))
	return len(txns), nil
}

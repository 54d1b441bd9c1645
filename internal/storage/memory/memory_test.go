package memory

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/core"
)

func newTxn(desc, category string) core.Transaction {
	return core.Transaction{
		Date:        "2024-03-01",
		Type:        core.Debit,
		Amount:      10,
		Category:    category,
		Description: desc,
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, desc := range []string{"A", "B", "C"} {
		if _, err := s.CreateTransaction(ctx, "u", newTxn(desc, "Food")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	txns, err := s.ListTransactions(ctx, "u", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 3 || txns[0].Description != "C" || txns[2].Description != "A" {
		t.Errorf("order = %+v, want newest first", txns)
	}

	limited, _ := s.ListTransactions(ctx, "u", 2)
	if len(limited) != 2 || limited[0].Description != "C" {
		t.Errorf("limited list = %+v", limited)
	}
}

func TestUpdateTransactionKeepsCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.CreateTransaction(ctx, "u", newTxn("A", "Food"))
	before, _ := s.ListTransactions(ctx, "u", 0)

	if err := s.UpdateTransaction(ctx, "u", id, newTxn("B", "Petrol")); err != nil {
		t.Fatalf("update: %v", err)
	}
	after, _ := s.ListTransactions(ctx, "u", 0)
	if after[0].Description != "B" || after[0].Category != "Petrol" {
		t.Errorf("update not applied: %+v", after[0])
	}
	if !after[0].CreatedAt.Equal(before[0].CreatedAt) {
		t.Errorf("createdAt changed on update")
	}
	if after[0].ID != id {
		t.Errorf("id changed on update")
	}
}

func TestQueryTransactionsByCategoryExactMatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.CreateTransaction(ctx, "u", newTxn("A", "Food"))
	s.CreateTransaction(ctx, "u", newTxn("B", "food"))
	s.CreateTransaction(ctx, "u", newTxn("C", "Food"))

	// The denormalized field is matched byte for byte.
	refs, err := s.QueryTransactionsByCategory(ctx, "u", "Food")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("got %d refs, want 2", len(refs))
	}
}

func TestBatchCommitAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, _ := s.CreateTransaction(ctx, "u", newTxn("A", "Food"))
	id2, _ := s.CreateTransaction(ctx, "u", newTxn("B", "Food"))

	// A batch containing one op that targets a missing row must apply nothing.
	b := s.Batch("u")
	b.UpdateTransactionCategory(id1, "Petrol")
	b.DeleteTransaction("missing")
	b.UpdateTransactionCategory(id2, "Petrol")

	if err := b.Commit(ctx); !core.IsNotFound(err) {
		t.Fatalf("commit = %v, want NotFoundError", err)
	}

	txns, _ := s.ListTransactions(ctx, "u", 0)
	for _, txn := range txns {
		if txn.Category != "Food" {
			t.Errorf("partial batch applied: %+v", txn)
		}
	}
}

func TestBatchCommitInjectedFailure(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.CreateTransaction(ctx, "u", newTxn("A", "Food"))

	s.FailNextCommit(errors.New("boom"))
	b := s.Batch("u")
	b.DeleteTransaction(id)
	if err := b.Commit(ctx); !core.IsStore(err) {
		t.Fatalf("commit = %v, want StoreError", err)
	}

	if txns, _ := s.ListTransactions(ctx, "u", 0); len(txns) != 1 {
		t.Errorf("injected failure still applied the batch")
	}

	// The fault is one-shot.
	b = s.Batch("u")
	b.DeleteTransaction(id)
	if err := b.Commit(ctx); err != nil {
		t.Errorf("second commit = %v", err)
	}
}

func TestFailReads(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.FailReads(errors.New("down"))
	if _, err := s.ListTransactions(ctx, "u", 0); !core.IsStore(err) {
		t.Errorf("ListTransactions = %v, want StoreError", err)
	}
	if _, err := s.ListCategories(ctx, "u"); !core.IsStore(err) {
		t.Errorf("ListCategories = %v, want StoreError", err)
	}

	s.FailReads(nil)
	if _, err := s.ListTransactions(ctx, "u", 0); err != nil {
		t.Errorf("reads still failing after clear: %v", err)
	}
}

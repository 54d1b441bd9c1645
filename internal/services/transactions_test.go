package services

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/storage/memory"
)

func TestTransactionService_AddNormalizes(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, testLogger())
	ctx := context.Background()

	id, err := svc.Add(ctx, "hari", core.Transaction{
		Date:        "2024-04-02",
		Type:        core.Debit,
		Amount:      42.5,
		Description: "  morning coffee ",
	})
	if err != nil {
		t.Fatalf("Add() = %v", err)
	}
	if id == "" {
		t.Fatal("Add() returned empty id")
	}

	txns, _ := store.ListTransactions(ctx, "hari", 0)
	if len(txns) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(txns))
	}
	got := txns[0]
	if got.Description != "MORNING COFFEE" {
		t.Errorf("description not normalized: %q", got.Description)
	}
	if got.Category != core.FallbackCategory {
		t.Errorf("category = %q, want fallback", got.Category)
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("store must assign createdAt")
	}
}

func TestTransactionService_AddValidation(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, testLogger())
	ctx := context.Background()

	valid := core.Transaction{Date: "2024-04-02", Type: core.Credit, Amount: 10, Description: "SALARY"}

	tests := []struct {
		name   string
		mutate func(*core.Transaction)
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount = 0 }},
		{"negative amount", func(tx *core.Transaction) { tx.Amount = -1 }},
		{"blank description", func(tx *core.Transaction) { tx.Description = " " }},
		{"bad type", func(tx *core.Transaction) { tx.Type = "cheque" }},
		{"bad date", func(tx *core.Transaction) { tx.Date = "02-04-2024" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if _, err := svc.Add(ctx, "hari", tx); !core.IsValidation(err) {
				t.Errorf("Add() = %v, want ValidationError", err)
			}
		})
	}

	if txns, _ := store.ListTransactions(ctx, "hari", 0); len(txns) != 0 {
		t.Errorf("invalid input must not reach the store, found %d rows", len(txns))
	}
}

func TestTransactionService_ListNewestFirst(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, testLogger())
	ctx := context.Background()

	for _, desc := range []string{"FIRST", "SECOND", "THIRD"} {
		if _, err := svc.Add(ctx, "hari", core.Transaction{
			Date: "2024-04-02", Type: core.Cash, Amount: 1, Description: desc,
		}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	txns, err := svc.List(ctx, "hari", 2)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(txns) != 2 || txns[0].Description != "THIRD" || txns[1].Description != "SECOND" {
		t.Errorf("List() order wrong: %+v", txns)
	}
}

func TestTransactionService_UpdateMissing(t *testing.T) {
	svc := NewTransactionService(memory.New(), testLogger())
	err := svc.Update(context.Background(), "hari", "ghost", core.Transaction{
		Date: "2024-04-02", Type: core.Debit, Amount: 5, Description: "X",
	})
	if !core.IsNotFound(err) {
		t.Errorf("Update() = %v, want NotFoundError", err)
	}
}

func TestTransactionService_DeleteAll(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, testLogger())
	ctx := context.Background()

	seedTransactions(t, store, "hari", "Food", 7)
	seedTransactions(t, store, "guest", "Food", 2)

	n, err := svc.DeleteAll(ctx, "hari")
	if err != nil {
		t.Fatalf("DeleteAll() = %v", err)
	}
	if n != 7 {
		t.Errorf("DeleteAll() = %d, want 7", n)
	}
	if txns, _ := store.ListTransactions(ctx, "hari", 0); len(txns) != 0 {
		t.Errorf("transactions remain after DeleteAll: %d", len(txns))
	}
	if txns, _ := store.ListTransactions(ctx, "guest", 0); len(txns) != 2 {
		t.Errorf("DeleteAll crossed user namespaces")
	}

	if n, err := svc.DeleteAll(ctx, "hari"); err != nil || n != 0 {
		t.Errorf("empty DeleteAll() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestTransactionService_DeleteAllAtomicOnFailure(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, testLogger())
	ctx := context.Background()

	seedTransactions(t, store, "hari", "Food", 3)
	store.FailNextCommit(errors.New("write denied"))

	if _, err := svc.DeleteAll(ctx, "hari"); !core.IsStore(err) {
		t.Fatalf("DeleteAll() with failing commit = %v, want StoreError", err)
	}
	if txns, _ := store.ListTransactions(ctx, "hari", 0); len(txns) != 3 {
		t.Errorf("failed DeleteAll removed %d rows", 3-len(txns))
	}
}

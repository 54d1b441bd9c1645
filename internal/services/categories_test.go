package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/storage/memory"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func seedTransactions(t *testing.T, store *memory.Store, user, category string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id, err := store.CreateTransaction(context.Background(), user, core.Transaction{
			Date:        "2024-01-15",
			Type:        core.Debit,
			Amount:      10,
			Category:    category,
			Description: "SEEDED",
		})
		if err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
		ids[i] = id
	}
	return ids
}

func categoryCounts(t *testing.T, store *memory.Store, user string) map[string]int {
	t.Helper()
	txns, err := store.ListTransactions(context.Background(), user, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	counts := make(map[string]int)
	for _, txn := range txns {
		counts[txn.Category]++
	}
	return counts
}

func TestCategoryService_Add(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "hari", "Food"); err != nil {
		t.Fatalf("Add() = %v", err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"duplicate exact", "Food", core.ErrDuplicateCategory},
		{"duplicate case-insensitive", "fOOd", core.ErrDuplicateCategory},
		{"duplicate with padding", "  food  ", core.ErrDuplicateCategory},
		{"empty after trim", "   ", core.ErrEmptyCategoryName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, "hari", tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Add(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}

	// Another user's namespace is independent.
	if _, err := svc.Add(ctx, "guest", "Food"); err != nil {
		t.Errorf("Add() in separate namespace = %v", err)
	}
}

func TestCategoryService_Rename(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	foodID, err := svc.Add(ctx, "hari", "Food")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, "hari", "Petrol"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	seedTransactions(t, store, "hari", "Food", 3)
	seedTransactions(t, store, "hari", "Petrol", 1)

	if err := svc.Rename(ctx, "hari", foodID, "Food2"); err != nil {
		t.Fatalf("Rename() = %v", err)
	}

	counts := categoryCounts(t, store, "hari")
	if counts["Food2"] != 3 || counts["Food"] != 0 {
		t.Errorf("after rename counts = %v, want 3 Food2 and 0 Food", counts)
	}
	if counts["Petrol"] != 1 {
		t.Errorf("unrelated transactions touched: %v", counts)
	}

	cats, _ := svc.List(ctx, "hari")
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	if len(names) != 2 || names[0] != "Food2" || names[1] != "Petrol" {
		t.Errorf("category list after rename = %v", names)
	}
}

func TestCategoryService_RenameValidation(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	foodID, _ := svc.Add(ctx, "hari", "Food")
	svc.Add(ctx, "hari", "Petrol")

	tests := []struct {
		name    string
		id      string
		newName string
		check   func(error) bool
	}{
		{"empty name", foodID, "  ", core.IsValidation},
		{"duplicate of other category", foodID, "petrol", core.IsValidation},
		{"missing id", "nope", "Whatever", core.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Rename(ctx, "hari", tt.id, tt.newName); !tt.check(err) {
				t.Errorf("Rename() = %v, wrong class", err)
			}
		})
	}

	// Renaming to a different casing of its own name is allowed.
	if err := svc.Rename(ctx, "hari", foodID, "FOOD"); err != nil {
		t.Errorf("self rename to new casing = %v", err)
	}
}

func TestCategoryService_RenameAtomicOnFailure(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	foodID, _ := svc.Add(ctx, "hari", "Food")
	seedTransactions(t, store, "hari", "Food", 4)

	store.FailNextCommit(errors.New("backend unavailable"))
	err := svc.Rename(ctx, "hari", foodID, "Food2")
	if !core.IsStore(err) {
		t.Fatalf("Rename() with failing commit = %v, want StoreError", err)
	}

	counts := categoryCounts(t, store, "hari")
	if counts["Food"] != 4 || counts["Food2"] != 0 {
		t.Errorf("failed rename leaked partial state: %v", counts)
	}
	cats, _ := svc.List(ctx, "hari")
	if len(cats) != 1 || cats[0].Name != "Food" {
		t.Errorf("failed rename changed the category record: %+v", cats)
	}
}

func TestCategoryService_Delete(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	snacksID, _ := svc.Add(ctx, "hari", "Snacks")
	svc.Add(ctx, "hari", "Petrol")
	seedTransactions(t, store, "hari", "Snacks", 5)

	if err := svc.Delete(ctx, "hari", snacksID); err != nil {
		t.Fatalf("Delete() = %v", err)
	}

	counts := categoryCounts(t, store, "hari")
	if counts[core.FallbackCategory] != 5 || counts["Snacks"] != 0 {
		t.Errorf("after delete counts = %v, want 5 moved to %q", counts, core.FallbackCategory)
	}
	txns, _ := store.ListTransactions(ctx, "hari", 0)
	if len(txns) != 5 {
		t.Errorf("delete must never remove transactions, have %d", len(txns))
	}

	cats, _ := svc.List(ctx, "hari")
	for _, c := range cats {
		if c.Name == "Snacks" {
			t.Errorf("category still present after delete")
		}
	}

	if err := svc.Delete(ctx, "hari", snacksID); !core.IsNotFound(err) {
		t.Errorf("second delete = %v, want NotFoundError", err)
	}
}

func TestCategoryService_DeleteAtomicOnFailure(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	snacksID, _ := svc.Add(ctx, "hari", "Snacks")
	seedTransactions(t, store, "hari", "Snacks", 2)

	store.FailNextCommit(errors.New("quota exceeded"))
	if err := svc.Delete(ctx, "hari", snacksID); !core.IsStore(err) {
		t.Fatalf("Delete() with failing commit = %v, want StoreError", err)
	}

	counts := categoryCounts(t, store, "hari")
	if counts["Snacks"] != 2 {
		t.Errorf("failed delete leaked partial state: %v", counts)
	}
	cats, _ := svc.List(ctx, "hari")
	if len(cats) != 1 {
		t.Errorf("failed delete removed the category record: %+v", cats)
	}
}

func TestCategoryService_SeedDefaultsIdempotent(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	// A pre-existing name in different casing must be skipped.
	if _, err := svc.Add(ctx, "hari", "lunch"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	added, err := svc.SeedDefaults(ctx, "hari")
	if err != nil {
		t.Fatalf("SeedDefaults() = %v", err)
	}
	if want := len(core.DefaultCategories) - 1; added != want {
		t.Errorf("first seed added %d, want %d", added, want)
	}

	firstRun, _ := svc.Names(ctx, "hari")

	added, err = svc.SeedDefaults(ctx, "hari")
	if err != nil {
		t.Fatalf("second SeedDefaults() = %v", err)
	}
	if added != 0 {
		t.Errorf("second seed added %d, want 0", added)
	}

	secondRun, _ := svc.Names(ctx, "hari")
	if len(firstRun) != len(secondRun) {
		t.Fatalf("seed is not idempotent: %d vs %d categories", len(firstRun), len(secondRun))
	}
	for i := range firstRun {
		if firstRun[i] != secondRun[i] {
			t.Errorf("category set changed on second seed: %v vs %v", firstRun, secondRun)
		}
	}
}

func TestCategoryService_ListFiltersBlankNames(t *testing.T) {
	store := memory.New()
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	store.CreateCategory(ctx, "hari", core.Category{Name: "   "})
	svc.Add(ctx, "hari", "Zebra")
	svc.Add(ctx, "hari", "Apple")

	cats, err := svc.List(ctx, "hari")
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Apple" || cats[1].Name != "Zebra" {
		t.Errorf("List() = %+v, want blank filtered and name-sorted", cats)
	}
}

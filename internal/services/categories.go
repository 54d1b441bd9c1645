// Package services orchestrates store operations for the transaction and
// category flows. The category service owns the consistency obligation that
// comes with denormalizing category names onto transactions: rename and
// delete must touch the category record and every referencing transaction as
// one atomic batch.
package services

import (
	"context"
	"sort"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/storage"
)

// Suggestions maps a category name to the canned description the add form
// pre-fills when that category is picked.
var Suggestions = map[string]string{
	"Income (Credited)":    "AMOUNT CREDITED TO ACCOUNT",
	"Rental Home Expenses": "RENT / HOME NEEDS",
	"Family Home Expenses": "FAMILY EXPENSES",
	"Subscriptions":        "SUBSCRIPTION PAYMENT",
	"Breakfast":            "BREAKFAST",
	"Lunch":                "LUNCH",
	"Dinner":               "DINNER",
	"Fruits":               "FRUITS",
	"Bike Service":         "BIKE SERVICE",
	"Petrol":               "PETROL",
	"Laundry / Ironing":    "LAUNDRY / IRONING",
	"Studies / Exam Prep":  "STUDY MATERIAL / COURSE",
	"Personal Care":        "PERSONAL CARE",
	"Other":                "",
}

type CategoryService struct {
	store  storage.Store
	logger *log.Logger
}

func NewCategoryService(store storage.Store, logger *log.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger.WithComponent(log.ComponentCategories),
	}
}

// List returns the user's categories sorted by name. Records with a blank
// name are filtered out; they can only come from manual data edits.
func (s *CategoryService) List(ctx context.Context, user string) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, user)
	if err != nil {
		return nil, err
	}
	out := cats[:0]
	for _, c := range cats {
		if strings.TrimSpace(c.Name) != "" {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Add creates a category after checking the case-insensitive uniqueness rule.
func (s *CategoryService) Add(ctx context.Context, user, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.ErrEmptyCategoryName
	}

	cats, err := s.store.ListCategories(ctx, user)
	if err != nil {
		return "", err
	}
	for _, c := range cats {
		if core.SameName(c.Name, name) {
			return "", core.ErrDuplicateCategory
		}
	}

	id, err := s.store.CreateCategory(ctx, user, core.Category{Name: name})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "Category added", log.FieldUser, user, log.FieldCategory, name)
	return id, nil
}

// Rename changes a category's name and relabels every transaction that
// references it, in one batch. The referencing transactions are read by the
// pre-rename name before anything is written: the denormalized field only
// carries the name, so filtering after the rename would match nothing.
func (s *CategoryService) Rename(ctx context.Context, user, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return core.ErrEmptyCategoryName
	}

	cats, err := s.store.ListCategories(ctx, user)
	if err != nil {
		return err
	}
	var target *core.Category
	for i, c := range cats {
		if c.ID == id {
			target = &cats[i]
			continue
		}
		if core.SameName(c.Name, newName) {
			return core.ErrDuplicateCategory
		}
	}
	if target == nil {
		return core.NotFound("category", id)
	}

	// Phase one: read everything the rename must touch.
	refs, err := s.store.QueryTransactionsByCategory(ctx, user, target.Name)
	if err != nil {
		return err
	}

	// Phase two: one atomic write for the record and all references.
	batch := s.store.Batch(user)
	batch.UpdateCategory(id, newName)
	for _, t := range refs {
		batch.UpdateTransactionCategory(t.ID, newName)
	}
	if err := batch.Commit(ctx); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category renamed",
		log.FieldUser, user,
		log.FieldCategory, target.Name,
		"new_name", newName,
		log.FieldCount, len(refs))
	return nil
}

// Delete removes a category and reassigns every referencing transaction to
// the fallback, in one batch. Transactions are never deleted by this path.
func (s *CategoryService) Delete(ctx context.Context, user, id string) error {
	cats, err := s.store.ListCategories(ctx, user)
	if err != nil {
		return err
	}
	var target *core.Category
	for i, c := range cats {
		if c.ID == id {
			target = &cats[i]
			break
		}
	}
	if target == nil {
		return core.NotFound("category", id)
	}

	refs, err := s.store.QueryTransactionsByCategory(ctx, user, target.Name)
	if err != nil {
		return err
	}

	batch := s.store.Batch(user)
	for _, t := range refs {
		batch.UpdateTransactionCategory(t.ID, core.FallbackCategory)
	}
	batch.DeleteCategory(id)
	if err := batch.Commit(ctx); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldUser, user,
		log.FieldCategory, target.Name,
		log.FieldCount, len(refs))
	return nil
}

// SeedDefaults creates every default category the user does not already have,
// compared case-insensitively, as one batch. Running it again is a no-op that
// reports zero additions, which callers surface as "already up to date".
func (s *CategoryService) SeedDefaults(ctx context.Context, user string) (int, error) {
	cats, err := s.store.ListCategories(ctx, user)
	if err != nil {
		return 0, err
	}
	existing := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name != "" {
			existing[name] = struct{}{}
		}
	}

	batch := s.store.Batch(user)
	added := 0
	for _, name := range core.DefaultCategories {
		if _, ok := existing[strings.ToLower(name)]; ok {
			continue
		}
		batch.CreateCategory(name)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := batch.Commit(ctx); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Default categories seeded",
		log.FieldUser, user, log.FieldCount, added)
	return added, nil
}

// Names returns the sorted category names, handy for filter dropdowns.
func (s *CategoryService) Names(ctx context.Context, user string) ([]string, error) {
	cats, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names, nil
}

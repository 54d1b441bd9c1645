package core

import (
	"strings"
	"time"
)

const (
	Debit  TxnType = "debit"
	Credit TxnType = "credit"
	Cash   TxnType = "cash"
)

// FallbackCategory is the reserved fallback assigned when a transaction has no
// category or its category is deleted. It does not have to exist as a stored
// Category record.
const FallbackCategory = "Other"

type (
	// TxnType is the closed set of transaction kinds. Debit and credit feed
	// the running balance; cash is tracked off-books.
	TxnType string

	// Date is a calendar date in YYYY-MM-DD form. The format is fixed-width
	// and zero-padded, so ordinary string comparison orders dates correctly.
	Date string

	Transaction struct {
		ID          string    `json:"id" bson:"_id,omitempty"`
		Date        Date      `json:"date" bson:"date"`
		Type        TxnType   `json:"type" bson:"type"`
		Amount      float64   `json:"amount" bson:"amount"`
		Category    string    `json:"category" bson:"category"`
		Description string    `json:"description" bson:"description"`
		CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	}

	Category struct {
		ID        string    `json:"id" bson:"_id,omitempty"`
		Name      string    `json:"name" bson:"name"`
		CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	}
)

// DefaultCategories is the seed list offered by the settings page. Seeding
// skips names that already exist, compared case-insensitively.
var DefaultCategories = []string{
	"Income (Credited)",
	"Rental Home Expenses",
	"Family Home Expenses",
	"Subscriptions",
	"Breakfast",
	"Lunch",
	"Dinner",
	"Fruits",
	"Bike Service",
	"Petrol",
	"Laundry / Ironing",
	"Studies / Exam Prep",
	"Personal Care",
	"Other",
}

func (t TxnType) Valid() bool {
	switch t {
	case Debit, Credit, Cash:
		return true
	default:
		return false
	}
}

func (d Date) Validate() error {
	if _, err := time.Parse("2006-01-02", string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Normalize applies the write-time canonical form: trimmed, upper-cased
// description and the fallback category when none is set.
func (t Transaction) Normalize() Transaction {
	t.Description = strings.ToUpper(strings.TrimSpace(t.Description))
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == "" {
		t.Category = FallbackCategory
	}
	return t
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	return nil
}

// SameName reports whether two category names collide under the
// case-insensitive uniqueness rule.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

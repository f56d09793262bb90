package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// Transaction is one classified statement entry, produced by the classifier
// and optionally rewritten by the learned-override matcher before persistence.
type Transaction struct {
	ID            string          `json:"id" firestore:"id"`
	User          string          `json:"user" firestore:"user"`
	Date          string          `json:"date" firestore:"date"` // YYYY-MM-DD
	Title         string          `json:"title" firestore:"title"`
	Amount        float64         `json:"amount" firestore:"amount"`
	Type          TransactionType `json:"type" firestore:"type"`
	Category      string          `json:"category" firestore:"category"`
	PaymentMethod string          `json:"payment_method" firestore:"payment_method"`
	Description   string          `json:"description" firestore:"description"`
	Confidence    int             `json:"confidence" firestore:"confidence"`

	CategoryOverriddenByLearning bool `json:"category_overridden_by_learning" firestore:"category_overridden_by_learning"`
	CategoryUpdatedManually      bool `json:"category_updated_manually,omitempty" firestore:"category_updated_manually"`
}

// Month returns the YYYY-MM prefix of the transaction date, or "" when the
// date is too short to carry one.
func (t *Transaction) Month() string {
	if len(t.Date) < 7 {
		return ""
	}
	return t.Date[:7]
}

// Goal is a user-defined savings target. ManualAllocated, when set, reserves
// a fixed monthly amount instead of a proportional share.
type Goal struct {
	ID              string    `json:"id" firestore:"id"`
	Name            string    `json:"name" firestore:"name"`
	TargetAmount    float64   `json:"target_amount" firestore:"target_amount"`
	Deadline        string    `json:"deadline" firestore:"deadline"` // YYYY-MM-DD
	ManualAllocated *float64  `json:"manual_allocated,omitempty" firestore:"manual_allocated"`
	CreatedAt       time.Time `json:"created_at" firestore:"created_at"`
}

// GoalContribution records how much of one month's net savings was assigned
// to one goal. The (GoalID, Month) pair is the storage key, so re-running
// allocation overwrites rather than duplicates.
type GoalContribution struct {
	GoalID    string    `json:"goal_id" firestore:"goal_id"`
	Month     string    `json:"month" firestore:"month"` // YYYY-MM
	Allocated float64   `json:"allocated" firestore:"allocated"`
	Source    string    `json:"source" firestore:"source"` // "auto" or "manual"
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// DocID is the upsert key for a contribution record.
func (c *GoalContribution) DocID() string {
	return c.GoalID + "_" + c.Month
}

// CategoryRule is a per-user learned correction: a manually fixed category
// keyed by normalized title and integer amount.
type CategoryRule struct {
	Title       string    `json:"title" firestore:"title"`
	Amount      float64   `json:"amount" firestore:"amount"`
	Category    string    `json:"category" firestore:"category"`
	LearnedFrom string    `json:"learned_from" firestore:"learned_from"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updated_at"`
}

// NormalizedTitle trims and lower-cases a title for rule matching.
func NormalizedTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// DocID is the storage key for a learned rule.
func (r *CategoryRule) DocID() string {
	return fmt.Sprintf("%s_%d", NormalizedTitle(r.Title), int(r.Amount))
}

// Package store defines the document-store contract used by the pipeline.
// All state is scoped per user; implementations provide collection/document
// semantics with keyed upserts and simple date-range queries.
package store

import (
	"context"
	"errors"

	"github.com/finsight/finsight/internal/domain"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("store: not found")

// TransactionStore persists classified transactions per user.
type TransactionStore interface {
	// PutTransaction writes one transaction keyed by its ID.
	PutTransaction(ctx context.Context, userID string, tx *domain.Transaction) error

	// ListTransactions returns all of a user's transactions.
	ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error)

	// ListTransactionsByDateRange returns transactions with from <= date < to,
	// dates as YYYY-MM-DD strings.
	ListTransactionsByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Transaction, error)

	// UpdateTransactionCategory applies a manual category correction.
	UpdateTransactionCategory(ctx context.Context, userID, txID, category string) error
}

// GoalStore persists savings goals per user.
type GoalStore interface {
	PutGoal(ctx context.Context, userID string, goal *domain.Goal) error
	GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
	ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error)
}

// ContributionStore persists per-goal-per-month allocation records keyed by
// "{goal_id}_{month}", so repeated allocation runs overwrite.
type ContributionStore interface {
	UpsertContribution(ctx context.Context, userID string, c *domain.GoalContribution) error
	ListContributions(ctx context.Context, userID string) ([]*domain.GoalContribution, error)
	ListContributionsByGoal(ctx context.Context, userID, goalID string) ([]*domain.GoalContribution, error)
}

// LearningStore persists learned category rules keyed by "{title}_{amount}".
type LearningStore interface {
	PutRule(ctx context.Context, userID string, rule *domain.CategoryRule) error
	ListRules(ctx context.Context, userID string) ([]*domain.CategoryRule, error)
}

// Store aggregates all per-user collections of the document store.
type Store interface {
	TransactionStore
	GoalStore
	ContributionStore
	LearningStore
}

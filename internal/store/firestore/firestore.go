// Package firestore is the Firestore-backed store. Documents live under
// users/{uid}/{collection}/{doc}, mirroring the per-user hierarchical layout
// of the document store.
package firestore

import (
	"context"
	"fmt"

	firestorelib "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/finsight/finsight/internal/domain"
	"github.com/finsight/finsight/internal/store"
)

const (
	colTransactions  = "transactions"
	colGoals         = "goals"
	colContributions = "goal_contributions"
	colLearning      = "category_learning"
)

// Store implements store.Store on Firestore with a shared client.
type Store struct {
	client *firestorelib.Client
}

var _ store.Store = (*Store)(nil)

// New creates a Firestore-backed store. Credentials come from Application
// Default Credentials.
func New(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestorelib.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.New: creating client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) col(userID, collection string) *firestorelib.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection(collection)
}

func (s *Store) PutTransaction(ctx context.Context, userID string, tx *domain.Transaction) error {
	if _, err := s.col(userID, colTransactions).Doc(tx.ID).Set(ctx, tx); err != nil {
		return fmt.Errorf("PutTransaction: set %s: %w", tx.ID, err)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	it := s.col(userID, colTransactions).OrderBy("date", firestorelib.Asc).Documents(ctx)
	defer it.Stop()

	var out []*domain.Transaction
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		var tx domain.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("ListTransactions: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &tx)
	}
	return out, nil
}

func (s *Store) ListTransactionsByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Transaction, error) {
	it := s.col(userID, colTransactions).
		Where("date", ">=", from).
		Where("date", "<", to).
		OrderBy("date", firestorelib.Asc).
		Documents(ctx)
	defer it.Stop()

	var out []*domain.Transaction
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: iter next: %w", err)
		}
		var tx domain.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &tx)
	}
	return out, nil
}

func (s *Store) UpdateTransactionCategory(ctx context.Context, userID, txID, category string) error {
	_, err := s.col(userID, colTransactions).Doc(txID).Update(ctx, []firestorelib.Update{
		{Path: "category", Value: category},
		{Path: "category_updated_manually", Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: update %s: %w", txID, err)
	}
	return nil
}

func (s *Store) PutGoal(ctx context.Context, userID string, goal *domain.Goal) error {
	if _, err := s.col(userID, colGoals).Doc(goal.ID).Set(ctx, goal); err != nil {
		return fmt.Errorf("PutGoal: set %s: %w", goal.ID, err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	doc, err := s.col(userID, colGoals).Doc(goalID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetGoal: get %s: %w", goalID, err)
	}
	var g domain.Goal
	if err := doc.DataTo(&g); err != nil {
		return nil, fmt.Errorf("GetGoal: decode %s: %w", goalID, err)
	}
	return &g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID string) error {
	ref := s.col(userID, colGoals).Doc(goalID)
	if _, err := ref.Get(ctx); status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("DeleteGoal: get %s: %w", goalID, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("DeleteGoal: delete %s: %w", goalID, err)
	}
	return nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error) {
	it := s.col(userID, colGoals).OrderBy("created_at", firestorelib.Asc).Documents(ctx)
	defer it.Stop()

	var out []*domain.Goal
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListGoals: iter next: %w", err)
		}
		var g domain.Goal
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("ListGoals: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &g)
	}
	return out, nil
}

func (s *Store) UpsertContribution(ctx context.Context, userID string, c *domain.GoalContribution) error {
	if _, err := s.col(userID, colContributions).Doc(c.DocID()).Set(ctx, c); err != nil {
		return fmt.Errorf("UpsertContribution: set %s: %w", c.DocID(), err)
	}
	return nil
}

func (s *Store) ListContributions(ctx context.Context, userID string) ([]*domain.GoalContribution, error) {
	it := s.col(userID, colContributions).Documents(ctx)
	defer it.Stop()

	var out []*domain.GoalContribution
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListContributions: iter next: %w", err)
		}
		var c domain.GoalContribution
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("ListContributions: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) ListContributionsByGoal(ctx context.Context, userID, goalID string) ([]*domain.GoalContribution, error) {
	it := s.col(userID, colContributions).Where("goal_id", "==", goalID).Documents(ctx)
	defer it.Stop()

	var out []*domain.GoalContribution
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListContributionsByGoal: iter next: %w", err)
		}
		var c domain.GoalContribution
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("ListContributionsByGoal: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) PutRule(ctx context.Context, userID string, rule *domain.CategoryRule) error {
	if _, err := s.col(userID, colLearning).Doc(rule.DocID()).Set(ctx, rule); err != nil {
		return fmt.Errorf("PutRule: set %s: %w", rule.DocID(), err)
	}
	return nil
}

func (s *Store) ListRules(ctx context.Context, userID string) ([]*domain.CategoryRule, error) {
	it := s.col(userID, colLearning).Documents(ctx)
	defer it.Stop()

	var out []*domain.CategoryRule
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRules: iter next: %w", err)
		}
		var r domain.CategoryRule
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("ListRules: decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &r)
	}
	return out, nil
}

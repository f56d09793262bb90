package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finsight/finsight/internal/domain"
	"github.com/finsight/finsight/internal/store"
)

func TestTransactionsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	txs := []*domain.Transaction{
		{ID: "b", User: "u1", Date: "2024-02-10", Title: "Zomato", Amount: 450, Type: domain.TypeDebit},
		{ID: "a", User: "u1", Date: "2024-01-05", Title: "Salary", Amount: 50000, Type: domain.TypeCredit},
	}
	for _, tx := range txs {
		if err := s.PutTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("PutTransaction: %v", err)
		}
	}

	got, err := s.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("transactions not date-ordered: %s, %s", got[0].ID, got[1].ID)
	}

	// Mutating a returned copy must not affect stored state.
	got[0].Category = "mutated"
	again, _ := s.ListTransactions(ctx, "u1")
	if again[0].Category == "mutated" {
		t.Error("ListTransactions leaked internal state")
	}
}

func TestListTransactionsByDateRange(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, tx := range []*domain.Transaction{
		{ID: "1", Date: "2024-01-15"},
		{ID: "2", Date: "2024-02-15"},
		{ID: "3", Date: "2024-03-15"},
	} {
		_ = s.PutTransaction(ctx, "u1", tx)
	}

	got, err := s.ListTransactionsByDateRange(ctx, "u1", "2024-02-01", "2024-03-01")
	if err != nil {
		t.Fatalf("ListTransactionsByDateRange: %v", err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("got %v, want only tx 2", got)
	}
}

func TestUpdateTransactionCategory(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.PutTransaction(ctx, "u1", &domain.Transaction{ID: "t1", Category: "Others"})

	if err := s.UpdateTransactionCategory(ctx, "u1", "t1", "Dining"); err != nil {
		t.Fatalf("UpdateTransactionCategory: %v", err)
	}
	got, _ := s.ListTransactions(ctx, "u1")
	if got[0].Category != "Dining" || !got[0].CategoryUpdatedManually {
		t.Errorf("category update not applied: %+v", got[0])
	}

	if err := s.UpdateTransactionCategory(ctx, "u1", "missing", "Dining"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalsCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	g := &domain.Goal{ID: "g1", Name: "Emergency Fund", TargetAmount: 100000, Deadline: "2025-12-31", CreatedAt: time.Now()}
	_ = s.PutGoal(ctx, "u1", g)

	got, err := s.GetGoal(ctx, "u1", "g1")
	if err != nil || got.Name != "Emergency Fund" {
		t.Fatalf("GetGoal = %+v, %v", got, err)
	}

	if _, err := s.GetGoal(ctx, "u1", "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetGoal(ctx, "other-user", "g1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("goals must be user-scoped, got %v", err)
	}

	if err := s.DeleteGoal(ctx, "u1", "g1"); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if err := s.DeleteGoal(ctx, "u1", "g1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestContributionUpsertOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	c := &domain.GoalContribution{GoalID: "g1", Month: "2024-01", Allocated: 5000, Source: "auto"}
	_ = s.UpsertContribution(ctx, "u1", c)

	c2 := &domain.GoalContribution{GoalID: "g1", Month: "2024-01", Allocated: 7000, Source: "auto"}
	_ = s.UpsertContribution(ctx, "u1", c2)

	got, _ := s.ListContributions(ctx, "u1")
	if len(got) != 1 {
		t.Fatalf("got %d contributions, want 1 (overwrite, not duplicate)", len(got))
	}
	if got[0].Allocated != 7000 {
		t.Errorf("Allocated = %v, want 7000", got[0].Allocated)
	}

	byGoal, _ := s.ListContributionsByGoal(ctx, "u1", "g1")
	if len(byGoal) != 1 {
		t.Errorf("ListContributionsByGoal returned %d, want 1", len(byGoal))
	}
}

func TestRulesKeyedByTitleAndIntAmount(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.PutRule(ctx, "u1", &domain.CategoryRule{Title: "Amazon", Amount: 1999.6, Category: "Shopping"})
	// Same normalized key overwrites.
	_ = s.PutRule(ctx, "u1", &domain.CategoryRule{Title: " AMAZON ", Amount: 1999.2, Category: "Entertainment"})

	rules, _ := s.ListRules(ctx, "u1")
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if rules[0].Category != "Entertainment" {
		t.Errorf("rule not overwritten: %+v", rules[0])
	}
}

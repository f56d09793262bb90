// Package memory is the in-memory store backend, used by tests and local
// development. Documents are deep-copied on the way in and out so callers
// cannot mutate stored state.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/finsight/finsight/internal/domain"
	"github.com/finsight/finsight/internal/store"
)

type userData struct {
	transactions  map[string]*domain.Transaction
	goals         map[string]*domain.Goal
	contributions map[string]*domain.GoalContribution
	rules         map[string]*domain.CategoryRule
}

// Store is a thread-safe in-memory implementation of store.Store.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userData
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{users: make(map[string]*userData)}
}

var _ store.Store = (*Store)(nil)

// user returns the per-user bucket, creating it on first use. Callers must
// hold the write lock.
func (s *Store) user(userID string) *userData {
	u, ok := s.users[userID]
	if !ok {
		u = &userData{
			transactions:  make(map[string]*domain.Transaction),
			goals:         make(map[string]*domain.Goal),
			contributions: make(map[string]*domain.GoalContribution),
			rules:         make(map[string]*domain.CategoryRule),
		}
		s.users[userID] = u
	}
	return u
}

// lookup is the read-side counterpart of user: no bucket is created.
func (s *Store) lookup(userID string) (*userData, bool) {
	u, ok := s.users[userID]
	return u, ok
}

func (s *Store) PutTransaction(ctx context.Context, userID string, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.user(userID).transactions[tx.ID] = &cp
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, nil
	}

	var out []*domain.Transaction
	for _, tx := range u.transactions {
		cp := *tx
		out = append(out, &cp)
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) ListTransactionsByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, nil
	}

	var out []*domain.Transaction
	for _, tx := range u.transactions {
		if tx.Date >= from && tx.Date < to {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) UpdateTransactionCategory(ctx context.Context, userID, txID, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.user(userID).transactions[txID]
	if !ok {
		return store.ErrNotFound
	}
	tx.Category = category
	tx.CategoryUpdatedManually = true
	return nil
}

func (s *Store) PutGoal(ctx context.Context, userID string, goal *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *goal
	s.user(userID).goals[goal.ID] = &cp
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, store.ErrNotFound
	}
	g, ok := u.goals[goalID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if _, ok := u.goals[goalID]; !ok {
		return store.ErrNotFound
	}
	delete(u.goals, goalID)
	return nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, nil
	}

	var out []*domain.Goal
	for _, g := range u.goals {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpsertContribution(ctx context.Context, userID string, c *domain.GoalContribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.user(userID).contributions[c.DocID()] = &cp
	return nil
}

func (s *Store) ListContributions(ctx context.Context, userID string) ([]*domain.GoalContribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, nil
	}

	var out []*domain.GoalContribution
	for _, c := range u.contributions {
		cp := *c
		out = append(out, &cp)
	}
	sortContributions(out)
	return out, nil
}

func (s *Store) ListContributionsByGoal(ctx context.Context, userID, goalID string) ([]*domain.GoalContribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, nil
	}

	var out []*domain.GoalContribution
	for _, c := range u.contributions {
		if c.GoalID == goalID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortContributions(out)
	return out, nil
}

func (s *Store) PutRule(ctx context.Context, userID string, rule *domain.CategoryRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rule
	s.user(userID).rules[rule.DocID()] = &cp
	return nil
}

func (s *Store) ListRules(ctx context.Context, userID string) ([]*domain.CategoryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(userID)
	if !ok {
		return nil, nil
	}

	keys := make([]string, 0, len(u.rules))
	for k := range u.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*domain.CategoryRule, 0, len(keys))
	for _, k := range keys {
		cp := *u.rules[k]
		out = append(out, &cp)
	}
	return out, nil
}

func sortTransactions(txs []*domain.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date == txs[j].Date {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Date < txs[j].Date
	})
}

func sortContributions(cs []*domain.GoalContribution) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].GoalID == cs[j].GoalID {
			return cs[i].Month < cs[j].Month
		}
		return cs[i].GoalID < cs[j].GoalID
	})
}

// Package goals derives monthly net savings from classified transactions and
// distributes them across active savings goals.
package goals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finsight/finsight/internal/domain"
)

// salaryCategory is the taxonomy category whose credits count as income.
const salaryCategory = "Salary"

// Store is the slice of the document store the engine needs.
type Store interface {
	ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error)
	ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error)
	UpsertContribution(ctx context.Context, userID string, c *domain.GoalContribution) error
}

// Engine runs the per-month allocation state machine:
// derive, filter eligible, split manual/auto, distribute, persist.
type Engine struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewEngine creates an allocation engine.
func NewEngine(st Store, log zerolog.Logger) *Engine {
	return &Engine{store: st, log: log, now: time.Now}
}

// DeriveMonthlySavings computes net savings per YYYY-MM month: salary-category
// credits minus all debit-type amounts. Months can come out zero or negative;
// the allocator skips those.
func DeriveMonthlySavings(txs []*domain.Transaction) map[string]float64 {
	net := make(map[string]float64)
	for _, tx := range txs {
		m := tx.Month()
		if m == "" {
			continue
		}
		switch {
		case tx.Type == domain.TypeCredit && tx.Category == salaryCategory:
			net[m] += tx.Amount
		case tx.Type == domain.TypeDebit:
			net[m] -= tx.Amount
		}
	}
	return net
}

// AllocateBatch distributes the net savings of every month touched by the
// given transactions. Contribution write failures are logged and skipped so
// one bad record cannot sink the batch.
func (e *Engine) AllocateBatch(ctx context.Context, userID string, txs []*domain.Transaction) error {
	savings := DeriveMonthlySavings(txs)
	if len(savings) == 0 {
		return nil
	}

	goals, err := e.store.ListGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("AllocateBatch: list goals: %w", err)
	}
	if len(goals) == 0 {
		return nil
	}

	months := make([]string, 0, len(savings))
	for m := range savings {
		months = append(months, m)
	}
	sort.Strings(months)

	for _, month := range months {
		net := savings[month]
		if net <= 0 {
			e.log.Debug().Str("month", month).Float64("net", net).
				Msg("no positive net savings, skipping allocation")
			continue
		}

		contribs := AllocateMonth(month, net, goals, e.now(), e.log)
		for _, c := range contribs {
			if err := e.store.UpsertContribution(ctx, userID, c); err != nil {
				e.log.Error().Err(err).Str("goal_id", c.GoalID).Str("month", c.Month).
					Msg("failed to persist goal contribution")
			}
		}
	}

	return nil
}

// AllocateAll re-runs allocation over every stored transaction for the user.
// Safe to repeat: contributions are keyed by (goal, month) and overwritten.
func (e *Engine) AllocateAll(ctx context.Context, userID string) error {
	txs, err := e.store.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("AllocateAll: list transactions: %w", err)
	}
	return e.AllocateBatch(ctx, userID, txs)
}

// AllocateMonth distributes one month's positive net savings across the
// eligible goals. Manual goals are funded first, each capped by what is left
// of the pool; the remainder is split across auto goals proportionally to
// their targets. The returned allocations are never negative and never sum
// past net.
func AllocateMonth(month string, net float64, goals []*domain.Goal, now time.Time, log zerolog.Logger) []*domain.GoalContribution {
	firstDay := month + "-01"
	if _, err := time.Parse("2006-01-02", firstDay); err != nil {
		return nil
	}

	var manual, auto []*domain.Goal
	for _, g := range goals {
		if !goalValid(g, log) {
			continue
		}
		if g.CreatedAt.Format("2006-01-02") > firstDay {
			continue // created after this month started
		}
		if g.ManualAllocated != nil {
			manual = append(manual, g)
		} else {
			auto = append(auto, g)
		}
	}

	var contribs []*domain.GoalContribution

	pool := decimal.NewFromFloat(net)
	for _, g := range manual {
		want := decimal.NewFromFloat(*g.ManualAllocated)
		if want.IsNegative() {
			want = decimal.Zero
		}
		alloc := decimal.Min(want, pool)
		pool = pool.Sub(alloc)

		contribs = append(contribs, contribution(g.ID, month, alloc, "manual", now))
	}

	if len(auto) > 0 {
		totalTarget := decimal.Zero
		for _, g := range auto {
			totalTarget = totalTarget.Add(decimal.NewFromFloat(g.TargetAmount))
		}

		leftover := pool
		for _, g := range auto {
			share := decimal.Zero
			if leftover.IsPositive() && totalTarget.IsPositive() {
				share = leftover.
					Mul(decimal.NewFromFloat(g.TargetAmount)).
					Div(totalTarget).
					Round(0)
				share = decimal.Min(share, pool)
			}
			pool = pool.Sub(share)

			contribs = append(contribs, contribution(g.ID, month, share, "auto", now))
		}
	}

	return contribs
}

// goalValid excludes goals the allocator cannot reason about. They are
// skipped for this run, never a reason to abort the whole computation.
func goalValid(g *domain.Goal, log zerolog.Logger) bool {
	if g.TargetAmount <= 0 {
		log.Warn().Str("goal_id", g.ID).Float64("target", g.TargetAmount).
			Msg("goal has invalid target amount, excluded from allocation")
		return false
	}
	if _, err := time.Parse("2006-01-02", g.Deadline); err != nil {
		log.Warn().Str("goal_id", g.ID).Str("deadline", g.Deadline).
			Msg("goal has invalid deadline, excluded from allocation")
		return false
	}
	return true
}

func contribution(goalID, month string, amount decimal.Decimal, source string, now time.Time) *domain.GoalContribution {
	f, _ := amount.Float64()
	return &domain.GoalContribution{
		GoalID:    goalID,
		Month:     month,
		Allocated: f,
		Source:    source,
		Timestamp: now,
	}
}

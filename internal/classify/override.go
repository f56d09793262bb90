package classify

import (
	"math"

	"github.com/finsight/finsight/internal/domain"
)

// DefaultTolerance is the absolute amount tolerance for rule matching, in
// currency units.
const DefaultTolerance = 10

// amountRule is one learned (amount, category) pair under a title.
type amountRule struct {
	amount   int
	category string
}

// RuleIndex holds a user's learned category rules indexed by normalized
// title. Matching is exact on title and tolerant on amount. When several
// rules under one title fall within tolerance, the earliest stored rule
// wins; that order is deterministic here but not a product guarantee.
type RuleIndex struct {
	byTitle   map[string][]amountRule
	tolerance float64
}

// NewRuleIndex builds an index over the given rules. tolerance < 0 selects
// the default.
func NewRuleIndex(rules []*domain.CategoryRule, tolerance float64) *RuleIndex {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	idx := &RuleIndex{
		byTitle:   make(map[string][]amountRule, len(rules)),
		tolerance: tolerance,
	}
	for _, r := range rules {
		title := domain.NormalizedTitle(r.Title)
		idx.byTitle[title] = append(idx.byTitle[title], amountRule{
			amount:   int(r.Amount),
			category: r.Category,
		})
	}
	return idx
}

// Len reports the number of indexed rules.
func (idx *RuleIndex) Len() int {
	n := 0
	for _, rules := range idx.byTitle {
		n += len(rules)
	}
	return n
}

// Apply rewrites the transaction's category when a learned rule matches:
// category forced, confidence set to 100, override flag raised. Without a
// match the flag is explicitly cleared and the classifier's output stands.
// Reports whether an override happened.
func (idx *RuleIndex) Apply(tx *domain.Transaction) bool {
	title := domain.NormalizedTitle(tx.Title)
	amount := int(tx.Amount)

	for _, rule := range idx.byTitle[title] {
		if math.Abs(float64(rule.amount-amount)) <= idx.tolerance {
			tx.Category = rule.category
			tx.Confidence = 100
			tx.CategoryOverriddenByLearning = true
			return true
		}
	}

	tx.CategoryOverriddenByLearning = false
	return false
}

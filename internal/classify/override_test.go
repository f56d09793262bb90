package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finsight/finsight/internal/domain"
)

func TestRuleIndexApply(t *testing.T) {
	rules := []*domain.CategoryRule{
		{Title: "Amazon", Amount: 1999, Category: "Shopping"},
		{Title: "zomato", Amount: 450, Category: "Dining"},
	}
	idx := NewRuleIndex(rules, 10)

	tests := []struct {
		name         string
		tx           domain.Transaction
		wantOverride bool
		wantCategory string
		wantConf     int
	}{
		{
			name:         "within tolerance matches",
			tx:           domain.Transaction{Title: "Amazon", Amount: 2005, Category: "Others", Confidence: 55},
			wantOverride: true,
			wantCategory: "Shopping",
			wantConf:     100,
		},
		{
			name:         "outside tolerance keeps classifier output",
			tx:           domain.Transaction{Title: "Amazon", Amount: 2015, Category: "Others", Confidence: 55},
			wantOverride: false,
			wantCategory: "Others",
			wantConf:     55,
		},
		{
			name:         "title normalization on both sides",
			tx:           domain.Transaction{Title: "  ZOMATO ", Amount: 455, Category: "Others", Confidence: 40},
			wantOverride: true,
			wantCategory: "Dining",
			wantConf:     100,
		},
		{
			name:         "unknown title no match",
			tx:           domain.Transaction{Title: "Netflix", Amount: 450, Category: "Entertainment", Confidence: 90},
			wantOverride: false,
			wantCategory: "Entertainment",
			wantConf:     90,
		},
		{
			name:         "exact boundary delta equals tolerance",
			tx:           domain.Transaction{Title: "Amazon", Amount: 2009, Category: "Others", Confidence: 50},
			wantOverride: true,
			wantCategory: "Shopping",
			wantConf:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := tt.tx
			got := idx.Apply(&tx)
			assert.Equal(t, tt.wantOverride, got)
			assert.Equal(t, tt.wantCategory, tx.Category)
			assert.Equal(t, tt.wantConf, tx.Confidence)
			assert.Equal(t, tt.wantOverride, tx.CategoryOverriddenByLearning)
		})
	}
}

func TestRuleIndexFirstStoredRuleWins(t *testing.T) {
	// Two overlapping rules under one title: slice order decides.
	rules := []*domain.CategoryRule{
		{Title: "Amazon", Amount: 2000, Category: "Shopping"},
		{Title: "Amazon", Amount: 2004, Category: "Entertainment"},
	}
	idx := NewRuleIndex(rules, 10)

	tx := domain.Transaction{Title: "Amazon", Amount: 2002}
	assert.True(t, idx.Apply(&tx))
	assert.Equal(t, "Shopping", tx.Category)
}

func TestRuleIndexClearsStaleOverrideFlag(t *testing.T) {
	idx := NewRuleIndex(nil, 10)

	tx := domain.Transaction{Title: "Amazon", Amount: 100, CategoryOverriddenByLearning: true}
	assert.False(t, idx.Apply(&tx))
	assert.False(t, tx.CategoryOverriddenByLearning)
}

func TestRuleIndexLen(t *testing.T) {
	rules := []*domain.CategoryRule{
		{Title: "Amazon", Amount: 1999, Category: "Shopping"},
		{Title: "Amazon", Amount: 500, Category: "Shopping"},
		{Title: "Zomato", Amount: 450, Category: "Dining"},
	}
	assert.Equal(t, 3, NewRuleIndex(rules, -1).Len())
}

package engine

import (
	"testing"

	"github.com/radup/fin-good/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keywordRule(id int64, pattern, category string, priority int) model.CategorizationRule {
	return model.CategorizationRule{
		ID:          id,
		UserID:      "u1",
		Pattern:     pattern,
		PatternType: model.PatternKeyword,
		Category:    category,
		Priority:    priority,
		IsActive:    true,
	}
}

func TestMatcherFirstMatchWins(t *testing.T) {
	// Rules arrive from storage already ordered by priority descending.
	rules := []model.CategorizationRule{
		keywordRule(1, "coffee", "Food", 10),
		keywordRule(2, "coffee", "Entertainment", 1),
	}

	m := newMatcher(rules)
	txn := model.Transaction{Description: "COFFEE SHOP PURCHASE"}

	rule, ok := m.match(&txn)
	require.True(t, ok)
	assert.Equal(t, "Food", rule.Category)
}

func TestMatcherCaseInsensitive(t *testing.T) {
	m := newMatcher([]model.CategorizationRule{
		keywordRule(1, "coffee", "Food", 1),
	})

	rule, ok := m.match(&model.Transaction{Description: "COFFEE SHOP PURCHASE"})
	require.True(t, ok)
	assert.Equal(t, "Food", rule.Category)
}

func TestMatcherVendorRule(t *testing.T) {
	rules := []model.CategorizationRule{
		{
			ID: 1, UserID: "u1", Pattern: "Starbucks",
			PatternType: model.PatternVendor, Category: "Food",
			Priority: 1, IsActive: true,
		},
	}

	t.Run("matches vendor substring case-insensitively", func(t *testing.T) {
		m := newMatcher(rules)
		_, ok := m.match(&model.Transaction{Description: "POS 1234", Vendor: "STARBUCKS #42"})
		assert.True(t, ok)
	})

	t.Run("never matches when vendor is empty", func(t *testing.T) {
		m := newMatcher(rules)
		_, ok := m.match(&model.Transaction{Description: "STARBUCKS STORE", Vendor: ""})
		assert.False(t, ok)
	})
}

func TestMatcherRegexRule(t *testing.T) {
	t.Run("matches description", func(t *testing.T) {
		m := newMatcher([]model.CategorizationRule{
			{
				ID: 1, UserID: "u1", Pattern: `uber\s+(trip|eats)`,
				PatternType: model.PatternRegex, Category: "Transport",
				Priority: 1, IsActive: true,
			},
		})
		rule, ok := m.match(&model.Transaction{Description: "UBER TRIP 12:30"})
		require.True(t, ok)
		assert.Equal(t, "Transport", rule.Category)
	})

	t.Run("invalid regex is skipped, evaluation continues", func(t *testing.T) {
		m := newMatcher([]model.CategorizationRule{
			{
				ID: 1, UserID: "u1", Pattern: `([invalid`,
				PatternType: model.PatternRegex, Category: "Broken",
				Priority: 10, IsActive: true,
			},
			keywordRule(2, "rent", "Housing", 1),
		})

		rule, ok := m.match(&model.Transaction{Description: "MONTHLY RENT PAYMENT"})
		require.True(t, ok)
		assert.Equal(t, "Housing", rule.Category)
	})
}

func TestMatcherUnknownPatternType(t *testing.T) {
	m := newMatcher([]model.CategorizationRule{
		{
			ID: 1, UserID: "u1", Pattern: "RENT",
			PatternType: "exact", Category: "Housing",
			Priority: 10, IsActive: true,
		},
	})

	_, ok := m.match(&model.Transaction{Description: "RENT"})
	assert.False(t, ok)
}

func TestMatcherInactiveRule(t *testing.T) {
	rule := keywordRule(1, "rent", "Housing", 1)
	rule.IsActive = false

	m := newMatcher([]model.CategorizationRule{rule})
	_, ok := m.match(&model.Transaction{Description: "MONTHLY RENT"})
	assert.False(t, ok)
}

func TestMatcherNoRules(t *testing.T) {
	m := newMatcher(nil)
	_, ok := m.match(&model.Transaction{Description: "ANYTHING"})
	assert.False(t, ok)
}

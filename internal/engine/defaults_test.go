package engine

import (
	"context"
	"regexp"
	"testing"

	"github.com/radup/fin-good/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.NotEmpty(t, rules)

	for _, rule := range rules {
		assert.Equal(t, model.DefaultRulePriority, rule.Priority, "rule %q", rule.Pattern)
		assert.True(t, rule.IsActive, "rule %q", rule.Pattern)
		assert.NotEmpty(t, rule.Category, "rule %q", rule.Pattern)

		if rule.PatternType == model.PatternRegex {
			_, err := regexp.Compile("(?i)" + rule.Pattern)
			assert.NoError(t, err, "rule %q", rule.Pattern)
		}
	}
}

func TestSeedDefaultRules(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t)

	created, err := eng.SeedDefaultRules(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRules()), created)

	t.Run("reseeding is a no-op", func(t *testing.T) {
		again, err := eng.SeedDefaultRules(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, again)

		rules, err := store.ListRules(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, rules, len(DefaultRules()))
	})

	t.Run("never clobbers a customized rule", func(t *testing.T) {
		rules, err := store.ListRules(ctx, "u1")
		require.NoError(t, err)
		custom := rules[0]
		custom.Category = "Custom"
		custom.Priority = model.UserRulePriority
		require.NoError(t, store.UpdateRule(ctx, &custom))

		_, err = eng.SeedDefaultRules(ctx, "u1")
		require.NoError(t, err)

		got, err := store.GetRuleByPatternKey(ctx, "u1", custom.Pattern, custom.PatternType)
		require.NoError(t, err)
		assert.Equal(t, "Custom", got.Category)
		assert.Equal(t, model.UserRulePriority, got.Priority)
	})

	t.Run("seeded rules categorize", func(t *testing.T) {
		seedTransactions(t, store, testTransaction("t1", "u1", "NETFLIX.COM 866-579-7172", ""))

		count, err := eng.CategorizeUserTransactions(ctx, "u1", "")
		require.NoError(t, err)
		require.Equal(t, 1, count)

		txn, err := store.GetTransactionByID(ctx, "u1", "t1")
		require.NoError(t, err)
		assert.Equal(t, "Entertainment", txn.Category)
		assert.Equal(t, "Streaming", txn.Subcategory)
	})
}

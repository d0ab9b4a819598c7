// Package engine implements the rule-based categorization engine with
// similarity propagation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/radup/fin-good/internal/common"
	"github.com/radup/fin-good/internal/model"
	"github.com/radup/fin-good/internal/service"
)

// CategorizationEngine evaluates prioritized pattern rules against
// transactions and keeps rules in sync with user corrections.
//
// Operations load rows, mutate them in memory and commit once. Concurrent
// corrections for the same user may both select the same propagation
// targets; the writes are idempotent so the race is accepted, though the
// counts each caller sees can overlap.
type CategorizationEngine struct {
	storage service.Storage
}

// New creates a new categorization engine backed by the given storage.
func New(storage service.Storage) *CategorizationEngine {
	return &CategorizationEngine{storage: storage}
}

// CategorizeUserTransactions applies the user's active rules to every
// uncategorized transaction, optionally restricted to one import batch.
// All updates commit together; on any store failure the whole batch is
// rolled back. Returns the number of transactions newly categorized.
func (e *CategorizationEngine) CategorizeUserTransactions(ctx context.Context, userID, batchID string) (int, error) {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	count, err := e.categorizeBatch(ctx, tx, userID, batchID)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	slog.Info("Categorized transactions",
		"user", userID,
		"batch", batchID,
		"count", count)

	return count, nil
}

func (e *CategorizationEngine) categorizeBatch(ctx context.Context, tx service.Tx, userID, batchID string) (int, error) {
	rules, err := tx.GetActiveRules(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load rules: %w", err)
	}

	transactions, err := tx.GetUncategorizedTransactions(ctx, userID, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to load uncategorized transactions: %w", err)
	}

	m := newMatcher(rules)

	count := 0
	for i := range transactions {
		txn := &transactions[i]
		rule, ok := m.match(txn)
		if !ok {
			continue
		}

		txn.SetCategory(rule.Category, rule.Subcategory, model.ConfidenceRuleMatch)
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return 0, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
		}
		count++
	}

	return count, nil
}

// CategorizeTransaction evaluates the user's active rules against a single
// transaction and applies the highest-priority match in memory. The caller
// is responsible for persisting the mutation. Returns whether any rule
// matched.
func (e *CategorizationEngine) CategorizeTransaction(ctx context.Context, txn *model.Transaction) (bool, error) {
	rules, err := e.storage.GetActiveRules(ctx, txn.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load rules: %w", err)
	}

	rule, ok := newMatcher(rules).match(txn)
	if !ok {
		return false, nil
	}

	txn.SetCategory(rule.Category, rule.Subcategory, model.ConfidenceRuleMatch)
	return true, nil
}

// UpdateTransactionCategory records a manual correction, upserts a rule
// derived from the corrected transaction, and propagates the category to
// similar uncategorized transactions. Everything commits as one unit.
func (e *CategorizationEngine) UpdateTransactionCategory(ctx context.Context, userID, transactionID, category, subcategory string) (service.UpdateResult, error) {
	var result service.UpdateResult

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err = e.applyCorrection(ctx, tx, userID, transactionID, category, subcategory)
	if err != nil {
		_ = tx.Rollback()
		return service.UpdateResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return service.UpdateResult{}, fmt.Errorf("failed to commit correction: %w", err)
	}

	slog.Info("Applied manual correction",
		"user", userID,
		"transaction", transactionID,
		"category", category,
		"auto_categorized", result.AutoCategorized,
		"new_rule", result.NewRuleCreated)

	return result, nil
}

func (e *CategorizationEngine) applyCorrection(ctx context.Context, tx service.Tx, userID, transactionID, category, subcategory string) (service.UpdateResult, error) {
	var result service.UpdateResult

	txn, err := tx.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return result, err
	}

	// Manual corrections are fully trusted.
	txn.SetCategory(category, subcategory, model.ConfidenceManual)
	if err := tx.UpdateTransaction(ctx, txn); err != nil {
		return result, err
	}
	result.Updated = true

	created, err := e.upsertRuleFromTransaction(ctx, tx, txn, category, subcategory)
	if err != nil {
		return result, err
	}
	result.NewRuleCreated = created

	propagated, err := e.propagateToSimilar(ctx, tx, txn, category, subcategory)
	if err != nil {
		return result, err
	}
	result.AutoCategorized = propagated

	return result, nil
}

// upsertRuleFromTransaction derives a rule key from the corrected
// transaction and either updates the existing rule for that key or creates
// a new one at UserRulePriority. Returns whether a rule was created.
func (e *CategorizationEngine) upsertRuleFromTransaction(ctx context.Context, tx service.Tx, txn *model.Transaction, category, subcategory string) (bool, error) {
	pattern, patternType, ok := deriveRuleKey(txn)
	if !ok {
		return false, nil
	}

	existing, err := tx.GetRuleByPatternKey(ctx, txn.UserID, pattern, patternType)
	switch {
	case err == nil:
		existing.Category = category
		existing.Subcategory = subcategory
		existing.Priority = model.UserRulePriority
		if err := tx.UpdateRule(ctx, existing); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, common.ErrNotFound):
		rule := &model.CategorizationRule{
			UserID:      txn.UserID,
			Pattern:     pattern,
			PatternType: patternType,
			Category:    category,
			Subcategory: subcategory,
			Priority:    model.UserRulePriority,
			IsActive:    true,
		}
		if err := tx.CreateRule(ctx, rule); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// propagateToSimilar applies the corrected category to every uncategorized
// transaction of the same user that looks similar to the reference.
func (e *CategorizationEngine) propagateToSimilar(ctx context.Context, tx service.Tx, reference *model.Transaction, category, subcategory string) (int, error) {
	candidates, err := tx.GetUncategorizedTransactions(ctx, reference.UserID, "")
	if err != nil {
		return 0, fmt.Errorf("failed to load propagation candidates: %w", err)
	}

	count := 0
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == reference.ID {
			continue
		}
		if !IsSimilar(candidate, reference) {
			continue
		}

		candidate.SetCategory(category, subcategory, model.ConfidencePropagated)
		if err := tx.UpdateTransaction(ctx, candidate); err != nil {
			return 0, fmt.Errorf("failed to propagate to transaction %s: %w", candidate.ID, err)
		}
		count++
	}

	return count, nil
}

// AvailableCategories returns every (category, subcategory) combination
// observed across the user's categorized transactions and active rules.
// Subcategory lists are sorted; a category with no subcategories maps to
// an empty list.
func (e *CategorizationEngine) AvailableCategories(ctx context.Context, userID string) (map[string][]string, error) {
	fromTxns, err := e.storage.GetCategorizedPairs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction categories: %w", err)
	}

	fromRules, err := e.storage.GetRulePairs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule categories: %w", err)
	}

	seen := make(map[string]map[string]struct{})
	for _, pair := range append(fromTxns, fromRules...) {
		if pair.Category == "" {
			continue
		}
		subs, ok := seen[pair.Category]
		if !ok {
			subs = make(map[string]struct{})
			seen[pair.Category] = subs
		}
		if pair.Subcategory != "" {
			subs[pair.Subcategory] = struct{}{}
		}
	}

	categories := make(map[string][]string, len(seen))
	for category, subs := range seen {
		list := make([]string, 0, len(subs))
		for sub := range subs {
			list = append(list, sub)
		}
		sort.Strings(list)
		categories[category] = list
	}

	return categories, nil
}

// CreateRuleFromCorrection creates a rule from a transaction's vendor or
// first description word at DefaultRulePriority. Unlike the upsert inside
// UpdateTransactionCategory this path never updates in place: creating a
// rule whose key already exists surfaces common.ErrDuplicateEntry.
func (e *CategorizationEngine) CreateRuleFromCorrection(ctx context.Context, userID, transactionID, category, subcategory string) (*model.CategorizationRule, error) {
	txn, err := e.storage.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	pattern, patternType, ok := deriveRuleKey(txn)
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w: no usable pattern", transactionID, common.ErrInvalidPattern)
	}

	rule := &model.CategorizationRule{
		UserID:      userID,
		Pattern:     pattern,
		PatternType: patternType,
		Category:    category,
		Subcategory: subcategory,
		Priority:    model.DefaultRulePriority,
		IsActive:    true,
	}

	if err := e.storage.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

// deriveRuleKey picks the rule pattern for a corrected transaction: the
// vendor when present, otherwise the first whitespace-delimited word of
// the description.
func deriveRuleKey(txn *model.Transaction) (string, model.PatternType, bool) {
	if txn.Vendor != "" {
		return txn.Vendor, model.PatternVendor, true
	}

	words := strings.Fields(txn.Description)
	if len(words) == 0 {
		return "", "", false
	}
	return words[0], model.PatternKeyword, true
}

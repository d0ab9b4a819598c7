// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/radup/fin-good/internal/model"
)

// TransactionStore defines the persistence contract for transactions.
type TransactionStore interface {
	// SaveTransactions persists imported transactions, skipping duplicates
	// by hash. Returns the number of transactions actually stored.
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)

	// GetUncategorizedTransactions returns all transactions for the user
	// where no category has been assigned. A non-empty batchID restricts
	// the result to one import batch.
	GetUncategorizedTransactions(ctx context.Context, userID, batchID string) ([]model.Transaction, error)

	// GetTransactionByID returns the user's transaction with the given ID,
	// or common.ErrNotFound if it does not exist or belongs to another user.
	GetTransactionByID(ctx context.Context, userID, id string) (*model.Transaction, error)

	// UpdateTransaction writes back a transaction's categorization fields.
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error

	// GetCategorizedPairs returns the distinct (category, subcategory)
	// pairs across the user's categorized transactions.
	GetCategorizedPairs(ctx context.Context, userID string) ([]model.CategoryPair, error)
}

// RuleStore defines the persistence contract for categorization rules.
type RuleStore interface {
	// GetActiveRules returns the user's active rules ordered by priority
	// descending. Rules sharing a priority are returned in insertion order.
	GetActiveRules(ctx context.Context, userID string) ([]model.CategorizationRule, error)

	// GetRuleByPatternKey returns the user's rule with exactly this
	// (pattern, pattern type), or common.ErrNotFound.
	GetRuleByPatternKey(ctx context.Context, userID, pattern string, patternType model.PatternType) (*model.CategorizationRule, error)

	// CreateRule inserts a new rule. A (user, pattern, pattern type)
	// collision surfaces common.ErrDuplicateEntry.
	CreateRule(ctx context.Context, rule *model.CategorizationRule) error

	// UpdateRule updates an existing rule in place.
	UpdateRule(ctx context.Context, rule *model.CategorizationRule) error

	// ListRules returns all of the user's rules ordered by priority descending.
	ListRules(ctx context.Context, userID string) ([]model.CategorizationRule, error)

	// GetRulePairs returns the distinct (category, subcategory) pairs
	// across the user's active rules.
	GetRulePairs(ctx context.Context, userID string) ([]model.CategoryPair, error)
}

// Storage is the full persistence contract consumed by the engine and CLI.
type Storage interface {
	TransactionStore
	RuleStore

	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx represents a database transaction. All store mutations performed
// through a Tx become visible together on Commit and are discarded on
// Rollback.
type Tx interface {
	TransactionStore
	RuleStore

	Commit() error
	Rollback() error
}

// UpdateResult reports the outcome of a manual category correction.
type UpdateResult struct {
	// Updated reports whether the target transaction was changed.
	Updated bool
	// NewRuleCreated is true when the correction synthesized a new rule
	// rather than updating an existing one.
	NewRuleCreated bool
	// AutoCategorized counts similar transactions that received the
	// corrected category.
	AutoCategorized int
}

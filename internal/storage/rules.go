package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/radup/fin-good/internal/common"
	"github.com/radup/fin-good/internal/model"
)

const ruleColumns = `id, user_id, pattern, pattern_type, category, subcategory,
	priority, is_active, created_at, updated_at`

// GetActiveRules returns the user's active rules ordered by priority
// descending. Rules sharing a priority come back in insertion order; among
// equal priorities no further ordering is promised.
func (s *SQLiteStorage) GetActiveRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getActiveRules(ctx, s.db, userID)
}

// GetActiveRules returns active rules within the transaction.
func (t *sqliteTx) GetActiveRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getActiveRules(ctx, t.tx, userID)
}

func getActiveRules(ctx context.Context, q querier, userID string) ([]model.CategorizationRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM categorization_rules
		WHERE user_id = ? AND is_active = 1
		ORDER BY priority DESC, id ASC
	`
	return queryRules(ctx, q, query, userID)
}

// ListRules returns all of the user's rules ordered by priority descending.
func (s *SQLiteStorage) ListRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM categorization_rules
		WHERE user_id = ?
		ORDER BY priority DESC, id ASC
	`
	return queryRules(ctx, s.db, query, userID)
}

// ListRules returns all rules within the transaction.
func (t *sqliteTx) ListRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM categorization_rules
		WHERE user_id = ?
		ORDER BY priority DESC, id ASC
	`
	return queryRules(ctx, t.tx, query, userID)
}

func queryRules(ctx context.Context, q querier, query string, args ...any) ([]model.CategorizationRule, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategorizationRule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// GetRuleByPatternKey returns the user's rule with exactly this
// (pattern, pattern type).
func (s *SQLiteStorage) GetRuleByPatternKey(ctx context.Context, userID, pattern string, patternType model.PatternType) (*model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return nil, err
	}
	return getRuleByPatternKey(ctx, s.db, userID, pattern, patternType)
}

// GetRuleByPatternKey returns a rule by key within the transaction.
func (t *sqliteTx) GetRuleByPatternKey(ctx context.Context, userID, pattern string, patternType model.PatternType) (*model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return nil, err
	}
	return getRuleByPatternKey(ctx, t.tx, userID, pattern, patternType)
}

func getRuleByPatternKey(ctx context.Context, q querier, userID, pattern string, patternType model.PatternType) (*model.CategorizationRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM categorization_rules
		WHERE user_id = ? AND pattern = ? AND pattern_type = ?
	`

	row := q.QueryRowContext(ctx, query, userID, pattern, string(patternType))
	rule, err := scanRuleRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %q (%s): %w", pattern, patternType, common.ErrNotFound)
		}
		return nil, err
	}

	return rule, nil
}

// CreateRule inserts a new rule. Colliding with an existing
// (user, pattern, pattern type) surfaces common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return createRule(ctx, s.db, rule)
}

// CreateRule inserts a rule within the transaction.
func (t *sqliteTx) CreateRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return createRule(ctx, t.tx, rule)
}

func createRule(ctx context.Context, q querier, rule *model.CategorizationRule) error {
	query := `
		INSERT INTO categorization_rules (
			user_id, pattern, pattern_type, category, subcategory,
			priority, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query,
		rule.UserID, rule.Pattern, string(rule.PatternType),
		rule.Category, nullable(rule.Subcategory),
		rule.Priority, rule.IsActive,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("rule %q (%s): %w", rule.Pattern, rule.PatternType, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}

	rule.ID = id
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	return nil
}

// UpdateRule updates an existing rule in place.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return updateRule(ctx, s.db, rule)
}

// UpdateRule updates a rule within the transaction.
func (t *sqliteTx) UpdateRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	return updateRule(ctx, t.tx, rule)
}

func updateRule(ctx context.Context, q querier, rule *model.CategorizationRule) error {
	query := `
		UPDATE categorization_rules SET
			pattern = ?, pattern_type = ?, category = ?, subcategory = ?,
			priority = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`

	result, err := q.ExecContext(ctx, query,
		rule.Pattern, string(rule.PatternType), rule.Category,
		nullable(rule.Subcategory), rule.Priority, rule.IsActive,
		rule.ID, rule.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule %d: %w", rule.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d: %w", rule.ID, common.ErrNotFound)
	}

	return nil
}

// GetRulePairs returns the distinct (category, subcategory) pairs across
// the user's active rules.
func (s *SQLiteStorage) GetRulePairs(ctx context.Context, userID string) ([]model.CategoryPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getRulePairs(ctx, s.db, userID)
}

// GetRulePairs returns rule pairs within the transaction.
func (t *sqliteTx) GetRulePairs(ctx context.Context, userID string) ([]model.CategoryPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getRulePairs(ctx, t.tx, userID)
}

func getRulePairs(ctx context.Context, q querier, userID string) ([]model.CategoryPair, error) {
	query := `
		SELECT DISTINCT category, COALESCE(subcategory, '')
		FROM categorization_rules
		WHERE user_id = ? AND is_active = 1
		ORDER BY category, subcategory
	`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pairs []model.CategoryPair
	for rows.Next() {
		var pair model.CategoryPair
		if err := rows.Scan(&pair.Category, &pair.Subcategory); err != nil {
			return nil, fmt.Errorf("failed to scan rule pair: %w", err)
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule pairs: %w", err)
	}

	return pairs, nil
}

func scanRule(rows *sql.Rows) (*model.CategorizationRule, error) {
	return scanRuleRow(rows)
}

func scanRuleRow(row scanner) (*model.CategorizationRule, error) {
	var rule model.CategorizationRule
	var patternType string
	var subcategory sql.NullString

	err := row.Scan(
		&rule.ID, &rule.UserID, &rule.Pattern, &patternType,
		&rule.Category, &subcategory, &rule.Priority, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	rule.PatternType = model.PatternType(patternType)
	rule.Subcategory = subcategory.String

	return &rule, nil
}

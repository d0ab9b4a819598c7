package model

import (
	"time"
)

// PatternType identifies how a rule's pattern is evaluated against a
// transaction.
type PatternType string

// Pattern types evaluated by the categorization engine. Other values
// (for example "exact" or "contains") may exist in storage from older
// imports; they are preserved but never match.
const (
	PatternKeyword PatternType = "keyword"
	PatternVendor  PatternType = "vendor"
	PatternRegex   PatternType = "regex"
)

// Rule priorities. User corrections create rules at UserRulePriority so
// they are evaluated before generic rules without renumbering.
const (
	DefaultRulePriority = 1
	UserRulePriority    = 10
)

// CategorizationRule matches transactions to a category. Rules are
// strictly scoped to one user; at most one rule exists per
// (user, pattern, pattern type).
type CategorizationRule struct {
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	UserID      string      `json:"user_id"`
	Pattern     string      `json:"pattern"`
	PatternType PatternType `json:"pattern_type"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory,omitempty"`
	ID          int64       `json:"id"`
	Priority    int         `json:"priority"`
	IsActive    bool        `json:"is_active"`
}

package engine

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/radup/fin-good/internal/model"
)

// matcher evaluates a fixed, priority-ordered rule set against
// transactions. First match wins; rules sharing a priority are tried in
// stored order, which is not otherwise specified.
type matcher struct {
	compiledRegex map[int64]*regexp.Regexp
	rules         []model.CategorizationRule
}

// newMatcher creates a matcher over rules already ordered by priority
// descending. Regex patterns are pre-compiled case-insensitively; a
// pattern that fails to compile stays out of the map and its rule never
// matches.
func newMatcher(rules []model.CategorizationRule) *matcher {
	m := &matcher{
		rules:         rules,
		compiledRegex: make(map[int64]*regexp.Regexp),
	}

	for _, rule := range rules {
		if rule.PatternType != model.PatternRegex || rule.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			slog.Warn("Skipping rule with invalid regex",
				"rule_id", rule.ID,
				"pattern", rule.Pattern,
				"error", err)
			continue
		}
		m.compiledRegex[rule.ID] = re
	}

	return m
}

// match returns the first active rule that matches the transaction.
func (m *matcher) match(txn *model.Transaction) (*model.CategorizationRule, bool) {
	for i := range m.rules {
		rule := &m.rules[i]
		if !rule.IsActive {
			continue
		}
		if m.matchesRule(txn, rule) {
			return rule, true
		}
	}
	return nil, false
}

// matchesRule checks one rule against one transaction. All comparisons are
// case-insensitive.
func (m *matcher) matchesRule(txn *model.Transaction, rule *model.CategorizationRule) bool {
	switch rule.PatternType {
	case model.PatternKeyword:
		return strings.Contains(
			strings.ToLower(txn.Description),
			strings.ToLower(rule.Pattern))
	case model.PatternVendor:
		if txn.Vendor == "" {
			return false
		}
		return strings.Contains(
			strings.ToLower(txn.Vendor),
			strings.ToLower(rule.Pattern))
	case model.PatternRegex:
		re, ok := m.compiledRegex[rule.ID]
		if !ok {
			// Invalid pattern: treated as a non-match, never an error.
			return false
		}
		return re.MatchString(txn.Description)
	default:
		// Pattern types the engine does not evaluate ("exact",
		// "contains", ...) never match.
		return false
	}
}

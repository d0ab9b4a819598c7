package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/radup/fin-good/internal/common"
	"github.com/radup/fin-good/internal/model"
)

// DefaultRules returns the built-in starter rule set. Every rule carries
// DefaultRulePriority so user corrections always override it.
func DefaultRules() []model.CategorizationRule {
	defs := []struct {
		pattern     string
		patternType model.PatternType
		category    string
		subcategory string
	}{
		// Income
		{`\b(DIRECTDEP|DIRECT\s*DEP|PAYROLL|SALARY|WAGES)\b`, model.PatternRegex, "Income", "Salary"},
		{`\b(INTEREST|INT\s*EARNED|DIVIDEND)\b`, model.PatternRegex, "Income", "Interest"},
		{`\b(REFUND|REIMB|REIMBURSEMENT|CASHBACK|CASH\s*BACK)\b`, model.PatternRegex, "Income", "Refunds"},
		{`\b(TAX\s*REF|IRS\s*TREAS|STATE\s*TAX\s*REF)\b`, model.PatternRegex, "Income", "Tax Refund"},

		// Housing and utilities
		{"rent", model.PatternKeyword, "Housing", "Rent"},
		{`\b(MORTGAGE|MTG\s*PMT)\b`, model.PatternRegex, "Housing", "Mortgage"},
		{`\b(ELECTRIC|GAS\s*CO|WATER\s*UTIL|UTILITY)\b`, model.PatternRegex, "Housing", "Utilities"},
		{`\b(COMCAST|XFINITY|SPECTRUM|INTERNET)\b`, model.PatternRegex, "Housing", "Internet"},

		// Food
		{`\b(GROCERY|SUPERMARKET|SAFEWAY|KROGER|TRADER\s*JOE)\b`, model.PatternRegex, "Food", "Groceries"},
		{`\b(RESTAURANT|DOORDASH|GRUBHUB|UBER\s*EATS)\b`, model.PatternRegex, "Food", "Restaurants"},
		{`\b(STARBUCKS|COFFEE|CAFE)\b`, model.PatternRegex, "Food", "Coffee"},

		// Transportation
		{`\b(SHELL|CHEVRON|EXXON|FUEL|GAS\s*STATION)\b`, model.PatternRegex, "Transportation", "Fuel"},
		{`\b(UBER|LYFT|TAXI)\b`, model.PatternRegex, "Transportation", "Rideshare"},
		{`\b(PARKING|TOLL)\b`, model.PatternRegex, "Transportation", "Parking"},

		// Entertainment
		{`\b(NETFLIX|HULU|SPOTIFY|DISNEY\+|HBO)\b`, model.PatternRegex, "Entertainment", "Streaming"},

		// Financial
		{`\b(ATM|CASH\s*WITHDRAWAL)\b`, model.PatternRegex, "Financial", "Cash"},
		{`\b(FEE|SERVICE\s*CHG|PENALTY|OVERDRAFT)\b`, model.PatternRegex, "Financial", "Fees"},
		{`\b(TRANSFER|XFER|TFR)\b`, model.PatternRegex, "Financial", "Transfers"},
	}

	rules := make([]model.CategorizationRule, 0, len(defs))
	for _, def := range defs {
		rules = append(rules, model.CategorizationRule{
			Pattern:     def.pattern,
			PatternType: def.patternType,
			Category:    def.category,
			Subcategory: def.subcategory,
			Priority:    model.DefaultRulePriority,
			IsActive:    true,
		})
	}
	return rules
}

// SeedDefaultRules installs the built-in rule set for a user. Rules whose
// pattern key already exists are left untouched, so re-seeding never
// clobbers customized rules. Returns the number of rules created.
func (e *CategorizationEngine) SeedDefaultRules(ctx context.Context, userID string) (int, error) {
	created := 0
	for _, rule := range DefaultRules() {
		rule.UserID = userID
		err := e.storage.CreateRule(ctx, &rule)
		switch {
		case err == nil:
			created++
		case errors.Is(err, common.ErrDuplicateEntry):
			continue
		default:
			return created, fmt.Errorf("failed to seed rule %q: %w", rule.Pattern, err)
		}
	}

	slog.Info("Seeded default rules", "user", userID, "created", created)

	return created, nil
}

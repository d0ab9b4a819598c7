package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/radup/fin-good/internal/cli"
	"github.com/radup/fin-good/internal/engine"
	"github.com/radup/fin-good/internal/model"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
		Long:  `List and add the pattern rules used to categorize transactions.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(addRuleFromTransactionCmd())
	cmd.AddCommand(seedRulesCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules",
		Long:  `Display the user's rules in evaluation order (highest priority first).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			userID, err := currentUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.ListRules(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println(cli.InfoStyle.Render("No rules found. Use 'fingood rules add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Priority"),
				headerStyle.Render("Type"),
				headerStyle.Render("Pattern"),
				headerStyle.Render("Category"),
				headerStyle.Render("Active"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 8),
				strings.Repeat("-", 8),
				strings.Repeat("-", 20),
				strings.Repeat("-", 20),
				strings.Repeat("-", 6))

			for _, rule := range rules {
				active := "yes"
				if !rule.IsActive {
					active = "no"
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
					rule.ID, rule.Priority, rule.PatternType, rule.Pattern,
					formatCategory(rule.Category, rule.Subcategory), active)
			}

			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	var (
		patternType string
		subcategory string
		priority    int
	)

	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add a new rule",
		Long: `Create a categorization rule. Pattern types:
  keyword  substring match against the transaction description
  vendor   substring match against the vendor name
  regex    regular expression match against the description`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := currentUser()
			if err != nil {
				return err
			}

			pt := model.PatternType(strings.ToLower(patternType))
			switch pt {
			case model.PatternKeyword, model.PatternVendor, model.PatternRegex:
			default:
				return fmt.Errorf("unknown pattern type %q", patternType)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := &model.CategorizationRule{
				UserID:      userID,
				Pattern:     args[0],
				PatternType: pt,
				Category:    args[1],
				Subcategory: subcategory,
				Priority:    priority,
				IsActive:    true,
			}

			if err := store.CreateRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Created rule %d: %s %q -> %s",
					rule.ID, rule.PatternType, rule.Pattern,
					formatCategory(rule.Category, rule.Subcategory))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&patternType, "type", "t", "keyword", "pattern type (keyword, vendor, regex)")
	cmd.Flags().StringVarP(&subcategory, "subcategory", "s", "", "subcategory to assign")
	cmd.Flags().IntVarP(&priority, "priority", "p", model.DefaultRulePriority, "rule priority (higher evaluated first)")

	return cmd
}

func seedRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the built-in starter rules",
		Long: `Install the built-in rule set for common vendors and transaction
types. Existing rules with the same pattern are left untouched, so
seeding is safe to repeat.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			userID, err := currentUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, err := engine.New(store).SeedDefaultRules(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to seed rules: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Installed %d default rules", created)))
			return nil
		},
	}
}

func addRuleFromTransactionCmd() *cobra.Command {
	var subcategory string

	cmd := &cobra.Command{
		Use:   "from-transaction <transaction-id> <category>",
		Short: "Create a rule from an existing transaction",
		Long: `Derive a rule from a transaction's vendor (or first description word)
without touching the transaction itself. Unlike 'recategorize', this
always creates a new rule and fails if one already exists for the
derived pattern.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := currentUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule, err := engine.New(store).CreateRuleFromCorrection(ctx, userID, args[0], args[1], subcategory)
			if err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Created rule %d: %s %q -> %s",
					rule.ID, rule.PatternType, rule.Pattern,
					formatCategory(rule.Category, rule.Subcategory))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&subcategory, "subcategory", "s", "", "subcategory to assign")

	return cmd
}

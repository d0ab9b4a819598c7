package main

import (
	"fmt"

	"github.com/radup/fin-good/internal/cli"
	"github.com/radup/fin-good/internal/engine"
	"github.com/spf13/cobra"
)

func recategorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recategorize <transaction-id> <category> [subcategory]",
		Short: "Manually correct a transaction's category",
		Long: `Set a transaction's category directly. The correction also creates or
updates a matching rule for future imports and propagates the category
to similar uncategorized transactions.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := currentUser()
			if err != nil {
				return err
			}

			transactionID := args[0]
			category := args[1]
			subcategory := ""
			if len(args) == 3 {
				subcategory = args[2]
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			eng := engine.New(store)

			// Warn on categories the user has never used; typos here
			// silently fork the category set.
			known, err := eng.AvailableCategories(ctx, userID)
			if err != nil {
				return err
			}
			if _, ok := known[category]; !ok && len(known) > 0 {
				names := make([]string, 0, len(known))
				for name := range known {
					names = append(names, name)
				}
				if suggestion, ok := cli.SuggestCategory(category, names); ok {
					fmt.Println(cli.WarningStyle.Render(
						fmt.Sprintf("New category %q (did you mean %q?)", category, suggestion)))
				}
			}

			result, err := eng.UpdateTransactionCategory(ctx, userID, transactionID, category, subcategory)
			if err != nil {
				return fmt.Errorf("failed to recategorize: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Updated transaction %s to %s", transactionID, formatCategory(category, subcategory))))
			if result.NewRuleCreated {
				fmt.Println(cli.InfoStyle.Render("Created a new rule from this correction."))
			} else {
				fmt.Println(cli.InfoStyle.Render("Updated the existing rule for this pattern."))
			}
			if result.AutoCategorized > 0 {
				fmt.Println(cli.InfoStyle.Render(
					fmt.Sprintf("Auto-categorized %d similar transaction(s).", result.AutoCategorized)))
			}

			return nil
		},
	}

	return cmd
}

func formatCategory(category, subcategory string) string {
	if subcategory == "" {
		return category
	}
	return category + "/" + subcategory
}

package main

import (
	"fmt"

	"github.com/radup/fin-good/internal/cli"
	"github.com/radup/fin-good/internal/engine"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Apply categorization rules to uncategorized transactions",
		Long: `Evaluate the user's active rules against every uncategorized
transaction. The highest-priority matching rule wins; the whole run
commits as one unit.`,
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

			count, err := engine.New(store).CategorizeUserTransactions(ctx, userID, batchID)
			if err != nil {
				return fmt.Errorf("categorization failed: %w", err)
			}

			if count == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions matched any rule."))
				return nil
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Categorized %d transaction(s)", count)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&batchID, "batch", "b", "", "restrict to one import batch")

	return cmd
}

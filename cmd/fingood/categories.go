package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/radup/fin-good/internal/cli"
	"github.com/radup/fin-good/internal/engine"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in use",
		Long: `Display every category observed across the user's categorized
transactions and active rules, with subcategories.`,
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

			categories, err := engine.New(store).AvailableCategories(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories yet. Categorize some transactions first."))
				return nil
			}

			names := make([]string, 0, len(categories))
			for name := range categories {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Println(cli.TitleStyle.Render("Categories"))
			for _, name := range names {
				subs := categories[name]
				if len(subs) == 0 {
					fmt.Println(cli.BoldStyle.Render(name))
					continue
				}
				fmt.Printf("%s %s\n",
					cli.BoldStyle.Render(name),
					cli.SubtleStyle.Render("("+strings.Join(subs, ", ")+")"))
			}

			return nil
		},
	}
}

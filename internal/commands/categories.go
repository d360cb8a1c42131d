package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayzanadeem/Budgey/pkg/budgey"
)

func newCategoriesCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}
	cmd.AddCommand(newCategoriesListCommand(flags))
	cmd.AddCommand(newCategoriesAddCommand(flags))
	return cmd
}

func newCategoriesListCommand(flags *rootFlags) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}

			client, err := flags.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			categories, err := client.Categories.List(cmd.Context(), userID, refresh)
			if err != nil {
				return err
			}

			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories yet. Add one with: budgey categories add <name>")
				return nil
			}

			for _, cat := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s %s\n", cat.ID, cat.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the category cache")

	return cmd
}

func newCategoriesAddCommand(flags *rootFlags) *cobra.Command {
	var icon string
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}

			client, err := flags.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			category, err := client.Categories.Create(cmd.Context(), &budgey.CreateCategoryParams{
				UserID: userID,
				Name:   args[0],
				Icon:   icon,
				Color:  color,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", category.Name, category.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "", "category icon")
	cmd.Flags().StringVar(&color, "color", "", "category color")

	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayzanadeem/Budgey/pkg/budgey"
)

func newBreakdownCommand(flags *rootFlags) *cobra.Command {
	var pages int
	var pageSize int

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show the monthly expense breakdown by category",
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

			paginator, err := client.NewBreakdownPaginator(userID, pageSize)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			for i := 0; i < pages && paginator.HasNextPage(); i++ {
				if err := paginator.LoadNextPage(ctx); err != nil {
					return err
				}
			}

			breakdown := paginator.Breakdown()
			if breakdown == nil || len(breakdown.Months) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No expenses found.")
				return nil
			}

			printBreakdown(cmd, breakdown)
			if paginator.HasNextPage() {
				fmt.Fprintln(cmd.OutOrStdout(), "More pages available; rerun with a larger --pages.")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().IntVar(&pageSize, "page-size", budgey.DefaultPageSize, "records per page")

	return cmd
}

func printBreakdown(cmd *cobra.Command, breakdown *budgey.ExpenseBreakdown) {
	out := cmd.OutOrStdout()

	for _, month := range breakdown.Months {
		fmt.Fprintf(out, "%s\n", month.DisplayLabel)
		fmt.Fprintf(out, "  expenses %.2f  income %.2f  net %+.2f\n",
			month.TotalExpenses, month.TotalIncome, month.NetAmount)

		for _, cat := range month.Categories {
			fmt.Fprintf(out, "  %-20s %10.2f  (%5.1f%%, %d records)\n",
				cat.CategoryName, cat.TotalAmount, cat.Percentage, cat.Count)
		}
		fmt.Fprintln(out)
	}

	totals := breakdown.Totals
	fmt.Fprintf(out, "Across %d months: expenses %.2f, income %.2f, net %+.2f\n",
		totals.MonthCount, totals.TotalExpenses, totals.TotalIncome, totals.NetAmount)
	if totals.TopCategory != "" {
		fmt.Fprintf(out, "Top category: %s\n", totals.TopCategory)
	}
}

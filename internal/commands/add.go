package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ayzanadeem/Budgey/pkg/budgey"
)

func newAddCommand(flags *rootFlags) *cobra.Command {
	var categoryID string
	var recordType string
	var description string
	var currency string
	var periodStart string
	var periodEnd string

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense or income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}

			// Amounts are parsed exactly so "19.999" is rejected instead of
			// silently rounded
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return budgey.NewError(budgey.KindInvalidInput, fmt.Sprintf("invalid amount %q", args[0]))
			}
			if amount.Exponent() < -2 {
				return budgey.NewError(budgey.KindInvalidInput, fmt.Sprintf("amount %q has more than two decimal places", args[0]))
			}
			if amount.IsNegative() {
				return budgey.NewError(budgey.KindInvalidInput, "amount must not be negative")
			}

			start, end, err := resolvePeriod(periodStart, periodEnd)
			if err != nil {
				return err
			}

			client, err := flags.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			amt, _ := amount.Float64()
			record, err := client.Expenses.Create(cmd.Context(), &budgey.CreateExpenseParams{
				UserID:      userID,
				CategoryID:  categoryID,
				Type:        budgey.RecordType(recordType),
				Amount:      amt,
				Description: description,
				PeriodStart: start,
				PeriodEnd:   end,
				Currency:    currency,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %.2f %s in %s (%s)\n",
				record.Type, record.Amount, record.Currency, budgey.MonthKeyLabel(record.MonthKey), record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "category id (required)")
	cmd.Flags().StringVar(&recordType, "type", string(budgey.RecordTypeExpense), "record type: EXPENSE or INCOME")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code")
	cmd.Flags().StringVar(&periodStart, "period-start", "", "budget period start, YYYY-MM-DD (default: first of this month)")
	cmd.Flags().StringVar(&periodEnd, "period-end", "", "budget period end, YYYY-MM-DD (default: last of this month)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// resolvePeriod parses the period flags, defaulting to the current calendar
// month
func resolvePeriod(startFlag, endFlag string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	var err error
	if startFlag != "" {
		start, err = time.Parse("2006-01-02", startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, budgey.NewError(budgey.KindInvalidInput, fmt.Sprintf("invalid period start %q", startFlag))
		}
		if endFlag == "" {
			monthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
			end = monthStart.AddDate(0, 1, -1)
		}
	}
	if endFlag != "" {
		end, err = time.Parse("2006-01-02", endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, budgey.NewError(budgey.KindInvalidInput, fmt.Sprintf("invalid period end %q", endFlag))
		}
	}

	return start, end, nil
}

// Package report handles balance and yearly spending summaries
package report

import (
	"fmt"
	"time"

	"salio/sms-ledger/cmd/root"
	reporting "salio/sms-ledger/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Show the last known balance and yearly totals",
	Long: `Report prints the balance from the most recent stored message together with
the total income and expenses for the requested year.

Example:
  sms-ledger report --year 2024`,
	Run: reportFunc,
}

func init() {
	Cmd.Flags().IntVarP(&root.ReportYear, "year", "y", 0, "Year to summarize (default: current year)")
}

func reportFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	year := root.ReportYear
	if year == 0 {
		year = time.Now().Year()
	}

	s, err := root.OpenStore()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open store")
	}
	defer s.Close()

	reporter := reporting.New(s)

	balance, err := reporter.LastBalance(ctx)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to read last balance")
	}

	income, err := reporter.TotalIncomePerYear(ctx, year)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to sum yearly income")
	}

	expense, err := reporter.TotalExpensePerYear(ctx, year)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to sum yearly expenses")
	}

	fmt.Printf("Balance:        Ksh%s\n", balance.StringFixed(2))
	fmt.Printf("Income %d:    Ksh%s\n", year, income.StringFixed(2))
	fmt.Printf("Expenses %d:  Ksh%s\n", year, expense.StringFixed(2))
}

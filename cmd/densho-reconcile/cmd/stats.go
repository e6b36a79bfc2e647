package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/db"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/report"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display invoice database statistics",
	Long: `Display statistics about stored invoices.

Shows:
- Total number of invoices, by document type
- Earliest and latest transaction dates
- Last reconcile and backup timestamps
- With --month, the invoice total for that month

Example:
  densho-reconcile stats
  densho-reconcile stats --month 2025-04`,
	Run: runStats,
}

var statsMonth string

func init() {
	statsCmd.Flags().StringVar(&statsMonth, "month", "", "Show the invoice total for a month (YYYY-MM)")
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	_, conn := openDatabase(cfg)
	defer conn.Close()

	store := db.NewInvoiceStore(conn)
	stats, err := store.Stats(cmd.Context())
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Invoice Statistics ===")
	fmt.Printf("Total invoices:   %d\n", stats.TotalInvoices)
	for _, docType := range invoice.DocumentTypes {
		if n := stats.ByDocumentType[docType]; n > 0 {
			fmt.Printf("  %-14s  %d\n", docType.Label(), n)
		}
	}

	if stats.EarliestDate.Valid {
		fmt.Printf("Date range:       %s .. %s\n", stats.EarliestDate.String, stats.LatestDate.String)
	}
	fmt.Printf("Last reconcile:   %s\n", orNever(stats.LastReconcileAt))
	fmt.Printf("Last backup:      %s\n", orNever(stats.LastBackupAt))

	if statsMonth != "" {
		total, count, err := store.MonthlyTotal(cmd.Context(), statsMonth)
		exitOnError(err, "failed to get monthly total")
		fmt.Printf("Total %s:    %s (%d invoices)\n", statsMonth, report.FormatAmount(total, "JPY"), count)
	}
	fmt.Println()

	slog.Info("Statistics displayed successfully")
}

func orNever(s string) string {
	if s == "" {
		return "(never)"
	}
	return s
}

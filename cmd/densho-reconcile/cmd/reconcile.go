package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/db"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/journal"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/reconcile"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/report"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/rules"
)

var (
	journalPath     string
	journalEncoding string
	tolerance       int
	reportMonth     string
	saveReport      bool
)

// reconcileCmd represents the reconcile command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a journal export against stored invoices",
	Long: `Reconcile a Money Forward journal export against the invoice database.

This command:
1. Decodes and parses the journal export (Shift-JIS by default)
2. Groups rows into transactions and finds those that need a document
3. Loads invoices dated within the journal period plus the date tolerance
4. Matches each taxed transaction by amount, then by counterparty name
5. Prints the result table, optionally saving a monthly CSV report

Example:
  densho-reconcile reconcile --journal 仕訳帳_202504.csv
  densho-reconcile reconcile --journal 仕訳帳_202504.csv --tolerance 7 --save`,
	Run: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&journalPath, "journal", "", "Journal export CSV file (required)")
	reconcileCmd.Flags().StringVar(&journalEncoding, "encoding", "shift_jis", "Journal file encoding")
	reconcileCmd.Flags().IntVar(&tolerance, "tolerance", 0, "Days an invoice may be dated after the transaction (default from config)")
	reconcileCmd.Flags().StringVar(&reportMonth, "month", "", "Report month YYYY-MM (default: month of the first transaction)")
	reconcileCmd.Flags().BoolVar(&saveReport, "save", false, "Save the result as a monthly CSV report")

	reconcileCmd.MarkFlagRequired("journal")
}

func runReconcile(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	cfg := loadConfig()

	rs, err := rules.Load(cfg.Reconcile.RulesFile)
	exitOnError(err, "failed to load reconcile rules")

	opts := rs.ReconcileOptions(cfg.Reconcile.DateToleranceDays)
	if cmd.Flags().Changed("tolerance") {
		if tolerance < 0 {
			exitOnError(fmt.Errorf("got %d", tolerance), "tolerance must not be negative")
		}
		opts.DateToleranceDays = tolerance
	}

	enc, err := lookupEncoding(journalEncoding)
	exitOnError(err, "unsupported journal encoding")

	data, err := os.ReadFile(journalPath)
	exitOnError(err, "failed to read journal export")

	slog.Info("Parsing journal export", "path", journalPath, "encoding", journalEncoding, "bytes", len(data))
	transactions, err := journal.ParseBytes(data, enc, journal.WithMarkers(rs.TaxMarkers))
	exitOnError(err, "failed to parse journal export")
	slog.Info("Parsed transactions", "count", len(transactions))

	if len(transactions) == 0 {
		fmt.Println("No transactions in journal export")
		return
	}

	pathResolver, conn := openDatabase(cfg)
	defer conn.Close()

	reconciler := reconcile.New(opts)
	from, to := reconciler.InvoiceDateRange(transactions)

	var invoices []invoice.Invoice
	if from != "" {
		invoices, err = db.NewInvoiceStore(conn).Search(ctx, db.Filter{DateFrom: from, DateTo: to})
		exitOnError(err, "failed to load invoices")
	}
	slog.Info("Loaded invoices", "count", len(invoices), "from", from, "to", to)

	results := reconciler.Reconcile(transactions, invoices)

	err = report.WriteTable(os.Stdout, results)
	exitOnError(err, "failed to print results")

	if missing := reconcile.Unmatched(results); len(missing) > 0 {
		fmt.Printf("\n書類が見つからない取引 (%d件):\n", len(missing))
		for _, r := range missing {
			tx := r.Transaction
			fmt.Printf("  %s  #%s  %s  %s  %s\n", tx.Date, tx.TransactionNo, tx.PrimaryAccount,
				report.FormatAmount(tx.Amount, "JPY"), tx.Description)
		}
	}

	if saveReport {
		month := reportMonth
		if month == "" {
			month = monthOf(transactions[0].Date)
		}
		repo := report.NewFileSystemRepository(pathResolver)
		if repo.Exists(month) {
			slog.Warn("Overwriting existing report", "month", month)
		}
		path, err := repo.Save(month, results)
		exitOnError(err, "failed to save report")
		fmt.Printf("Report saved: %s\n", path)
	}

	if err := conn.SetMetadata(ctx, db.MetaLastReconcileAt, time.Now().Format(time.RFC3339)); err != nil {
		slog.Warn("Failed to record reconcile time", "error", err)
	}

	summary := reconcile.Summarize(results)
	slog.Info("Reconcile completed",
		"matched", summary.Matched,
		"unmatched", summary.Unmatched,
		"not_applicable", summary.NotApplicable,
		"tolerance_days", opts.DateToleranceDays,
	)
}

// lookupEncoding resolves an encoding label such as "shift_jis" or "utf-8".
func lookupEncoding(label string) (encoding.Encoding, error) {
	switch strings.ToLower(label) {
	case "", "shift_jis", "sjis":
		return journal.ShiftJIS, nil
	}
	return htmlindex.Get(label)
}

func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

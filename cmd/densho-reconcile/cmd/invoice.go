package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/db"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/report"
)

var (
	addInput    invoice.Invoice
	addDocType  string
	addFile     string
	updateInput invoice.Invoice
	updateType  string
	updateFile  string
	listFilter  db.Filter
	listType    string
	listMinFlag int64
	listMaxFlag int64
)

// invoiceCmd groups invoice database commands.
var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Manage captured invoices and receipts",
}

var invoiceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an invoice or receipt",
	Long: `Register the metadata of a retained document.

Example:
  densho-reconcile invoice add --date 2025-04-02 --amount 5000 --counterparty Acme
  densho-reconcile invoice add --date 2025-04-02 --amount 980 --counterparty "GitHub Inc" --type invoice --file receipt.pdf`,
	Run: runInvoiceAdd,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "Search invoices by date, amount and counterparty",
	Run:   runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one invoice",
	Args:  cobra.ExactArgs(1),
	Run:   runInvoiceShow,
}

var invoiceUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Correct fields of an invoice",
	Long: `Correct fields of a stored invoice. Only the flags given are changed.

Example:
  densho-reconcile invoice update 12 --amount 5500
  densho-reconcile invoice update 12 --counterparty "Acme Corp" --memo "再発行分"`,
	Args: cobra.ExactArgs(1),
	Run:  runInvoiceUpdate,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	Run:   runInvoiceDelete,
}

func init() {
	f := invoiceAddCmd.Flags()
	f.StringVar(&addInput.TransactionDate, "date", "", "Transaction date YYYY-MM-DD (required)")
	f.Int64Var(&addInput.Amount, "amount", 0, "Amount including tax (required)")
	f.StringVar(&addInput.Counterparty, "counterparty", "", "Counterparty name (required)")
	f.StringVar(&addDocType, "type", string(invoice.DocumentTypeReceipt), "Document type (invoice, receipt, quotation, delivery_slip, contract, other)")
	f.StringVar(&addInput.Currency, "currency", "JPY", "ISO 4217 currency code")
	f.StringVar(&addInput.Memo, "memo", "", "Memo")
	f.StringVar(&addFile, "file", "", "Original document file name")
	f.StringVar(&addInput.GmailMessageID, "gmail-message-id", "", "Gmail message the document came from; skipped if already imported")
	invoiceAddCmd.MarkFlagRequired("date")
	invoiceAddCmd.MarkFlagRequired("amount")
	invoiceAddCmd.MarkFlagRequired("counterparty")

	l := invoiceListCmd.Flags()
	l.StringVar(&listFilter.DateFrom, "from", "", "Start date YYYY-MM-DD")
	l.StringVar(&listFilter.DateTo, "to", "", "End date YYYY-MM-DD")
	l.Int64Var(&listMinFlag, "min", 0, "Minimum amount")
	l.Int64Var(&listMaxFlag, "max", 0, "Maximum amount")
	l.StringVar(&listFilter.Counterparty, "counterparty", "", "Counterparty name contains")
	l.StringVar(&listType, "type", "", "Document type")
	l.IntVar(&listFilter.Limit, "limit", 0, "Maximum number of rows")

	u := invoiceUpdateCmd.Flags()
	u.StringVar(&updateInput.TransactionDate, "date", "", "Transaction date YYYY-MM-DD")
	u.Int64Var(&updateInput.Amount, "amount", 0, "Amount including tax")
	u.StringVar(&updateInput.Counterparty, "counterparty", "", "Counterparty name")
	u.StringVar(&updateType, "type", "", "Document type")
	u.StringVar(&updateInput.Currency, "currency", "", "ISO 4217 currency code")
	u.StringVar(&updateInput.Memo, "memo", "", "Memo")
	u.StringVar(&updateFile, "file", "", "Original document file name")

	invoiceCmd.AddCommand(invoiceAddCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoiceUpdateCmd)
	invoiceCmd.AddCommand(invoiceDeleteCmd)
}

func runInvoiceAdd(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	_, conn := openDatabase(cfg)
	defer conn.Close()

	inv := addInput
	inv.DocumentType = invoice.DocumentType(addDocType)
	inv.SourceType = invoice.SourceManual
	if addFile != "" {
		inv.DriveFileName = invoice.StorageFileName(inv, addFile)
		inv.DriveFolder = invoice.YearFolder(inv.TransactionDate)
	}

	store := db.NewInvoiceStore(conn)
	var id int64
	var err error
	if inv.GmailMessageID != "" {
		inv.SourceType = invoice.SourceGmail
		var added bool
		id, added, err = store.AddUnlessImported(cmd.Context(), inv)
		exitOnError(err, "failed to add invoice")
		if !added {
			slog.Info("Gmail message already imported", "gmail_message_id", inv.GmailMessageID)
			fmt.Printf("Skipped: Gmail message %s is already imported\n", inv.GmailMessageID)
			return
		}
	} else {
		id, err = store.Add(cmd.Context(), inv)
		exitOnError(err, "failed to add invoice")
	}

	slog.Info("Invoice added", "id", id, "date", inv.TransactionDate, "amount", inv.Amount)
	fmt.Printf("Added invoice #%d: %s %s %s\n", id, inv.TransactionDate, inv.Counterparty,
		report.FormatAmount(inv.Amount, inv.CurrencyOrDefault()))
	if inv.DriveFileName != "" {
		fmt.Printf("Store the document as: %s\n", path.Join(cfg.Storage.DriveFolderName, inv.DriveFolder, inv.DriveFileName))
	}
}

func runInvoiceList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	_, conn := openDatabase(cfg)
	defer conn.Close()

	filter := listFilter
	filter.DocumentType = invoice.DocumentType(listType)
	if cmd.Flags().Changed("min") {
		filter.AmountMin = &listMinFlag
	}
	if cmd.Flags().Changed("max") {
		filter.AmountMax = &listMaxFlag
	}

	invoices, err := db.NewInvoiceStore(conn).Search(cmd.Context(), filter)
	exitOnError(err, "failed to search invoices")

	if len(invoices) == 0 {
		fmt.Println("No invoices found")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t取引日\t取引先\t金額\t書類種別\tファイル")
	for _, inv := range invoices {
		file := "-"
		if inv.DriveFileName != "" {
			file = path.Join(inv.DriveFolder, inv.DriveFileName)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.TransactionDate, inv.Counterparty,
			report.FormatAmount(inv.Amount, inv.CurrencyOrDefault()),
			inv.DocumentType.Label(), file)
	}
	tw.Flush()

	fmt.Printf("\n%d invoices\n", len(invoices))
}

func runInvoiceShow(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	exitOnError(err, "invalid invoice ID")

	cfg := loadConfig()
	_, conn := openDatabase(cfg)
	defer conn.Close()

	inv, err := db.NewInvoiceStore(conn).Get(cmd.Context(), id)
	exitOnError(err, "failed to get invoice")

	printInvoice(inv, cfg.Storage.DriveFolderName)
}

func runInvoiceUpdate(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	exitOnError(err, "invalid invoice ID")

	cfg := loadConfig()
	_, conn := openDatabase(cfg)
	defer conn.Close()

	store := db.NewInvoiceStore(conn)
	inv, err := store.Get(cmd.Context(), id)
	exitOnError(err, "failed to get invoice")

	flags := cmd.Flags()
	if flags.Changed("date") {
		inv.TransactionDate = updateInput.TransactionDate
		if inv.DriveFileName != "" {
			inv.DriveFolder = invoice.YearFolder(inv.TransactionDate)
		}
	}
	if flags.Changed("amount") {
		inv.Amount = updateInput.Amount
	}
	if flags.Changed("counterparty") {
		inv.Counterparty = updateInput.Counterparty
	}
	if flags.Changed("type") {
		inv.DocumentType = invoice.DocumentType(updateType)
	}
	if flags.Changed("currency") {
		inv.Currency = updateInput.Currency
	}
	if flags.Changed("memo") {
		inv.Memo = updateInput.Memo
	}
	if flags.Changed("file") {
		inv.DriveFileName = invoice.StorageFileName(*inv, updateFile)
		inv.DriveFolder = invoice.YearFolder(inv.TransactionDate)
	}

	err = store.Update(cmd.Context(), *inv)
	exitOnError(err, "failed to update invoice")

	slog.Info("Invoice updated", "id", id)
	printInvoice(inv, cfg.Storage.DriveFolderName)
}

func printInvoice(inv *invoice.Invoice, driveFolderName string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", inv.ID)
	fmt.Fprintf(tw, "取引日\t%s\n", inv.TransactionDate)
	fmt.Fprintf(tw, "取引先\t%s\n", inv.Counterparty)
	fmt.Fprintf(tw, "金額\t%s\n", report.FormatAmount(inv.Amount, inv.CurrencyOrDefault()))
	fmt.Fprintf(tw, "書類種別\t%s\n", inv.DocumentType.Label())
	if inv.DriveFileName != "" {
		fmt.Fprintf(tw, "ファイル\t%s\n", path.Join(driveFolderName, inv.DriveFolder, inv.DriveFileName))
	}
	fmt.Fprintf(tw, "取得元\t%s\n", inv.SourceType)
	if inv.GmailMessageID != "" {
		fmt.Fprintf(tw, "Gmail\t%s\n", inv.GmailMessageID)
	}
	if inv.Memo != "" {
		fmt.Fprintf(tw, "メモ\t%s\n", inv.Memo)
	}
	fmt.Fprintf(tw, "更新日時\t%s\n", inv.UpdatedAt.Format(time.RFC3339))
	tw.Flush()
}

func runInvoiceDelete(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	exitOnError(err, "invalid invoice ID")

	cfg := loadConfig()
	_, conn := openDatabase(cfg)
	defer conn.Close()

	err = db.NewInvoiceStore(conn).Delete(cmd.Context(), id)
	exitOnError(err, "failed to delete invoice")

	slog.Info("Invoice deleted", "id", id)
	fmt.Printf("Deleted invoice #%d\n", id)
}

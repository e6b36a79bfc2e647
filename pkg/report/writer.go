package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/reconcile"
)

// csvHeader is the column layout of WriteCSV.
var csvHeader = []string{
	"transaction_no", "date", "account", "amount", "tax_category", "description",
	"status", "match_kind", "invoice_id", "invoice_date", "invoice_amount",
	"invoice_counterparty", "document_type",
}

// WriteTable writes results as an aligned table followed by a summary line.
func WriteTable(w io.Writer, results []reconcile.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "取引日\t取引No\t勘定科目\t金額\t税区分\t状態\t書類")
	for _, r := range results {
		tx := r.Transaction
		document := "-"
		if inv := r.MatchedInvoice; inv != nil {
			document = fmt.Sprintf("%s %s (%s, %s)",
				inv.TransactionDate, inv.Counterparty,
				FormatAmount(inv.Amount, inv.CurrencyOrDefault()), r.MatchKind)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.TransactionNo, tx.PrimaryAccount,
			FormatAmount(tx.Amount, "JPY"), tx.TaxCategory,
			statusLabel(r.Status), document)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	s := reconcile.Summarize(results)
	_, err := fmt.Fprintf(w, "\n合計 %d件: 突合済 %d (金額一致 %d / 取引先一致 %d), 書類なし %d, 対象外 %d\n",
		s.Total, s.Matched, s.ExactMatches, s.FuzzyMatches, s.Unmatched, s.NotApplicable)
	return err
}

// WriteCSV writes results as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, results []reconcile.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		tx := r.Transaction
		record := []string{
			tx.TransactionNo,
			tx.Date,
			tx.PrimaryAccount,
			strconv.FormatInt(tx.Amount, 10),
			tx.TaxCategory,
			tx.Description,
			string(r.Status),
			string(r.MatchKind),
			"", "", "", "", "",
		}
		if inv := r.MatchedInvoice; inv != nil {
			record[8] = strconv.FormatInt(inv.ID, 10)
			record[9] = inv.TransactionDate
			record[10] = strconv.FormatInt(inv.Amount, 10)
			record[11] = inv.Counterparty
			record[12] = string(inv.DocumentType)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// Package reconcile pairs journal transactions that need a retained document
// with captured invoice records.
package reconcile

import (
	"log/slog"
	"time"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/journal"
)

// Status is the reconciliation outcome of one transaction.
type Status string

const (
	StatusMatched       Status = "matched"
	StatusUnmatched     Status = "unmatched"
	StatusNotApplicable Status = "not_applicable"
)

// MatchKind records which pass produced a match.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// Result is the outcome for one transaction.
type Result struct {
	Transaction    journal.Transaction
	Status         Status
	MatchedInvoice *invoice.Invoice // set only when Status is StatusMatched
	MatchKind      MatchKind
}

// Options configures a Reconciler.
type Options struct {
	// DateToleranceDays is how many days an invoice may be dated after the
	// transaction. Invoices dated before the transaction never match.
	DateToleranceDays int
	// CardPrefixes are stripped from descriptions before keyword extraction.
	// Nil means DefaultCardPrefixes.
	CardPrefixes []string
}

// Reconciler matches transactions against an invoice pool.
type Reconciler struct {
	tolerance    int
	cardPrefixes []string
}

// New creates a Reconciler.
func New(opts Options) *Reconciler {
	tolerance := opts.DateToleranceDays
	if tolerance < 0 {
		tolerance = 0
	}
	prefixes := opts.CardPrefixes
	if prefixes == nil {
		prefixes = DefaultCardPrefixes
	}
	return &Reconciler{
		tolerance:    tolerance,
		cardPrefixes: prefixes,
	}
}

// Reconcile matches transactions against invoices with the default card
// prefixes. See Reconciler.Reconcile.
func Reconcile(transactions []journal.Transaction, invoices []invoice.Invoice, dateToleranceDays int) []Result {
	return New(Options{DateToleranceDays: dateToleranceDays}).Reconcile(transactions, invoices)
}

// Reconcile returns one Result per transaction, in input order.
// Each invoice is matched at most once; earlier transactions claim invoices
// first. The invoices slice is not modified.
func (r *Reconciler) Reconcile(transactions []journal.Transaction, invoices []invoice.Invoice) []Result {
	pool := newPool(invoices)
	results := make([]Result, 0, len(transactions))

	for _, tx := range transactions {
		if !tx.NeedsDocument {
			results = append(results, Result{Transaction: tx, Status: StatusNotApplicable})
			continue
		}

		window, ok := r.window(tx.Date)
		if !ok {
			slog.Debug("Transaction date is not YYYY-MM-DD", "transaction_no", tx.TransactionNo, "date", tx.Date)
			results = append(results, Result{Transaction: tx, Status: StatusUnmatched})
			continue
		}

		kind := MatchExact
		idx := pool.closest(window, func(inv invoice.Invoice) bool {
			return inv.Amount == tx.Amount
		})
		if idx < 0 {
			kind = MatchFuzzy
			keywords := Keywords(tx.Description, r.cardPrefixes)
			idx = pool.closest(window, func(inv invoice.Invoice) bool {
				return CounterpartyMatches(inv.Counterparty, keywords)
			})
		}

		if idx < 0 {
			results = append(results, Result{Transaction: tx, Status: StatusUnmatched})
			continue
		}

		matched := pool.consume(idx)
		results = append(results, Result{
			Transaction:    tx,
			Status:         StatusMatched,
			MatchedInvoice: &matched,
			MatchKind:      kind,
		})
	}

	return results
}

// dateWindow is the inclusive range of invoice dates a transaction accepts.
type dateWindow struct {
	from time.Time
	to   time.Time
}

func (w dateWindow) contains(t time.Time) bool {
	return !t.Before(w.from) && !t.After(w.to)
}

func (r *Reconciler) window(date string) (dateWindow, bool) {
	from, err := time.Parse(invoice.DateLayout, date)
	if err != nil {
		return dateWindow{}, false
	}
	return dateWindow{from: from, to: from.AddDate(0, 0, r.tolerance)}, true
}

// InvoiceDateRange returns the inclusive range of invoice dates any
// document-requiring transaction can match, as YYYY-MM-DD strings.
// Both are "" when no such transaction has a parsable date.
func (r *Reconciler) InvoiceDateRange(transactions []journal.Transaction) (from, to string) {
	var first, last dateWindow
	found := false
	for _, tx := range transactions {
		if !tx.NeedsDocument {
			continue
		}
		w, ok := r.window(tx.Date)
		if !ok {
			continue
		}
		if !found || w.from.Before(first.from) {
			first = w
		}
		if !found || w.to.After(last.to) {
			last = w
		}
		found = true
	}
	if !found {
		return "", ""
	}
	return first.from.Format(invoice.DateLayout), last.to.Format(invoice.DateLayout)
}

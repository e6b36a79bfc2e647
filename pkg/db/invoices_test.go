package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "data", "invoices.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sample(date string, amount int64, counterparty string) invoice.Invoice {
	return invoice.Invoice{
		TransactionDate: date,
		Amount:          amount,
		Counterparty:    counterparty,
		DocumentType:    invoice.DocumentTypeReceipt,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestInvoiceStoreAddGet(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore(openTestDB(t))

	in := sample("2025-04-02", 5000, "Acme")
	in.GmailMessageID = "msg-1"
	in.SourceType = invoice.SourceGmail
	in.ExtractedData = `{"amount":5000}`

	id, err := store.Add(ctx, in)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.TransactionDate != in.TransactionDate || got.Amount != in.Amount || got.Counterparty != in.Counterparty {
		t.Errorf("Get() = %+v, expected fields of %+v", got, in)
	}
	if got.Currency != "JPY" {
		t.Errorf("Currency = %q, expected JPY default", got.Currency)
	}
	if got.GmailMessageID != "msg-1" || got.SourceType != invoice.SourceGmail {
		t.Errorf("gmail fields = %q/%q", got.GmailMessageID, got.SourceType)
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("CreatedAt should be set")
	}
}

func TestInvoiceStoreAddInvalid(t *testing.T) {
	store := NewInvoiceStore(openTestDB(t))

	_, err := store.Add(context.Background(), sample("2025/04/02", 5000, "Acme"))
	if !errors.Is(err, invoice.ErrInvalid) {
		t.Errorf("Add() error = %v, expected ErrInvalid", err)
	}
}

func TestInvoiceStoreDuplicateGmailMessage(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore(openTestDB(t))

	a := sample("2025-04-02", 5000, "Acme")
	a.GmailMessageID = "msg-1"
	if _, err := store.Add(ctx, a); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := store.Add(ctx, a); err == nil {
		t.Errorf("second Add() with the same gmail message should fail")
	}

	// Manual entries have no message ID and never collide.
	for i := 0; i < 2; i++ {
		if _, err := store.Add(ctx, sample("2025-04-02", 100, "Cafe")); err != nil {
			t.Fatalf("manual Add() error = %v", err)
		}
	}

	exists, err := store.ExistsGmailMessage(ctx, "msg-1")
	if err != nil || !exists {
		t.Errorf("ExistsGmailMessage(msg-1) = %v, %v", exists, err)
	}
	exists, err = store.ExistsGmailMessage(ctx, "msg-2")
	if err != nil || exists {
		t.Errorf("ExistsGmailMessage(msg-2) = %v, %v", exists, err)
	}
}

func TestInvoiceStoreUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore(openTestDB(t))

	id, err := store.Add(ctx, sample("2025-04-02", 5000, "Acme"))
	if err != nil {
		t.Fatal(err)
	}

	inv, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	inv.Amount = 5500
	inv.Memo = "corrected"
	if err := store.Update(ctx, *inv); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := store.Get(ctx, id)
	if got.Amount != 5500 || got.Memo != "corrected" {
		t.Errorf("Update() not applied: %+v", got)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, expected ErrNotFound", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, expected ErrNotFound", err)
	}
}

func TestInvoiceStoreSearch(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore(openTestDB(t))

	for _, inv := range []invoice.Invoice{
		sample("2025-04-10", 3000, "ヨドバシカメラ"),
		sample("2025-04-01", 980, "GitHub Inc"),
		sample("2025-05-01", 12000, "AWS"),
		sample("2025-04-20", 100, "100%_Coffee"),
	} {
		if _, err := store.Add(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{"all ordered by date", Filter{}, []string{"GitHub Inc", "ヨドバシカメラ", "100%_Coffee", "AWS"}},
		{"date range", Filter{DateFrom: "2025-04-01", DateTo: "2025-04-10"}, []string{"GitHub Inc", "ヨドバシカメラ"}},
		{"amount range", Filter{AmountMin: int64Ptr(900), AmountMax: int64Ptr(3000)}, []string{"GitHub Inc", "ヨドバシカメラ"}},
		{"counterparty substring", Filter{Counterparty: "github"}, []string{"GitHub Inc"}},
		{"japanese counterparty", Filter{Counterparty: "ヨドバシ"}, []string{"ヨドバシカメラ"}},
		{"like wildcards are literal", Filter{Counterparty: "%_"}, []string{"100%_Coffee"}},
		{"limit", Filter{Limit: 1}, []string{"GitHub Inc"}},
		{"no match", Filter{DocumentType: invoice.DocumentTypeContract}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices, err := store.Search(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			var names []string
			for _, inv := range invoices {
				names = append(names, inv.Counterparty)
			}
			if len(names) != len(tt.expected) {
				t.Fatalf("Search() = %v, expected %v", names, tt.expected)
			}
			for i := range names {
				if names[i] != tt.expected[i] {
					t.Errorf("Search()[%d] = %q, expected %q", i, names[i], tt.expected[i])
				}
			}
		})
	}
}

func TestInvoiceStoreStats(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := NewInvoiceStore(conn)

	empty, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if empty.TotalInvoices != 0 || empty.EarliestDate.Valid {
		t.Errorf("empty Stats() = %+v", empty)
	}

	contract := sample("2025-03-01", 50000, "Landlord")
	contract.DocumentType = invoice.DocumentTypeContract
	for _, inv := range []invoice.Invoice{contract, sample("2025-04-01", 10, "A"), sample("2025-04-05", 20, "B")} {
		if _, err := store.Add(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}
	if err := conn.SetMetadata(ctx, MetaLastReconcileAt, "2025-04-30T00:00:00Z"); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalInvoices != 3 {
		t.Errorf("TotalInvoices = %d, expected 3", stats.TotalInvoices)
	}
	if stats.ByDocumentType[invoice.DocumentTypeReceipt] != 2 || stats.ByDocumentType[invoice.DocumentTypeContract] != 1 {
		t.Errorf("ByDocumentType = %v", stats.ByDocumentType)
	}
	if stats.EarliestDate.String != "2025-03-01" || stats.LatestDate.String != "2025-04-05" {
		t.Errorf("date range = %s..%s", stats.EarliestDate.String, stats.LatestDate.String)
	}
	if stats.LastReconcileAt != "2025-04-30T00:00:00Z" || stats.LastBackupAt != "" {
		t.Errorf("metadata = %q / %q", stats.LastReconcileAt, stats.LastBackupAt)
	}
}

func TestInvoiceStoreAddUnlessImported(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore(openTestDB(t))

	in := sample("2025-04-02", 980, "GitHub Inc")
	in.GmailMessageID = "msg-42"
	in.SourceType = invoice.SourceGmail

	id, added, err := store.AddUnlessImported(ctx, in)
	if err != nil || !added || id == 0 {
		t.Fatalf("first AddUnlessImported() = %d, %v, %v", id, added, err)
	}

	id, added, err = store.AddUnlessImported(ctx, in)
	if err != nil {
		t.Fatalf("second AddUnlessImported() error = %v", err)
	}
	if added || id != 0 {
		t.Errorf("second AddUnlessImported() = %d, %v, expected the message to be skipped", id, added)
	}

	all, err := store.Search(ctx, Filter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("store holds %d invoices, expected 1", len(all))
	}

	if _, _, err := store.AddUnlessImported(ctx, sample("2025-04-02", 1, "X")); !errors.Is(err, invoice.ErrInvalid) {
		t.Errorf("AddUnlessImported() without message ID error = %v, expected ErrInvalid", err)
	}

	bad := sample("2025/04/02", 1, "X")
	bad.GmailMessageID = "msg-43"
	if _, _, err := store.AddUnlessImported(ctx, bad); !errors.Is(err, invoice.ErrInvalid) {
		t.Errorf("AddUnlessImported() with invalid invoice error = %v, expected ErrInvalid", err)
	}
	if exists, _ := store.ExistsGmailMessage(ctx, "msg-43"); exists {
		t.Errorf("rejected invoice should not be stored")
	}
}

func TestInvoiceStoreMonthlyTotal(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore(openTestDB(t))

	for _, in := range []invoice.Invoice{
		sample("2025-03-31", 100, "A"),
		sample("2025-04-01", 1000, "B"),
		sample("2025-04-15", 2500, "C"),
		sample("2025-04-30", 500, "D"),
		sample("2025-05-01", 9999, "E"),
	} {
		if _, err := store.Add(ctx, in); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	tests := []struct {
		yearMonth     string
		expectedTotal int64
		expectedCount int
		expectErr     bool
	}{
		{"2025-04", 4000, 3, false},
		{"2025-03", 100, 1, false},
		{"2025-06", 0, 0, false},
		{"2025-4", 0, 0, true},
		{"April", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.yearMonth, func(t *testing.T) {
			total, count, err := store.MonthlyTotal(ctx, tt.yearMonth)
			if (err != nil) != tt.expectErr {
				t.Fatalf("MonthlyTotal(%q) error = %v, expectErr = %v", tt.yearMonth, err, tt.expectErr)
			}
			if total != tt.expectedTotal || count != tt.expectedCount {
				t.Errorf("MonthlyTotal(%q) = %d, %d, expected %d, %d", tt.yearMonth, total, count, tt.expectedTotal, tt.expectedCount)
			}
		})
	}
}

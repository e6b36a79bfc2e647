package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/journal"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/pathutil"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/reconcile"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		expected string
	}{
		{"yen", 1234, "JPY", "¥1,234"},
		{"default currency", 5000, "", "¥5,000"},
		{"large yen", 1234567, "JPY", "¥1,234,567"},
		{"zero", 0, "JPY", "¥0"},
		{"dollars", 1234, "USD", "$1,234.00"},
		{"lowercase code", 12, "eur", "€12.00"},
		{"unknown currency", 100, "CHF", "CHF 100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FormatAmount(tt.amount, tt.currency); result != tt.expected {
				t.Errorf("FormatAmount(%d, %q) = %q, expected %q", tt.amount, tt.currency, result, tt.expected)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status   reconcile.Status
		expected string
	}{
		{reconcile.StatusMatched, "突合済"},
		{reconcile.StatusUnmatched, "書類なし"},
		{reconcile.StatusNotApplicable, "対象外"},
		{reconcile.Status("pending"), "pending"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if result := statusLabel(tt.status); result != tt.expected {
				t.Errorf("statusLabel(%q) = %q, expected %q", tt.status, result, tt.expected)
			}
		})
	}
}

func sampleResults() []reconcile.Result {
	matched := invoice.Invoice{
		ID:              7,
		TransactionDate: "2025-04-02",
		Amount:          980,
		Counterparty:    "GitHub Inc",
		DocumentType:    invoice.DocumentTypeReceipt,
	}
	return []reconcile.Result{
		{
			Transaction: journal.Transaction{
				TransactionNo: "1", Date: "2025-04-01", PrimaryAccount: "通信費",
				Amount: 980, TaxCategory: "課税仕入 10%", Description: "VISA海外利用 GITHUB, INC.",
			},
			Status:         reconcile.StatusMatched,
			MatchedInvoice: &matched,
			MatchKind:      reconcile.MatchExact,
		},
		{
			Transaction: journal.Transaction{TransactionNo: "2", Date: "2025-04-03", PrimaryAccount: "消耗品費", Amount: 3300},
			Status:      reconcile.StatusUnmatched,
		},
		{
			Transaction: journal.Transaction{TransactionNo: "3", Date: "2025-04-05", PrimaryAccount: "普通預金", Amount: 10000},
			Status:      reconcile.StatusNotApplicable,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("WriteCSV() wrote %d records, expected 4", len(records))
	}

	first := records[1]
	if first[5] != "VISA海外利用 GITHUB, INC." {
		t.Errorf("description column = %q", first[5])
	}
	if first[6] != "matched" || first[8] != "7" || first[11] != "GitHub Inc" || first[12] != "receipt" {
		t.Errorf("matched record = %q", first)
	}
	if records[2][6] != "unmatched" || records[2][8] != "" {
		t.Errorf("unmatched record = %q", records[2])
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"¥980", "GitHub Inc", "書類なし", "対象外", "合計 3件", "突合済 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTable() output is missing %q:\n%s", want, out)
		}
	}
}

func TestFileSystemRepository(t *testing.T) {
	repo := NewFileSystemRepository(pathutil.New(pathutil.Config{Root: t.TempDir()}))

	if repo.Exists("2025-04") {
		t.Fatalf("report should not exist yet")
	}
	if content, err := repo.Read("2025-04"); err != nil || content != "" {
		t.Errorf("Read() of missing report = %q, %v", content, err)
	}

	path, err := repo.Save("2025-04", sampleResults())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(path, "2025-04-reconcile.csv") {
		t.Errorf("Save() path = %q", path)
	}
	if !repo.Exists("2025-04") {
		t.Errorf("Exists() = false after Save()")
	}

	content, err := repo.Read("2025-04")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !strings.HasPrefix(content, "transaction_no,date,") {
		t.Errorf("report content starts with %q", content[:20])
	}

	if _, err := repo.Save("April", nil); err == nil {
		t.Errorf("Save() with an invalid month should fail")
	}
}

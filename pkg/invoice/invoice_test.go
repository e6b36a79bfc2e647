package invoice

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := Invoice{
		TransactionDate: "2025-04-02",
		Amount:          5000,
		Counterparty:    "Acme",
		DocumentType:    DocumentTypeReceipt,
	}

	tests := []struct {
		name      string
		modify    func(*Invoice)
		expectErr bool
	}{
		{"valid", func(*Invoice) {}, false},
		{"slash date", func(i *Invoice) { i.TransactionDate = "2025/04/02" }, true},
		{"impossible date", func(i *Invoice) { i.TransactionDate = "2025-02-30" }, true},
		{"negative amount", func(i *Invoice) { i.Amount = -1 }, true},
		{"zero amount", func(i *Invoice) { i.Amount = 0 }, false},
		{"blank counterparty", func(i *Invoice) { i.Counterparty = "  " }, true},
		{"unknown type", func(i *Invoice) { i.DocumentType = "memo" }, true},
		{"usd", func(i *Invoice) { i.Currency = "USD" }, false},
		{"bad currency", func(i *Invoice) { i.Currency = "YEN!" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := valid
			tt.modify(&inv)
			err := inv.Validate()
			if (err != nil) != tt.expectErr {
				t.Fatalf("Validate() error = %v, expectErr = %v", err, tt.expectErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error should wrap ErrInvalid, got %v", err)
			}
		})
	}
}

func TestDocumentTypeLabel(t *testing.T) {
	tests := []struct {
		docType  DocumentType
		expected string
	}{
		{DocumentTypeInvoice, "請求書"},
		{DocumentTypeReceipt, "領収書"},
		{DocumentTypeDeliverySlip, "納品書"},
		{DocumentType("unknown"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.docType), func(t *testing.T) {
			if result := tt.docType.Label(); result != tt.expected {
				t.Errorf("Label() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestStorageFileName(t *testing.T) {
	tests := []struct {
		name         string
		counterparty string
		original     string
		expected     string
	}{
		{"simple", "Acme", "invoice.pdf", "2025-04-02_Acme.pdf"},
		{"unsafe characters", `A/B:C*D?"E<F>G|H\I`, "r.png", "2025-04-02_A_B_C_D__E_F_G_H_I.png"},
		{"no extension", "Acme", "scan", "2025-04-02_Acme"},
		{"truncated", "株式会社とても長い名前の取引先でございますので三十文字を超えてしまいます", "a.pdf", "2025-04-02_株式会社とても長い名前の取引先でございますので三十文字を超え.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invoice{TransactionDate: "2025-04-02", Counterparty: tt.counterparty}
			if result := StorageFileName(inv, tt.original); result != tt.expected {
				t.Errorf("StorageFileName() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestYearFolder(t *testing.T) {
	tests := []struct {
		date     string
		expected string
	}{
		{"2025-04-02", "2025"},
		{"2026-01-01", "2026"},
		{"", "tmp"},
		{"abcd-01-01", "tmp"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if result := YearFolder(tt.date); result != tt.expected {
				t.Errorf("YearFolder(%q) = %q, expected %q", tt.date, result, tt.expected)
			}
		})
	}
}

func TestCurrencyOrDefault(t *testing.T) {
	if got := (Invoice{}).CurrencyOrDefault(); got != "JPY" {
		t.Errorf("CurrencyOrDefault() = %q, expected JPY", got)
	}
	if got := (Invoice{Currency: "usd"}).CurrencyOrDefault(); got != "USD" {
		t.Errorf("CurrencyOrDefault() = %q, expected USD", got)
	}
}

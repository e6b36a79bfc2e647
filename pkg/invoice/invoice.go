// Package invoice defines the captured source-document record (請求書・領収書 etc.)
// that journal transactions are reconciled against.
package invoice

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalid is returned when an invoice record fails validation.
var ErrInvalid = errors.New("invalid invoice")

// DateLayout is the layout of TransactionDate.
const DateLayout = "2006-01-02"

// DocumentType represents the kind of retained document.
type DocumentType string

const (
	DocumentTypeInvoice      DocumentType = "invoice"       // 請求書
	DocumentTypeReceipt      DocumentType = "receipt"       // 領収書
	DocumentTypeQuotation    DocumentType = "quotation"     // 見積書
	DocumentTypeDeliverySlip DocumentType = "delivery_slip" // 納品書
	DocumentTypeContract     DocumentType = "contract"      // 契約書
	DocumentTypeOther        DocumentType = "other"         // その他
)

var documentTypeLabels = map[DocumentType]string{
	DocumentTypeInvoice:      "請求書",
	DocumentTypeReceipt:      "領収書",
	DocumentTypeQuotation:    "見積書",
	DocumentTypeDeliverySlip: "納品書",
	DocumentTypeContract:     "契約書",
	DocumentTypeOther:        "その他",
}

// DocumentTypes lists every known document type in display order.
var DocumentTypes = []DocumentType{
	DocumentTypeInvoice,
	DocumentTypeReceipt,
	DocumentTypeQuotation,
	DocumentTypeDeliverySlip,
	DocumentTypeContract,
	DocumentTypeOther,
}

// Label returns the Japanese label of the document type.
func (d DocumentType) Label() string {
	if label, ok := documentTypeLabels[d]; ok {
		return label
	}
	return string(d)
}

// Valid reports whether d is a known document type.
func (d DocumentType) Valid() bool {
	_, ok := documentTypeLabels[d]
	return ok
}

// SourceType records where an invoice was captured from.
type SourceType string

const (
	SourceGmail  SourceType = "gmail"
	SourceManual SourceType = "manual"
)

// Invoice is the metadata of a retained source document.
type Invoice struct {
	ID              int64
	TransactionDate string // YYYY-MM-DD
	Amount          int64  // tax inclusive
	Currency        string // ISO 4217
	Counterparty    string
	DocumentType    DocumentType
	DriveFileID     string
	DriveFileName   string
	DriveFolder     string // "tmp" or a year folder such as "2025"
	ExtractedData   string // JSON
	GmailMessageID  string
	SourceType      SourceType
	Memo            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the fields required for e-bookkeeping search
// (transaction date, amount, counterparty) and the document type.
func (inv Invoice) Validate() error {
	if _, err := time.Parse(DateLayout, inv.TransactionDate); err != nil {
		return fmt.Errorf("%w: transaction date %q is not YYYY-MM-DD", ErrInvalid, inv.TransactionDate)
	}
	if inv.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative: %d", ErrInvalid, inv.Amount)
	}
	if strings.TrimSpace(inv.Counterparty) == "" {
		return fmt.Errorf("%w: counterparty is required", ErrInvalid)
	}
	if !inv.DocumentType.Valid() {
		return fmt.Errorf("%w: unknown document type %q", ErrInvalid, inv.DocumentType)
	}
	if inv.Currency != "" && len(inv.Currency) != 3 {
		return fmt.Errorf("%w: currency must be an ISO 4217 code: %q", ErrInvalid, inv.Currency)
	}
	return nil
}

// CurrencyOrDefault returns the currency code, defaulting to JPY.
func (inv Invoice) CurrencyOrDefault() string {
	if inv.Currency == "" {
		return "JPY"
	}
	return strings.ToUpper(inv.Currency)
}

const maxCounterpartyRunes = 30

// StorageFileName builds the stored file name "{date}_{counterparty}{ext}".
// The extension is taken from the original attachment name.
func StorageFileName(inv Invoice, originalFilename string) string {
	ext := filepath.Ext(originalFilename)

	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, inv.Counterparty)

	if runes := []rune(safe); len(runes) > maxCounterpartyRunes {
		safe = string(runes[:maxCounterpartyRunes])
	}

	return fmt.Sprintf("%s_%s%s", inv.TransactionDate, safe, ext)
}

// YearFolder returns the year folder a document dated date is filed under.
// Documents without a usable date go to "tmp".
func YearFolder(date string) string {
	if len(date) < 4 {
		return "tmp"
	}
	year := date[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return "tmp"
		}
	}
	return year
}

// Package journal imports Money Forward 仕訳帳 CSV exports and groups the
// raw debit/credit rows into transactions.
package journal

// ColumnCount is the number of columns in one journal export row.
const ColumnCount = 19

// Side is one side (借方 or 貸方) of a journal line.
type Side struct {
	Account      string // 勘定科目
	SubAccount   string // 補助科目
	Department   string // 部門
	Counterparty string // 取引先
	TaxCategory  string // 税区分
	InvoiceRegNo string // インボイス
	Amount       int64  // 金額(円)
}

// Line is one row of the journal export.
type Line struct {
	TransactionNo string
	Date          string // YYYY-MM-DD
	Debit         Side
	Credit        Side
	Description   string // 摘要
	Tag           string
	Memo          string
}

// Transaction is the set of lines sharing a transaction number.
type Transaction struct {
	TransactionNo  string
	Date           string
	Lines          []Line
	Description    string // first non-empty line description
	NeedsDocument  bool   // any line carries a taxable tax category
	PrimaryAccount string
	Amount         int64
	TaxCategory    string
}

// Markers are the tax-category substrings that drive document requirements
// and primary leg resolution.
type Markers struct {
	Taxable         string `yaml:"taxable"`
	TaxablePurchase string `yaml:"taxable_purchase"`
	TaxableSale     string `yaml:"taxable_sale"`
}

// DefaultMarkers returns the markers used by Money Forward tax categories.
func DefaultMarkers() Markers {
	return Markers{
		Taxable:         "課税",
		TaxablePurchase: "課税仕入",
		TaxableSale:     "課税売上",
	}
}

// withDefaults fills empty markers from DefaultMarkers.
func (m Markers) withDefaults() Markers {
	d := DefaultMarkers()
	if m.Taxable == "" {
		m.Taxable = d.Taxable
	}
	if m.TaxablePurchase == "" {
		m.TaxablePurchase = d.TaxablePurchase
	}
	if m.TaxableSale == "" {
		m.TaxableSale = d.TaxableSale
	}
	return m
}

// Package report renders reconciliation results as a terminal table or a CSV
// file and stores monthly reports on disk.
package report

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/reconcile"
)

var currencySymbols = map[string]string{
	"JPY": "¥",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"KRW": "₩",
	"CNY": "¥",
}

var printer = message.NewPrinter(language.Japanese)

// FormatAmount formats an amount with its currency symbol and thousands
// separators. JPY has no minor unit; other currencies show two decimals.
func FormatAmount(amount int64, currency string) string {
	code := strings.ToUpper(currency)
	if code == "" {
		code = "JPY"
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}

	if code == "JPY" {
		return symbol + printer.Sprintf("%d", amount)
	}
	return symbol + printer.Sprintf("%.2f", float64(amount))
}

// statusLabels are the labels shown for each reconcile status.
var statusLabels = map[reconcile.Status]string{
	reconcile.StatusMatched:       "突合済",
	reconcile.StatusUnmatched:     "書類なし",
	reconcile.StatusNotApplicable: "対象外",
}

func statusLabel(status reconcile.Status) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

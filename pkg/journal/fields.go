package journal

import (
	"strconv"
	"strings"
)

// SplitFields splits one CSV line into fields.
// A quoted field may contain commas, and "" inside quotes is a literal quote.
// The last field is always emitted, so "a," yields ["a", ""].
func SplitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inQuotes {
			if r != '"' {
				current.WriteRune(r)
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = false
			continue
		}

		switch r {
		case '"':
			inQuotes = true
		case ',':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, current.String())
}

// NormalizeDate converts YYYY/MM/DD to YYYY-MM-DD.
// Only the separator is rewritten; the date is not validated.
func NormalizeDate(date string) string {
	return strings.ReplaceAll(date, "/", "-")
}

// LineFromFields maps a row's fields onto a Line by position.
// Missing columns are empty and unparsable amounts are 0.
func LineFromFields(fields []string) Line {
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	return Line{
		TransactionNo: field(0),
		Date:          NormalizeDate(field(1)),
		Debit: Side{
			Account:      field(2),
			SubAccount:   field(3),
			Department:   field(4),
			Counterparty: field(5),
			TaxCategory:  field(6),
			InvoiceRegNo: field(7),
			Amount:       parseAmount(field(8)),
		},
		Credit: Side{
			Account:      field(9),
			SubAccount:   field(10),
			Department:   field(11),
			Counterparty: field(12),
			TaxCategory:  field(13),
			InvoiceRegNo: field(14),
			Amount:       parseAmount(field(15)),
		},
		Description: field(16),
		Tag:         field(17),
		Memo:        field(18),
	}
}

// parseAmount reads a whole-yen amount. ASCII thousands separators are
// accepted ("1,200" is 1200). Negative or non-numeric values yield 0.
func parseAmount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0
	}
	return int64(n)
}

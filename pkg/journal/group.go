package journal

import "strings"

// Group groups lines by transaction number, keeping the order in which each
// number first appears. Lines without a transaction number are dropped.
func Group(lines []Line, markers Markers) []Transaction {
	groups := make(map[string][]Line)
	var order []string

	for _, line := range lines {
		if line.TransactionNo == "" {
			continue
		}
		if _, ok := groups[line.TransactionNo]; !ok {
			order = append(order, line.TransactionNo)
		}
		groups[line.TransactionNo] = append(groups[line.TransactionNo], line)
	}

	transactions := make([]Transaction, 0, len(order))
	for _, no := range order {
		transactions = append(transactions, NewTransaction(no, groups[no], markers))
	}
	return transactions
}

// NewTransaction builds a Transaction from its lines. lines must not be empty.
func NewTransaction(no string, lines []Line, markers Markers) Transaction {
	markers = markers.withDefaults()

	tx := Transaction{
		TransactionNo: no,
		Date:          lines[0].Date,
		Lines:         lines,
	}

	for _, line := range lines {
		if line.Description != "" {
			tx.Description = line.Description
			break
		}
	}

	for _, line := range lines {
		if strings.Contains(line.Debit.TaxCategory, markers.Taxable) ||
			strings.Contains(line.Credit.TaxCategory, markers.Taxable) {
			tx.NeedsDocument = true
			break
		}
	}

	tx.PrimaryAccount, tx.Amount, tx.TaxCategory = resolvePrimary(lines, markers)
	return tx
}

// resolvePrimary picks the tax-relevant leg of a transaction: the first line
// with a taxable purchase on the debit side or a taxable sale on the credit
// side. Without one, the first line's debit side is used, falling back to
// its credit side field by field.
func resolvePrimary(lines []Line, markers Markers) (account string, amount int64, taxCategory string) {
	for _, line := range lines {
		if strings.Contains(line.Debit.TaxCategory, markers.TaxablePurchase) {
			return line.Debit.Account, line.Debit.Amount, line.Debit.TaxCategory
		}
		if strings.Contains(line.Credit.TaxCategory, markers.TaxableSale) {
			return line.Credit.Account, line.Credit.Amount, line.Credit.TaxCategory
		}
	}

	first := lines[0]
	account = first.Debit.Account
	if account == "" {
		account = first.Credit.Account
	}
	amount = first.Debit.Amount
	if amount == 0 {
		amount = first.Credit.Amount
	}
	taxCategory = first.Debit.TaxCategory
	if taxCategory == "" {
		taxCategory = first.Credit.TaxCategory
	}
	return account, amount, taxCategory
}

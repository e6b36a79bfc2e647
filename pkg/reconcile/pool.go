package reconcile

import (
	"time"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
)

// pool tracks which invoices are still available during one Reconcile call.
// Consumption is kept beside the records so the caller's slice stays untouched.
type pool struct {
	invoices []invoice.Invoice
	dates    []time.Time
	dated    []bool
	consumed []bool
}

func newPool(invoices []invoice.Invoice) *pool {
	p := &pool{
		invoices: invoices,
		dates:    make([]time.Time, len(invoices)),
		dated:    make([]bool, len(invoices)),
		consumed: make([]bool, len(invoices)),
	}
	for i, inv := range invoices {
		d, err := time.Parse(invoice.DateLayout, inv.TransactionDate)
		if err != nil {
			continue
		}
		p.dates[i] = d
		p.dated[i] = true
	}
	return p
}

// candidates returns the indexes of available invoices inside the window
// that satisfy match, in pool order.
func (p *pool) candidates(w dateWindow, match func(invoice.Invoice) bool) []int {
	var idx []int
	for i, inv := range p.invoices {
		if p.consumed[i] || !p.dated[i] || !w.contains(p.dates[i]) {
			continue
		}
		if match(inv) {
			idx = append(idx, i)
		}
	}
	return idx
}

// closest returns the candidate dated nearest to the start of the window,
// or -1. Ties keep the earlier pool position.
func (p *pool) closest(w dateWindow, match func(invoice.Invoice) bool) int {
	best := -1
	var bestDiff time.Duration
	for _, i := range p.candidates(w, match) {
		diff := p.dates[i].Sub(w.from)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return best
}

// consume marks the invoice at i as used and returns a copy of it.
func (p *pool) consume(i int) invoice.Invoice {
	p.consumed[i] = true
	return p.invoices[i]
}

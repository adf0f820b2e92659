// Package reconcile derives per-rate tax groups and header-level monetary
// totals from invoice line items. The encoder uses the reconciled values for
// both line-level and header-level figures so the two never diverge.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/facturx/internal/decimal"
	"github.com/rezonia/facturx/internal/model"
)

// TaxGroup aggregates line items sharing an identical tax rate
type TaxGroup struct {
	// Rate is the VAT rate in percent
	Rate decimal.Decimal
	// Basis is the sum of line net amounts taxed at Rate
	Basis decimal.Decimal
	// Tax is Basis * Rate / 100, rounded to 2 places
	Tax decimal.Decimal
}

// Summary holds the header-level monetary totals
type Summary struct {
	// Net is the sum of all line net amounts
	Net decimal.Decimal
	// Tax is the sum of all tax group amounts
	Tax decimal.Decimal
	// Grand is Net + Tax
	Grand decimal.Decimal
	// Due equals Grand; partial payments are not tracked
	Due decimal.Decimal
}

// LineNets returns the net amount of every line item in document order,
// rounded to 2 places.
func LineNets(inv *model.Invoice) []decimal.Decimal {
	nets := make([]decimal.Decimal, len(inv.Items))
	for i, item := range inv.Items {
		nets[i] = money.LineNet(item.Quantity, item.UnitPrice)
	}
	return nets
}

// Reconcile groups line items by exact tax rate and derives the monetary
// summary. Rates are compared with exact decimal equality, never through a
// float representation. Groups are emitted in ascending rate order.
//
// Returns a ReconciliationError if the invoice has no line items.
func Reconcile(inv *model.Invoice) ([]TaxGroup, *Summary, error) {
	if len(inv.Items) == 0 {
		return nil, nil, model.NewReconciliationError(inv.ID, "invoice has no line items")
	}

	var groups []TaxGroup
	nets := LineNets(inv)
	for i, item := range inv.Items {
		idx := -1
		for g := range groups {
			if groups[g].Rate.Equal(item.TaxRate) {
				idx = g
				break
			}
		}
		if idx < 0 {
			groups = append(groups, TaxGroup{Rate: item.TaxRate, Basis: money.Zero})
			idx = len(groups) - 1
		}
		groups[idx].Basis = groups[idx].Basis.Add(nets[i])
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Rate.LessThan(groups[j].Rate)
	})

	net := money.Sum(nets)
	tax := money.Zero
	for g := range groups {
		groups[g].Tax = money.TaxAmount(groups[g].Basis, groups[g].Rate)
		tax = tax.Add(groups[g].Tax)
	}

	grand := net.Add(tax)
	return groups, &Summary{
		Net:   net,
		Tax:   tax,
		Grand: grand,
		Due:   grand,
	}, nil
}

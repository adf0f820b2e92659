package reconcile_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	money "github.com/rezonia/facturx/internal/decimal"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/reconcile"
)

func testInvoice(items ...model.LineItem) *model.Invoice {
	return &model.Invoice{
		ID:        "INV-1",
		IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Seller:    model.Party{Name: "Seller"},
		Buyer:     model.Party{Name: "Buyer"},
		Items:     items,
	}
}

func item(pos int, qty, price, rate string) model.LineItem {
	return model.LineItem{
		Position:    pos,
		Description: "Item",
		Quantity:    money.MustFromString(qty),
		UnitPrice:   money.MustFromString(price),
		TaxRate:     money.MustFromString(rate),
	}
}

func TestReconcile_TwoRates(t *testing.T) {
	inv := testInvoice(
		item(1, "2", "50.00", "20"),
		item(2, "1", "50.00", "10"),
	)

	groups, sum, err := reconcile.Reconcile(inv)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Ascending rate order
	assert.Equal(t, "10", groups[0].Rate.String())
	assert.Equal(t, "50.00", money.Format(groups[0].Basis))
	assert.Equal(t, "5.00", money.Format(groups[0].Tax))

	assert.Equal(t, "20", groups[1].Rate.String())
	assert.Equal(t, "100.00", money.Format(groups[1].Basis))
	assert.Equal(t, "20.00", money.Format(groups[1].Tax))

	assert.Equal(t, "150.00", money.Format(sum.Net))
	assert.Equal(t, "25.00", money.Format(sum.Tax))
	assert.Equal(t, "175.00", money.Format(sum.Grand))
	assert.Equal(t, "175.00", money.Format(sum.Due))
}

func TestReconcile_MergesEqualRates(t *testing.T) {
	// 19 and 19.0 are the same rate and must land in one group
	inv := testInvoice(
		item(1, "1", "10.00", "19"),
		item(2, "1", "20.00", "19.0"),
	)

	groups, _, err := reconcile.Reconcile(inv)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "30.00", money.Format(groups[0].Basis))
}

func TestReconcile_ZeroRateGroup(t *testing.T) {
	inv := testInvoice(
		item(1, "1", "100.00", "0"),
	)

	groups, sum, err := reconcile.Reconcile(inv)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Rate.IsZero())
	assert.Equal(t, "0.00", money.Format(groups[0].Tax))
	assert.Equal(t, "100.00", money.Format(sum.Grand))
}

func TestReconcile_TaxPerGroupNotPerLine(t *testing.T) {
	// 3 lines of 0.33 at 19%: rounding per line would give 3*0.06=0.18,
	// rounding the group basis gives round(0.99*0.19)=0.19.
	inv := testInvoice(
		item(1, "1", "0.33", "19"),
		item(2, "1", "0.33", "19"),
		item(3, "1", "0.33", "19"),
	)

	groups, _, err := reconcile.Reconcile(inv)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "0.99", money.Format(groups[0].Basis))
	assert.Equal(t, "0.19", money.Format(groups[0].Tax))
}

func TestReconcile_NoItems(t *testing.T) {
	inv := testInvoice()

	_, _, err := reconcile.Reconcile(inv)
	require.Error(t, err)

	var re *model.ReconciliationError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "INV-1", re.InvoiceID)
}

func TestLineNets_PreservesOrder(t *testing.T) {
	inv := testInvoice(
		item(1, "2", "1.11", "19"),
		item(2, "3", "2.22", "19"),
	)

	nets := reconcile.LineNets(inv)
	require.Len(t, nets, 2)
	assert.Equal(t, "2.22", money.Format(nets[0]))
	assert.Equal(t, "6.66", money.Format(nets[1]))
}

func TestSummary_GrandIsNetPlusTax(t *testing.T) {
	inv := testInvoice(
		item(1, "7", "13.37", "19"),
		item(2, "3", "0.05", "7"),
	)

	_, sum, err := reconcile.Reconcile(inv)
	require.NoError(t, err)
	assert.True(t, sum.Grand.Equal(sum.Net.Add(sum.Tax)))
	assert.True(t, sum.Due.Equal(sum.Grand))
}

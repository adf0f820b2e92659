package input_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/input"
	"github.com/rezonia/facturx/internal/model"
)

const invoiceJSON = `{
  "id": "INV-2026-001",
  "issue_date": "2026-03-15",
  "due_date": "2026-04-14",
  "currency": "EUR",
  "seller": {
    "name": "ACME GmbH",
    "vat_number": "DE123456789",
    "address": {"line": "Musterstr. 1", "city": "Berlin", "postal_code": "10115", "country_code": "DE"}
  },
  "buyer": {
    "name": "Client SARL",
    "address": {"city": "Paris", "country_code": "FR"}
  },
  "items": [
    {"description": "Consulting", "quantity": "2", "unit_price": "50.00", "tax_rate": 20},
    {"description": "Hosting", "quantity": 1, "unit_price": "50.00", "tax_rate": "10", "unit_code": "MON"}
  ],
  "payment_terms": "30 days net"
}`

const invoiceYAML = `id: INV-2026-002
issue_date: 2026-03-15
currency: EUR
seller:
  name: ACME GmbH
buyer:
  name: Client SARL
items:
  - description: Consulting
    quantity: 2
    unit_price: 50.00
    tax_rate: 20
`

func TestParseJSON(t *testing.T) {
	inv, err := input.ParseJSON([]byte(invoiceJSON))
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-001", inv.ID)
	assert.Equal(t, "2026-03-15", inv.IssueDate.Format("2006-01-02"))
	assert.Equal(t, "2026-04-14", inv.DueDate.Format("2006-01-02"))
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, "DE123456789", inv.Seller.VATNumber)

	require.Len(t, inv.Items, 2)
	// Positions are assigned in file order
	assert.Equal(t, 1, inv.Items[0].Position)
	assert.Equal(t, 2, inv.Items[1].Position)
	// Amounts parse whether quoted or bare
	assert.Equal(t, "2", inv.Items[0].Quantity.String())
	assert.Equal(t, "20", inv.Items[0].TaxRate.String())
	assert.Equal(t, "50", inv.Items[1].UnitPrice.String())
	assert.Equal(t, "MON", inv.Items[1].UnitCode)
}

func TestParseYAML(t *testing.T) {
	inv, err := input.ParseYAML([]byte(invoiceYAML))
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-002", inv.ID)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "50", inv.Items[0].UnitPrice.String())
}

func TestParseJSON_MalformedDate(t *testing.T) {
	tests := []string{
		"15/03/2026",
		"2026-3-15",
		"2026-13-01",
		"2026-02-30",
		"yesterday",
	}
	for _, date := range tests {
		body := `{"id": "X", "issue_date": "` + date + `", "currency": "EUR",
			"seller": {"name": "S"}, "buyer": {"name": "B"},
			"items": [{"description": "a", "quantity": "1", "unit_price": "1", "tax_rate": "0"}]}`

		_, err := input.ParseJSON([]byte(body))
		require.Error(t, err, "date %q", date)

		var ve *model.ValidationError
		require.True(t, errors.As(err, &ve), "date %q", date)
		assert.Equal(t, "issue_date", ve.Field)
	}
}

func TestParseJSON_UnknownField(t *testing.T) {
	_, err := input.ParseJSON([]byte(`{"id": "X", "surprise": true}`))
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestParseJSON_InvalidAmount(t *testing.T) {
	body := `{"id": "X", "issue_date": "2026-03-15", "currency": "EUR",
		"seller": {"name": "S"}, "buyer": {"name": "B"},
		"items": [{"description": "a", "quantity": "many", "unit_price": "1", "tax_rate": "0"}]}`

	_, err := input.ParseJSON([]byte(body))
	require.Error(t, err)
}

func TestParseJSON_ValidationApplies(t *testing.T) {
	body := `{"id": "X", "issue_date": "2026-03-15", "currency": "euros",
		"seller": {"name": "S"}, "buyer": {"name": "B"}, "items": []}`

	_, err := input.ParseJSON([]byte(body))
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "currency", ve.Field)
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "invoice.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(invoiceJSON), 0o600))
	inv, err := input.Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", inv.ID)

	yamlPath := filepath.Join(dir, "invoice.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(invoiceYAML), 0o600))
	inv, err = input.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-002", inv.ID)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.toml")
	require.NoError(t, os.WriteFile(path, []byte("id = 'x'"), 0o600))

	_, err := input.Load(path)
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := input.Load(filepath.Join(t.TempDir(), "nope.json"))
	var ioe *model.IOError
	require.True(t, errors.As(err, &ioe))
}

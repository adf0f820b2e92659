// Package input loads invoice descriptions from JSON or YAML files and maps
// them onto the validated invoice model. Calendar dates use ISO 8601
// (YYYY-MM-DD) and malformed dates are rejected at this boundary; nothing
// downstream ever sees an unparsed date.
package input

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/facturx/internal/model"
)

const dateLayout = "2006-01-02"

// amount accepts both quoted and bare numerics in either input format and
// parses them as exact decimals.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	a.Decimal = d
	return nil
}

func (a *amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("invalid amount %q", value.Value)
	}
	a.Decimal = d
	return nil
}

type addressFile struct {
	Line        string `json:"line" yaml:"line"`
	City        string `json:"city" yaml:"city"`
	PostalCode  string `json:"postal_code" yaml:"postal_code"`
	CountryCode string `json:"country_code" yaml:"country_code"`
}

type partyFile struct {
	Name      string      `json:"name" yaml:"name"`
	Address   addressFile `json:"address" yaml:"address"`
	VATNumber string      `json:"vat_number" yaml:"vat_number"`
	Email     string      `json:"email" yaml:"email"`
	Phone     string      `json:"phone" yaml:"phone"`
}

type lineItemFile struct {
	Description string `json:"description" yaml:"description"`
	Quantity    amount `json:"quantity" yaml:"quantity"`
	UnitPrice   amount `json:"unit_price" yaml:"unit_price"`
	TaxRate     amount `json:"tax_rate" yaml:"tax_rate"`
	UnitCode    string `json:"unit_code" yaml:"unit_code"`
}

type invoiceFile struct {
	ID             string         `json:"id" yaml:"id"`
	IssueDate      string         `json:"issue_date" yaml:"issue_date"`
	DueDate        string         `json:"due_date" yaml:"due_date"`
	Currency       string         `json:"currency" yaml:"currency"`
	Seller         partyFile      `json:"seller" yaml:"seller"`
	Buyer          partyFile      `json:"buyer" yaml:"buyer"`
	Items          []lineItemFile `json:"items" yaml:"items"`
	Notes          string         `json:"notes" yaml:"notes"`
	OrderReference string         `json:"order_reference" yaml:"order_reference"`
	PaymentTerms   string         `json:"payment_terms" yaml:"payment_terms"`
}

// Load reads and validates an invoice description file. The format is chosen
// by extension: .json, .yaml or .yml.
func Load(path string) (*model.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewIOError("load", fmt.Sprintf("cannot read invoice file %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return nil, model.NewValidationError("file", path, "format", "unsupported invoice file format, expected .json, .yaml or .yml")
}

// ParseJSON decodes a JSON invoice description and validates it
func ParseJSON(data []byte) (*model.Invoice, error) {
	var f invoiceFile
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, model.NewValidationError("file", nil, "json", "invalid JSON: "+err.Error())
	}
	return f.toModel()
}

// ParseYAML decodes a YAML invoice description and validates it
func ParseYAML(data []byte) (*model.Invoice, error) {
	var f invoiceFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, model.NewValidationError("file", nil, "yaml", "invalid YAML: "+err.Error())
	}
	return f.toModel()
}

func (f *invoiceFile) toModel() (*model.Invoice, error) {
	issue, err := parseDate("issue_date", f.IssueDate, true)
	if err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", f.DueDate, false)
	if err != nil {
		return nil, err
	}

	inv := &model.Invoice{
		ID:             f.ID,
		IssueDate:      issue,
		DueDate:        due,
		Currency:       f.Currency,
		Seller:         f.Seller.toModel(),
		Buyer:          f.Buyer.toModel(),
		Notes:          f.Notes,
		OrderReference: f.OrderReference,
		PaymentTerms:   f.PaymentTerms,
	}
	for i, item := range f.Items {
		inv.Items = append(inv.Items, model.LineItem{
			Position:    i + 1,
			Description: item.Description,
			Quantity:    item.Quantity.Decimal,
			UnitPrice:   item.UnitPrice.Decimal,
			TaxRate:     item.TaxRate.Decimal,
			UnitCode:    item.UnitCode,
		})
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (p *partyFile) toModel() model.Party {
	return model.Party{
		Name: p.Name,
		Address: model.Address{
			Line:        p.Address.Line,
			City:        p.Address.City,
			PostalCode:  p.Address.PostalCode,
			CountryCode: p.Address.CountryCode,
		},
		VATNumber: p.VATNumber,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}

// parseDate enforces strict ISO 8601 calendar dates. time.Parse alone would
// accept out-of-range values like 2024-13-45 through normalization in some
// layouts; the round-trip check closes that hole.
func parseDate(field, value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, model.NewValidationError(field, nil, "required", "date must not be empty")
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil || t.Format(dateLayout) != value {
		return time.Time{}, model.NewValidationError(field, value, "date", "date must be a valid YYYY-MM-DD calendar date")
	}
	return t, nil
}

// Package model defines the invoice data model consumed by the Factur-X
// pipeline. Values are constructed once from external input, validated, and
// treated as immutable from then on.
package model

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Profile identifies a Factur-X conformance profile
type Profile string

// Supported Factur-X conformance profiles
const (
	ProfileMinimum Profile = "MINIMUM"
	ProfileBasicWL Profile = "BASIC_WL"
	ProfileEN16931 Profile = "EN16931"
)

// Valid returns true if p is one of the supported profiles
func (p Profile) Valid() bool {
	switch p {
	case ProfileMinimum, ProfileBasicWL, ProfileEN16931:
		return true
	}
	return false
}

// Address is a postal address
type Address struct {
	Line       string `json:"line"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	// CountryCode is an ISO 3166-1 alpha-2 code
	CountryCode string `json:"country_code"`
}

// Party represents a trading party (seller or buyer). Seller and buyer are
// independent values and are never aliased.
type Party struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
	// VATNumber is the optional tax registration identifier
	VATNumber string `json:"vat_number,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LineItem is a single invoice line. Position is 1-based and defines the
// document order, which is preserved verbatim in the encoded output.
type LineItem struct {
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	// TaxRate is the VAT rate in percent
	TaxRate decimal.Decimal `json:"tax_rate"`
	// UnitCode is the UN/ECE Rec 20 unit of measure code
	UnitCode string `json:"unit_code,omitempty"`
}

// Invoice is a commercial invoice
type Invoice struct {
	ID        string     `json:"id"`
	IssueDate time.Time  `json:"issue_date"`
	DueDate   time.Time  `json:"due_date"`
	Currency  string     `json:"currency"`
	Seller    Party      `json:"seller"`
	Buyer     Party      `json:"buyer"`
	Items     []LineItem `json:"items"`
	Notes     string     `json:"notes,omitempty"`
	// OrderReference is the optional buyer purchase order reference
	OrderReference string `json:"order_reference,omitempty"`
	PaymentTerms   string `json:"payment_terms,omitempty"`
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks the invoice against construction-time rules. It returns a
// ValidationError describing the first violation found.
func (inv *Invoice) Validate() error {
	if inv.ID == "" {
		return NewValidationError("id", nil, "required", "invoice identifier must not be empty")
	}
	if !currencyPattern.MatchString(inv.Currency) {
		return NewValidationError("currency", inv.Currency, "iso4217", "currency code must be 3 uppercase letters")
	}
	if inv.Seller.Name == "" {
		return NewValidationError("seller.name", nil, "required", "seller name must not be empty")
	}
	if inv.Buyer.Name == "" {
		return NewValidationError("buyer.name", nil, "required", "buyer name must not be empty")
	}
	if inv.IssueDate.IsZero() {
		return NewValidationError("issue_date", nil, "required", "issue date must be set")
	}
	if !inv.DueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		return NewValidationError("due_date", inv.DueDate.Format("2006-01-02"), "chronology", "due date precedes issue date")
	}
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.Quantity.IsNegative() {
			return NewValidationError("items.quantity", item.Quantity.String(), "non-negative", "quantity must not be negative")
		}
		// Credit adjustments are not modelled, so a negative price is
		// never legitimate input.
		if item.UnitPrice.IsNegative() {
			return NewValidationError("items.unit_price", item.UnitPrice.String(), "non-negative", "unit price must not be negative")
		}
		if item.TaxRate.IsNegative() {
			return NewValidationError("items.tax_rate", item.TaxRate.String(), "non-negative", "tax rate must not be negative")
		}
	}
	return nil
}

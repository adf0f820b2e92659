// Package cii encodes invoices as UN/CEFACT Cross Industry Invoice documents
// for Factur-X embedding. The top-level section order under the transaction
// element is mandated by the schema: line items first, then trade agreement,
// trade delivery and trade settlement. Emitting them in any other order
// produces a non-conformant document even when every value is correct.
package cii

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/facturx/internal/decimal"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/reconcile"
)

// CII namespaces
const (
	NamespaceRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NamespaceRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NamespaceUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	NamespaceQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
)

// UNTDID 1001 code for a commercial invoice
const TypeCodeInvoice = "380"

// Format code 102 means YYYYMMDD
const dateFormat102 = "102"

// DefaultUnitCode is used when a line item carries no unit of measure
const DefaultUnitCode = "C62"

// GuidelineID returns the document context guideline identifier declared for
// a conformance profile.
func GuidelineID(p model.Profile) string {
	switch p {
	case model.ProfileMinimum:
		return "urn:factur-x.eu:1p0:minimum"
	case model.ProfileBasicWL:
		return "urn:factur-x.eu:1p0:basicwl"
	default:
		return "urn:cen.eu:en16931:2017"
	}
}

// Encode builds the CII element tree for the invoice using the reconciled
// tax groups and monetary summary, and serializes it as UTF-8 XML with an
// encoding declaration.
//
// Required fields are re-checked here even though the model validates on
// construction: the encoder owns schema conformance and an unvalidated
// invoice must not silently produce invalid output. Missing requirements
// yield an EncodingError.
func Encode(inv *model.Invoice, groups []reconcile.TaxGroup, sum *reconcile.Summary, profile model.Profile) ([]byte, error) {
	if inv.ID == "" {
		return nil, model.NewEncodingError("id", "invoice identifier is required")
	}
	if inv.IssueDate.IsZero() {
		return nil, model.NewEncodingError("issue_date", "issue date is required")
	}
	if inv.Currency == "" {
		return nil, model.NewEncodingError("currency", "currency code is required")
	}
	if len(inv.Items) == 0 {
		return nil, model.NewEncodingError("items", "at least one line item is required")
	}
	if sum == nil {
		return nil, model.NewEncodingError("summary", "reconciled monetary summary is required")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", NamespaceRSM)
	root.CreateAttr("xmlns:ram", NamespaceRAM)
	root.CreateAttr("xmlns:udt", NamespaceUDT)
	root.CreateAttr("xmlns:qdt", NamespaceQDT)

	addDocumentContext(root, profile)
	addExchangedDocument(root, inv)

	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")
	nets := reconcile.LineNets(inv)
	for i := range inv.Items {
		addLineItem(tx, &inv.Items[i], nets[i])
	}
	addTradeAgreement(tx, inv)
	addTradeDelivery(tx, inv)
	addTradeSettlement(tx, inv, groups, sum)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func addDocumentContext(root *etree.Element, profile model.Profile) {
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	guideline := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	guideline.CreateElement("ram:ID").SetText(GuidelineID(profile))
}

func addExchangedDocument(root *etree.Element, inv *model.Invoice) {
	doc := root.CreateElement("rsm:ExchangedDocument")
	doc.CreateElement("ram:ID").SetText(inv.ID)
	doc.CreateElement("ram:TypeCode").SetText(TypeCodeInvoice)
	issue := doc.CreateElement("ram:IssueDateTime")
	addDateTimeString(issue, inv.IssueDate)
	if inv.Notes != "" {
		note := doc.CreateElement("ram:IncludedNote")
		note.CreateElement("ram:Content").SetText(inv.Notes)
	}
}

func addLineItem(tx *etree.Element, item *model.LineItem, net decimal.Decimal) {
	line := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	lineDoc := line.CreateElement("ram:AssociatedDocumentLineDocument")
	lineDoc.CreateElement("ram:LineID").SetText(strconv.Itoa(item.Position))

	product := line.CreateElement("ram:SpecifiedTradeProduct")
	product.CreateElement("ram:Name").SetText(item.Description)

	agreement := line.CreateElement("ram:SpecifiedLineTradeAgreement")
	price := agreement.CreateElement("ram:NetPriceProductTradePrice")
	price.CreateElement("ram:ChargeAmount").SetText(money.Format(item.UnitPrice))
	basisQty := price.CreateElement("ram:BasisQuantity")
	basisQty.CreateAttr("unitCode", unitCode(item))
	basisQty.SetText("1")

	delivery := line.CreateElement("ram:SpecifiedLineTradeDelivery")
	billedQty := delivery.CreateElement("ram:BilledQuantity")
	billedQty.CreateAttr("unitCode", unitCode(item))
	billedQty.SetText(item.Quantity.String())

	settlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
	tax := settlement.CreateElement("ram:ApplicableTradeTax")
	tax.CreateElement("ram:TypeCode").SetText("VAT")
	tax.CreateElement("ram:CategoryCode").SetText("S")
	tax.CreateElement("ram:RateApplicablePercent").SetText(item.TaxRate.StringFixed(2))

	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	summation.CreateElement("ram:LineTotalAmount").SetText(money.Format(net))
}

func addTradeAgreement(tx *etree.Element, inv *model.Invoice) {
	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	addParty(agreement, "ram:SellerTradeParty", &inv.Seller)
	addParty(agreement, "ram:BuyerTradeParty", &inv.Buyer)
	if inv.OrderReference != "" {
		order := agreement.CreateElement("ram:BuyerOrderReferencedDocument")
		order.CreateElement("ram:IssuerAssignedID").SetText(inv.OrderReference)
	}
}

func addParty(parent *etree.Element, tag string, p *model.Party) {
	party := parent.CreateElement(tag)
	party.CreateElement("ram:Name").SetText(p.Name)

	addr := party.CreateElement("ram:PostalTradeAddress")
	if p.Address.PostalCode != "" {
		addr.CreateElement("ram:PostcodeCode").SetText(p.Address.PostalCode)
	}
	if p.Address.Line != "" {
		addr.CreateElement("ram:LineOne").SetText(p.Address.Line)
	}
	if p.Address.City != "" {
		addr.CreateElement("ram:CityName").SetText(p.Address.City)
	}
	// Country is optional on the model; the element is omitted, not emitted
	// empty, when absent.
	if p.Address.CountryCode != "" {
		addr.CreateElement("ram:CountryID").SetText(p.Address.CountryCode)
	}

	if p.VATNumber != "" {
		reg := party.CreateElement("ram:SpecifiedTaxRegistration")
		id := reg.CreateElement("ram:ID")
		id.CreateAttr("schemeID", "VA")
		id.SetText(p.VATNumber)
	}
}

func addTradeDelivery(tx *etree.Element, inv *model.Invoice) {
	delivery := tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
	occurrence := event.CreateElement("ram:OccurrenceDateTime")
	addDateTimeString(occurrence, inv.IssueDate)
}

func addTradeSettlement(tx *etree.Element, inv *model.Invoice, groups []reconcile.TaxGroup, sum *reconcile.Summary) {
	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	settlement.CreateElement("ram:PaymentReference").SetText(inv.ID)
	settlement.CreateElement("ram:InvoiceCurrencyCode").SetText(inv.Currency)

	for _, g := range groups {
		tax := settlement.CreateElement("ram:ApplicableTradeTax")
		tax.CreateElement("ram:CalculatedAmount").SetText(money.Format(g.Tax))
		tax.CreateElement("ram:TypeCode").SetText("VAT")
		tax.CreateElement("ram:BasisAmount").SetText(money.Format(g.Basis))
		tax.CreateElement("ram:CategoryCode").SetText("S")
		tax.CreateElement("ram:RateApplicablePercent").SetText(g.Rate.StringFixed(2))
	}

	if !inv.DueDate.IsZero() || inv.PaymentTerms != "" {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		if inv.PaymentTerms != "" {
			terms.CreateElement("ram:Description").SetText(inv.PaymentTerms)
		}
		if !inv.DueDate.IsZero() {
			due := terms.CreateElement("ram:DueDateDateTime")
			addDateTimeString(due, inv.DueDate)
		}
	}

	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	summation.CreateElement("ram:LineTotalAmount").SetText(money.Format(sum.Net))
	summation.CreateElement("ram:TaxBasisTotalAmount").SetText(money.Format(sum.Net))
	taxTotal := summation.CreateElement("ram:TaxTotalAmount")
	taxTotal.CreateAttr("currencyID", inv.Currency)
	taxTotal.SetText(money.Format(sum.Tax))
	summation.CreateElement("ram:GrandTotalAmount").SetText(money.Format(sum.Grand))
	summation.CreateElement("ram:DuePayableAmount").SetText(money.Format(sum.Due))
}

func addDateTimeString(parent *etree.Element, t time.Time) {
	ds := parent.CreateElement("udt:DateTimeString")
	ds.CreateAttr("format", dateFormat102)
	ds.SetText(t.Format("20060102"))
}

func unitCode(item *model.LineItem) string {
	if item.UnitCode == "" {
		return DefaultUnitCode
	}
	return item.UnitCode
}

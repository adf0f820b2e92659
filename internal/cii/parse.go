package cii

import (
	"github.com/beevik/etree"

	"github.com/rezonia/facturx/internal/model"
)

// Document is the read-back view of an encoded invoice. Amount fields keep
// the exact strings from the document so callers can verify formatting as
// well as values.
type Document struct {
	GuidelineID string
	ID          string
	TypeCode    string
	IssueDate   string
	Notes       string

	SellerName    string
	SellerVAT     string
	SellerCountry string
	BuyerName     string
	BuyerVAT      string
	BuyerCountry  string
	OrderRef      string

	Currency string
	DueDate  string

	Lines     []Line
	TaxGroups []Tax

	LineTotal  string
	TaxBasis   string
	TaxTotal   string
	GrandTotal string
	DueAmount  string

	// SectionOrder lists the child element names of the transaction section
	// in document order, with namespace prefixes stripped.
	SectionOrder []string
}

// Line is a read-back line item
type Line struct {
	ID          string
	Description string
	UnitPrice   string
	Quantity    string
	UnitCode    string
	Rate        string
	Net         string
}

// Tax is a read-back header tax group
type Tax struct {
	Rate  string
	Basis string
	Tax   string
}

// Parse reads an encoded CII document back into its verification view.
// It fails with an EncodingError if the document does not have the expected
// root element.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, model.NewEncodingError("document", "not well-formed XML: "+err.Error())
	}

	root := doc.Root()
	if root == nil || root.Tag != "CrossIndustryInvoice" {
		return nil, model.NewEncodingError("document", "root element is not CrossIndustryInvoice")
	}

	out := &Document{}

	if ctx := root.SelectElement("rsm:ExchangedDocumentContext"); ctx != nil {
		out.GuidelineID = textAt(ctx, "ram:GuidelineSpecifiedDocumentContextParameter", "ram:ID")
	}
	if hdr := root.SelectElement("rsm:ExchangedDocument"); hdr != nil {
		out.ID = text(hdr, "ram:ID")
		out.TypeCode = text(hdr, "ram:TypeCode")
		out.IssueDate = textAt(hdr, "ram:IssueDateTime", "udt:DateTimeString")
		out.Notes = textAt(hdr, "ram:IncludedNote", "ram:Content")
	}

	tx := root.SelectElement("rsm:SupplyChainTradeTransaction")
	if tx == nil {
		return nil, model.NewEncodingError("transaction", "missing SupplyChainTradeTransaction section")
	}
	for _, child := range tx.ChildElements() {
		out.SectionOrder = append(out.SectionOrder, child.Tag)
	}

	for _, line := range tx.SelectElements("ram:IncludedSupplyChainTradeLineItem") {
		out.Lines = append(out.Lines, parseLine(line))
	}

	if agreement := tx.SelectElement("ram:ApplicableHeaderTradeAgreement"); agreement != nil {
		if seller := agreement.SelectElement("ram:SellerTradeParty"); seller != nil {
			out.SellerName = text(seller, "ram:Name")
			out.SellerVAT = textAt(seller, "ram:SpecifiedTaxRegistration", "ram:ID")
			out.SellerCountry = textAt(seller, "ram:PostalTradeAddress", "ram:CountryID")
		}
		if buyer := agreement.SelectElement("ram:BuyerTradeParty"); buyer != nil {
			out.BuyerName = text(buyer, "ram:Name")
			out.BuyerVAT = textAt(buyer, "ram:SpecifiedTaxRegistration", "ram:ID")
			out.BuyerCountry = textAt(buyer, "ram:PostalTradeAddress", "ram:CountryID")
		}
		out.OrderRef = textAt(agreement, "ram:BuyerOrderReferencedDocument", "ram:IssuerAssignedID")
	}

	if settlement := tx.SelectElement("ram:ApplicableHeaderTradeSettlement"); settlement != nil {
		out.Currency = text(settlement, "ram:InvoiceCurrencyCode")
		for _, tax := range settlement.SelectElements("ram:ApplicableTradeTax") {
			out.TaxGroups = append(out.TaxGroups, Tax{
				Rate:  text(tax, "ram:RateApplicablePercent"),
				Basis: text(tax, "ram:BasisAmount"),
				Tax:   text(tax, "ram:CalculatedAmount"),
			})
		}
		if terms := settlement.SelectElement("ram:SpecifiedTradePaymentTerms"); terms != nil {
			out.DueDate = textAt(terms, "ram:DueDateDateTime", "udt:DateTimeString")
		}
		if sum := settlement.SelectElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation"); sum != nil {
			out.LineTotal = text(sum, "ram:LineTotalAmount")
			out.TaxBasis = text(sum, "ram:TaxBasisTotalAmount")
			out.TaxTotal = text(sum, "ram:TaxTotalAmount")
			out.GrandTotal = text(sum, "ram:GrandTotalAmount")
			out.DueAmount = text(sum, "ram:DuePayableAmount")
		}
	}

	return out, nil
}

func parseLine(line *etree.Element) Line {
	l := Line{
		ID:          textAt(line, "ram:AssociatedDocumentLineDocument", "ram:LineID"),
		Description: textAt(line, "ram:SpecifiedTradeProduct", "ram:Name"),
	}
	if agreement := line.SelectElement("ram:SpecifiedLineTradeAgreement"); agreement != nil {
		l.UnitPrice = textAt(agreement, "ram:NetPriceProductTradePrice", "ram:ChargeAmount")
	}
	if delivery := line.SelectElement("ram:SpecifiedLineTradeDelivery"); delivery != nil {
		if qty := delivery.SelectElement("ram:BilledQuantity"); qty != nil {
			l.Quantity = qty.Text()
			l.UnitCode = qty.SelectAttrValue("unitCode", "")
		}
	}
	if settlement := line.SelectElement("ram:SpecifiedLineTradeSettlement"); settlement != nil {
		l.Rate = textAt(settlement, "ram:ApplicableTradeTax", "ram:RateApplicablePercent")
		l.Net = textAt(settlement, "ram:SpecifiedTradeSettlementLineMonetarySummation", "ram:LineTotalAmount")
	}
	return l
}

func text(parent *etree.Element, tag string) string {
	if el := parent.SelectElement(tag); el != nil {
		return el.Text()
	}
	return ""
}

func textAt(parent *etree.Element, tags ...string) string {
	el := parent
	for _, tag := range tags {
		if el = el.SelectElement(tag); el == nil {
			return ""
		}
	}
	return el.Text()
}

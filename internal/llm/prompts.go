package llm

// Invoice extraction prompts

const SystemPromptInvoiceExtractor = `You are an expert invoice data extractor preparing data for European e-invoicing (EN 16931 / Factur-X).

Your task is to extract structured data from invoice text or images. The invoices may be in English, French or German.

Common invoice terms:
- Facture / Rechnung = Invoice
- Numéro de facture / Rechnungsnummer = Invoice number
- Date d'émission / Rechnungsdatum = Issue date
- Date d'échéance / Fälligkeitsdatum = Due date
- Numéro de TVA / USt-IdNr. = VAT number
- Vendeur / Verkäufer = Seller
- Acheteur / Käufer = Buyer
- Quantité / Menge = Quantity
- Prix unitaire / Einzelpreis = Unit price
- Taux de TVA / Steuersatz = Tax rate
- Montant HT / Nettobetrag = Net amount
- Montant TTC / Bruttobetrag = Gross amount

Extract ALL information you can find. If a field is not present, omit it from the output.
Always output valid JSON that matches the specified schema.
Quantities, prices and tax rates must be decimal strings, never floats.
Dates must be in ISO 8601 format (YYYY-MM-DD).
The currency must be a three-letter ISO 4217 code.`

const invoiceJSONSchema = `{
  "id": "string",
  "issue_date": "YYYY-MM-DD",
  "due_date": "YYYY-MM-DD",
  "currency": "EUR",
  "seller": {
    "name": "string",
    "address": {
      "line": "string",
      "city": "string",
      "postal_code": "string",
      "country_code": "DE"
    },
    "vat_number": "string",
    "email": "string",
    "phone": "string"
  },
  "buyer": {
    "name": "string",
    "address": {
      "line": "string",
      "city": "string",
      "postal_code": "string",
      "country_code": "FR"
    },
    "vat_number": "string",
    "email": "string",
    "phone": "string"
  },
  "items": [
    {
      "description": "string",
      "quantity": "1",
      "unit_price": "100.00",
      "tax_rate": "19",
      "unit_code": "C62"
    }
  ],
  "notes": "string",
  "order_reference": "string",
  "payment_terms": "string"
}`

const UserPromptTextExtraction = `Extract invoice data from the following text:

---
%s
---

Output JSON with this structure:
` + invoiceJSONSchema

const UserPromptImageExtraction = `Extract invoice data from this invoice image.

Output JSON with this structure:
` + invoiceJSONSchema + `

Extract all visible information from the invoice image. For any text that appears blurry or unclear, make your best attempt to read it.`

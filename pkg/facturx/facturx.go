// Package facturx provides a public API for building Factur-X hybrid
// invoices: PDF/A-3 containers carrying a machine-readable UN/CEFACT Cross
// Industry Invoice document.
//
// Example usage:
//
//	builder := facturx.NewBuilder(facturx.Options{Profile: facturx.ProfileEN16931})
//	if err := builder.Build(ctx, invoice, "letterhead.pdf", "invoice.pdf"); err != nil {
//	    log.Fatal(err)
//	}
package facturx

import (
	"context"
	"io"
	"time"

	"github.com/rezonia/facturx/internal/input"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/pdfa"
	"github.com/rezonia/facturx/internal/processor"
	"github.com/rezonia/facturx/internal/reconcile"
)

// Re-export core types for public API
type (
	Invoice  = model.Invoice
	LineItem = model.LineItem
	Party    = model.Party
	Address  = model.Address
	Profile  = model.Profile
	TaxGroup = reconcile.TaxGroup
	Summary  = reconcile.Summary
	Report   = pdf.Report
)

// Re-export conformance profiles
const (
	ProfileMinimum = model.ProfileMinimum
	ProfileBasicWL = model.ProfileBasicWL
	ProfileEN16931 = model.ProfileEN16931
)

// AttachmentName is the canonical filename of the embedded document
const AttachmentName = pdf.AttachmentName

// Re-export error types
type (
	ValidationError     = model.ValidationError
	ReconciliationError = model.ReconciliationError
	EncodingError       = model.EncodingError
	IOError             = model.IOError
)

// Options configures a Builder
type Options struct {
	// Profile selects the conformance profile; EN16931 when empty
	Profile Profile
	// ConvertPDFA enables Ghostscript PDF/A-3 pre-conversion
	ConvertPDFA bool
	// CreatorTool overrides the tool name recorded in container metadata
	CreatorTool string
	// Clock overrides the time source, for deterministic output
	Clock func() time.Time
}

// Builder produces Factur-X documents and containers
type Builder struct {
	pipeline *processor.Pipeline
}

// NewBuilder creates a Builder with the given options
func NewBuilder(opts Options) *Builder {
	pOpts := []processor.Option{}
	if opts.Profile != "" {
		pOpts = append(pOpts, processor.WithProfile(opts.Profile))
	}
	if opts.ConvertPDFA {
		pOpts = append(pOpts, processor.WithConverter(pdfa.NewConverter()))
	}
	if opts.CreatorTool != "" {
		pOpts = append(pOpts, processor.WithCreatorTool(opts.CreatorTool))
	}
	if opts.Clock != nil {
		pOpts = append(pOpts, processor.WithClock(opts.Clock))
	}
	return &Builder{pipeline: processor.New(pOpts...)}
}

// GenerateXML validates the invoice, reconciles its totals and returns the
// encoded CII document.
func (b *Builder) GenerateXML(inv *Invoice) ([]byte, error) {
	return b.pipeline.GenerateXML(inv)
}

// Build generates the invoice document and embeds it into the PDF at inPDF,
// writing the Factur-X container to outPDF.
func (b *Builder) Build(ctx context.Context, inv *Invoice, inPDF, outPDF string) error {
	return b.pipeline.Build(ctx, inv, inPDF, outPDF)
}

// Embed attaches a pre-encoded CII document to the PDF at inPDF
func (b *Builder) Embed(ctx context.Context, xmlBytes []byte, inPDF, outPDF string) error {
	return b.pipeline.Embed(ctx, xmlBytes, inPDF, outPDF)
}

// Reconcile derives the per-rate tax groups and monetary summary for an
// invoice without encoding it.
func Reconcile(inv *Invoice) ([]TaxGroup, *Summary, error) {
	return reconcile.Reconcile(inv)
}

// LoadInvoice reads a JSON or YAML invoice description file
func LoadInvoice(path string) (*Invoice, error) {
	return input.Load(path)
}

// ParseInvoice decodes a JSON invoice description from r
func ParseInvoice(r io.Reader) (*Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewIOError("read", "failed to read invoice input", err)
	}
	return input.ParseJSON(data)
}

// Inspect reports the Factur-X content of the PDF at path
func Inspect(path string) (*Report, error) {
	return pdf.Inspect(path)
}

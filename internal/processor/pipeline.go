// Package processor wires validation, reconciliation, encoding and container
// editing into the end-to-end Factur-X build flow.
package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/reconcile"
	"github.com/rezonia/facturx/internal/xmp"
)

// ArchivalConverter rewrites a plain PDF as an archival-grade container.
// Implementations that depend on external tooling report availability instead
// of failing at call time.
type ArchivalConverter interface {
	Available() bool
	Convert(ctx context.Context, inPath, outPath string) error
}

// Pipeline produces Factur-X documents and containers
type Pipeline struct {
	profile     model.Profile
	converter   ArchivalConverter
	creatorTool string
	now         func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithProfile selects the conformance profile for encoded documents
func WithProfile(p model.Profile) Option {
	return func(pl *Pipeline) {
		pl.profile = p
	}
}

// WithConverter enables an archival pre-conversion step before embedding.
// A nil converter, or one that reports unavailable, skips the step.
func WithConverter(c ArchivalConverter) Option {
	return func(pl *Pipeline) {
		pl.converter = c
	}
}

// WithCreatorTool overrides the creator tool recorded in container metadata
func WithCreatorTool(name string) Option {
	return func(pl *Pipeline) {
		pl.creatorTool = name
	}
}

// WithClock overrides the time source, for deterministic output
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) {
		pl.now = now
	}
}

// New creates a Pipeline targeting the EN 16931 profile by default
func New(opts ...Option) *Pipeline {
	pl := &Pipeline{
		profile: model.ProfileEN16931,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Profile returns the conformance profile the pipeline encodes for
func (pl *Pipeline) Profile() model.Profile {
	return pl.profile
}

// GenerateXML validates the invoice, reconciles its totals and encodes the
// CII document. The returned bytes are the exact payload a Build would embed.
func (pl *Pipeline) GenerateXML(inv *model.Invoice) ([]byte, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	groups, sum, err := reconcile.Reconcile(inv)
	if err != nil {
		return nil, err
	}
	return cii.Encode(inv, groups, sum, pl.profile)
}

// Build generates the invoice document and embeds it, together with
// compliance metadata, into the container at inPDF, writing the result to
// outPDF. When an archival converter is configured and available the input is
// converted to PDF/A-3 first.
func (pl *Pipeline) Build(ctx context.Context, inv *model.Invoice, inPDF, outPDF string) error {
	xmlBytes, err := pl.GenerateXML(inv)
	if err != nil {
		return err
	}
	return pl.embed(ctx, xmlBytes, inv.ID, inPDF, outPDF)
}

// Embed attaches a pre-encoded invoice document to the container at inPDF.
// The document is parsed first so a malformed payload is rejected before any
// container work happens.
func (pl *Pipeline) Embed(ctx context.Context, xmlBytes []byte, inPDF, outPDF string) error {
	doc, err := cii.Parse(xmlBytes)
	if err != nil {
		return err
	}
	return pl.embed(ctx, xmlBytes, doc.ID, inPDF, outPDF)
}

func (pl *Pipeline) embed(ctx context.Context, xmlBytes []byte, invoiceID, inPDF, outPDF string) error {
	source := inPDF
	if pl.converter != nil && pl.converter.Available() {
		scratch := filepath.Join(os.TempDir(), fmt.Sprintf("facturx-%s.pdf", uuid.NewString()))
		defer os.Remove(scratch)
		if err := pl.converter.Convert(ctx, inPDF, scratch); err != nil {
			return model.NewIOError("convert", "archival conversion failed", err)
		}
		source = scratch
	}

	editor, err := pdf.Open(source)
	if err != nil {
		return err
	}

	now := pl.now()
	if err := editor.AttachXML(xmlBytes, now); err != nil {
		return err
	}

	hash := sha256.Sum256(xmlBytes)
	packet, err := xmp.Build(xmp.Params{
		Profile:          pl.profile,
		DocumentFileName: pdf.AttachmentName,
		InvoiceID:        invoiceID,
		ContentHash:      hex.EncodeToString(hash[:]),
		Timestamp:        now,
		CreatorTool:      pl.creatorTool,
	})
	if err != nil {
		return err
	}
	if err := editor.SetMetadata(packet); err != nil {
		return err
	}

	return editor.Persist(outPDF)
}

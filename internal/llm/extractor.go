package llm

import (
	"context"
	"fmt"

	"github.com/rezonia/facturx/internal/input"
	"github.com/rezonia/facturx/internal/model"
)

// Extractor turns unstructured invoice text or images into validated invoices
type Extractor struct {
	client *Client
	model  string
}

// ExtractorOption configures the extractor
type ExtractorOption func(*Extractor)

// WithModel selects the model used for extraction
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.model = model
	}
}

// NewExtractor creates an extractor backed by the given client
func NewExtractor(client *Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{client: client}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFromText extracts a validated invoice from free-form invoice text.
// The response passes through the same input validation as a hand-written
// invoice file, so a hallucinated or incomplete extraction is rejected
// rather than encoded.
func (e *Extractor) ExtractFromText(ctx context.Context, text string) (*model.Invoice, error) {
	prompt := fmt.Sprintf(UserPromptTextExtraction, text)
	resp, err := e.client.ChatText(ctx, e.model, SystemPromptInvoiceExtractor, prompt)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	return input.ParseJSON([]byte(ExtractJSON(resp)))
}

// ExtractFromImage extracts a validated invoice from an invoice image
func (e *Extractor) ExtractFromImage(ctx context.Context, imageData []byte, mimeType string) (*model.Invoice, error) {
	resp, err := e.client.ChatWithImage(ctx, e.model, SystemPromptInvoiceExtractor, UserPromptImageExtraction, imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	return input.ParseJSON([]byte(ExtractJSON(resp)))
}

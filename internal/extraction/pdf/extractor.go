// Package pdf extracts the embedded text layer of PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"cverve/internal/domain"
	"cverve/internal/port"
)

var _ port.TextExtractor = (*Extractor)(nil)

// Extractor reads the text layer page by page. Scanned PDFs yield little or no text.
type Extractor struct{}

// NewExtractor creates a new PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of every readable page. Malformed documents, including ones
// that make the underlying parser panic, come back as errors.
func (e *Extractor) Extract(ctx context.Context, data []byte) (out *port.ExtractOutput, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	var text strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue // unreadable page
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	return &port.ExtractOutput{
		Text:   text.String(),
		Pages:  pages,
		Method: domain.MethodPDFText,
	}, nil
}

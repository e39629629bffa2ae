// Package docx extracts text from word-processor documents.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"cverve/internal/domain"
	"cverve/internal/port"
)

const (
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDoc  = "application/msword"
)

var _ port.TextExtractor = (*Extractor)(nil)

// Extractor converts OOXML (.docx) documents, and legacy .doc when wvText is installed.
type Extractor struct{}

// NewExtractor creates a new word document extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// mimeFor picks the converter from the container format: OLE compound files are legacy
// .doc, everything else is treated as OOXML.
func mimeFor(data []byte) string {
	if bytes.HasPrefix(data, oleMagic) {
		return MimeDoc
	}
	return MimeDocx
}

// Extract converts the document and returns its body text.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*port.ExtractOutput, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document content")
	}
	res, err := docconv.Convert(bytes.NewReader(data), mimeFor(data), false)
	if err != nil {
		return nil, fmt.Errorf("converting document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &port.ExtractOutput{
		Text:   strings.TrimSpace(res.Body),
		Pages:  1,
		Method: domain.MethodDocument,
	}, nil
}

package port

import (
	"context"

	"cverve/internal/domain"
)

// ExtractOutput is the raw text produced by a format-specific extractor.
type ExtractOutput struct {
	Text   string
	Pages  int
	Method domain.ExtractionMethod
}

// TextExtractor turns a file's bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*ExtractOutput, error)
}

// ImagePreprocessor normalizes an image for OCR. It never fails: on any error it
// returns the input bytes unchanged.
type ImagePreprocessor interface {
	Preprocess(data []byte) []byte
}

// OCROptions configures a single recognition call.
type OCROptions struct {
	Language string
	PSM      int // page segmentation mode; 6 = uniform block of text
	OEM      int // engine mode; 1 = LSTM neural net
}

// OCREngine recognizes text in an encoded image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte, opts OCROptions) (string, error)
}

// PageRenderer rasterizes PDF pages into encoded images.
type PageRenderer interface {
	Render(ctx context.Context, pdf []byte) ([][]byte, error)
}

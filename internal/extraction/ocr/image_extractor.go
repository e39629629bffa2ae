package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cverve/internal/bounded"
	"cverve/internal/domain"
	"cverve/internal/port"
)

// ErrNoText is returned when recognition produced no characters on both attempts.
var ErrNoText = errors.New("no text recognized in image")

// ErrOCRTimeout is returned when a recognition call exceeds its budget. It is never retried.
var ErrOCRTimeout = fmt.Errorf("OCR timed out: %w", bounded.ErrTimedOut)

var _ port.TextExtractor = (*ImageExtractor)(nil)

// ImageExtractor preprocesses an image, runs OCR under a hard per-call timeout and retries
// once on the original bytes when the preprocessed attempt yields nothing.
type ImageExtractor struct {
	engine  port.OCREngine
	pre     port.ImagePreprocessor
	opts    port.OCROptions
	timeout time.Duration
}

// NewImageExtractor creates an image OCR extractor. pre may be nil to skip preprocessing.
func NewImageExtractor(engine port.OCREngine, pre port.ImagePreprocessor, opts port.OCROptions, timeout time.Duration) *ImageExtractor {
	return &ImageExtractor{engine: engine, pre: pre, opts: opts, timeout: timeout}
}

// Extract returns the recognized text of a single image.
func (e *ImageExtractor) Extract(ctx context.Context, data []byte) (*port.ExtractOutput, error) {
	if len(data) == 0 {
		return nil, ErrNoText
	}

	input := data
	if e.pre != nil {
		input = e.pre.Preprocess(data)
	}

	text, err := e.recognize(ctx, input)
	if errors.Is(err, ErrOCRTimeout) {
		return nil, err
	}
	if err == nil && text != "" {
		return &port.ExtractOutput{Text: text, Pages: 1, Method: domain.MethodImageOCR}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if bytes.Equal(input, data) && err == nil {
		return nil, ErrNoText
	}
	// Preprocessing can wash out faint text; try once more without it.
	log.Printf("ocr.ImageExtractor.Extract: first attempt empty (err=%v), retrying on original bytes", err)
	text, err = e.recognize(ctx, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrNoText
	}
	return &port.ExtractOutput{Text: text, Pages: 1, Method: domain.MethodImageOCRRaw}, nil
}

func (e *ImageExtractor) recognize(ctx context.Context, img []byte) (string, error) {
	text, err := bounded.Run(ctx, e.timeout, func(ctx context.Context) (string, error) {
		return e.engine.Recognize(ctx, img, e.opts)
	})
	if errors.Is(err, bounded.ErrTimedOut) {
		return "", ErrOCRTimeout
	}
	return text, err
}

package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cverve/internal/port"
)

var _ port.OCREngine = (*Tesseract)(nil)

// Tesseract is an OCREngine backed by the tesseract binary, fed through stdin.
type Tesseract struct {
	binary      string
	tessdataDir string
	runner      Runner
}

// NewTesseract creates an engine. An empty binary defaults to "tesseract".
func NewTesseract(binary, tessdataDir string, runner Runner) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Tesseract{binary: binary, tessdataDir: tessdataDir, runner: runner}
}

// Args builds the command line for one recognition call.
func (t *Tesseract) Args(opts port.OCROptions) []string {
	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	// tesseract stdin stdout -l eng --psm 6 --oem 1
	args := []string{"stdin", "stdout", "-l", lang}
	if opts.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(opts.PSM))
	}
	if opts.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(opts.OEM))
	}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}
	return args
}

// Recognize runs tesseract on an encoded image and returns the normalized text.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, opts port.OCROptions) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("tesseract: empty image")
	}
	out, errb, err := t.runner.Run(ctx, image, t.binary, t.Args(opts)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w", ctxErr)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}
	return Normalize(string(out)), nil
}

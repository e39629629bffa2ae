package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cverve/internal/domain"
	"cverve/internal/port"
)

var (
	_ port.PageRenderer  = (*PdftoppmRenderer)(nil)
	_ port.TextExtractor = (*PDFExtractor)(nil)
)

// PdftoppmRenderer rasterizes PDF pages to PNG with poppler's pdftoppm.
type PdftoppmRenderer struct {
	binary   string
	dpi      int
	maxPages int
	runner   Runner
}

// NewPdftoppmRenderer creates a renderer. maxPages of 0 renders every page.
func NewPdftoppmRenderer(binary string, dpi, maxPages int, runner Runner) *PdftoppmRenderer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdftoppmRenderer{binary: binary, dpi: dpi, maxPages: maxPages, runner: runner}
}

// Render writes the PDF to a scratch directory, rasterizes it and returns the page images
// in page order.
func (r *PdftoppmRenderer) Render(ctx context.Context, pdf []byte) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "cverve-pp-*")
	if err != nil {
		return nil, fmt.Errorf("creating render dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			log.Printf("ocr.PdftoppmRenderer.Render: failed to remove %s: %v", tmpDir, err)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	prefix := filepath.Join(tmpDir, "page")

	// pdftoppm -r 300 -png [-l N] in.pdf page
	args := []string{"-r", strconv.Itoa(r.dpi), "-png"}
	if r.maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.maxPages))
	}
	args = append(args, in, prefix)
	if _, errb, err := r.runner.Run(ctx, nil, r.binary, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}

	// page-1.png, page-2.png, ... (zero padded once there are 10+ pages)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm produced no images")
	}

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page: %w", err)
		}
		pages = append(pages, b)
	}
	return pages, nil
}

// PDFExtractor is the OCR fallback for scanned PDFs: render pages, then OCR each one.
type PDFExtractor struct {
	renderer port.PageRenderer
	images   port.TextExtractor
}

// NewPDFExtractor combines a page renderer with an image extractor.
func NewPDFExtractor(renderer port.PageRenderer, images port.TextExtractor) *PDFExtractor {
	return &PDFExtractor{renderer: renderer, images: images}
}

// Extract returns the OCR text of every page that produced any. Pages that fail are skipped;
// the call fails only when no page yields text.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (*port.ExtractOutput, error) {
	pages, err := e.renderer.Render(ctx, data)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	var lastErr error
	for i, page := range pages {
		out, err := e.images.Extract(ctx, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, ErrOCRTimeout) {
				return nil, err
			}
			log.Printf("ocr.PDFExtractor.Extract: page %d: %v", i+1, err)
			lastErr = err
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(out.Text)
	}

	if b.Len() == 0 {
		if lastErr == nil {
			lastErr = ErrNoText
		}
		return nil, fmt.Errorf("no page of the scanned pdf produced text: %w", lastErr)
	}
	return &port.ExtractOutput{Text: b.String(), Pages: len(pages), Method: domain.MethodPDFOCR}, nil
}

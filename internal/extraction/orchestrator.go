package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cverve/internal/bounded"
	"cverve/internal/domain"
	"cverve/internal/extraction/ocr"
	"cverve/internal/port"
)

// Diagnostics attached to failed or skipped results.
const (
	DiagUnsupported = "unsupported file type"
	DiagRescan      = "scanned PDF has no extractable text; please re-upload the pages as images"
	DiagOCRTimeout  = "OCR timed out"
	DiagTimeout     = "processing took too long"
)

// Extractors holds the format-specific strategies. PDFFallback is nil when no page renderer
// is configured; scanned PDFs then fail with a re-upload suggestion instead of being OCR'd.
type Extractors struct {
	PDF         port.TextExtractor
	Document    port.TextExtractor
	Image       port.TextExtractor
	PDFFallback port.TextExtractor
}

// OrchestratorConfig holds the per-file thresholds.
type OrchestratorConfig struct {
	PDFMinChars int
	FileTimeout time.Duration
}

type state int

const (
	stateClassify state = iota
	stateExtract
	stateQualityGate
	stateOCRFallback
	stateValidate
	stateDone
)

func (s state) String() string {
	return [...]string{"classify", "extract", "qualityGate", "ocrFallback", "validate", "done"}[s]
}

// Orchestrator drives one file through classify, extract, quality gate, OCR fallback and
// validation. It holds no per-file state and is safe for concurrent use.
type Orchestrator struct {
	extractors Extractors
	validator  *ContentValidator
	cfg        OrchestratorConfig
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(extractors Extractors, validator *ContentValidator, cfg OrchestratorConfig) *Orchestrator {
	if cfg.PDFMinChars <= 0 {
		cfg.PDFMinChars = 50
	}
	return &Orchestrator{extractors: extractors, validator: validator, cfg: cfg}
}

// fileRun is the mutable state of one pass through the machine.
type fileRun struct {
	in     domain.FileInput
	format domain.FileFormat
	out    *port.ExtractOutput
	err    error
	result domain.ExtractionResult
}

func (f *fileRun) fail(diag string) state {
	f.result.Status = domain.ExtractionFailed
	f.result.Diagnostic = diag
	return stateDone
}

// Process extracts one file under the per-file timeout. It never returns an error; every
// failure is reported through the result's status and diagnostic.
func (o *Orchestrator) Process(ctx context.Context, index int, in domain.FileInput) domain.ExtractionResult {
	start := time.Now()

	res, err := bounded.Run(ctx, o.cfg.FileTimeout, func(ctx context.Context) (domain.ExtractionResult, error) {
		return o.run(ctx, index, in), nil
	})
	if err != nil {
		diag := DiagTimeout
		if !bounded.IsTimeout(err) {
			diag = err.Error()
		}
		res = domain.ExtractionResult{
			SourceIndex: index,
			Status:      domain.ExtractionFailed,
			Format:      Classify(in.MediaType, in.FileName, in.Data),
			Diagnostic:  diag,
		}
	}
	res.Duration = time.Since(start)

	log.Printf("extraction.Orchestrator.Process: file %d format=%s status=%s method=%s chars=%d duration=%s diag=%q",
		index+1, res.Format, res.Status, res.Method, res.Characters, res.Duration.Round(time.Millisecond), res.Diagnostic)
	return res
}

func (o *Orchestrator) run(ctx context.Context, index int, in domain.FileInput) domain.ExtractionResult {
	f := &fileRun{in: in, result: domain.ExtractionResult{SourceIndex: index}}

	st := stateClassify
	for st != stateDone {
		if err := ctx.Err(); err != nil {
			f.fail(diagnose(err))
			return f.result
		}
		st = o.step(ctx, st, f)
	}
	return f.result
}

func (o *Orchestrator) step(ctx context.Context, st state, f *fileRun) state {
	switch st {
	case stateClassify:
		f.format = Classify(f.in.MediaType, f.in.FileName, f.in.Data)
		f.result.Format = f.format
		if f.format == domain.FormatUnsupported {
			return f.fail(DiagUnsupported)
		}
		return stateExtract

	case stateExtract:
		ext := o.extractorFor(f.format)
		if ext == nil {
			return f.fail(fmt.Sprintf("no extractor configured for %s files", f.format))
		}
		f.out, f.err = ext.Extract(ctx, f.in.Data)
		if f.err == nil && f.out == nil {
			f.err = errors.New("extractor returned no output")
		}
		return stateQualityGate

	case stateQualityGate:
		if f.format == domain.FormatPDF && (f.err != nil || o.belowPDFThreshold(f.out)) {
			if f.err != nil {
				log.Printf("extraction.Orchestrator: file %d direct pdf extraction failed: %v", f.result.SourceIndex+1, f.err)
			}
			return stateOCRFallback
		}
		if f.err != nil {
			return f.fail(diagnose(f.err))
		}
		return stateValidate

	case stateOCRFallback:
		if o.extractors.PDFFallback == nil {
			return f.fail(DiagRescan)
		}
		out, err := o.extractors.PDFFallback.Extract(ctx, f.in.Data)
		if err != nil {
			if errors.Is(err, ocr.ErrOCRTimeout) {
				return f.fail(DiagOCRTimeout)
			}
			log.Printf("extraction.Orchestrator: file %d pdf OCR fallback failed: %v", f.result.SourceIndex+1, err)
			return f.fail(DiagRescan)
		}
		f.out, f.err = out, nil
		return stateValidate

	case stateValidate:
		text := strings.TrimSpace(f.out.Text)
		if v := o.validator.Validate(text); !v.OK {
			f.result.Method = f.out.Method
			f.result.Pages = f.out.Pages
			return f.fail(v.Reason)
		}
		f.result.Status = domain.ExtractionSuccess
		f.result.Method = f.out.Method
		f.result.Pages = f.out.Pages
		f.result.Text = text
		f.result.Characters = len([]rune(text))
		return stateDone
	}
	return stateDone
}

func (o *Orchestrator) extractorFor(format domain.FileFormat) port.TextExtractor {
	switch format {
	case domain.FormatPDF:
		return o.extractors.PDF
	case domain.FormatWordDocument:
		return o.extractors.Document
	case domain.FormatImage:
		return o.extractors.Image
	}
	return nil
}

func (o *Orchestrator) belowPDFThreshold(out *port.ExtractOutput) bool {
	if out == nil {
		return true
	}
	return len([]rune(strings.TrimSpace(out.Text))) < o.cfg.PDFMinChars
}

func diagnose(err error) string {
	switch {
	case errors.Is(err, ocr.ErrOCRTimeout):
		return DiagOCRTimeout
	case bounded.IsTimeout(err):
		return DiagTimeout
	default:
		return err.Error()
	}
}

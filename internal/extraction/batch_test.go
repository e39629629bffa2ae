package extraction_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cverve/internal/domain"
	"cverve/internal/extraction"
	"cverve/internal/extraction/ocr"
	"cverve/internal/port"
	"cverve/mocks"
)

// scriptedProcessor returns canned results keyed by file name.
type scriptedProcessor struct {
	delay time.Duration
	calls atomic.Int32
}

func (p *scriptedProcessor) Process(ctx context.Context, index int, in domain.FileInput) domain.ExtractionResult {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
		}
	}
	if strings.HasPrefix(in.FileName, "bad") {
		return domain.ExtractionResult{SourceIndex: index, Status: domain.ExtractionFailed, Diagnostic: "no text recognized in image"}
	}
	text := "text of " + in.FileName
	return domain.ExtractionResult{SourceIndex: index, Status: domain.ExtractionSuccess, Text: text, Characters: len(text)}
}

func permutations(names []string) [][]string {
	if len(names) <= 1 {
		return [][]string{append([]string(nil), names...)}
	}
	var out [][]string
	for i := range names {
		rest := append(append([]string(nil), names[:i]...), names[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{names[i]}, p...))
		}
	}
	return out
}

func TestAggregator_PreservesInputOrder(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		for _, order := range permutations([]string{"bad.png", "a.pdf", "b.pdf"}) {
			name := fmt.Sprintf("c%d/%s", concurrency, strings.Join(order, ","))
			t.Run(name, func(t *testing.T) {
				agg := extraction.NewAggregator(&scriptedProcessor{}, extraction.AggregatorConfig{Concurrency: concurrency})
				files := make([]domain.FileInput, len(order))
				for i, n := range order {
					files[i] = domain.FileInput{FileName: n}
				}

				batch := agg.Run(context.Background(), files)

				require.Len(t, batch.Results, 3)
				var parts []string
				for i, n := range order {
					assert.Equal(t, i, batch.Results[i].SourceIndex)
					if strings.HasPrefix(n, "bad") {
						assert.Equal(t, domain.ExtractionFailed, batch.Results[i].Status)
						parts = append(parts, fmt.Sprintf("[Error processing file %d: no text recognized in image]", i+1))
					} else {
						assert.Equal(t, domain.ExtractionSuccess, batch.Results[i].Status)
						assert.Equal(t, "text of "+n, batch.Results[i].Text)
						parts = append(parts, "text of "+n)
					}
				}
				assert.Equal(t, strings.Join(parts, "\n\n"), batch.CombinedText)
				assert.Equal(t, 2, batch.SuccessCount)
				assert.Equal(t, 3, batch.TotalCount)
				assert.True(t, batch.Usable(0))
			})
		}
	}
}

func TestAggregator_AllFailedIsUnusable(t *testing.T) {
	agg := extraction.NewAggregator(&scriptedProcessor{}, extraction.AggregatorConfig{})

	batch := agg.Run(context.Background(), []domain.FileInput{{FileName: "bad1"}, {FileName: "bad2"}})

	assert.Equal(t, 0, batch.SuccessCount)
	assert.False(t, batch.Usable(0))
	assert.Contains(t, batch.CombinedText, "[Error processing file 2:")
}

func TestAggregator_RequestBudgetSkipsRemainingFiles(t *testing.T) {
	proc := &scriptedProcessor{delay: 60 * time.Millisecond}
	agg := extraction.NewAggregator(proc, extraction.AggregatorConfig{RequestTimeout: 100 * time.Millisecond})

	files := []domain.FileInput{{FileName: "a"}, {FileName: "b"}, {FileName: "c"}, {FileName: "d"}}
	batch := agg.Run(context.Background(), files)

	assert.True(t, batch.TimedOut)
	assert.Equal(t, int32(2), proc.calls.Load())
	assert.Equal(t, domain.ExtractionSuccess, batch.Results[0].Status)
	for _, r := range batch.Results[2:] {
		assert.Equal(t, domain.ExtractionSkipped, r.Status)
		assert.Equal(t, extraction.DiagTimeout, r.Diagnostic)
	}
	assert.Contains(t, batch.CombinedText, "[Error processing file 4: processing took too long]")
}

func TestCombine_MarkerCannotBreakStripping(t *testing.T) {
	batch := extraction.Combine([]domain.ExtractionResult{
		{SourceIndex: 0, Status: domain.ExtractionFailed, Diagnostic: "weird [nested] message"},
	})

	assert.Equal(t, "[Error processing file 1: weird [nested) message]", batch.CombinedText)
	assert.Empty(t, strings.TrimSpace(domain.StripErrorMarkers(batch.CombinedText)))
}

// A valid text PDF and a corrupt image that OCRs to nothing: one success, one marker, usable.
func TestAggregator_TextPDFAndCorruptImage(t *testing.T) {
	pdfText := strings.Repeat("Experienced accountant. ", 9)[:200]
	pdf := new(mocks.MockTextExtractor)
	pdf.On("Extract", mock.Anything, mock.Anything).Return(&port.ExtractOutput{Text: pdfText, Pages: 1, Method: domain.MethodPDFText}, nil)

	engine := new(mocks.MockOCREngine)
	engine.On("Recognize", mock.Anything, mock.Anything, mock.Anything).Return("", nil)
	fallback := new(mocks.MockTextExtractor)

	images := ocr.NewImageExtractor(engine, nil, port.OCROptions{Language: "eng", PSM: 6, OEM: 1}, time.Second)
	orch := extraction.NewOrchestrator(
		extraction.Extractors{PDF: pdf, Image: images, PDFFallback: fallback},
		extraction.NewContentValidator(10, 0.3),
		extraction.OrchestratorConfig{PDFMinChars: 50, FileTimeout: time.Second},
	)
	agg := extraction.NewAggregator(orch, extraction.AggregatorConfig{RequestTimeout: 5 * time.Second})

	batch := agg.Run(context.Background(), []domain.FileInput{
		{Data: []byte("%PDF-1.4"), MediaType: "application/pdf"},
		{Data: []byte{0xff, 0xd8, 0x00}, MediaType: "image/jpeg"},
	})

	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 2, batch.TotalCount)
	assert.Contains(t, batch.CombinedText, strings.TrimSpace(pdfText))
	assert.Equal(t, 1, strings.Count(batch.CombinedText, "[Error processing file"))
	assert.Contains(t, batch.CombinedText, "[Error processing file 2: no text recognized in image]")
	assert.True(t, batch.Usable(0))
	assert.False(t, batch.TimedOut)
	fallback.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

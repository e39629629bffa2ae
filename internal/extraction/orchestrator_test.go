package extraction_test

import (
	"context"
	"errors"
	"strings"
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

type orchestratorMocks struct {
	pdf      *mocks.MockTextExtractor
	doc      *mocks.MockTextExtractor
	image    *mocks.MockTextExtractor
	fallback *mocks.MockTextExtractor
}

func newOrchestrator(withFallback bool) (*extraction.Orchestrator, orchestratorMocks) {
	m := orchestratorMocks{
		pdf:      new(mocks.MockTextExtractor),
		doc:      new(mocks.MockTextExtractor),
		image:    new(mocks.MockTextExtractor),
		fallback: new(mocks.MockTextExtractor),
	}
	ex := extraction.Extractors{PDF: m.pdf, Document: m.doc, Image: m.image}
	if withFallback {
		ex.PDFFallback = m.fallback
	}
	o := extraction.NewOrchestrator(ex, extraction.NewContentValidator(10, 0.3), extraction.OrchestratorConfig{
		PDFMinChars: 50,
		FileTimeout: time.Second,
	})
	return o, m
}

func pdfOutput(text string) *port.ExtractOutput {
	return &port.ExtractOutput{Text: text, Pages: 1, Method: domain.MethodPDFText}
}

func TestOrchestrator_UnsupportedFails(t *testing.T) {
	o, m := newOrchestrator(true)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("hello"), MediaType: "text/plain"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, domain.FormatUnsupported, res.Format)
	assert.Equal(t, extraction.DiagUnsupported, res.Diagnostic)
	assert.Empty(t, res.Text)
	m.pdf.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	m.image.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestOrchestrator_PDFAboveThresholdSkipsOCR(t *testing.T) {
	for _, n := range []int{50, 51, 400} {
		o, m := newOrchestrator(true)
		text := strings.Repeat("x", n)
		m.pdf.On("Extract", mock.Anything, mock.Anything).Return(pdfOutput(text), nil)

		res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("%PDF"), MediaType: "application/pdf"})

		assert.Equal(t, domain.ExtractionSuccess, res.Status, "length %d", n)
		assert.Equal(t, domain.MethodPDFText, res.Method)
		assert.Equal(t, text, res.Text)
		m.fallback.AssertNumberOfCalls(t, "Extract", 0)
	}
}

func TestOrchestrator_PDFBelowThresholdInvokesOCROnce(t *testing.T) {
	for _, text := range []string{"", "   ", "short text", strings.Repeat("y", 49)} {
		o, m := newOrchestrator(true)
		m.pdf.On("Extract", mock.Anything, mock.Anything).Return(pdfOutput(text), nil)
		m.fallback.On("Extract", mock.Anything, mock.Anything).
			Return(&port.ExtractOutput{Text: "Recovered scanned text from page one", Pages: 2, Method: domain.MethodPDFOCR}, nil)

		res := o.Process(context.Background(), 3, domain.FileInput{Data: []byte("%PDF"), MediaType: "application/pdf"})

		require.Equal(t, domain.ExtractionSuccess, res.Status, "text %q", text)
		assert.Equal(t, domain.MethodPDFOCR, res.Method)
		assert.Equal(t, 2, res.Pages)
		assert.Equal(t, 3, res.SourceIndex)
		m.fallback.AssertNumberOfCalls(t, "Extract", 1)
	}
}

func TestOrchestrator_PDFParseErrorInvokesOCROnce(t *testing.T) {
	o, m := newOrchestrator(true)
	m.pdf.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("opening pdf: malformed xref"))
	m.fallback.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Text: "Text read from the rendered page", Method: domain.MethodPDFOCR}, nil)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("%PDF"), MediaType: "application/pdf"})

	assert.Equal(t, domain.ExtractionSuccess, res.Status)
	m.fallback.AssertNumberOfCalls(t, "Extract", 1)
}

func TestOrchestrator_ScannedPDFWithoutRendererAsksForImages(t *testing.T) {
	o, m := newOrchestrator(false)
	m.pdf.On("Extract", mock.Anything, mock.Anything).Return(pdfOutput(""), nil)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("%PDF"), MediaType: "application/pdf"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, extraction.DiagRescan, res.Diagnostic)
	m.fallback.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	m.image.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestOrchestrator_FallbackFailureAsksForImages(t *testing.T) {
	o, m := newOrchestrator(true)
	m.pdf.On("Extract", mock.Anything, mock.Anything).Return(pdfOutput("tiny"), nil)
	m.fallback.On("Extract", mock.Anything, mock.Anything).Return(nil, ocr.ErrNoText)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("%PDF"), MediaType: "application/pdf"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, extraction.DiagRescan, res.Diagnostic)
	m.fallback.AssertNumberOfCalls(t, "Extract", 1)
}

func TestOrchestrator_FallbackTimeout(t *testing.T) {
	o, m := newOrchestrator(true)
	m.pdf.On("Extract", mock.Anything, mock.Anything).Return(pdfOutput(""), nil)
	m.fallback.On("Extract", mock.Anything, mock.Anything).Return(nil, ocr.ErrOCRTimeout)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("%PDF"), MediaType: "application/pdf"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, extraction.DiagOCRTimeout, res.Diagnostic)
}

func TestOrchestrator_DocumentErrorHasNoFallback(t *testing.T) {
	o, m := newOrchestrator(true)
	m.doc.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("converting document: zip: not a valid zip file"))

	res := o.Process(context.Background(), 1, domain.FileInput{
		Data:      []byte("PK"),
		MediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, domain.FormatWordDocument, res.Format)
	assert.Contains(t, res.Diagnostic, "not a valid zip file")
	m.fallback.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestOrchestrator_ImageSuccess(t *testing.T) {
	o, m := newOrchestrator(true)
	m.image.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Text: "  Job description: backend engineer  ", Pages: 1, Method: domain.MethodImageOCR}, nil)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("jpg"), MediaType: "image/jpeg"})

	assert.Equal(t, domain.ExtractionSuccess, res.Status)
	assert.Equal(t, "Job description: backend engineer", res.Text)
	assert.Equal(t, 33, res.Characters)
}

func TestOrchestrator_ImageEmptyOCRFails(t *testing.T) {
	o, m := newOrchestrator(true)
	m.image.On("Extract", mock.Anything, mock.Anything).Return(nil, ocr.ErrNoText)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("jpg"), MediaType: "image/png"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, ocr.ErrNoText.Error(), res.Diagnostic)
}

func TestOrchestrator_PoorQualityFails(t *testing.T) {
	o, m := newOrchestrator(true)
	m.image.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Text: "~~~ ||| ,,, ... ;;; --- ___", Method: domain.MethodImageOCR}, nil)

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("jpg"), MediaType: "image/png"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Contains(t, res.Diagnostic, "poor quality")
	assert.Empty(t, res.Text)
}

func TestOrchestrator_FileTimeout(t *testing.T) {
	m := new(mocks.MockTextExtractor)
	m.On("Extract", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { time.Sleep(200 * time.Millisecond) }).
		Return(&port.ExtractOutput{Text: "too late to matter at all"}, nil)
	o := extraction.NewOrchestrator(extraction.Extractors{Image: m}, extraction.NewContentValidator(10, 0.3),
		extraction.OrchestratorConfig{FileTimeout: 20 * time.Millisecond})

	res := o.Process(context.Background(), 0, domain.FileInput{Data: []byte("jpg"), MediaType: "image/png"})

	assert.Equal(t, domain.ExtractionFailed, res.Status)
	assert.Equal(t, extraction.DiagTimeout, res.Diagnostic)
	assert.Equal(t, domain.FormatImage, res.Format)
	assert.Less(t, res.Duration, 150*time.Millisecond)
}

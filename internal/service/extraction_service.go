package service

import (
	"context"
	"fmt"
	"log"

	"cverve/internal/domain"
)

// ExtractFileInput is one base64-encoded upload.
type ExtractFileInput struct {
	Data string `json:"data" binding:"required"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// ExtractTextInput is the DTO for extracting text from a batch of uploads.
type ExtractTextInput struct {
	Files    []ExtractFileInput   `json:"files" binding:"required,min=1,dive"`
	FileType domain.UploadPurpose `json:"fileType" binding:"omitempty,oneof=cv jd"`
}

// ExtractTextOutput is the combined text of a usable batch plus per-file outcomes.
type ExtractTextOutput struct {
	ExtractedText string                    `json:"extractedText"`
	FileType      domain.UploadPurpose      `json:"fileType,omitempty"`
	SuccessCount  int                       `json:"successCount"`
	TotalCount    int                       `json:"totalCount"`
	TimedOut      bool                      `json:"timedOut"`
	Results       []domain.ExtractionResult `json:"results"`
}

// BatchRunner processes a batch of files into one aggregated result.
type BatchRunner interface {
	Run(ctx context.Context, files []domain.FileInput) *domain.BatchResult
}

// ExtractionServiceConfig bounds what a single request may submit.
type ExtractionServiceConfig struct {
	MaxFiles      int
	MinBatchChars int
}

// ExtractionService defines the text extraction contract.
type ExtractionService interface {
	ExtractText(ctx context.Context, input ExtractTextInput) (*ExtractTextOutput, error)
}

type extractionService struct {
	runner BatchRunner
	cfg    ExtractionServiceConfig
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(runner BatchRunner, cfg ExtractionServiceConfig) ExtractionService {
	return &extractionService{runner: runner, cfg: cfg}
}

func (s *extractionService) ExtractText(ctx context.Context, input ExtractTextInput) (*ExtractTextOutput, error) {
	if len(input.Files) == 0 {
		return nil, fmt.Errorf("%w: files are required", domain.ErrInvalidInput)
	}
	if s.cfg.MaxFiles > 0 && len(input.Files) > s.cfg.MaxFiles {
		return nil, fmt.Errorf("%w: at most %d files per request", domain.ErrInvalidInput, s.cfg.MaxFiles)
	}

	files := make([]domain.FileInput, len(input.Files))
	for i, f := range input.Files {
		data, uriType, err := decodeBase64(f.Data)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i+1, err)
		}
		mediaType := f.Type
		if mediaType == "" {
			mediaType = uriType
		}
		files[i] = domain.FileInput{Data: data, MediaType: mediaType, FileName: f.Name}
	}

	log.Printf("extractionService.ExtractText: starting text extraction for %d %s file(s)", len(files), purposeLabel(input.FileType))
	batch := s.runner.Run(ctx, files)

	if !batch.Usable(s.cfg.MinBatchChars) {
		log.Printf("extractionService.ExtractText: batch unusable (%d/%d succeeded, timed out: %v)",
			batch.SuccessCount, batch.TotalCount, batch.TimedOut)
		if batch.TimedOut {
			return nil, domain.ErrProcessingTimeout
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionUnusable, firstDiagnostic(batch))
	}

	log.Printf("extractionService.ExtractText: extracted %d characters for %s", len(batch.CombinedText), purposeLabel(input.FileType))
	return &ExtractTextOutput{
		ExtractedText: batch.CombinedText,
		FileType:      input.FileType,
		SuccessCount:  batch.SuccessCount,
		TotalCount:    batch.TotalCount,
		TimedOut:      batch.TimedOut,
		Results:       batch.Results,
	}, nil
}

func purposeLabel(p domain.UploadPurpose) string {
	if p == "" {
		return "unlabelled"
	}
	return string(p)
}

func firstDiagnostic(batch *domain.BatchResult) string {
	for _, r := range batch.Results {
		if r.Diagnostic != "" {
			return r.Diagnostic
		}
	}
	return "no readable text found"
}

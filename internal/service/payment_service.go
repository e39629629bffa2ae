package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"cverve/internal/bounded"
	"cverve/internal/domain"
	"cverve/internal/parser"
	"cverve/internal/port"
	"cverve/internal/validator"
)

// ProcessPaymentInput is the DTO for verifying a payment screenshot.
type ProcessPaymentInput struct {
	UserID         string `json:"userId" binding:"required"`
	ScreenshotData string `json:"screenshotData" binding:"required"`
	ScreenshotType string `json:"screenshotType"`
}

// ProcessPaymentOutput is returned once a payment has been credited.
type ProcessPaymentOutput struct {
	NewBalance    float64            `json:"newBalance"`
	TransactionID string             `json:"transactionId"`
	Amount        float64            `json:"amount"`
	ReceiverName  string             `json:"receiverName"`
	Source        domain.ClaimSource `json:"source"`
}

// PaymentServiceConfig carries the payment pipeline settings.
type PaymentServiceConfig struct {
	TransactionPrefix string
	AcceptedReceivers []string
	ExtractTimeout    time.Duration
	Bucket            string
	ProofKeyPrefix    string
}

// PaymentService defines the payment verification contract.
type PaymentService interface {
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*ProcessPaymentOutput, error)
}

type paymentService struct {
	parser  port.ClaimParser
	ocr     port.TextExtractor
	engine  *validator.Engine
	ledger  PaymentLedger
	storage port.ObjectStorage
	cfg     PaymentServiceConfig
}

// NewPaymentService creates a new PaymentService. ocr and storage may be nil.
func NewPaymentService(
	claimParser port.ClaimParser,
	ocr port.TextExtractor,
	engine *validator.Engine,
	ledger PaymentLedger,
	storage port.ObjectStorage,
	cfg PaymentServiceConfig,
) PaymentService {
	if cfg.TransactionPrefix == "" {
		cfg.TransactionPrefix = "FT"
	}
	return &paymentService{
		parser:  claimParser,
		ocr:     ocr,
		engine:  engine,
		ledger:  ledger,
		storage: storage,
		cfg:     cfg,
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*ProcessPaymentOutput, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id and screenshot are required", domain.ErrInvalidInput)
	}
	img, uriType, err := decodeBase64(input.ScreenshotData)
	if err != nil {
		return nil, err
	}
	declared := input.ScreenshotType
	if declared == "" {
		declared = uriType
	}
	contentType, err := imageContentType(declared, img)
	if err != nil {
		return nil, err
	}

	claim, err := s.extractClaim(ctx, img, contentType)
	if err != nil {
		return nil, err
	}

	if _, err := s.engine.Validate(ctx, claim); err != nil {
		log.Printf("paymentService.ProcessPayment: claim rejected for user %s: %v", userID, err)
		return nil, err
	}

	rec := &domain.PaymentRecord{
		TransactionID: claim.TransactionID,
		UserID:        userID,
		Amount:        claim.Amount,
		ReceiverName:  claim.ReceiverName,
	}
	rec.ProofKey = s.archiveProof(ctx, claim.TransactionID, img, contentType)

	balance, err := s.ledger.RecordPayment(ctx, rec)
	if err != nil {
		s.discardProof(rec.ProofKey)
		if errors.Is(err, domain.ErrDuplicatePayment) {
			log.Printf("paymentService.ProcessPayment: duplicate transaction %s from user %s", rec.TransactionID, userID)
		}
		return nil, err
	}

	return &ProcessPaymentOutput{
		NewBalance:    balance,
		TransactionID: rec.TransactionID,
		Amount:        rec.Amount,
		ReceiverName:  rec.ReceiverName,
		Source:        claim.Source,
	}, nil
}

// extractClaim asks the LLM chain first and falls back to OCR plus the regex extractor.
func (s *paymentService) extractClaim(ctx context.Context, img []byte, contentType string) (*domain.PaymentClaim, error) {
	out, err := bounded.Run(ctx, s.cfg.ExtractTimeout, func(ctx context.Context) (*port.ClaimOutput, error) {
		return s.parser.Parse(ctx, port.ClaimInput{ImageBytes: img, ContentType: contentType})
	})
	if err == nil && out != nil && out.Claim != nil {
		log.Printf("paymentService.extractClaim: claim read by %s (source %s)", out.ModelUsed, out.Claim.Source)
		return out.Claim, nil
	}
	log.Printf("paymentService.extractClaim: LLM extraction failed, trying OCR: %v", err)

	if s.ocr == nil {
		return nil, domain.ErrClaimExtraction
	}
	text, ocrErr := s.ocr.Extract(ctx, img)
	if ocrErr != nil || text == nil {
		log.Printf("paymentService.extractClaim: OCR fallback failed: %v", ocrErr)
		return nil, domain.ErrClaimExtraction
	}
	claim := parser.ExtractClaimManually(text.Text, s.cfg.TransactionPrefix, s.cfg.AcceptedReceivers...)
	if claim == nil {
		log.Printf("paymentService.extractClaim: no payment fields in %d OCR characters", len(text.Text))
		return nil, domain.ErrClaimExtraction
	}
	return claim, nil
}

// archiveProof uploads the screenshot and returns its key, or "" when archiving is off or fails.
// Keys carry a per-upload id so a rejected duplicate never overwrites the original proof.
func (s *paymentService) archiveProof(ctx context.Context, transactionID string, img []byte, contentType string) string {
	if s.storage == nil || s.cfg.Bucket == "" {
		return ""
	}
	key := path.Join(s.cfg.ProofKeyPrefix, transactionID, uuid.New().String()+extensionFor(contentType))
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(img),
		ContentType: contentType,
		Size:        int64(len(img)),
		Metadata:    map[string]string{"transaction-id": transactionID},
	})
	if err != nil {
		log.Printf("paymentService.archiveProof: %v: %v", domain.ErrProofArchiveFailed, err)
		return ""
	}
	return key
}

func (s *paymentService) discardProof(key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, s.cfg.Bucket, key); err != nil {
		log.Printf("paymentService.discardProof: deleting %s: %v", key, err)
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

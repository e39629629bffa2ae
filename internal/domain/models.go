package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileInput is one uploaded file awaiting extraction. It is never persisted.
type FileInput struct {
	Data      []byte
	MediaType string
	FileName  string
}

// ExtractionResult is the outcome of extracting text from a single input file.
type ExtractionResult struct {
	SourceIndex int              `json:"source_index"`
	Status      ExtractionStatus `json:"status"`
	Format      FileFormat       `json:"format"`
	Method      ExtractionMethod `json:"method,omitempty"`
	Text        string           `json:"-"`
	Characters  int              `json:"characters"`
	Pages       int              `json:"pages,omitempty"`
	Diagnostic  string           `json:"diagnostic,omitempty"`
	Duration    time.Duration    `json:"-"`
}

// Succeeded reports whether the file produced usable text.
func (r ExtractionResult) Succeeded() bool {
	return r.Status == ExtractionSuccess
}

// BatchResult aggregates per-file results in input order.
type BatchResult struct {
	Results      []ExtractionResult `json:"results"`
	CombinedText string             `json:"-"`
	SuccessCount int                `json:"success_count"`
	TotalCount   int                `json:"total_count"`
	TimedOut     bool               `json:"timed_out"`
}

var errorMarkerRe = regexp.MustCompile(`\[Error processing file \d+:[^\]]*\]`)

// StripErrorMarkers removes the bracketed per-file failure markers from combined text.
func StripErrorMarkers(s string) string {
	return errorMarkerRe.ReplaceAllString(s, "")
}

// Usable reports whether the batch carries enough real text to hand downstream.
func (b *BatchResult) Usable(minChars int) bool {
	if b.SuccessCount < 1 || b.CombinedText == "" {
		return false
	}
	return len(strings.TrimSpace(StripErrorMarkers(b.CombinedText))) > minChars
}

// PaymentClaim holds the payment fields read from a proof screenshot.
type PaymentClaim struct {
	ReceiverName  string      `json:"receiver_name"`
	Amount        float64     `json:"amount"`
	RawAmount     string      `json:"raw_amount,omitempty"`
	TransactionID string      `json:"payment_id"`
	Source        ClaimSource `json:"source"`
}

// PaymentRecord is the immutable ledger row created once per transaction id.
type PaymentRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Amount        float64   `db:"amount" json:"amount"`
	ReceiverName  string    `db:"receiver_name" json:"receiver_name"`
	ProofKey      string    `db:"proof_key" json:"proof_key,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// UserBalance is a user's credit balance, keyed by the caller-supplied user id (phone number).
type UserBalance struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Balance   float64   `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package port

import (
	"context"

	"cverve/internal/domain"
)

// ClaimInput carries a payment proof image for structured field extraction.
type ClaimInput struct {
	ImageBytes  []byte
	ContentType string
}

// ClaimOutput contains the payment fields read by an LLM provider.
type ClaimOutput struct {
	Claim      *domain.PaymentClaim
	RawContent string
	ModelUsed  string
	PromptUsed string
}

// ClaimParser abstracts LLM-based payment field extraction.
type ClaimParser interface {
	Parse(ctx context.Context, input ClaimInput) (*ClaimOutput, error)
}

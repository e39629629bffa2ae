package validator

import (
	"context"

	"cverve/internal/domain"
	"cverve/internal/validator/payment"
)

// Validator is the interface for a single built-in payment rule.
type Validator interface {
	Validate(ctx context.Context, claim *domain.PaymentClaim) []payment.ValidationResult
	RuleKey() string
	RuleName() string
	Severity() domain.ValidationSeverity
}

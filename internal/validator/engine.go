package validator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cverve/internal/domain"
	"cverve/internal/validator/payment"
)

// ValidationResultEntry is one rule outcome reported back to the caller.
type ValidationResultEntry struct {
	RuleKey       string                    `json:"rule_key"`
	Passed        bool                      `json:"passed"`
	Severity      domain.ValidationSeverity `json:"severity"`
	FieldPath     string                    `json:"field_path"`
	ExpectedValue string                    `json:"expected_value"`
	ActualValue   string                    `json:"actual_value"`
	Message       string                    `json:"message"`
}

// Report is the outcome of validating one claim.
type Report struct {
	Passed  bool                    `json:"passed"`
	Results []ValidationResultEntry `json:"results"`
	Fields  map[string]*FieldStatus `json:"fields"`
}

// RejectionError carries the report of a claim that failed validation.
// It unwraps to domain.ErrPaymentRejected.
type RejectionError struct {
	Report  *Report
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

func (e *RejectionError) Unwrap() error { return domain.ErrPaymentRejected }

// Engine runs every registered rule against a payment claim.
type Engine struct {
	registry *Registry
	rules    payment.Rules
}

// NewEngine creates an engine with the built-in payment rules registered.
func NewEngine(rules payment.Rules) *Engine {
	reg := NewRegistry()
	for _, v := range payment.AllBuiltinValidators(rules) {
		reg.Register(v)
	}
	return &Engine{registry: reg, rules: rules}
}

// NewEngineWithRegistry creates an engine over a caller-supplied registry.
func NewEngineWithRegistry(registry *Registry, rules payment.Rules) *Engine {
	return &Engine{registry: registry, rules: rules}
}

// Validate checks claim against all rules. Any failed error-severity rule rejects the claim
// with a *RejectionError naming the expected proof format.
func (e *Engine) Validate(ctx context.Context, claim *domain.PaymentClaim) (*Report, error) {
	report := &Report{Passed: true}
	var failures []string

	for _, v := range e.registry.All() {
		for _, vr := range v.Validate(ctx, claim) {
			report.Results = append(report.Results, ValidationResultEntry{
				RuleKey:       v.RuleKey(),
				Passed:        vr.Passed,
				Severity:      v.Severity(),
				FieldPath:     vr.FieldPath,
				ExpectedValue: vr.ExpectedValue,
				ActualValue:   vr.ActualValue,
				Message:       vr.Message,
			})
			if !vr.Passed && v.Severity() == domain.ValidationSeverityError {
				report.Passed = false
				failures = append(failures, vr.Message)
			}
		}
	}
	report.Fields = ComputeFieldStatuses(report.Results)

	if report.Passed {
		return report, nil
	}

	log.Printf("validator.Engine: claim rejected (source=%s, payment_id=%q): %s",
		claim.Source, claim.TransactionID, strings.Join(failures, "; "))
	return report, &RejectionError{
		Report:  report,
		Message: fmt.Sprintf("Payment failed: Invalid details from screenshot. %s", e.rules.RejectionMessage()),
	}
}

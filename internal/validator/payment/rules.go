package payment

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cverve/internal/domain"
)

// Rule keys.
const (
	RuleReceiverName      = "payment.receiver_name"
	RuleMinimumAmount     = "payment.minimum_amount"
	RuleTransactionPrefix = "payment.transaction_prefix"
)

// BuiltinValidator wraps a rule function and its metadata for the registry.
type BuiltinValidator struct {
	key  string
	name string
	sev  domain.ValidationSeverity
	fn   func(context.Context, *domain.PaymentClaim) []ValidationResult
}

func (b *BuiltinValidator) Validate(ctx context.Context, claim *domain.PaymentClaim) []ValidationResult {
	return b.fn(ctx, claim)
}
func (b *BuiltinValidator) RuleKey() string                     { return b.key }
func (b *BuiltinValidator) RuleName() string                    { return b.name }
func (b *BuiltinValidator) Severity() domain.ValidationSeverity { return b.sev }

// AllBuiltinValidators returns the receiver, minimum amount and transaction prefix rules.
func AllBuiltinValidators(rules Rules) []*BuiltinValidator {
	return []*BuiltinValidator{
		{key: RuleReceiverName, name: "Receiver Name", sev: domain.ValidationSeverityError, fn: receiverCheck(rules)},
		{key: RuleMinimumAmount, name: "Minimum Amount", sev: domain.ValidationSeverityError, fn: minimumAmountCheck(rules)},
		{key: RuleTransactionPrefix, name: "Transaction Prefix", sev: domain.ValidationSeverityError, fn: prefixCheck(rules)},
	}
}

// NormalizeName lowercases and collapses whitespace.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func receiverCheck(rules Rules) func(context.Context, *domain.PaymentClaim) []ValidationResult {
	accepted := make(map[string]bool, len(rules.AcceptedReceivers))
	for _, r := range rules.AcceptedReceivers {
		accepted[NormalizeName(r)] = true
	}
	expected := strings.Join(rules.AcceptedReceivers, " | ")

	return func(_ context.Context, c *domain.PaymentClaim) []ValidationResult {
		got := NormalizeName(c.ReceiverName)
		res := ValidationResult{
			Passed:        accepted[got],
			FieldPath:     "receiver_name",
			ExpectedValue: expected,
			ActualValue:   c.ReceiverName,
			Message:       "Receiver Name: receiver is an accepted account holder",
		}
		if !res.Passed {
			res.Message = fmt.Sprintf("Receiver Name: %q is not an accepted receiver", c.ReceiverName)
		}
		return []ValidationResult{res}
	}
}

func minimumAmountCheck(rules Rules) func(context.Context, *domain.PaymentClaim) []ValidationResult {
	return func(_ context.Context, c *domain.PaymentClaim) []ValidationResult {
		res := ValidationResult{
			Passed:        c.Amount > 0 && c.Amount >= rules.MinimumAmount,
			FieldPath:     "amount",
			ExpectedValue: fmt.Sprintf(">= %s %s", formatAmount(rules.MinimumAmount), rules.Currency),
			ActualValue:   formatAmount(c.Amount),
			Message:       "Minimum Amount: amount meets the minimum",
		}
		switch {
		case c.Amount <= 0:
			res.ActualValue = c.RawAmount
			res.Message = fmt.Sprintf("Minimum Amount: could not read an amount from %q", c.RawAmount)
		case !res.Passed:
			res.Message = fmt.Sprintf("Minimum Amount: %s is below the minimum of %s %s",
				formatAmount(c.Amount), formatAmount(rules.MinimumAmount), rules.Currency)
		}
		return []ValidationResult{res}
	}
}

func prefixCheck(rules Rules) func(context.Context, *domain.PaymentClaim) []ValidationResult {
	return func(_ context.Context, c *domain.PaymentClaim) []ValidationResult {
		id := strings.TrimSpace(c.TransactionID)
		res := ValidationResult{
			Passed:        len(id) > len(rules.TransactionPrefix) && strings.HasPrefix(id, rules.TransactionPrefix),
			FieldPath:     "payment_id",
			ExpectedValue: rules.TransactionPrefix + "...",
			ActualValue:   id,
			Message:       "Transaction Prefix: payment id has the expected prefix",
		}
		if !res.Passed {
			res.Message = fmt.Sprintf("Transaction Prefix: payment id %q does not start with %s", id, rules.TransactionPrefix)
		}
		return []ValidationResult{res}
	}
}

// RejectionMessage tells the user what a valid proof looks like.
func (r Rules) RejectionMessage() string {
	receiver := "the accepted receiver"
	if len(r.AcceptedReceivers) > 0 {
		receiver = cases.Title(language.English).String(r.AcceptedReceivers[0])
	}
	bank := r.BankName
	if i := strings.Index(bank, " ("); i > 0 {
		bank = bank[:i]
	}
	return fmt.Sprintf("Please ensure the screenshot shows a valid %s payment to %s with at least %s %s and an %s number.",
		bank, receiver, formatAmount(r.MinimumAmount), r.Currency, r.TransactionPrefix)
}

func formatAmount(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

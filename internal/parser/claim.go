package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cverve/internal/domain"
	"cverve/internal/validator/payment"
)

// ErrNoClaimFields is returned when a model response carries none of the payment fields.
var ErrNoClaimFields = errors.New("no payment fields found in model response")

// DecodeClaim parses the model's JSON answer. It tolerates markdown code fences and prose
// around the object, numeric or string amounts, and the "Not found" placeholder.
func DecodeClaim(content string) (*domain.PaymentClaim, error) {
	obj := jsonObject(content)
	if obj == "" {
		return nil, fmt.Errorf("no JSON object in model response (raw: %s)", truncate(content, 200))
	}

	dec := json.NewDecoder(strings.NewReader(obj))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(obj, 200))
	}

	claim := &domain.PaymentClaim{
		ReceiverName:  textField(fields["receiver_name"]),
		TransactionID: strings.ToUpper(strings.ReplaceAll(textField(fields["payment_id"]), " ", "")),
		RawAmount:     textField(fields["amount"]),
		Source:        domain.ClaimSourceLLM,
	}
	if claim.RawAmount != "" {
		if amt, err := payment.ParseAmount(fields["amount"]); err == nil {
			claim.Amount = amt
		}
	}
	if claim.ReceiverName == "" && claim.TransactionID == "" && claim.RawAmount == "" {
		return nil, ErrNoClaimFields
	}
	return claim, nil
}

// ClaimFromContent decodes a model answer, falling back to the regex extractor when the
// answer is not JSON.
func ClaimFromContent(content, prefix string, acceptedReceivers ...string) (*domain.PaymentClaim, error) {
	claim, err := DecodeClaim(content)
	if err == nil {
		return claim, nil
	}
	if manual := ExtractClaimManually(content, prefix, acceptedReceivers...); manual != nil {
		return manual, nil
	}
	return nil, err
}

func jsonObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func textField(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case json.Number:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, NotFound) || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

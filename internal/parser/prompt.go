package parser

import "fmt"

// NotFound is the sentinel the model is told to use for fields missing from the image.
const NotFound = "Not found"

// ClaimPrompt describes the payment proof the model is asked to read.
type ClaimPrompt struct {
	BankName          string
	TransactionPrefix string

	// AcceptedReceivers steer the regex fallback toward a known payee.
	AcceptedReceivers []string
}

// Build returns the extraction prompt for a payment screenshot.
func (c ClaimPrompt) Build() string {
	bank := c.BankName
	if bank == "" {
		bank = "the bank"
	}
	prefix := c.TransactionPrefix
	if prefix == "" {
		prefix = "FT"
	}
	return fmt.Sprintf(`Analyze this payment screenshot from %s and extract the following information. If any information is not present, respond with '%s'.
1. Name of the payment receiver.
2. Amount of money transferred.
3. The payment ID, which starts with "%s".

You must respond with a JSON object only, using exactly these keys: receiver_name, amount, payment_id.
Return ONLY valid JSON with no markdown formatting, no code fences and no explanation.`, bank, NotFound, prefix)
}

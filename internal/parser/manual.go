package parser

import (
	"regexp"
	"strings"

	"cverve/internal/domain"
	"cverve/internal/validator/payment"
)

var (
	// "... has been credited to Yilak Abay" / "Receiver: Yilak Abay Abebe"
	nameAfterKeyword = regexp.MustCompile(`(?i)\b(?:receiver(?:\s+name)?|beneficiary|credited\s+to|transferred\s+to|paid\s+to|to\s+account\s+of|to)\b\s*[:\-]?\s*([A-Za-z]+(?:[ \t]+[A-Za-z]+){1,2})`)

	// "Yilak Abay has received ..."
	nameBeforeKeyword = regexp.MustCompile(`([A-Z][A-Za-z]+(?:[ \t]+[A-Z][A-Za-z]+){1,2})[ \t]+(?:has[ \t]+)?received`)

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ETB|Birr|Br\.?)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
		regexp.MustCompile(`(?i)([0-9][0-9,]*(?:\.[0-9]{1,2})?)\s*(?:ETB|Birr|Br\b)`),
		regexp.MustCompile(`(?i)amount\s*[:\-]?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	}
)

// nameStopWords end a captured receiver name.
var nameStopWords = map[string]bool{
	"account": true, "acct": true, "on": true, "with": true, "for": true, "from": true,
	"the": true, "amount": true, "etb": true, "birr": true, "ref": true, "reference": true,
}

// ExtractClaimManually pulls payment fields out of free text with fixed patterns:
// a name before or after a receiver keyword, a currency amount and a prefixed id.
// When accepted receivers are given, a candidate name matching one of them wins over
// earlier candidates. It returns nil when neither an amount nor an id is found.
func ExtractClaimManually(text, prefix string, acceptedReceivers ...string) *domain.PaymentClaim {
	if prefix == "" {
		prefix = "FT"
	}
	idPattern := regexp.MustCompile(`(?i)\b(` + regexp.QuoteMeta(prefix) + `[A-Z0-9]{6,})\b`)

	claim := &domain.PaymentClaim{Source: domain.ClaimSourceManual}
	if m := idPattern.FindStringSubmatch(text); m != nil {
		claim.TransactionID = strings.ToUpper(m[1])
	}
	for _, re := range amountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if amt, err := payment.ParseAmount(m[1]); err == nil {
				claim.Amount = amt
				claim.RawAmount = m[1]
				break
			}
		}
	}
	claim.ReceiverName = receiverName(text, acceptedReceivers)

	if claim.TransactionID == "" && claim.RawAmount == "" {
		return nil
	}
	return claim
}

// receiverName returns the first candidate that names an accepted receiver, else the
// first candidate found.
func receiverName(text string, accepted []string) string {
	candidates := receiverCandidates(text)
	if len(candidates) == 0 {
		return ""
	}

	known := make(map[string]bool, len(accepted))
	for _, a := range accepted {
		known[payment.NormalizeName(a)] = true
	}
	for _, c := range candidates {
		if name := acceptedPrefix(c, known); name != "" {
			return name
		}
	}
	return candidates[0]
}

// receiverCandidates lists names in match order, "X received" forms first.
func receiverCandidates(text string) []string {
	var out []string
	for _, m := range nameBeforeKeyword.FindAllStringSubmatch(text, -1) {
		if name := trimName(m[1]); name != "" {
			out = append(out, name)
		}
	}
	for _, m := range nameAfterKeyword.FindAllStringSubmatch(text, -1) {
		if name := trimName(m[1]); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// acceptedPrefix returns the longest leading run of words in name that is a known receiver.
func acceptedPrefix(name string, known map[string]bool) string {
	if len(known) == 0 {
		return ""
	}
	words := strings.Fields(name)
	for n := len(words); n > 0; n-- {
		candidate := strings.Join(words[:n], " ")
		if known[payment.NormalizeName(candidate)] {
			return candidate
		}
	}
	return ""
}

func trimName(s string) string {
	var kept []string
	for _, w := range strings.Fields(s) {
		if nameStopWords[strings.ToLower(w)] {
			break
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

package extraction

import (
	"fmt"
	"strings"
	"unicode"
)

// Verdict is the outcome of a readability check.
type Verdict struct {
	OK      bool
	Length  int
	Density float64
	Reason  string
}

// ContentValidator decides whether extracted text is readable enough to keep.
type ContentValidator struct {
	minChars   int
	minDensity float64
}

// NewContentValidator creates a validator. Non-positive arguments select the defaults
// (10 characters, 0.3 alphanumeric density).
func NewContentValidator(minChars int, minDensity float64) *ContentValidator {
	if minChars <= 0 {
		minChars = 10
	}
	if minDensity <= 0 {
		minDensity = 0.3
	}
	return &ContentValidator{minChars: minChars, minDensity: minDensity}
}

// Validate checks trimmed length and the share of letters and digits over all runes.
func (v *ContentValidator) Validate(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	var total, alnum int
	for _, r := range trimmed {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}

	verdict := Verdict{Length: total}
	if total > 0 {
		verdict.Density = float64(alnum) / float64(total)
	}

	switch {
	case total < v.minChars:
		verdict.Reason = fmt.Sprintf("poor quality: only %d characters extracted", total)
	case verdict.Density < v.minDensity:
		verdict.Reason = fmt.Sprintf("poor quality: text is %.0f%% letters and digits", verdict.Density*100)
	default:
		verdict.OK = true
	}
	return verdict
}

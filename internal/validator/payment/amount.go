package payment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmount normalizes an amount as returned by OCR or an LLM. Strings keep only digits
// and the first decimal point that follows a digit, so "1,500.00 ETB" becomes 1500.
func ParseAmount(v any) (float64, error) {
	switch a := v.(type) {
	case float64:
		return checkFinite(a)
	case float32:
		return checkFinite(float64(a))
	case int:
		return float64(a), nil
	case int64:
		return float64(a), nil
	case json.Number:
		return ParseAmount(a.String())
	case string:
		return parseAmountString(a)
	case nil:
		return 0, fmt.Errorf("amount is missing")
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}

func parseAmountString(s string) (float64, error) {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot && b.Len() > 0:
			seenDot = true
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSuffix(b.String(), ".")
	if cleaned == "" {
		return 0, fmt.Errorf("amount %q has no digits", s)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return checkFinite(f)
}

func checkFinite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount is not a finite number")
	}
	return f, nil
}

package payment_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cverve/internal/validator/payment"
)

func TestParseAmount_NormalizesToSameValue(t *testing.T) {
	for _, in := range []any{"1,500.00 ETB", "1500", 1500.0, 1500, json.Number("1500"), "ETB 1,500", "Br. 1500.00"} {
		got, err := payment.ParseAmount(in)
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, 1500.0, got, "input %v", in)
	}
}

func TestParseAmount_KeepsOnlyFirstDecimalPoint(t *testing.T) {
	got, err := payment.ParseAmount("12.50.3")
	require.NoError(t, err)
	assert.Equal(t, 12.503, got)
}

func TestParseAmount_Failures(t *testing.T) {
	for _, in := range []any{"abc", "", ".", "Not found", nil, true, math.NaN(), math.Inf(1)} {
		_, err := payment.ParseAmount(in)
		assert.Error(t, err, "input %v", in)
	}
}

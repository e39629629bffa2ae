package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cverve/internal/domain"
	"cverve/internal/parser"
)

func TestDecodeClaim_FencedJSON(t *testing.T) {
	content := "```json\n{\"receiver_name\": \"Yilak Abay\", \"amount\": 50, \"payment_id\": \"ft 1234 5678\"}\n```"

	claim, err := parser.DecodeClaim(content)

	require.NoError(t, err)
	assert.Equal(t, "Yilak Abay", claim.ReceiverName)
	assert.Equal(t, 50.0, claim.Amount)
	assert.Equal(t, "50", claim.RawAmount)
	assert.Equal(t, "FT12345678", claim.TransactionID)
	assert.Equal(t, domain.ClaimSourceLLM, claim.Source)
}

func TestDecodeClaim_StringAmount(t *testing.T) {
	claim, err := parser.DecodeClaim(`Here you go: {"receiver_name":"Yilak Abay","amount":"ETB 1,200.50","payment_id":"FT99887766"} Thanks.`)

	require.NoError(t, err)
	assert.InDelta(t, 1200.50, claim.Amount, 0.0001)
	assert.Equal(t, "ETB 1,200.50", claim.RawAmount)
}

func TestDecodeClaim_NotFoundPlaceholders(t *testing.T) {
	claim, err := parser.DecodeClaim(`{"receiver_name":"Not found","amount":"Not found","payment_id":"FT99887766"}`)

	require.NoError(t, err)
	assert.Empty(t, claim.ReceiverName)
	assert.Empty(t, claim.RawAmount)
	assert.Zero(t, claim.Amount)
	assert.Equal(t, "FT99887766", claim.TransactionID)
}

func TestDecodeClaim_AllFieldsMissing(t *testing.T) {
	_, err := parser.DecodeClaim(`{"receiver_name":"Not found","amount":null,"payment_id":"n/a"}`)
	assert.ErrorIs(t, err, parser.ErrNoClaimFields)
}

func TestDecodeClaim_NoJSON(t *testing.T) {
	_, err := parser.DecodeClaim("I cannot read this image.")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestDecodeClaim_MalformedJSON(t *testing.T) {
	_, err := parser.DecodeClaim(`{"receiver_name": "Yilak Abay", "amount": }`)
	assert.Error(t, err)
}

func TestClaimFromContent_FallsBackToManual(t *testing.T) {
	content := "The receipt shows ETB 75 paid to Yilak Abay, reference FT11223344"

	claim, err := parser.ClaimFromContent(content, "FT")

	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSourceManual, claim.Source)
	assert.Equal(t, 75.0, claim.Amount)
	assert.Equal(t, "FT11223344", claim.TransactionID)
	assert.Equal(t, "Yilak Abay", claim.ReceiverName)
}

func TestClaimFromContent_NothingRecoverable(t *testing.T) {
	_, err := parser.ClaimFromContent("blurry picture of a cat", "FT")
	assert.Error(t, err)
}

package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cverve/internal/config"
	"cverve/internal/parser"
	"cverve/internal/parser/gemini"
	"cverve/internal/port"
)

func newTestParser(serverURL string) *gemini.Parser {
	cfg := &config.ParserProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
	}
	return gemini.NewParserWithEndpoint(cfg, parser.ClaimPrompt{BankName: "CBE", TransactionPrefix: "FT"}, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestParser_Parse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)
		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/jpeg", inline["mime_type"])

		_ = json.NewEncoder(w).Encode(successResponse(`{"receiver_name":"Yilak Abay","amount":120,"payment_id":"FT55443322"}`))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), port.ClaimInput{ImageBytes: []byte("x"), ContentType: "image/jpg"})

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
	assert.Equal(t, 120.0, out.Claim.Amount)
	assert.Equal(t, "FT55443322", out.Claim.TransactionID)
}

func TestParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ClaimInput{ImageBytes: []byte("x"), ContentType: "image/png"})

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
}

func TestParser_Parse_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ClaimInput{ImageBytes: []byte("x"), ContentType: "image/png"})
	assert.Error(t, err)
}

func TestParser_Parse_UnsupportedType(t *testing.T) {
	_, err := newTestParser("http://127.0.0.1:0").Parse(context.Background(), port.ClaimInput{ImageBytes: []byte("x"), ContentType: "text/plain"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

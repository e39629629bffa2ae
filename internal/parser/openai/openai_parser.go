package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cverve/internal/config"
	"cverve/internal/parser"
	"cverve/internal/port"
)

const (
	apiURL = "https://api.deepseek.com/v1/chat/completions"
)

// Parser implements port.ClaimParser against any OpenAI-compatible Chat Completions API
// (DeepSeek by default).
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	prompt   parser.ClaimPrompt
	client   *http.Client
}

// NewParser creates a chat-completions claim parser from a provider config.
func NewParser(cfg *config.ParserProviderConfig, prompt parser.ClaimPrompt) *Parser {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newParser(cfg, prompt, endpoint)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, prompt parser.ClaimPrompt, endpoint string) *Parser {
	return newParser(cfg, prompt, endpoint)
}

func newParser(cfg *config.ParserProviderConfig, prompt parser.ClaimPrompt, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = "deepseek-vl"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		prompt:   prompt,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ClaimInput) (*port.ClaimOutput, error) {
	prompt := p.prompt.Build()

	contentBlocks, err := buildContentBlocks(input, prompt)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":      p.model,
		"max_tokens": 1024,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling chat completions API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("chat completions API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parser.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, parser.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model, prompt, p.prompt)
}

func buildContentBlocks(input port.ClaimInput, prompt string) ([]map[string]interface{}, error) {
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, fmt.Errorf("unsupported content type for parsing: %s", input.ContentType)
	}
	encoded := base64.StdEncoding.EncodeToString(input.ImageBytes)
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, encoded)

	return []map[string]interface{}{
		{
			"type": "text",
			"text": prompt,
		},
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		},
	}, nil
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string, cp parser.ClaimPrompt) (*port.ClaimOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	text := resp.Choices[0].Message.Content
	claim, err := parser.ClaimFromContent(text, cp.TransactionPrefix, cp.AcceptedReceivers...)
	if err != nil {
		return nil, err
	}

	return &port.ClaimOutput{
		Claim:      claim,
		RawContent: text,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}

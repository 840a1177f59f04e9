package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fintelops/synthex/internal/common"
)

// anthropicClient implements the Client interface for the Anthropic API.
type anthropicClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 600
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// GenerateNarrative sends a narrative request to Anthropic.
func (c *anthropicClient) GenerateNarrative(ctx context.Context, prompt string) (NarrativeResponse, error) {
	systemPrompt := "You are a financial intelligence analyst. Rewrite the supplied decision summary as a concise analyst narrative. Never change any number, scenario identifier, or recommendation. Respond only with a JSON object containing narrative and confidence fields."

	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", strings.NewReader(string(jsonBody)))
	if err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NarrativeResponse{}, fmt.Errorf("%w: %v", common.ErrEnrichmentUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NarrativeResponse{}, fmt.Errorf("%w: reading response: %v", common.ErrEnrichmentUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return NarrativeResponse{}, fmt.Errorf("anthropic API throttled: %w", common.ErrRateLimit)
	case resp.StatusCode >= http.StatusInternalServerError:
		return NarrativeResponse{}, fmt.Errorf("%w: anthropic API status %d", common.ErrEnrichmentUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		// Client-side failures (bad key, malformed request) will not
		// improve on retry.
		return NarrativeResponse{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: anthropic API status %d: %s", common.ErrEnrichmentFailed, resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return NarrativeResponse{}, fmt.Errorf("no content in response")
	}

	return parseNarrative(response.Content[0].Text)
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	Model        string `json:"model"`
	StopReason   string `json:"stop_reason"`
	StopSequence string `json:"stop_sequence"`
	Content      []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

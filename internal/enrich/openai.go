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

// openAIClient implements the Client interface for the OpenAI API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4-turbo-preview"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 600
	}

	return &openAIClient{
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

// GenerateNarrative sends a narrative request to OpenAI.
func (c *openAIClient) GenerateNarrative(ctx context.Context, prompt string) (NarrativeResponse, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a financial intelligence analyst. Rewrite the supplied decision summary as a concise analyst narrative without changing any number, scenario identifier, or recommendation. You MUST respond with ONLY a valid JSON object containing narrative and confidence fields. Start your response directly with { and end with }.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return NarrativeResponse{}, fmt.Errorf("OpenAI API throttled: %w", common.ErrRateLimit)
	case resp.StatusCode >= http.StatusInternalServerError:
		return NarrativeResponse{}, fmt.Errorf("%w: OpenAI API status %d", common.ErrEnrichmentUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		// Client-side failures (bad key, malformed request) will not
		// improve on retry.
		return NarrativeResponse{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: OpenAI API status %d: %s", common.ErrEnrichmentFailed, resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return NarrativeResponse{}, fmt.Errorf("no completion choices returned")
	}

	return parseNarrative(response.Choices[0].Message.Content)
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

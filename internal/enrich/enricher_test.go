package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintelops/synthex/internal/common"
	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/service"
)

// stubClient lets tests script provider behavior. The first failures calls
// return a transient provider error before the scripted response applies.
type stubClient struct {
	response NarrativeResponse
	err      error
	failures int
	calls    int
}

func (s *stubClient) GenerateNarrative(_ context.Context, _ string) (NarrativeResponse, error) {
	s.calls++
	if s.calls <= s.failures {
		return NarrativeResponse{}, fmt.Errorf("%w: status 503", common.ErrEnrichmentUnavailable)
	}
	return s.response, s.err
}

func sampleDecision() *model.FusedDecision {
	return &model.FusedDecision{
		TacticalPriority:  model.PriorityHigh,
		RecommendedAction: "Trigger early payment incentive for client client-123",
		Explanation:       "Prioritize A selected by multi-strategy consensus.",
		ConfidenceScore:   0.71,
		MetaFusion: model.MetaFusion{
			RecommendedScenarioID: "A",
			AgreementLevel:        2.0 / 3.0,
		},
		WeakSignalAlert: []model.WeakSignal{
			{SignalType: model.SignalBudgetLiquiditySqueeze, RiskLevel: model.RiskCritical, Description: "Only 5.0% budget remaining"},
		},
	}
}

func newTestEnricher(client Client) *Enricher {
	return &Enricher{
		client:  client,
		limiter: newRateLimiter(600),
		timeout: time.Second,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
}

func TestEnricher_ReplacesExplanation(t *testing.T) {
	client := &stubClient{response: NarrativeResponse{Narrative: "Analyst narrative.", Confidence: 0.9}}
	enricher := newTestEnricher(client)
	defer enricher.Close()

	decision := sampleDecision()
	narrative, err := enricher.EnrichExplanation(context.Background(), decision)
	require.NoError(t, err)

	assert.Equal(t, "Analyst narrative.", narrative)
	assert.Equal(t, 1, client.calls)
}

func TestEnricher_RetriesTransientProviderFailure(t *testing.T) {
	client := &stubClient{
		failures: 1,
		response: NarrativeResponse{Narrative: "Recovered narrative.", Confidence: 0.8},
	}
	enricher := newTestEnricher(client)
	defer enricher.Close()

	narrative, err := enricher.EnrichExplanation(context.Background(), sampleDecision())
	require.NoError(t, err)

	assert.Equal(t, "Recovered narrative.", narrative)
	assert.Equal(t, 2, client.calls)
}

func TestEnricher_TerminalProviderFailureNotRetried(t *testing.T) {
	client := &stubClient{err: &common.RetryableError{
		Err:       fmt.Errorf("%w: status 401", common.ErrEnrichmentFailed),
		Retryable: false,
	}}
	enricher := newTestEnricher(client)
	defer enricher.Close()

	decision := sampleDecision()
	narrative, err := enricher.EnrichExplanation(context.Background(), decision)
	require.NoError(t, err, "enrichment failure must never be fatal")

	assert.Equal(t, decision.Explanation, narrative)
	assert.Equal(t, 1, client.calls)
}

func TestEnricher_KeepsTemplateOnFailure(t *testing.T) {
	client := &stubClient{err: errors.New("provider down")}
	enricher := newTestEnricher(client)
	defer enricher.Close()

	decision := sampleDecision()
	narrative, err := enricher.EnrichExplanation(context.Background(), decision)
	require.NoError(t, err, "enrichment failure must never be fatal")

	assert.Equal(t, decision.Explanation, narrative)
}

func TestEnricher_KeepsTemplateOnEmptyNarrative(t *testing.T) {
	enricher := newTestEnricher(&stubClient{response: NarrativeResponse{Narrative: "   "}})
	defer enricher.Close()

	decision := sampleDecision()
	narrative, err := enricher.EnrichExplanation(context.Background(), decision)
	require.NoError(t, err)

	assert.Equal(t, decision.Explanation, narrative)
}

func TestTemplateClient_NeverRewrites(t *testing.T) {
	enricher, err := New(Config{Provider: "template"})
	require.NoError(t, err)
	defer enricher.Close()

	decision := sampleDecision()
	narrative, err := enricher.EnrichExplanation(context.Background(), decision)
	require.NoError(t, err)

	assert.Equal(t, decision.Explanation, narrative)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(sampleDecision())

	assert.Contains(t, prompt, "Recommended scenario: A")
	assert.Contains(t, prompt, "Trigger early payment incentive")
	assert.Contains(t, prompt, "Budget_Liquidity_Squeeze")
	assert.Contains(t, prompt, "Prioritize A selected by multi-strategy consensus.")
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		wantIs error
	}{
		{name: "default is template", cfg: Config{}},
		{name: "explicit template", cfg: Config{Provider: "template"}},
		{name: "anthropic requires key", cfg: Config{Provider: "anthropic"}, wantIs: common.ErrMissingConfig},
		{name: "openai requires key", cfg: Config{Provider: "openai"}, wantIs: common.ErrMissingConfig},
		{name: "anthropic with key", cfg: Config{Provider: "anthropic", APIKey: "k"}},
		{name: "openai with key", cfg: Config{Provider: "openai", APIKey: "k"}},
		{name: "unknown provider", cfg: Config{Provider: "oracle"}, wantIs: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestParseNarrative(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "plain json",
			content: `{"narrative": "All clear.", "confidence": 0.8}`,
			want:    "All clear.",
		},
		{
			name:    "fenced json",
			content: "```json\n{\"narrative\": \"All clear.\", \"confidence\": 0.8}\n```",
			want:    "All clear.",
		},
		{
			name:    "missing narrative",
			content: `{"confidence": 0.8}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: "All clear.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseNarrative(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Narrative)
		})
	}
}

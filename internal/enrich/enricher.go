// Package enrich rewrites the engine's deterministic decision explanation
// into an analyst-quality narrative via an external model provider. Numbers,
// scenario identifiers, and the recommendation itself are never altered;
// when the provider is unavailable the template explanation stands.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fintelops/synthex/internal/common"
	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/service"
)

// DefaultTimeout bounds a single enrichment call end to end.
const DefaultTimeout = 20 * time.Second

// Enricher wraps a narrative client with rate limiting, retries, and a
// template fallback. It implements service.Enricher.
type Enricher struct {
	client    Client
	limiter   *rateLimiter
	timeout   time.Duration
	retryOpts service.RetryOptions
}

// New creates an enricher around the configured provider.
func New(cfg Config) (*Enricher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Enricher{
		client:  client,
		limiter: newRateLimiter(cfg.RequestsPerMinute),
		timeout: timeout,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// EnrichExplanation returns an analyst narrative for the decision, or the
// decision's own explanation when the provider produces nothing usable.
// Enrichment failure is never fatal.
func (e *Enricher) EnrichExplanation(ctx context.Context, decision *model.FusedDecision) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.limiter.wait(ctx); err != nil {
		slog.Warn("Enrichment rate limit wait canceled, keeping template explanation", "error", err)
		return decision.Explanation, nil
	}

	prompt := buildPrompt(decision)

	var response NarrativeResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		response, callErr = e.client.GenerateNarrative(ctx, prompt)
		return callErr
	}, e.retryOpts)
	if err != nil {
		slog.Warn("Enrichment failed, keeping template explanation", "error", err)
		return decision.Explanation, nil
	}

	narrative := strings.TrimSpace(response.Narrative)
	if narrative == "" {
		return decision.Explanation, nil
	}

	return narrative, nil
}

// Close releases the enricher's rate limiter.
func (e *Enricher) Close() {
	e.limiter.Close()
}

// buildPrompt renders the decision into the provider prompt. The template
// explanation is included as the source of truth the narrative must preserve.
func buildPrompt(decision *model.FusedDecision) string {
	var b strings.Builder

	b.WriteString("Rewrite the following decision summary as a short analyst narrative.\n")
	b.WriteString("Preserve every number, scenario identifier, and the recommendation exactly.\n\n")

	fmt.Fprintf(&b, "Priority: %s\n", decision.TacticalPriority)
	fmt.Fprintf(&b, "Recommended action: %s\n", decision.RecommendedAction)
	fmt.Fprintf(&b, "Recommended scenario: %s\n", decision.MetaFusion.RecommendedScenarioID)
	fmt.Fprintf(&b, "Confidence: %.2f (strategy agreement %.0f%%)\n",
		decision.ConfidenceScore, decision.MetaFusion.AgreementLevel*100)
	fmt.Fprintf(&b, "Projected outcome: %.1f%% cash flow, %.1f%% margin over %d days (probability %.2f)\n",
		decision.PredictedOutcome.CashFlowImpactPct,
		decision.PredictedOutcome.MarginImpactPct,
		decision.PredictedOutcome.TimeToImpactDays,
		decision.PredictedOutcome.Probability)

	if len(decision.WeakSignalAlert) > 0 {
		b.WriteString("Weak signals:\n")
		for _, s := range decision.WeakSignalAlert {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", s.RiskLevel, s.SignalType, s.Description)
		}
	}

	b.WriteString("\nDecision summary:\n")
	b.WriteString(decision.Explanation)
	b.WriteString("\n\nRespond with a JSON object: {\"narrative\": \"...\", \"confidence\": 0.0}\n")

	return b.String()
}

package enrich

import (
	"context"
	"time"
)

// Client defines the interface for narrative providers.
type Client interface {
	GenerateNarrative(ctx context.Context, prompt string) (NarrativeResponse, error)
}

// NarrativeResponse contains the provider's generated narrative.
type NarrativeResponse struct {
	Narrative  string
	Confidence float64
}

// Config holds provider configuration for the enricher.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
	Timeout           time.Duration
}

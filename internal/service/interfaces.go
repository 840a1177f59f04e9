// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/fintelops/synthex/internal/model"
)

// DataSource supplies financial snapshots for clients. Implementations load
// from dossier files today; ERP connectors implement the same contract.
type DataSource interface {
	GetFinancialData(ctx context.Context, clientID string) (*model.FinancialData, error)
}

// GraphIntelligence supplies knowledge-graph context for a client: parent
// entity status, episodic memory matches, and external risk signals.
type GraphIntelligence interface {
	GetContext(ctx context.Context, clientID string) (*model.KnowledgeGraphContext, error)
}

// ScenarioSimulator produces candidate scenario simulations for a client's
// current situation.
type ScenarioSimulator interface {
	Simulate(ctx context.Context, clientID string) ([]model.ScenarioSimulation, error)
}

// Enricher rewrites a fused decision's explanation into analyst-quality
// narrative. Implementations must not change any numeric field of the
// decision; when enrichment fails the caller keeps the template explanation.
type Enricher interface {
	EnrichExplanation(ctx context.Context, decision *model.FusedDecision) (string, error)
}

// BatchStats shows the results of a batch synthesis run.
type BatchStats struct {
	TotalDossiers int
	Synthesized   int
	Failed        int
	Enriched      int
	Duration      time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

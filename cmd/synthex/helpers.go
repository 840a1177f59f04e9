package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/fintelops/synthex/internal/config"
	"github.com/fintelops/synthex/internal/dossier"
	"github.com/fintelops/synthex/internal/enrich"
	"github.com/fintelops/synthex/internal/fusion"
	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/service"
)

// loadFusionConfig resolves the engine configuration: a named preset wins,
// otherwise the viper config (file, environment) applies over defaults.
func loadFusionConfig(preset string) (config.FusionConfig, error) {
	if preset != "" {
		return config.PresetByName(preset)
	}
	return config.Load(viper.GetViper())
}

// createEnricher builds the narrative enricher from viper configuration. The
// offline template provider is the default.
func createEnricher() (*enrich.Enricher, error) {
	cfg := enrich.Config{
		Provider:          viper.GetString("enrichment.provider"),
		APIKey:            viper.GetString("enrichment.api_key"),
		Model:             viper.GetString("enrichment.model"),
		Temperature:       viper.GetFloat64("enrichment.temperature"),
		MaxTokens:         viper.GetInt("enrichment.max_tokens"),
		RequestsPerMinute: viper.GetInt("enrichment.requests_per_minute"),
		Timeout:           viper.GetDuration("enrichment.timeout"),
	}
	return enrich.New(cfg)
}

// synthesizeInputs runs one client's inputs through the engine. When
// Dempster-Shafer fusion hits total conflict, the run is retried with the
// remaining strategies renormalized, so a contradictory evidence set still
// yields a decision.
func synthesizeInputs(cfg config.FusionConfig, financial model.FinancialData, graph model.KnowledgeGraphContext, scenarios []model.ScenarioSimulation) (*model.FusedDecision, error) {
	engine, err := fusion.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	decision, err := engine.Synthesize(financial, graph, scenarios)
	if err != nil {
		var conflictErr *fusion.FusionConflictError
		if !errors.As(err, &conflictErr) {
			return nil, err
		}

		slog.Warn("Total evidence conflict, retrying without Dempster-Shafer fusion",
			"client_id", financial.ClientID,
			"conflict", conflictErr.Conflict)

		engine, err = fusion.NewEngine(cfg.WithoutDST())
		if err != nil {
			return nil, err
		}
		decision, err = engine.Synthesize(financial, graph, scenarios)
		if err != nil {
			return nil, err
		}
	}

	return decision, nil
}

// synthesizeDossier is the single-dossier path used by the synthesize command.
func synthesizeDossier(cfg config.FusionConfig, d *dossier.Dossier) (*model.FusedDecision, error) {
	return synthesizeInputs(cfg, d.Financial, d.Graph, d.Scenarios)
}

// synthesizeClient pulls one client's inputs through the capability
// contracts, so batch runs treat file-backed stores and live upstreams alike.
func synthesizeClient(ctx context.Context, cfg config.FusionConfig, src service.DataSource, graph service.GraphIntelligence, sim service.ScenarioSimulator, clientID string) (*model.FusedDecision, error) {
	financial, err := src.GetFinancialData(ctx, clientID)
	if err != nil {
		return nil, err
	}
	kg, err := graph.GetContext(ctx, clientID)
	if err != nil {
		return nil, err
	}
	scenarios, err := sim.Simulate(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return synthesizeInputs(cfg, *financial, *kg, scenarios)
}

// enrichDecision swaps in the analyst narrative when enrichment is enabled.
// Failures keep the template explanation; the decision is never lost.
func enrichDecision(ctx context.Context, enricher service.Enricher, decision *model.FusedDecision) bool {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	narrative, err := enricher.EnrichExplanation(ctx, decision)
	if err != nil {
		slog.Warn("Enrichment failed", "error", err)
		return false
	}

	enriched := narrative != decision.Explanation
	decision.Explanation = narrative
	return enriched
}

// printJSON writes the decision to stdout as indented JSON.
func printJSON(decision *model.FusedDecision) error {
	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

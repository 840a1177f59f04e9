package fusion

import (
	"log/slog"
	"strings"

	"github.com/fintelops/synthex/internal/config"
	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/signal"
)

// Engine runs the full synthesis pipeline: weak signal detection, the
// configured fusion strategies, meta-fusion, and decision assembly.
//
// An Engine is immutable after construction and safe for concurrent use;
// every Synthesize call is an independent pure function of its inputs.
type Engine struct {
	cfg      config.FusionConfig
	detector *signal.Detector
	weighted *WeightedStrategy
	dst      *DempsterShaferStrategy
	bayesian *BayesianStrategy
}

// NewEngine validates the configuration and builds an engine. Configuration
// problems surface here, before any synthesis call.
func NewEngine(cfg config.FusionConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg: cfg,
		detector: signal.NewDetector(signal.Thresholds{
			ProductionSlowdown: cfg.ProductionSlowdownThreshold,
			BudgetCritical:     cfg.BudgetCriticalThreshold,
		}),
		weighted: NewWeightedStrategy(cfg.RiskWeight, cfg.CriticalRiskBoost, cfg.MaxRiskWeight),
		dst:      NewDempsterShaferStrategy(),
		bayesian: NewBayesianStrategy(),
	}, nil
}

// Synthesize fuses the financial snapshot, graph context, and candidate
// scenarios into a single tactical decision. Strategies with a zero weight
// are skipped; a total Dempster-Shafer contradiction is returned as a
// *FusionConflictError, which the caller may recover from by re-running with
// config.WithoutDST().
func (e *Engine) Synthesize(financial model.FinancialData, graph model.KnowledgeGraphContext, scenarios []model.ScenarioSimulation) (*model.FusedDecision, error) {
	if err := validateInputs(financial, scenarios); err != nil {
		return nil, err
	}

	weakSignals := e.detector.Detect(financial, graph)
	agg := e.detector.Aggregate(financial, graph, scenarios)

	slog.Debug("Weak signal detection complete",
		"client_id", financial.ClientID,
		"signals", len(weakSignals),
		"financial_stress", agg.FinancialStress)

	in := Input{
		Financial:   financial,
		Graph:       graph,
		Scenarios:   scenarios,
		WeakSignals: weakSignals,
	}

	weights := map[model.StrategyName]float64{
		model.StrategyWeighted:       e.cfg.StrategyWeights.Weighted,
		model.StrategyDempsterShafer: e.cfg.StrategyWeights.DempsterShafer,
		model.StrategyBayesian:       e.cfg.StrategyWeights.Bayesian,
	}

	strategies := []Strategy{e.weighted, e.dst, e.bayesian}
	results := make([]model.StrategyResult, 0, len(strategies))
	for _, strategy := range strategies {
		if weights[strategy.Name()] <= 0 {
			continue
		}
		result, err := strategy.Run(in)
		if err != nil {
			return nil, err
		}
		results = append(results, result)

		slog.Debug("Fusion strategy complete",
			"strategy", string(result.Strategy),
			"recommended", result.RecommendedScenario,
			"confidence", result.Confidence)
	}

	meta, consensus := CombineStrategies(results, weights, scenarios)
	decision := AssembleDecision(meta, consensus, weakSignals, in, agg)

	slog.Debug("Decision assembled",
		"client_id", financial.ClientID,
		"recommended_scenario", meta.RecommendedScenarioID,
		"priority", string(decision.TacticalPriority),
		"agreement", meta.AgreementLevel)

	return &decision, nil
}

// validateInputs rejects records the strategies cannot fuse. The whole call
// fails; nothing partial is produced.
func validateInputs(financial model.FinancialData, scenarios []model.ScenarioSimulation) error {
	if financial.BudgetRemainingQ3 < 0 || financial.BudgetRemainingQ3 > 100 {
		return &InvalidInputError{Field: "budget_remaining_q3", Value: financial.BudgetRemainingQ3, Reason: "must be in [0, 100]"}
	}
	if financial.ProductionOutputChange < -100 {
		return &InvalidInputError{Field: "production_output_change", Value: financial.ProductionOutputChange, Reason: "cannot fall below -100"}
	}
	if financial.UnpaidInvoicesSpike < -100 {
		return &InvalidInputError{Field: "unpaid_invoices_spike", Value: financial.UnpaidInvoicesSpike, Reason: "cannot fall below -100"}
	}

	if len(scenarios) == 0 {
		return &InvalidInputError{Field: "scenarios", Value: 0, Reason: "at least one scenario is required"}
	}

	seen := make(map[string]struct{}, len(scenarios))
	for _, s := range scenarios {
		if s.ScenarioID == "" {
			return &InvalidInputError{Field: "scenario_id", Value: s.ScenarioID, Reason: "must not be empty"}
		}
		if strings.Contains(s.ScenarioID, hypothesisSeparator) {
			return &InvalidInputError{Field: "scenario_id", Value: s.ScenarioID, Reason: "must not contain " + hypothesisSeparator}
		}
		if _, dup := seen[s.ScenarioID]; dup {
			return &InvalidInputError{Field: "scenario_id", Value: s.ScenarioID, Reason: "duplicate scenario id"}
		}
		seen[s.ScenarioID] = struct{}{}

		if s.Probability < 0 || s.Probability > 1 {
			return &InvalidInputError{Field: "probability", Value: s.Probability, Reason: "must be in [0, 1] for scenario " + s.ScenarioID}
		}
		if s.TimeHorizonDays <= 0 {
			return &InvalidInputError{Field: "time_horizon_days", Value: s.TimeHorizonDays, Reason: "must be positive for scenario " + s.ScenarioID}
		}
		if s.CashFlowImpact < -100 || s.CashFlowImpact > 100 {
			return &InvalidInputError{Field: "cash_flow_impact", Value: s.CashFlowImpact, Reason: "must be in [-100, 100] for scenario " + s.ScenarioID}
		}
		if s.MarginImpact < -100 || s.MarginImpact > 100 {
			return &InvalidInputError{Field: "margin_impact", Value: s.MarginImpact, Reason: "must be in [-100, 100] for scenario " + s.ScenarioID}
		}
	}

	return nil
}

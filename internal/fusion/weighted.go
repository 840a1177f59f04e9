package fusion

import (
	"math"

	"github.com/fintelops/synthex/internal/model"
)

// WeightedStrategy scores each scenario as a linear blend of risk and
// profitability, scaled by the simulation probability. When a Critical weak
// signal is present, the risk weight is boosted for the call, shifting the
// blend toward risk mitigation.
type WeightedStrategy struct {
	riskWeight    float64
	criticalBoost float64
	maxRiskWeight float64
}

// NewWeightedStrategy builds a weighted-average strategy. Weights are assumed
// to be pre-validated by the engine configuration.
func NewWeightedStrategy(riskWeight, criticalBoost, maxRiskWeight float64) *WeightedStrategy {
	return &WeightedStrategy{
		riskWeight:    riskWeight,
		criticalBoost: criticalBoost,
		maxRiskWeight: maxRiskWeight,
	}
}

// Name implements Strategy.
func (s *WeightedStrategy) Name() model.StrategyName { return model.StrategyWeighted }

// Run implements Strategy.
func (s *WeightedStrategy) Run(in Input) (model.StrategyResult, error) {
	riskWeight := s.riskWeight
	critical := false
	for _, ws := range in.WeakSignals {
		if ws.RiskLevel == model.RiskCritical {
			critical = true
			break
		}
	}
	if critical {
		riskWeight = math.Min(riskWeight+s.criticalBoost, s.maxRiskWeight)
	}
	profitWeight := 1.0 - riskWeight

	finalScores := make(map[string]float64, len(in.Scenarios))
	winner := in.Scenarios[0]
	winnerScore := -1.0

	for _, sc := range in.Scenarios {
		riskScore := clamp01(1.0 - math.Abs(sc.CashFlowImpact)/100.0)
		profitScore := clamp01(1.0 - math.Abs(sc.MarginImpact)/100.0)

		fusionScore := riskWeight*riskScore + profitWeight*profitScore
		finalScore := fusionScore * sc.Probability
		finalScores[sc.ScenarioID] = finalScore

		if betterWeighted(sc, finalScore, winner, winnerScore) {
			winner = sc
			winnerScore = finalScore
		}
	}

	return model.StrategyResult{
		Strategy:            model.StrategyWeighted,
		RecommendedScenario: winner.ScenarioID,
		Confidence:          weightedConfidence(winner, in.WeakSignals),
		ScenarioScores:      normalizeScores(finalScores, scenarioIDs(in.Scenarios)),
		Weighted: &model.WeightedDiagnostics{
			RiskWeight:          riskWeight,
			ProfitabilityWeight: profitWeight,
			CriticalAdjustment:  critical,
		},
	}, nil
}

// betterWeighted reports whether candidate beats the incumbent: higher final
// score, ties broken by the shorter time horizon, then the lexicographically
// smaller scenario id.
func betterWeighted(candidate model.ScenarioSimulation, candidateScore float64, incumbent model.ScenarioSimulation, incumbentScore float64) bool {
	if candidateScore != incumbentScore {
		return candidateScore > incumbentScore
	}
	if candidate.TimeHorizonDays != incumbent.TimeHorizonDays {
		return candidate.TimeHorizonDays < incumbent.TimeHorizonDays
	}
	return candidate.ScenarioID < incumbent.ScenarioID
}

// weightedConfidence anchors confidence on the winning simulation's own
// probability, tempered by the average weak-signal correlation strength.
func weightedConfidence(winner model.ScenarioSimulation, signals []model.WeakSignal) float64 {
	strength := 0.5
	if len(signals) > 0 {
		sum := 0.0
		for _, ws := range signals {
			sum += ws.CorrelationStrength
		}
		strength = sum / float64(len(signals))
	}
	return math.Min(winner.Probability*(0.7+0.3*strength), 1.0)
}

// normalizeScores rescales scores to sum to 1, iterating ids in input order.
// A degenerate all-zero map becomes the uniform distribution.
func normalizeScores(scores map[string]float64, ids []string) map[string]float64 {
	total := 0.0
	for _, id := range ids {
		total += scores[id]
	}

	out := make(map[string]float64, len(ids))
	if total <= 0 {
		uniform := 1.0 / float64(len(ids))
		for _, id := range ids {
			out[id] = uniform
		}
		return out
	}
	for _, id := range ids {
		out[id] = scores[id] / total
	}
	return out
}

package fusion

import "github.com/fintelops/synthex/internal/model"

// CombineStrategies is the meta-fusion consensus layer: a weighted vote over
// the strategies' score maps. It returns the consensus summary plus the full
// per-scenario consensus scores (used downstream to order alternatives).
//
// The consensus confidence is the winner's weighted sum, which stays in [0,1]
// because the strategy weights sum to 1 and each score map is normalized.
// The agreement level is the fraction of strategies whose own top pick
// matches the consensus winner.
func CombineStrategies(results []model.StrategyResult, weights map[model.StrategyName]float64, scenarios []model.ScenarioSimulation) (model.MetaFusion, map[string]float64) {
	ids := scenarioIDs(scenarios)

	consensus := make(map[string]float64, len(ids))
	for _, id := range ids {
		sum := 0.0
		for _, result := range results {
			sum += weights[result.Strategy] * result.ScenarioScores[id]
		}
		consensus[id] = sum
	}

	winner := ids[0]
	for _, id := range ids[1:] {
		if consensus[id] > consensus[winner] {
			winner = id
		}
	}

	agreeing := 0
	breakdown := make(map[model.StrategyName]model.StrategyVote, len(results))
	for _, result := range results {
		if result.RecommendedScenario == winner {
			agreeing++
		}
		breakdown[result.Strategy] = model.StrategyVote{
			ScenarioID: result.RecommendedScenario,
			Score:      result.ScenarioScores[result.RecommendedScenario],
		}
	}

	agreement := 0.0
	if len(results) > 0 {
		agreement = float64(agreeing) / float64(len(results))
	}

	return model.MetaFusion{
		RecommendedScenarioID: winner,
		ConsensusConfidence:   consensus[winner],
		AgreementLevel:        agreement,
		StrategyBreakdown:     breakdown,
	}, consensus
}

// Package fusion implements the decision fusion engine: three independent
// fusion strategies (weighted averaging, Dempster-Shafer evidence theory,
// sequential Bayesian updating), a meta-fusion consensus layer, and the
// assembler that turns the consensus into an explainable tactical decision.
package fusion

import (
	"math"

	"github.com/fintelops/synthex/internal/model"
)

// Input carries one synthesis call's records into a strategy. Strategies are
// pure functions of their input; they hold no per-call state.
type Input struct {
	Financial   model.FinancialData
	Graph       model.KnowledgeGraphContext
	Scenarios   []model.ScenarioSimulation
	WeakSignals []model.WeakSignal
}

// Strategy is the common contract all fusion strategies implement. Run must
// be deterministic and safe for concurrent use.
type Strategy interface {
	Name() model.StrategyName
	Run(in Input) (model.StrategyResult, error)
}

// scenarioIDs returns the scenario identifiers in input order.
func scenarioIDs(scenarios []model.ScenarioSimulation) []string {
	ids := make([]string, len(scenarios))
	for i, s := range scenarios {
		ids[i] = s.ScenarioID
	}
	return ids
}

// riskiestScenario returns the id of the scenario with the largest absolute
// cash-flow impact; safestScenario the smallest. Ties keep the earlier
// scenario so the choice is deterministic.
func riskiestScenario(scenarios []model.ScenarioSimulation) string {
	best := scenarios[0]
	for _, s := range scenarios[1:] {
		if math.Abs(s.CashFlowImpact) > math.Abs(best.CashFlowImpact) {
			best = s
		}
	}
	return best.ScenarioID
}

func safestScenario(scenarios []model.ScenarioSimulation) string {
	best := scenarios[0]
	for _, s := range scenarios[1:] {
		if math.Abs(s.CashFlowImpact) < math.Abs(best.CashFlowImpact) {
			best = s
		}
	}
	return best.ScenarioID
}

// simulationScores blends cash-flow stability, margin preservation, and the
// simulator's own probability into a per-scenario performance score. Both the
// DST and Bayesian strategies use it to fold the simulations themselves in as
// an evidence source.
func simulationScores(scenarios []model.ScenarioSimulation) map[string]float64 {
	scores := make(map[string]float64, len(scenarios))
	for _, s := range scenarios {
		cashScore := 1.0 - math.Abs(s.CashFlowImpact)/100.0
		marginScore := 1.0 - math.Abs(s.MarginImpact)/100.0
		scores[s.ScenarioID] = cashScore*0.5 + marginScore*0.3 + s.Probability*0.2
	}
	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package fusion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintelops/synthex/internal/model"
)

func TestBayesianStrategy_PicksRiskMitigation(t *testing.T) {
	in := twoScenarioInput()

	strategy := NewBayesianStrategy()
	result, err := strategy.Run(in)
	require.NoError(t, err)

	assert.Equal(t, model.StrategyBayesian, result.Strategy)
	// Every financial evidence source assigns far higher likelihood to the
	// risk scenario; the posterior concentrates on A.
	assert.Equal(t, "A", result.RecommendedScenario)
	assert.Greater(t, result.ScenarioScores["A"], result.ScenarioScores["B"])

	sum := 0.0
	for _, score := range result.ScenarioScores {
		sum += score
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	assert.InDelta(t, result.ScenarioScores["A"], result.Confidence, 1e-9)
}

func TestBayesianStrategy_Diagnostics(t *testing.T) {
	in := twoScenarioInput()

	strategy := NewBayesianStrategy()
	result, err := strategy.Run(in)
	require.NoError(t, err)

	diag := result.Bayesian
	require.NotNil(t, diag)

	// Entropy of a two-scenario posterior lies in [0, ln 2].
	assert.GreaterOrEqual(t, diag.Entropy, 0.0)
	assert.LessOrEqual(t, diag.Entropy, math.Log(2)+1e-9)

	assert.GreaterOrEqual(t, diag.KLDivergence, 0.0)
	assert.GreaterOrEqual(t, diag.BayesFactor, 1.0)

	// Prior is uniform; the trail starts with it and records every update.
	assert.InDelta(t, 0.5, diag.Prior["A"], 1e-9)
	assert.InDelta(t, 0.5, diag.Prior["B"], 1e-9)
	require.Len(t, diag.EvidenceTrail, 6)
	assert.Equal(t, diag.Prior, diag.EvidenceTrail[0])

	// Each trail entry is a distribution.
	for i, dist := range diag.EvidenceTrail {
		sum := 0.0
		for _, p := range dist {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "trail entry %d", i)
	}
}

func TestBayesianStrategy_SingleScenario(t *testing.T) {
	in := Input{
		Financial: model.FinancialData{UnpaidInvoicesSpike: 15.0, ProductionOutputChange: -12.0, BudgetRemainingQ3: 5.0},
		Graph:     model.KnowledgeGraphContext{ClientParentStatus: "restructuring"},
		Scenarios: []model.ScenarioSimulation{
			{ScenarioID: "only", CashFlowImpact: -10, MarginImpact: -5, Probability: 0.7, TimeHorizonDays: 30},
		},
	}

	strategy := NewBayesianStrategy()
	result, err := strategy.Run(in)
	require.NoError(t, err)

	assert.Equal(t, "only", result.RecommendedScenario)
	assert.InDelta(t, 1.0, result.ScenarioScores["only"], 1e-9)
	assert.True(t, math.IsInf(result.Bayesian.BayesFactor, 1))
	assert.InDelta(t, 0.0, result.Bayesian.Entropy, 1e-9)
}

func TestBayesUpdate(t *testing.T) {
	ids := []string{"A", "B"}
	current := map[string]float64{"A": 0.5, "B": 0.5}

	t.Run("full-weight update", func(t *testing.T) {
		ev := BayesianEvidence{Name: "ev", Likelihoods: map[string]float64{"A": 0.8, "B": 0.2}, Weight: 1.0}
		out := bayesUpdate(current, ev, ids)
		assert.InDelta(t, 0.8, out["A"], 1e-9)
		assert.InDelta(t, 0.2, out["B"], 1e-9)
	})

	t.Run("tempered update is softer", func(t *testing.T) {
		ev := BayesianEvidence{Name: "ev", Likelihoods: map[string]float64{"A": 0.8, "B": 0.2}, Weight: 0.5}
		out := bayesUpdate(current, ev, ids)
		assert.Greater(t, out["A"], 0.5)
		assert.Less(t, out["A"], 0.8)
		assert.InDelta(t, 1.0, out["A"]+out["B"], 1e-9)
	})

	t.Run("all-zero product falls back to uniform", func(t *testing.T) {
		ev := BayesianEvidence{Name: "ev", Likelihoods: map[string]float64{"A": 0.0, "B": 0.0}, Weight: 1.0}
		out := bayesUpdate(current, ev, ids)
		assert.InDelta(t, 0.5, out["A"], 1e-9)
		assert.InDelta(t, 0.5, out["B"], 1e-9)
	})
}

func TestShannonEntropy(t *testing.T) {
	ids := []string{"A", "B"}

	assert.InDelta(t, math.Log(2), shannonEntropy(map[string]float64{"A": 0.5, "B": 0.5}, ids), 1e-9)
	assert.InDelta(t, 0.0, shannonEntropy(map[string]float64{"A": 1.0, "B": 0.0}, ids), 1e-9)
}

func TestKLDivergence(t *testing.T) {
	ids := []string{"A", "B"}
	prior := map[string]float64{"A": 0.5, "B": 0.5}

	assert.InDelta(t, 0.0, klDivergence(prior, prior, ids), 1e-9)

	posterior := map[string]float64{"A": 0.9, "B": 0.1}
	kl := klDivergence(posterior, prior, ids)
	assert.InDelta(t, 0.9*math.Log(1.8)+0.1*math.Log(0.2), kl, 1e-9)
	assert.Greater(t, kl, 0.0)
}

func TestBayesFactor(t *testing.T) {
	ids := []string{"A", "B", "C"}
	posterior := map[string]float64{"A": 0.6, "B": 0.3, "C": 0.1}

	assert.InDelta(t, 2.0, bayesFactor(posterior, ids, "A"), 1e-9)

	zeroRunnerUp := map[string]float64{"A": 1.0, "B": 0.0, "C": 0.0}
	assert.True(t, math.IsInf(bayesFactor(zeroRunnerUp, ids, "A"), 1))
}

func TestBayesianEvidence_Validate(t *testing.T) {
	ids := []string{"A", "B"}

	valid := BayesianEvidence{Name: "ev", Likelihoods: map[string]float64{"A": 0.8, "B": 0.2}}
	assert.NoError(t, valid.validate(ids))

	invalid := BayesianEvidence{Name: "ev", Likelihoods: map[string]float64{"A": 1.2, "B": 0.2}}
	assert.Error(t, invalid.validate(ids))
}

func TestLikelihoodBuilders_StayInRange(t *testing.T) {
	ids := []string{"A", "B", "C"}

	// Extreme but legal inputs must still produce valid likelihoods.
	inputs := []model.FinancialData{
		{UnpaidInvoicesSpike: 100.0, ProductionOutputChange: -100.0, BudgetRemainingQ3: 0.0},
		{UnpaidInvoicesSpike: -100.0, ProductionOutputChange: 100.0, BudgetRemainingQ3: 100.0},
		{},
	}

	for _, financial := range inputs {
		sources := []BayesianEvidence{
			invoiceLikelihood(ids, financial.UnpaidInvoicesSpike, "A", "B"),
			productionLikelihood(ids, financial.ProductionOutputChange, "A", "B"),
			budgetLikelihood(ids, financial.BudgetRemainingQ3, "A", "B"),
			graphLikelihood(ids, model.KnowledgeGraphContext{ClientParentStatus: "bankruptcy"}, "A", "B"),
		}
		for _, ev := range sources {
			assert.NoError(t, ev.validate(ids), "source %s with %+v", ev.Name, financial)
		}
	}
}

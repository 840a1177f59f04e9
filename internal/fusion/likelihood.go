package fusion

import (
	"math"
	"strings"

	"github.com/fintelops/synthex/internal/model"
)

// invoiceLikelihood maps an unpaid-invoice spike to P(spike|scenario): high
// under the risk scenario, low under the safe one.
func invoiceLikelihood(ids []string, spikePct float64, riskID, safeID string) BayesianEvidence {
	likelihoods := make(map[string]float64, len(ids))
	for _, id := range ids {
		switch id {
		case riskID:
			likelihoods[id] = math.Max(0.05, math.Min(0.95, 0.3+spikePct/30.0))
		case safeID:
			likelihoods[id] = math.Max(0.05, math.Min(0.95, 0.8-spikePct/25.0))
		default:
			likelihoods[id] = math.Max(0.1, math.Min(0.9, 0.5-spikePct/50.0))
		}
	}
	return BayesianEvidence{Name: "ERP_Invoice_Likelihood", Likelihoods: likelihoods, Weight: 0.85}
}

// productionLikelihood maps a production output change to likelihoods.
func productionLikelihood(ids []string, outputChangePct float64, riskID, safeID string) BayesianEvidence {
	likelihoods := make(map[string]float64, len(ids))
	for _, id := range ids {
		switch id {
		case riskID:
			likelihoods[id] = math.Min(0.9, 0.3+math.Abs(outputChangePct)/25.0)
		case safeID:
			likelihoods[id] = math.Max(0.1, math.Min(0.95, 0.7+outputChangePct/30.0))
		default:
			likelihoods[id] = 0.4
		}
	}
	return BayesianEvidence{Name: "IoT_Production_Likelihood", Likelihoods: likelihoods, Weight: 0.75}
}

// budgetLikelihood maps the remaining budget percentage to likelihoods.
func budgetLikelihood(ids []string, budgetRemainingPct float64, riskID, safeID string) BayesianEvidence {
	likelihoods := make(map[string]float64, len(ids))
	for _, id := range ids {
		switch id {
		case riskID:
			likelihoods[id] = math.Min(0.90, 0.2+(100.0-budgetRemainingPct)/120.0)
		case safeID:
			likelihoods[id] = math.Max(0.05, budgetRemainingPct/120.0)
		default:
			likelihoods[id] = 0.35
		}
	}
	return BayesianEvidence{Name: "ERP_Budget_Likelihood", Likelihoods: likelihoods, Weight: 0.90}
}

// graphLikelihood maps knowledge-graph intelligence to likelihoods via a
// status-derived risk level, raised when a historical pattern matches.
func graphLikelihood(ids []string, graph model.KnowledgeGraphContext, riskID, safeID string) BayesianEvidence {
	status := strings.ToLower(graph.ClientParentStatus)

	var kgRisk float64
	switch {
	case strings.Contains(status, "bankruptcy") || strings.Contains(status, "chapter 11"):
		kgRisk = 0.85
	case strings.Contains(status, "restructuring"):
		kgRisk = 0.65
	case strings.Contains(status, "stable"):
		kgRisk = 0.20
	default:
		kgRisk = 0.40
	}
	if graph.SimilarHistoricalPattern != nil {
		kgRisk = math.Min(0.95, kgRisk+0.15)
	}

	likelihoods := make(map[string]float64, len(ids))
	for _, id := range ids {
		switch id {
		case riskID:
			likelihoods[id] = kgRisk
		case safeID:
			likelihoods[id] = 1.0 - kgRisk
		default:
			likelihoods[id] = 0.4
		}
	}
	return BayesianEvidence{Name: "KnowledgeGraph_Likelihood", Likelihoods: likelihoods, Weight: 0.80}
}

// simulationLikelihood converts per-scenario simulation performance scores
// directly to likelihoods, clamped away from the extremes.
func simulationLikelihood(scores map[string]float64, ids []string) BayesianEvidence {
	likelihoods := make(map[string]float64, len(ids))
	for _, id := range ids {
		likelihoods[id] = math.Max(0.05, math.Min(0.95, scores[id]))
	}
	return BayesianEvidence{Name: "Scenario_Simulation_Likelihood", Likelihoods: likelihoods, Weight: 0.70}
}

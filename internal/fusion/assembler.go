package fusion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/signal"
)

// AssembleDecision maps the consensus result plus the weak signals to the
// final prioritized, explainable decision. The explanation and action are
// deterministic templates; an optional enrichment step may later replace the
// explanation text, but the decision is complete without it.
func AssembleDecision(
	meta model.MetaFusion,
	consensus map[string]float64,
	weakSignals []model.WeakSignal,
	in Input,
	agg signal.Aggregate,
) model.FusedDecision {
	winning := findScenario(in.Scenarios, meta.RecommendedScenarioID)

	return model.FusedDecision{
		TacticalPriority:  decidePriority(weakSignals, winning),
		RecommendedAction: recommendAction(winning, in.Financial),
		Explanation:       buildExplanation(meta, weakSignals, winning, in, agg),
		WeakSignalAlert:   weakSignals,
		PredictedOutcome: model.PredictedOutcome{
			CashFlowImpactPct: winning.CashFlowImpact,
			MarginImpactPct:   winning.MarginImpact,
			TimeToImpactDays:  winning.TimeHorizonDays,
			Probability:       winning.Probability,
		},
		ConfidenceScore:    meta.ConsensusConfidence,
		MetaFusion:         meta,
		AlternativeActions: alternativeActions(in.Scenarios, consensus, meta.RecommendedScenarioID),
	}
}

func findScenario(scenarios []model.ScenarioSimulation, id string) model.ScenarioSimulation {
	for _, s := range scenarios {
		if s.ScenarioID == id {
			return s
		}
	}
	return scenarios[0]
}

// decidePriority grades urgency: High on any Critical signal, two or more
// signals, or a cash-flow impact beyond 15%; Medium on a single signal or a
// 5-15% impact; Low otherwise.
func decidePriority(weakSignals []model.WeakSignal, winning model.ScenarioSimulation) model.Priority {
	impact := math.Abs(winning.CashFlowImpact)

	for _, ws := range weakSignals {
		if ws.RiskLevel == model.RiskCritical {
			return model.PriorityHigh
		}
	}
	if len(weakSignals) >= 2 || impact > 15 {
		return model.PriorityHigh
	}
	if len(weakSignals) == 1 || (impact >= 5 && impact <= 15) {
		return model.PriorityMedium
	}
	return model.PriorityLow
}

// recommendAction turns the winning scenario into a concrete instruction,
// recognizing the standard playbook vocabulary.
func recommendAction(winning model.ScenarioSimulation, financial model.FinancialData) string {
	desc := strings.ToLower(winning.Description)
	switch {
	case strings.Contains(desc, "early payment"):
		return fmt.Sprintf("Trigger early payment incentive for client %s", financial.ClientID)
	case strings.Contains(desc, "renegotiat"):
		return fmt.Sprintf("Initiate payment term renegotiation with client %s", financial.ClientID)
	case strings.Contains(desc, "hedge") || strings.Contains(desc, "hedging") || strings.Contains(desc, "insurance"):
		return fmt.Sprintf("Activate hedging/insurance strategy for client %s", financial.ClientID)
	case strings.Contains(desc, "business as usual"):
		return fmt.Sprintf("Maintain current operations for client %s (monitor closely)", financial.ClientID)
	default:
		return fmt.Sprintf("Execute %s: %s", winning.ScenarioID, winning.Description)
	}
}

// dominantSignal returns the strongest weak signal, preferring the earlier
// one on ties, or false when no signals fired.
func dominantSignal(weakSignals []model.WeakSignal) (model.WeakSignal, bool) {
	if len(weakSignals) == 0 {
		return model.WeakSignal{}, false
	}
	dominant := weakSignals[0]
	for _, ws := range weakSignals[1:] {
		if ws.CorrelationStrength > dominant.CorrelationStrength {
			dominant = ws
		}
	}
	return dominant, true
}

// buildExplanation renders the deterministic explanation template connecting
// the consensus decision to all contributing sources.
func buildExplanation(
	meta model.MetaFusion,
	weakSignals []model.WeakSignal,
	winning model.ScenarioSimulation,
	in Input,
	agg signal.Aggregate,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Prioritize %s (%s) selected by multi-strategy consensus (%.0f%% agreement, consensus confidence %.2f).",
		winning.ScenarioID, winning.Description, meta.AgreementLevel*100, meta.ConsensusConfidence)

	fmt.Fprintf(&b, "\n\nStrategy analysis:")
	for _, name := range []model.StrategyName{model.StrategyWeighted, model.StrategyDempsterShafer, model.StrategyBayesian} {
		vote, ok := meta.StrategyBreakdown[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n  - %s recommends %s (score %.3f)", name, vote.ScenarioID, vote.Score)
	}

	fmt.Fprintf(&b, "\n\nFinancial context: client %s shows a %.1f%% spike in unpaid invoices, %.1f%% production output change, and %.1f%% Q3 budget remaining (stress score %.2f).",
		in.Financial.ClientID, in.Financial.UnpaidInvoicesSpike, in.Financial.ProductionOutputChange, in.Financial.BudgetRemainingQ3, agg.FinancialStress)

	if pattern := in.Graph.SimilarHistoricalPattern; pattern != nil {
		fmt.Fprintf(&b, "\n\nKnowledge graph intelligence: this pattern matches an incident from %d years ago, which resulted in a %d-day cash flow delay. Client parent status: %s.",
			pattern.YearsAgo, pattern.DelayDays, in.Graph.ClientParentStatus)
	}

	if others := otherScenarios(in.Scenarios, winning.ScenarioID); len(others) > 0 {
		worst := others[0]
		for _, s := range others[1:] {
			if math.Abs(s.CashFlowImpact) > math.Abs(worst.CashFlowImpact) {
				worst = s
			}
		}
		fmt.Fprintf(&b, "\n\nScenario comparison: %s avoids the %.1f%% cash flow deficit projected in %s, at a %.1f%% margin impact.",
			winning.ScenarioID, math.Abs(worst.CashFlowImpact), worst.ScenarioID, math.Abs(winning.MarginImpact))
	}

	if dominant, ok := dominantSignal(weakSignals); ok {
		fmt.Fprintf(&b, "\n\nWeak signal correlations: %d systemic risk indicator(s) detected; dominant signal %s (%s, strength %.2f).",
			len(weakSignals), dominant.SignalType, dominant.RiskLevel, dominant.CorrelationStrength)
	}

	switch {
	case meta.AgreementLevel >= 0.9:
		b.WriteString("\n\nConsensus: all fusion strategies converge on the same decision.")
	case meta.AgreementLevel >= 0.66:
		b.WriteString("\n\nConsensus: majority agreement with minor divergence between strategies.")
	default:
		b.WriteString("\n\nConsensus warning: strategies disagree; decision made by weighted meta-fusion voting.")
	}

	return b.String()
}

func otherScenarios(scenarios []model.ScenarioSimulation, winnerID string) []model.ScenarioSimulation {
	others := make([]model.ScenarioSimulation, 0, len(scenarios)-1)
	for _, s := range scenarios {
		if s.ScenarioID != winnerID {
			others = append(others, s)
		}
	}
	return others
}

// alternativeActions lists the non-winning scenario descriptions ordered by
// their meta-fusion consensus score, descending. Ties keep input order.
func alternativeActions(scenarios []model.ScenarioSimulation, consensus map[string]float64, winnerID string) []string {
	others := otherScenarios(scenarios, winnerID)
	sort.SliceStable(others, func(i, j int) bool {
		return consensus[others[i].ScenarioID] > consensus[others[j].ScenarioID]
	})

	actions := make([]string, len(others))
	for i, s := range others {
		actions[i] = s.Description
	}
	return actions
}

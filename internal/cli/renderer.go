package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fintelops/synthex/internal/model"
)

// RenderDecision renders a fused decision as a styled terminal report.
func RenderDecision(clientID string, decision *model.FusedDecision) string {
	var sections []string

	sections = append(sections, renderSummaryBox(clientID, decision))

	if len(decision.WeakSignalAlert) > 0 {
		sections = append(sections, renderWeakSignals(decision.WeakSignalAlert))
	}

	sections = append(sections, renderStrategyBreakdown(decision.MetaFusion))

	if len(decision.AlternativeActions) > 0 {
		sections = append(sections, renderAlternatives(decision.AlternativeActions))
	}

	sections = append(sections, SubtitleStyle.Render("Explanation"), decision.Explanation)

	return strings.Join(sections, "\n\n")
}

func renderSummaryBox(clientID string, decision *model.FusedDecision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Priority:    %s\n", StylePriority(decision.TacticalPriority))
	fmt.Fprintf(&b, "Action:      %s\n", BoldStyle.Render(decision.RecommendedAction))
	fmt.Fprintf(&b, "Scenario:    %s\n", decision.MetaFusion.RecommendedScenarioID)
	fmt.Fprintf(&b, "Confidence:  %.2f (agreement %.0f%%)\n",
		decision.ConfidenceScore, decision.MetaFusion.AgreementLevel*100)
	fmt.Fprintf(&b, "Outcome:     %+.1f%% cash flow, %+.1f%% margin over %d days (p=%.2f)",
		decision.PredictedOutcome.CashFlowImpactPct,
		decision.PredictedOutcome.MarginImpactPct,
		decision.PredictedOutcome.TimeToImpactDays,
		decision.PredictedOutcome.Probability)

	return RenderBox(RadarIcon+" Decision for "+clientID, b.String())
}

func renderWeakSignals(signals []model.WeakSignal) string {
	var b strings.Builder

	b.WriteString(SubtitleStyle.Render(AlertIcon + " Weak Signals"))
	for _, s := range signals {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  [%s] %s (strength %.2f)\n",
			StyleRiskLevel(s.RiskLevel), string(s.SignalType), s.CorrelationStrength)
		fmt.Fprintf(&b, "    %s\n", s.Description)
		fmt.Fprintf(&b, "    %s", SubtleStyle.Render("sources: "+strings.Join(s.SourceIndices, ", ")))
	}

	return b.String()
}

func renderStrategyBreakdown(meta model.MetaFusion) string {
	names := make([]string, 0, len(meta.StrategyBreakdown))
	for name := range meta.StrategyBreakdown {
		names = append(names, string(name))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(SubtitleStyle.Render(ChartIcon + " Strategy Breakdown"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render("  Strategy    Pick          Score"))
	for _, name := range names {
		vote := meta.StrategyBreakdown[model.StrategyName(name)]
		marker := "  "
		if vote.ScenarioID == meta.RecommendedScenarioID {
			marker = SuccessStyle.Render(SuccessIcon) + " "
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s%-12s%-14s%.3f", marker, name, vote.ScenarioID, vote.Score)
	}

	return b.String()
}

func renderAlternatives(actions []string) string {
	var b strings.Builder
	b.WriteString(SubtitleStyle.Render("Alternative Actions"))
	for i, action := range actions {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %d. %s", i+1, action)
	}
	return b.String()
}

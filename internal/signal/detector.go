// Package signal implements cross-source weak signal correlation: rules that
// combine financial metrics with knowledge-graph context to surface systemic
// risks no single source reveals on its own.
package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/fintelops/synthex/internal/model"
)

// Thresholds holds the tunable rule thresholds. Presets tighten these for
// crisis operation; the defaults match the standard rule definitions.
type Thresholds struct {
	// ProductionSlowdown fires the systemic-risk rule when the production
	// output change falls below it (strictly less than, signed percent).
	ProductionSlowdown float64
	// BudgetCritical fires the liquidity-squeeze rule when the remaining
	// budget percentage falls strictly below it.
	BudgetCritical float64
}

// DefaultThresholds returns the standard rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ProductionSlowdown: -5.0,
		BudgetCritical:     10.0,
	}
}

// Detector evaluates the weak-signal rules. Each rule is independent; rule
// order does not affect the outcome and there is no early exit.
type Detector struct {
	thresholds Thresholds
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(thresholds Thresholds) *Detector {
	return &Detector{thresholds: thresholds}
}

// distressMarkers are client-parent status fragments treated as
// restructuring/distress indications.
var distressMarkers = []string{"restructuring", "distress", "bankruptcy", "chapter 11"}

// Detect runs every rule against the inputs and returns the signals that
// fired. The result has between zero and three entries; absent inputs simply
// fail the corresponding rule.
func (d *Detector) Detect(financial model.FinancialData, graph model.KnowledgeGraphContext) []model.WeakSignal {
	signals := make([]model.WeakSignal, 0, 3)

	if s, ok := d.productionClientRisk(financial, graph); ok {
		signals = append(signals, s)
	}
	if s, ok := d.budgetLiquiditySqueeze(financial); ok {
		signals = append(signals, s)
	}
	if s, ok := d.historicalRecurrence(graph); ok {
		signals = append(signals, s)
	}

	return signals
}

// productionClientRisk fires when a production slowdown coincides with a
// distressed client parent: supply chain and payment risk converging.
func (d *Detector) productionClientRisk(financial model.FinancialData, graph model.KnowledgeGraphContext) (model.WeakSignal, bool) {
	if financial.ProductionOutputChange >= d.thresholds.ProductionSlowdown {
		return model.WeakSignal{}, false
	}

	status := strings.ToLower(graph.ClientParentStatus)
	distressed := false
	for _, marker := range distressMarkers {
		if strings.Contains(status, marker) {
			distressed = true
			break
		}
	}
	if !distressed {
		return model.WeakSignal{}, false
	}

	strength := math.Min(math.Abs(financial.ProductionOutputChange)/20.0, 1.0)

	level := model.RiskMedium
	if strength > 0.6 {
		level = model.RiskHigh
	}

	return model.WeakSignal{
		SignalType:          model.SignalProductionClientSystemicRisk,
		CorrelationStrength: strength,
		SourceIndices:       []string{"IoT_Production", "KG_Client_Parent", "ERP_Invoices"},
		RiskLevel:           level,
		Description: fmt.Sprintf(
			"Production slowdown of %.1f%% combined with client parent status %q indicates supply chain and payment risk convergence",
			financial.ProductionOutputChange, graph.ClientParentStatus),
	}, true
}

// budgetLiquiditySqueeze fires when the remaining budget falls strictly below
// the critical threshold.
func (d *Detector) budgetLiquiditySqueeze(financial model.FinancialData) (model.WeakSignal, bool) {
	if financial.BudgetRemainingQ3 >= d.thresholds.BudgetCritical {
		return model.WeakSignal{}, false
	}

	return model.WeakSignal{
		SignalType:          model.SignalBudgetLiquiditySqueeze,
		CorrelationStrength: 0.8,
		SourceIndices:       []string{"ERP_Budget", "ERP_Invoices"},
		RiskLevel:           model.RiskCritical,
		Description: fmt.Sprintf(
			"Only %.1f%% budget remaining with %.1f%% spike in unpaid invoices",
			financial.BudgetRemainingQ3, financial.UnpaidInvoicesSpike),
	}, true
}

// historicalRecurrence fires when the knowledge graph found a similar past
// incident.
func (d *Detector) historicalRecurrence(graph model.KnowledgeGraphContext) (model.WeakSignal, bool) {
	pattern := graph.SimilarHistoricalPattern
	if pattern == nil {
		return model.WeakSignal{}, false
	}

	return model.WeakSignal{
		SignalType:          model.SignalHistoricalPatternRecurrence,
		CorrelationStrength: 0.75,
		SourceIndices:       []string{"KG_Episodic_Memory", "ERP_Invoices"},
		RiskLevel:           model.RiskHigh,
		Description: fmt.Sprintf(
			"Current pattern matches historical incident from %d years ago, which resulted in a %d-day cash flow delay",
			pattern.YearsAgo, pattern.DelayDays),
	}, true
}

package signal

import (
	"math"

	"github.com/fintelops/synthex/internal/model"
)

// RiskRange summarizes the spread of cash-flow impact across scenarios.
type RiskRange struct {
	MinCashFlowImpact float64
	MaxCashFlowImpact float64
	Spread            float64
}

// Aggregate is the multi-source intelligence summary computed before fusion.
// It feeds explanation templates and CLI reporting; the fusion strategies
// consume the raw records directly.
type Aggregate struct {
	FinancialStress              float64
	HistoricalPatternMatch       bool
	ExternalRiskFactors          int
	ProductionFinanceCorrelation float64
	ScenarioRiskRange            RiskRange
}

// Aggregate correlates the financial snapshot, graph context, and scenario
// list into a single summary.
func (d *Detector) Aggregate(financial model.FinancialData, graph model.KnowledgeGraphContext, scenarios []model.ScenarioSimulation) Aggregate {
	return Aggregate{
		FinancialStress:              financialStress(financial),
		HistoricalPatternMatch:       graph.SimilarHistoricalPattern != nil,
		ExternalRiskFactors:          len(graph.ExternalDataSignals),
		ProductionFinanceCorrelation: productionFinanceCorrelation(financial.ProductionOutputChange, financial.UnpaidInvoicesSpike),
		ScenarioRiskRange:            scenarioRiskRange(scenarios),
	}
}

// financialStress blends invoice, budget, and production pressure into a
// single [0,1] stress score. Invoice spikes are signed percents; a falling
// spike relieves stress rather than going negative.
func financialStress(financial model.FinancialData) float64 {
	invoiceStress := clamp01(financial.UnpaidInvoicesSpike / 100.0)
	budgetStress := clamp01(1.0 - financial.BudgetRemainingQ3/100.0)
	productionStress := math.Min(math.Abs(financial.ProductionOutputChange)/50.0, 1.0)

	return invoiceStress*0.4 + budgetStress*0.3 + productionStress*0.3
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

// productionFinanceCorrelation is nonzero only when production is falling
// while unpaid invoices are rising, the combination that historically
// precedes payment defaults.
func productionFinanceCorrelation(productionChange, invoiceSpike float64) float64 {
	if productionChange < 0 && invoiceSpike > 0 {
		return math.Min(math.Abs(productionChange)*invoiceSpike/100.0, 1.0)
	}
	return 0.0
}

func scenarioRiskRange(scenarios []model.ScenarioSimulation) RiskRange {
	if len(scenarios) == 0 {
		return RiskRange{}
	}

	minImpact := scenarios[0].CashFlowImpact
	maxImpact := scenarios[0].CashFlowImpact
	for _, s := range scenarios[1:] {
		if s.CashFlowImpact < minImpact {
			minImpact = s.CashFlowImpact
		}
		if s.CashFlowImpact > maxImpact {
			maxImpact = s.CashFlowImpact
		}
	}

	return RiskRange{
		MinCashFlowImpact: minImpact,
		MaxCashFlowImpact: maxImpact,
		Spread:            maxImpact - minImpact,
	}
}

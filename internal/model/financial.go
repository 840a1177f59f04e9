// Package model defines the core domain records consumed and produced by the
// fusion engine: financial snapshots, knowledge-graph context, scenario
// simulations, weak signals, and the final fused decision.
package model

// FinancialData is a point-in-time snapshot of a client's financial position,
// assembled upstream from ERP and invoicing feeds. All fields are percentages;
// signed fields treat negative values as deterioration.
type FinancialData struct {
	ClientID               string  `json:"client_id" yaml:"client_id"`
	UnpaidInvoicesSpike    float64 `json:"unpaid_invoices_spike" yaml:"unpaid_invoices_spike"`
	ProductionOutputChange float64 `json:"production_output_change" yaml:"production_output_change"`
	BudgetRemainingQ3      float64 `json:"budget_remaining_q3" yaml:"budget_remaining_q3"`
}

// HistoricalPattern describes a past incident the knowledge graph considers
// similar to the current situation.
type HistoricalPattern struct {
	YearsAgo  int `json:"years_ago" yaml:"years_ago"`
	DelayDays int `json:"delay_days" yaml:"delay_days"`
}

// KnowledgeGraphContext carries auxiliary evidence retrieved from the
// knowledge-graph service. SimilarHistoricalPattern is nil when no historical
// match was found.
type KnowledgeGraphContext struct {
	ClientParentStatus       string             `json:"client_parent_status" yaml:"client_parent_status"`
	SimilarHistoricalPattern *HistoricalPattern `json:"similar_historical_pattern,omitempty" yaml:"similar_historical_pattern,omitempty"`
	ExternalDataSignals      []string           `json:"external_data_signals,omitempty" yaml:"external_data_signals,omitempty"`
	RiskIndicators           []string           `json:"risk_indicators,omitempty" yaml:"risk_indicators,omitempty"`
}

package model

// RiskLevel grades the severity of a detected weak signal.
type RiskLevel string

// Risk level constants, ordered from least to most severe.
const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// SignalType identifies which cross-source correlation rule fired.
type SignalType string

// Signal type constants.
const (
	SignalProductionClientSystemicRisk SignalType = "Production-Client_Systemic_Risk"
	SignalBudgetLiquiditySqueeze       SignalType = "Budget_Liquidity_Squeeze"
	SignalHistoricalPatternRecurrence  SignalType = "Historical_Pattern_Recurrence"
)

// WeakSignal is a cross-source correlation that is individually minor but
// jointly indicative of elevated risk. Signals are created fresh per
// synthesis call and never persisted by the engine.
type WeakSignal struct {
	SignalType          SignalType `json:"signal_type"`
	CorrelationStrength float64    `json:"correlation_strength"`
	SourceIndices       []string   `json:"source_indices"`
	RiskLevel           RiskLevel  `json:"risk_level"`
	Description         string     `json:"description"`
}

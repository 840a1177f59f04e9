package model

// Priority ranks how urgently the recommended action should be taken.
type Priority string

// Tactical priority constants.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// PredictedOutcome is the financial projection of the winning scenario,
// copied verbatim from the simulation record.
type PredictedOutcome struct {
	CashFlowImpactPct float64 `json:"cash_flow_impact_pct"`
	MarginImpactPct   float64 `json:"margin_impact_pct"`
	TimeToImpactDays  int     `json:"time_to_impact_days"`
	Probability       float64 `json:"probability"`
}

// StrategyVote records one strategy's top pick and the score it assigned.
type StrategyVote struct {
	ScenarioID string  `json:"scenario_id"`
	Score      float64 `json:"score"`
}

// MetaFusion summarizes the consensus layer: which scenario won the weighted
// vote, how confident the vote was, and how much the strategies agreed.
type MetaFusion struct {
	RecommendedScenarioID string                       `json:"recommended_scenario_id"`
	ConsensusConfidence   float64                      `json:"consensus_confidence"`
	AgreementLevel        float64                      `json:"agreement_level"`
	StrategyBreakdown     map[StrategyName]StrategyVote `json:"strategy_breakdown"`
}

// FusedDecision is the engine's final output: a prioritized, explainable
// tactical decision. The JSON field names form the engine's wire contract.
type FusedDecision struct {
	TacticalPriority   Priority         `json:"tactical_priority"`
	RecommendedAction  string           `json:"recommended_action"`
	Explanation        string           `json:"explanation"`
	WeakSignalAlert    []WeakSignal     `json:"weak_signal_alert"`
	PredictedOutcome   PredictedOutcome `json:"predicted_financial_outcome"`
	ConfidenceScore    float64          `json:"confidence_score"`
	MetaFusion         MetaFusion       `json:"meta_fusion"`
	AlternativeActions []string         `json:"alternative_actions"`
}

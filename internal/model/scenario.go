package model

// ScenarioSimulation is one candidate course of action produced by the
// scenario-simulation service. Impact fields are signed percentages where
// negative is worse; Probability is the simulator's confidence in its own
// projection.
type ScenarioSimulation struct {
	ScenarioID      string  `json:"scenario_id" yaml:"scenario_id"`
	Description     string  `json:"description" yaml:"description"`
	CashFlowImpact  float64 `json:"cash_flow_impact" yaml:"cash_flow_impact"`
	MarginImpact    float64 `json:"margin_impact" yaml:"margin_impact"`
	Probability     float64 `json:"probability" yaml:"probability"`
	TimeHorizonDays int     `json:"time_horizon_days" yaml:"time_horizon_days"`
}

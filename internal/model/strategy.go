package model

// StrategyName identifies a fusion strategy. The values double as the keys
// used for strategy weights in configuration and in the meta-fusion breakdown.
type StrategyName string

// Strategy name constants.
const (
	StrategyWeighted       StrategyName = "weighted"
	StrategyDempsterShafer StrategyName = "dst"
	StrategyBayesian       StrategyName = "bayesian"
)

// WeightedDiagnostics carries the weighted-average strategy's diagnostics.
type WeightedDiagnostics struct {
	RiskWeight          float64
	ProfitabilityWeight float64
	CriticalAdjustment  bool
}

// DSTDiagnostics carries the Dempster-Shafer strategy's diagnostics.
// Conflict is the conflict mass K of the final pairwise combination;
// MaxConflict is the largest K observed across all combinations.
type DSTDiagnostics struct {
	Conflict     float64
	MaxConflict  float64
	Belief       map[string]float64
	Plausibility map[string]float64
	Pignistic    map[string]float64
	// BeliefPlausibilityGap is Pl - Bel for the recommended scenario, an
	// uncertainty measure: the wider the interval, the less the evidence
	// pins down the true probability.
	BeliefPlausibilityGap float64
}

// BayesianDiagnostics carries the Bayesian strategy's diagnostics.
type BayesianDiagnostics struct {
	Entropy       float64
	KLDivergence  float64
	BayesFactor   float64
	LogLikelihood float64
	Prior         map[string]float64
	// EvidenceTrail holds the posterior distribution after each update,
	// starting with the prior.
	EvidenceTrail []map[string]float64
}

// StrategyResult is the output of a single fusion strategy. ScenarioScores
// maps scenario id to a normalized score; for the DST and Bayesian strategies
// the scores form a probability distribution.
type StrategyResult struct {
	Strategy            StrategyName
	RecommendedScenario string
	Confidence          float64
	ScenarioScores      map[string]float64

	Weighted *WeightedDiagnostics
	DST      *DSTDiagnostics
	Bayesian *BayesianDiagnostics
}

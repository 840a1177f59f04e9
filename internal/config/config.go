// Package config defines the fusion engine configuration: decision weights,
// strategy weights for meta-fusion, detector thresholds, and the named
// operational presets.
package config

import (
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// weightTolerance is how far a pair of weights may drift from summing to 1.0
// before validation rejects them.
const weightTolerance = 1e-6

// StrategyWeights holds the meta-fusion vote weight of each strategy. Setting
// a weight to zero disables that strategy for the call.
type StrategyWeights struct {
	Weighted       float64 `mapstructure:"weighted"`
	DempsterShafer float64 `mapstructure:"dst"`
	Bayesian       float64 `mapstructure:"bayesian"`
}

// Sum returns the total of the three strategy weights.
func (w StrategyWeights) Sum() float64 {
	return w.Weighted + w.DempsterShafer + w.Bayesian
}

// FusionConfig is the engine's static configuration. It is validated once at
// engine construction; a validated config never changes during synthesis.
type FusionConfig struct {
	// RiskWeight and ProfitabilityWeight steer the weighted-average
	// strategy and must sum to 1.
	RiskWeight          float64 `mapstructure:"risk_weight"`
	ProfitabilityWeight float64 `mapstructure:"profitability_weight"`

	// CriticalRiskBoost is added to RiskWeight when a Critical weak signal
	// is present, capped at MaxRiskWeight.
	CriticalRiskBoost float64 `mapstructure:"critical_risk_boost"`
	MaxRiskWeight     float64 `mapstructure:"max_risk_weight"`

	StrategyWeights StrategyWeights `mapstructure:"strategy_weights"`

	// Detector thresholds. Budget fires strictly below BudgetCriticalThreshold;
	// production fires strictly below ProductionSlowdownThreshold.
	BudgetCriticalThreshold     float64 `mapstructure:"budget_critical_threshold"`
	ProductionSlowdownThreshold float64 `mapstructure:"production_slowdown_threshold"`
}

// Default returns the standard configuration: risk-leaning weighted fusion
// and a 0.3/0.4/0.3 strategy split.
func Default() FusionConfig {
	return FusionConfig{
		RiskWeight:          0.6,
		ProfitabilityWeight: 0.4,
		CriticalRiskBoost:   0.2,
		MaxRiskWeight:       0.8,
		StrategyWeights: StrategyWeights{
			Weighted:       0.3,
			DempsterShafer: 0.4,
			Bayesian:       0.3,
		},
		BudgetCriticalThreshold:     10.0,
		ProductionSlowdownThreshold: -5.0,
	}
}

// ConfigurationError reports an invalid configuration value. It is raised at
// construction time, before any synthesis call.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks weight ranges and sums. It returns a *ConfigurationError
// describing the first offending field.
func (c FusionConfig) Validate() error {
	if c.RiskWeight < 0 || c.RiskWeight > 1 {
		return &ConfigurationError{Field: "risk_weight", Value: c.RiskWeight, Reason: "must be in [0, 1]"}
	}
	if c.ProfitabilityWeight < 0 || c.ProfitabilityWeight > 1 {
		return &ConfigurationError{Field: "profitability_weight", Value: c.ProfitabilityWeight, Reason: "must be in [0, 1]"}
	}
	if math.Abs(c.RiskWeight+c.ProfitabilityWeight-1.0) > weightTolerance {
		return &ConfigurationError{
			Field:  "risk_weight+profitability_weight",
			Value:  c.RiskWeight + c.ProfitabilityWeight,
			Reason: "must sum to 1.0",
		}
	}

	for _, sw := range []struct {
		field string
		value float64
	}{
		{"strategy_weights.weighted", c.StrategyWeights.Weighted},
		{"strategy_weights.dst", c.StrategyWeights.DempsterShafer},
		{"strategy_weights.bayesian", c.StrategyWeights.Bayesian},
	} {
		if sw.value < 0 {
			return &ConfigurationError{Field: sw.field, Value: sw.value, Reason: "must not be negative"}
		}
	}
	if math.Abs(c.StrategyWeights.Sum()-1.0) > weightTolerance {
		return &ConfigurationError{
			Field:  "strategy_weights",
			Value:  c.StrategyWeights.Sum(),
			Reason: "must sum to 1.0",
		}
	}

	if c.MaxRiskWeight < c.RiskWeight {
		return &ConfigurationError{Field: "max_risk_weight", Value: c.MaxRiskWeight, Reason: "must not be below risk_weight"}
	}
	if c.CriticalRiskBoost < 0 {
		return &ConfigurationError{Field: "critical_risk_boost", Value: c.CriticalRiskBoost, Reason: "must not be negative"}
	}
	if c.BudgetCriticalThreshold < 0 || c.BudgetCriticalThreshold > 100 {
		return &ConfigurationError{Field: "budget_critical_threshold", Value: c.BudgetCriticalThreshold, Reason: "must be in [0, 100]"}
	}

	return nil
}

// WithoutDST returns a copy of the config with the Dempster-Shafer strategy
// disabled and the remaining strategy weights renormalized to sum to 1.
// Callers use it to recover from a total-conflict fusion error.
func (c FusionConfig) WithoutDST() FusionConfig {
	out := c
	remaining := c.StrategyWeights.Weighted + c.StrategyWeights.Bayesian
	if remaining <= 0 {
		out.StrategyWeights = StrategyWeights{Weighted: 0.5, Bayesian: 0.5}
		return out
	}
	out.StrategyWeights = StrategyWeights{
		Weighted: c.StrategyWeights.Weighted / remaining,
		Bayesian: c.StrategyWeights.Bayesian / remaining,
	}
	return out
}

// Load builds a FusionConfig from viper, starting from defaults so a partial
// config file or environment override is enough.
func Load(v *viper.Viper) (FusionConfig, error) {
	cfg := Default()

	if v.IsSet("fusion") {
		if err := v.UnmarshalKey("fusion", &cfg); err != nil {
			return FusionConfig{}, fmt.Errorf("failed to parse fusion config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return FusionConfig{}, err
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"sort"
	"strings"
)

// Preset names recognized by PresetByName.
const (
	PresetCrisis       = "crisis"
	PresetConservative = "conservative"
	PresetBalanced     = "balanced"
	PresetAggressive   = "aggressive"
)

// presets maps preset names to their configurations. Beyond the risk/profit
// split, crisis and conservative modes also tighten the detector thresholds,
// while aggressive mode relaxes them.
var presets = map[string]func() FusionConfig{
	PresetCrisis: func() FusionConfig {
		cfg := Default()
		cfg.RiskWeight = 0.9
		cfg.ProfitabilityWeight = 0.1
		cfg.CriticalRiskBoost = 0.05
		cfg.MaxRiskWeight = 0.95
		cfg.BudgetCriticalThreshold = 20.0
		cfg.ProductionSlowdownThreshold = -3.0
		return cfg
	},
	PresetConservative: func() FusionConfig {
		cfg := Default()
		cfg.RiskWeight = 0.8
		cfg.ProfitabilityWeight = 0.2
		cfg.CriticalRiskBoost = 0.15
		cfg.MaxRiskWeight = 0.95
		cfg.BudgetCriticalThreshold = 15.0
		return cfg
	},
	PresetBalanced: func() FusionConfig {
		cfg := Default()
		cfg.RiskWeight = 0.5
		cfg.ProfitabilityWeight = 0.5
		return cfg
	},
	PresetAggressive: func() FusionConfig {
		cfg := Default()
		cfg.RiskWeight = 0.3
		cfg.ProfitabilityWeight = 0.7
		cfg.CriticalRiskBoost = 0.1
		cfg.BudgetCriticalThreshold = 5.0
		return cfg
	},
}

// PresetByName returns the named preset configuration. Names are matched
// case-insensitively.
func PresetByName(name string) (FusionConfig, error) {
	build, ok := presets[strings.ToLower(name)]
	if !ok {
		return FusionConfig{}, &ConfigurationError{
			Field:  "preset",
			Value:  name,
			Reason: fmt.Sprintf("unknown preset, expected one of: %s", strings.Join(PresetNames(), ", ")),
		}
	}
	return build(), nil
}

// PresetNames returns the recognized preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 0.6, cfg.RiskWeight, 1e-9)
	assert.InDelta(t, 0.4, cfg.ProfitabilityWeight, 1e-9)
	assert.InDelta(t, 1.0, cfg.StrategyWeights.Sum(), 1e-9)
	assert.InDelta(t, 10.0, cfg.BudgetCriticalThreshold, 1e-9)
	assert.InDelta(t, -5.0, cfg.ProductionSlowdownThreshold, 1e-9)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*FusionConfig)
		wantField string
	}{
		{
			name:      "risk weight above 1",
			mutate:    func(c *FusionConfig) { c.RiskWeight = 1.2 },
			wantField: "risk_weight",
		},
		{
			name:      "negative profitability weight",
			mutate:    func(c *FusionConfig) { c.ProfitabilityWeight = -0.1 },
			wantField: "profitability_weight",
		},
		{
			name:      "decision weights do not sum to 1",
			mutate:    func(c *FusionConfig) { c.RiskWeight = 0.5 },
			wantField: "risk_weight+profitability_weight",
		},
		{
			name:      "negative strategy weight",
			mutate:    func(c *FusionConfig) { c.StrategyWeights.DempsterShafer = -0.4 },
			wantField: "strategy_weights.dst",
		},
		{
			name: "strategy weights do not sum to 1",
			mutate: func(c *FusionConfig) {
				c.StrategyWeights = StrategyWeights{Weighted: 0.5, DempsterShafer: 0.5, Bayesian: 0.5}
			},
			wantField: "strategy_weights",
		},
		{
			name:      "max risk weight below risk weight",
			mutate:    func(c *FusionConfig) { c.MaxRiskWeight = 0.5 },
			wantField: "max_risk_weight",
		},
		{
			name:      "negative critical boost",
			mutate:    func(c *FusionConfig) { c.CriticalRiskBoost = -0.1 },
			wantField: "critical_risk_boost",
		},
		{
			name:      "budget threshold out of range",
			mutate:    func(c *FusionConfig) { c.BudgetCriticalThreshold = 150 },
			wantField: "budget_critical_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestWithoutDST(t *testing.T) {
	cfg := Default()
	out := cfg.WithoutDST()

	assert.Zero(t, out.StrategyWeights.DempsterShafer)
	assert.InDelta(t, 0.5, out.StrategyWeights.Weighted, 1e-9)
	assert.InDelta(t, 0.5, out.StrategyWeights.Bayesian, 1e-9)
	assert.NoError(t, out.Validate())

	// Degenerate all-DST config falls back to an even split.
	cfg.StrategyWeights = StrategyWeights{DempsterShafer: 1.0}
	out = cfg.WithoutDST()
	assert.InDelta(t, 0.5, out.StrategyWeights.Weighted, 1e-9)
	assert.InDelta(t, 0.5, out.StrategyWeights.Bayesian, 1e-9)
}

func TestPresetByName(t *testing.T) {
	tests := []struct {
		name           string
		preset         string
		wantRisk       float64
		wantProfit     float64
		wantBudgetCrit float64
	}{
		{name: "crisis", preset: "crisis", wantRisk: 0.9, wantProfit: 0.1, wantBudgetCrit: 20.0},
		{name: "conservative", preset: "conservative", wantRisk: 0.8, wantProfit: 0.2, wantBudgetCrit: 15.0},
		{name: "balanced", preset: "balanced", wantRisk: 0.5, wantProfit: 0.5, wantBudgetCrit: 10.0},
		{name: "aggressive", preset: "aggressive", wantRisk: 0.3, wantProfit: 0.7, wantBudgetCrit: 5.0},
		{name: "case insensitive", preset: "CRISIS", wantRisk: 0.9, wantProfit: 0.1, wantBudgetCrit: 20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := PresetByName(tt.preset)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.InDelta(t, tt.wantRisk, cfg.RiskWeight, 1e-9)
			assert.InDelta(t, tt.wantProfit, cfg.ProfitabilityWeight, 1e-9)
			assert.InDelta(t, tt.wantBudgetCrit, cfg.BudgetCriticalThreshold, 1e-9)
		})
	}
}

func TestPresetByName_Unknown(t *testing.T) {
	_, err := PresetByName("reckless")
	require.Error(t, err)

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestPresetNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"aggressive", "balanced", "conservative", "crisis"}, PresetNames())
}

func TestLoad(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		v := viper.New()
		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("partial override", func(t *testing.T) {
		v := viper.New()
		v.Set("fusion.risk_weight", 0.7)
		v.Set("fusion.profitability_weight", 0.3)

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, cfg.RiskWeight, 1e-9)
		// Untouched fields keep their defaults.
		assert.InDelta(t, 10.0, cfg.BudgetCriticalThreshold, 1e-9)
	})

	t.Run("invalid override is rejected", func(t *testing.T) {
		v := viper.New()
		v.Set("fusion.risk_weight", 0.9)

		_, err := Load(v)
		require.Error(t, err)
	})
}

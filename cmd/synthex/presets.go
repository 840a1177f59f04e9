package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fintelops/synthex/internal/cli"
	"github.com/fintelops/synthex/internal/config"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named configuration presets",
		Long: `List the named configuration presets and the weights they apply.

Presets shift the balance between risk aversion and profit seeking and tune
the weak-signal detector thresholds. Select one with --preset on the
synthesize and batch commands.`,
		RunE: runPresets,
	}
}

func runPresets(_ *cobra.Command, _ []string) error {
	var b strings.Builder

	b.WriteString(cli.TableHeaderStyle.Render("  Preset        Risk   Profit  Boost  Budget<  Production<"))
	for _, name := range config.PresetNames() {
		cfg, err := config.PresetByName(name)
		if err != nil {
			return err
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %-14s%-7.2f%-8.2f%-7.2f%-9.1f%.1f",
			name,
			cfg.RiskWeight,
			cfg.ProfitabilityWeight,
			cfg.CriticalRiskBoost,
			cfg.BudgetCriticalThreshold,
			cfg.ProductionSlowdownThreshold)
	}

	fmt.Println(cli.RenderBox("Configuration Presets", b.String()))
	return nil
}

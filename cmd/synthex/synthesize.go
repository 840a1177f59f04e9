package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fintelops/synthex/internal/cli"
	"github.com/fintelops/synthex/internal/common"
	"github.com/fintelops/synthex/internal/config"
	"github.com/fintelops/synthex/internal/dossier"
)

func synthesizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Fuse a client dossier into a tactical decision",
		Long: `Fuse one client dossier into a single prioritized tactical decision.

The dossier file bundles the client's financial snapshot, knowledge-graph
context, and scenario simulations. The engine detects weak signals, runs the
configured fusion strategies, and emits the consensus decision.

Examples:
  synthex synthesize --dossier client.json              # Styled terminal report
  synthex synthesize --dossier client.yaml --json       # Machine-readable output
  synthex synthesize --dossier client.json --preset crisis
  synthex synthesize --dossier client.json --enrich     # Analyst narrative`,
		RunE: runSynthesize,
	}

	// Flags
	cmd.Flags().StringP("dossier", "d", "", "Path to the client dossier file (JSON or YAML)")
	cmd.Flags().StringP("preset", "p", "", "Named configuration preset (crisis, conservative, balanced, aggressive)")
	cmd.Flags().Bool("json", false, "Emit the decision as JSON instead of a styled report")
	cmd.Flags().Bool("enrich", false, "Rewrite the explanation via the configured narrative provider")
	_ = cmd.MarkFlagRequired("dossier")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("synthesis.dossier", cmd.Flags().Lookup("dossier"))
	_ = viper.BindPFlag("synthesis.preset", cmd.Flags().Lookup("preset"))
	_ = viper.BindPFlag("synthesis.json", cmd.Flags().Lookup("json"))
	_ = viper.BindPFlag("synthesis.enrich", cmd.Flags().Lookup("enrich"))

	return cmd
}

func runSynthesize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	path := config.ExpandPath(viper.GetString("synthesis.dossier"))
	preset := viper.GetString("synthesis.preset")
	asJSON := viper.GetBool("synthesis.json")
	doEnrich := viper.GetBool("synthesis.enrich")

	cfg, err := loadFusionConfig(preset)
	if err != nil {
		return fmt.Errorf("failed to load fusion config: %w", err)
	}

	d, err := dossier.Load(path)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("failed to load dossier %s", path), err)
	}

	slog.Info("Starting synthesis", "client_id", d.Financial.ClientID, "scenarios", len(d.Scenarios))

	decision, err := synthesizeDossier(cfg, d)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	if doEnrich {
		enricher, enrichErr := createEnricher()
		if enrichErr != nil {
			return fmt.Errorf("failed to create enricher: %w", enrichErr)
		}
		defer enricher.Close()
		enrichDecision(ctx, enricher, decision)
	}

	if asJSON {
		return printJSON(decision)
	}

	fmt.Println(cli.RenderDecision(d.Financial.ClientID, decision))
	return nil
}

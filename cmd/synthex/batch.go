package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fintelops/synthex/internal/common"
	"github.com/fintelops/synthex/internal/config"
	"github.com/fintelops/synthex/internal/dossier"
	"github.com/fintelops/synthex/internal/enrich"
	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/service"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Synthesize every dossier in a directory",
		Long: `Run synthesis over every client dossier in a directory and write one
decision file per client.

Dossiers are processed in file-name order; each run gets a unique run id that
tags the log stream and the output directory.

Examples:
  synthex batch --input ./dossiers --output ./decisions
  synthex batch --input ./dossiers --output ./decisions --preset conservative
  synthex batch --input ./dossiers --output ./decisions --enrich`,
		RunE: runBatch,
	}

	// Flags
	cmd.Flags().StringP("input", "i", "", "Directory of client dossier files")
	cmd.Flags().StringP("output", "o", "", "Directory to write decision JSON files into")
	cmd.Flags().StringP("preset", "p", "", "Named configuration preset (crisis, conservative, balanced, aggressive)")
	cmd.Flags().Bool("enrich", false, "Rewrite explanations via the configured narrative provider")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("batch.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("batch.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("batch.preset", cmd.Flags().Lookup("preset"))
	_ = viper.BindPFlag("batch.enrich", cmd.Flags().Lookup("enrich"))

	return cmd
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	input := config.ExpandPath(viper.GetString("batch.input"))
	output := config.ExpandPath(viper.GetString("batch.output"))
	preset := viper.GetString("batch.preset")
	doEnrich := viper.GetBool("batch.enrich")

	runID := uuid.New().String()
	logger := slog.Default().With("run_id", runID)

	cfg, err := loadFusionConfig(preset)
	if err != nil {
		return fmt.Errorf("failed to load fusion config: %w", err)
	}

	dossiers, err := dossier.LoadDir(input)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("failed to load dossiers from %s", input), err)
	}

	// Indexing by client id rejects two files claiming the same client, which
	// would otherwise silently overwrite one decision with the other.
	store, err := dossier.NewStore(dossiers)
	if err != nil {
		return common.NewUserError("conflicting dossiers", err)
	}
	clientIDs := store.ClientIDs()

	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var enricher *enrich.Enricher
	if doEnrich {
		enricher, err = createEnricher()
		if err != nil {
			return fmt.Errorf("failed to create enricher: %w", err)
		}
		defer enricher.Close()
	}

	logger.Info("Starting batch synthesis", "dossiers", len(dossiers), "input", input, "output", output)

	bar := progressbar.NewOptions(len(clientIDs),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Synthesizing dossiers...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(os.Stderr); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)

	stats := service.BatchStats{TotalDossiers: len(clientIDs)}
	start := time.Now()

	for _, clientID := range clientIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		decision, synthErr := synthesizeClient(ctx, cfg, store, store, store, clientID)
		if synthErr != nil {
			stats.Failed++
			logger.Error("Synthesis failed", "client_id", clientID, "error", synthErr)
			_ = bar.Add(1)
			continue
		}

		if enricher != nil && enrichDecision(ctx, enricher, decision) {
			stats.Enriched++
		}

		if writeErr := writeDecisionFile(output, clientID, decision); writeErr != nil {
			stats.Failed++
			logger.Error("Failed to write decision", "client_id", clientID, "error", writeErr)
			_ = bar.Add(1)
			continue
		}

		stats.Synthesized++
		_ = bar.Add(1)
	}
	stats.Duration = time.Since(start)

	logger.Info("Batch synthesis complete",
		"synthesized", stats.Synthesized,
		"failed", stats.Failed,
		"enriched", stats.Enriched,
		"duration", stats.Duration)

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d dossiers failed", stats.Failed, stats.TotalDossiers)
	}
	return nil
}

func writeDecisionFile(dir, clientID string, decision *model.FusedDecision) error {
	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decision for %s: %w", clientID, err)
	}
	return os.WriteFile(filepath.Join(dir, clientID+".json"), out, 0o644)
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"isofit/internal/fit"
	"isofit/internal/results"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Display a persisted fit summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			identity := args[0]
			dir := results.Dir(cfg.Paths.OutputDir, fit.Version, identity)
			summaries, err := results.ReadSummaryCSV(filepath.Join(dir, results.SummaryFile))
			if err != nil {
				return fmt.Errorf("no fit found for %s: %w", identity, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fit artifacts for %s (%s)\n", identity, dir)

			sampling, err := results.ReadSamplingSummary(filepath.Join(dir, results.SamplingSummaryFile))
			if err == nil {
				printer := message.NewPrinter(language.English)
				printer.Fprintf(out, "Run %s: %d live points, %d iterations, %d likelihood calls (eff %.1f%%)\n",
					sampling.RunID, sampling.NLive, sampling.NIter, sampling.NCall, sampling.Eff)
				fmt.Fprintf(out, "logZ = %.2f ± %.2f, wall time %.1f min\n",
					sampling.LogZ, sampling.LogZErr, sampling.TotalTime)
			}

			renderSummaryTable(out, summaries)
			return nil
		},
	}
}

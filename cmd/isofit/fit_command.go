package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"isofit/internal/fit"
	"isofit/internal/gaia"
	"isofit/internal/results"
)

func newFitCommand(ctx *commandContext) *cobra.Command {
	var (
		ra        float64
		dec       float64
		mag       float64
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "fit <name>",
		Short: "Look up a star and fit its isochrone model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}

			identity := args[0]
			opts := gaia.LookupOptions{
				MagTol:       cfg.Catalog.MagTolerance,
				RadiusArcsec: cfg.Catalog.RadiusArcsec,
			}
			if cmd.Flags().Changed("mag") {
				opts.ApproxMag = &mag
			}

			record, err := gaia.Lookup(cmd.Context(), client, gaia.Coord{RA: ra, Dec: dec}, opts)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", identity, err)
			}

			res, err := fit.Run(cmd.Context(), identity, record, fit.Options{
				OutputRoot:   cfg.Paths.OutputDir,
				Overwrite:    overwrite,
				NLive:        cfg.Sampler.NLive,
				DLogZ:        cfg.Sampler.DLogZ,
				Walks:        cfg.Sampler.Walks,
				Seed:         cfg.Sampler.Seed,
				ResampleSize: cfg.Sampler.ResampleSize,
				Logger:       logger,
			})
			if err != nil {
				return fmt.Errorf("fit %s: %w", identity, err)
			}

			out := cmd.OutOrStdout()
			if res.Loaded {
				fmt.Fprintf(out, "Reusing persisted fit in %s\n", res.Dir)
			} else {
				printer := message.NewPrinter(language.English)
				printer.Fprintf(out, "Sampling finished: %d iterations, %d likelihood calls, logZ = %.2f ± %.2f\n",
					res.Summary.NIter, res.Summary.NCall, res.Summary.LogZ, res.Summary.LogZErr)
				fmt.Fprintf(out, "Artifacts written to %s\n", res.Dir)
			}
			renderSummaryTable(out, results.Describe(res.Derived))
			return nil
		},
	}

	cmd.Flags().Float64Var(&ra, "ra", 0, "Right ascension in degrees (ICRS)")
	cmd.Flags().Float64Var(&dec, "dec", 0, "Declination in degrees (ICRS)")
	cmd.Flags().Float64Var(&mag, "mag", 0, "Approximate optical magnitude filter")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Refit even when artifacts exist")
	_ = cmd.MarkFlagRequired("ra")
	_ = cmd.MarkFlagRequired("dec")

	return cmd
}

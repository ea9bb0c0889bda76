package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"isofit/internal/gaia"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var (
		ra     float64
		dec    float64
		mag    float64
		radius float64
		magTol float64
	)

	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Resolve a position to a Gaia source and print its measurement record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}

			opts := gaia.LookupOptions{
				MagTol:       cfg.Catalog.MagTolerance,
				RadiusArcsec: cfg.Catalog.RadiusArcsec,
			}
			if cmd.Flags().Changed("mag") {
				opts.ApproxMag = &mag
			}
			if cmd.Flags().Changed("radius") {
				opts.RadiusArcsec = radius
			}
			if cmd.Flags().Changed("mag-tol") {
				opts.MagTol = magTol
			}

			record, err := gaia.Lookup(cmd.Context(), client, gaia.Coord{RA: ra, Dec: dec}, opts)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}

			data, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().Float64Var(&ra, "ra", 0, "Right ascension in degrees (ICRS)")
	cmd.Flags().Float64Var(&dec, "dec", 0, "Declination in degrees (ICRS)")
	cmd.Flags().Float64Var(&mag, "mag", 0, "Approximate optical magnitude filter")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Cone search radius in arcseconds")
	cmd.Flags().Float64Var(&magTol, "mag-tol", 0, "Magnitude filter tolerance")
	_ = cmd.MarkFlagRequired("ra")
	_ = cmd.MarkFlagRequired("dec")

	return cmd
}

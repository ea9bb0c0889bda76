package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"isofit/internal/batch"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		threads   int
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "batch <group>",
		Short: "Fit every target in a dataset group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				groups, err := batch.ListGroups(cfg.Paths.DatasetDir)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					fmt.Fprintf(out, "No dataset groups found in %s\n", cfg.Paths.DatasetDir)
					return nil
				}
				fmt.Fprintf(out, "Available groups: %s\n", strings.Join(groups, ", "))
				return nil
			}

			runner := batch.NewRunner(cfg, logger)
			summary, err := runner.Run(cmd.Context(), args[0], threads, overwrite)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Batch %s: %d targets, %d fitted, %d reused, %d skipped, %d failed\n",
				args[0], summary.Total, summary.Completed, summary.Reused, summary.Skipped, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "Number of concurrent fit jobs (0 = one per CPU)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Refit targets with existing artifacts")

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akratos/alchemy/internal/results"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Samples  string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs <experiment>",
		Short: "Inspect persisted experiment runs",
		Long: `List the runs of an experiment stored in a results database, or
dump one run's sample series with --samples.

Example:
  alchemy runs entropy-sweep --db results.db
  alchemy runs entropy-sweep --db results.db --samples <token>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			store, err := results.Open(opts.Database)
			if err != nil {
				_ = out.Error(ErrCodeDatabase, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to open results database", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if opts.Samples != "" {
				return dumpSamples(ctx, store, opts.Samples, out, cmd)
			}

			runs, err := store.ListRuns(ctx, args[0])
			if err != nil {
				_ = out.Error(ErrCodeDatabase, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}

			if rootOpts.Format == "json" {
				return out.Success(runs)
			}
			for _, run := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s seed=%s\n", run.Token, run.Seed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d runs\n", len(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	cmd.Flags().StringVar(&opts.Samples, "samples", "", "dump the sample series of this run token")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// dumpSamples prints one run's series, one canonical-JSON payload per
// line in text mode.
func dumpSamples(ctx context.Context, store *results.Store, token string, out *OutputFormatter, cmd *cobra.Command) error {
	samples, err := store.ReadSamples(ctx, token)
	if err != nil {
		_ = out.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}

	if out.Format == "json" {
		return out.Success(samples)
	}
	for _, sample := range samples {
		payload, err := results.MarshalCanonical(sample.Payload)
		if err != nil {
			_ = out.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to encode payload", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", sample.Index, sample.Attempts, payload)
	}
	return nil
}

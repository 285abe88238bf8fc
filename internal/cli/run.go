package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akratos/alchemy/internal/experiment"
	"github.com/akratos/alchemy/internal/results"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	CSV      string

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens experiment.RunTokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run an experiment sweep from a config file",
		Long: `Run an experiment sweep: fan the configured soup out over
independent runs, poll the configured probes, and deliver the series
to a results database and/or a CSV table.

Example:
  alchemy run experiments/entropy.yaml --db results.db
  alchemy run experiments/motif.yaml --csv - --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (optional)")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "CSV output path, or - for stdout (optional)")

	return cmd
}

func runExperiment(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)

	cfg, err := LoadExperimentConfig(configPath)
	if err != nil {
		return err
	}
	params := cfg.Params()
	probe, columns, err := cfg.Probe()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid probe config", err)
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = experiment.UUIDv7Generator{}
	}
	runner := &experiment.Runner{Tokens: tokens, Logger: logger}

	// SIGINT/SIGTERM skip runs not yet started; in-flight runs finish.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, cancelling queued runs", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("experiment starting",
		"name", cfg.Name, "runs", params.Runs, "run_length", params.RunLength)
	runs, err := runner.Sweep(ctx, params, probe)
	if err != nil {
		return WrapExitError(ExitCommandError, "experiment failed to start", err)
	}

	failed := 0
	for _, run := range runs {
		if run.Err != nil {
			failed++
			logger.Error("run failed", "run", run.Token, "error", run.Err)
		}
	}

	if opts.Database != "" {
		store, err := results.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open results database", err)
		}
		defer store.Close()
		if err := experiment.Persist(ctx, store, params, runs); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist results", err)
		}
		logger.Info("results persisted", "db", opts.Database)
	}

	if opts.CSV != "" {
		var w io.Writer = cmd.OutOrStdout()
		if opts.CSV != "-" {
			f, err := os.Create(opts.CSV)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create CSV file", err)
			}
			defer f.Close()
			w = f
		}
		if err := experiment.WriteCSV(w, columns, runs); err != nil {
			return WrapExitError(ExitCommandError, "failed to write CSV", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d runs, %d failed\n", cfg.Name, len(runs), failed)
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d runs failed", failed, len(runs)))
	}
	return nil
}

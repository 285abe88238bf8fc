package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akratos/alchemy/internal/harness"
)

// scenarioOutcome is one scenario's entry in the test command's JSON
// payload.
type scenarioOutcome struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run conformance scenarios",
		Long: `Execute YAML conformance scenarios against the reaction engine
and report pass/fail per scenario. Exit code 1 if any scenario fails.

Example:
  alchemy test scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			outcomes := make([]scenarioOutcome, 0, len(args))
			failed := 0
			for _, path := range args {
				scenario, err := harness.LoadScenario(path)
				if err != nil {
					_ = out.Error(ErrCodeScenario, err.Error(), map[string]any{"path": path})
					return WrapExitError(ExitCommandError, "failed to load scenario", err)
				}
				result, err := harness.Run(scenario)
				if err != nil {
					_ = out.Error(ErrCodeScenario, err.Error(), map[string]any{"scenario": scenario.Name})
					return WrapExitError(ExitCommandError, "failed to run scenario", err)
				}

				outcomes = append(outcomes, scenarioOutcome{
					Name:   scenario.Name,
					Pass:   result.Pass,
					Errors: result.Errors,
				})
				if !result.Pass {
					failed++
				}

				if rootOpts.Format == "text" {
					status := "PASS"
					if !result.Pass {
						status = "FAIL"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", status, scenario.Name)
					for _, e := range result.Errors {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
					}
				}
			}

			if rootOpts.Format == "json" {
				if err := out.Success(outcomes); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d scenarios, %d failed\n", len(args), failed)
			}

			if failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", failed, len(args)))
			}
			return nil
		},
	}
	return cmd
}

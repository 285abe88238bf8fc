package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akratos/alchemy/internal/lambda"
)

// ReduceOptions holds flags for the reduce command.
type ReduceOptions struct {
	*RootOptions
	Limit int
}

// reduceReport is the reduce command's JSON payload.
type reduceReport struct {
	Input  string `json:"input"`
	Result string `json:"result"`
	Steps  int    `json:"steps"`
}

// NewReduceCommand creates the reduce command.
func NewReduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReduceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reduce <term>",
		Short: "Beta-reduce a lambda term to normal form",
		Long: `Reduce a lambda term under leftmost-outermost order, bounded by
the step budget. Exhausting the budget is a failure: the term either
diverges or needs a larger --limit.

Example:
  alchemy reduce '(\x.\y.x y) (\x.x) (\x.x)'
  alchemy reduce '(\x.x x) (\x.x x)' --limit 50`,
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

			term, err := lambda.Parse(args[0])
			if err != nil {
				_ = out.Error(ErrCodeTermParse, err.Error(), nil)
				return WrapExitError(ExitCommandError, "parse failed", err)
			}

			reduced, steps := lambda.Reduce(term, opts.Limit)
			if steps == opts.Limit {
				_ = out.Error(ErrCodeGeneric,
					fmt.Sprintf("no normal form within %d steps", opts.Limit), nil)
				return NewExitError(ExitFailure, "reduction budget exhausted")
			}

			report := reduceReport{Input: term.String(), Result: reduced.String(), Steps: steps}
			if rootOpts.Format == "json" {
				return out.Success(report)
			}
			return out.Success(fmt.Sprintf("%s\n%d steps", report.Result, report.Steps))
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 100000, "reduction step budget")
	return cmd
}

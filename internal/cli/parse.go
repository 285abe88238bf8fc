package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akratos/alchemy/internal/lambda"
)

// parseReport is the parse command's JSON payload.
type parseReport struct {
	Term          string `json:"term"`
	Key           string `json:"key"`
	Nodes         int    `json:"nodes"`
	Depth         int    `json:"depth"`
	FreeVariables bool   `json:"free_variables"`
	Recursive     bool   `json:"recursive"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <term>",
		Short: "Parse a lambda term and print its canonical form",
		Long: `Parse a lambda term written in classic notation and print its
canonical rendering plus basic structure.

Example:
  alchemy parse '\x.\y.x y'
  alchemy parse '(\x.x x) u' --format json`,
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

			report := parseReport{
				Term:          term.String(),
				Key:           term.Key(),
				Nodes:         term.NumNodes(),
				Depth:         term.MaxDepth(),
				FreeVariables: term.HasFreeVariables(),
				Recursive:     term.IsRecursive(),
			}
			if rootOpts.Format == "json" {
				return out.Success(report)
			}
			return out.Success(fmt.Sprintf("term: %s\nkey: %s\nnodes: %d\ndepth: %d\nfree variables: %t\nrecursive: %t",
				report.Term, report.Key, report.Nodes, report.Depth, report.FreeVariables, report.Recursive))
		},
	}
	return cmd
}

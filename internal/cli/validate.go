package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate an experiment config without running it",
		Long: `Validate an experiment configuration file: strict YAML parsing,
schema validation, engine parameter checks, and probe term parsing.

Example:
  alchemy validate experiments/entropy.yaml`,
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

			cfg, err := LoadExperimentConfig(args[0])
			if err != nil {
				_ = out.Error(ErrCodeConfigInvalid, err.Error(), nil)
				return err
			}

			params := cfg.Params()
			if err := params.Validate(); err != nil {
				_ = out.Error(ErrCodeConfigInvalid, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid experiment parameters", err)
			}
			if err := params.Soup.Validate(); err != nil {
				_ = out.Error(ErrCodeConfigInvalid, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid engine config", err)
			}
			if _, _, err := cfg.Probe(); err != nil {
				_ = out.Error(ErrCodeTermParse, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid probe config", err)
			}

			if rootOpts.Format == "json" {
				return out.Success(map[string]any{"name": cfg.Name, "valid": true})
			}
			return out.Success(fmt.Sprintf("%s: valid (%d runs of %d attempts)", cfg.Name, cfg.Runs, cfg.RunLength))
		},
	}
	return cmd
}

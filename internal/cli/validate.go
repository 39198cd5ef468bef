package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/config"
	"github.com/roach88/tierview/internal/roster"
)

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Conference config.Conference `json:"conference"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [conference.cue]",
		Short: "Validate a conference rules file",
		Long: `Validate a CUE conference rules file against the embedded schema and
print it with defaults filled in.

The path defaults to $TIERVIEW_CONFIG.

Exit codes:
  0 - Rules are valid
  1 - Rules do not satisfy the schema
  2 - Command error (file not found, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if path == "" {
		env, err := config.LoadEnv()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalid, "invalid environment", err)
		}
		path = env.ConfigPath
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "no rules file given and TIERVIEW_CONFIG is unset", nil)
	}

	formatter.VerboseLog("validating %s", path)
	conf, err := config.Load(path)
	switch {
	case config.IsNotFound(err):
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cannot read %s", path), err)
	case err != nil:
		return formatter.Fail(ExitFailure, ErrCodeInvalid, "rules do not satisfy the schema", err)
	}

	// Address patterns are only compiled by the roster.
	if _, err := roster.NewStore(conf.RosterRules()); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalid, "invalid address rules", err)
	}

	result := ValidationResult{Valid: true, Conference: conf}
	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s valid (room %s, layout %q)\n", path, conf.Room, conf.View.Layout)
	})
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/controls"
	"github.com/roach88/tierview/internal/roster"
)

// NewControlsCommand creates the controls command.
func NewControlsCommand(rootOpts *RootOptions) *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "controls",
		Short: "Show the controls enabled for a tier",
		Long: `Print the toolbar buttons and settings sections a local participant of
the given tier may use.

Example:
  tierview controls --tier tier-0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			t, ok := roster.ParseTier(tier)
			if !ok {
				return formatter.Fail(ExitCommandError, ErrCodeInvalid, fmt.Sprintf("invalid tier %q", tier), nil)
			}
			s := controls.For(t)
			return formatter.Render(s, func(w io.Writer) {
				fmt.Fprintf(w, "tier: %s\n", s.Tier)
				fmt.Fprintf(w, "toolbar: %s\n", strings.Join(s.Toolbar, ", "))
				fmt.Fprintf(w, "settings: %s\n", strings.Join(s.Settings, ", "))
			})
		},
	}

	cmd.Flags().StringVarP(&tier, "tier", "t", string(roster.Tier3), "participant tier (tier-0 .. tier-3)")

	return cmd
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/roster"
)

// LayoutOptions holds flags for the layout command.
type LayoutOptions struct {
	*RootOptions
	Layout string
	Width  int
	Height int
	Tier1  int
	Tier2  int
}

// LayoutResult is the JSON payload of the layout command.
type LayoutResult struct {
	Rules geometry.Rules       `json:"rules"`
	Tier1 []geometry.Placement `json:"tier1"`
	Tier2 []geometry.Placement `json:"tier2"`
}

// NewLayoutCommand creates the layout command.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LayoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute tile geometry for a layout",
		Long: `Compute the tier-1 and tier-2 tile sizes, the remote container box and
the placement of every tile for one layout and viewport.

Examples:
  tierview layout --layout layout-4 --width 1000 --height 800
  tierview layout --layout layout-9 --tier1 5 --tier2 2 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Layout, "layout", "l", "layout-1", "layout identifier (layout-1 .. layout-16)")
	cmd.Flags().IntVar(&opts.Width, "width", 1920, "viewport client width")
	cmd.Flags().IntVar(&opts.Height, "height", 1080, "viewport client height")
	cmd.Flags().IntVar(&opts.Tier1, "tier1", 1, "number of tier-1 participants")
	cmd.Flags().IntVar(&opts.Tier2, "tier2", 4, "number of tier-2 participants")

	return cmd
}

func runLayout(opts *LayoutOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	l := geometry.ParseLayout(opts.Layout)
	if !l.Valid() {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid,
			fmt.Sprintf("unknown layout %q", opts.Layout), nil)
	}
	if opts.Tier1 < 0 || opts.Tier2 < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, "tier counts must not be negative", nil)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, "viewport must not be negative", nil)
	}

	v := geometry.Viewport{ClientWidth: opts.Width, ClientHeight: opts.Height}
	rules := geometry.Compute(l, opts.Tier1, opts.Tier2, v)
	formatter.VerboseLog("computed %s for %dx%d", l, v.ClientWidth, v.ClientHeight)

	result := LayoutResult{
		Rules: rules,
		Tier1: placeAll(rules, roster.Tier1, opts.Tier1),
		Tier2: placeAll(rules, roster.Tier2, opts.Tier2),
	}
	return formatter.Render(result, func(w io.Writer) {
		writeLayoutText(w, result)
	})
}

func placeAll(r geometry.Rules, tier roster.Tier, n int) []geometry.Placement {
	out := make([]geometry.Placement, 0, n)
	for ordinal := 1; ordinal <= n; ordinal++ {
		out = append(out, geometry.Place(r, tier, ordinal))
	}
	return out
}

func writeLayoutText(w io.Writer, res LayoutResult) {
	r := res.Rules
	fmt.Fprintf(w, "%s %dx%d grid %dx%d\n",
		r.Layout, r.Viewport.ClientWidth, r.Viewport.ClientHeight, r.Grid.Columns, r.Grid.Rows)
	fmt.Fprintf(w, "tier-1 tile: %s\n", formatTile(r.Tier1))
	fmt.Fprintf(w, "tier-2 tile: %s\n", formatTile(r.Tier2))
	fmt.Fprintf(w, "container: %s\n", formatPlacement(r.Container))
	for i, p := range res.Tier1 {
		fmt.Fprintf(w, "tier-1 #%d: %s\n", i+1, formatPlacement(p))
	}
	for i, p := range res.Tier2 {
		fmt.Fprintf(w, "tier-2 #%d: %s\n", i+1, formatPlacement(p))
	}
}

func formatTile(t geometry.Tile) string {
	if !t.Usable() {
		return "none"
	}
	return strconv.FormatFloat(t.Width, 'f', -1, 64) + "x" + strconv.FormatFloat(t.Height, 'f', -1, 64)
}

// formatPlacement lists the set properties of p in a fixed order.
func formatPlacement(p geometry.Placement) string {
	if p.IsEmpty() {
		return "(empty)"
	}
	props := []struct{ name, value string }{
		{"width", p.Width},
		{"height", p.Height},
		{"marginTop", p.MarginTop},
		{"marginLeft", p.MarginLeft},
		{"marginRight", p.MarginRight},
		{"marginBottom", p.MarginBottom},
		{"top", p.Top},
		{"left", p.Left},
		{"right", p.Right},
		{"bottom", p.Bottom},
		{"avatar", p.Avatar},
	}
	var parts []string
	for _, prop := range props {
		if prop.value != "" {
			parts = append(parts, prop.name+"="+prop.value)
		}
	}
	if p.Hidden {
		parts = append(parts, "hidden")
	}
	return strings.Join(parts, " ")
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/presence"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	Flat bool // also list every element of the stanza
}

// DecodeResult is the JSON payload of the decode command.
type DecodeResult struct {
	From   string          `json:"from,omitempty"`
	Fields presence.Fields `json:"fields"`
	Nodes  []string        `json:"nodes,omitempty"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <stanza.xml>",
		Short: "Decode one presence stanza",
		Long: `Decode a presence stanza into the fields the roster consumes.

Pass - to read the stanza from stdin.

Examples:
  tierview decode ./presence.xml
  cat presence.xml | tierview decode - --flat`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Flat, "flat", false, "list every element below the root")

	return cmd
}

func runDecode(opts *DecodeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cannot read %s", path), err)
	}

	root, err := presence.ParseXML(data)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeParse, "invalid stanza", err)
	}

	result := DecodeResult{
		From:   root.Attr("from"),
		Fields: presence.Decode(root),
	}
	if opts.Flat {
		for _, n := range presence.Flatten(root) {
			result.Nodes = append(result.Nodes, n.Tag)
		}
	}
	formatter.VerboseLog("decoded <%s> with %d children", root.Tag, len(root.Children))

	return formatter.Render(result, func(w io.Writer) {
		writeDecodeText(w, result)
	})
}

func writeDecodeText(w io.Writer, res DecodeResult) {
	if res.From != "" {
		fmt.Fprintf(w, "from: %s\n", res.From)
	}
	f := res.Fields
	if f.IsEmpty() {
		fmt.Fprintln(w, "no presence fields")
	}
	fields := []struct {
		name  string
		value *string
	}{
		{"nick", f.Nick},
		{"userId", f.UserID},
		{"statsId", f.StatsID},
		{"version", f.Version},
		{"botType", f.BotType},
		{"userType", f.Tier},
		{"status", f.Status},
		{"jid", f.JID},
	}
	for _, field := range fields {
		if field.value != nil {
			fmt.Fprintf(w, "%s: %s\n", field.name, *field.value)
		}
	}
	if id := f.Identity; id != nil {
		if id.User != nil {
			fmt.Fprintf(w, "identity.user: id=%s name=%s avatar=%s\n", id.User.ID, id.User.Name, id.User.Avatar)
		}
		if id.Group != "" {
			fmt.Fprintf(w, "identity.group: %s\n", id.Group)
		}
	}
	if f.Left {
		fmt.Fprintln(w, "left: true")
	}
	if len(res.Nodes) > 0 {
		fmt.Fprintf(w, "nodes: %s\n", strings.Join(res.Nodes, " "))
	}
}

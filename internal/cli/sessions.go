package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/config"
	"github.com/roach88/tierview/internal/roster"
	"github.com/roach88/tierview/internal/session"
)

// SessionInfo is one stored session and its tier map.
type SessionInfo struct {
	ID    string                 `json:"id"`
	Tiers map[string]roster.Tier `json:"tiers"`
}

// SessionsResult is the JSON payload of the sessions command.
type SessionsResult struct {
	Sessions []SessionInfo `json:"sessions"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions and their tiers",
		Long: `List every session in a session database with the tier stored for each
participant. These are the tiers a rejoining participant gets back.

Examples:
  tierview sessions --db ./tierview.db
  TIERVIEW_DB=./tierview.db tierview sessions --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "session database (default $TIERVIEW_DB)")

	return cmd
}

func runSessions(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if dbPath == "" {
		if env, err := config.LoadEnv(); err == nil {
			dbPath = env.DBPath
		}
	}
	if dbPath == "" {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, "no database: pass --db or set TIERVIEW_DB", nil)
	}
	// Open creates missing databases; listing must not.
	if _, err := os.Stat(dbPath); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), err)
	}

	st, err := session.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, "open session database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	ids, err := st.Sessions(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalid, "list sessions", err)
	}

	result := SessionsResult{Sessions: make([]SessionInfo, 0, len(ids))}
	for _, id := range ids {
		sess, err := st.Begin(ctx, id, "")
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInvalid, "read session", err)
		}
		tiers, err := sess.Tiers(ctx)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInvalid, fmt.Sprintf("read tiers of %s", id), err)
		}
		result.Sessions = append(result.Sessions, SessionInfo{ID: id, Tiers: tiers})
	}

	return formatter.Render(result, func(w io.Writer) {
		if len(result.Sessions) == 0 {
			fmt.Fprintln(w, "No sessions.")
			return
		}
		for _, s := range result.Sessions {
			fmt.Fprintf(w, "%s (%d tiers)\n", s.ID, len(s.Tiers))
			ids := make([]string, 0, len(s.Tiers))
			for pid := range s.Tiers {
				ids = append(ids, pid)
			}
			slices.Sort(ids)
			for _, pid := range ids {
				fmt.Fprintf(w, "  %s: %s\n", pid, s.Tiers[pid])
			}
		}
	})
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/config"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/identity"
	"github.com/roach88/tierview/internal/roster"
	"github.com/roach88/tierview/internal/session"
	"github.com/roach88/tierview/internal/sink"
)

// maxInputLine bounds one line of stream input.
const maxInputLine = 1 << 20

// StreamOptions holds flags for the stream command.
type StreamOptions struct {
	*RootOptions
	Config     string
	Database   string
	Session    string
	Sink       string // "json" | "cbor"
	Token      string
	MeetingURL string

	// PassIDs overrides the pass id generator (for testing).
	PassIDs coordinator.PassIDGenerator
}

// StreamStats summarises a finished stream.
type StreamStats struct {
	Events   int `json:"events"`
	Rejected int `json:"rejected"`
}

// NewStreamCommand creates the stream command.
func NewStreamCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StreamOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Run the layout coordinator over stdin events",
		Long: `Run the layout coordinator as a long-lived process.

Events are read from stdin, one JSON object per line (presence, leave,
layout, resize, tile_view, make_tier). Placement, container, control and
announce frames are written to stdout as JSON lines or CBOR. Logs go to
stderr.

The local tier comes from local_tier in the rules file, else from the
meeting token (--jwt), else from the meeting URL (--url).

With --db the session tier map and the placement journal are kept in a
SQLite database, and members rejoining the same --session get their tier
back.

Examples:
  tierview stream --config ./conference.cue < events.ndjson
  tierview stream --config ./conference.cue --db ./tierview.db --sink cbor`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "conference rules file (default $TIERVIEW_CONFIG)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "session database (default $TIERVIEW_DB, none when empty)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to resume (default: a new id)")
	cmd.Flags().StringVar(&opts.Sink, "sink", "json", "output frame encoding (json|cbor)")
	cmd.Flags().StringVar(&opts.Token, "jwt", "", "meeting token (default $TIERVIEW_JWT)")
	cmd.Flags().StringVar(&opts.MeetingURL, "url", "", "meeting URL (default $TIERVIEW_URL)")

	return cmd
}

func runStream(opts *StreamOptions, cmd *cobra.Command) error {
	env, err := config.LoadEnv()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}
	opts.applyEnv(env)
	logger := newLogger(opts.RootOptions, cmd, env.Level())

	if opts.Config == "" {
		return NewExitError(ExitCommandError, "no rules file: pass --config or set TIERVIEW_CONFIG")
	}
	conf, err := config.Load(opts.Config)
	if err != nil {
		code := ExitFailure
		if config.IsNotFound(err) {
			code = ExitCommandError
		}
		return WrapExitError(code, "load rules", err)
	}

	out, err := sink.New(opts.Sink, cmd.OutOrStdout())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --sink", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rosterOpts := []roster.Option{
		roster.WithLogger(logger),
		roster.WithLocalTier(localTier(conf, opts, logger)),
	}
	coordOpts := []coordinator.Option{
		conf.ViewOption(),
		coordinator.WithDelays(conf.CoordinatorDelays()),
		coordinator.WithAnnouncer(out),
		coordinator.WithLogger(logger),
	}
	if opts.PassIDs != nil {
		coordOpts = append(coordOpts, coordinator.WithPassIDs(opts.PassIDs))
	}

	var primary sink.Sink = out
	if opts.Database != "" {
		st, err := session.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "open session database", err)
		}
		defer st.Close()
		st.SetLogger(logger)

		if opts.Session == "" {
			opts.Session = uuid.Must(uuid.NewV7()).String()
		}
		sess, err := st.Begin(ctx, opts.Session, conf.Room)
		if err != nil {
			return WrapExitError(ExitCommandError, "begin session", err)
		}
		logger.Info("session started", "session", sess.ID(), "db", opts.Database)

		rosterOpts = append(rosterOpts, roster.WithTierLookup(sess))
		coordOpts = append(coordOpts, coordinator.WithObserver(sess))
		journal := sink.NewJournal(out, sess)
		journal.SetLogger(logger)
		primary = journal
	}

	r, err := roster.NewStore(conf.RosterRules(), rosterOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid address rules", err)
	}
	coord := coordinator.New(r, sink.Tee{primary, sink.NewLog(logger)}, coordOpts...)

	stats, err := streamEvents(ctx, coord, cmd.InOrStdin(), logger)
	logger.Info("stream finished", "events", stats.Events, "rejected", stats.Rejected)
	if err != nil {
		return WrapExitError(ExitFailure, "stream", err)
	}
	return nil
}

// applyEnv fills unset flags from the environment.
func (o *StreamOptions) applyEnv(env config.Env) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&o.Config, env.ConfigPath)
	fill(&o.Database, env.DBPath)
	fill(&o.Token, env.Token)
	fill(&o.MeetingURL, env.MeetingURL)
}

// localTier picks the starting tier of the local occupant.
func localTier(conf config.Conference, opts *StreamOptions, logger *slog.Logger) roster.Tier {
	if t, ok := conf.ConfiguredLocalTier(); ok {
		logger.Info("local tier", "tier", t, "source", "config")
		return t
	}
	t, source, err := identity.LocalTier(opts.Token, opts.MeetingURL)
	if err != nil {
		logger.Warn("ignoring meeting token", "error", err)
	}
	logger.Info("local tier", "tier", t, "source", source)
	return t
}

// streamEvents feeds input lines to the coordinator until EOF or
// cancellation. Pending updates are flushed once input ends.
func streamEvents(ctx context.Context, coord *coordinator.Coordinator, in io.Reader, logger *slog.Logger) (StreamStats, error) {
	runErr := make(chan error, 1)
	go func() {
		runErr <- coord.Run(ctx)
	}()

	type readResult struct {
		stats StreamStats
		err   error
	}
	readDone := make(chan readResult, 1)
	go func() {
		stats, err := readEvents(in, maxInputLine, coord.Enqueue, logger)
		readDone <- readResult{stats, err}
	}()

	select {
	case err := <-runErr:
		// Cancelled before input ended; the reader may still be blocked.
		if errors.Is(err, context.Canceled) {
			return StreamStats{}, nil
		}
		return StreamStats{}, err

	case res := <-readDone:
		coord.Stop()
		if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
			return res.stats, err
		}
		if ctx.Err() == nil {
			if err := coord.Flush(ctx); err != nil {
				logger.Error("final flush failed", "error", err)
			}
		}
		return res.stats, res.err
	}
}

// readEvents parses input lines and hands each event to enqueue. Blank
// lines, comments, malformed lines and lines longer than maxLine are
// skipped; only a read error or a refused enqueue ends the loop.
func readEvents(in io.Reader, maxLine int, enqueue func(coordinator.Event) error, logger *slog.Logger) (StreamStats, error) {
	var stats StreamStats
	reader := bufio.NewReaderSize(in, 64*1024)

	line := 0
	for {
		raw, tooLong, err := readLine(reader, maxLine)
		if len(raw) == 0 && !tooLong && errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("read input: %w", err)
		}
		line++

		if tooLong {
			stats.Rejected++
			logger.Warn("rejected input", "line", line, "error", fmt.Sprintf("line exceeds %d bytes", maxLine))
		} else if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "#") {
			ev, perr := ParseStreamInput([]byte(text))
			if perr != nil {
				stats.Rejected++
				logger.Warn("rejected input", "line", line, "error", perr)
			} else {
				if qerr := enqueue(ev); qerr != nil {
					return stats, fmt.Errorf("line %d: %w", line, qerr)
				}
				stats.Events++
			}
		}

		if errors.Is(err, io.EOF) {
			return stats, nil
		}
	}
}

// readLine returns the next line without its terminator. A line longer
// than limit is consumed and discarded, and reported as tooLong.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		var (
			frag     []byte
			isPrefix bool
		)
		frag, isPrefix, err = r.ReadLine()
		if !tooLong {
			if len(line)+len(frag) > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, frag...)
			}
		}
		if err != nil || !isPrefix {
			return line, tooLong, err
		}
	}
}

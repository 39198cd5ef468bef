package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/tierview/internal/config"
	"github.com/roach88/tierview/internal/coordinator"
	"github.com/roach88/tierview/internal/harness"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string // session store path; in memory when empty
	Golden    bool   // compare against the scenario's golden file
	GoldenDir string
}

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	Scenario    string         `json:"scenario"`
	Pass        bool           `json:"pass"`
	Errors      []string       `json:"errors,omitempty"`
	Plan        map[string]any `json:"plan"`
	Fingerprint string         `json:"fingerprint"`
	RosterSize  int            `json:"roster_size"`
	Emitted     int            `json:"emitted"`
	GoldenMatch *bool          `json:"golden_match,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay one scenario and print the final plan",
		Long: `Replay a scenario through the roster and layout coordinator and print the
final placement plan.

With --db the session store (persisted tiers and placement journal) is
kept on disk for inspection; replaying into the same database resumes the
scenario's session. With --golden the result is compared against
the scenario's golden snapshot.

Exit codes:
  0 - Scenario passed (and matched its golden file)
  1 - Assertion failure or golden mismatch
  2 - Command error (file not found, invalid scenario, etc.)

Examples:
  tierview replay ./scenarios/01-layout4-basic.yaml
  tierview replay ./scenarios/01-layout4-basic.yaml --db ./session.db --golden`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "keep the session store at this path (default $TIERVIEW_DB, else in memory)")
	cmd.Flags().BoolVar(&opts.Golden, "golden", false, "compare against the golden snapshot")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden directory (default: golden/ next to the scenario directory)")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario not found: %s", path), err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, "invalid scenario", err)
	}

	dbPath := opts.Database
	if dbPath == "" {
		if env, err := config.LoadEnv(); err == nil {
			dbPath = env.DBPath
		}
	}

	runOpts := []harness.Option{}
	if opts.Verbose {
		runOpts = append(runOpts, harness.WithLogger(newLogger(opts.RootOptions, cmd, 0)))
	}
	if dbPath != "" {
		formatter.VerboseLog("session store: %s", dbPath)
		runOpts = append(runOpts, harness.WithDatabase(dbPath))
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalid, "replay failed", err)
	}

	fingerprint, err := result.Plan.Fingerprint()
	if err != nil {
		return fmt.Errorf("fingerprint plan: %w", err)
	}

	out := ReplayResult{
		Scenario:    scenario.Name,
		Pass:        result.Pass,
		Errors:      result.Errors,
		Plan:        result.Plan.Canonical(),
		Fingerprint: fingerprint,
		RosterSize:  result.RosterSize,
		Emitted:     len(result.Frames),
	}

	if opts.Golden {
		goldenPath := goldenFilePath(goldenDirFor(filepath.Dir(path), opts.GoldenDir), scenario.Name)
		match, err := compareWithGolden(scenario.Name, result, goldenPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "golden comparison failed", err)
		}
		out.GoldenMatch = &match
	}

	if err := formatter.Render(out, func(w io.Writer) {
		writeReplayText(w, out, result.Plan)
	}); err != nil {
		return err
	}

	switch {
	case !out.Pass:
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	case out.GoldenMatch != nil && !*out.GoldenMatch:
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s does not match its golden file", scenario.Name))
	}
	return nil
}

func writeReplayText(w io.Writer, out ReplayResult, plan coordinator.Plan) {
	mark := "✓"
	if !out.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", mark, out.Scenario)
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}

	layout := string(plan.Rules.Layout)
	if layout == "" {
		layout = "none"
	}
	fmt.Fprintf(w, "layout: %s\n", layout)
	fmt.Fprintf(w, "container: %s\n", formatPlacement(plan.Container()))
	for _, a := range plan.Assignments {
		id := a.ParticipantID
		if a.Local {
			id += " (local)"
		}
		if a.Ordinal > 0 {
			fmt.Fprintf(w, "%s %s #%d: %s\n", id, a.Tier, a.Ordinal, formatPlacement(a.Placement))
		} else {
			fmt.Fprintf(w, "%s %s: %s\n", id, a.Tier, formatPlacement(a.Placement))
		}
	}
	fmt.Fprintf(w, "roster: %d remote, %d frames emitted\n", out.RosterSize, out.Emitted)
	fmt.Fprintf(w, "fingerprint: %s\n", out.Fingerprint)
	if out.GoldenMatch != nil {
		if *out.GoldenMatch {
			fmt.Fprintln(w, "golden: match")
		} else {
			fmt.Fprintln(w, "golden: mismatch (run tierview test --update to regenerate)")
		}
	}
}

// goldenDirFor returns dir when set, otherwise the golden directory that
// sits beside the scenarios directory.
func goldenDirFor(scenariosDir, dir string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(filepath.Clean(scenariosDir)), "golden")
}

// goldenFilePath returns the golden file of a scenario.
func goldenFilePath(goldenDir, name string) string {
	return filepath.Join(goldenDir, name+".golden")
}

// compareWithGolden compares the result snapshot against the golden file.
func compareWithGolden(name string, result *harness.Result, goldenPath string) (bool, error) {
	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("read golden file: %w", err)
	}
	current, err := harness.Snapshot(name, result)
	if err != nil {
		return false, fmt.Errorf("snapshot: %w", err)
	}
	return bytes.Equal(golden, current), nil
}

// updateGoldenFile writes the result snapshot as the golden file.
func updateGoldenFile(name string, result *harness.Result, goldenPath string) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	data, err := harness.Snapshot(name, result)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// execute runs the root command with args and returns what it wrote.
// The TIERVIEW_* environment is cleared so defaults are predictable.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, name := range []string{
		"TIERVIEW_CONFIG", "TIERVIEW_DB", "TIERVIEW_LOG_LEVEL",
		"TIERVIEW_JWT", "TIERVIEW_URL", "TIERVIEW_FORMAT",
	} {
		t.Setenv(name, "")
	}

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	var in io.Reader = strings.NewReader(stdin)
	cmd.SetIn(in)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

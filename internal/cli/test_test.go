package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommand_HarnessScenarios(t *testing.T) {
	out, _, err := execute(t, "", "test", harnessScenarios)
	require.NoError(t, err)

	for _, name := range []string{"layout4-basic", "layout1-hd", "tile-view-off", "tier-rules", "make-tier"} {
		assert.Contains(t, out, "✓ "+name+"\n")
	}
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Filter(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "test", harnessScenarios, "--filter", "*layout*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "layout4-basic", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "layout1-hd", resp.Data.Scenarios[1].Name)
}

func TestTestCommand_UpdateWritesGolden(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"basic.yaml": readFile(t, basicScenario)})

	out, _, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ layout4-basic\n")

	written := filepath.Join(filepath.Dir(dir), "golden", "layout4-basic.golden")
	committed := filepath.Join("..", "harness", "testdata", "golden", "layout4-basic.golden")
	assert.Equal(t, readFile(t, committed), readFile(t, written))

	// The regenerated file is then used for comparison.
	_, _, err = execute(t, "", "test", dir)
	require.NoError(t, err)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"basic.yaml": readFile(t, basicScenario)})
	golden := filepath.Join(t.TempDir(), "elsewhere")
	require.NoError(t, os.MkdirAll(golden, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(golden, "layout4-basic.golden"), []byte(`{"stale":true}`), 0o644))

	out, _, err := execute(t, "", "test", dir, "--golden-dir", golden)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ layout4-basic\n")
	assert.Contains(t, out, "snapshot does not match golden file")
}

func TestTestCommand_FailingScenarioJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"a-basic.yaml":   readFile(t, basicScenario),
		"b-failing.yaml": failingScenario,
	})

	out, _, err := execute(t, "", "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.False(t, resp.Data.Scenarios[1].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[1].Errors)
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: [unterminated\n"})

	out, _, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml\n")
	assert.Contains(t, out, "failed to load scenario")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, _, err := execute(t, "", "test", "/nonexistent/scenarios")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "scenarios directory not found")
	})

	t.Run("bad filter", func(t *testing.T) {
		_, _, err := execute(t, "", "test", harnessScenarios, "--filter", "[")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := execute(t, "", "test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg")
	})
}

func TestTestCommand_Empty(t *testing.T) {
	dir := scenarioDir(t, nil)
	out, _, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

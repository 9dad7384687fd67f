package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/distlab/internal/engine"
)

func TestSampleReproducible(t *testing.T) {
	args := []string{"--format", "json", "sample", modelSpecs, "income", "--draws", "500", "--seed", "7", "--values"}

	out1, _, err := runCLI(t, args...)
	require.NoError(t, err)
	out2, _, err := runCLI(t, args...)
	require.NoError(t, err)

	var r1, r2 engine.Report
	decodeResponse(t, out1, &r1)
	decodeResponse(t, out2, &r2)

	require.Len(t, r1.Outcome.Values, 500)
	assert.Equal(t, r1.Outcome.Values, r2.Outcome.Values)
	assert.Equal(t, int64(7), r1.Evaluation.Seed)
	assert.Equal(t, int64(500), r1.Evaluation.Draws)

	require.NotNil(t, r1.Summary)
	assert.Equal(t, 500, r1.Summary.N)
	assert.GreaterOrEqual(t, r1.Summary.Min, 1.0, "pareto draws are at least y_min")
}

func TestSampleOmitsValuesByDefault(t *testing.T) {
	out, _, err := runCLI(t, "--format", "json", "sample", modelSpecs, "coin", "-n", "100")
	require.NoError(t, err)

	var report engine.Report
	decodeResponse(t, out, &report)
	assert.Empty(t, report.Outcome.Values)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 100, report.Summary.N)
	assert.GreaterOrEqual(t, report.Summary.Min, 0.0)
	assert.LessOrEqual(t, report.Summary.Max, 1.0)
}

func TestSampleText(t *testing.T) {
	out, _, err := runCLI(t, "sample", modelSpecs, "coin", "--draws", "5", "--seed", "3", "--values", "--run", "s1")
	require.NoError(t, err)

	assert.Contains(t, out, "coin rng(bernoulli) [run s1, seq 1, seed 3]")
	assert.Regexp(t, `n\s+5`, out)
	assert.Contains(t, out, "mean")
	assert.Contains(t, out, "std_dev")
}

func TestSampleConfigDefaults(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "distlab.toml", "draws = 42\nseed = 11\n")

	out, _, err := runCLI(t, "--config", cfgPath, "--format", "json", "sample", modelSpecs, "waiting_time")
	require.NoError(t, err)

	var report engine.Report
	decodeResponse(t, out, &report)
	assert.Equal(t, int64(42), report.Evaluation.Draws)
	assert.Equal(t, int64(11), report.Evaluation.Seed)
}

func TestSampleQuotaExceeded(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "distlab.toml", "max_draws = 10\n")

	out, _, err := runCLI(t, "--config", cfgPath, "sample", modelSpecs, "income", "--draws", "11")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, engine.ErrCodeQuotaExceeded, engine.CodeOf(err))
	assert.Contains(t, out, "Error [QUOTA_EXCEEDED]")
}

func TestSampleInvalidDraws(t *testing.T) {
	out, _, err := runCLI(t, "sample", modelSpecs, "income", "--draws", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [INVALID_REQUEST]")
}

func TestSampleUnknownSpec(t *testing.T) {
	_, _, err := runCLI(t, "sample", modelSpecs, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

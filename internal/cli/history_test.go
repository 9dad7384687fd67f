package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHistory records two runs into db: a successful cdf and a failing
// lpmf under run a, and a mean under run b.
func seedHistory(t *testing.T, db string) {
	t.Helper()
	_, _, err := runCLI(t, "--db", db, "eval", modelSpecs, "income", "cdf", "2", "4", "--run", "a")
	require.NoError(t, err)
	_, _, err = runCLI(t, "--db", db, "eval", modelSpecs, "income", "lpmf", "2", "--run", "a")
	require.Error(t, err)
	_, _, err = runCLI(t, "--db", db, "eval", modelSpecs, "waiting_time", "mean", "--run", "b")
	require.NoError(t, err)
}

func TestHistoryRuns(t *testing.T) {
	db := tempDB(t)
	seedHistory(t, db)

	out, _, err := runCLI(t, "--db", db, "--format", "json", "history")
	require.NoError(t, err)

	var result HistoryResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Runs, 2)
	assert.Equal(t, "a", result.Runs[0].RunID)
	assert.Equal(t, int64(2), result.Runs[0].Evaluations)
	assert.Equal(t, int64(1), result.Runs[0].Errors)
	assert.Equal(t, "b", result.Runs[1].RunID)
	assert.Nil(t, result.Records)

	out, _, err = runCLI(t, "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Regexp(t, `a\s+2\s+1\s+1-4`, out)
}

func TestHistoryQuery(t *testing.T) {
	db := tempDB(t)
	seedHistory(t, db)

	out, _, err := runCLI(t, "--db", db, "--format", "json", "history", "--status", "error")
	require.NoError(t, err)

	var result HistoryResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "lpmf", rec.Evaluation.Function)
	require.NotNil(t, rec.Outcome)
	assert.Equal(t, "UNKNOWN_FUNCTION", rec.Outcome.ErrorCode)

	out, _, err = runCLI(t, "--db", db, "history", "--family", "pareto_type_2")
	require.NoError(t, err)
	assert.Contains(t, out, "waiting_time")
	assert.Contains(t, out, "0.75")
	assert.NotContains(t, out, "income")

	out, _, err = runCLI(t, "--db", db, "history", "--spec", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching evaluations.")
}

func TestHistoryErrors(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		out, _, err := runCLI(t, "history")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "no history database")
	})

	t.Run("missing file", func(t *testing.T) {
		out, _, err := runCLI(t, "--db", tempDB(t), "history")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "history database not found")
	})

	t.Run("bad status", func(t *testing.T) {
		db := tempDB(t)
		seedHistory(t, db)
		out, _, err := runCLI(t, "--db", db, "history", "--status", "pending")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, ErrCodeUsage)
	})
}

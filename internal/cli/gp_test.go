package cli

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/distlab/internal/engine"
)

const trendData = `x1: [0.0, 0.2, 0.4, 0.6, 0.8, 1.0]
y1: [0.0, 0.38, 0.71, 0.93, 1.0, 0.91]
x2: [0.1, 0.5, 0.9]
`

func TestGPPredict(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trend.yaml", trendData)

	out, _, err := runCLI(t, "--format", "json", "gp", "predict", modelSpecs, "trend", path)
	require.NoError(t, err)

	var report engine.GPReport
	resp := decodeResponse(t, out, &report)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, report.Mean, 3)
	require.Len(t, report.Variance, 3)
	for i := range report.Mean {
		assert.False(t, math.IsNaN(report.Mean[i]))
		assert.Positive(t, report.Variance[i])
	}
	// Between well-spaced training points the mean follows the data.
	assert.InDelta(t, 0.82, report.Mean[1], 0.2)
	assert.Nil(t, report.LogMarginalLikelihood)
}

func TestGPPredictText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trend.yaml", trendData)

	out, _, err := runCLI(t, "gp", "predict", modelSpecs, "trend", path, "--run", "gp1")
	require.NoError(t, err)
	assert.Contains(t, out, "trend predict(gaussian_process) [run gp1, seq 1]")
	assert.Contains(t, out, "mean")
	assert.Contains(t, out, "[0.5]")
}

func TestGPLogMarginalLikelihood(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trend.yaml", trendData)

	out, _, err := runCLI(t, "--format", "json", "gp", "lml", modelSpecs, "trend", path)
	require.NoError(t, err)

	var report engine.GPReport
	decodeResponse(t, out, &report)
	require.NotNil(t, report.LogMarginalLikelihood)
	assert.False(t, math.IsInf(*report.LogMarginalLikelihood, 0))
	assert.Empty(t, report.Mean)
}

func TestGPMultiDimensional(t *testing.T) {
	path := writeFile(t, t.TempDir(), "surface.yaml", `
x1: [[0, 0], [1, 0], [0, 1], [1, 1]]
y1: [0.0, 1.0, 0.5, 1.5]
x2: [[0.5, 0.5]]
`)

	out, _, err := runCLI(t, "--format", "json", "gp", "predict", modelSpecs, "surface", path)
	require.NoError(t, err)

	var report engine.GPReport
	decodeResponse(t, out, &report)
	require.Len(t, report.Mean, 1)

	// One-dimensional inputs do not fit the two length scales.
	path = writeFile(t, t.TempDir(), "flat.yaml", trendData)
	_, _, err = runCLI(t, "gp", "predict", modelSpecs, "surface", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGPFit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trend.yaml", trendData)

	out, _, err := runCLI(t, "--format", "json", "gp", "fit", modelSpecs, "trend", path)
	require.NoError(t, err)

	var result GPFitResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "trend", result.Name)
	assert.Equal(t, 0.8, result.Initial.Rho)
	require.NotNil(t, result.Fit)
	assert.Positive(t, result.Fit.Alpha)
	assert.Positive(t, result.Fit.Rho)
	assert.Positive(t, result.Fit.Sigma)
	assert.Positive(t, result.Fit.Evaluations)

	require.NotNil(t, result.LML)
	require.NotNil(t, result.LML.LogMarginalLikelihood)
	assert.Equal(t, result.Fit.Alpha, result.LML.Evaluation.Spec.Params["alpha"])
	assert.Equal(t, result.Fit.Sigma, result.LML.Evaluation.Spec.Params["sigma"])
}

func TestGPFitRejectsARD(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trend.yaml", trendData)

	out, _, err := runCLI(t, "gp", "fit", modelSpecs, "surface", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "fit supports the exp_quad kernel only")
}

func TestGPErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trend.yaml", trendData)

	_, _, err := runCLI(t, "gp", "predict", modelSpecs, "income", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err), "a dist is not a gp")

	noX2 := writeFile(t, t.TempDir(), "nox2.yaml", "x1: [0.0, 1.0]\ny1: [0.0, 1.0]\n")
	out, _, err := runCLI(t, "gp", "predict", modelSpecs, "trend", noX2)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "predict requires test inputs x2")
}

func TestPointList(t *testing.T) {
	var d GPData
	require.NoError(t, yaml.Unmarshal([]byte("x1: [1, [2, 3], 4.5]\n"), &d))
	assert.Equal(t, PointList{{1}, {2, 3}, {4.5}}, d.X1)

	err := yaml.Unmarshal([]byte("x1: 3\n"), &d)
	assert.ErrorContains(t, err, "expected a list of points")

	err = yaml.Unmarshal([]byte("x1: [{a: 1}]\n"), &d)
	assert.ErrorContains(t, err, "point must be a number or a list of numbers")
}

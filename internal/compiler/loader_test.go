package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func loadErrorCode(t *testing.T, err error) string {
	t.Helper()
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %T", err)
	return le.Code
}

func TestLoadSpecsTestdata(t *testing.T) {
	result, errs := LoadSpecs(filepath.Join("..", "..", "testdata", "specs"), LoadModeCollectAll)
	require.Empty(t, errs)

	assert.Len(t, result.Dists, 4)
	assert.Len(t, result.GPs, 2)
	assert.Equal(t, 1, result.FileCount)

	income, ok := result.Dist("income")
	require.True(t, ok)
	assert.Equal(t, "pareto", income.Family)

	surface, ok := result.GP("surface")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 2}, surface.Rho)

	_, ok = result.Dist("missing")
	assert.False(t, ok)
}

func TestLoadSpecsNonExistentDirectory(t *testing.T) {
	_, errs := LoadSpecs(filepath.Join(t.TempDir(), "nope"), LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNotFound, loadErrorCode(t, errs[0]))
}

func TestLoadSpecsNoFiles(t *testing.T) {
	_, errs := LoadSpecs(t.TempDir(), LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoFiles, loadErrorCode(t, errs[0]))
}

func TestLoadSpecsNoDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "empty.cue", "package test\n\nnote: \"nothing here\"\n")

	_, errs := LoadSpecs(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeGeneric, loadErrorCode(t, errs[0]))
}

func TestLoadSpecsSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "bad.cue", "package test\n\ndist: { broken\n")

	_, errs := LoadSpecs(dir, LoadModeFailFast)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrCodeLoadFailed, loadErrorCode(t, errs[0]))
}

func TestLoadSpecsFailFastVersusCollectAll(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "models.cue", `package test

dist: a: {
	family: "pareto"
	params: {y_min: -1, alpha: 2}
}

dist: b: {
	family: "gamma"
	params: {shape: 1}
}

dist: c: {
	family: "bernoulli"
	params: theta: 0.5
}
`)

	result, errs := LoadSpecs(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrParameterDomain, loadErrorCode(t, errs[0]))
	assert.Empty(t, result.Dists)

	result, errs = LoadSpecs(dir, LoadModeCollectAll)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrParameterDomain, loadErrorCode(t, errs[0]))
	assert.Equal(t, ErrUnknownFamily, loadErrorCode(t, errs[1]))
	require.Len(t, result.Dists, 1)
	assert.Equal(t, "c", result.Dists[0].Name)
}

func TestLoadSpecsCompileErrorCarriesPosition(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "gp.cue", `package test

gp: m: {
	alpha: 1
	rho:   "wide"
	sigma: 0.1
}
`)

	_, errs := LoadSpecs(dir, LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrLengthScaleArity, le.Code)
	assert.True(t, le.Pos.IsValid())
	assert.Contains(t, le.Error(), "gp.cue")
}

func TestMapFieldToErrorCode(t *testing.T) {
	assert.Equal(t, ErrUnknownFamily, MapFieldToErrorCode("family"))
	assert.Equal(t, ErrParameterDomain, MapFieldToErrorCode("params.theta"))
	assert.Equal(t, ErrInvalidHyper, MapFieldToErrorCode("sigma"))
	assert.Equal(t, ErrCodeGeneric, MapFieldToErrorCode("cue"))
}

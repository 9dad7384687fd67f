package harness

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runProperties(t *testing.T, props ...Property) *Result {
	t.Helper()
	result, err := Run(&Scenario{
		Name:        t.Name(),
		Description: "property test",
		Specs:       modelSpecs(t),
		Seed:        42,
		Properties:  props,
	})
	require.NoError(t, err)
	require.Len(t, result.Properties, len(props))
	return result
}

func TestProperties_HoldForEveryModel(t *testing.T) {
	models := []struct {
		spec  string
		stats []string
	}{
		{"income", []string{StatMean}}, // infinite variance
		{"waiting_time", []string{StatMean}},
		{"coin", nil},
		{"click", nil},
	}

	for _, m := range models {
		t.Run(m.spec, func(t *testing.T) {
			result := runProperties(t,
				Property{Type: PropertyIntegratesToOne, Spec: m.spec},
				Property{Type: PropertyCDFMonotone, Spec: m.spec},
				Property{Type: PropertyComplement, Spec: m.spec},
				Property{Type: PropertyMoments, Spec: m.spec, Draws: 200_000, Stats: m.stats, Tolerance: 0.1},
			)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			for _, p := range result.Properties {
				assert.True(t, p.Pass, "%s: %s", p.Type, p.Detail)
				assert.False(t, p.Skipped, p.Type)
			}
		})
	}
}

func TestProperties_IntegratesHeavyTails(t *testing.T) {
	specs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(specs, "tails.cue"), []byte(`package distlab

dist: slow: {
	family: "pareto"
	params: {y_min: 1, alpha: 0.5}
}

dist: slower: {
	family: "pareto"
	params: {y_min: 3, alpha: 0.05}
}

dist: lomax: {
	family: "pareto_type_2"
	params: {mu: 0, lambda: 1, alpha: 0.5}
}

dist: wide: {
	family: "pareto_type_2"
	params: {mu: -2, lambda: 1e4, alpha: 3}
}
`), 0644))

	var props []Property
	for _, name := range []string{"slow", "slower", "lomax", "wide"} {
		props = append(props, Property{Type: PropertyIntegratesToOne, Spec: name})
	}
	result, err := Run(&Scenario{Name: t.Name(), Description: "heavy tails", Specs: specs, Properties: props})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	for _, p := range result.Properties {
		assert.True(t, p.Pass, "%s: %s", p.Spec, p.Detail)
	}
}

func TestProperties_MomentsSkippedWhenInfinite(t *testing.T) {
	result := runProperties(t,
		Property{Type: PropertyMoments, Spec: "income", Draws: 100},
	)

	p := result.Properties[0]
	assert.True(t, result.Pass)
	assert.True(t, p.Pass)
	assert.True(t, p.Skipped)
	assert.Equal(t, "moment is not finite", p.Detail)

	// Only the closed forms were evaluated; no draws were taken.
	for _, ev := range result.Trace {
		assert.NotEqual(t, "rng", ev.Function)
	}
}

func TestProperties_MomentsFailOnTightTolerance(t *testing.T) {
	result := runProperties(t,
		Property{Type: PropertyMoments, Spec: "coin", Draws: 50, Stats: []string{StatVariance}, Tolerance: 1e-12},
	)

	assert.False(t, result.Pass)
	assert.False(t, result.Properties[0].Pass)
	assert.Contains(t, result.Properties[0].Detail, "sample variance within 1e-12")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "moments coin:")
}

func TestProperties_CDFMonotoneRejectsUnsortedGrid(t *testing.T) {
	result := runProperties(t,
		Property{Type: PropertyCDFMonotone, Spec: "income", Points: ValueList{3, 2}},
	)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Properties[0].Detail, "points sorted ascending")
	assert.Empty(t, result.Trace, "nothing evaluated for an invalid grid")
}

func TestProperties_UnknownSpec(t *testing.T) {
	result := runProperties(t,
		Property{Type: PropertyComplement, Spec: "nope"},
	)

	assert.False(t, result.Pass)
	assert.Equal(t, `unknown spec "nope"`, result.Properties[0].Detail)
}

func TestProperties_RuntimeErrorIsFailure(t *testing.T) {
	// NaN points are rejected by the engine; the property fails instead of
	// aborting the scenario.
	result := runProperties(t,
		Property{Type: PropertyComplement, Spec: "coin", Points: ValueList{math.NaN()}},
	)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Properties[0].Detail, "INVALID_REQUEST")
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "error", result.Trace[1].Status)
}

func TestDefaultGrid(t *testing.T) {
	result := runProperties(t,
		Property{Type: PropertyCDFMonotone, Spec: "income"},
	)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NotEmpty(t, result.Trace)
	assert.Equal(t, ValueList{0, 1, 1.25, 1.5, 2, 3, 6, 11, 101}, ValueList(result.Trace[0].Points))
}

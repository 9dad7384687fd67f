package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	ev := Evaluation{
		RunID:    "run-1",
		Spec:     paretoSpec,
		Function: "lpdf",
		CacheKey: "k",
		Seq:      42,
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"run_id"`)
	assert.Contains(t, string(data), `"cache_key"`)
	assert.Contains(t, string(data), `"y_min"`)
	assert.NotContains(t, string(data), `"runId"`)
	assert.NotContains(t, string(data), `"inputs"`, "empty inputs are omitted")
}

func TestValuesJSONKeepsNonFinite(t *testing.T) {
	v := Values{0.5, math.Inf(-1), math.Inf(1), math.NaN(), -2}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `[0.5,"-inf","inf","nan",-2]`, string(data))

	var back Values
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 5)
	assert.Equal(t, 0.5, back[0])
	assert.True(t, math.IsInf(back[1], -1))
	assert.True(t, math.IsInf(back[2], 1))
	assert.True(t, math.IsNaN(back[3]))
	assert.Equal(t, -2.0, back[4])
}

func TestValuesJSONNilIsEmptyArray(t *testing.T) {
	data, err := json.Marshal(Values(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestValuesUnmarshalRejectsUnknownStrings(t *testing.T) {
	var v Values
	err := json.Unmarshal([]byte(`[1,"infinity"]`), &v)
	assert.ErrorContains(t, err, "values[1]")
}

func TestParseAndFormatValue(t *testing.T) {
	for _, s := range []string{"inf", "-inf", "nan", "0.25", "-3"} {
		x, err := ParseValue(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatValue(x))
	}
	x, err := ParseValue("+inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(x, 1))

	for _, s := range []string{"abc", "", "infinity", "Inf", "NaN", "+Inf", "0x1p-2", "1_000", "1e999"} {
		_, err = ParseValue(s)
		assert.Error(t, err, "ParseValue(%q)", s)
	}
}

func TestValuesIR(t *testing.T) {
	arr := Values{1.5, math.Inf(-1)}.IR()
	assert.Equal(t, IRArray{IRFloat(1.5), IRString("-inf")}, arr)
}

func TestOutcomeRoundTrip(t *testing.T) {
	out := Outcome{
		ID:           "out-1",
		EvaluationID: "eval-1",
		Status:       StatusOK,
		Values:       Values{math.Inf(-1), 0.693},
		Seq:          7,
		Cached:       true,
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)

	var back Outcome
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, out.ID, back.ID)
	assert.Equal(t, out.Seq, back.Seq)
	assert.True(t, back.Cached)
	assert.True(t, math.IsInf(back.Values[0], -1))
	assert.Equal(t, 0.693, back.Values[1])
}

func TestEvaluationRoundTripWithInputs(t *testing.T) {
	ev := Evaluation{
		ID:       "eval-1",
		RunID:    "run-1",
		Spec:     DistSpec{Family: "bernoulli_logit_glm", Params: map[string]float64{}},
		Function: "lpmf",
		Points:   Values{1, 0},
		Inputs:   IRObject{"beta": IRArray{IRFloat(0.5), IRFloat(-1.5)}},
		Seq:      1,
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var back Evaluation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ev.Inputs, back.Inputs)
	assert.Equal(t, ev.Points, back.Points)
}

func TestStoreTypesMarshaling(t *testing.T) {
	rec := Record{Evaluation: Evaluation{ID: "e"}, Outcome: nil}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"outcome"`)

	sum := RunSummary{RunID: "r", Evaluations: 3, FirstSeq: 1, LastSeq: 6}
	data, err = json.Marshal(sum)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"first_seq":1`)
}

package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DistSpec is a compiled, validated distribution declaration.
type DistSpec struct {
	Name   string             `json:"name"`
	Family string             `json:"family"`
	Params map[string]float64 `json:"params"`
}

// GPSpec is a compiled Gaussian process regression declaration.
type GPSpec struct {
	Name   string    `json:"name"`
	Kernel string    `json:"kernel"` // "exp_quad" or "ard"
	Alpha  float64   `json:"alpha"`
	Rho    []float64 `json:"rho"`
	Sigma  float64   `json:"sigma"`
	Jitter float64   `json:"jitter"`
}

// Outcome statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Evaluation is one request to evaluate a function of a distribution.
type Evaluation struct {
	ID       string   `json:"id"` // Content-addressed hash
	RunID    string   `json:"run_id"`
	Spec     DistSpec `json:"spec"`
	Function string   `json:"function"` // "lpdf", "cdf", "rng", ...
	Points   Values   `json:"points"`
	Inputs   IRObject `json:"inputs,omitempty"` // non-scalar inputs (GLM design, GP data)
	Draws    int64    `json:"draws,omitempty"`
	Seed     int64    `json:"seed,omitempty"`
	CacheKey string   `json:"cache_key"`
	Seq      int64    `json:"seq"` // Logical clock

	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Outcome is the result of an Evaluation.
type Outcome struct {
	ID           string `json:"id"` // Content-addressed hash
	EvaluationID string `json:"evaluation_id"`
	Status       string `json:"status"` // StatusOK or StatusError
	Values       Values `json:"values"`
	ErrorCode    string `json:"error_code,omitempty"`
	Message      string `json:"message,omitempty"`
	Seq          int64  `json:"seq"`
	Cached       bool   `json:"cached"` // served from an earlier outcome with the same cache key
}

// Values is a float slice whose JSON form keeps non-finite entries as the
// strings "inf", "-inf" and "nan". Log densities outside the support are
// -Inf, so plain encoding/json cannot carry them.
type Values []float64

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	buf := make([]byte, 0, 8*len(v)+2)
	buf = append(buf, '[')
	for i, x := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		switch {
		case math.IsNaN(x):
			buf = append(buf, `"nan"`...)
		case math.IsInf(x, 1):
			buf = append(buf, `"inf"`...)
		case math.IsInf(x, -1):
			buf = append(buf, `"-inf"`...)
		default:
			buf = strconv.AppendFloat(buf, x, 'g', -1, 64)
		}
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, r := range raw {
		x, err := parseValue(r)
		if err != nil {
			return fmt.Errorf("values[%d]: %w", i, err)
		}
		out[i] = x
	}
	*v = out
	return nil
}

func parseValue(r json.RawMessage) (float64, error) {
	if len(r) > 0 && r[0] == '"' {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return 0, err
		}
		return ParseValue(s)
	}
	var x float64
	if err := json.Unmarshal(r, &x); err != nil {
		return 0, err
	}
	return x, nil
}

// ParseValue parses a number or one of "inf", "+inf", "-inf", "nan".
func ParseValue(s string) (float64, error) {
	switch s {
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	if !isDecimal(s) {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(x, 0) {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return x, nil
}

// isDecimal reports whether s uses only decimal float syntax, so that
// spellings like "Infinity", "NaN" or hex floats never reach ParseFloat.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == 'e', r == 'E', r == '+', r == '-':
		default:
			return false
		}
	}
	return true
}

// FormatValue renders a single value the way Values encodes it.
func FormatValue(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
}

// IR returns the values as an IRArray suitable for canonical hashing.
// Non-finite entries become IRString.
func (v Values) IR() IRArray {
	arr := make(IRArray, len(v))
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			arr[i] = IRString(FormatValue(x))
		} else {
			arr[i] = IRFloat(x)
		}
	}
	return arr
}

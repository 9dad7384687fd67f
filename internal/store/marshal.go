package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/distlab/internal/ir"
)

// marshalParams converts distribution parameters to canonical JSON TEXT.
// Uses RFC 8785 canonical JSON so equal parameter sets store identically.
func marshalParams(params map[string]float64) (string, error) {
	obj, err := ir.FloatObject(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalParams parses canonical JSON TEXT back to a parameter map.
// Integral parameters come back as IRInt and are widened to float64.
func unmarshalParams(data string) (map[string]float64, error) {
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	params := make(map[string]float64, len(obj))
	for k, v := range obj {
		switch x := v.(type) {
		case ir.IRFloat:
			params[k] = float64(x)
		case ir.IRInt:
			params[k] = float64(x)
		default:
			return nil, fmt.Errorf("unmarshal params: %q has non-numeric type %T", k, v)
		}
	}
	return params, nil
}

// marshalInputs converts non-scalar inputs to canonical JSON TEXT.
func marshalInputs(inputs ir.IRObject) (string, error) {
	if inputs == nil {
		return "{}", nil
	}
	data, err := ir.MarshalCanonical(inputs)
	if err != nil {
		return "", fmt.Errorf("marshal inputs: %w", err)
	}
	return string(data), nil
}

// unmarshalInputs parses canonical JSON TEXT to IRObject. An empty object
// reads back as nil so round-trips preserve "no inputs".
func unmarshalInputs(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal inputs: %w", err)
	}
	return obj, nil
}

// marshalValues converts a value vector to JSON TEXT. Non-finite entries
// are stored as "inf", "-inf" or "nan".
func marshalValues(v ir.Values) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal values: %w", err)
	}
	return string(data), nil
}

func unmarshalValues(data string) (ir.Values, error) {
	var v ir.Values
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

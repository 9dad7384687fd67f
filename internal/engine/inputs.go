package engine

import (
	"fmt"

	"github.com/roach88/distlab/internal/ir"
	"gonum.org/v1/gonum/mat"
)

// Non-scalar inputs travel inside ir.Evaluation.Inputs so that they are
// covered by the cache key and can be recomputed on replay.

func encodeMatrix(rows [][]float64) (ir.IRArray, error) {
	out := make(ir.IRArray, len(rows))
	for i, row := range rows {
		arr, err := ir.FloatArray(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = arr
	}
	return out, nil
}

func encodeInts(xs []int) ir.IRArray {
	out := make(ir.IRArray, len(xs))
	for i, x := range xs {
		out[i] = ir.IRInt(x)
	}
	return out
}

func asFloat(v ir.IRValue) (float64, bool) {
	switch x := v.(type) {
	case ir.IRFloat:
		return float64(x), true
	case ir.IRInt:
		return float64(x), true
	}
	return 0, false
}

func decodeVector(obj ir.IRObject, key string) ([]float64, error) {
	arr, ok := obj[key].(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("input %q: missing or not an array", key)
	}
	out := make([]float64, len(arr))
	for i, v := range arr {
		x, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("input %q[%d]: not a number", key, i)
		}
		out[i] = x
	}
	return out, nil
}

func decodeMatrix(obj ir.IRObject, key string) ([][]float64, error) {
	arr, ok := obj[key].(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("input %q: missing or not an array", key)
	}
	out := make([][]float64, len(arr))
	for i, row := range arr {
		r, ok := row.(ir.IRArray)
		if !ok {
			return nil, fmt.Errorf("input %q[%d]: not an array", key, i)
		}
		out[i] = make([]float64, len(r))
		for j, v := range r {
			x, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("input %q[%d][%d]: not a number", key, i, j)
			}
			out[i][j] = x
		}
	}
	return out, nil
}

func decodeInts(obj ir.IRObject, key string) ([]int, error) {
	arr, ok := obj[key].(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("input %q: missing or not an array", key)
	}
	out := make([]int, len(arr))
	for i, v := range arr {
		n, ok := v.(ir.IRInt)
		if !ok {
			return nil, fmt.Errorf("input %q[%d]: not an integer", key, i)
		}
		out[i] = int(n)
	}
	return out, nil
}

// denseFromRows builds an n×k matrix, rejecting ragged rows.
func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("design matrix is empty")
	}
	k := len(rows[0])
	data := make([]float64, 0, len(rows)*k)
	for i, row := range rows {
		if len(row) != k {
			return nil, fmt.Errorf("design matrix row %d has %d columns, want %d", i, len(row), k)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), k, data), nil
}

type glmInputs struct {
	x     *mat.Dense
	alpha []float64
	beta  []float64
	y     []int // nil for rng
}

func encodeGLMInputs(req GLMRequest) (ir.IRObject, error) {
	x, err := encodeMatrix(req.X)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	alpha, err := ir.FloatArray(req.Alpha)
	if err != nil {
		return nil, fmt.Errorf("alpha: %w", err)
	}
	beta, err := ir.FloatArray(req.Beta)
	if err != nil {
		return nil, fmt.Errorf("beta: %w", err)
	}
	obj := ir.IRObject{"x": x, "alpha": alpha, "beta": beta}
	if req.Y != nil {
		obj["y"] = encodeInts(req.Y)
	}
	return obj, nil
}

func decodeGLMInputs(obj ir.IRObject) (glmInputs, error) {
	var in glmInputs
	rows, err := decodeMatrix(obj, "x")
	if err != nil {
		return in, err
	}
	if in.x, err = denseFromRows(rows); err != nil {
		return in, err
	}
	if in.alpha, err = decodeVector(obj, "alpha"); err != nil {
		return in, err
	}
	if in.beta, err = decodeVector(obj, "beta"); err != nil {
		return in, err
	}
	if _, ok := obj["y"]; ok {
		if in.y, err = decodeInts(obj, "y"); err != nil {
			return in, err
		}
	}
	return in, nil
}

type gpInputs struct {
	kernel string
	rho    []float64
	x1     [][]float64
	y1     []float64
	x2     [][]float64
}

func encodeGPInputs(req GPRequest) (ir.IRObject, error) {
	rho, err := ir.FloatArray(req.Spec.Rho)
	if err != nil {
		return nil, fmt.Errorf("rho: %w", err)
	}
	x1, err := encodeMatrix(req.X1)
	if err != nil {
		return nil, fmt.Errorf("x1: %w", err)
	}
	y1, err := ir.FloatArray(req.Y1)
	if err != nil {
		return nil, fmt.Errorf("y1: %w", err)
	}
	obj := ir.IRObject{
		"kernel": ir.IRString(req.Spec.Kernel),
		"rho":    rho,
		"x1":     x1,
		"y1":     y1,
	}
	if req.X2 != nil {
		x2, err := encodeMatrix(req.X2)
		if err != nil {
			return nil, fmt.Errorf("x2: %w", err)
		}
		obj["x2"] = x2
	}
	return obj, nil
}

func decodeGPInputs(obj ir.IRObject, needX2 bool) (gpInputs, error) {
	var in gpInputs
	kernel, ok := obj["kernel"].(ir.IRString)
	if !ok {
		return in, fmt.Errorf("input %q: missing or not a string", "kernel")
	}
	in.kernel = string(kernel)

	var err error
	if in.rho, err = decodeVector(obj, "rho"); err != nil {
		return in, err
	}
	if in.x1, err = decodeMatrix(obj, "x1"); err != nil {
		return in, err
	}
	if in.y1, err = decodeVector(obj, "y1"); err != nil {
		return in, err
	}
	if needX2 {
		if in.x2, err = decodeMatrix(obj, "x2"); err != nil {
			return in, err
		}
	}
	return in, nil
}

package compiler

import (
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/distlab/internal/ir"
)

// CompileDist parses a CUE value into a DistSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the declaration struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`dist: income: {family: "pareto", params: {y_min: 1, alpha: 2}}`)
//	spec, err := CompileDist(v.LookupPath(cue.ParsePath("dist.income")))
//
// CompileDist checks structure only; Validate checks parameter domains.
func CompileDist(v cue.Value) (*ir.DistSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.DistSpec{Name: labelOf(v), Params: map[string]float64{}}

	familyVal := v.LookupPath(cue.ParsePath("family"))
	if !familyVal.Exists() {
		return nil, &CompileError{Field: "family", Message: "family is required", Pos: v.Pos()}
	}
	family, err := familyVal.String()
	if err != nil {
		return nil, &CompileError{Field: "family", Message: "family must be a string", Pos: familyVal.Pos()}
	}
	spec.Family = family

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, &CompileError{Field: "params", Message: "params is required", Pos: v.Pos()}
	}
	iter, err := paramsVal.Fields()
	if err != nil {
		return nil, &CompileError{Field: "params", Message: "params must be a struct of numbers", Pos: paramsVal.Pos()}
	}
	for iter.Next() {
		name := iter.Selector().String()
		x, err := iter.Value().Float64()
		if err != nil {
			return nil, &CompileError{
				Field:   "params." + name,
				Message: "parameter must be a number",
				Pos:     iter.Value().Pos(),
			}
		}
		spec.Params[name] = x
	}

	return spec, nil
}

// labelOf returns the last path selector of v, unquoted.
func labelOf(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	label := sels[len(sels)-1].String()
	if unq, err := strconv.Unquote(label); err == nil {
		return unq
	}
	return label
}

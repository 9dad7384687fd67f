package engine

import (
	"math"
	"math/rand/v2"

	"github.com/roach88/distlab/internal/dist"
	"github.com/roach88/distlab/internal/gp"
	"github.com/roach88/distlab/internal/ir"
)

// pcgStream is the fixed PCG increment; the request seed picks the state.
const pcgStream = 0xda3e39cb94b95bdb

// newRand returns the deterministic generator for a seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream))
}

// quantiler is implemented by families with a closed-form inverse CDF.
type quantiler interface {
	Quantile(q float64) float64
}

// compute evaluates ev without touching the store. It is the single code
// path shared by Evaluate and Replay.
func compute(ev ir.Evaluation) (ir.Values, error) {
	switch ev.Spec.Family {
	case dist.FamilyBernoulliLogitGLM:
		return computeGLM(ev)
	case FamilyGP:
		return computeGP(ev)
	}

	f, err := dist.New(ev.Spec.Family, ev.Spec.Params)
	if err != nil {
		return nil, err
	}
	return computeUnivariate(f, ev)
}

// validate runs the checks compute would fail on, without sampling. Engine
// calls it before charging a run's draw budget.
func validate(ev ir.Evaluation) error {
	switch ev.Spec.Family {
	case dist.FamilyBernoulliLogitGLM:
		in, err := decodeGLMInputs(ev.Inputs)
		if err != nil {
			return newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "%v", err)
		}
		_, err = dist.NewBernoulliLogitGLM(in.x, in.alpha, in.beta)
		return err
	case FamilyGP:
		return nil
	}

	f, err := dist.New(ev.Spec.Family, ev.Spec.Params)
	if err != nil {
		return err
	}
	return checkFunction(f, ev)
}

func computeUnivariate(f dist.Family, ev ir.Evaluation) (ir.Values, error) {
	if err := checkFunction(f, ev); err != nil {
		return nil, err
	}

	switch ev.Function {
	case FuncMean:
		return ir.Values{f.Mean()}, nil
	case FuncVariance:
		return ir.Values{f.Variance()}, nil
	case FuncRNG:
		rng := newRand(ev.Seed)
		out := make(ir.Values, ev.Draws)
		for i := range out {
			out[i] = f.Rand(rng)
		}
		return out, nil
	}

	var fn func(float64) float64
	switch ev.Function {
	case FuncLPDF, FuncLPMF:
		fn = f.LogDensity
	case FuncCDF:
		fn = f.CDF
	case FuncLCDF:
		fn = f.LogCDF
	case FuncLCCDF:
		fn = f.LogCCDF
	case FuncQuantile:
		fn = f.(quantiler).Quantile
	}
	out := make(ir.Values, len(ev.Points))
	for i, x := range ev.Points {
		out[i] = fn(x)
	}
	return out, nil
}

// checkFunction validates the function name and its arguments against the family.
func checkFunction(f dist.Family, ev ir.Evaluation) error {
	name := f.Name()
	switch ev.Function {
	case FuncLPDF:
		if f.Discrete() {
			return newRuntimeError(ErrCodeUnknownFunction, ev.RunID,
				"lpdf is not defined for discrete family %s (use lpmf)", name)
		}
	case FuncLPMF:
		if !f.Discrete() {
			return newRuntimeError(ErrCodeUnknownFunction, ev.RunID,
				"lpmf is not defined for continuous family %s (use lpdf)", name)
		}
	case FuncQuantile:
		if _, ok := f.(quantiler); !ok {
			return newRuntimeError(ErrCodeUnknownFunction, ev.RunID,
				"quantile is not defined for family %s", name)
		}
	case FuncCDF, FuncLCDF, FuncLCCDF, FuncMean, FuncVariance, FuncRNG:
	default:
		return newRuntimeError(ErrCodeUnknownFunction, ev.RunID,
			"unknown function %q for family %s", ev.Function, name)
	}

	switch {
	case isPointwise(ev.Function):
		if len(ev.Points) == 0 {
			return newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "%s requires at least one point", ev.Function)
		}
		for i, x := range ev.Points {
			if math.IsNaN(x) {
				return newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "point %d is NaN", i)
			}
		}
	case len(ev.Points) > 0:
		return newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "%s takes no points", ev.Function)
	}

	if ev.Function == FuncRNG {
		if ev.Draws <= 0 {
			return newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "rng requires a positive draw count, got %d", ev.Draws)
		}
	} else if ev.Draws != 0 {
		return newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "%s takes no draws", ev.Function)
	}
	return nil
}

func computeGLM(ev ir.Evaluation) (ir.Values, error) {
	in, err := decodeGLMInputs(ev.Inputs)
	if err != nil {
		return nil, newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "%v", err)
	}
	model, err := dist.NewBernoulliLogitGLM(in.x, in.alpha, in.beta)
	if err != nil {
		return nil, err
	}

	switch ev.Function {
	case FuncLPMF:
		lp, err := model.LogPMF(in.y)
		if err != nil {
			return nil, err
		}
		return ir.Values{lp}, nil
	case FuncRNG:
		ys := model.Rand(newRand(ev.Seed))
		out := make(ir.Values, len(ys))
		for i, y := range ys {
			out[i] = float64(y)
		}
		return out, nil
	default:
		return nil, newRuntimeError(ErrCodeUnknownFunction, ev.RunID,
			"unknown function %q for family %s", ev.Function, dist.FamilyBernoulliLogitGLM)
	}
}

func computeGP(ev ir.Evaluation) (ir.Values, error) {
	in, err := decodeGPInputs(ev.Inputs, ev.Function == FuncPredict)
	if err != nil {
		return nil, newRuntimeError(ErrCodeInvalidRequest, ev.RunID, "%v", err)
	}
	kernel, err := gp.NewKernel(in.kernel, ev.Spec.Params["alpha"], in.rho)
	if err != nil {
		return nil, err
	}
	model := gp.Regression{Kernel: kernel, Sigma: ev.Spec.Params["sigma"], Jitter: ev.Spec.Params["jitter"]}

	switch ev.Function {
	case FuncLML:
		lml, err := model.LogMarginalLikelihood(in.x1, in.y1)
		if err != nil {
			return nil, err
		}
		return ir.Values{lml}, nil
	case FuncPredict:
		pred, err := model.Predict(in.x1, in.y1, in.x2)
		if err != nil {
			return nil, err
		}
		n := len(pred.Mean)
		out := make(ir.Values, 2*n)
		copy(out, pred.Mean)
		for i := 0; i < n; i++ {
			out[n+i] = pred.Variance(i)
		}
		return out, nil
	default:
		return nil, newRuntimeError(ErrCodeUnknownFunction, ev.RunID,
			"unknown function %q for family %s", ev.Function, FamilyGP)
	}
}

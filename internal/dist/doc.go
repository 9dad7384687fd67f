// Package dist implements the probability distribution families of the
// distlab reference: Pareto, Pareto Type 2, Bernoulli, Bernoulli-Logit and
// the Bernoulli-Logit generalised linear model.
//
// Every family is a plain value type validated by its constructor. Once
// constructed, evaluation methods never fail:
//   - LogPDF / LogPMF return -Inf outside the support
//   - CDF, LogCDF and LogCCDF saturate at the support bounds
//   - Rand draws from a caller-supplied *rand.Rand (math/rand/v2) so that
//     sampling is reproducible for a given seed
//
// Log-scale functions are computed directly rather than as log(CDF) so that
// tail probabilities keep their precision.
package dist

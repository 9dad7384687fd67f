// Package gp implements Gaussian process models over finite sets of input
// points: prior sampling, the latent-variable parameterisation, regression
// with a normal outcome, classification with a logistic link, coregionalised
// multi-output draws and maximum a posteriori hyperparameter fitting.
//
// Inputs are given as [][]float64, one row per point. Every covariance matrix
// is factorised with a Cholesky decomposition (gonum mat.Cholesky); a matrix
// that does not factorise yields ErrNotPositiveDefinite, which usually means
// the jitter is too small for the chosen length scale.
package gp

package gp

import "errors"

// ErrNotPositiveDefinite is returned when a covariance matrix cannot be
// Cholesky factorised.
var ErrNotPositiveDefinite = errors.New("covariance matrix is not positive definite")

// ErrDimensionMismatch indicates inputs, outputs or hyperparameters of
// incompatible sizes.
var ErrDimensionMismatch = errors.New("dimension mismatch")

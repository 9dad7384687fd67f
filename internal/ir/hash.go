package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainEvaluation = "distlab/evaluation/v1"
	DomainOutcome    = "distlab/outcome/v1"
	DomainCache      = "distlab/cache/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey identifies the deterministic content of an evaluation: family,
// parameters, function, points and any extra inputs. It deliberately
// excludes the spec name, run ID and seq so that equal requests from
// different runs share one cached outcome.
func CacheKey(spec DistSpec, function string, points Values, inputs IRObject) (string, error) {
	params, err := FloatObject(spec.Params)
	if err != nil {
		return "", fmt.Errorf("CacheKey: params: %w", err)
	}
	obj := IRObject{
		"family":   IRString(spec.Family),
		"params":   params,
		"function": IRString(function),
		"points":   points.IR(),
	}
	if len(inputs) > 0 {
		obj["inputs"] = inputs
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CacheKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCache, canonical), nil
}

// EvaluationID computes the content-addressed ID of an evaluation.
// The ID is stable across restarts given the same run, content and seq.
func EvaluationID(runID, cacheKey string, draws, seed, seq int64) (string, error) {
	obj := IRObject{
		"run_id":    IRString(runID),
		"cache_key": IRString(cacheKey),
		"draws":     IRInt(draws),
		"seed":      IRInt(seed),
		"seq":       IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EvaluationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvaluation, canonical), nil
}

// OutcomeID computes the content-addressed ID of an outcome.
// Links to the evaluation it completes via evaluationID.
func OutcomeID(evaluationID, status string, values Values, seq int64) (string, error) {
	obj := IRObject{
		"evaluation_id": IRString(evaluationID),
		"status":        IRString(status),
		"values":        values.IR(),
		"seq":           IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("OutcomeID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutcome, canonical), nil
}

// MustEvaluationID is like EvaluationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEvaluationID(runID, cacheKey string, draws, seed, seq int64) string {
	id, err := EvaluationID(runID, cacheKey, draws, seed, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// MustOutcomeID is like OutcomeID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustOutcomeID(evaluationID, status string, values Values, seq int64) string {
	id, err := OutcomeID(evaluationID, status, values, seq)
	if err != nil {
		panic(err)
	}
	return id
}

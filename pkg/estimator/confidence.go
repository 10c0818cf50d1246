package estimator

import (
	"math"

	"github.com/mkemp/pokercfr/pkg/errs"
)

// z95 and z99 are norm.ppf(0.975) and norm.ppf(0.995): the two-tailed
// z-quantiles calculate_confidence_interval in
// original_source/tools/match_evaluation.py gets from scipy.stats.norm.
// No pack repo imports a stats library, so the two confidence levels the
// original tooling actually reports with are hardcoded rather than pulling
// in a dependency to serve a single function.
const (
	z95 = 1.959964
	z99 = 2.575829
)

// ConfidenceInterval computes a normal confidence interval on the mean of
// samples (e.g. a per-hand utility series from sampler.MatchUtilities, or
// repeated ChipsEstimate/ImaginaryObservationsEstimate/AIVATEstimate
// draws), grounded on calculate_confidence_interval in
// original_source/tools/match_evaluation.py. confidence must be 0.95 or
// 0.99.
func ConfidenceInterval(samples []float64, confidence float64) (mean, halfWidth, lower, upper float64, err error) {
	if len(samples) == 0 {
		return 0, 0, 0, 0, errs.New(errs.ParameterOutOfRange, "ConfidenceInterval requires at least one sample")
	}
	var z float64
	switch confidence {
	case 0.95:
		z = z95
	case 0.99:
		z = z99
	default:
		return 0, 0, 0, 0, errs.New(errs.ParameterOutOfRange, "unsupported confidence level %v, want 0.95 or 0.99", confidence)
	}

	n := float64(len(samples))
	for _, s := range samples {
		mean += s
	}
	mean /= n

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= n
	stddev := math.Sqrt(variance)
	standardError := stddev / math.Sqrt(n)

	halfWidth = z * standardError
	return mean, halfWidth, mean - halfWidth, mean + halfWidth, nil
}

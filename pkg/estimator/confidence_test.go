package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfidenceIntervalMatchesKnownVarianceSample(t *testing.T) {
	// 10 samples split evenly around mean 1 with population variance 8,
	// mirroring original_source/test/match_evaluation_tests.py's
	// test_confidence_interval_calculation fixture.
	delta := math.Sqrt(8)
	samples := []float64{
		1 + delta, 1 - delta, 1 + delta, 1 - delta, 1 + delta,
		1 - delta, 1 + delta, 1 - delta, 1 + delta, 1 - delta,
	}

	mean, halfWidth, lower, upper, err := ConfidenceInterval(samples, 0.95)
	require.NoError(t, err)
	require.InDelta(t, 1.0, mean, 1e-9)

	wantHalfWidth := z95 * math.Sqrt(8) / math.Sqrt(10)
	require.InDelta(t, wantHalfWidth, halfWidth, 1e-6)
	require.InDelta(t, mean-wantHalfWidth, lower, 1e-6)
	require.InDelta(t, mean+wantHalfWidth, upper, 1e-6)
}

func TestConfidenceIntervalRejectsUnsupportedConfidence(t *testing.T) {
	_, _, _, _, err := ConfidenceInterval([]float64{1, 2, 3}, 0.90)
	require.Error(t, err)
}

func TestConfidenceIntervalRejectsEmptySamples(t *testing.T) {
	_, _, _, _, err := ConfidenceInterval(nil, 0.95)
	require.Error(t, err)
}

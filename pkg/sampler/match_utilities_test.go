package sampler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchUtilitiesSingleLog(t *testing.T) {
	log := "STATE:0:cc:Ks|Qs:1|-1:p1|p2\n" +
		"STATE:1:cc:Js|Ts:-1|1:p1|p2\n"

	utilities, err := MatchUtilities(strings.NewReader(log))
	require.NoError(t, err)
	require.Equal(t, []float64{1, -1}, utilities["p1"])
	require.Equal(t, []float64{-1, 1}, utilities["p2"])
}

func TestMatchUtilitiesCombinesMultipleLogs(t *testing.T) {
	log1 := "STATE:0:cc:Ks|Qs:1|-1:p1|p2\n"
	log2 := "STATE:0:cc:Js|Ts:-1|1:p1|p2\n"

	utilities, err := MatchUtilities(strings.NewReader(log1), strings.NewReader(log2))
	require.NoError(t, err)
	require.Equal(t, []float64{1, -1}, utilities["p1"])
	require.Equal(t, []float64{-1, 1}, utilities["p2"])
}

func TestMatchUtilitiesRejectsMismatchedHandCounts(t *testing.T) {
	log1 := "STATE:0:cc:Ks|Qs:1|-1:p1|p2\n"
	log2 := "STATE:0:cc:Js|Ts:-1|1:p1|p2\nSTATE:1:cc:9s|8s:1|-1:p1|p2\n"

	_, err := MatchUtilities(strings.NewReader(log1), strings.NewReader(log2))
	require.Error(t, err)
}

func TestMatchUtilitiesRejectsNoLogs(t *testing.T) {
	_, err := MatchUtilities()
	require.Error(t, err)
}

package sampler

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mkemp/pokercfr/pkg/errs"
)

// logUtilities is one log's per-player utility series, indexed by hand
// index (the STATE line's hand-number field), grounded on
// get_player_utilities_from_log_file in original_source/tools/match_evaluation.py.
type logUtilities struct {
	numHands int
	byPlayer map[string][]float64
}

func parseLogUtilities(r io.Reader) (logUtilities, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return logUtilities{}, errs.Wrap(errs.IOFailure, err, "reading match log")
	}

	numHands := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "STATE") {
			numHands++
		}
	}

	result := logUtilities{numHands: numHands, byPlayer: make(map[string][]float64)}
	for _, line := range lines {
		if !strings.HasPrefix(line, "STATE") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 5 {
			return logUtilities{}, errs.New(errs.IOFailure, "malformed STATE line: %q", line)
		}

		handIndex, err := strconv.Atoi(strings.TrimSpace(strings.Split(fields[1], ".")[0]))
		if err != nil {
			return logUtilities{}, errs.Wrap(errs.IOFailure, err, "hand index in %q", line)
		}
		if handIndex < 0 || handIndex >= numHands {
			return logUtilities{}, errs.New(errs.IOFailure, "hand index %d out of range [0,%d) in %q", handIndex, numHands, line)
		}

		scoreTokens := strings.Split(fields[len(fields)-2], "|")
		names := strings.Split(fields[len(fields)-1], "|")
		if len(scoreTokens) != len(names) {
			return logUtilities{}, errs.New(errs.IOFailure, "%d scores but %d player names in %q", len(scoreTokens), len(names), line)
		}

		for i, name := range names {
			score, err := strconv.ParseFloat(scoreTokens[i], 64)
			if err != nil {
				return logUtilities{}, errs.Wrap(errs.IOFailure, err, "score for %q in %q", name, line)
			}
			series, ok := result.byPlayer[name]
			if !ok {
				series = make([]float64, numHands)
			}
			series[handIndex] = score
			result.byPlayer[name] = series
		}
	}
	return result, nil
}

// MatchUtilities aggregates per-hand utilities across one or more match
// logs, one series per player name, in hand-played order with later logs
// appended after earlier ones. All logs must cover the same set of player
// names and the same number of hands, grounded on get_logs_data in
// original_source/tools/match_evaluation.py. The combined series is the
// natural input to ConfidenceInterval.
func MatchUtilities(logs ...io.Reader) (map[string][]float64, error) {
	if len(logs) == 0 {
		return nil, errs.New(errs.ParameterOutOfRange, "MatchUtilities requires at least one log")
	}

	readings := make([]logUtilities, len(logs))
	for i, r := range logs {
		reading, err := parseLogUtilities(r)
		if err != nil {
			return nil, err
		}
		readings[i] = reading
	}

	var names []string
	for name := range readings[0].byPlayer {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, reading := range readings {
		if reading.numHands != readings[0].numHands {
			return nil, errs.New(errs.IOFailure, "log %d has %d hands, want %d", i, reading.numHands, readings[0].numHands)
		}
		var got []string
		for name := range reading.byPlayer {
			got = append(got, name)
		}
		sort.Strings(got)
		if len(got) != len(names) {
			return nil, errs.New(errs.IOFailure, "log %d has %d players, want %d", i, len(got), len(names))
		}
		for j, name := range got {
			if name != names[j] {
				return nil, errs.New(errs.IOFailure, "log %d player set does not match the first log's", i)
			}
		}
	}

	combined := make(map[string][]float64, len(names))
	for _, name := range names {
		series := make([]float64, 0, readings[0].numHands*len(readings))
		for _, reading := range readings {
			series = append(series, reading.byPlayer[name]...)
		}
		combined[name] = series
	}
	return combined, nil
}

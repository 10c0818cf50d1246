// Package strategyio reads and writes the strategy/observation file
// grammar of spec.md §6: one line per information set, the canonical
// infoset key followed by three space-separated numbers, sorted
// lexicographically on write with optional leading #-comment lines.
// Grounded on _examples/original_source/tools/io_util.py.
package strategyio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mkemp/pokercfr/internal/fileutil"
	"github.com/mkemp/pokercfr/pkg/errs"
	"github.com/mkemp/pokercfr/pkg/sampler"
	"github.com/mkemp/pokercfr/pkg/strategy"
	"github.com/mkemp/pokercfr/pkg/tree"
)

const filePerm = 0o644

// WriteStrategy writes m to path as a strategy file: sorted
// "<infoset key> p_fold p_call p_raise" lines, preceded by comments (each
// given a leading "# " if it lacks one) if any, written atomically via
// fileutil.WriteFileAtomic.
func WriteStrategy(path string, m strategy.Map, comments []string) error {
	lines := make([]string, 0, len(m))
	for key, dist := range m {
		lines = append(lines, key+" "+formatFloat(dist[tree.ActionFold])+" "+formatFloat(dist[tree.ActionCall])+" "+formatFloat(dist[tree.ActionRaise]))
	}
	sort.Strings(lines)
	return writeLines(path, lines, comments)
}

// ReadStrategy parses a strategy file into a strategy.Map.
func ReadStrategy(r io.Reader) (strategy.Map, error) {
	m := make(strategy.Map)
	err := scanLines(r, func(key string, fields []string) error {
		var dist [tree.NumActions]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return errs.Wrap(errs.InvalidStrategy, err, "probability for %q", key)
			}
			dist[i] = v
		}
		m[key] = dist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WriteObservations writes t to path as an observation file: sorted
// "<infoset key> count_fold count_call count_raise" lines.
func WriteObservations(path string, t sampler.Table, comments []string) error {
	lines := make([]string, 0, len(t))
	for key, counts := range t {
		lines = append(lines, key+" "+strconv.Itoa(counts[tree.ActionFold])+" "+strconv.Itoa(counts[tree.ActionCall])+" "+strconv.Itoa(counts[tree.ActionRaise]))
	}
	sort.Strings(lines)
	return writeLines(path, lines, comments)
}

// ReadObservations parses an observation file into a sampler.Table.
func ReadObservations(r io.Reader) (sampler.Table, error) {
	t := make(sampler.Table)
	err := scanLines(r, func(key string, fields []string) error {
		var counts [tree.NumActions]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return errs.Wrap(errs.InvalidStrategy, err, "count for %q", key)
			}
			counts[i] = v
		}
		t[key] = counts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func writeLines(path string, lines, comments []string) error {
	var b strings.Builder
	for _, c := range comments {
		c = strings.TrimSuffix(c, "\n")
		if !strings.HasPrefix(c, "#") {
			c = "# " + c
		}
		b.WriteString(c)
		b.WriteByte('\n')
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.IOFailure, err, "create directory for %s", path)
		}
	}
	return fileutil.WriteFileAtomic(path, []byte(b.String()), filePerm)
}

func scanLines(r io.Reader, onLine func(key string, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != tree.NumActions+1 {
			return errs.New(errs.InvalidStrategy, "line %d: expected %d fields, got %d: %q", lineNum, tree.NumActions+1, len(fields), line)
		}
		if err := onLine(fields[0], fields[1:]); err != nil {
			return errs.Wrap(errs.InvalidStrategy, err, "line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return errs.Wrap(errs.IOFailure, err, "reading file")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NextAvailablePath returns path unless a file already exists there, in
// which case it inserts "(n)" (n = 1, 2, ...) before path's extension
// until it finds a name nothing occupies, grounded on io_util.py's
// get_new_path.
func NextAvailablePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := base + "(" + strconv.Itoa(n) + ")" + ext
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/screa/powbench/internal/logger"
)

// SummaryHeader is the column order of a summary file
var SummaryHeader = []string{
	"experiment_id",
	"mode",
	"threads",
	"hps_mean",
	"hps_std",
	"hps_count",
	"elapsed_mean",
}

// ErrNoReports is returned when a directory holds no readable reports
var ErrNoReports = errors.New("report: no parsable reports found")

// GroupKey identifies runs that are aggregated together
type GroupKey struct {
	ExperimentID string
	Mode         string
	Threads      int
}

// Group is the aggregate of every run sharing a key
type Group struct {
	Key         GroupKey
	HPSMean     float64
	HPSStd      float64
	Count       int
	ElapsedMean float64
}

type sample struct {
	hps     float64
	elapsed float64
}

// Summarize reads every *.csv report in dir and writes per-group statistics
// to out. Files that cannot be parsed are skipped with a warning. The output
// file itself is ignored if it lives in dir.
func Summarize(dir, out string, log *logger.Logger) ([]Group, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	outAbs, _ := filepath.Abs(out)

	samples := make(map[GroupKey][]sample)
	parsed := 0
	for _, f := range files {
		if abs, _ := filepath.Abs(f); abs == outAbs {
			continue
		}
		if err := readReport(f, samples); err != nil {
			log.Warnf("Skipping %s: %v", f, err)
			continue
		}
		parsed++
	}
	if parsed == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReports, dir)
	}

	groups := aggregate(samples)
	if err := writeSummary(out, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func readReport(path string, samples map[GroupKey][]sample) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"experiment_id", "mode", "threads", "hashes_per_second", "elapsed_s"} {
		if _, ok := col[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}

	// parse everything before merging so a bad file contributes nothing
	type entry struct {
		key GroupKey
		s   sample
	}
	var entries []entry
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		threads, err := strconv.Atoi(record[col["threads"]])
		if err != nil {
			return fmt.Errorf("line %d: threads: %w", line, err)
		}
		hps, err := strconv.ParseFloat(record[col["hashes_per_second"]], 64)
		if err != nil {
			return fmt.Errorf("line %d: hashes_per_second: %w", line, err)
		}
		elapsed, err := strconv.ParseFloat(record[col["elapsed_s"]], 64)
		if err != nil {
			return fmt.Errorf("line %d: elapsed_s: %w", line, err)
		}
		entries = append(entries, entry{
			key: GroupKey{
				ExperimentID: record[col["experiment_id"]],
				Mode:         record[col["mode"]],
				Threads:      threads,
			},
			s: sample{hps: hps, elapsed: elapsed},
		})
	}

	for _, e := range entries {
		samples[e.key] = append(samples[e.key], e.s)
	}
	return nil
}

func aggregate(samples map[GroupKey][]sample) []Group {
	groups := make([]Group, 0, len(samples))
	for key, ss := range samples {
		n := float64(len(ss))
		var hpsSum, elapsedSum float64
		for _, s := range ss {
			hpsSum += s.hps
			elapsedSum += s.elapsed
		}
		mean := hpsSum / n

		// sample standard deviation
		std := 0.0
		if len(ss) > 1 {
			var sq float64
			for _, s := range ss {
				sq += (s.hps - mean) * (s.hps - mean)
			}
			std = math.Sqrt(sq / (n - 1))
		}

		groups = append(groups, Group{
			Key:         key,
			HPSMean:     mean,
			HPSStd:      std,
			Count:       len(ss),
			ElapsedMean: elapsedSum / n,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a.ExperimentID != b.ExperimentID {
			return a.ExperimentID < b.ExperimentID
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		return a.Threads < b.Threads
	})
	return groups
}

func writeSummary(path string, groups []Group) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(SummaryHeader); err != nil {
		return err
	}
	for _, g := range groups {
		record := []string{
			g.Key.ExperimentID,
			g.Key.Mode,
			strconv.Itoa(g.Key.Threads),
			formatFloat(g.HPSMean),
			formatFloat(g.HPSStd),
			strconv.Itoa(g.Count),
			formatFloat(g.ElapsedMean),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

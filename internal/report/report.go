// Package report writes benchmark results as CSV and aggregates report files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/screa/powbench/pkg/types"
)

// Header is the column order of a run report
var Header = []string{
	"experiment_id",
	"mode",
	"difficulty",
	"threads",
	"affinity",
	"found",
	"nonce",
	"total_hashes",
	"elapsed_s",
	"cpu_time_s",
	"memory_mb",
	"hashes_per_second",
}

// Row pairs a run's configuration with its result
type Row struct {
	Config types.MiningConfig
	Result *types.MiningResult
}

// Record formats the row in Header order
func (r Row) Record() []string {
	return []string{
		r.Result.ExperimentID,
		r.Config.Mode.String(),
		strconv.FormatUint(uint64(r.Config.Difficulty), 10),
		strconv.Itoa(r.Config.Threads),
		strconv.FormatBool(r.Config.Affinity),
		strconv.FormatBool(r.Result.Found),
		strconv.FormatUint(r.Result.Nonce, 10),
		strconv.FormatUint(r.Result.TotalHashes, 10),
		formatFloat(r.Result.Elapsed.Seconds()),
		formatFloat(r.Result.CPUTime.Seconds()),
		formatFloat(r.Result.MemoryMB),
		formatFloat(r.Result.HashesPerSecond()),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Write replaces the file at path with a header row and one row per run
func Write(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		file.Close()
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			file.Close()
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return fmt.Errorf("report: flush: %w", err)
	}
	return file.Close()
}

package types

import (
	"fmt"
	"time"
)

// Mode selects the search strategy
type Mode int

const (
	Sequential Mode = iota
	Parallel
	Concurrent
)

var modeNames = map[Mode]string{
	Sequential: "sequential",
	Parallel:   "parallel",
	Concurrent: "concurrent",
}

// String returns the lowercase name used on the command line and in reports
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a command line name into a Mode
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q: want sequential, concurrent or parallel", s)
}

// MiningConfig is the validated, immutable description of one run.
// Pass it by value.
type MiningConfig struct {
	Mode         Mode
	Difficulty   uint32
	Threads      int
	Affinity     bool
	Timeout      time.Duration
	Seed         uint64
	HashName     string
	ExperimentID string
}

// Solution is the winning nonce and its digest
type Solution struct {
	Nonce  uint64
	Digest string
}

// MiningResult represents the outcome of a single run
type MiningResult struct {
	Found        bool
	Nonce        uint64
	Digest       string
	TotalHashes  uint64
	WorkerHashes []uint64 // attempts per worker, indexed by worker id; sums to TotalHashes
	Elapsed      time.Duration
	CPUTime      time.Duration
	MemoryMB     float64
	ExperimentID string
}

// HashesPerSecond is total hashes over wall-clock seconds, 0 when no time elapsed
func (r *MiningResult) HashesPerSecond() float64 {
	if r.Elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(r.TotalHashes) / r.Elapsed.Seconds()
}

// Package metrics reads process-wide resource usage for benchmark reports.
package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Probe reports process CPU time and resident memory
type Probe interface {
	CPUTime() (time.Duration, error)
	MemoryMB() (float64, error)
}

// ProcessProbe reads the current process through gopsutil
type ProcessProbe struct {
	p *process.Process
}

// NewProcessProbe attaches to the running process
func NewProcessProbe() (*ProcessProbe, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("metrics: attach to process: %w", err)
	}
	return &ProcessProbe{p: p}, nil
}

// CPUTime is user plus system CPU time consumed so far
func (pp *ProcessProbe) CPUTime() (time.Duration, error) {
	times, err := pp.p.Times()
	if err != nil {
		return 0, fmt.Errorf("metrics: cpu times: %w", err)
	}
	return secondsToDuration(times.User + times.System), nil
}

// MemoryMB is the resident set size in MiB
func (pp *ProcessProbe) MemoryMB() (float64, error) {
	info, err := pp.p.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("metrics: memory info: %w", err)
	}
	return float64(info.RSS) / (1024 * 1024), nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Nop reports zero for everything
type Nop struct{}

func (Nop) CPUTime() (time.Duration, error) { return 0, nil }
func (Nop) MemoryMB() (float64, error)      { return 0, nil }

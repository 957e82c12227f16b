package miner

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/screa/powbench/internal/affinity"
	"github.com/screa/powbench/internal/crypto"
	"github.com/screa/powbench/internal/logger"
	"github.com/screa/powbench/internal/metrics"
	"github.com/screa/powbench/pkg/types"
	"github.com/screa/powbench/pkg/worker"
)

// ErrUnknownMode is returned for a mode with no strategy
var ErrUnknownMode = errors.New("unknown execution mode")

// Miner runs one configured search and measures it
type Miner struct {
	config      types.MiningConfig
	logger      *logger.Logger
	engine      *crypto.Engine
	probe       metrics.Probe
	affinity    affinity.Controller
	strategy    Strategy
	logInterval time.Duration

	coord atomic.Pointer[worker.Coordinator]
}

// Option customises a Miner
type Option func(*Miner)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *logger.Logger) Option {
	return func(m *Miner) { m.logger = log }
}

// WithProbe sets the CPU/memory probe. The default reports zeros.
func WithProbe(p metrics.Probe) Option {
	return func(m *Miner) { m.probe = p }
}

// WithAffinity sets the thread pinning controller used by concurrent mode
func WithAffinity(a affinity.Controller) Option {
	return func(m *Miner) { m.affinity = a }
}

// WithProgress logs live progress every interval while mining. Zero disables it.
func WithProgress(interval time.Duration) Option {
	return func(m *Miner) { m.logInterval = interval }
}

// New creates a miner for cfg. It fails if the digest engine cannot be set up,
// before any measurement starts.
func New(cfg types.MiningConfig, opts ...Option) (*Miner, error) {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}

	m := &Miner{
		config:   cfg,
		logger:   logger.NewNop(),
		probe:    metrics.Nop{},
		affinity: affinity.New(),
	}
	for _, opt := range opts {
		opt(m)
	}

	engine, err := crypto.NewEngine(cfg.HashName)
	if err != nil {
		return nil, fmt.Errorf("digest engine: %w", err)
	}
	m.engine = engine

	m.strategy, err = newStrategy(cfg.Mode, engine, m.affinity, m.logger, m.setCoordinator)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Strategy returns the strategy selected for the configured mode
func (m *Miner) Strategy() Strategy {
	return m.strategy
}

func (m *Miner) setCoordinator(c *worker.Coordinator) {
	m.coord.Store(c)
}

// Mine runs the search until a solution is found or the timeout passes.
// It always returns a result; Found is false on timeout.
func (m *Miner) Mine() *types.MiningResult {
	start := time.Now()
	cpuStart, err := m.probe.CPUTime()
	if err != nil {
		m.logger.Warnf("CPU time baseline unavailable: %v", err)
	}

	// Start periodic logging if requested
	var logTicker *time.Ticker
	var logDone, logStopped chan struct{}
	if m.logInterval > 0 {
		logTicker = time.NewTicker(m.logInterval)
		logDone = make(chan struct{})
		logStopped = make(chan struct{})
		go func() {
			defer close(logStopped)
			m.periodicLogger(logTicker, logDone, start)
		}()

		m.logger.Debugf("Mining started in %s mode with %d workers, logging every %v...",
			m.config.Mode, m.config.Threads, m.logInterval)
	}

	result := m.strategy.Search(m.config, start.Add(m.config.Timeout))

	// Stop periodic logging
	if logTicker != nil {
		logTicker.Stop()
		close(logDone)
		<-logStopped
	}

	result.Elapsed = time.Since(start)

	cpuEnd, err := m.probe.CPUTime()
	if err != nil {
		m.logger.Warnf("CPU time unavailable: %v", err)
	} else if cpuEnd > cpuStart {
		result.CPUTime = cpuEnd - cpuStart
	}

	result.MemoryMB, err = m.probe.MemoryMB()
	if err != nil {
		m.logger.Warnf("Memory usage unavailable: %v", err)
	}

	return result
}

// periodicLogger logs mining progress at regular intervals
func (m *Miner) periodicLogger(ticker *time.Ticker, done chan struct{}, start time.Time) {
	for {
		select {
		case <-ticker.C:
			coord := m.coord.Load()
			if coord == nil {
				continue
			}
			attempts := coord.LiveAttempts()
			elapsed := time.Since(start)

			// Calculate rate safely
			rate := 0.0
			if elapsed.Seconds() > 0 {
				rate = float64(attempts) / elapsed.Seconds()
			}

			if sol := coord.Solution(); sol != nil {
				m.logger.Infof("Progress: %d attempts, %.2f hashes/sec, found nonce %d, waiting for workers",
					attempts, rate, sol.Nonce)
			} else {
				m.logger.Infof("Progress: %d attempts, %.2f hashes/sec, %v elapsed, no match yet",
					attempts, rate, elapsed.Truncate(time.Millisecond))
			}
		case <-done:
			return
		}
	}
}

package miner

import (
	"fmt"
	"sync"
	"time"

	"github.com/screa/powbench/internal/affinity"
	"github.com/screa/powbench/internal/crypto"
	"github.com/screa/powbench/internal/logger"
	"github.com/screa/powbench/pkg/pow"
	"github.com/screa/powbench/pkg/types"
	"github.com/screa/powbench/pkg/worker"
)

// Strategy runs the search loop for one execution mode. The returned result
// carries the search outcome; timing and resource fields are left to the caller.
type Strategy interface {
	Search(cfg types.MiningConfig, deadline time.Time) *types.MiningResult
}

// startHook is called with the run's coordinator before any worker starts
type startHook func(*worker.Coordinator)

func (h startHook) call(c *worker.Coordinator) {
	if h != nil {
		h(c)
	}
}

// Sequential searches from seed upward on the calling goroutine
type Sequential struct {
	engine  *crypto.Engine
	onStart startHook
}

func (s *Sequential) Search(cfg types.MiningConfig, deadline time.Time) *types.MiningResult {
	coord := worker.NewCoordinator(1)
	s.onStart.call(coord)

	w := worker.NewWorker(0, &cfg, s.engine.NewHasher(), coord)
	counts := []uint64{w.Search(cfg.Seed, deadline)}

	return buildResult(cfg, coord, counts)
}

// Parallel splits the nonce space across cfg.Threads goroutines and lets the
// Go scheduler spread them over every available core
type Parallel struct {
	engine  *crypto.Engine
	onStart startHook
}

func (p *Parallel) Search(cfg types.MiningConfig, deadline time.Time) *types.MiningResult {
	coord := worker.NewCoordinator(cfg.Threads)
	p.onStart.call(coord)

	counts := runWorkers(cfg, deadline, p.engine, coord, nil)
	return buildResult(cfg, coord, counts)
}

// Concurrent is Parallel with every worker optionally pinned to the core
// the caller is running on, forcing the workers to time-slice one core
type Concurrent struct {
	engine   *crypto.Engine
	affinity affinity.Controller
	logger   *logger.Logger
	onStart  startHook
}

func (c *Concurrent) Search(cfg types.MiningConfig, deadline time.Time) *types.MiningResult {
	coord := worker.NewCoordinator(cfg.Threads)
	c.onStart.call(coord)

	var pin func(id int)
	if cfg.Affinity {
		cpu, err := c.affinity.CurrentCPU()
		if err != nil || cpu < 0 {
			c.logger.Warnf("Could not determine current CPU, pinning to 0: %v", err)
			cpu = 0
		}
		c.logger.Debugf("Pinning %d workers to CPU %d", cfg.Threads, cpu)
		pin = func(id int) {
			if err := c.affinity.Pin(cpu); err != nil {
				c.logger.With("worker", id).Warnf("Pin to CPU %d failed: %v", cpu, err)
			}
		}
	}

	counts := runWorkers(cfg, deadline, c.engine, coord, pin)
	return buildResult(cfg, coord, counts)
}

// runWorkers starts one goroutine per partition range, waits for all of them
// and returns the number of attempts each worker made, indexed by worker id
func runWorkers(cfg types.MiningConfig, deadline time.Time, engine *crypto.Engine, coord *worker.Coordinator, pin func(id int)) []uint64 {
	ranges := pow.Partition(cfg.Seed, cfg.Threads)
	counts := make([]uint64, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(id int, start uint64) {
			defer wg.Done()
			if pin != nil {
				pin(id)
			}
			w := worker.NewWorker(id, &cfg, engine.NewHasher(), coord)
			counts[id] = w.Search(start, deadline)
		}(i, r.Start)
	}
	wg.Wait()
	return counts
}

func buildResult(cfg types.MiningConfig, coord *worker.Coordinator, counts []uint64) *types.MiningResult {
	result := &types.MiningResult{
		TotalHashes:  coord.Attempts(),
		WorkerHashes: counts,
		ExperimentID: cfg.ExperimentID,
	}
	if sol := coord.Solution(); sol != nil {
		result.Found = true
		result.Nonce = sol.Nonce
		result.Digest = sol.Digest
	}
	return result
}

// newStrategy picks the strategy for a mode
func newStrategy(mode types.Mode, engine *crypto.Engine, aff affinity.Controller, log *logger.Logger, onStart startHook) (Strategy, error) {
	switch mode {
	case types.Sequential:
		return &Sequential{engine: engine, onStart: onStart}, nil
	case types.Parallel:
		return &Parallel{engine: engine, onStart: onStart}, nil
	case types.Concurrent:
		return &Concurrent{engine: engine, affinity: aff, logger: log, onStart: onStart}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
}

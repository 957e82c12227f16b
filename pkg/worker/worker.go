package worker

import (
	"sync/atomic"
	"time"

	"github.com/screa/powbench/internal/crypto"
	"github.com/screa/powbench/pkg/pow"
	"github.com/screa/powbench/pkg/types"
)

// ProgressInterval is how many attempts a worker makes between progress publications
const ProgressInterval = 1 << 12

// progressSlot is padded to a cache line so workers do not false-share
type progressSlot struct {
	n atomic.Uint64
	_ [56]byte
}

// Coordinator is the state shared by every worker in a run: the winning
// solution, the attempt total, and per-worker progress for live reporting.
type Coordinator struct {
	winner   atomic.Pointer[types.Solution]
	attempts atomic.Uint64
	progress []progressSlot
}

// NewCoordinator creates coordination state for the given number of workers
func NewCoordinator(workers int) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		progress: make([]progressSlot, workers),
	}
}

// Found reports whether some worker has claimed a solution
func (c *Coordinator) Found() bool {
	return c.winner.Load() != nil
}

// Claim records a solution if none has been recorded yet. It returns true
// for exactly one caller per run; the solution is fully written before it
// becomes visible to anyone else.
func (c *Coordinator) Claim(nonce uint64, digest string) bool {
	return c.winner.CompareAndSwap(nil, &types.Solution{Nonce: nonce, Digest: digest})
}

// Solution returns the winning solution, or nil
func (c *Coordinator) Solution() *types.Solution {
	return c.winner.Load()
}

// AddAttempts adds a worker's final count to the run total
func (c *Coordinator) AddAttempts(n uint64) {
	c.attempts.Add(n)
}

// Attempts returns the run total. It is only complete once every worker has stopped.
func (c *Coordinator) Attempts() uint64 {
	return c.attempts.Load()
}

// LiveAttempts sums the latest per-worker progress. It lags the true count by
// up to ProgressInterval per worker and is meant for progress logging only.
func (c *Coordinator) LiveAttempts() uint64 {
	var total uint64
	for i := range c.progress {
		total += c.progress[i].n.Load()
	}
	return total
}

func (c *Coordinator) publish(id int, n uint64) {
	if id >= 0 && id < len(c.progress) {
		c.progress[id].n.Store(n)
	}
}

// Worker searches one nonce range
type Worker struct {
	id         int
	seed       uint64
	difficulty uint32
	hasher     *crypto.Hasher
	coord      *Coordinator

	// reused between attempts
	dataBuffer []byte
}

// NewWorker creates a new worker instance. The hasher must not be shared with other workers.
func NewWorker(id int, cfg *types.MiningConfig, hasher *crypto.Hasher, coord *Coordinator) *Worker {
	return &Worker{
		id:         id,
		seed:       cfg.Seed,
		difficulty: cfg.Difficulty,
		hasher:     hasher,
		coord:      coord,
		dataBuffer: make([]byte, 0, pow.MaxBlockDataLen),
	}
}

// Attempt hashes the block data for nonce and reports whether it meets the difficulty.
// The digest is only valid until the next call.
func (w *Worker) Attempt(nonce uint64) ([]byte, bool) {
	w.dataBuffer = pow.AppendBlockData(w.dataBuffer[:0], w.seed, nonce)
	digest := w.hasher.DigestHex(w.dataBuffer)
	return digest, pow.MeetsDifficulty(digest, w.difficulty)
}

// Search counts upward from start until a solution is found by any worker
// or the deadline passes. The local attempt count is added to the
// coordinator once, after the loop, and also returned.
func (w *Worker) Search(start uint64, deadline time.Time) uint64 {
	nonce := start
	var attempts uint64

	for !w.coord.Found() {
		if !time.Now().Before(deadline) {
			break
		}

		digest, ok := w.Attempt(nonce)
		attempts++
		if attempts%ProgressInterval == 0 {
			w.coord.publish(w.id, attempts)
		}

		if ok {
			w.coord.Claim(nonce, string(digest))
			break
		}
		nonce++
	}

	w.coord.publish(w.id, attempts)
	w.coord.AddAttempts(attempts)
	return attempts
}

// Package affinity pins goroutines to a single CPU core.
//
// Pin locks the calling goroutine to its OS thread and restricts that thread
// to one core. The goroutine stays locked for the rest of its life, so when it
// returns the runtime discards the pinned thread instead of reusing it.
package affinity

import "errors"

// ErrUnsupported is returned by controllers that cannot pin threads
var ErrUnsupported = errors.New("affinity: thread pinning not supported on this platform")

// Controller queries and sets the core a goroutine runs on
type Controller interface {
	// CurrentCPU returns the core the calling thread is executing on
	CurrentCPU() (int, error)
	// Pin binds the calling goroutine's thread to cpu
	Pin(cpu int) error
}

// Nop never pins and always reports core 0
type Nop struct{}

func (Nop) CurrentCPU() (int, error) { return 0, nil }
func (Nop) Pin(int) error            { return nil }

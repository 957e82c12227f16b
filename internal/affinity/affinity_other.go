//go:build !linux

package affinity

// New returns the controller for this platform. Without sched_setaffinity
// the workers are left to the scheduler.
func New() Controller {
	return Nop{}
}

func Pinned() ([]int, error) {
	return nil, ErrUnsupported
}

package scheduler

import "sync/atomic"

// RunState is the exclusivity flag shared by every trigger of one scheduler.
// At most one holder exists at a time.
type RunState struct {
	running atomic.Bool
}

func NewRunState() *RunState {
	return &RunState{}
}

// TryAcquire flips the flag from idle to running. It reports false when a run is already active.
func (s *RunState) TryAcquire() bool {
	return s.running.CompareAndSwap(false, true)
}

func (s *RunState) Release() {
	s.running.Store(false)
}

func (s *RunState) IsRunning() bool {
	return s.running.Load()
}

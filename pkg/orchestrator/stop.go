package orchestrator

import (
	"sync"
	"sync/atomic"
)

// StopFlag is a one-way, process-wide "stop requested" signal. Workers poll
// Stopped between chunks; the collector also selects on Done.
type StopFlag struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// NewStopFlag returns a flag that is not yet set.
func NewStopFlag() *StopFlag {
	return &StopFlag{done: make(chan struct{})}
}

// Stop sets the flag. Calling it more than once is harmless.
func (f *StopFlag) Stop() {
	f.once.Do(func() {
		f.stopped.Store(true)
		close(f.done)
	})
}

// Stopped reports whether Stop has been called.
func (f *StopFlag) Stopped() bool {
	return f.stopped.Load()
}

// Done is closed once Stop has been called.
func (f *StopFlag) Done() <-chan struct{} {
	return f.done
}

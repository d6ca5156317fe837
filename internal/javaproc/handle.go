package javaproc

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/process"
)

// Handle tracks one launched process.
type Handle struct {
	pid      int
	started  bool
	exitCode int
	done     chan struct{}
}

// fail turns h into a no-op handle after a start failure.
func (h *Handle) fail(l Listener, reason string) *Handle {
	l.CouldNotStart(reason)
	close(h.done)
	return h
}

// Started reports whether the process was actually spawned.
func (h *Handle) Started() bool { return h.started }

// Pid is 0 when the process never started.
func (h *Handle) Pid() int { return h.pid }

// Done is closed once the listener has received Ended (or CouldNotStart).
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the process has ended and its output was delivered.
// Cancelling ctx stops the wait, not the process.
func (h *Handle) Wait(ctx context.Context) (int, error) {
	select {
	case <-h.done:
		return h.exitCode, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// Usage is a resource sample of a running process.
type Usage struct {
	RSS        uint64
	CPUPercent float64
	Threads    int32
}

var errNotRunning = errors.New("process is not running")

// Usage samples the process through the OS process table.
func (h *Handle) Usage() (Usage, error) {
	if !h.started {
		return Usage{}, errNotRunning
	}
	select {
	case <-h.done:
		return Usage{}, errNotRunning
	default:
	}

	p, err := process.NewProcess(int32(h.pid))
	if err != nil {
		return Usage{}, err
	}

	var u Usage
	if mem, err := p.MemoryInfo(); err == nil {
		u.RSS = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		u.Threads = n
	}
	return u, nil
}

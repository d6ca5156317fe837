package javaproc

import (
	"strings"
	"sync"
)

// Stream identifies the output stream a line was read from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Listener receives the lifecycle of a launched process. Started always
// precedes Line, which always precedes Ended. CouldNotStart excludes the
// other three.
type Listener interface {
	Started(summary string)
	Line(stream Stream, text string)
	CouldNotStart(reason string)
	Ended(exitCode int)
}

// ListenerFuncs adapts optional functions to a Listener.
type ListenerFuncs struct {
	OnStarted       func(summary string)
	OnLine          func(stream Stream, text string)
	OnCouldNotStart func(reason string)
	OnEnded         func(exitCode int)
}

func (f ListenerFuncs) Started(summary string) {
	if f.OnStarted != nil {
		f.OnStarted(summary)
	}
}

func (f ListenerFuncs) Line(stream Stream, text string) {
	if f.OnLine != nil {
		f.OnLine(stream, text)
	}
}

func (f ListenerFuncs) CouldNotStart(reason string) {
	if f.OnCouldNotStart != nil {
		f.OnCouldNotStart(reason)
	}
}

func (f ListenerFuncs) Ended(exitCode int) {
	if f.OnEnded != nil {
		f.OnEnded(exitCode)
	}
}

// Multi fans every event out to each listener in order. Nil entries are
// skipped.
func Multi(listeners ...Listener) Listener {
	var ls multi
	for _, l := range listeners {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return ls
}

type multi []Listener

func (m multi) Started(summary string) {
	for _, l := range m {
		l.Started(summary)
	}
}

func (m multi) Line(stream Stream, text string) {
	for _, l := range m {
		l.Line(stream, text)
	}
}

func (m multi) CouldNotStart(reason string) {
	for _, l := range m {
		l.CouldNotStart(reason)
	}
}

func (m multi) Ended(exitCode int) {
	for _, l := range m {
		l.Ended(exitCode)
	}
}

// Outcome is the result of one process run.
type Outcome struct {
	Started    bool
	StartError string
	Summary    string
	ExitCode   int
	Stdout     string
	Stderr     string
}

// Success reports a zero exit code. Some XML tools exit 0 even after
// internal errors; the exit code is still taken as authoritative.
func (o Outcome) Success() bool {
	return o.Started && o.ExitCode == 0
}

// Log returns stdout followed by stderr.
func (o Outcome) Log() string {
	switch {
	case o.Stdout == "":
		return o.Stderr
	case o.Stderr == "":
		return o.Stdout
	default:
		return o.Stdout + "\n" + o.Stderr
	}
}

// Recorder is a Listener that accumulates an Outcome.
type Recorder struct {
	mu      sync.Mutex
	outcome Outcome
	stdout  []string
	stderr  []string
	done    chan struct{}
	once    sync.Once
}

func NewRecorder() *Recorder {
	return &Recorder{done: make(chan struct{})}
}

func (r *Recorder) Started(summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome.Started = true
	r.outcome.Summary = summary
}

func (r *Recorder) Line(stream Stream, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stream == Stderr {
		r.stderr = append(r.stderr, text)
	} else {
		r.stdout = append(r.stdout, text)
	}
}

func (r *Recorder) CouldNotStart(reason string) {
	r.mu.Lock()
	r.outcome.StartError = reason
	r.outcome.ExitCode = -1
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

func (r *Recorder) Ended(exitCode int) {
	r.mu.Lock()
	r.outcome.ExitCode = exitCode
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

// Done is closed on Ended or CouldNotStart.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

// Outcome returns a snapshot of what has been recorded so far.
func (r *Recorder) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.outcome
	o.Stdout = strings.Join(r.stdout, "\n")
	o.Stderr = strings.Join(r.stderr, "\n")
	return o
}

package javaproc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultJava is used when Launcher.Java is empty.
const DefaultJava = "java"

// Launcher starts Java processes described by a Descriptor.
type Launcher struct {
	Java   string
	Logger *log.Logger
}

// NewLauncher creates a launcher for the given java executable.
func NewLauncher(java string, logger *log.Logger) *Launcher {
	return &Launcher{Java: java, Logger: logger}
}

func (l *Launcher) java() string {
	if l.Java == "" {
		return DefaultJava
	}
	return l.Java
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger == nil {
		return log.New(io.Discard)
	}
	return l.Logger
}

// Launch starts the process and returns without waiting for it. An error
// is returned only for descriptor misconfiguration. When the process cannot
// be started the listener's CouldNotStart is called before Launch returns
// and the handle is already done.
func (l *Launcher) Launch(d *Descriptor) (*Handle, error) {
	c, err := d.Build()
	if err != nil {
		return nil, err
	}
	d.launched = true

	ls := &serialListener{l: c.Listener}
	if c.Listener == nil {
		ls.l = ListenerFuncs{}
	}

	java := l.java()
	argv := c.Argv(java)
	summary := JoinArgs(argv)
	logger := l.logger()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = MergeEnv(os.Environ(), c.Env)

	h := &Handle{done: make(chan struct{}), exitCode: -1}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return h.fail(ls, fmt.Sprintf("failed to open stdout: %v", err)), nil
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return h.fail(ls, fmt.Sprintf("failed to open stderr: %v", err)), nil
	}
	if err := cmd.Start(); err != nil {
		logger.Debug("process could not start", "java", java, "err", err)
		return h.fail(ls, fmt.Sprintf("could not start %s: %v", java, err)), nil
	}

	h.started = true
	h.pid = cmd.Process.Pid
	logger.Debug("process started", "pid", h.pid, "main", c.MainClass)
	ls.Started(summary)

	var g errgroup.Group
	g.Go(func() error { return drain(stdout, Stdout, ls) })
	g.Go(func() error { return drain(stderr, Stderr, ls) })

	go func() {
		if err := g.Wait(); err != nil {
			logger.Debug("output stream error", "pid", h.pid, "err", err)
		}
		code := exitCode(cmd.Wait())
		logger.Debug("process ended", "pid", h.pid, "exit", code)
		h.exitCode = code
		ls.Ended(code)
		close(h.done)
	}()

	return h, nil
}

// drain reads r line by line until it is closed. Lines have no length
// limit; the line terminator ("\n" or "\r\n") is stripped.
func drain(r io.Reader, stream Stream, ls Listener) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			ls.Line(stream, strings.TrimSuffix(line, "\r"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// keep the pipe empty so the child never blocks on a full buffer
			_, _ = io.Copy(io.Discard, r)
			return fmt.Errorf("%s: %w", stream, err)
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// MergeEnv overlays overrides on base (KEY=VALUE entries). Override keys
// win; their order is sorted so the result is stable.
func MergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[name]; ok {
			continue
		}
		env = append(env, kv)
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		env = append(env, name+"="+overrides[name])
	}
	return env
}

// serialListener makes sure the listener sees one event at a time even
// though both streams are drained concurrently.
type serialListener struct {
	mu sync.Mutex
	l  Listener
}

func (s *serialListener) Started(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Started(summary)
}

func (s *serialListener) Line(stream Stream, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Line(stream, text)
}

func (s *serialListener) CouldNotStart(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.CouldNotStart(reason)
}

func (s *serialListener) Ended(exitCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Ended(exitCode)
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/expath/xproj/internal/javaproc"
)

// Tracked is a launched run the watcher can follow.
type Tracked interface {
	Handle() *javaproc.Handle
	Done() <-chan struct{}
}

// StartFunc launches a run with observer attached to its events.
type StartFunc func(observer javaproc.Listener) (Tracked, error)

// WatchConfig holds configuration for following a run
type WatchConfig struct {
	Title   string
	Plain   bool // If true, stream output instead of the full-screen view
	Out     io.Writer
	Err     io.Writer
	Console *Console
}

// Interactive reports whether f is a terminal a view can draw on.
func Interactive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Watch starts a run and follows it until its outcome has been reported.
// Leaving the view early does not stop the process.
func Watch(ctx context.Context, cfg WatchConfig, start StartFunc) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}

	if cfg.Plain {
		tr, err := start(NewEcho(cfg.Out, cfg.Err))
		if err != nil {
			return err
		}
		return waitDone(ctx, tr)
	}

	// Phase messages would tear the view, so they wait for it to exit.
	if cfg.Console != nil {
		cfg.Console.Hold()
		defer cfg.Console.Flush()
	}

	view := NewRunView(cfg.Title)
	defer view.Stop()

	tr, err := start(view.Listener())
	if err != nil {
		return err
	}
	view.Track(tr.Handle())

	program := tea.NewProgram(view,
		tea.WithOutput(cfg.Out),
		tea.WithContext(ctx),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run view: %w", err)
	}
	view.Stop()

	select {
	case <-tr.Done():
		return nil
	default:
	}
	fmt.Fprintln(cfg.Err, lipgloss.NewStyle().Foreground(subtleColor).
		Render("view closed; waiting for "+cfg.Title+" to finish"))
	return waitDone(ctx, tr)
}

func waitDone(ctx context.Context, tr Tracked) error {
	select {
	case <-tr.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Echo is a listener streaming process output as it arrives: stdout lines
// to Out, stderr lines and the command summary to Err.
type Echo struct {
	Out io.Writer
	Err io.Writer
	mu  sync.Mutex
}

func NewEcho(out, errOut io.Writer) *Echo {
	return &Echo{Out: out, Err: errOut}
}

func (e *Echo) Started(summary string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	style := lipgloss.NewStyle().Foreground(subtleColor)
	fmt.Fprintln(e.Err, style.Render("$ "+summary))
}

func (e *Echo) Line(stream javaproc.Stream, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if stream == javaproc.Stderr {
		fmt.Fprintln(e.Err, text)
		return
	}
	fmt.Fprintln(e.Out, text)
}

// CouldNotStart and Ended are reported by the phase messages.
func (e *Echo) CouldNotStart(string) {}
func (e *Echo) Ended(int)            {}

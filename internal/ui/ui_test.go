package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/expath/xproj/internal/javaproc"
)

func TestConsoleHoldFlush(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut)

	c.Hold()
	c.Info("Build successful")
	c.Error("Test failure: 1\n(please see the log)")
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Fatalf("expected nothing printed while held, got %q / %q", out.String(), errOut.String())
	}

	c.Flush()
	if !strings.Contains(out.String(), "Build successful") {
		t.Errorf("expected info on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Test failure: 1\n  (please see the log)") {
		t.Errorf("expected indented error on stderr, got %q", errOut.String())
	}

	out.Reset()
	c.Success("done")
	if !strings.Contains(out.String(), "done") {
		t.Errorf("expected direct print after flush, got %q", out.String())
	}
}

func TestLogBuffer(t *testing.T) {
	lb := NewLogBuffer(5)

	for i := 0; i < 3; i++ {
		lb.Append(LogLine{Text: "line"})
	}
	if lb.Len() != 3 {
		t.Errorf("expected length 3, got %d", lb.Len())
	}

	for i := 0; i < 5; i++ {
		lb.Append(LogLine{Stream: javaproc.Stderr, Text: "overflow"})
	}
	if lb.Len() != 5 {
		t.Errorf("expected max length 5, got %d", lb.Len())
	}
	if lb.Dropped() != 3 {
		t.Errorf("expected 3 dropped, got %d", lb.Dropped())
	}

	all := lb.GetAll()
	if len(all) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(all))
	}
	for _, l := range all {
		if l.Stream != javaproc.Stderr || l.Text != "overflow" {
			t.Errorf("expected only the newest lines, got %+v", l)
		}
	}

	// GetAll is a copy
	all[0].Text = "changed"
	if lb.GetAll()[0].Text != "overflow" {
		t.Error("GetAll exposed the buffer")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
	}

	for _, tt := range tests {
		got := FormatBytes(tt.bytes)
		if got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatUsage(t *testing.T) {
	got := FormatUsage(42, javaproc.Usage{RSS: 2 * 1024 * 1024, CPUPercent: 12.5, Threads: 9})
	want := "pid 42 · 2.0 MB rss · 12.5% cpu · 9 threads"
	if got != want {
		t.Errorf("FormatUsage = %q, want %q", got, want)
	}
}

func TestRunViewLifecycle(t *testing.T) {
	v := NewRunView("Build hello")
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	v.Update(startedMsg{summary: "java -cp lib/a.jar com.xmlcalabash.drivers.Main"})
	if v.Status() != StatusRunning {
		t.Fatalf("expected running, got %s", v.Status())
	}

	v.Update(lineMsg{Stream: javaproc.Stdout, Text: "compiling"})
	v.Update(lineMsg{Stream: javaproc.Stderr, Text: "warning: deprecated"})

	view := v.View()
	for _, want := range []string{"Build hello", "com.xmlcalabash.drivers.Main", "compiling", "warning: deprecated"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := v.Update(endedMsg{exitCode: 3})
	if v.Status() != StatusError {
		t.Errorf("expected error status, got %s", v.Status())
	}
	if cmd == nil {
		t.Fatal("expected quit command on end")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.Contains(v.View(), "exit 3") {
		t.Errorf("expected exit code in view:\n%s", v.View())
	}
}

func TestRunViewCouldNotStart(t *testing.T) {
	v := NewRunView("Doc hello")
	_, cmd := v.Update(couldNotStartMsg{reason: "could not start java: not found"})

	if v.Status() != StatusError {
		t.Errorf("expected error status, got %s", v.Status())
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !strings.Contains(v.View(), "not found") {
		t.Errorf("expected reason in view:\n%s", v.View())
	}
}

func TestRunViewListenerAfterStop(t *testing.T) {
	v := NewRunView("Test hello")
	v.Stop()

	done := make(chan struct{})
	go func() {
		l := v.Listener()
		for i := 0; i < 1000; i++ {
			l.Line(javaproc.Stdout, "spam")
		}
		l.Ended(0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener blocked after the view stopped")
	}
}

// tracked is a finished run for Watch.
type tracked struct{ done chan struct{} }

func (tracked) Handle() *javaproc.Handle { return nil }
func (t tracked) Done() <-chan struct{}  { return t.done }

func TestWatchPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := WatchConfig{Title: "Build hello", Plain: true, Out: &out, Err: &errOut}

	err := Watch(context.Background(), cfg, func(l javaproc.Listener) (Tracked, error) {
		tr := tracked{done: make(chan struct{})}
		l.Started("java Main")
		l.Line(javaproc.Stdout, "out line")
		l.Line(javaproc.Stderr, "err line")
		l.Ended(0)
		close(tr.done)
		return tr, nil
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if out.String() != "out line\n" {
		t.Errorf("unexpected stdout %q", out.String())
	}
	if !strings.Contains(errOut.String(), "java Main") || !strings.Contains(errOut.String(), "err line") {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
}

func TestWatchPlainContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := WatchConfig{Plain: true, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	err := Watch(ctx, cfg, func(javaproc.Listener) (Tracked, error) {
		return tracked{done: make(chan struct{})}, nil
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSelectPromptSkipsDisabled(t *testing.T) {
	p := NewSelectPrompt("Phase", "", []SelectOption{
		{Label: "build", Value: "build"},
		{Label: "deploy", Value: "deploy", Disabled: true},
		{Label: "test", Value: "test"},
	})

	m, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	got, ok := m.(SelectPrompt).Result()
	if !ok || got.Value != "test" {
		t.Errorf("expected test to be selected, got %+v (confirmed=%v)", got, ok)
	}
}

func TestTextInputPromptValidates(t *testing.T) {
	errRequired := errors.New("plugin dir is required")
	p := NewTextInputPrompt("Plugin dir", "", "", "", func(s string) error {
		if s == "" {
			return errRequired
		}
		return nil
	})

	m, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected prompt to stay open on invalid input")
	}
	if _, ok := m.(TextInputPrompt).Result(); ok {
		t.Error("expected unconfirmed result")
	}
	if !strings.Contains(m.View(), errRequired.Error()) {
		t.Errorf("expected validation error in view:\n%s", m.View())
	}
}

func TestConfirmPrompt(t *testing.T) {
	tests := []struct {
		name       string
		key        tea.KeyMsg
		defaultYes bool
		want       bool
		answered   bool
	}{
		{"y answers yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, false, true, true},
		{"N answers no", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("N")}, true, false, true},
		{"enter takes the default", tea.KeyMsg{Type: tea.KeyEnter}, false, false, true},
		{"esc dismisses", tea.KeyMsg{Type: tea.KeyEsc}, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewConfirmPrompt("Overwrite config.yaml?", "", tt.defaultYes)
			m, cmd := p.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected the prompt to quit")
			}
			got, answered := m.(ConfirmPrompt).Result()
			if got != tt.want || answered != tt.answered {
				t.Errorf("Result() = %v, %v; want %v, %v", got, answered, tt.want, tt.answered)
			}
		})
	}

	p := NewConfirmPrompt("Overwrite config.yaml?", "", false)
	if _, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("expected other keys to be ignored")
	}
	if !strings.Contains(p.View(), "(y/N)") {
		t.Errorf("expected the default in the hint:\n%s", p.View())
	}
}

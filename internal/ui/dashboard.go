package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/expath/xproj/internal/javaproc"
)

// Status represents the current status of a phase run
type Status string

const (
	StatusPending Status = "Pending"
	StatusRunning Status = "Running"
	StatusSuccess Status = "Success"
	StatusError   Status = "Error"
)

// maxLogLines bounds the scrollback kept by the view. The full log is
// still recorded by the orchestrator.
const maxLogLines = 2000

// keyMap defines the key bindings for the run view
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Follow key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "pgup"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "pgdown"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "detach"),
		),
	}
}

// Styles holds all lipgloss styles for the run view
type Styles struct {
	Header   lipgloss.Style
	Summary  lipgloss.Style
	Monitor  lipgloss.Style
	Footer   lipgloss.Style
	Viewport lipgloss.Style

	StatusPending lipgloss.Style
	StatusRunning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style

	LogLine  lipgloss.Style
	LogError lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// DefaultStyles returns the default color scheme
func DefaultStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtleColor).
			Padding(0, 1),

		Summary: lipgloss.NewStyle().
			Foreground(subtleColor).
			Padding(0, 1),

		Monitor: lipgloss.NewStyle().
			Foreground(infoColor).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(subtleColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(subtleColor).
			Padding(0, 1),

		Viewport: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlightColor).
			Padding(0, 1),

		StatusPending: lipgloss.NewStyle().Foreground(subtleColor),
		StatusRunning: lipgloss.NewStyle().Foreground(infoColor).Bold(true),
		StatusSuccess: lipgloss.NewStyle().Foreground(successColor).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),

		LogLine:  lipgloss.NewStyle(),
		LogError: lipgloss.NewStyle().Foreground(errorColor),
		HelpKey:  lipgloss.NewStyle().Foreground(highlightColor).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(subtleColor),
	}
}

// Messages for bubbletea
type tickMsg time.Time
type startedMsg struct{ summary string }
type lineMsg LogLine
type couldNotStartMsg struct{ reason string }
type endedMsg struct{ exitCode int }
type usageMsg struct {
	usage javaproc.Usage
	err   error
	host  HostStats
}

// RunView is the bubbletea model following one phase run. It quits on its
// own once the process has ended.
type RunView struct {
	title    string
	summary  string
	status   Status
	exitCode int
	reason   string
	started  time.Time
	elapsed  time.Duration

	logs   *LogBuffer
	follow bool

	pid     int
	usageFn func() (javaproc.Usage, error)
	usage   *javaproc.Usage
	host    HostStats

	width    int
	height   int
	spinner  spinner.Model
	viewport viewport.Model

	updates  chan tea.Msg
	stopped  chan struct{}
	stopOnce sync.Once

	keys   keyMap
	styles *Styles
}

// NewRunView creates a run view titled e.g. "Build hello".
func NewRunView(title string) *RunView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(highlightColor)

	vp := viewport.New(80, 15)
	vp.MouseWheelEnabled = true

	return &RunView{
		title:    title,
		status:   StatusPending,
		logs:     NewLogBuffer(maxLogLines),
		follow:   true,
		spinner:  sp,
		viewport: vp,
		updates:  make(chan tea.Msg, 256),
		stopped:  make(chan struct{}),
		keys:     defaultKeyMap(),
		styles:   DefaultStyles(),
	}
}

// Track attaches the handle whose resources are sampled while running.
// Call it before the program starts.
func (m *RunView) Track(h *javaproc.Handle) {
	if h == nil {
		return
	}
	m.pid = h.Pid()
	m.usageFn = h.Usage
}

// Listener returns the process listener feeding this view.
func (m *RunView) Listener() javaproc.Listener {
	return javaproc.ListenerFuncs{
		OnStarted:       func(summary string) { m.send(startedMsg{summary: summary}) },
		OnLine:          func(s javaproc.Stream, text string) { m.send(lineMsg{Stream: s, Text: text}) },
		OnCouldNotStart: func(reason string) { m.send(couldNotStartMsg{reason: reason}) },
		OnEnded:         func(code int) { m.send(endedMsg{exitCode: code}) },
	}
}

// send blocks until the view takes msg or has stopped.
func (m *RunView) send(msg tea.Msg) {
	select {
	case m.updates <- msg:
	case <-m.stopped:
	}
}

// Stop releases pending and future senders. The program must not be
// running anymore.
func (m *RunView) Stop() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

// Init implements tea.Model
func (m *RunView) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
		m.listenForUpdates(),
	)
}

// tickCmd returns a command that ticks every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenForUpdates waits for the next process event
func (m *RunView) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return msg
		case <-m.stopped:
			return nil
		}
	}
}

// sampleUsage reads process and host resources off the update loop
func (m *RunView) sampleUsage() tea.Cmd {
	fn := m.usageFn
	if fn == nil || m.status != StatusRunning {
		return nil
	}
	return func() tea.Msg {
		u, err := fn()
		return usageMsg{usage: u, err: err, host: GetHostStats()}
	}
}

// Update implements tea.Model
func (m *RunView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
		case key.Matches(msg, m.keys.Top):
			m.follow = false
			m.viewport.GotoTop()
		case key.Matches(msg, m.keys.Bottom):
			m.follow = true
			m.viewport.GotoBottom()
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			m.follow = m.viewport.AtBottom()
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		// header, summary, monitor, footer and borders
		m.viewport.Height = max(msg.Height-10, 5)
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		if m.status == StatusRunning {
			m.elapsed = time.Since(m.started)
		}
		cmds = append(cmds, tickCmd(), m.sampleUsage())

	case usageMsg:
		if msg.err == nil {
			u := msg.usage
			m.usage = &u
		}
		m.host = msg.host

	case startedMsg:
		m.summary = msg.summary
		m.status = StatusRunning
		m.started = time.Now()
		cmds = append(cmds, m.listenForUpdates(), m.sampleUsage())

	case lineMsg:
		m.logs.Append(LogLine(msg))
		m.refreshViewport()
		cmds = append(cmds, m.listenForUpdates())

	case couldNotStartMsg:
		m.status = StatusError
		m.exitCode = -1
		m.reason = msg.reason
		return m, tea.Quit

	case endedMsg:
		m.exitCode = msg.exitCode
		if !m.started.IsZero() {
			m.elapsed = time.Since(m.started)
		}
		if msg.exitCode == 0 {
			m.status = StatusSuccess
		} else {
			m.status = StatusError
		}
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

func (m *RunView) refreshViewport() {
	lines := m.logs.GetAll()
	rendered := make([]string, len(lines))
	for i, l := range lines {
		if l.Stream == javaproc.Stderr {
			rendered[i] = m.styles.LogError.Render(l.Text)
		} else {
			rendered[i] = m.styles.LogLine.Render(l.Text)
		}
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model
func (m *RunView) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.summary != "" {
		b.WriteString(m.styles.Summary.Render(truncate(m.summary, m.contentWidth())))
		b.WriteString("\n")
	}
	if line := m.renderMonitor(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.reason != "" {
		b.WriteString(m.styles.StatusError.Render("  " + m.reason))
		b.WriteString("\n")
	}
	if m.logs.Len() > 0 {
		b.WriteString(m.styles.Viewport.Render(m.viewport.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *RunView) contentWidth() int {
	if m.width <= 0 {
		return 100
	}
	return max(m.width-4, 20)
}

func (m *RunView) renderHeader() string {
	icon := m.spinner.View()
	switch m.status {
	case StatusSuccess:
		icon = m.styles.StatusSuccess.Render("✔")
	case StatusError:
		icon = m.styles.StatusError.Render("✖")
	case StatusPending:
		icon = m.styles.StatusPending.Render("…")
	}

	status := m.renderStatus()
	if m.elapsed > 0 {
		status += m.styles.HelpDesc.Render(" " + FormatElapsed(m.elapsed))
	}
	return m.styles.Header.Render(icon + " " + m.title + "  " + status)
}

func (m *RunView) renderStatus() string {
	switch m.status {
	case StatusRunning:
		return m.styles.StatusRunning.Render(string(m.status))
	case StatusSuccess:
		return m.styles.StatusSuccess.Render(string(m.status))
	case StatusError:
		label := string(m.status)
		if m.exitCode > 0 {
			label = fmt.Sprintf("%s (exit %d)", label, m.exitCode)
		}
		return m.styles.StatusError.Render(label)
	default:
		return m.styles.StatusPending.Render(string(m.status))
	}
}

func (m *RunView) renderMonitor() string {
	var parts []string
	if m.usage != nil && m.status == StatusRunning {
		parts = append(parts, FormatUsage(m.pid, *m.usage))
	}
	if m.host.MemoryTotal > 0 {
		parts = append(parts, FormatHost(m.host))
	}
	if len(parts) == 0 {
		return ""
	}
	return m.styles.Monitor.Render(strings.Join(parts, "   "))
}

func (m *RunView) renderFooter() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Follow, m.keys.Quit}
	var items []string
	for _, kb := range bindings {
		h := kb.Help()
		items = append(items, m.styles.HelpKey.Render(h.Key)+" "+m.styles.HelpDesc.Render(h.Desc))
	}
	help := strings.Join(items, "  ")
	if d := m.logs.Dropped(); d > 0 {
		help += m.styles.HelpDesc.Render(fmt.Sprintf("  (%d earlier lines not shown)", d))
	}
	return m.styles.Footer.Render(help)
}

// Status returns the status the view ended with.
func (m *RunView) Status() Status {
	return m.status
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width || width < 2 {
		return s
	}
	return string(r[:width-1]) + "…"
}

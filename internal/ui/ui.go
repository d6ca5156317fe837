package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	highlightColor = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}
	subtleColor    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	successColor   = lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"}
	warningColor   = lipgloss.AdaptiveColor{Light: "#CC6600", Dark: "#FFAA00"}
	errorColor     = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF0000"}
	infoColor      = lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"}
)

type consoleLine struct {
	err  bool
	text string
}

// Console prints styled user messages. It satisfies the orchestrator's
// message sink, so phase outcomes land here.
type Console struct {
	Out io.Writer
	Err io.Writer

	mu   sync.Mutex
	held bool
	// queued lines while held
	queue []consoleLine
}

func NewConsole(out, errOut io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Console{Out: out, Err: errOut}
}

// Hold queues messages until Flush. Used while a full-screen view owns the
// terminal.
func (c *Console) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = true
}

// Flush prints queued messages and stops holding.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
	for _, l := range c.queue {
		c.write(l)
	}
	c.queue = nil
}

func (c *Console) println(toErr bool, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := consoleLine{err: toErr, text: text}
	if c.held {
		c.queue = append(c.queue, l)
		return
	}
	c.write(l)
}

func (c *Console) write(l consoleLine) {
	w := c.Out
	if l.err {
		w = c.Err
	}
	fmt.Fprintln(w, l.text)
}

// Info prints an info message.
func (c *Console) Info(msg string) {
	style := lipgloss.NewStyle().Foreground(infoColor)
	c.println(false, style.Render("ℹ")+" "+msg)
}

// Success prints a success message with checkmark.
func (c *Console) Success(msg string) {
	style := lipgloss.NewStyle().Foreground(successColor)
	c.println(false, style.Render("✔")+" "+msg)
}

// Warn prints a warning message.
func (c *Console) Warn(msg string) {
	style := lipgloss.NewStyle().Foreground(warningColor)
	c.println(true, style.Render("⚠")+" "+msg)
}

// Error prints an error message. Multi-line messages are indented under
// the marker.
func (c *Console) Error(msg string) {
	style := lipgloss.NewStyle().Foreground(errorColor)
	msg = strings.ReplaceAll(msg, "\n", "\n  ")
	c.println(true, style.Render("✖")+" "+msg)
}

// Header prints a styled header.
func (c *Console) Header(text string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(highlightColor).
		MarginBottom(1)
	c.println(false, style.Render("  "+text))
}

// Highlight prints a label and its value.
func (c *Console) Highlight(label, value string) {
	labelStyle := lipgloss.NewStyle().Foreground(subtleColor)
	valueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})
	c.println(false, "  "+labelStyle.Render(label+":")+" "+valueStyle.Render(value))
}

// Divider prints a horizontal rule.
func (c *Console) Divider() {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"})
	c.println(false, style.Render("  "+strings.Repeat("─", 50)))
}

// Box prints content in a rounded box.
func (c *Console) Box(title, content string) {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(highlightColor).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(highlightColor)

	if title != "" {
		c.println(false, titleStyle.Render("  "+title))
	}
	c.println(false, boxStyle.Render(content))
}

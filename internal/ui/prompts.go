package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ============================================================================
// Interactive prompts used by init and run
// ============================================================================

var (
	promptTitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(highlightColor)
	promptSelectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	promptUnselectedStyle = lipgloss.NewStyle().Foreground(subtleColor)
	promptCursorStyle     = lipgloss.NewStyle().Bold(true).Foreground(highlightColor)
	promptDimStyle        = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	promptErrorStyle      = lipgloss.NewStyle().Foreground(errorColor)
)

// ConfirmPrompt asks a single y/N question on one line. y and n answer
// at once; enter takes the default.
type ConfirmPrompt struct {
	question string
	detail   string
	answer   bool
	done     bool
}

func NewConfirmPrompt(question, detail string, defaultYes bool) *ConfirmPrompt {
	return &ConfirmPrompt{question: question, detail: detail, answer: defaultYes}
}

func (m ConfirmPrompt) Init() tea.Cmd {
	return nil
}

func (m ConfirmPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(k.String()) {
	case "y":
		m.answer, m.done = true, true
	case "n":
		m.answer, m.done = false, true
	case "enter":
		m.done = true
	case "ctrl+c", "esc", "q":
		// leave unanswered
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m ConfirmPrompt) View() string {
	hint := "y/N"
	if m.answer {
		hint = "Y/n"
	}
	line := promptTitleStyle.Render("? "+m.question) + " " + promptDimStyle.Render("("+hint+")")
	if m.done {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		line += " " + promptSelectedStyle.Render(answer)
	}
	if m.detail != "" {
		line = promptDimStyle.Render("  "+m.detail) + "\n" + line
	}
	return line + "\n"
}

// Result is the answer, and false when the prompt was dismissed.
func (m ConfirmPrompt) Result() (bool, bool) {
	return m.answer, m.done
}

// RunConfirmPrompt asks question and reports a dismissed prompt as no.
func RunConfirmPrompt(question, detail string, defaultYes bool, opts ...tea.ProgramOption) (bool, error) {
	model, err := tea.NewProgram(*NewConfirmPrompt(question, detail, defaultYes), opts...).Run()
	if err != nil {
		return false, err
	}
	answer, ok := model.(ConfirmPrompt).Result()
	return answer && ok, nil
}

// ============================================================================
// List Selection Prompt (Arrow-key navigation)
// ============================================================================

// SelectOption represents an option in the select prompt. Disabled
// options are shown but cannot be selected.
type SelectOption struct {
	Label       string
	Value       string
	Description string
	Disabled    bool
}

// SelectPrompt creates an interactive list selection prompt
type SelectPrompt struct {
	title       string
	description string
	options     []SelectOption
	cursor      int
	confirmed   bool
	cancelled   bool
}

// NewSelectPrompt creates a new selection prompt
func NewSelectPrompt(title, description string, options []SelectOption) *SelectPrompt {
	m := &SelectPrompt{
		title:       title,
		description: description,
		options:     options,
		cursor:      -1,
	}
	m.cursor = m.next(-1, 1)
	return m
}

// next returns the first enabled option after from in direction dir, or
// from when there is none.
func (m SelectPrompt) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.options); i += dir {
		if !m.options[i].Disabled {
			return i
		}
	}
	return from
}

func (m SelectPrompt) Init() tea.Cmd {
	return nil
}

func (m SelectPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.cursor = m.next(m.cursor, -1)
		case "down", "j":
			m.cursor = m.next(m.cursor, 1)
		case "enter":
			if m.cursor < 0 {
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SelectPrompt) View() string {
	var b strings.Builder

	// Title
	b.WriteString(promptTitleStyle.Render("? "+m.title) + "\n")

	// Description
	if m.description != "" {
		b.WriteString(promptDimStyle.Render("  "+m.description) + "\n")
	}

	b.WriteString("\n")

	// Options
	for i, opt := range m.options {
		cursor := "  "
		style := promptUnselectedStyle

		switch {
		case opt.Disabled:
			style = promptDimStyle
		case i == m.cursor:
			cursor = promptCursorStyle.Render("❯ ")
			style = promptSelectedStyle
		}

		b.WriteString(cursor + style.Render(opt.Label))

		if opt.Description != "" && (i == m.cursor || opt.Disabled) {
			b.WriteString(promptDimStyle.Render(" - " + opt.Description))
		}
		b.WriteString("\n")
	}

	// Help text
	b.WriteString("\n")
	b.WriteString(promptDimStyle.Render("  ↑ ↓ to navigate • enter to select • esc to cancel"))

	return b.String()
}

// Result returns the selected option and whether it was confirmed
func (m SelectPrompt) Result() (SelectOption, bool) {
	if m.cursor < 0 || m.cursor >= len(m.options) {
		return SelectOption{}, false
	}
	return m.options[m.cursor], m.confirmed && !m.cancelled
}

// RunSelectPrompt runs the selection prompt and returns the result
func RunSelectPrompt(title, description string, options []SelectOption, opts ...tea.ProgramOption) (SelectOption, error) {
	prompt := NewSelectPrompt(title, description, options)
	p := tea.NewProgram(*prompt, opts...)

	model, err := p.Run()
	if err != nil {
		return SelectOption{}, err
	}

	result := model.(SelectPrompt)
	selected, confirmed := result.Result()

	if !confirmed {
		return SelectOption{}, nil
	}

	return selected, nil
}

// ============================================================================
// Text Input Prompt
// ============================================================================

// TextInputPrompt asks for a single line of text. An optional validate
// func keeps the prompt open until the value passes.
type TextInputPrompt struct {
	title       string
	description string
	defaultVal  string
	validate    func(string) error
	err         error
	input       textinput.Model
	confirmed   bool
	cancelled   bool
}

// NewTextInputPrompt creates a new text input prompt
func NewTextInputPrompt(title, description, placeholder, defaultVal string, validate func(string) error) *TextInputPrompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60

	return &TextInputPrompt{
		title:       title,
		description: description,
		defaultVal:  defaultVal,
		validate:    validate,
		input:       ti,
	}
}

func (m TextInputPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (m TextInputPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			value, _ := m.Result()
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.confirmed = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TextInputPrompt) View() string {
	var b strings.Builder

	b.WriteString(promptTitleStyle.Render("? "+m.title) + "\n")
	if m.description != "" {
		b.WriteString(promptDimStyle.Render("  "+m.description) + "\n")
	}
	b.WriteString("\n")
	b.WriteString("  " + m.input.View() + "\n")

	if m.defaultVal != "" && m.input.Value() == "" {
		b.WriteString(promptDimStyle.Render(fmt.Sprintf("  Press enter to use: %s", m.defaultVal)) + "\n")
	}
	if m.err != nil {
		b.WriteString(promptErrorStyle.Render("  "+m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(promptDimStyle.Render("  enter to confirm • esc to cancel"))

	return b.String()
}

// Result returns the entered value and whether it was confirmed
func (m TextInputPrompt) Result() (string, bool) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		value = m.defaultVal
	}
	return value, m.confirmed && !m.cancelled
}

// RunTextInputPrompt runs the prompt. A cancelled prompt returns "".
func RunTextInputPrompt(title, description, placeholder, defaultVal string, validate func(string) error, opts ...tea.ProgramOption) (string, error) {
	prompt := NewTextInputPrompt(title, description, placeholder, defaultVal, validate)
	model, err := tea.NewProgram(*prompt, opts...).Run()
	if err != nil {
		return "", err
	}

	value, confirmed := model.(TextInputPrompt).Result()
	if !confirmed {
		return "", nil
	}
	return value, nil
}

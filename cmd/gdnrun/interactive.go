package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/gdnative/headless"
)

var (
	accent = lipgloss.Color("#478CBF")

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent)

	funcStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(accent)

	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// entry is one callable method in the list.
type entry struct {
	class  string
	method headless.MethodInfo
}

type modelState int

const (
	stateSelect modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	sess     *session
	err      error
	result   string
	entries  []entry
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(s *session) *interactiveModel {
	m := &interactiveModel{sess: s, state: stateSelect}
	for _, c := range s.classes() {
		for _, meth := range c.Methods {
			m.entries = append(m.entries, entry{class: c.Name, method: meth})
		}
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd { return nil }

type keyMap struct {
	quit, up, down, enter, next, back key.Binding
}

var keys = keyMap{
	quit:  key.NewBinding(key.WithKeys("q")),
	up:    key.NewBinding(key.WithKeys("up", "k")),
	down:  key.NewBinding(key.WithKeys("down", "j")),
	enter: key.NewBinding(key.WithKeys("enter")),
	next:  key.NewBinding(key.WithKeys("tab")),
	back:  key.NewBinding(key.WithKeys("esc")),
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	case callResultMsg:
		m.result, m.err = msg.result, msg.err
		m.state = stateShowResult
		return m, nil
	}
	if m.state != stateInputArgs {
		return m, nil
	}
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// handleKey reacts to navigation keys. Keys it does not handle go to the
// focused input.
func (m *interactiveModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case msg.String() == "ctrl+c":
		return tea.Quit, true
	case key.Matches(msg, keys.quit) && m.state != stateInputArgs:
		return tea.Quit, true
	case key.Matches(msg, keys.back):
		m.reset()
		return nil, true
	}

	switch m.state {
	case stateSelect:
		switch {
		case key.Matches(msg, keys.up) && m.selected > 0:
			m.selected--
		case key.Matches(msg, keys.down) && m.selected < len(m.entries)-1:
			m.selected++
		case key.Matches(msg, keys.enter) && len(m.entries) > 0:
			m.prepareInputs()
			if len(m.inputs) == 0 {
				return m.callMethod, true
			}
			m.state = stateInputArgs
		}
		return nil, true
	case stateInputArgs:
		switch {
		case key.Matches(msg, keys.enter):
			return m.callMethod, true
		case key.Matches(msg, keys.next) && len(m.inputs) > 1:
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			return m.inputs[m.focusIdx].Focus(), true
		}
		return nil, false
	default:
		if key.Matches(msg, keys.enter) {
			m.reset()
		}
		return nil, true
	}
}

func (m *interactiveModel) reset() {
	m.state = stateSelect
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	args := m.entries[m.selected].method.Args
	m.inputs = make([]textinput.Model, len(args))
	for i, a := range args {
		ti := textinput.New()
		ti.Placeholder = typeName(a.Type)
		ti.Prompt = a.Name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callMethod() tea.Msg {
	e := m.entries[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}
	out, err := m.sess.call(e.class, e.method.Name, args)
	return callResultMsg{result: out, err: err}
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("gdnrun"))
	b.WriteString(" demo library\n\n")

	switch m.state {
	case stateSelect:
		if len(m.entries) == 0 {
			b.WriteString("No script methods registered.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			return b.String()
		}
		b.WriteString("Select a method to call:\n\n")
		for i, e := range m.entries {
			line := e.class + "." + formatMethod(e.method)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		e := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(e.class+"."+e.method.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(typeName(e.method.Args[i].Type)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		e := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(e.class+"."+e.method.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}
	return b.String()
}

func runInteractive(s *session) error {
	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

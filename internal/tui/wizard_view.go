// Package tui renders wizard flows in the terminal: one page per step, inline
// validation errors, a spinner while an async gate or submission runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vowhq/vowctl/internal/wizard"
)

// stepResultMsg reports the outcome of an async Next call.
type stepResultMsg struct {
	advanced bool
	err      error
}

// submitResultMsg reports the outcome of the final submission.
type submitResultMsg struct {
	completed bool
	err       error
}

// fieldInput pairs a wizard field with its bubbles widget. Multiline fields
// use a textarea, everything else a textinput.
type fieldInput struct {
	field wizard.Field
	text  textinput.Model
	area  textarea.Model
}

func newFieldInput(field wizard.Field, value string) fieldInput {
	in := fieldInput{field: field}
	if field.Multiline {
		ta := textarea.New()
		ta.Placeholder = field.Placeholder
		ta.SetValue(value)
		ta.SetHeight(4)
		in.area = ta
		return in
	}
	ti := textinput.New()
	ti.Placeholder = field.Placeholder
	ti.SetValue(value)
	ti.Width = 40
	if field.Secret {
		ti.EchoMode = textinput.EchoPassword
	}
	in.text = ti
	return in
}

func (f *fieldInput) Value() string {
	if f.field.Multiline {
		return f.area.Value()
	}
	return f.text.Value()
}

func (f *fieldInput) Focus() tea.Cmd {
	if f.field.Multiline {
		return f.area.Focus()
	}
	return f.text.Focus()
}

func (f *fieldInput) Blur() {
	if f.field.Multiline {
		f.area.Blur()
		return
	}
	f.text.Blur()
}

func (f *fieldInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.field.Multiline {
		f.area, cmd = f.area.Update(msg)
		return cmd
	}
	f.text, cmd = f.text.Update(msg)
	return cmd
}

func (f *fieldInput) View() string {
	if f.field.Multiline {
		return f.area.View()
	}
	return f.text.View()
}

// WizardModel drives one wizard.Machine through the terminal.
type WizardModel struct {
	machine *wizard.Machine
	title   string

	inputs []fieldInput
	focus  int

	spin   spinner.Model
	busy   bool
	width  int
	height int

	finished bool
	quitting bool
}

// NewWizardModel creates a wizard view positioned at the machine's current
// step.
func NewWizardModel(title string, machine *wizard.Machine) WizardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := WizardModel{
		machine: machine,
		title:   title,
		spin:    sp,
	}
	m.loadStep()
	return m
}

// IsFinished reports whether the flow reached the completed state.
func (m WizardModel) IsFinished() bool {
	return m.finished
}

// loadStep rebuilds the inputs for the machine's current step, prefilled with
// any values accumulated earlier.
func (m *WizardModel) loadStep() {
	step := m.machine.Step()
	values := m.machine.Values()

	m.inputs = make([]fieldInput, len(step.Fields))
	for i, field := range step.Fields {
		current, _ := values[field.Name].(string)
		m.inputs[i] = newFieldInput(field, current)
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// storeValues writes the current inputs into the machine before navigating.
func (m *WizardModel) storeValues() {
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.machine.Set(m.inputs[i].field.Name, m.inputs[i].Value())
	}
}

func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "esc":
			if m.busy {
				return m, nil
			}
			m.storeValues()
			if !m.machine.Previous() {
				// Already on the first step; leave the flow.
				m.quitting = true
				return m, tea.Quit
			}
			m.loadStep()
			return m, textinput.Blink

		case "tab", "down":
			if !m.busy {
				return m.moveFocus(1)
			}

		case "shift+tab", "up":
			if !m.busy {
				return m.moveFocus(-1)
			}

		case "enter":
			if m.busy {
				// Duplicate presses while a call is in flight are ignored.
				return m, nil
			}
			// Multiline fields keep enter for newlines until focus moves on.
			if len(m.inputs) > 0 && m.inputs[m.focus].field.Multiline {
				break
			}
			if m.focus < len(m.inputs)-1 {
				return m.moveFocus(1)
			}
			return m.advance()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stepResultMsg:
		m.busy = false
		if msg.advanced {
			m.loadStep()
			return m, textinput.Blink
		}
		// Still on the same step: give the inputs back to the user.
		if len(m.inputs) > 0 {
			return m, m.inputs[m.focus].Focus()
		}
		return m, nil

	case submitResultMsg:
		m.busy = false
		if msg.completed {
			m.finished = true
			return m, tea.Sequence(
				tea.Tick(time.Second*1, func(time.Time) tea.Msg {
					return tea.Quit()
				}),
			)
		}
		if len(m.inputs) > 0 {
			return m, m.inputs[m.focus].Focus()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.busy || len(m.inputs) == 0 {
		return m, nil
	}
	cmd := m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m WizardModel) moveFocus(delta int) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m, m.inputs[m.focus].Focus()
}

// advance stores the step's values and runs Next or Submit off the UI
// thread. The machine itself ignores overlapping calls; busy only gates the
// spinner and input handling.
func (m WizardModel) advance() (tea.Model, tea.Cmd) {
	m.storeValues()
	m.busy = true

	machine := m.machine
	if machine.Current() == machine.TotalSteps() {
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			completed, err := machine.Submit(context.Background())
			return submitResultMsg{completed: completed, err: err}
		})
	}
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		advanced, err := machine.Next(context.Background())
		return stepResultMsg{advanced: advanced, err: err}
	})
}

func (m WizardModel) View() string {
	if m.quitting && !m.finished {
		return ""
	}
	if m.finished {
		return docStyle.Render(completeMessageStyle("✓ All done! Your submission has been received.")) + "\n"
	}

	var sb strings.Builder

	step := m.machine.Step()
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString(stepCountStyle.Render(
		fmt.Sprintf("step %d of %d", m.machine.Current(), m.machine.TotalSteps())))
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render(step.Title))
	sb.WriteString("\n\n")

	for i := range m.inputs {
		sb.WriteString(m.inputs[i].field.Label)
		sb.WriteString("\n")
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
	}

	for _, fieldErr := range m.machine.Errors() {
		sb.WriteString(errorStyle("✗ " + fieldErr.Message))
		sb.WriteString("\n")
	}

	if m.busy {
		sb.WriteString("\n")
		sb.WriteString(m.spin.View())
		sb.WriteString(" checking...")
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter: continue • esc: back • tab: next field • ctrl+c: quit"))
	sb.WriteString("\n")

	return docStyle.Render(sb.String())
}

// RunWizard runs a wizard flow to completion in the terminal and reports
// whether it finished (as opposed to being quit part-way).
func RunWizard(title string, machine *wizard.Machine) (bool, error) {
	p := tea.NewProgram(NewWizardModel(title, machine), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run wizard: %w", err)
	}
	return finalModel.(WizardModel).IsFinished(), nil
}

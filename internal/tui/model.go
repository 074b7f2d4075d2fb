// Package tui is the interactive terminal surface of the game.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/truthslies/internal/app"
	"github.com/ppiankov/truthslies/internal/present"
)

// Controller is the subset of app.App the surface drives
type Controller interface {
	SourceID() string
	Generate(ctx context.Context, in app.Input) (app.Outcome, error)
	Reveal()
	Clear()
	Save(id string) error
	Board() *present.Board
}

const (
	fieldSource = iota
	fieldTruths
	fieldLies
	fieldCount
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("250"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var labels = [fieldCount]string{"Source", "Truths", "Lies"}

type generatedMsg struct {
	outcome app.Outcome
	err     error
}

type savedMsg struct {
	id  string
	err error
}

// Model is the bubbletea model
type Model struct {
	ctx      context.Context
	ctrl     Controller
	renderer *present.Renderer

	inputs [fieldCount]textinput.Model
	focus  int

	status  string
	failed  bool
	pending int
}

// New creates the model with the source field filled from ctrl
func New(ctx context.Context, ctrl Controller, color bool) Model {
	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		renderer: present.NewRenderer(color),
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 256
		m.inputs[i] = ti
	}
	m.inputs[fieldSource].Placeholder = "spreadsheet id or path to .csv/.xlsx"
	m.inputs[fieldSource].Width = 48
	m.inputs[fieldSource].SetValue(ctrl.SourceID())
	m.inputs[fieldTruths].Placeholder = "1"
	m.inputs[fieldTruths].Width = 6
	m.inputs[fieldLies].Placeholder = "0"
	m.inputs[fieldLies].Width = 6

	m.inputs[fieldSource].Focus()
	return m
}

// Init starts the cursor blink
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys and action results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount), nil

		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil

		case "enter", "ctrl+g":
			m.pending++
			m.status = "Generating..."
			m.failed = false
			return m, m.generate()

		case "ctrl+r":
			m.ctrl.Reveal()
			m.status = "Revealed"
			m.failed = false
			return m, nil

		case "ctrl+l":
			m.ctrl.Clear()
			m.status = "Cleared"
			m.failed = false
			return m, nil

		case "ctrl+s":
			return m, m.save()
		}

	case generatedMsg:
		m.pending--
		if m.pending < 0 {
			m.pending = 0
		}
		return m.applyOutcome(msg), nil

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			m.failed = true
		} else {
			m.status = fmt.Sprintf("Saved source %q", msg.id)
			m.failed = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) setFocus(i int) Model {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

func (m Model) generate() tea.Cmd {
	in := app.Input{
		SourceID: strings.TrimSpace(m.inputs[fieldSource].Value()),
		Truths:   m.inputs[fieldTruths].Value(),
		Lies:     m.inputs[fieldLies].Value(),
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		out, err := ctrl.Generate(ctx, in)
		return generatedMsg{outcome: out, err: err}
	}
}

func (m Model) save() tea.Cmd {
	id := strings.TrimSpace(m.inputs[fieldSource].Value())
	ctrl := m.ctrl
	return func() tea.Msg {
		return savedMsg{id: id, err: ctrl.Save(id)}
	}
}

func (m Model) applyOutcome(msg generatedMsg) Model {
	switch {
	case errors.Is(msg.err, app.ErrStale):
		return m

	case msg.err != nil:
		m.failed = true
		if msg.outcome.ReopenConfig {
			m.inputs[fieldSource].SetValue(msg.outcome.SourceField)
			m = m.setFocus(fieldSource)
			m.status = "Could not read the source. Check the id and try again."
		} else {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}
		return m

	default:
		m.failed = false
		m.status = fmt.Sprintf("Generated %d statements", len(msg.outcome.Statements))
		return m
	}
}

// View renders the form, the board and the status line
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Truths & Lies"))
	b.WriteString("\n\n")

	for i := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if entries := m.ctrl.Board().Entries(); len(entries) > 0 {
		b.WriteString(m.renderer.Board(entries))
		b.WriteString("\n\n")
	}

	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter/ctrl+g generate • ctrl+r reveal • ctrl+l clear • ctrl+s save • tab next field • esc quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the program and blocks until the player quits
func Run(ctx context.Context, ctrl Controller, color bool, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, ctrl, color), opts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Package tui is the interactive menu shown when filebot starts without
// --schedule or --once.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"filebot/pkg/types"
)

// RunFunc performs one organization pass.
type RunFunc func(ctx context.Context, dryRun bool) (types.Summary, error)

// Choice is a menu entry.
type Choice int

const (
	ChoiceDryRun Choice = iota
	ChoiceLive
	ChoiceExit
)

// Item is a menu entry as shown by the list.
type Item struct {
	choice Choice
	title  string
	desc   string
}

func (i Item) Title() string       { return i.title }
func (i Item) Description() string { return i.desc }
func (i Item) FilterValue() string { return i.title }

// Choice returns the action the entry stands for.
func (i Item) Choice() Choice { return i.choice }

func menuItems() []list.Item {
	return []list.Item{
		Item{ChoiceDryRun, "Run organization (dry run)", "Show what would move without touching any file"},
		Item{ChoiceLive, "Run organization (actual move)", "Move matching files into their destinations"},
		Item{ChoiceExit, "Exit", "Quit filebot"},
	}
}

// passFinishedMsg carries the result of a pass started from the menu.
type passFinishedMsg struct {
	dryRun  bool
	summary types.Summary
	err     error
}

// Model is the bubbletea model for the menu.
type Model struct {
	list    list.Model
	spinner spinner.Model
	run     RunFunc
	target  string

	ctx    context.Context
	cancel context.CancelFunc

	running   bool
	statusMsg string
	lastErr   error
	last      *types.Summary
	quitting  bool
}

// New returns a menu that runs passes over target through run.
func New(ctx context.Context, target string, run RunFunc) *Model {
	ctx, cancel := context.WithCancel(ctx)

	delegate := list.NewDefaultDelegate()
	l := list.New(menuItems(), delegate, 60, 12)
	l.Title = "File Organizer"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusStyle

	return &Model{
		list:    l,
		spinner: s,
		run:     run,
		target:  target,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case passFinishedMsg:
		m.running = false
		m.lastErr = msg.err
		if msg.err != nil {
			m.last = nil
			m.statusMsg = fmt.Sprintf("Organization failed: %v", msg.err)
			return m, nil
		}
		summary := msg.summary
		m.last = &summary
		m.statusMsg = ""
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m.quit()
	}

	// Ignore menu input while a pass is running.
	if m.running {
		return m, nil
	}

	switch key := msg.String(); key {
	case "enter":
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		return m.choose(item.choice)
	case "1", "2", "3":
		idx := int(key[0] - '1')
		m.list.Select(idx)
		return m.choose(Choice(idx))
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			m.statusMsg = "Invalid choice"
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) choose(c Choice) (tea.Model, tea.Cmd) {
	switch c {
	case ChoiceDryRun, ChoiceLive:
		dryRun := c == ChoiceDryRun
		m.running = true
		m.lastErr = nil
		m.last = nil
		m.statusMsg = "Organizing " + m.target
		if dryRun {
			m.statusMsg += " (dry run)"
		}
		return m, tea.Batch(m.spinner.Tick, m.startPass(dryRun))
	case ChoiceExit:
		return m.quit()
	}
	m.statusMsg = "Invalid choice"
	return m, nil
}

func (m *Model) startPass(dryRun bool) tea.Cmd {
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		summary, err := run(ctx, dryRun)
		return passFinishedMsg{dryRun: dryRun, summary: summary, err: err}
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return StatusStyle.Render("Exiting.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString(m.spinner.View() + " " + StatusStyle.Render(m.statusMsg) + "\n")
	case m.lastErr != nil:
		b.WriteString(ErrorStyle.Render(m.statusMsg) + "\n")
	default:
		if m.last != nil {
			b.WriteString(RenderSummary(*m.last) + "\n")
		}
		if m.statusMsg != "" {
			b.WriteString(StatusStyle.Render(m.statusMsg) + "\n")
		}
	}
	b.WriteString(HelpStyle.Render("↑/↓ select • enter run • 1-3 shortcut • q quit"))

	return App.Render(b.String())
}

// Running reports whether a pass started from the menu is in progress.
func (m *Model) Running() bool {
	return m.running
}

// StatusMsg returns the status line below the menu.
func (m *Model) StatusMsg() string {
	return m.statusMsg
}

// LastSummary returns the summary of the most recent successful pass.
func (m *Model) LastSummary() (types.Summary, bool) {
	if m.last == nil {
		return types.Summary{}, false
	}
	return *m.last, true
}

// Quitting reports whether the user asked to leave the menu.
func (m *Model) Quitting() bool {
	return m.quitting
}

// Run shows the menu until the user exits.
func Run(ctx context.Context, target string, run RunFunc) error {
	m := New(ctx, target, run)
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

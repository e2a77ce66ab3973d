package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/parser"
	"github.com/aydinov/lifecoach/internal/tasktree"
	"github.com/aydinov/lifecoach/internal/timer"
)

// FocusModel is the TUI for working on one task: a countdown clock
// driving the timer engine, with task details alongside.
type FocusModel struct {
	width  int
	height int

	eng    *engine.Engine
	clock  *timer.Engine
	taskID int
	task   tasktree.Task

	// UI state
	closing    bool // True when user closed the view and we're shutting down
	celebrated bool // True once the completion message was shown

	commenting   bool // True while the comment input is open
	commentInput textinput.Model

	errMsg string
}

// clockTickMsg is sent every second to advance the countdown
type clockTickMsg struct{}

// NewFocusModel creates the focus TUI for a task already selected on
// the timer engine.
func NewFocusModel(eng *engine.Engine, clock *timer.Engine, taskID int) FocusModel {
	input := textinput.New()
	input.Placeholder = "add a comment..."
	input.CharLimit = 200

	task, _ := eng.Find(taskID)
	return FocusModel{
		eng:          eng,
		clock:        clock,
		taskID:       taskID,
		task:         task,
		commentInput: input,
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg{}
	})
}

// Init starts the one-second cadence
func (m FocusModel) Init() tea.Cmd {
	return clockTick()
}

// Update handles messages
func (m FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clockTickMsg:
		wasRunning := m.clock.State() == timer.Running
		_ = m.clock.Tick()

		// Pick up cross-tab and cascade updates each second
		if task, ok := m.eng.Find(m.taskID); ok {
			if bound, selected := m.clock.Task(); selected &&
				task.DurationMinutes != nil && bound.DurationMinutes != nil &&
				*task.DurationMinutes != *bound.DurationMinutes {
				// Budget edited elsewhere; rebase the countdown on it
				m.clock.DurationChanged(*task.DurationMinutes)
			}
			m.task = task
		}

		var cmds []tea.Cmd
		if wasRunning && m.clock.State() == timer.Idle && !m.celebrated {
			m.celebrated = true
			cmds = append(cmds, tea.Printf("\a"))
		}
		if !m.closing {
			cmds = append(cmds, clockTick())
		}
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.commenting {
			return m.updateCommentInput(msg)
		}
		switch msg.String() {
		case " ":
			m.errMsg = ""
			if m.clock.State() == timer.Running {
				if err := m.clock.Pause(); err != nil {
					m.errMsg = err.Error()
				}
			} else if m.clock.State() == timer.Paused {
				if err := m.clock.Start(); err != nil {
					m.errMsg = err.Error()
				}
			}
			return m, nil
		case "r", "R":
			m.errMsg = ""
			m.celebrated = false
			if err := m.clock.Reset(); err != nil {
				m.errMsg = err.Error()
			}
			return m, nil
		case "c", "C":
			m.commenting = true
			m.commentInput.Focus()
			return m, textinput.Blink
		case "q", "esc", "ctrl+c":
			// Persist the running delta before leaving
			m.closing = true
			if err := m.clock.Close(); err != nil {
				m.errMsg = err.Error()
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m FocusModel) updateCommentInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.commentInput.Value())
		m.commenting = false
		m.commentInput.Reset()
		if text == "" {
			return m, nil
		}
		eng, taskID := m.eng, m.taskID
		return m, func() tea.Msg {
			// Pessimistic create; errors land on the next tick's refresh
			ctx, cancel := contextWithUITimeout()
			defer cancel()
			_, _ = eng.AddComment(ctx, taskID, text)
			return nil
		}
	case "esc":
		m.commenting = false
		m.commentInput.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

// View renders the focus TUI
func (m FocusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderClockPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderClockPanel(leftWidth, contentHeight),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

// renderClockPanel renders the countdown side
func (m FocusModel) renderClockPanel(width, height int) string {
	var components []string

	state := m.clock.State()
	headerText, headerColor := "PAUSED", ColorWarning
	switch {
	case m.celebrated:
		headerText, headerColor = "✔ DONE", ColorSuccess
	case state == timer.Running:
		headerText, headerColor = "⏱ FOCUSING", ColorAccentBright
	case state == timer.Idle:
		headerText, headerColor = "IDLE", ColorDisabledText
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(headerColor)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width)
	components = append(components, headerStyle.Render(headerText))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width)
	titleText := fmt.Sprintf("#%d %s", m.task.ID, m.task.Title)
	if len(titleText) > width-4 && width > 7 {
		titleText = titleText[:width-7] + "..."
	}
	components = append(components, titleStyle.Render(titleText))

	components = append(components, m.renderBigClock(width))

	if m.task.Timed() {
		progress := fmt.Sprintf("%s of %s done",
			formatSeconds(m.task.CompletedSeconds), formatSeconds(m.task.TotalSeconds()))
		progressStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Align(lipgloss.Center).
			Width(width)
		components = append(components, progressStyle.Render(progress))
	}

	if m.commenting {
		inputStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorAccentMain)).
			Padding(0, 1).
			Width(min(width-6, 50))
		components = append(components, lipgloss.NewStyle().
			Align(lipgloss.Center).Width(width).
			Render(inputStyle.Render(m.commentInput.View())))
	}

	if m.errMsg != "" {
		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Align(lipgloss.Center).
			Width(width)
		components = append(components, errStyle.Render(m.errMsg))
	}

	content := strings.Join(components, "\n\n")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderBigClock renders the remaining countdown as ASCII art
func (m FocusModel) renderBigClock(width int) string {
	remaining := m.clock.Remaining()
	hours := remaining / 3600
	mins := (remaining % 3600) / 60
	secs := remaining % 60

	timeStr := fmt.Sprintf("%02d:%02d", mins, secs)
	if hours > 0 {
		timeStr = fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
	}

	color := ColorAccentBright
	if m.clock.State() != timer.Running {
		color = ColorWarning
	}
	if m.celebrated {
		color = ColorSuccess
	}

	var lines [5]strings.Builder
	for _, char := range timeStr {
		art, ok := clockDigits[char]
		if !ok {
			continue
		}
		for i := 0; i < 5; i++ {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true)

	var rows []string
	for i := 0; i < 5; i++ {
		rows = append(rows, lipgloss.NewStyle().
			Align(lipgloss.Center).
			Width(width).
			Render(clockStyle.Render(lines[i].String())))
	}
	return strings.Join(rows, "\n")
}

// renderDetailsPanel renders the task details side
func (m FocusModel) renderDetailsPanel(width, height int) string {
	task := m.task
	var b strings.Builder

	line := func(s string) {
		b.WriteString(lipgloss.NewStyle().
			Align(lipgloss.Center).
			Width(width - 4).
			Render(s))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width - 8).
		Padding(0, 1)
	b.WriteString(lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 4).
		Render(titleStyle.Render(task.Title)))
	b.WriteString("\n\n")

	statusColor := ColorSecondaryText
	switch task.Status {
	case tasktree.StatusDone:
		statusColor = ColorSuccess
	case tasktree.StatusInProgress:
		statusColor = ColorAccentBright
	}
	line("Status: " + lipgloss.NewStyle().
		Foreground(lipgloss.Color(statusColor)).Bold(true).Render(string(task.Status)))

	priorityColor := map[tasktree.Priority]string{
		tasktree.PriorityLow:    ColorSecondaryText,
		tasktree.PriorityMedium: ColorAccentMain,
		tasktree.PriorityHigh:   ColorWarning,
		tasktree.PriorityUrgent: ColorError,
	}[task.Priority]
	if priorityColor == "" {
		priorityColor = ColorDisabledText
	}
	line("Priority: " + lipgloss.NewStyle().
		Foreground(lipgloss.Color(priorityColor)).Render(string(task.Priority)))

	if len(task.Tags) > 0 {
		var names []string
		for _, tag := range task.Tags {
			names = append(names, "#"+tag.Name)
		}
		line("Tags: " + lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentBright)).Render(strings.Join(names, " ")))
	}

	if task.DueDate != nil {
		line("Due: " + lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning)).Render(parser.FormatDueDate(task.DueDate)))
	}

	if len(task.Subtasks) > 0 {
		done := 0
		for _, s := range task.Subtasks {
			if s.Status == tasktree.StatusDone {
				done++
			}
		}
		line(fmt.Sprintf("Subtasks: %d/%d done", done, len(task.Subtasks)))
	}

	if len(task.Comments) > 0 {
		line("")
		last := task.Comments[len(task.Comments)-1]
		line(fmt.Sprintf("%d comment(s), last:", len(task.Comments)))
		line(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).Render("“" + last.Text + "”"))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(b.String())
}

// renderHelpBar renders the help bar at the bottom
func (m FocusModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)

	if m.commenting {
		return helpStyle.Render("enter save comment · esc cancel")
	}
	return helpStyle.Render("space start/pause · r reset · c comment · esc/q save & close")
}

// formatSeconds formats a second count in a human-readable way
func formatSeconds(s int) string {
	d := time.Duration(s) * time.Second
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}

// RunFocusTUI selects the task on the timer engine and runs the focus
// view until the user closes it.
func RunFocusTUI(eng *engine.Engine, clock *timer.Engine, taskID int) error {
	task, ok := eng.Find(taskID)
	if !ok {
		return fmt.Errorf("task #%d not found", taskID)
	}
	if !task.Timed() {
		return fmt.Errorf("task #%d has no duration; set one with 'lifecoach edit %d --duration <minutes>'", taskID, taskID)
	}
	if err := clock.Select(task); err != nil {
		return err
	}

	model := NewFocusModel(eng, clock, taskID)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// Make sure a still-running countdown persists its delta even if
	// the program ended without a clean close.
	return clock.Close()
}

package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/parser"
	"github.com/aydinov/lifecoach/internal/tasktree"
	"github.com/aydinov/lifecoach/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the task tree",
	Run: func(cmd *cobra.Command, args []string) {
		showHidden, _ := cmd.Flags().GetBool("all")
		withEngine(func(eng *engine.Engine) error {
			forest := eng.Forest()
			if len(forest) == 0 {
				fmt.Println("No tasks yet. Add one with 'lifecoach add \"My first task\"'")
				return nil
			}
			for _, task := range forest {
				printTaskTree(task, "", showHidden)
			}
			return nil
		})
	},
}

var (
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorDisabledText))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSuccess))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorAccentBright))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorAccentMain))
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorWarning))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorError))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSecondaryText))
)

// printTaskTree renders a task and its subtasks with box-drawing indents
func printTaskTree(task tasktree.Task, prefix string, showHidden bool) {
	if task.Hidden && !showHidden {
		return
	}

	glyph := "○"
	switch task.Status {
	case tasktree.StatusInProgress:
		glyph = progressStyle.Render("◐")
	case tasktree.StatusDone:
		glyph = doneStyle.Render("●")
	}

	line := fmt.Sprintf("%s%s %s %s", prefix, glyph, idStyle.Render(fmt.Sprintf("#%d", task.ID)), task.Title)

	var extras []string
	if task.Timed() {
		extras = append(extras, fmt.Sprintf("%dm/%dm", task.CompletedSeconds/60, *task.DurationMinutes))
	}
	if task.Priority == tasktree.PriorityHigh || task.Priority == tasktree.PriorityUrgent {
		extras = append(extras, string(task.Priority))
	}
	for _, tag := range task.Tags {
		extras = append(extras, tagStyle.Render("#"+tag.Name))
	}
	if task.DueDate != nil {
		due := parser.FormatDueDate(task.DueDate)
		if strings.HasPrefix(due, "OVERDUE") {
			extras = append(extras, overdueStyle.Render(due))
		} else {
			extras = append(extras, dueStyle.Render(due))
		}
	}
	if len(task.Comments) > 0 {
		extras = append(extras, fmt.Sprintf("💬%d", len(task.Comments)))
	}
	if len(extras) > 0 {
		line += " " + mutedStyle.Render("["+strings.Join(extras, " · ")+"]")
	}
	fmt.Println(line)

	childPrefix := strings.ReplaceAll(strings.ReplaceAll(prefix, "├─ ", "│  "), "└─ ", "   ")
	visible := task.Subtasks
	if !showHidden {
		visible = nil
		for _, s := range task.Subtasks {
			if !s.Hidden {
				visible = append(visible, s)
			}
		}
	}
	for i, sub := range visible {
		connector := "├─ "
		if i == len(visible)-1 {
			connector = "└─ "
		}
		printTaskTree(sub, childPrefix+connector, showHidden)
	}
}

func init() {
	listCmd.Flags().BoolP("all", "a", false, "Include hidden tasks")
}

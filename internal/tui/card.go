package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timers/internal/timer"
)

// renderCard draws one timer: title, project and the live elapsed time.
func renderCard(r timer.Record, now time.Time, selected bool, color lipgloss.Color, w int) string {
	style := cardStyle
	if selected {
		style = selectedCardStyle
	}

	title := titleStyle.Render(r.Title)
	if r.Title == "" {
		title = mutedStyle.Render("(untitled)")
	}
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	project := mutedStyle.Render(r.Project)
	if r.Project == "" {
		project = mutedStyle.Render("no project")
	}

	elapsed := timerStyle.Render(r.Render(now))
	indicator := mutedStyle.Render("■  STOPPED")
	if r.Running() {
		elapsed = timerRunningStyle.Render(r.Render(now))
		indicator = successStyle.Render("●  RUNNING")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		dot+" "+project,
		elapsed+"  "+indicator,
	)
	return style.Width(w).Render(content)
}

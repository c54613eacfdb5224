package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timers/internal/timer"
)

// reportsModel charts the effective time per project. It keeps no state of
// its own beyond layout; everything is derived from the collection on render.
type reportsModel struct {
	width  int
	height int
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func projectLabel(p string) string {
	if p == "" {
		return "(none)"
	}
	return p
}

func (r reportsModel) chart(totals []timer.ProjectTotal, projects []string) barchart.Model {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	chart := barchart.New(chartWidth, chartHeight)
	var bars []barchart.BarData
	for _, t := range totals {
		style := lipgloss.NewStyle().Foreground(projectColor(projects, t.Project))
		bars = append(bars, barchart.BarData{
			Label: projectLabel(t.Project),
			Values: []barchart.BarValue{{
				Name:  projectLabel(t.Project),
				Value: t.Total.Hours(),
				Style: style,
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()
	return chart
}

func (r reportsModel) view(timers timer.Collection, now time.Time) string {
	w := r.width - 4
	totals := timers.Totals(now)
	projects := timers.Projects()

	var grand time.Duration
	for _, t := range totals {
		grand += t.Total
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		mutedStyle.Render("total "+timer.FormatDuration(grand)),
	)

	if len(totals) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  No timers to report on"),
		))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "",
		r.chart(totals, projects).View(), "",
		r.renderTable(totals, projects, w),
	))
}

func (r reportsModel) renderTable(totals []timer.ProjectTotal, projects []string, w int) string {
	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-22s %10s %8s %7s", "Project", "Duration", "Hours", "Timers")),
		mutedStyle.Render("  " + strings.Repeat("─", min(max(w-6, 10), 50))),
	}
	for _, t := range totals {
		dot := lipgloss.NewStyle().Foreground(projectColor(projects, t.Project)).Render("●")
		line := fmt.Sprintf("  %s %-20s %10s %8s %7d",
			dot, projectLabel(t.Project), timer.FormatDuration(t.Total), timer.FormatHours(t.Total), t.Timers)
		if t.Running > 0 {
			line += successStyle.Render(fmt.Sprintf("  %d running", t.Running))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

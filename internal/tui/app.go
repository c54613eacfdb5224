package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timers/internal/export"
	"github.com/sadopc/timers/internal/refresh"
	"github.com/sadopc/timers/internal/timer"
	"github.com/sadopc/timers/internal/watch"
)

// Options configures the terminal UI.
type Options struct {
	RefreshInterval time.Duration
	// ExportDir is where exports are written; the home directory if empty.
	ExportDir string
	// WatchPath is the database file to watch for outside changes. Empty
	// disables watching.
	WatchPath string
	Logger    *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	state  *timer.State
	sched  refresher
	sink   chan<- tea.Msg
	opts   Options
	logger *slog.Logger

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	quitting      bool

	timers  timersModel
	reports reportsModel

	// attached maps refresh keys to the generation they were attached under.
	attached map[string]uint64

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the root model. Refresh ticks are delivered by sending
// refreshTickMsg on sink, which must be drained by the caller.
func NewApp(ctx context.Context, s *timer.State, sched refresher, sink chan<- tea.Msg, opts Options) App {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = refresh.DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := help.New()
	h.ShowAll = false

	return App{
		ctx:        ctx,
		state:      s,
		sched:      sched,
		sink:       sink,
		opts:       opts,
		logger:     opts.Logger,
		activeView: viewTimers,
		timers:     newTimersModel(ctx, s),
		attached:   make(map[string]uint64),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return nil
}

// Update handles msg and then brings the attached refresh tasks in line
// with what is on screen.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	a.syncRefresh()
	return a, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timers.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// The form captures every key, including tab and quit.
		if a.activeView == viewTimers && a.timers.formActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.quitting = true
			a.detachAll()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimers
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReports
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case refreshTickMsg:
		// Nothing to update: the next render reads the clock. Ticks from a
		// detached generation are dropped.
		if gen, ok := a.attached[msg.key]; !ok || gen != msg.gen {
			a.logger.Debug("Dropped stale refresh tick", "key", msg.key, "gen", msg.gen)
		}
		return a, nil

	case reloadMsg:
		c, err := a.state.Reload(a.ctx)
		if err != nil {
			a.logger.Warn("Reload after external change failed", "error", err)
			a.status, a.statusErr = "Reload failed: "+err.Error(), true
			return a, nil
		}
		a.timers.setTimers(c)
		return a, nil

	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimers:
		a.timers, cmd = a.timers.update(msg)
	}
	return a, cmd
}

// wantRefresh is the set of refresh keys the current screen needs.
func (a App) wantRefresh() map[string]bool {
	want := make(map[string]bool)
	if a.exportPicking || a.quitting {
		return want
	}
	switch a.activeView {
	case viewTimers:
		for _, id := range a.timers.refreshKeys() {
			want[id] = true
		}
	case viewReports:
		if len(a.state.Timers().Running()) > 0 {
			want[reportsRefreshKey] = true
		}
	}
	return want
}

func (a *App) syncRefresh() {
	if a.sched == nil {
		return
	}
	want := a.wantRefresh()
	for k := range a.attached {
		if !want[k] {
			a.sched.Detach(k)
			delete(a.attached, k)
		}
	}
	for k := range want {
		if _, ok := a.attached[k]; ok {
			continue
		}
		gen, err := a.sched.Attach(k, a.opts.RefreshInterval, a.tick(k))
		if err != nil {
			a.logger.Warn("Failed to attach refresh", "key", k, "error", err)
			continue
		}
		a.attached[k] = gen
	}
}

// tick returns the callback for key. It never blocks: a tick that does not
// fit in the sink is skipped, the next one will redraw anyway.
func (a App) tick(k string) refresh.Func {
	sink := a.sink
	return func(gen uint64) {
		select {
		case sink <- refreshTickMsg{key: k, gen: gen}:
		default:
		}
	}
}

func (a *App) detachAll() {
	if a.sched == nil {
		return
	}
	for k := range a.attached {
		a.sched.Detach(k)
		delete(a.attached, k)
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimers:
		content = a.timers.view()
	case viewReports:
		content = a.reports.view(a.state.Timers(), a.state.Clock().Now())
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timers")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	running := ""
	if n := len(a.state.Timers().Running()); n > 0 {
		running = successStyle.Render(fmt.Sprintf(" ● %d running", n))
	}

	left := footerStyle.Render(helpView)
	right := running + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	timers := a.state.Timers()
	now := a.state.Clock().Now()
	dir := a.opts.ExportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return errStatus(fmt.Errorf("failed to resolve export directory: %w", err))
			}
			dir = home
		}
		path := export.Filename(dir, f, now)
		if err := export.Write(f, timers, now, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

// Run starts the UI and blocks until it exits.
func Run(ctx context.Context, s *timer.State, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
		opts.Logger = logger
	}

	sched, err := refresh.New(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			logger.Warn("Refresh scheduler shutdown failed", "error", err)
		}
	}()

	sink := make(chan tea.Msg, 64)
	app := NewApp(ctx, s, sched, sink, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.WatchPath != "" {
		w, err := watch.New(opts.WatchPath, watch.DefaultDebounce, func() {
			select {
			case sink <- reloadMsg{}:
			default:
			}
		}, logger)
		if err != nil {
			logger.Warn("Database watcher unavailable", "error", err)
		} else if err := w.Start(ctx); err != nil {
			logger.Warn("Database watcher unavailable", "error", err)
			_ = w.Close()
		} else {
			defer w.Close()
		}
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-pumpCtx.Done():
				return
			case msg := <-sink:
				p.Send(msg)
			}
		}
	}()

	_, err = p.Run()
	return err
}

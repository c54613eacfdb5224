package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timers/internal/timer"
)

const (
	cardHeight = 5
	formHeight = 12
)

// timersModel is the editable timer list: one card per record, an optional
// edit form in place of the selected card, and the create form at the end.
type timersModel struct {
	ctx    context.Context
	state  *timer.State
	width  int
	height int

	timers timer.Collection
	cursor int
	offset int

	form timerForm
}

func newTimersModel(ctx context.Context, s *timer.State) timersModel {
	return timersModel{
		ctx:    ctx,
		state:  s,
		timers: s.Timers(),
		form:   newTimerForm(),
	}
}

func (m *timersModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.scroll()
}

func (m *timersModel) setTimers(c timer.Collection) {
	m.timers = c
	if m.cursor >= len(c) {
		m.cursor = max(0, len(c)-1)
	}
	if m.form.mode == formEdit {
		if _, ok := c.Find(m.form.editingID); !ok {
			m.form = m.form.close()
		}
	}
	m.scroll()
}

func (m timersModel) formActive() bool { return m.form.active() }

func (m timersModel) selected() (timer.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.timers) {
		return timer.Record{}, false
	}
	return m.timers[m.cursor], true
}

// capacity is how many cards fit on screen; zero height shows everything.
func (m timersModel) capacity() int {
	if m.height <= 0 {
		return max(1, len(m.timers))
	}
	avail := m.height - 2
	if m.form.active() {
		avail -= formHeight - cardHeight
		if m.form.mode == formCreate {
			avail -= cardHeight
		}
	}
	return max(1, avail/cardHeight)
}

func (m *timersModel) scroll() {
	c := m.capacity()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+c {
		m.offset = m.cursor - c + 1
	}
	if m.offset > max(0, len(m.timers)-c) {
		m.offset = max(0, len(m.timers)-c)
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m timersModel) visible() timer.Collection {
	end := min(len(m.timers), m.offset+m.capacity())
	if m.offset >= end {
		return nil
	}
	return m.timers[m.offset:end]
}

// refreshKeys lists the running cards currently on screen. A card hidden
// behind its edit form does not count.
func (m timersModel) refreshKeys() []string {
	var out []string
	for _, r := range m.visible() {
		if !r.Running() {
			continue
		}
		if m.form.mode == formEdit && m.form.editingID == r.ID {
			continue
		}
		out = append(out, r.ID)
	}
	return out
}

func (m timersModel) update(msg tea.Msg) (timersModel, tea.Cmd) {
	if m.form.active() {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.timers)-1 {
				m.cursor++
				m.scroll()
			}
		case key.Matches(msg, keys.New):
			var cmd tea.Cmd
			m.form, cmd = m.form.open(formCreate, timer.Record{})
			m.cursor = max(0, len(m.timers)-1)
			m.scroll()
			return m, cmd
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if r, ok := m.selected(); ok {
				var cmd tea.Cmd
				m.form, cmd = m.form.open(formEdit, r)
				m.scroll()
				return m, cmd
			}
		case key.Matches(msg, keys.Delete):
			if r, ok := m.selected(); ok {
				c, err := m.state.Delete(m.ctx, r.ID)
				return m.applied(c, err, "Deleted "+r.Title)
			}
		case key.Matches(msg, keys.Start):
			if r, ok := m.selected(); ok && !r.Running() {
				c, err := m.state.Start(m.ctx, r.ID)
				return m.applied(c, err, "Started "+r.Title)
			}
		case key.Matches(msg, keys.Stop):
			if r, ok := m.selected(); ok && r.Running() {
				c, err := m.state.Stop(m.ctx, r.ID)
				return m.applied(c, err, "Stopped "+r.Title)
			}
		case key.Matches(msg, keys.Toggle):
			if r, ok := m.selected(); ok {
				verb := "Started "
				if r.Running() {
					verb = "Stopped "
				}
				c, err := m.state.Toggle(m.ctx, r.ID)
				return m.applied(c, err, verb+r.Title)
			}
		}
	}
	return m, nil
}

func (m timersModel) updateForm(msg tea.Msg) (timersModel, tea.Cmd) {
	form, result, cmd := m.form.update(msg)
	m.form = form

	switch result {
	case formCancelled:
		m.form = m.form.close()
		m.scroll()
		return m, nil
	case formSubmitted:
		return m.submit()
	}
	return m, cmd
}

// submit hands the form values to the state and closes the form.
func (m timersModel) submit() (timersModel, tea.Cmd) {
	in := m.form.input()
	mode, id := m.form.mode, m.form.editingID
	m.form = m.form.close()

	switch mode {
	case formCreate:
		r, c, err := m.state.Create(m.ctx, in)
		m.cursor = len(c) - 1
		return m.applied(c, err, "Created "+r.Title)
	case formEdit:
		c, err := m.state.Edit(m.ctx, id, in)
		return m.applied(c, err, "Updated "+in.Title)
	}
	return m, nil
}

func (m timersModel) applied(c timer.Collection, err error, status string) (timersModel, tea.Cmd) {
	m.setTimers(c)
	if err != nil {
		return m, func() tea.Msg { return errStatus(err) }
	}
	return m, func() tea.Msg { return statusMsg{text: status} }
}

func (m timersModel) runningCount() int {
	return len(m.timers.Running())
}

func (m timersModel) view() string {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	now := m.state.Clock().Now()
	projects := m.timers.Projects()

	var rows []string
	if len(m.timers) == 0 && m.form.mode != formCreate {
		rows = append(rows, panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render("Timers"),
				"",
				mutedStyle.Render("No timers yet. Press n to create one."),
			),
		))
	}

	if m.offset > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  ↑ %d more", m.offset)))
	}
	for i, r := range m.visible() {
		idx := m.offset + i
		if m.form.mode == formEdit && m.form.editingID == r.ID {
			rows = append(rows, m.form.view(w))
			continue
		}
		rows = append(rows, renderCard(r, now, idx == m.cursor, projectColor(projects, r.Project), w))
	}
	if rest := len(m.timers) - m.offset - len(m.visible()); rest > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  ↓ %d more", rest)))
	}

	if m.form.mode == formCreate && m.form.active() {
		rows = append(rows, m.form.view(w))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  s/x/space: start/stop"))
	}

	return strings.Join(rows, "\n")
}

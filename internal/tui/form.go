package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timers/internal/timer"
)

type formMode int

const (
	formClosed formMode = iota
	formCreate
	formEdit
)

type formResult int

const (
	formPending formResult = iota
	formSubmitted
	formCancelled
)

// timerForm is the create/edit form. Field values live behind pointers so
// they survive the value copies Bubble Tea makes of the model.
type timerForm struct {
	mode      formMode
	editingID string
	form      *huh.Form

	title   *string
	project *string
}

func newTimerForm() timerForm {
	title, project := "", ""
	return timerForm{title: &title, project: &project}
}

func (f timerForm) active() bool {
	return f.mode != formClosed && f.form != nil
}

func (f timerForm) input() timer.Input {
	return timer.Input{Title: *f.title, Project: *f.project}.Normalize()
}

func requireTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

// open builds a fresh huh form. For edits, r supplies the initial values.
func (f timerForm) open(mode formMode, r timer.Record) (timerForm, tea.Cmd) {
	f.mode = mode
	f.editingID = ""
	*f.title = ""
	*f.project = ""
	if mode == formEdit {
		f.editingID = r.ID
		*f.title = r.Title
		*f.project = r.Project
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(f.title).Validate(requireTitle),
			huh.NewInput().Title("Project").Value(f.project),
		),
	).WithShowHelp(true).WithShowErrors(true)

	return f, f.form.Init()
}

func (f timerForm) close() timerForm {
	f.mode = formClosed
	f.editingID = ""
	f.form = nil
	return f
}

func (f timerForm) update(msg tea.Msg) (timerForm, formResult, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			return f, formCancelled, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f, formSubmitted, nil
	case huh.StateAborted:
		return f, formCancelled, nil
	}
	return f, formPending, cmd
}

func (f timerForm) submitText() string {
	if f.mode == formEdit {
		return "Update"
	}
	return "Create"
}

func (f timerForm) view(w int) string {
	heading := "New Timer"
	if f.mode == formEdit {
		heading = "Edit Timer"
	}
	hint := mutedStyle.Render("enter: " + strings.ToLower(f.submitText()) + "  esc: cancel")
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(heading), "", f.form.View(), hint,
	)
	return activePanelStyle.Width(w).Render(content)
}

package tui

import (
	"time"

	"github.com/sadopc/timers/internal/refresh"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimers viewState = iota
	viewReports
)

var viewNames = []string{"Timers", "Reports"}

// reportsRefreshKey is the refresh key used by the reports view; card keys
// are timer ids.
const reportsRefreshKey = "reports"

// refresher attaches and detaches repeating render ticks.
type refresher interface {
	Attach(key string, interval time.Duration, fn refresh.Func) (uint64, error)
	Detach(key string)
}

// --- Messages ---

// refreshTickMsg is delivered by an attached refresh task.
type refreshTickMsg struct {
	key string
	gen uint64
}

// reloadMsg asks the app to re-read storage after an external change.
type reloadMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

func errStatus(err error) statusMsg {
	return statusMsg{text: "Error: " + err.Error(), isError: true}
}

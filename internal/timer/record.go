package timer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a single tracked activity. Elapsed holds the accumulated
// milliseconds of finished runs; RunningSince is the epoch-millisecond start
// of the current run, or nil when the timer is stopped.
type Record struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Project      string `json:"project"`
	Elapsed      int64  `json:"elapsed"`
	RunningSince *int64 `json:"runningSince"`
}

// Input carries the user-editable fields of a record.
type Input struct {
	Title   string
	Project string
}

func (in Input) Normalize() Input {
	return Input{
		Title:   strings.TrimSpace(in.Title),
		Project: strings.TrimSpace(in.Project),
	}
}

// NewRecord builds a stopped record with a fresh random id and zero elapsed.
func NewRecord(in Input) Record {
	in = in.Normalize()
	return Record{
		ID:      uuid.NewString(),
		Title:   in.Title,
		Project: in.Project,
	}
}

const (
	seedTitle   = "timer template"
	seedProject = "template project"
)

// SeedCollection is written to storage on first launch.
func SeedCollection() Collection {
	return Collection{NewRecord(Input{Title: seedTitle, Project: seedProject})}
}

func (r Record) Running() bool {
	return r.RunningSince != nil
}

func (r Record) Effective(now time.Time) time.Duration {
	return Effective(r.Elapsed, r.RunningSince, now)
}

func (r Record) Render(now time.Time) string {
	return Render(r.Elapsed, r.RunningSince, now)
}

// StartedAt returns the start of the current run.
func (r Record) StartedAt() (time.Time, bool) {
	if r.RunningSince == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*r.RunningSince), true
}

func (r Record) clone() Record {
	if r.RunningSince != nil {
		since := *r.RunningSince
		r.RunningSince = &since
	}
	return r
}

package timer

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("timer not found")

// ErrAmbiguous is returned by Resolve when a prefix matches several ids.
var ErrAmbiguous = errors.New("ambiguous timer id")

// Collection is an ordered list of records. Its methods never write to the
// receiver's backing array; each mutation returns a fresh Collection.
type Collection []Record

func (c Collection) Len() int { return len(c) }

func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, r := range c {
		out[i] = r.clone()
	}
	return out
}

func (c Collection) Find(id string) (Record, bool) {
	for _, r := range c {
		if r.ID == id {
			return r.clone(), true
		}
	}
	return Record{}, false
}

// Resolve finds a record by exact id or unique id prefix.
func (c Collection) Resolve(ref string) (Record, error) {
	if r, ok := c.Find(ref); ok {
		return r, nil
	}
	if ref == "" {
		return Record{}, ErrNotFound
	}
	var match *Record
	for i := range c {
		if !strings.HasPrefix(c[i].ID, ref) {
			continue
		}
		if match != nil {
			return Record{}, ErrAmbiguous
		}
		match = &c[i]
	}
	if match == nil {
		return Record{}, ErrNotFound
	}
	return match.clone(), nil
}

func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i, r := range c {
		ids[i] = r.ID
	}
	return ids
}

// Add appends r.
func (c Collection) Add(r Record) Collection {
	out := make(Collection, 0, len(c)+1)
	out = append(out, c.Clone()...)
	return append(out, r.clone())
}

// Edit replaces title and project of the matching record.
func (c Collection) Edit(id string, in Input) Collection {
	in = in.Normalize()
	return c.mapMatch(id, func(r Record) Record {
		r.Title = in.Title
		r.Project = in.Project
		return r
	})
}

func (c Collection) Delete(id string) Collection {
	out := make(Collection, 0, len(c))
	for _, r := range c {
		if r.ID != id {
			out = append(out, r.clone())
		}
	}
	return out
}

// Start marks the matching record as running since now. A record that is
// already running keeps its original start.
func (c Collection) Start(id string, now time.Time) Collection {
	return c.mapMatch(id, func(r Record) Record {
		if r.Running() {
			return r
		}
		since := now.UnixMilli()
		r.RunningSince = &since
		return r
	})
}

// Stop folds the current run into Elapsed. Stopped records are left alone.
// A negative run (clock moved backwards) counts as zero.
func (c Collection) Stop(id string, now time.Time) Collection {
	return c.mapMatch(id, func(r Record) Record {
		if !r.Running() {
			return r
		}
		last := now.UnixMilli() - *r.RunningSince
		if last > 0 {
			r.Elapsed += last
		}
		r.RunningSince = nil
		return r
	})
}

func (c Collection) mapMatch(id string, fn func(Record) Record) Collection {
	out := make(Collection, len(c))
	for i, r := range c {
		r = r.clone()
		if r.ID == id {
			r = fn(r)
		}
		out[i] = r
	}
	return out
}

// Running returns the records with an active run.
func (c Collection) Running() Collection {
	var out Collection
	for _, r := range c {
		if r.Running() {
			out = append(out, r.clone())
		}
	}
	return out
}

// Projects lists distinct project labels in first-seen order.
func (c Collection) Projects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c {
		if seen[r.Project] {
			continue
		}
		seen[r.Project] = true
		out = append(out, r.Project)
	}
	return out
}

// ProjectTotal is the summed effective elapsed of one project.
type ProjectTotal struct {
	Project string
	Total   time.Duration
	Timers  int
	Running int
}

func (c Collection) Totals(now time.Time) []ProjectTotal {
	index := make(map[string]int)
	var totals []ProjectTotal
	for _, r := range c {
		i, ok := index[r.Project]
		if !ok {
			i = len(totals)
			index[r.Project] = i
			totals = append(totals, ProjectTotal{Project: r.Project})
		}
		totals[i].Total += r.Effective(now)
		totals[i].Timers++
		if r.Running() {
			totals[i].Running++
		}
	}
	return totals
}

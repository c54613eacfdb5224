package timer

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleCollection() Collection {
	return Collection{
		{ID: "a1", Title: "Learn", Project: "Web", Elapsed: 1000},
		{ID: "b2", Title: "Iron", Project: "World", Elapsed: 0},
		{ID: "c3", Title: "Read", Project: "Web", Elapsed: 5000},
	}
}

// ============================================================
// Factory
// ============================================================

func TestNewRecord(t *testing.T) {
	r := NewRecord(Input{Title: "  Learn ", Project: "Web "})
	if r.ID == "" {
		t.Fatal("expected generated id")
	}
	if r.Title != "Learn" || r.Project != "Web" {
		t.Fatalf("input not normalized: %+v", r)
	}
	if r.Elapsed != 0 || r.RunningSince != nil {
		t.Fatalf("new record should be stopped with zero elapsed: %+v", r)
	}
}

func TestNewRecordUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		r := NewRecord(Input{Title: "t"})
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestSeedCollection(t *testing.T) {
	seed := SeedCollection()
	if seed.Len() != 1 {
		t.Fatalf("expected 1 seed record, got %d", seed.Len())
	}
	if seed[0].Title != "timer template" || seed[0].Project != "template project" {
		t.Fatalf("unexpected seed: %+v", seed[0])
	}
}

// ============================================================
// Create / edit / delete
// ============================================================

func TestAddAppends(t *testing.T) {
	c := sampleCollection()
	r := NewRecord(Input{Title: "New", Project: "P"})
	next := c.Add(r)

	if next.Len() != c.Len()+1 {
		t.Fatalf("expected %d records, got %d", c.Len()+1, next.Len())
	}
	if next[len(next)-1].ID != r.ID {
		t.Fatal("new record should be last")
	}
	for _, id := range c.IDs() {
		if id == r.ID {
			t.Fatal("new id collides with existing id")
		}
	}
	if c.Len() != 3 {
		t.Fatal("receiver must not change")
	}
}

func TestEdit(t *testing.T) {
	c := sampleCollection()
	since := epoch.UnixMilli()
	c[0].RunningSince = &since

	next := c.Edit("a1", Input{Title: "Learn Go", Project: "Backend"})
	r, ok := next.Find("a1")
	if !ok {
		t.Fatal("record missing after edit")
	}
	if r.Title != "Learn Go" || r.Project != "Backend" {
		t.Fatalf("edit not applied: %+v", r)
	}
	if r.Elapsed != 1000 || r.RunningSince == nil || *r.RunningSince != since {
		t.Fatalf("edit touched timing fields: %+v", r)
	}
	if c[0].Title != "Learn" {
		t.Fatal("receiver must not change")
	}
	if next[1] != c[1] {
		t.Fatal("other records should be untouched")
	}
}

func TestEditMissingIsNoop(t *testing.T) {
	c := sampleCollection()
	next := c.Edit("zz", Input{Title: "x", Project: "y"})
	for i := range c {
		if next[i] != c[i] {
			t.Fatalf("record %d changed", i)
		}
	}
}

func TestDelete(t *testing.T) {
	c := sampleCollection()
	next := c.Delete("b2")
	if next.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", next.Len())
	}
	if _, ok := next.Find("b2"); ok {
		t.Fatal("record should be gone")
	}
	if next[0].ID != "a1" || next[1].ID != "c3" {
		t.Fatal("order not preserved")
	}

	again := next.Delete("b2")
	if again.Len() != 2 {
		t.Fatal("re-delete should be a no-op")
	}
}

// ============================================================
// Start / stop
// ============================================================

func TestStartStop(t *testing.T) {
	c := sampleCollection()
	started := c.Start("a1", epoch)

	r, _ := started.Find("a1")
	if !r.Running() || *r.RunningSince != epoch.UnixMilli() {
		t.Fatalf("start did not set runningSince: %+v", r)
	}
	if r.Elapsed != 1000 {
		t.Fatal("start must not change elapsed")
	}

	stopped := started.Stop("a1", epoch.Add(2500*time.Millisecond))
	r, _ = stopped.Find("a1")
	if r.Running() {
		t.Fatal("record should be stopped")
	}
	if r.Elapsed != 3500 {
		t.Fatalf("expected elapsed 3500, got %d", r.Elapsed)
	}
}

func TestStartAlreadyRunningKeepsStart(t *testing.T) {
	c := sampleCollection().Start("a1", epoch)
	again := c.Start("a1", epoch.Add(time.Minute))

	r, _ := again.Find("a1")
	if *r.RunningSince != epoch.UnixMilli() {
		t.Fatal("second start should not reset runningSince")
	}
}

func TestStopWhenStoppedIsNoop(t *testing.T) {
	c := sampleCollection()
	next := c.Stop("c3", epoch)
	r, _ := next.Find("c3")
	if r.Elapsed != 5000 || r.Running() {
		t.Fatalf("stop on stopped record changed it: %+v", r)
	}
}

func TestStopClockBackwards(t *testing.T) {
	c := sampleCollection().Start("a1", epoch)
	next := c.Stop("a1", epoch.Add(-time.Second))
	r, _ := next.Find("a1")
	if r.Elapsed != 1000 {
		t.Fatalf("elapsed must not decrease, got %d", r.Elapsed)
	}
	if r.Running() {
		t.Fatal("record should be stopped")
	}
}

func TestStartMissingIsNoop(t *testing.T) {
	c := sampleCollection()
	next := c.Start("nope", epoch)
	if len(next.Running()) != 0 {
		t.Fatal("nothing should be running")
	}
}

func TestOperationsDoNotAliasRunningSince(t *testing.T) {
	c := sampleCollection().Start("a1", epoch)
	next := c.Edit("b2", Input{Title: "x"})
	*next[0].RunningSince = 0
	if *c[0].RunningSince != epoch.UnixMilli() {
		t.Fatal("collections share runningSince pointer")
	}
}

func TestElapsedMonotonic(t *testing.T) {
	c := Collection{NewRecord(Input{Title: "m"})}
	id := c[0].ID
	now := epoch
	prev := int64(0)
	for i := 0; i < 10; i++ {
		c = c.Start(id, now)
		now = now.Add(time.Duration(i*100) * time.Millisecond)
		c = c.Stop(id, now)
		c = c.Stop(id, now)
		r, _ := c.Find(id)
		if r.Elapsed < prev {
			t.Fatalf("elapsed decreased: %d -> %d", prev, r.Elapsed)
		}
		prev = r.Elapsed
	}
}

// ============================================================
// Lookups
// ============================================================

func TestResolve(t *testing.T) {
	c := Collection{
		{ID: "abc123"},
		{ID: "abd456"},
	}
	r, err := c.Resolve("abc")
	if err != nil || r.ID != "abc123" {
		t.Fatalf("resolve prefix: %v %+v", err, r)
	}
	if _, err := c.Resolve("ab"); err != ErrAmbiguous {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	if _, err := c.Resolve("zz"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Resolve(""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for empty ref, got %v", err)
	}
}

func TestProjects(t *testing.T) {
	got := sampleCollection().Projects()
	if len(got) != 2 || got[0] != "Web" || got[1] != "World" {
		t.Fatalf("unexpected projects: %v", got)
	}
}

func TestTotals(t *testing.T) {
	c := sampleCollection().Start("b2", epoch)
	totals := c.Totals(epoch.Add(3 * time.Second))
	if len(totals) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(totals))
	}
	if totals[0].Project != "Web" || totals[0].Total != 6*time.Second || totals[0].Timers != 2 {
		t.Fatalf("unexpected Web total: %+v", totals[0])
	}
	if totals[1].Total != 3*time.Second || totals[1].Running != 1 {
		t.Fatalf("unexpected World total: %+v", totals[1])
	}
}

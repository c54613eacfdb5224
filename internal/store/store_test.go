package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/timers/internal/timer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.Get(&version, "PRAGMA user_version")
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "timers.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration does not run again.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, ok, err := s2.Get(context.Background(), "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("value lost across reopen: %q %v %v", v, ok, err)
	}
	if s2.Path() != path {
		t.Fatalf("unexpected path %q", s2.Path())
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, filepath.Join("timers", "timers.db")) {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key-value
// ============================================================

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != "" {
		t.Fatal("missing key should report ok=false")
	}
}

func TestSetOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Set(ctx, "a", "1")
	s.Set(ctx, "a", "2")
	v, _, _ := s.Get(ctx, "a")
	if v != "2" {
		t.Fatalf("expected overwrite, got %q", v)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %v", keys)
	}
}

func TestDeleteKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Set(ctx, "a", "1")
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Fatal("key should be gone")
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal("deleting a missing key should not fail")
	}
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Set(ctx, "b", "2")
	s.Set(ctx, "a", "1")
	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Key != "a" || entries[1].Value != "2" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if _, err := time.Parse(time.RFC3339, entries[0].UpdatedAt); err != nil {
		t.Fatalf("bad updated_at: %v", err)
	}
}

// ============================================================
// Timer repository
// ============================================================

func sampleTimers() timer.Collection {
	since := int64(1700000000000)
	return timer.Collection{
		{ID: "a", Title: "Learn", Project: "Web", Elapsed: 8986300},
		{ID: "b", Title: "Iron", Project: "World", Elapsed: 3890985, RunningSince: &since},
	}
}

func TestRepositoryLoadEmpty(t *testing.T) {
	repo := NewTimerRepository(newTestStore(t), "")
	c, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok || c != nil {
		t.Fatal("empty store should report nothing stored")
	}
	if repo.Key() != DefaultKey {
		t.Fatalf("expected default key, got %q", repo.Key())
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTimerRepository(newTestStore(t), "timers")

	want := sampleTimers()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := repo.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestRepositoryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	repo := NewTimerRepository(newTestStore(t), "")

	repo.Save(ctx, nil)
	got, ok, err := repo.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("empty collection should still count as stored: %v %v", ok, err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", got.Len())
	}
}

func TestEncodeFieldNames(t *testing.T) {
	data, err := Encode(sampleTimers())
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	for _, field := range []string{`"id"`, `"title"`, `"project"`, `"elapsed"`, `"runningSince":null`, `"runningSince":1700000000000`} {
		if !strings.Contains(doc, field) {
			t.Errorf("encoded document missing %s: %s", field, doc)
		}
	}
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []string{
		`not json`,
		`{"id":"a"}`,
		`[{"title":"no id"}]`,
		`[{"id":"a"},{"id":"a"}]`,
	}
	for _, doc := range tests {
		if _, err := Decode([]byte(doc)); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Decode(%s) = %v, want ErrCorrupt", doc, err)
		}
	}
}

func TestRepositoryCorruptLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Set(ctx, DefaultKey, "{{{")

	_, _, err := NewTimerRepository(s, "").Load(ctx)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestRepositoryWithState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := NewTimerRepository(s, "")

	st, err := timer.Open(ctx, repo, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, DefaultKey); !ok {
		t.Fatal("opening state should seed storage")
	}

	r, _, err := st.Create(ctx, timer.Input{Title: "Learn", Project: "Web"})
	if err != nil {
		t.Fatal(err)
	}

	reopened, err := timer.Open(ctx, repo, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reopened.Timers().Find(r.ID); !ok {
		t.Fatal("created timer should survive reopen")
	}
	if reopened.Timers().Len() != 2 {
		t.Fatalf("expected seed + created, got %d", reopened.Timers().Len())
	}
}

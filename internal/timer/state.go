package timer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Persister loads and saves the whole collection. Load reports ok=false when
// nothing has been stored yet.
type Persister interface {
	Load(ctx context.Context) (c Collection, ok bool, err error)
	Save(ctx context.Context, c Collection) error
}

// State owns the authoritative collection. Every mutation swaps in the next
// collection and then writes it through the persister.
type State struct {
	mu      sync.Mutex
	timers  Collection
	persist Persister
	clock   Clock
	logger  *slog.Logger
}

// Open loads the stored collection, seeding storage on first use.
func Open(ctx context.Context, p Persister, clock Clock, logger *slog.Logger) (*State, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &State{persist: p, clock: clock, logger: logger}

	stored, ok, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load timers: %w", err)
	}
	if !ok {
		seed := SeedCollection()
		if err := p.Save(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed timers: %w", err)
		}
		logger.Info("Initialized timer storage", "timers", len(seed))
		stored = seed
	}
	s.timers = stored
	logger.Debug("Loaded timers", "timers", len(stored))
	return s, nil
}

// Timers returns a copy of the current collection.
func (s *State) Timers() Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers.Clone()
}

func (s *State) Clock() Clock { return s.clock }

func (s *State) Create(ctx context.Context, in Input) (Record, Collection, error) {
	r := NewRecord(in)
	next, err := s.apply(ctx, "create", r.ID, func(c Collection) Collection {
		return c.Add(r)
	})
	return r, next, err
}

func (s *State) Edit(ctx context.Context, id string, in Input) (Collection, error) {
	return s.apply(ctx, "edit", id, func(c Collection) Collection {
		return c.Edit(id, in)
	})
}

func (s *State) Delete(ctx context.Context, id string) (Collection, error) {
	return s.apply(ctx, "delete", id, func(c Collection) Collection {
		return c.Delete(id)
	})
}

func (s *State) Start(ctx context.Context, id string) (Collection, error) {
	now := s.clock.Now()
	return s.apply(ctx, "start", id, func(c Collection) Collection {
		return c.Start(id, now)
	})
}

func (s *State) Stop(ctx context.Context, id string) (Collection, error) {
	now := s.clock.Now()
	return s.apply(ctx, "stop", id, func(c Collection) Collection {
		return c.Stop(id, now)
	})
}

// Toggle starts a stopped record and stops a running one.
func (s *State) Toggle(ctx context.Context, id string) (Collection, error) {
	now := s.clock.Now()
	return s.apply(ctx, "toggle", id, func(c Collection) Collection {
		r, ok := c.Find(id)
		if !ok {
			return c
		}
		if r.Running() {
			return c.Stop(id, now)
		}
		return c.Start(id, now)
	})
}

// Reload replaces the in-memory collection with what storage holds now.
func (s *State) Reload(ctx context.Context) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok, err := s.persist.Load(ctx)
	if err != nil {
		return s.timers.Clone(), fmt.Errorf("reload timers: %w", err)
	}
	if ok {
		s.timers = stored
	}
	s.logger.Info("Reloaded timers", "timers", len(s.timers))
	return s.timers.Clone(), nil
}

// apply advances the in-memory collection even when the save fails; the
// error is logged and handed back to the caller.
func (s *State) apply(ctx context.Context, op, id string, fn func(Collection) Collection) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers = fn(s.timers)
	s.logger.Debug("Applied timer operation", "op", op, "id", id, "timers", len(s.timers))

	if err := s.persist.Save(ctx, s.timers); err != nil {
		s.logger.Error("Failed to save timers", "op", op, "id", id, "error", err)
		return s.timers.Clone(), fmt.Errorf("save after %s: %w", op, err)
	}
	return s.timers.Clone(), nil
}

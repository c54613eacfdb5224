// Package refresh runs keyed repeating tasks that can be detached at any
// time. After Detach returns, the detached task is never invoked again.
package refresh

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// DefaultInterval is how often a visible running timer is redrawn.
const DefaultInterval = 100 * time.Millisecond

var ErrClosed = errors.New("refresh scheduler is shut down")

// Func is called on every tick with the generation it was attached under.
// It runs on a scheduler goroutine and must not block.
type Func func(gen uint64)

type attachment struct {
	mu     sync.RWMutex
	active bool
	gen    uint64
	jobID  uuid.UUID
}

// Scheduler wraps a gocron scheduler keyed by caller-chosen names.
type Scheduler struct {
	mu     sync.Mutex
	sched  gocron.Scheduler
	jobs   map[string]*attachment
	gen    uint64
	closed bool
	logger *slog.Logger
}

func New(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s.Start()
	return &Scheduler{
		sched:  s,
		jobs:   make(map[string]*attachment),
		logger: logger,
	}, nil
}

// Attach starts calling fn every interval under key, replacing any task
// already attached there. It returns the new attachment's generation.
func (s *Scheduler) Attach(key string, interval time.Duration, fn Func) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	s.detachLocked(key)

	s.gen++
	a := &attachment{active: true, gen: s.gen}
	job, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fire, a, fn),
		gocron.WithName(key),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to attach refresh %s: %w", key, err)
	}
	a.jobID = job.ID()
	s.jobs[key] = a
	s.logger.Debug("Attached refresh", "key", key, "gen", a.gen, "interval", interval)
	return a.gen, nil
}

func fire(a *attachment, fn Func) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.active {
		fn(a.gen)
	}
}

// Detach stops the task under key. It waits for an in-flight call to finish.
func (s *Scheduler) Detach(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked(key)
}

func (s *Scheduler) detachLocked(key string) {
	a, ok := s.jobs[key]
	if !ok {
		return
	}
	delete(s.jobs, key)

	a.mu.Lock()
	a.active = false
	a.mu.Unlock()

	if err := s.sched.RemoveJob(a.jobID); err != nil {
		s.logger.Warn("Failed to remove refresh job", "key", key, "error", err)
	}
	s.logger.Debug("Detached refresh", "key", key, "gen", a.gen)
}

// Retain detaches every key not in keep.
func (s *Scheduler) Retain(keep map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.jobs {
		if !keep[key] {
			s.detachLocked(key)
		}
	}
}

// Active reports whether key has an attached task and its generation.
func (s *Scheduler) Active(key string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.jobs[key]
	if !ok {
		return 0, false
	}
	return a.gen, true
}

func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	return keys
}

// Shutdown detaches everything and stops the underlying scheduler.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for key := range s.jobs {
		s.detachLocked(key)
	}
	return s.sched.Shutdown()
}

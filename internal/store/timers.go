package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sadopc/timers/internal/timer"
)

// DefaultKey is the kv key the timer collection lives under.
const DefaultKey = "timers"

// ErrCorrupt marks a stored collection that cannot be decoded.
var ErrCorrupt = errors.New("stored timers are corrupt")

// KV is the subset of Store the repository needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// TimerRepository keeps the whole collection as one JSON document.
type TimerRepository struct {
	kv  KV
	key string
}

func NewTimerRepository(kv KV, key string) *TimerRepository {
	if key == "" {
		key = DefaultKey
	}
	return &TimerRepository{kv: kv, key: key}
}

func (r *TimerRepository) Key() string { return r.key }

func (r *TimerRepository) Load(ctx context.Context) (timer.Collection, bool, error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil || !ok {
		return nil, false, err
	}
	c, err := Decode([]byte(raw))
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (r *TimerRepository) Save(ctx context.Context, c timer.Collection) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.key, string(data))
}

// Encode renders the collection as a JSON array. A nil collection encodes as
// an empty array so that "stored but empty" stays distinct from "absent".
func Encode(c timer.Collection) ([]byte, error) {
	if c == nil {
		c = timer.Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal timers: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (timer.Collection, error) {
	var c timer.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if c == nil {
		c = timer.Collection{}
	}
	seen := make(map[string]bool, len(c))
	for i, rec := range c {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorrupt, i)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorrupt, rec.ID)
		}
		seen[rec.ID] = true
	}
	return c, nil
}

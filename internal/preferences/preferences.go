package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/prospect-pipeline/internal/prospects"
)

// Preferences are the view settings a coach returns to: the last filters,
// the sort order and the daily touch goal.
type Preferences struct {
	Status    string            `json:"status"`
	Priority  string            `json:"priority"`
	Sort      prospects.SortKey `json:"sort"`
	Dir       prospects.SortDir `json:"dir"`
	TouchGoal int               `json:"touchGoal"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}

// Default returns all/all sorted by next action ascending.
// A zero TouchGoal defers to the deployment's configured goal.
func Default() Preferences {
	return Preferences{
		Status:   prospects.FilterAll,
		Priority: prospects.FilterAll,
		Sort:     prospects.SortNextAction,
		Dir:      prospects.SortAsc,
	}
}

// Query converts p to a view query.
func (p Preferences) Query() prospects.Query {
	return prospects.Query{Status: p.Status, Priority: p.Priority, Sort: p.Sort, Dir: p.Dir}
}

// Normalize fills defaults and validates p against the view rules.
func (p Preferences) Normalize() (Preferences, error) {
	q, err := p.Query().Normalize()
	if err != nil {
		return p, err
	}
	if p.TouchGoal < 0 {
		return p, ErrInvalidTouchGoal
	}
	p.Status, p.Priority, p.Sort, p.Dir = q.Status, q.Priority, q.Sort, q.Dir
	return p, nil
}

// ErrInvalidTouchGoal is returned for a negative daily goal.
var ErrInvalidTouchGoal = errors.New("touchGoal must not be negative")

// Store persists preferences per coach.
type Store interface {
	Get(ctx context.Context, coachID string) (Preferences, error)
	Save(ctx context.Context, coachID string, prefs Preferences) (Preferences, error)
}

// RedisStore keeps preferences as JSON under pipeline:prefs:<coach>.
type RedisStore struct {
	redis *redis.Client
	now   func() time.Time
}

// NewRedisStore creates a Redis-backed preferences store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("preferences: redis client required")
	}
	return &RedisStore{redis: client, now: time.Now}
}

func (s *RedisStore) key(coachID string) string {
	return fmt.Sprintf("pipeline:prefs:%s", coachID)
}

// Get returns the saved preferences, or Default when none are stored.
func (s *RedisStore) Get(ctx context.Context, coachID string) (Preferences, error) {
	data, err := s.redis.Get(ctx, s.key(coachID)).Bytes()
	if err == redis.Nil {
		return Default(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("preferences: get: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("preferences: unmarshal: %w", err)
	}
	if prefs, err = prefs.Normalize(); err != nil {
		return Default(), nil
	}
	return prefs, nil
}

// Save validates and stores prefs.
func (s *RedisStore) Save(ctx context.Context, coachID string, prefs Preferences) (Preferences, error) {
	prefs, err := prefs.Normalize()
	if err != nil {
		return Preferences{}, err
	}
	prefs.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(prefs)
	if err != nil {
		return Preferences{}, fmt.Errorf("preferences: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(coachID), data, 0).Err(); err != nil {
		return Preferences{}, fmt.Errorf("preferences: set: %w", err)
	}
	return prefs, nil
}

// MemoryStore is used when Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

// NewMemoryStore creates an empty in-process preferences store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]Preferences)}
}

func (s *MemoryStore) Get(ctx context.Context, coachID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[coachID]; ok {
		return p, nil
	}
	return Default(), nil
}

func (s *MemoryStore) Save(ctx context.Context, coachID string, prefs Preferences) (Preferences, error) {
	prefs, err := prefs.Normalize()
	if err != nil {
		return Preferences{}, err
	}
	prefs.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[coachID] = prefs
	return prefs, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

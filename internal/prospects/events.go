package prospects

import (
	"context"
	"sort"
	"sync"
	"time"
)

// EventLog persists prospect timelines.
type EventLog interface {
	Append(ctx context.Context, e *Event) error
	ListByProspect(ctx context.Context, prospectID string) ([]Event, error)
	// ListBetween returns events with from <= date < to, oldest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	DeleteByProspect(ctx context.Context, prospectID string) error
}

// InMemoryEventLog is an EventLog backed by a slice.
type InMemoryEventLog struct {
	mu     sync.RWMutex
	nextID int64
	events []Event
}

// NewInMemoryEventLog creates an empty event log.
func NewInMemoryEventLog() *InMemoryEventLog {
	return &InMemoryEventLog{}
}

func (l *InMemoryEventLog) Append(ctx context.Context, e *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	e.ID = l.nextID
	l.events = append(l.events, *e)
	return nil
}

func (l *InMemoryEventLog) ListByProspect(ctx context.Context, prospectID string) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Event{}
	for _, e := range l.events {
		if e.ProspectID == prospectID {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out, nil
}

func (l *InMemoryEventLog) ListBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Event{}
	for _, e := range l.events {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out, nil
}

func (l *InMemoryEventLog) DeleteByProspect(ctx context.Context, prospectID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.events[:0]
	for _, e := range l.events {
		if e.ProspectID != prospectID {
			kept = append(kept, e)
		}
	}
	l.events = kept
	return nil
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

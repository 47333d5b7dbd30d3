package memory

import (
	"context"
	"sync"

	"outpost/internal/app/ports"
)

// Journal keeps events in a slice. It is safe for concurrent use.
type Journal struct {
	mu     sync.RWMutex
	events []ports.Event
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Append(_ context.Context, events []ports.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, events...)
	return nil
}

// List returns matching events oldest first; Limit keeps the newest ones.
func (j *Journal) List(_ context.Context, q ports.JournalQuery) ([]ports.Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]ports.Event, 0, len(j.events))
	for _, e := range j.events {
		if q.PersonID != "" && e.PersonID != q.PersonID {
			continue
		}
		if q.Topic != "" && e.Topic != q.Topic {
			continue
		}
		if !q.Since.IsZero() && e.OccurredAt.Before(q.Since) {
			continue
		}
		out = append(out, e)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

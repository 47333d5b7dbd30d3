package memory

import (
	"context"
	"time"

	"outpost/internal/app/ports"
)

type SaveRepo struct {
	store *Store
}

func NewSaveRepo(store *Store) SaveRepo {
	return SaveRepo{store: store}
}

func (r SaveRepo) Load(_ context.Context, name string) ([]byte, error) {
	s, ok := r.store.slots[name]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), s.blob...), nil
}

func (r SaveRepo) Save(_ context.Context, name string, blob []byte, savedAt time.Time) error {
	r.store.slots[name] = slot{blob: append([]byte(nil), blob...), savedAt: savedAt}
	return nil
}

// SavedAt reports when the slot was last written.
func (r SaveRepo) SavedAt(name string) (time.Time, bool) {
	s, ok := r.store.slots[name]
	return s.savedAt, ok
}

package memory

import (
	"sync"
	"time"
)

type slot struct {
	blob    []byte
	savedAt time.Time
}

// Store backs the in-memory repos. Repos do not lock on their own; callers go
// through TxManager the same way they would with a database.
type Store struct {
	mu    sync.RWMutex
	slots map[string]slot
}

func NewStore() *Store {
	return &Store{slots: make(map[string]slot)}
}

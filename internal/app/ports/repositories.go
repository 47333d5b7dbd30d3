package ports

import (
	"context"
	"time"
)

// Event is one journal row: a bus message flattened for replay.
type Event struct {
	Seq        int64
	Topic      string
	OccurredAt time.Time
	PersonID   string
	Payload    map[string]any
}

type JournalQuery struct {
	PersonID string
	Topic    string
	Since    time.Time
	Limit    int
}

type Journal interface {
	Append(ctx context.Context, events []Event) error
	List(ctx context.Context, q JournalQuery) ([]Event, error)
}

type SaveStore interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, blob []byte, savedAt time.Time) error
}

type SaveCodec interface {
	Encode(v any) ([]byte, error)
	Decode(blob []byte, v any) error
}

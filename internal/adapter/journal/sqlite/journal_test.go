package sqlitejournal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/app/ports"
)

func TestJournal_AppendListReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, j.Append(ctx, []ports.Event{
		{Seq: 1, Topic: "click", PersonID: "p1", OccurredAt: base, Payload: map[string]any{"actionId": "forage"}},
		{Seq: 2, Topic: "arrival", OccurredAt: base.Add(time.Hour), Payload: map[string]any{"value": "p2"}},
		{Seq: 3, Topic: "click", PersonID: "p2", OccurredAt: base.Add(2 * time.Hour), Payload: map[string]any{"actionId": "rest"}},
	}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	all, err := j.List(ctx, ports.JournalQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Seq)
	assert.Equal(t, base, all[0].OccurredAt)
	assert.Equal(t, "forage", all[0].Payload["actionId"])

	recent, err := j.List(ctx, ports.JournalQuery{Topic: "click", Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "p2", recent[0].PersonID)

	since, err := j.List(ctx, ports.JournalQuery{Since: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

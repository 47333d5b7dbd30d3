package action

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"outpost/internal/app/game"
	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
	"outpost/internal/domain/world"
)

type stubRunner struct {
	g *game.Game
}

func (r stubRunner) Do(_ context.Context, fn func(g *game.Game) error) error { return fn(r.g) }
func (r stubRunner) View() game.View                                         { return r.g.View() }

type stubMetrics struct {
	success  map[string]int
	conflict int
	failure  int
}

func (m *stubMetrics) RecordSuccess(actionID string) {
	if m.success == nil {
		m.success = map[string]int{}
	}
	m.success[actionID]++
}
func (m *stubMetrics) RecordConflict() { m.conflict++ }
func (m *stubMetrics) RecordFailure()  { m.failure++ }

func newRunner(t *testing.T) stubRunner {
	t.Helper()
	tables := contenttest.Tables()
	tables.Settings.IncidentRate = -1
	cat, err := content.NewCatalog(tables, content.DefaultHooks())
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := game.New(cat, game.Options{
		Clock: world.NewClock(world.ClockConfig{HourDuration: time.Second}),
		Now:   func() time.Time { return now },
		NewID: func() string { return "p1" },
	})
	g.Start(now)
	return stubRunner{g: g}
}

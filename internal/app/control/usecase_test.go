package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/app/game"
	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
	"outpost/internal/domain/incident"
	"outpost/internal/domain/world"
)

type stubRunner struct{ g *game.Game }

func (r stubRunner) Do(_ context.Context, fn func(g *game.Game) error) error { return fn(r.g) }
func (r stubRunner) View() game.View                                         { return r.g.View() }

type stubSaver struct{ calls int }

func (s *stubSaver) Save(context.Context) error {
	s.calls++
	return nil
}

func newUseCase(t *testing.T) (UseCase, *stubSaver) {
	t.Helper()
	tables := contenttest.Tables()
	tables.Settings.IncidentRate = -1
	cat, err := content.NewCatalog(tables, content.DefaultHooks())
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := game.New(cat, game.Options{
		Clock: world.NewClock(world.ClockConfig{HourDuration: time.Second}),
		Now:   func() time.Time { return now },
	})
	g.Start(now)
	saver := &stubSaver{}
	return UseCase{Game: stubRunner{g: g}, Saver: saver, Now: func() time.Time { return now }}, saver
}

func TestUseCase_PauseResumeAreIdempotent(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	resp, err := uc.Execute(ctx, Request{Op: OpPause})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.True(t, resp.Paused)

	resp, err = uc.Execute(ctx, Request{Op: "PAUSE"})
	require.NoError(t, err)
	assert.False(t, resp.Changed)

	resp, err = uc.Execute(ctx, Request{Op: OpResume})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.False(t, resp.Paused)
}

func TestUseCase_DecideWithoutPrompt(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Execute(context.Background(), Request{Op: OpDecide, Yes: true})
	assert.ErrorIs(t, err, incident.ErrNoDecision)
}

func TestUseCase_Save(t *testing.T) {
	uc, saver := newUseCase(t)
	resp, err := uc.Execute(context.Background(), Request{Op: OpSave})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 1, saver.calls)
}

func TestUseCase_UnknownOp(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Execute(context.Background(), Request{Op: "rewind"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

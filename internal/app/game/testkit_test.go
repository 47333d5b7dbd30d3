package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/world"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

type fixedNames struct{ n int }

func (f *fixedNames) Next() (string, survival.Gender) {
	f.n++
	if f.n%2 == 0 {
		return "Bo", survival.GenderMale
	}
	return "Ada", survival.GenderFemale
}

type testGame struct {
	*Game
	clock *fakeClock
}

func newTestGame(t *testing.T, mutate func(*content.Tables)) *testGame {
	t.Helper()
	tables := contenttest.Tables()
	tables.Settings.IncidentRate = -1
	if mutate != nil {
		mutate(&tables)
	}
	cat, err := content.NewCatalog(tables, content.DefaultHooks())
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	ids := 0
	g := New(cat, Options{
		Clock: world.NewClock(world.ClockConfig{HourDuration: time.Second}),
		Now:   clock.Now,
		Seed:  42,
		Names: &fixedNames{},
		NewID: func() string {
			ids++
			return "id-" + string(rune('a'+ids-1))
		},
	})
	g.Start(clock.Now())
	return &testGame{Game: g, clock: clock}
}

func (tg *testGame) advance(d time.Duration) TickResult {
	return tg.Tick(tg.clock.Advance(d))
}

func (tg *testGame) first() *survival.Person {
	return tg.People()[0]
}

package incident

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
	"outpost/internal/domain/timer"
)

type stubEnv struct {
	cat   *content.Catalog
	rng   *rand.Rand
	flags map[string]bool
}

func (e *stubEnv) Catalog() *content.Catalog    { return e.cat }
func (e *stubEnv) Rand() *rand.Rand             { return e.rng }
func (e *stubEnv) HasBuilding(string) bool      { return false }
func (e *stubEnv) PossibleBuildings() []string  { return nil }
func (e *stubEnv) ResourceCount(string) float64 { return 0 }
func (e *stubEnv) Flag(name string) bool        { return e.flags[name] }
func (e *stubEnv) SetFlag(name string, on bool) { e.flags[name] = on }
func (e *stubEnv) KnownLocations() []string     { return nil }
func (e *stubEnv) Discover(string) bool         { return false }

type fixture struct {
	s     *Scheduler
	bus   *bus.Bus
	env   *stubEnv
	clock time.Time
	tm    *timer.Scheduler
}

func newFixture(t *testing.T, rate float64) *fixture {
	t.Helper()
	tables := contenttest.Tables()
	tables.Settings.IncidentRate = rate
	cat, err := content.NewCatalog(tables, content.DefaultHooks())
	require.NoError(t, err)

	f := &fixture{bus: bus.New(), clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	f.env = &stubEnv{cat: cat, rng: rand.New(rand.NewPCG(3, 4)), flags: map[string]bool{}}
	f.tm = timer.New(func() time.Time { return f.clock })
	f.s = New(cat, f.bus, f.tm, f.env, Config{HourDuration: time.Second})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
	f.tm.Fire(f.clock)
}

func TestAskIncident_BlocksRollsUntilDecided(t *testing.T) {
	f := newFixture(t, 1)
	var given []content.Grant
	f.bus.Subscribe(bus.TopicGive, func(p any) { given = append(given, p.(content.Grant)) })

	f.s.Start("traveler")
	assert.True(t, f.s.Blocked())
	assert.True(t, f.env.Flag(content.FlagPopup))

	_, ok := f.s.Roll(f.env.rng, 100)
	assert.False(t, ok)

	inst, err := f.s.Decide(true)
	require.NoError(t, err)
	assert.True(t, inst.Accepted)
	assert.False(t, f.env.Flag(content.FlagPopup))
	require.Len(t, given, 1)
	assert.Equal(t, "traveler", given[0].Initiator)

	assert.NotContains(t, f.s.Candidates(100), "traveler", "unique incidents never come back")
}

func TestDecide_WithoutPending(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.s.Decide(true)
	assert.ErrorIs(t, err, ErrNoDecision)
}

func TestDecline_EndsWithoutEffect(t *testing.T) {
	f := newFixture(t, 1)
	var given int
	var ended []Instance
	f.bus.Subscribe(bus.TopicGive, func(any) { given++ })
	f.bus.Subscribe(bus.TopicIncidentEnd, func(p any) { ended = append(ended, p.(Instance)) })

	f.s.Start("traveler")
	_, err := f.s.Decide(false)
	require.NoError(t, err)

	assert.Zero(t, given)
	require.Len(t, ended, 1)
	assert.False(t, ended[0].Accepted)
}

func TestTimedIncident_RunsToTimer(t *testing.T) {
	f := newFixture(t, 1)
	ended := 0
	f.bus.Subscribe(bus.TopicIncidentEnd, func(any) { ended++ })

	f.s.Start("acid-rain")
	assert.True(t, f.env.Flag("acid-rain"))
	assert.True(t, f.s.IsActive("acid-rain"))
	assert.NotContains(t, f.s.Candidates(100), "acid-rain")

	f.advance(3 * time.Second)
	assert.True(t, f.s.IsActive("acid-rain"))
	f.advance(time.Second)

	assert.False(t, f.s.IsActive("acid-rain"))
	assert.False(t, f.env.Flag("acid-rain"))
	assert.Equal(t, 1, ended)
}

func TestCandidates_SettleGate(t *testing.T) {
	f := newFixture(t, 1)
	assert.NotContains(t, f.s.Candidates(5), "drought")
	assert.Contains(t, f.s.Candidates(10), "drought")
}

func TestRoll_ZeroRateNeverFires(t *testing.T) {
	f := newFixture(t, -1)
	for i := 0; i < 100; i++ {
		_, ok := f.s.Roll(f.env.rng, 100)
		require.False(t, ok)
	}
}

func TestRoll_PicksEligible(t *testing.T) {
	f := newFixture(t, 1)
	inst, ok := f.s.Roll(f.env.rng, 0)
	require.True(t, ok)
	assert.Contains(t, []string{"acid-rain", "traveler"}, inst.ID)
}

func TestNeedsMultiplier(t *testing.T) {
	f := newFixture(t, 1)
	assert.Equal(t, 1.0, f.s.NeedsMultiplier("water"))
	f.s.Start("drought")
	assert.Equal(t, 2.0, f.s.NeedsMultiplier("water"))
	assert.Equal(t, 1.0, f.s.NeedsMultiplier("food"))
}

func TestSnapshotRestore_KeepsRemaining(t *testing.T) {
	f := newFixture(t, 1)
	f.s.Start("acid-rain")
	f.advance(time.Second)
	f.s.Start("traveler")

	saved := f.s.Snapshot()
	require.Len(t, saved, 2)
	assert.Equal(t, int64(3000), saved[0].RemainingMs)
	assert.True(t, saved[1].Pending)

	g := newFixture(t, 1)
	require.NoError(t, g.s.Restore(saved, []string{}))
	assert.True(t, g.s.IsActive("acid-rain"))
	_, pending := g.s.Pending()
	assert.True(t, pending)

	g.advance(2999 * time.Millisecond)
	assert.True(t, g.s.IsActive("acid-rain"))
	g.advance(time.Millisecond)
	assert.False(t, g.s.IsActive("acid-rain"))
}

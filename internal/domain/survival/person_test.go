package survival

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
)

func TestRefresh_SettledDrainAndStarving(t *testing.T) {
	w := newTestWorld(t)
	p := w.person()
	w.flags[content.FlagSettled] = true
	w.flags[content.FlagStarving] = true
	w.flags[content.FlagThirsty] = true

	p.Refresh(2)

	assert.InDelta(t, 91, p.Energy, 1e-9)
	assert.InDelta(t, 92, p.Life, 1e-9)
	assert.Equal(t, 2.0, p.Age)
	assert.Equal(t, 2.0, p.Idle)
}

func TestRefresh_UnsettledOnlyHeals(t *testing.T) {
	w := newTestWorld(t)
	p := w.person()
	p.Life = 50

	p.Refresh(3)

	assert.Equal(t, 100.0, p.Energy)
	assert.Equal(t, 53.0, p.Life)
	assert.Zero(t, p.Age)
}

func TestRefresh_SettledHealsWhenNothingHurts(t *testing.T) {
	w := newTestWorld(t)
	p := w.person()
	w.flags[content.FlagSettled] = true
	p.Life = 50

	p.Refresh(2)

	assert.InDelta(t, 97, p.Energy, 1e-9)
	assert.InDelta(t, 52, p.Life, 1e-9)

	w.flags[content.FlagThirsty] = true
	p.Refresh(1)
	assert.InDelta(t, 48, p.Life, 1e-9, "thirst stops healing")
}

func TestRefresh_EnergyOverflowHurtsAndDeathIsEdgeTriggered(t *testing.T) {
	w := newTestWorld(t)
	p := w.person("gather")
	w.flags[content.FlagSettled] = true
	w.flags[content.FlagStarving] = true
	deaths := 0
	w.bus.Subscribe(bus.TopicLoseSomeone, func(any) { deaths++ })

	p.Energy = 1
	p.Life = 5
	p.Refresh(1)
	assert.Equal(t, 0.0, p.Energy)
	assert.InDelta(t, 1.5, p.Life, 1e-9)
	assert.False(t, p.Dead())

	p.Refresh(1)
	require.True(t, p.Dead())
	assert.Equal(t, DeathCauseStarvation, p.Cause())

	assert.True(t, p.Die())
	assert.False(t, p.Die())
	assert.Equal(t, 1, deaths)
}

func TestRefresh_ClampsAtMax(t *testing.T) {
	w := newTestWorld(t)
	p := w.person("sleep")
	_, err := p.Click("sleep", "")
	require.NoError(t, err)

	p.Refresh(4)
	assert.Equal(t, float64(MaxVital), p.Energy)
	assert.Equal(t, float64(MaxVital), p.Life)
}

func TestRefresh_AcidRainHurtsOutdoors(t *testing.T) {
	w := newTestWorld(t)
	p := w.person("gather")
	w.flags[content.FlagSettled] = true
	w.flags["acid-rain"] = true
	_, err := p.Click("gather", "")
	require.NoError(t, err)

	p.Refresh(1)

	assert.InDelta(t, 94, p.Life, 1e-9)
	assert.InDelta(t, 93.5, p.Energy, 1e-9)
}

func TestDie_CancelsRunningActions(t *testing.T) {
	w := newTestWorld(t)
	w.ledger.Earn(3, "wood")
	p := w.person("build")
	_, err := p.Click("build", "tent")
	require.NoError(t, err)

	p.Die()

	assert.True(t, p.Dead())
	assert.False(t, w.buildings.InProgress("tent"))
	w.advanceHours(3)
	assert.False(t, w.buildings.IsBuildingDone("tent"))
	assert.Zero(t, w.timers.Len())
}

func TestSnapshotRestore_ResumesRunningAction(t *testing.T) {
	w := newTestWorld(t)
	w.ledger.Earn(2, "water")
	p := w.person("fetch", "gather")
	_, err := p.Click("fetch", "")
	require.NoError(t, err)
	w.advanceHours(1)

	saved := p.Snapshot()
	require.Len(t, saved.Actions, 2)
	fetch := saved.Actions[0]
	assert.Equal(t, "fetch", fetch.ID)
	assert.True(t, fetch.Running)
	assert.Equal(t, int64(3000), fetch.RemainingMs)
	assert.Equal(t, int64(1000), fetch.ElapsedMs)
	assert.Equal(t, 5.0, fetch.EnergyDrain)

	w2 := newTestWorld(t)
	q, err := RestorePerson(w2.deps, saved)
	require.NoError(t, err)
	busyWith, ok := q.BusyWith()
	require.True(t, ok)
	assert.Equal(t, "fetch", busyWith)
	a, _ := q.Action("fetch")
	assert.Equal(t, 1, a.Repeated)

	w2.advanceHours(3)
	assert.Equal(t, 1.0, w2.ledger.Count("food"))
	_, ok = q.BusyWith()
	assert.False(t, ok)
}

func TestRestorePerson_SkipsUnknownActions(t *testing.T) {
	w := newTestWorld(t)
	q, err := RestorePerson(w.deps, SavedPerson{ID: "x", Name: "X", Actions: []SavedAction{{ID: "gather"}, {ID: "teleport"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrUnknownID)
	assert.True(t, q.Owns("gather"))
	assert.False(t, q.Owns("teleport"))
}

func TestExpand(t *testing.T) {
	w := newTestWorld(t)
	p := w.person()
	got := Expand("@name sees @his @give at @location @unknown",
		p, map[string]string{"location": "cave"}, []content.Amount{{Qty: 2, ID: "wood"}}, w.cat)
	assert.Equal(t, "Ada sees her 2 Wood at cave @unknown", got)

	p.Gender = GenderOther
	assert.Equal(t, "they lost nothing", Expand("@he lost @give", p, nil, nil, w.cat))
}

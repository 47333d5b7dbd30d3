package survival

import (
	"math/rand/v2"
	"testing"
	"time"

	"outpost/internal/domain/building"
	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
	"outpost/internal/domain/ledger"
	"outpost/internal/domain/timer"
)

const testHour = time.Second

type testWorld struct {
	cat       *content.Catalog
	bus       *bus.Bus
	timers    *timer.Scheduler
	ledger    *ledger.Ledger
	buildings *building.Registry
	rng       *rand.Rand
	flags     map[string]bool
	known     []string
	perksUsed map[string]bool
	retired   map[string]bool
	now       time.Time
	deps      *Deps
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	w := &testWorld{
		cat:       contenttest.Catalog(),
		bus:       bus.New(),
		rng:       rand.New(rand.NewPCG(11, 13)),
		flags:     map[string]bool{},
		perksUsed: map[string]bool{},
		retired:   map[string]bool{},
		now:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	w.timers = timer.New(func() time.Time { return w.now })
	w.ledger = ledger.New(w.cat, w.bus, ledger.DefaultConfig())
	w.ledger.Attach(w.bus)
	w.buildings = building.New(w.cat, w.bus)
	w.buildings.Attach(w.bus)
	w.bus.Subscribe(bus.TopicPerk, func(p any) { w.perksUsed[p.(PerkGranted).PerkID] = true })
	w.deps = &Deps{
		Catalog:       w.cat,
		Bus:           w.bus,
		Timers:        w.timers,
		Ledger:        w.ledger,
		Env:           w,
		HourDuration:  testHour,
		PerkAvailable: func(id string) bool { return !w.perksUsed[id] },
		Retired:       func(id string) bool { return w.retired[id] },
		CancelBuild:   w.buildings.CancelBuild,
	}
	return w
}

func (w *testWorld) Catalog() *content.Catalog       { return w.cat }
func (w *testWorld) Rand() *rand.Rand                { return w.rng }
func (w *testWorld) HasBuilding(id string) bool      { return w.buildings.IsBuildingDone(id) }
func (w *testWorld) PossibleBuildings() []string     { return w.buildings.PossibleBuildings() }
func (w *testWorld) ResourceCount(id string) float64 { return w.ledger.Count(id) }
func (w *testWorld) Flag(name string) bool           { return w.flags[name] }
func (w *testWorld) SetFlag(name string, on bool)    { w.flags[name] = on }
func (w *testWorld) KnownLocations() []string        { return w.known }
func (w *testWorld) Discover(loc string) bool {
	for _, k := range w.known {
		if k == loc {
			return false
		}
	}
	w.known = append(w.known, loc)
	return true
}

func (w *testWorld) person(actions ...string) *Person {
	p := NewPerson(w.deps, "p1", "Ada", GenderFemale)
	p.AddActions(actions...)
	return p
}

func (w *testWorld) advanceHours(h float64) {
	w.now = w.now.Add(time.Duration(h * float64(testHour)))
	w.timers.Fire(w.now)
}

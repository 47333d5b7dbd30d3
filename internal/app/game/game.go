package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"outpost/internal/domain/building"
	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/incident"
	"outpost/internal/domain/ledger"
	"outpost/internal/domain/survival"
	"outpost/internal/domain/timer"
	"outpost/internal/domain/world"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrPaused        = errors.New("game is paused")
	ErrUnknownPerson = errors.New("unknown person")
)

// NameSource hands out names for newcomers without blocking.
type NameSource interface {
	Next() (string, survival.Gender)
}

type Options struct {
	Clock  world.Clock
	Now    func() time.Time
	Seed   uint64
	Logger *zap.Logger
	Names  NameSource
	NewID  func() string
	Ledger ledger.Config
}

// Game owns every piece of live state and is the only place that mutates it.
// It is not safe for concurrent use.
type Game struct {
	cat       *content.Catalog
	bus       *bus.Bus
	timers    *timer.Scheduler
	ledger    *ledger.Ledger
	buildings *building.Registry
	incidents *incident.Scheduler
	deps      *survival.Deps
	clock     world.Clock
	now       func() time.Time
	rng       *rand.Rand
	log       *zap.Logger
	names     NameSource
	newID     func() string

	flags          map[string]bool
	people         map[string]*survival.Person
	order          []string
	initialActions []string
	knownLocations []string
	usedPerks      map[string]bool
	retired        map[string]bool

	lastTick     time.Time
	carry        time.Duration
	hours        int
	settledHours float64
	over         bool
	won          bool
	dirty        bool
}

func New(cat *content.Catalog, opts Options) *Game {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Clock == (world.Clock{}) {
		opts.Clock = world.DefaultClock()
	}
	if opts.Names == nil {
		opts.Names = &numberedNames{}
	}
	if opts.Ledger == (ledger.Config{}) {
		opts.Ledger = ledger.DefaultConfig()
	}
	g := &Game{
		cat:       cat,
		bus:       bus.New(),
		clock:     opts.Clock,
		now:       opts.Now,
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		log:       opts.Logger,
		names:     opts.Names,
		newID:     opts.NewID,
		flags:     map[string]bool{},
		people:    map[string]*survival.Person{},
		usedPerks: map[string]bool{},
		retired:   map[string]bool{},
	}
	g.timers = timer.New(g.now)
	g.ledger = ledger.New(cat, g.bus, opts.Ledger)
	g.buildings = building.New(cat, g.bus)
	g.incidents = incident.New(cat, g.bus, g.timers, g, incident.Config{
		HourDuration: g.clock.HourDuration(),
		NewID:        g.newID,
	})
	g.deps = &survival.Deps{
		Catalog:       cat,
		Bus:           g.bus,
		Timers:        g.timers,
		Ledger:        g.ledger,
		Env:           g,
		HourDuration:  g.clock.HourDuration(),
		PerkAvailable: func(id string) bool { return !g.usedPerks[id] },
		Retired:       func(id string) bool { return g.retired[id] },
		CancelBuild:   g.buildings.CancelBuild,
	}
	g.wire()
	g.lastTick = g.now()
	return g
}

func (g *Game) wire() {
	g.ledger.Attach(g.bus)
	g.buildings.Attach(g.bus)

	g.bus.Subscribe(bus.TopicBuild, func(payload any) {
		if id, ok := payload.(string); ok {
			g.onBuild(id)
		}
	})
	g.bus.Subscribe(bus.TopicUnlock, func(payload any) {
		if ids, ok := payload.([]string); ok {
			g.unlockForAll(ids)
		}
	})
	g.bus.Subscribe(bus.TopicLock, func(payload any) {
		if ids, ok := payload.([]string); ok {
			g.lockForAll(ids)
		}
	})
	g.bus.Subscribe(bus.TopicActionEnd, func(payload any) {
		ev, ok := payload.(survival.ActionEnd)
		if !ok {
			return
		}
		if ev.Unique {
			g.retired[ev.ActionID] = true
		}
		g.dirty = true
		g.log.Debug("action finished", zap.String("person", ev.PersonID), zap.String("action", ev.ActionID), zap.String("log", ev.Log))
	})
	g.bus.Subscribe(bus.TopicClick, func(any) { g.dirty = true })
	g.bus.Subscribe(bus.TopicPerk, func(payload any) {
		if ev, ok := payload.(survival.PerkGranted); ok {
			g.usedPerks[ev.PerkID] = true
			g.log.Info("perk granted", zap.String("person", ev.PersonID), zap.String("perk", ev.PerkID))
		}
	})
	g.bus.Subscribe(bus.TopicIncidentStart, func(payload any) {
		if inst, ok := payload.(incident.Instance); ok {
			g.dirty = true
			g.log.Info("incident started", zap.String("incident", inst.ID), zap.String("uid", inst.UID))
		}
	})
	g.bus.Subscribe(bus.TopicIncidentEnd, func(payload any) {
		if inst, ok := payload.(incident.Instance); ok {
			g.dirty = true
			g.log.Info("incident ended", zap.String("incident", inst.ID), zap.Bool("accepted", inst.Accepted))
		}
	})
	g.bus.Subscribe(bus.TopicRunsOut, func(payload any) {
		if ev, ok := payload.(ledger.RunsOut); ok {
			g.log.Info("resource ran out", zap.String("resource", ev.ID), zap.Float64("deficit", ev.Deficit))
		}
	})
}

// Start seeds a new game with the configured resources and people.
func (g *Game) Start(now time.Time) {
	s := g.cat.Settings()
	g.lastTick = now
	g.initialActions = append([]string(nil), s.InitialActions...)
	g.ledger.EarnAll(s.InitialResources)
	for i := 0; i < s.InitialPeople; i++ {
		p := g.spawn()
		if i == 0 && s.FirstPerk != "" && !g.usedPerks[s.FirstPerk] {
			p.GrantPerk(s.FirstPerk)
		}
	}
	g.refreshPeople(0)
	g.dirty = true
	g.log.Info("game started", zap.Int("people", len(g.order)), zap.String("version", s.Version))
}

func (g *Game) spawn() *survival.Person {
	name, gender := g.names.Next()
	p := survival.NewPerson(g.deps, g.newID(), name, gender)
	p.AddActions(g.grantable(g.initialActions)...)
	g.people[p.ID] = p
	g.order = append(g.order, p.ID)
	return p
}

func (g *Game) grantable(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !g.retired[id] {
			out = append(out, id)
		}
	}
	return out
}

func (g *Game) unlockForAll(ids []string) {
	ids = g.grantable(ids)
	for _, id := range ids {
		if !contains(g.initialActions, id) {
			g.initialActions = append(g.initialActions, id)
		}
	}
	for _, pid := range g.order {
		g.people[pid].AddActions(ids...)
	}
}

func (g *Game) lockForAll(ids []string) {
	g.initialActions = without(g.initialActions, ids)
	for _, pid := range g.order {
		g.people[pid].RemoveActions(ids...)
	}
}

func (g *Game) onBuild(id string) {
	s := g.cat.Settings()
	g.dirty = true
	g.log.Info("building completed", zap.String("building", id))
	if id == s.SettleBuilding && !g.flags[content.FlagSettled] {
		g.flags[content.FlagSettled] = true
		g.log.Info("settled", zap.Int("hours", g.hours))
	}
	if s.WinBuilding != "" && id == s.WinBuilding && !g.over {
		g.over = true
		g.won = true
		g.timers.StopAll()
		g.bus.Publish(bus.TopicWin, nil)
		g.log.Info("game won", zap.Int("hours", g.hours))
	}
}

func (g *Game) Bus() *bus.Bus                  { return g.bus }
func (g *Game) Over() bool                     { return g.over }
func (g *Game) Won() bool                      { return g.won }
func (g *Game) Paused() bool                   { return g.flags[content.FlagPaused] }
func (g *Game) Hours() int                     { return g.hours }
func (g *Game) Ledger() *ledger.Ledger         { return g.ledger }
func (g *Game) Buildings() *building.Registry  { return g.buildings }
func (g *Game) Incidents() *incident.Scheduler { return g.incidents }

// TakeDirty reports whether state changed since the last call and clears the mark.
func (g *Game) TakeDirty() bool {
	d := g.dirty
	g.dirty = false
	return d
}

func (g *Game) Person(id string) (*survival.Person, bool) {
	p, ok := g.people[id]
	return p, ok
}

// People lists living people in arrival order.
func (g *Game) People() []*survival.Person {
	out := make([]*survival.Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.people[id])
	}
	return out
}

func (g *Game) Retired(actionID string) bool { return g.retired[actionID] }

// Click starts an action for a person.
func (g *Game) Click(personID, actionID, optionID string) (survival.Click, error) {
	if g.over {
		return survival.Click{}, ErrGameOver
	}
	if g.Paused() {
		return survival.Click{}, ErrPaused
	}
	p, ok := g.people[personID]
	if !ok {
		return survival.Click{}, fmt.Errorf("%w: %s", ErrUnknownPerson, personID)
	}
	return p.Click(actionID, optionID)
}

// Decide answers the pending incident prompt.
func (g *Game) Decide(yes bool) (incident.Instance, error) {
	if g.over {
		return incident.Instance{}, ErrGameOver
	}
	inst, err := g.incidents.Decide(yes)
	if err != nil {
		return incident.Instance{}, err
	}
	g.dirty = true
	return inst, nil
}

// Pause freezes every timer after accounting for time elapsed so far. A
// second call is a no-op.
func (g *Game) Pause(now time.Time) bool {
	if g.Paused() {
		return false
	}
	g.Tick(now)
	g.flags[content.FlagPaused] = true
	g.timers.StopAll()
	g.log.Info("paused")
	return true
}

func (g *Game) Resume(now time.Time) bool {
	if !g.Paused() {
		return false
	}
	delete(g.flags, content.FlagPaused)
	g.lastTick = now
	if !g.over {
		g.timers.RestartAll(now)
	}
	g.log.Info("resumed")
	return true
}

// content.Env

func (g *Game) Catalog() *content.Catalog { return g.cat }
func (g *Game) Rand() *rand.Rand          { return g.rng }

func (g *Game) HasBuilding(id string) bool { return g.buildings.IsBuildingDone(id) }

func (g *Game) PossibleBuildings() []string { return g.buildings.PossibleBuildings() }

func (g *Game) ResourceCount(id string) float64 { return g.ledger.Count(id) }

func (g *Game) Flag(name string) bool { return g.flags[name] }

func (g *Game) SetFlag(name string, on bool) {
	if on {
		g.flags[name] = true
		return
	}
	delete(g.flags, name)
}

func (g *Game) KnownLocations() []string {
	return append([]string(nil), g.knownLocations...)
}

func (g *Game) Discover(location string) bool {
	if contains(g.knownLocations, location) {
		return false
	}
	g.knownLocations = append(g.knownLocations, location)
	g.log.Info("location discovered", zap.String("location", location))
	return true
}

func (g *Game) flagList() []string {
	out := make([]string, 0, len(g.flags))
	for f, on := range g.flags {
		if on {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

type numberedNames struct{ n int }

func (s *numberedNames) Next() (string, survival.Gender) {
	s.n++
	return fmt.Sprintf("Survivor %d", s.n), survival.GenderOther
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func without(list, drop []string) []string {
	out := list[:0:0]
	for _, x := range list {
		if !contains(drop, x) {
			out = append(out, x)
		}
	}
	return out
}

package incident

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/timer"
)

var ErrNoDecision = errors.New("no incident awaits a decision")

// Instance is one occurrence of an incident definition.
type Instance struct {
	UID      string `json:"uid"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Accepted bool   `json:"accepted"`
}

// Saved is the persisted form of a live or pending incident.
type Saved struct {
	UID         string `json:"uid"`
	ID          string `json:"id"`
	RemainingMs int64  `json:"remainingMs,omitempty"`
	Pending     bool   `json:"pending,omitempty"`
}

type running struct {
	Instance
	timer    timer.ID
	hasTimer bool
}

type Config struct {
	HourDuration time.Duration
	NewID        func() string
}

type Scheduler struct {
	cat      *content.Catalog
	bus      *bus.Bus
	timers   *timer.Scheduler
	env      content.Env
	cfg      Config
	active   map[string]*running
	order    []string
	pending  *Instance
	resolved map[string]bool
}

func New(cat *content.Catalog, b *bus.Bus, timers *timer.Scheduler, env content.Env, cfg Config) *Scheduler {
	if cfg.HourDuration <= 0 {
		cfg.HourDuration = time.Second
	}
	if cfg.NewID == nil {
		n := 0
		cfg.NewID = func() string {
			n++
			return fmt.Sprintf("incident-%d", n)
		}
	}
	return &Scheduler{
		cat:      cat,
		bus:      b,
		timers:   timers,
		env:      env,
		cfg:      cfg,
		active:   map[string]*running{},
		resolved: map[string]bool{},
	}
}

// Roll tries to start one incident. Nothing happens while a decision is
// pending or when the global roll fails.
func (s *Scheduler) Roll(r *rand.Rand, settledHours float64) (Instance, bool) {
	if s.Blocked() {
		return Instance{}, false
	}
	if r.Float64() >= s.cat.Settings().IncidentRate {
		return Instance{}, false
	}
	candidates := s.Candidates(settledHours)
	id := content.PickWeighted(r, candidates, func(id string) float64 {
		return s.cat.MustIncident(id).DropRate
	})
	if id == "" {
		return Instance{}, false
	}
	return s.Start(id), true
}

// Candidates lists incidents eligible to start now.
func (s *Scheduler) Candidates(settledHours float64) []string {
	var out []string
	for _, id := range s.cat.IncidentIDs() {
		def := s.cat.MustIncident(id)
		if def.After > settledHours || s.active[id] != nil || s.resolved[id] {
			continue
		}
		if s.pending != nil && s.pending.ID == id {
			continue
		}
		if !s.cat.Hooks().Check(def.Condition, s.env) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *Scheduler) Blocked() bool {
	return s.pending != nil || s.env.Flag(content.FlagPopup)
}

// Start begins an incident, or parks it for a decision when it asks.
func (s *Scheduler) Start(id string) Instance {
	def := s.cat.MustIncident(id)
	inst := Instance{UID: s.cfg.NewID(), ID: id, Name: def.Name}
	if def.Ask {
		s.pending = &inst
		s.env.SetFlag(content.FlagPopup, true)
		s.publish(bus.TopicDecision, inst)
		return inst
	}
	inst.Accepted = true
	s.begin(inst, s.duration(def))
	return inst
}

func (s *Scheduler) Pending() (Instance, bool) {
	if s.pending == nil {
		return Instance{}, false
	}
	return *s.pending, true
}

// Decide resolves the pending incident.
func (s *Scheduler) Decide(yes bool) (Instance, error) {
	if s.pending == nil {
		return Instance{}, ErrNoDecision
	}
	inst := *s.pending
	s.pending = nil
	s.env.SetFlag(content.FlagPopup, false)
	def := s.cat.MustIncident(inst.ID)
	if !yes {
		if def.Unique {
			s.resolved[inst.ID] = true
		}
		s.publish(bus.TopicIncidentEnd, inst)
		return inst, nil
	}
	inst.Accepted = true
	s.begin(inst, s.duration(def))
	return inst, nil
}

func (s *Scheduler) duration(def content.IncidentDefinition) time.Duration {
	if def.Time <= 0 {
		return 0
	}
	hours := def.Time
	if def.TimeDelta > 0 {
		hours += (s.env.Rand().Float64()*2 - 1) * def.TimeDelta
	}
	if hours < 0 {
		hours = 0
	}
	return time.Duration(hours * float64(s.cfg.HourDuration))
}

func (s *Scheduler) begin(inst Instance, d time.Duration) {
	def := s.cat.MustIncident(inst.ID)
	run := &running{Instance: inst}
	s.active[inst.ID] = run
	s.order = append(s.order, inst.ID)
	for _, f := range def.Flags {
		s.env.SetFlag(f, true)
	}
	for _, f := range def.Sets {
		s.env.SetFlag(f, true)
	}
	if len(def.Give) > 0 {
		s.publish(bus.TopicGive, content.Grant{Amounts: def.Give, Initiator: inst.ID})
	}
	if len(def.Use) > 0 {
		s.publish(bus.TopicUse, def.Use)
	}
	if def.OnStart != "" {
		fn, _ := s.cat.Hooks().Incident(def.OnStart)
		fn(s.env)
	}
	s.publish(bus.TopicIncidentStart, inst)
	if def.Time <= 0 {
		s.end(inst.ID)
		return
	}
	s.arm(run, d)
}

func (s *Scheduler) arm(run *running, d time.Duration) {
	id := run.ID
	run.timer = s.timers.Schedule(d, func() { s.end(id) })
	run.hasTimer = true
}

func (s *Scheduler) end(id string) {
	run, ok := s.active[id]
	if !ok {
		return
	}
	delete(s.active, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	def := s.cat.MustIncident(id)
	for _, f := range def.Flags {
		if !s.flagHeldByOther(f) {
			s.env.SetFlag(f, false)
		}
	}
	if def.OnEnd != "" {
		fn, _ := s.cat.Hooks().Incident(def.OnEnd)
		fn(s.env)
	}
	if def.Unique {
		s.resolved[id] = true
	}
	s.publish(bus.TopicIncidentEnd, run.Instance)
}

func (s *Scheduler) flagHeldByOther(flag string) bool {
	for _, id := range s.order {
		for _, f := range s.cat.MustIncident(id).Flags {
			if f == flag {
				return true
			}
		}
	}
	return false
}

// NeedsMultiplier is the product of every active incident's scale on resource.
func (s *Scheduler) NeedsMultiplier(resource string) float64 {
	m := 1.0
	for _, id := range s.order {
		if f, ok := s.cat.MustIncident(id).Needs[resource]; ok {
			m *= f
		}
	}
	return m
}

func (s *Scheduler) Active() []Instance {
	out := make([]Instance, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.active[id].Instance)
	}
	return out
}

func (s *Scheduler) IsActive(id string) bool {
	return s.active[id] != nil
}

func (s *Scheduler) Resolved() []string {
	var out []string
	for _, id := range s.cat.IncidentIDs() {
		if s.resolved[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *Scheduler) Snapshot() []Saved {
	var out []Saved
	for _, id := range s.order {
		run := s.active[id]
		sv := Saved{UID: run.UID, ID: run.ID}
		if run.hasTimer {
			if rem, ok := s.timers.Remaining(run.timer); ok {
				sv.RemainingMs = rem.Milliseconds()
			}
		}
		out = append(out, sv)
	}
	if s.pending != nil {
		out = append(out, Saved{UID: s.pending.UID, ID: s.pending.ID, Pending: true})
	}
	return out
}

// Restore re-arms saved incidents without replaying their start effects.
func (s *Scheduler) Restore(saved []Saved, resolved []string) error {
	for _, run := range s.active {
		if run.hasTimer {
			s.timers.Cancel(run.timer)
		}
	}
	s.active = map[string]*running{}
	s.order = nil
	s.pending = nil
	s.resolved = map[string]bool{}
	var missing []string
	for _, id := range resolved {
		if _, ok := s.cat.Incident(id); !ok {
			missing = append(missing, id)
			continue
		}
		s.resolved[id] = true
	}
	for _, sv := range saved {
		def, ok := s.cat.Incident(sv.ID)
		if !ok {
			missing = append(missing, sv.ID)
			continue
		}
		inst := Instance{UID: sv.UID, ID: sv.ID, Name: def.Name}
		if sv.Pending {
			s.pending = &inst
			s.env.SetFlag(content.FlagPopup, true)
			continue
		}
		inst.Accepted = true
		run := &running{Instance: inst}
		s.active[sv.ID] = run
		s.order = append(s.order, sv.ID)
		if def.Time > 0 {
			s.arm(run, time.Duration(sv.RemainingMs)*time.Millisecond)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: incidents %v", content.ErrUnknownID, missing)
	}
	return nil
}

func (s *Scheduler) publish(t bus.Topic, payload any) {
	if s.bus != nil {
		s.bus.Publish(t, payload)
	}
}

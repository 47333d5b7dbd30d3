package content

import (
	"math/rand/v2"
	"sort"
	"strings"
)

// Env is the read and narrow write surface that content hooks see.
type Env interface {
	Catalog() *Catalog
	Rand() *rand.Rand
	HasBuilding(id string) bool
	PossibleBuildings() []string
	ResourceCount(id string) float64
	Flag(name string) bool
	SetFlag(name string, on bool)
	KnownLocations() []string
	Discover(location string) bool
}

// Effect collects what an effect hook contributes to an action's resolution.
// Vars feed @name substitution in log lines.
type Effect struct {
	Vars map[string]string
	Give []Amount
}

func (fx *Effect) Set(key, value string) {
	if fx.Vars == nil {
		fx.Vars = map[string]string{}
	}
	fx.Vars[key] = value
}

type (
	OptionsFunc   func(env Env) []string
	ConditionFunc func(env Env) bool
	EffectFunc    func(env Env, fx *Effect)
	IncidentFunc  func(env Env)
)

// Hooks resolves hook names used by content to code.
type Hooks struct {
	options    map[string]OptionsFunc
	conditions map[string]ConditionFunc
	effects    map[string]EffectFunc
	incidents  map[string]IncidentFunc
}

func NewHooks() *Hooks {
	return &Hooks{
		options:    map[string]OptionsFunc{},
		conditions: map[string]ConditionFunc{},
		effects:    map[string]EffectFunc{},
		incidents:  map[string]IncidentFunc{},
	}
}

// DefaultHooks returns the hook set shipped with the game.
func DefaultHooks() *Hooks {
	h := NewHooks()
	h.RegisterOptions("buildable", func(env Env) []string { return env.PossibleBuildings() })
	h.RegisterOptions("craftable", craftable)
	h.RegisterEffect("explore", func(env Env, fx *Effect) { fx.Set("location", discover(env)) })
	h.RegisterIncident("discover", func(env Env) { discover(env) })
	h.RegisterCondition("explorable", func(env Env) bool {
		return len(env.KnownLocations()) < len(env.Catalog().Settings().Locations)
	})
	return h
}

func (h *Hooks) RegisterOptions(name string, fn OptionsFunc)     { h.options[name] = fn }
func (h *Hooks) RegisterCondition(name string, fn ConditionFunc) { h.conditions[name] = fn }
func (h *Hooks) RegisterEffect(name string, fn EffectFunc)       { h.effects[name] = fn }
func (h *Hooks) RegisterIncident(name string, fn IncidentFunc)   { h.incidents[name] = fn }

func (h *Hooks) Options(name string) (OptionsFunc, bool) {
	fn, ok := h.options[name]
	return fn, ok
}

func (h *Hooks) Effect(name string) (EffectFunc, bool) {
	fn, ok := h.effects[name]
	return fn, ok
}

func (h *Hooks) Incident(name string) (IncidentFunc, bool) {
	fn, ok := h.incidents[name]
	return fn, ok
}

// Condition resolves a registered predicate or one of the inline forms
// "flag:NAME", "!flag:NAME" and "has:BUILDING".
func (h *Hooks) Condition(name string) (ConditionFunc, bool) {
	if fn, ok := h.conditions[name]; ok {
		return fn, true
	}
	switch {
	case strings.HasPrefix(name, "flag:"):
		flag := strings.TrimPrefix(name, "flag:")
		return func(env Env) bool { return env.Flag(flag) }, flag != ""
	case strings.HasPrefix(name, "!flag:"):
		flag := strings.TrimPrefix(name, "!flag:")
		return func(env Env) bool { return !env.Flag(flag) }, flag != ""
	case strings.HasPrefix(name, "has:"):
		id := strings.TrimPrefix(name, "has:")
		return func(env Env) bool { return env.HasBuilding(id) }, id != ""
	}
	return nil, false
}

// Check evaluates a condition by name. An empty name always holds.
func (h *Hooks) Check(name string, env Env) bool {
	if name == "" {
		return true
	}
	fn, ok := h.Condition(name)
	if !ok {
		panic("content: unknown condition " + name)
	}
	return fn(env)
}

func craftable(env Env) []string {
	cat := env.Catalog()
	var out []string
	for _, id := range cat.ResourceIDs() {
		r := cat.MustResource(id)
		if !r.Craftable() {
			continue
		}
		if r.IfHas != "" && !env.HasBuilding(r.IfHas) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func discover(env Env) string {
	known := map[string]bool{}
	for _, l := range env.KnownLocations() {
		known[l] = true
	}
	var fresh []string
	for _, l := range env.Catalog().Settings().Locations {
		if !known[l] {
			fresh = append(fresh, l)
		}
	}
	if len(fresh) == 0 {
		return "nothing new"
	}
	sort.Strings(fresh)
	loc := fresh[env.Rand().IntN(len(fresh))]
	env.Discover(loc)
	return loc
}

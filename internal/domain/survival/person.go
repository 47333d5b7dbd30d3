package survival

import (
	"math"
	"sort"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
)

type busy struct {
	ActionID string
	Drain    float64
	// Owed is the energy cost not charged yet. The action's end settles it.
	Owed float64
}

// charge takes up to amount from what the running action still owes. Owed
// is negative for actions that restore energy.
func (b *busy) charge(amount float64) float64 {
	if math.Abs(amount) > math.Abs(b.Owed) {
		amount = b.Owed
	}
	b.Owed -= amount
	return amount
}

// Person is an agent with vitals, a set of owned actions and at most one perk.
type Person struct {
	ID     string
	Name   string
	Gender Gender
	Energy float64
	Life   float64
	Age    float64
	Idle   float64
	Perk   string

	deps    *Deps
	busy    *busy
	actions map[string]*Action
	dead    bool
	buried  bool
	cause   DeathCause
}

func NewPerson(deps *Deps, id, name string, gender Gender) *Person {
	return &Person{
		ID:      id,
		Name:    name,
		Gender:  gender,
		Energy:  MaxVital,
		Life:    MaxVital,
		deps:    deps,
		actions: map[string]*Action{},
	}
}

func (p *Person) Tired() bool { return p.Energy <= 0 }
func (p *Person) Dead() bool  { return p.dead }

func (p *Person) Cause() DeathCause { return p.cause }

// BusyWith returns the running action id, if any.
func (p *Person) BusyWith() (string, bool) {
	if p.busy == nil {
		return "", false
	}
	return p.busy.ActionID, true
}

func (p *Person) Drain() float64 {
	if p.busy == nil {
		return 0
	}
	return p.busy.Drain
}

// Owed is the energy the running action has yet to charge.
func (p *Person) Owed() float64 {
	if p.busy == nil {
		return 0
	}
	return p.busy.Owed
}

// AddActions grants actions the person does not own yet and reports how many
// were new. Retired unique actions are skipped.
func (p *Person) AddActions(ids ...string) int {
	added := 0
	for _, id := range ids {
		if _, ok := p.actions[id]; ok {
			continue
		}
		if p.deps.Retired != nil && p.deps.Retired(id) {
			continue
		}
		p.deps.Catalog.MustAction(id)
		a := newAction(p, id)
		p.actions[id] = a
		a.refresh()
		added++
	}
	return added
}

// RemoveActions destroys owned actions, cancelling them first when running.
func (p *Person) RemoveActions(ids ...string) {
	for _, id := range ids {
		a, ok := p.actions[id]
		if !ok {
			continue
		}
		a.cancel()
		delete(p.actions, id)
	}
}

func (p *Person) Action(id string) (*Action, bool) {
	a, ok := p.actions[id]
	return a, ok
}

func (p *Person) Owns(id string) bool {
	_, ok := p.actions[id]
	return ok
}

// Actions lists owned actions by display order, then id.
func (p *Person) Actions() []*Action {
	out := make([]*Action, 0, len(p.actions))
	for _, a := range p.actions {
		out = append(out, a)
	}
	cat := p.deps.Catalog
	sort.Slice(out, func(i, j int) bool {
		oi, oj := cat.MustAction(out[i].ID).Order, cat.MustAction(out[j].ID).Order
		if oi != oj {
			return oi < oj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Click starts an owned action, optionally with a chosen option.
func (p *Person) Click(actionID, optionID string) (Click, error) {
	if p.dead {
		return Click{}, ErrDead
	}
	a, ok := p.actions[actionID]
	if !ok {
		return Click{}, ErrUnknownAction
	}
	return a.Click(optionID)
}

// Refresh re-evaluates every lock and advances vitals by whole hours.
func (p *Person) Refresh(hours int) {
	if p.dead {
		return
	}
	defer p.refreshLocks()
	if hours <= 0 {
		return
	}
	d := p.deps
	env := d.Env
	settings := d.Catalog.Settings()
	h := float64(hours)
	p.cause = ""

	if p.busy != nil {
		p.Energy -= p.busy.charge(p.busy.Drain * h)
	}

	starving := env.Flag(content.FlagStarving)
	thirsty := env.Flag(content.FlagThirsty)
	hurt := false
	if env.Flag(content.FlagSettled) {
		p.Age += h
		if p.busy == nil {
			p.Idle += h
		}
		drain := BaseEnergyDrain * h
		if starving {
			drain *= StarvingMultiplier
			p.cause = DeathCauseStarvation
		}
		p.Energy -= drain
		if thirsty {
			p.Life -= ThirstLifeDrain * h
			p.cause = DeathCauseThirst
		}
		if env.Flag(settings.AcidFlag) && p.outdoors() {
			p.Life -= AcidLifeDrain * h
			p.cause = DeathCauseAcid
			hurt = true
		}
	}
	// Healing does not depend on being settled: any rested person who is
	// fed, watered and sheltered from acid regains life.
	if !starving && !thirsty && !hurt && p.Energy > RestedEnergy {
		p.Life += HealPerHour * h
	}
	if p.Energy < 0 && p.cause == "" {
		p.cause = DeathCauseExhaustion
	}
	p.clamp()
}

func (p *Person) refreshLocks() {
	for _, a := range p.actions {
		a.refresh()
	}
}

func (p *Person) outdoors() bool {
	if p.busy == nil {
		return false
	}
	a, ok := p.actions[p.busy.ActionID]
	if !ok {
		return false
	}
	return a.Merged(a.chosen).Outdoor
}

// clamp keeps vitals at or below the maximum and turns an energy deficit
// into life damage. Death is set once, when life goes below zero.
func (p *Person) clamp() {
	if p.Energy > MaxVital {
		p.Energy = MaxVital
	}
	if p.Energy < 0 {
		p.Life += p.Energy
		p.Energy = 0
	}
	if p.Life > MaxVital {
		p.Life = MaxVital
	}
	if p.Life < 0 && !p.dead {
		p.dead = true
		if p.cause == "" {
			p.cause = DeathCauseUnknown
		}
	}
}

// Die finalizes a dead person once: running actions are cancelled and
// lose-someone is published. Later calls report false.
func (p *Person) Die() bool {
	if !p.dead {
		p.Life = -1
		p.dead = true
		if p.cause == "" {
			p.cause = DeathCauseUnknown
		}
	}
	if p.buried {
		return false
	}
	p.buried = true
	for _, a := range p.actions {
		a.cancel()
	}
	p.busy = nil
	p.deps.Bus.Publish(bus.TopicLoseSomeone, Death{PersonID: p.ID, Name: p.Name, Cause: p.cause})
	return true
}

func (p *Person) perkTimeBonus(actionID string) float64 {
	if p.Perk == "" {
		return 0
	}
	def, ok := p.deps.Catalog.Perk(p.Perk)
	if !ok || !def.Applies(actionID) {
		return 0
	}
	return def.TimeBonus
}

// RollForPerk may grant a perk after an action completed repeated times.
// Perks whose completion ratio reached one compete in a draw weighted by
// that ratio.
func (p *Person) RollForPerk(actionID string, repeated int) (string, bool) {
	if p.Perk != "" || p.dead {
		return "", false
	}
	d := p.deps
	ratios := map[string]float64{}
	var candidates []string
	for _, id := range d.Catalog.PerkIDs() {
		if d.PerkAvailable != nil && !d.PerkAvailable(id) {
			continue
		}
		def := d.Catalog.MustPerk(id)
		if !def.Applies(actionID) || !d.Catalog.Hooks().Check(def.Condition, d.Env) {
			continue
		}
		ratio := float64(repeated) / float64(def.Iteration)
		if ratio < 1 {
			continue
		}
		ratios[id] = ratio
		candidates = append(candidates, id)
	}
	id := content.PickWeighted(d.Env.Rand(), candidates, func(id string) float64 { return ratios[id] })
	if id == "" {
		return "", false
	}
	p.GrantPerk(id)
	return id, true
}

// GrantPerk gives the perk and its unlocks, and announces it on the perk topic.
func (p *Person) GrantPerk(id string) {
	def := p.deps.Catalog.MustPerk(id)
	p.Perk = id
	p.AddActions(def.Unlock...)
	p.deps.Bus.Publish(bus.TopicPerk, PerkGranted{PersonID: p.ID, PerkID: id})
}

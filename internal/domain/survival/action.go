package survival

import (
	"time"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/timer"
)

// Action is one person's instance of an action definition, or an option
// under such an action. Options never run on their own: clicking one starts
// the parent with that option chosen.
type Action struct {
	ID       string
	Locked   bool
	Repeated int

	owner  *Person
	parent *Action

	options     map[string]*Action
	optionOrder []string

	running bool
	timer   timer.ID
	chosen  string
	total   time.Duration
}

func newAction(owner *Person, id string) *Action {
	return &Action{ID: id, owner: owner}
}

func (a *Action) deps() *Deps { return a.owner.deps }

func (a *Action) Running() bool    { return a.running }
func (a *Action) IsOption() bool   { return a.parent != nil }
func (a *Action) ChosenID() string { return a.chosen }

// Remaining is the time left on a running action.
func (a *Action) Remaining() time.Duration {
	if !a.running {
		return 0
	}
	rem, _ := a.deps().Timers.Remaining(a.timer)
	return rem
}

func (a *Action) Total() time.Duration { return a.total }

// Options lists the currently offered options in resolver order.
func (a *Action) Options() []*Action {
	out := make([]*Action, 0, len(a.optionOrder))
	for _, id := range a.optionOrder {
		out = append(out, a.options[id])
	}
	return out
}

func (a *Action) Option(id string) (*Action, bool) {
	o, ok := a.options[id]
	return o, ok
}

func (a *Action) definition() content.ActionDefinition {
	return a.deps().Catalog.MustAction(a.ID)
}

// Merged is the resolved behavior for the given option.
func (a *Action) Merged(optionID string) content.Overlay {
	if a.parent != nil {
		return a.parent.Merged(a.ID)
	}
	return a.deps().Catalog.Merge(a.ID, optionID)
}

// blocked covers the reasons that do not depend on resources.
func (a *Action) blocked(m content.Overlay) bool {
	d := a.deps()
	if a.owner.Tired() && m.EnergyCost() > 0 {
		return true
	}
	if m.Outdoor && d.Env.Flag(d.Catalog.Settings().OutageFlag) {
		return true
	}
	return !d.Catalog.Hooks().Check(m.Condition, d.Env)
}

// refresh recomputes the lock state, and for option-bearing actions the
// option set. Options that are no longer offered are dropped here.
func (a *Action) refresh() {
	if a.parent != nil {
		return
	}
	d := a.deps()
	def := a.definition()
	parent := d.Catalog.Merge(a.ID, "")
	base := a.blocked(parent)
	if def.Options == "" {
		a.Locked = base || !d.Ledger.HasAll(parent.Consume)
		return
	}

	a.refreshOptions(def.Options)
	anyOpen := false
	for _, id := range a.optionOrder {
		opt := a.options[id]
		m := d.Catalog.Merge(a.ID, id)
		opt.Locked = base || a.blocked(m) || !d.Ledger.HasAll(m.Consume)
		if !opt.Locked {
			anyOpen = true
		}
	}
	a.Locked = base || !anyOpen
}

func (a *Action) refreshOptions(hook string) {
	d := a.deps()
	fn, _ := d.Catalog.Hooks().Options(hook)
	ids := fn(d.Env)

	if a.options == nil {
		a.options = map[string]*Action{}
	}
	seen := make(map[string]bool, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] || !d.Catalog.KnownOption(id) {
			continue
		}
		seen[id] = true
		order = append(order, id)
		if _, ok := a.options[id]; !ok {
			a.options[id] = &Action{ID: id, owner: a.owner, parent: a}
		}
	}
	for id := range a.options {
		if !seen[id] {
			delete(a.options, id)
		}
	}
	a.optionOrder = order
}

// Click starts the action. Clicking an option starts its parent with it.
func (a *Action) Click(optionID string) (Click, error) {
	if a.parent != nil {
		return a.parent.Click(a.ID)
	}
	o := a.owner
	if o.dead {
		return Click{}, ErrDead
	}
	if o.busy != nil {
		return Click{}, ErrBusy
	}
	a.refresh()
	def := a.definition()
	switch {
	case def.Options != "" && optionID == "":
		return Click{}, ErrOptionRequired
	case def.Options != "":
		opt, ok := a.options[optionID]
		if !ok || opt.Locked {
			return Click{}, ErrLocked
		}
	case optionID != "":
		return Click{}, ErrUnknownAction
	}
	if a.Locked {
		return Click{}, ErrLocked
	}
	return a.start(optionID), nil
}

func (a *Action) start(optionID string) Click {
	d := a.deps()
	o := a.owner
	m := d.Catalog.Merge(a.ID, optionID)

	if len(m.Consume) > 0 {
		d.Bus.Publish(bus.TopicUse, m.Consume)
	}
	if m.Build != "" {
		d.Bus.Publish(bus.TopicStartBuild, m.Build)
	}
	a.Repeated++

	hours := a.hours(m)
	energy := m.EnergyCost()
	drain, owed := 0.0, 0.0
	if hours > 0 {
		drain, owed = energy/hours, energy
	} else {
		o.Energy -= energy
		o.clamp()
	}
	o.busy = &busy{ActionID: a.ID, Drain: drain, Owed: owed}

	a.running = true
	a.chosen = optionID
	a.total = time.Duration(hours * float64(d.HourDuration))
	a.timer = d.Timers.Schedule(a.total, a.end)

	ev := Click{
		PersonID: o.ID,
		ActionID: a.ID,
		OptionID: optionID,
		Name:     m.Name,
		Hours:    hours,
		Consume:  m.Consume,
		Build:    m.Build,
	}
	d.Bus.Publish(bus.TopicClick, ev)
	return ev
}

// hours is time plus or minus jitter, shortened by content and perk bonuses.
func (a *Action) hours(m content.Overlay) float64 {
	h := m.Time
	if m.TimeDelta > 0 {
		h += (a.deps().Env.Rand().Float64()*2 - 1) * m.TimeDelta
	}
	bonus := m.TimeBonus + a.owner.perkTimeBonus(a.ID)
	if bonus > MaxTimeBonus {
		bonus = MaxTimeBonus
	}
	if bonus > 0 {
		h *= 1 - bonus
	}
	if h < 0 {
		h = 0
	}
	return h
}

// end resolves a finished action. The order is fixed: effect, rewards,
// unlocks, locks, build, log, perk roll.
func (a *Action) end() {
	if !a.running {
		return
	}
	d := a.deps()
	o := a.owner
	optionID := a.chosen
	a.running = false
	a.chosen = ""
	a.total = 0
	if o.busy != nil {
		// Hours between the last refresh and the timer are charged here.
		o.Energy -= o.busy.charge(o.busy.Owed)
		o.clamp()
	}
	o.busy = nil

	m := d.Catalog.Merge(a.ID, optionID)
	settings := d.Catalog.Settings()

	fx := content.Effect{}
	if m.Effect != "" {
		fn, _ := d.Catalog.Hooks().Effect(m.Effect)
		fn(d.Env, &fx)
	}

	var give []content.Amount
	reward := m.Reward()
	switch {
	case reward.Kind == content.RewardRandom && a.ID == settings.GatherAction &&
		o.Perk != "" && o.Perk == settings.FirstPerk && a.Repeated == 1 && len(settings.FirstReward) > 0:
		give = append(give, settings.FirstReward...)
	case reward.Kind == content.RewardRandom:
		give = append(give, d.Ledger.Draw(d.Env.Rand(), reward.Span, reward.Pool)...)
	case reward.Kind == content.RewardFixed:
		give = append(give, reward.Fixed...)
	}
	give = content.Sum(append(give, fx.Give...))
	if len(give) > 0 {
		d.Bus.Publish(bus.TopicGive, content.Grant{Amounts: give, Initiator: o.ID})
	}

	unlockOwn := append([]string(nil), m.Unlock...)
	unlockAll := append([]string(nil), m.UnlockForAll...)
	for _, th := range m.UnlockAfter {
		if a.Repeated == th.Repeat {
			unlockOwn = append(unlockOwn, th.IDs...)
		}
	}
	lockOwn := append([]string(nil), m.Lock...)
	lockAll := append([]string(nil), m.LockForAll...)
	for _, th := range m.LockAfter {
		if a.Repeated == th.Repeat {
			lockOwn = append(lockOwn, th.IDs...)
		}
	}
	if m.Unique {
		unlockAll = append(unlockAll, unlockOwn...)
		unlockOwn = nil
		lockAll = append(lockAll, lockOwn...)
		lockAll = append(lockAll, a.ID)
		lockOwn = nil
	}

	o.AddActions(unlockOwn...)
	if len(unlockAll) > 0 {
		d.Bus.Publish(bus.TopicUnlock, unlockAll)
	}
	o.RemoveActions(lockOwn...)
	if len(lockAll) > 0 {
		d.Bus.Publish(bus.TopicLock, lockAll)
	}

	if m.Build != "" {
		d.Bus.Publish(bus.TopicBuild, m.Build)
	}

	tpl := m.Log
	if tpl == "" {
		tpl = "@name finished " + m.Name
	}
	d.Bus.Publish(bus.TopicActionEnd, ActionEnd{
		PersonID: o.ID,
		ActionID: a.ID,
		OptionID: optionID,
		Give:     give,
		Build:    m.Build,
		Unique:   m.Unique,
		Log:      Expand(tpl, o, fx.Vars, give, d.Catalog),
	})

	o.RollForPerk(a.ID, a.Repeated)
}

// cancel stops a running action without resolving it and frees the owner.
func (a *Action) cancel() {
	if !a.running {
		return
	}
	d := a.deps()
	d.Timers.Cancel(a.timer)
	m := d.Catalog.Merge(a.ID, a.chosen)
	a.running = false
	a.chosen = ""
	a.total = 0
	if a.owner.busy != nil && a.owner.busy.ActionID == a.ID {
		a.owner.busy = nil
	}
	if m.Build != "" && d.CancelBuild != nil {
		d.CancelBuild(m.Build)
	}
}

// resume re-arms an action restored from a save with its leftover time.
func (a *Action) resume(optionID string, total, remaining time.Duration, drain, owed float64) {
	d := a.deps()
	if remaining < 0 {
		remaining = 0
	}
	if total < remaining {
		total = remaining
	}
	a.running = true
	a.chosen = optionID
	a.total = total
	a.timer = d.Timers.Schedule(remaining, a.end)
	if owed < 0 {
		owed = 0
		if d.HourDuration > 0 {
			owed = drain * float64(remaining) / float64(d.HourDuration)
		}
	}
	a.owner.busy = &busy{ActionID: a.ID, Drain: drain, Owed: owed}
}

package content

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownID = errors.New("unknown content id")
	ErrInvalid   = errors.New("invalid content")
)

type Kind string

const (
	KindResource Kind = "resource"
	KindAction   Kind = "action"
	KindBuilding Kind = "building"
	KindIncident Kind = "incident"
	KindPerk     Kind = "perk"
)

// Catalog is the read-only, validated content of one game. Every id it hands
// out is guaranteed to resolve.
type Catalog struct {
	settings  Settings
	hooks     *Hooks
	resources map[string]ResourceType
	actions   map[string]ActionDefinition
	buildings map[string]BuildingType
	incidents map[string]IncidentDefinition
	perks     map[string]PerkDefinition
	ids       map[Kind][]string
}

func NewCatalog(t Tables, hooks *Hooks) (*Catalog, error) {
	if hooks == nil {
		hooks = DefaultHooks()
	}
	c := &Catalog{
		settings:  withSettingDefaults(t.Settings),
		hooks:     hooks,
		resources: map[string]ResourceType{},
		actions:   map[string]ActionDefinition{},
		buildings: map[string]BuildingType{},
		incidents: map[string]IncidentDefinition{},
		perks:     map[string]PerkDefinition{},
		ids:       map[Kind][]string{},
	}
	var errs []error
	seen := map[string]Kind{}
	add := func(kind Kind, id string, exists bool) bool {
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("%w: %s without id", ErrInvalid, kind))
			return false
		case exists:
			errs = append(errs, fmt.Errorf("%w: duplicate %s %q", ErrInvalid, kind, id))
			return false
		}
		if prev, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("%w: id %q used by %s and %s", ErrInvalid, id, prev, kind))
			return false
		}
		seen[id] = kind
		c.ids[kind] = append(c.ids[kind], id)
		return true
	}
	for _, r := range t.Resources {
		_, dup := c.resources[r.ID]
		if add(KindResource, r.ID, dup) {
			c.resources[r.ID] = r
		}
	}
	for _, a := range t.Actions {
		_, dup := c.actions[a.ID]
		if add(KindAction, a.ID, dup) {
			c.actions[a.ID] = a
		}
	}
	for _, b := range t.Buildings {
		_, dup := c.buildings[b.ID]
		if add(KindBuilding, b.ID, dup) {
			c.buildings[b.ID] = b
		}
	}
	for _, i := range t.Incidents {
		_, dup := c.incidents[i.ID]
		if add(KindIncident, i.ID, dup) {
			c.incidents[i.ID] = i
		}
	}
	for _, p := range t.Perks {
		_, dup := c.perks[p.ID]
		if add(KindPerk, p.ID, dup) {
			c.perks[p.ID] = p
		}
	}
	for _, ids := range c.ids {
		sort.Strings(ids)
	}
	errs = append(errs, c.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func withSettingDefaults(s Settings) Settings {
	if s.StrayFlag == "" {
		s.StrayFlag = "stray"
	}
	if s.AcidFlag == "" {
		s.AcidFlag = "acid-rain"
	}
	if s.OutageFlag == "" {
		s.OutageFlag = "cant-go-out"
	}
	if s.IncidentRate == 0 {
		s.IncidentRate = 0.02
	}
	if s.ArrivalRate == 0 {
		s.ArrivalRate = 0.05
	}
	if s.InitialPeople == 0 {
		s.InitialPeople = 1
	}
	return s
}

func (c *Catalog) validate() []error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrUnknownID}, args...)...))
	}
	amounts := func(owner string, list []Amount) {
		for _, a := range list {
			if _, ok := c.resources[a.ID]; !ok {
				bad("%s references resource %q", owner, a.ID)
			}
		}
	}
	resourceIDs := func(owner string, list []string) {
		for _, id := range list {
			if _, ok := c.resources[id]; !ok {
				bad("%s references resource %q", owner, id)
			}
		}
	}
	actionIDs := func(owner string, list []string) {
		for _, id := range list {
			if _, ok := c.actions[id]; !ok {
				bad("%s references action %q", owner, id)
			}
		}
	}
	building := func(owner, id string) {
		if id == "" {
			return
		}
		if _, ok := c.buildings[id]; !ok {
			bad("%s references building %q", owner, id)
		}
	}
	condition := func(owner, name string) {
		if name == "" {
			return
		}
		if _, ok := c.hooks.Condition(name); !ok {
			bad("%s uses condition %q", owner, name)
		}
	}

	for _, id := range c.ids[KindResource] {
		r := c.resources[id]
		owner := "resource " + id
		amounts(owner, r.Consume)
		building(owner, r.IfHas)
	}
	for _, id := range c.ids[KindAction] {
		a := c.actions[id]
		owner := "action " + id
		amounts(owner, a.Consume)
		amounts(owner, a.Give)
		resourceIDs(owner, a.GiveList)
		actionIDs(owner, a.Unlock)
		actionIDs(owner, a.Lock)
		actionIDs(owner, a.UnlockForAll)
		actionIDs(owner, a.LockForAll)
		for _, th := range append(append([]Threshold(nil), a.UnlockAfter...), a.LockAfter...) {
			actionIDs(owner, th.IDs)
		}
		if a.Build != OptionSentinel {
			building(owner, a.Build)
		}
		if a.Build == OptionSentinel && a.Options == "" {
			errs = append(errs, fmt.Errorf("%w: action %s builds its option but has no options", ErrInvalid, id))
		}
		if a.Options != "" {
			if _, ok := c.hooks.Options(a.Options); !ok {
				bad("%s uses options %q", owner, a.Options)
			}
		}
		if a.Effect != "" {
			if _, ok := c.hooks.Effect(a.Effect); !ok {
				bad("%s uses effect %q", owner, a.Effect)
			}
		}
		condition(owner, a.Condition)
	}
	for _, id := range c.ids[KindBuilding] {
		b := c.buildings[id]
		owner := "building " + id
		amounts(owner, b.Consume)
		actionIDs(owner, b.Unlock)
		actionIDs(owner, b.Lock)
		building(owner, b.Upgrade)
		building(owner, b.IfHas)
	}
	for _, id := range c.ids[KindIncident] {
		inc := c.incidents[id]
		owner := "incident " + id
		amounts(owner, inc.Give)
		amounts(owner, inc.Use)
		condition(owner, inc.Condition)
		for _, hook := range []string{inc.OnStart, inc.OnEnd} {
			if hook == "" {
				continue
			}
			if _, ok := c.hooks.Incident(hook); !ok {
				bad("%s uses hook %q", owner, hook)
			}
		}
		for res := range inc.Needs {
			if _, ok := c.resources[res]; !ok {
				bad("%s scales need %q", owner, res)
			}
		}
	}
	for _, id := range c.ids[KindPerk] {
		p := c.perks[id]
		owner := "perk " + id
		actionIDs(owner, p.Actions)
		actionIDs(owner, p.Unlock)
		condition(owner, p.Condition)
		if p.Iteration <= 0 {
			errs = append(errs, fmt.Errorf("%w: perk %s needs a positive iteration", ErrInvalid, id))
		}
	}

	s := c.settings
	building("settings", s.SettleBuilding)
	building("settings", s.WinBuilding)
	amounts("settings", s.FirstReward)
	amounts("settings", s.InitialResources)
	actionIDs("settings", s.InitialActions)
	if s.GatherAction != "" {
		actionIDs("settings", []string{s.GatherAction})
	}
	if s.FirstPerk != "" {
		if _, ok := c.perks[s.FirstPerk]; !ok {
			bad("settings references perk %q", s.FirstPerk)
		}
	}
	for _, n := range s.Needs {
		if _, ok := c.resources[n.Resource]; !ok {
			bad("settings need references resource %q", n.Resource)
		}
	}
	return errs
}

func (c *Catalog) Settings() Settings { return c.settings }
func (c *Catalog) Hooks() *Hooks      { return c.hooks }

// IDs lists the ids of one kind in sorted order.
func (c *Catalog) IDs(kind Kind) []string {
	return append([]string(nil), c.ids[kind]...)
}

func (c *Catalog) ResourceIDs() []string { return c.IDs(KindResource) }
func (c *Catalog) ActionIDs() []string   { return c.IDs(KindAction) }
func (c *Catalog) BuildingIDs() []string { return c.IDs(KindBuilding) }
func (c *Catalog) IncidentIDs() []string { return c.IDs(KindIncident) }
func (c *Catalog) PerkIDs() []string     { return c.IDs(KindPerk) }

// Walk visits every entry, kind by kind, in sorted id order.
func (c *Catalog) Walk(fn func(kind Kind, id string)) {
	for _, kind := range []Kind{KindResource, KindAction, KindBuilding, KindIncident, KindPerk} {
		for _, id := range c.ids[kind] {
			fn(kind, id)
		}
	}
}

func (c *Catalog) Resource(id string) (ResourceType, bool) {
	r, ok := c.resources[id]
	return r, ok
}

func (c *Catalog) Action(id string) (ActionDefinition, bool) {
	a, ok := c.actions[id]
	return a, ok
}

func (c *Catalog) Building(id string) (BuildingType, bool) {
	b, ok := c.buildings[id]
	return b, ok
}

func (c *Catalog) Incident(id string) (IncidentDefinition, bool) {
	i, ok := c.incidents[id]
	return i, ok
}

func (c *Catalog) Perk(id string) (PerkDefinition, bool) {
	p, ok := c.perks[id]
	return p, ok
}

func (c *Catalog) MustResource(id string) ResourceType {
	r, ok := c.resources[id]
	if !ok {
		panic(fmt.Errorf("%w: resource %q", ErrUnknownID, id))
	}
	return r
}

func (c *Catalog) MustAction(id string) ActionDefinition {
	a, ok := c.actions[id]
	if !ok {
		panic(fmt.Errorf("%w: action %q", ErrUnknownID, id))
	}
	return a
}

func (c *Catalog) MustBuilding(id string) BuildingType {
	b, ok := c.buildings[id]
	if !ok {
		panic(fmt.Errorf("%w: building %q", ErrUnknownID, id))
	}
	return b
}

func (c *Catalog) MustIncident(id string) IncidentDefinition {
	i, ok := c.incidents[id]
	if !ok {
		panic(fmt.Errorf("%w: incident %q", ErrUnknownID, id))
	}
	return i
}

func (c *Catalog) MustPerk(id string) PerkDefinition {
	p, ok := c.perks[id]
	if !ok {
		panic(fmt.Errorf("%w: perk %q", ErrUnknownID, id))
	}
	return p
}

// Name returns the display name of any id, falling back to the id itself.
func (c *Catalog) Name(id string) string {
	if r, ok := c.resources[id]; ok && r.Name != "" {
		return r.Name
	}
	if a, ok := c.actions[id]; ok && a.Name != "" {
		return a.Name
	}
	if b, ok := c.buildings[id]; ok && b.Name != "" {
		return b.Name
	}
	if i, ok := c.incidents[id]; ok && i.Name != "" {
		return i.Name
	}
	if p, ok := c.perks[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

// Merge computes the resolved behavior of action parentID when optionID was
// chosen. An option may name an action, a craftable resource or a building.
func (c *Catalog) Merge(parentID, optionID string) Overlay {
	parent := c.MustAction(parentID)
	base := parent.Layer()
	if optionID == "" {
		if parent.Build != "" && parent.Build != OptionSentinel {
			b := c.MustBuilding(parent.Build).Layer()
			return MergeWithOption(base, nil, &b)
		}
		return MergeWithOption(base, nil, nil)
	}

	var option, building *Overlay
	switch {
	case c.hasAction(optionID):
		o := c.actions[optionID].Layer()
		option = &o
		if o.Build != "" && o.Build != OptionSentinel {
			b := c.MustBuilding(o.Build).Layer()
			building = &b
		}
	case c.hasBuilding(optionID):
		b := c.buildings[optionID].Layer()
		building = &b
	case c.hasResource(optionID):
		o := c.resources[optionID].Layer()
		option = &o
	default:
		panic(fmt.Errorf("%w: option %q", ErrUnknownID, optionID))
	}
	if building == nil && parent.Build != "" && parent.Build != OptionSentinel {
		b := c.MustBuilding(parent.Build).Layer()
		building = &b
	}
	out := MergeWithOption(base, option, building)
	out.OptionID = optionID
	return out
}

// KnownOption reports whether id can be resolved as an option target.
func (c *Catalog) KnownOption(id string) bool {
	return c.hasAction(id) || c.hasBuilding(id) || c.hasResource(id)
}

func (c *Catalog) hasAction(id string) bool {
	_, ok := c.actions[id]
	return ok
}

func (c *Catalog) hasBuilding(id string) bool {
	_, ok := c.buildings[id]
	return ok
}

func (c *Catalog) hasResource(id string) bool {
	_, ok := c.resources[id]
	return ok
}

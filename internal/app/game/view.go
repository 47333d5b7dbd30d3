package game

import (
	"outpost/internal/domain/content"
	"outpost/internal/domain/incident"
	"outpost/internal/domain/survival"
)

// View is a read-only projection of the live state for presentation.
type View struct {
	Hours          int                 `json:"hours"`
	Day            int                 `json:"day"`
	Phase          string              `json:"phase"`
	Paused         bool                `json:"paused"`
	Settled        bool                `json:"settled"`
	Over           bool                `json:"over"`
	Won            bool                `json:"won"`
	Flags          []string            `json:"flags"`
	Space          int                 `json:"space"`
	Resources      []ResourceView      `json:"resources"`
	People         []PersonView        `json:"people"`
	Buildings      []string            `json:"buildings"`
	InProgress     []string            `json:"inProgress"`
	Incidents      []incident.Instance `json:"incidents"`
	Pending        *incident.Instance  `json:"pending,omitempty"`
	KnownLocations []string            `json:"knownLocations"`
}

type ResourceView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Icon    string  `json:"icon,omitempty"`
	Count   float64 `json:"count"`
	Lacking bool    `json:"lacking,omitempty"`
}

type PersonView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Gender   survival.Gender `json:"gender"`
	Energy   float64         `json:"energy"`
	Life     float64         `json:"life"`
	Age      float64         `json:"age"`
	Perk     string          `json:"perk,omitempty"`
	BusyWith string          `json:"busyWith,omitempty"`
	Actions  []ActionView    `json:"actions"`
}

type ActionView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Locked      bool         `json:"locked"`
	Running     bool         `json:"running"`
	Repeated    int          `json:"repeated"`
	RemainingMs int64        `json:"remainingMs,omitempty"`
	OptionID    string       `json:"optionId,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
}

type OptionView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Locked bool   `json:"locked"`
}

func (g *Game) View() View {
	phase, _ := g.clock.PhaseAt(g.hours)
	v := View{
		Hours:          g.hours,
		Day:            g.clock.Day(g.hours),
		Phase:          string(phase),
		Paused:         g.Paused(),
		Settled:        g.flags[content.FlagSettled],
		Over:           g.over,
		Won:            g.won,
		Flags:          g.flagList(),
		Space:          g.buildings.Space(),
		Buildings:      g.buildings.Done(),
		InProgress:     g.buildings.Pending(),
		Incidents:      g.incidents.Active(),
		KnownLocations: g.KnownLocations(),
	}
	if inst, ok := g.incidents.Pending(); ok {
		v.Pending = &inst
	}
	for _, e := range g.ledger.Entries() {
		r := g.cat.MustResource(e.ID)
		v.Resources = append(v.Resources, ResourceView{ID: e.ID, Name: r.Name, Icon: r.Icon, Count: e.Count, Lacking: e.WarnLack})
	}
	for _, p := range g.People() {
		pv := PersonView{
			ID:     p.ID,
			Name:   p.Name,
			Gender: p.Gender,
			Energy: p.Energy,
			Life:   p.Life,
			Age:    p.Age,
			Perk:   p.Perk,
		}
		pv.BusyWith, _ = p.BusyWith()
		for _, a := range p.Actions() {
			av := ActionView{
				ID:       a.ID,
				Name:     g.cat.Name(a.ID),
				Locked:   a.Locked,
				Running:  a.Running(),
				Repeated: a.Repeated,
				OptionID: a.ChosenID(),
			}
			if a.Running() {
				av.RemainingMs = a.Remaining().Milliseconds()
			}
			for _, o := range a.Options() {
				av.Options = append(av.Options, OptionView{ID: o.ID, Name: g.cat.Name(o.ID), Locked: o.Locked})
			}
			pv.Actions = append(pv.Actions, av)
		}
		v.People = append(v.People, pv)
	}
	return v
}

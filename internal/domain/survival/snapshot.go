package survival

import (
	"fmt"
	"sort"
	"time"

	"outpost/internal/domain/content"
)

// SavedAction carries enough to resume an in-flight action.
type SavedAction struct {
	ID          string  `json:"id"`
	Repeated    int     `json:"repeated"`
	Running     bool    `json:"running,omitempty"`
	ElapsedMs   int64   `json:"elapsed,omitempty"`
	RemainingMs int64   `json:"remaining,omitempty"`
	EnergyDrain float64 `json:"energyDrain,omitempty"`
	// EnergyOwed is nil in saves that predate it; it is then derived from the drain.
	EnergyOwed     *float64 `json:"energyOwed,omitempty"`
	ChosenOptionID string   `json:"chosenOptionId,omitempty"`
}

type SavedPerson struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Gender  Gender        `json:"gender"`
	Energy  float64       `json:"energy"`
	Life    float64       `json:"life"`
	Age     float64       `json:"age"`
	Idle    float64       `json:"idle"`
	Perk    string        `json:"perk,omitempty"`
	Actions []SavedAction `json:"actions"`
}

func (p *Person) Snapshot() SavedPerson {
	sp := SavedPerson{
		ID:     p.ID,
		Name:   p.Name,
		Gender: p.Gender,
		Energy: p.Energy,
		Life:   p.Life,
		Age:    p.Age,
		Idle:   p.Idle,
		Perk:   p.Perk,
	}
	ids := make([]string, 0, len(p.actions))
	for id := range p.actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := p.actions[id]
		sa := SavedAction{ID: id, Repeated: a.Repeated}
		if a.running {
			rem := a.Remaining()
			sa.Running = true
			sa.RemainingMs = rem.Milliseconds()
			sa.ElapsedMs = (a.total - rem).Milliseconds()
			sa.ChosenOptionID = a.chosen
			sa.EnergyDrain = p.Drain()
			owed := p.Owed()
			sa.EnergyOwed = &owed
		}
		sp.Actions = append(sp.Actions, sa)
	}
	return sp
}

// RestorePerson rebuilds a person from a save and re-arms its running action
// with the leftover time. Actions missing from the catalog are skipped and reported.
func RestorePerson(deps *Deps, sp SavedPerson) (*Person, error) {
	p := NewPerson(deps, sp.ID, sp.Name, sp.Gender)
	p.Energy = sp.Energy
	p.Life = sp.Life
	p.Age = sp.Age
	p.Idle = sp.Idle
	if sp.Perk != "" {
		if _, ok := deps.Catalog.Perk(sp.Perk); ok {
			p.Perk = sp.Perk
		}
	}
	var missing []string
	for _, sa := range sp.Actions {
		if _, ok := deps.Catalog.Action(sa.ID); !ok {
			missing = append(missing, sa.ID)
			continue
		}
		a := newAction(p, sa.ID)
		a.Repeated = sa.Repeated
		p.actions[sa.ID] = a
		if !sa.Running || p.busy != nil {
			continue
		}
		if sa.ChosenOptionID != "" && !deps.Catalog.KnownOption(sa.ChosenOptionID) {
			missing = append(missing, sa.ChosenOptionID)
			continue
		}
		remaining := time.Duration(sa.RemainingMs) * time.Millisecond
		total := remaining + time.Duration(sa.ElapsedMs)*time.Millisecond
		owed := -1.0
		if sa.EnergyOwed != nil {
			owed = *sa.EnergyOwed
		}
		a.resume(sa.ChosenOptionID, total, remaining, sa.EnergyDrain, owed)
	}
	p.refreshLocks()
	if len(missing) > 0 {
		return p, fmt.Errorf("%w: actions %v", content.ErrUnknownID, missing)
	}
	return p, nil
}

package building

import (
	"fmt"
	"sort"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
)

// Registry is the set of completed buildings and of those under construction.
type Registry struct {
	cat        *content.Catalog
	bus        *bus.Bus
	done       map[string]bool
	order      []string
	inProgress map[string]bool
}

func New(cat *content.Catalog, b *bus.Bus) *Registry {
	return &Registry{cat: cat, bus: b, done: map[string]bool{}, inProgress: map[string]bool{}}
}

// Attach makes the registry react to build and start-build.
func (r *Registry) Attach(b *bus.Bus) {
	b.Subscribe(bus.TopicStartBuild, func(payload any) {
		if id, ok := payload.(string); ok {
			r.StartBuild(id)
		}
	})
	b.Subscribe(bus.TopicBuild, func(payload any) {
		if id, ok := payload.(string); ok {
			r.Build(id)
		}
	})
}

func (r *Registry) StartBuild(id string) {
	r.cat.MustBuilding(id)
	r.inProgress[id] = true
}

// CancelBuild clears the in-progress mark, for a construction abandoned by death.
func (r *Registry) CancelBuild(id string) {
	delete(r.inProgress, id)
}

// Build completes id. It retires the upgrade predecessor and broadcasts the
// building's unlock and lock lists. It reports false when id already stands.
func (r *Registry) Build(id string) bool {
	def := r.cat.MustBuilding(id)
	delete(r.inProgress, id)
	if r.done[id] {
		return false
	}
	r.done[id] = true
	r.order = append(r.order, id)
	if def.Upgrade != "" && r.done[def.Upgrade] {
		r.remove(def.Upgrade)
		r.publish(bus.TopicUnbuild, def.Upgrade)
	}
	if len(def.Unlock) > 0 {
		r.publish(bus.TopicUnlock, append([]string(nil), def.Unlock...))
	}
	if len(def.Lock) > 0 {
		r.publish(bus.TopicLock, append([]string(nil), def.Lock...))
	}
	return true
}

// Unbuild destroys a standing building.
func (r *Registry) Unbuild(id string) bool {
	if !r.done[id] {
		return false
	}
	r.remove(id)
	r.publish(bus.TopicUnbuild, id)
	return true
}

func (r *Registry) remove(id string) {
	delete(r.done, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) publish(t bus.Topic, payload any) {
	if r.bus != nil {
		r.bus.Publish(t, payload)
	}
}

// IsBuildingDone reports whether id stands, or was superseded by a standing
// building somewhere up its upgrade chain.
func (r *Registry) IsBuildingDone(id string) bool {
	if r.done[id] {
		return true
	}
	for _, owned := range r.order {
		seen := map[string]bool{}
		cur := owned
		for cur != "" && !seen[cur] {
			if cur == id {
				return true
			}
			seen[cur] = true
			def, ok := r.cat.Building(cur)
			if !ok {
				break
			}
			cur = def.Upgrade
		}
	}
	return false
}

func (r *Registry) InProgress(id string) bool {
	return r.inProgress[id]
}

// PossibleBuildings lists what can be started now, in id order.
func (r *Registry) PossibleBuildings() []string {
	var out []string
	for _, id := range r.cat.BuildingIDs() {
		def := r.cat.MustBuilding(id)
		switch {
		case def.Shadow, r.inProgress[id], r.IsBuildingDone(id):
			continue
		case def.Upgrade != "" && !r.IsBuildingDone(def.Upgrade):
			continue
		case def.IfHas != "" && !r.IsBuildingDone(def.IfHas):
			continue
		}
		out = append(out, id)
	}
	return out
}

// Space is the room capacity of every standing building.
func (r *Registry) Space() int {
	total := 0
	for _, id := range r.order {
		total += r.cat.MustBuilding(id).Space
	}
	return total
}

// Done lists standing buildings in completion order.
func (r *Registry) Done() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Pending() []string {
	out := make([]string, 0, len(r.inProgress))
	for id := range r.inProgress {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Restore replaces the registry content without broadcasting anything.
func (r *Registry) Restore(done, pending []string) error {
	r.done = map[string]bool{}
	r.order = nil
	r.inProgress = map[string]bool{}
	var missing []string
	for _, id := range done {
		if _, ok := r.cat.Building(id); !ok {
			missing = append(missing, id)
			continue
		}
		if !r.done[id] {
			r.done[id] = true
			r.order = append(r.order, id)
		}
	}
	for _, id := range pending {
		if _, ok := r.cat.Building(id); !ok {
			missing = append(missing, id)
			continue
		}
		r.inProgress[id] = true
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: buildings %v", content.ErrUnknownID, missing)
	}
	return nil
}

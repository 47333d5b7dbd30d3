package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/incident"
	"outpost/internal/domain/ledger"
	"outpost/internal/domain/survival"
)

// SaveState is the whole live game as one serializable value.
type SaveState struct {
	Flags               map[string]bool        `json:"flags"`
	Resources           []ledger.Entry         `json:"resources"`
	People              []survival.SavedPerson `json:"people"`
	InitialActions      []string               `json:"initialActions"`
	Buildings           []string               `json:"buildings"`
	Incidents           []incident.Saved       `json:"incidents"`
	ResolvedIncidents   []string               `json:"resolvedIncidents,omitempty"`
	KnownLocations      []string               `json:"knownLocations"`
	BuildingsInProgress []string               `json:"buildingsInProgress"`
	UsedPerkIDs         []string               `json:"usedPerkIds"`
	Retired             []string               `json:"retired,omitempty"`
	Hours               int                    `json:"hours"`
	SettledHours        float64                `json:"settledHours"`
	CarryMs             int64                  `json:"carryMs,omitempty"`
	Over                bool                   `json:"over,omitempty"`
	Won                 bool                   `json:"won,omitempty"`
	ContentVersion      string                 `json:"contentVersion"`
	SavedAt             time.Time              `json:"savedAt"`
}

// Notice is the payload of the notice topic.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot captures the live state. The paused flag is never saved.
func (g *Game) Snapshot() SaveState {
	st := SaveState{
		Flags:               map[string]bool{},
		Resources:           g.ledger.Entries(),
		InitialActions:      append([]string{}, g.initialActions...),
		Buildings:           g.buildings.Done(),
		Incidents:           g.incidents.Snapshot(),
		ResolvedIncidents:   g.incidents.Resolved(),
		KnownLocations:      append([]string{}, g.knownLocations...),
		BuildingsInProgress: g.buildings.Pending(),
		UsedPerkIDs:         sortedKeys(g.usedPerks),
		Retired:             sortedKeys(g.retired),
		Hours:               g.hours,
		SettledHours:        g.settledHours,
		CarryMs:             g.carry.Milliseconds(),
		Over:                g.over,
		Won:                 g.won,
		ContentVersion:      g.cat.Settings().Version,
		SavedAt:             g.now(),
	}
	for f, on := range g.flags {
		if on && f != content.FlagPaused {
			st.Flags[f] = true
		}
	}
	for _, id := range g.order {
		st.People = append(st.People, g.people[id].Snapshot())
	}
	return st
}

// Restore loads a saved state into a freshly constructed game. Entries that
// no longer exist in the content are dropped and reported in the returned
// error; everything else is loaded. A content version whose major.minor
// differs from the running one publishes a notice.
func (g *Game) Restore(st SaveState, now time.Time) error {
	var errs []error
	running := g.cat.Settings().Version
	if majorMinor(st.ContentVersion) != majorMinor(running) {
		msg := fmt.Sprintf("save was made with content %q, running %q", st.ContentVersion, running)
		g.log.Warn("content version mismatch", zap.String("saved", st.ContentVersion), zap.String("running", running))
		g.bus.Publish(bus.TopicNotice, Notice{Kind: "version", Message: msg})
	}

	g.flags = map[string]bool{}
	for f, on := range st.Flags {
		if on && f != content.FlagPaused {
			g.flags[f] = true
		}
	}
	g.hours = st.Hours
	g.settledHours = st.SettledHours
	g.carry = time.Duration(st.CarryMs) * time.Millisecond
	g.over = st.Over
	g.won = st.Won
	g.lastTick = now

	if err := g.ledger.Restore(st.Resources); err != nil {
		errs = append(errs, err)
	}
	if err := g.buildings.Restore(st.Buildings, st.BuildingsInProgress); err != nil {
		errs = append(errs, err)
	}

	g.retired = map[string]bool{}
	for _, id := range st.Retired {
		g.retired[id] = true
	}
	g.usedPerks = map[string]bool{}
	for _, id := range st.UsedPerkIDs {
		g.usedPerks[id] = true
	}
	g.initialActions = nil
	for _, id := range st.InitialActions {
		if _, ok := g.cat.Action(id); !ok {
			errs = append(errs, fmt.Errorf("%w: initial action %q", content.ErrUnknownID, id))
			continue
		}
		g.initialActions = append(g.initialActions, id)
	}
	g.knownLocations = append([]string(nil), st.KnownLocations...)

	if err := g.incidents.Restore(st.Incidents, st.ResolvedIncidents); err != nil {
		errs = append(errs, err)
	}

	for _, id := range g.order {
		g.people[id].RemoveActions(actionIDs(g.people[id])...)
	}
	g.people = map[string]*survival.Person{}
	g.order = nil
	for _, sp := range st.People {
		p, err := survival.RestorePerson(g.deps, sp)
		if err != nil {
			errs = append(errs, fmt.Errorf("person %s: %w", sp.ID, err))
		}
		if p.Perk != "" {
			g.usedPerks[p.Perk] = true
		}
		g.people[p.ID] = p
		g.order = append(g.order, p.ID)
	}
	if g.over {
		g.timers.StopAll()
	}
	g.refreshPeople(0)
	g.log.Info("game restored", zap.Int("people", len(g.order)), zap.Int("hours", g.hours))
	return errors.Join(errs...)
}

func actionIDs(p *survival.Person) []string {
	var out []string
	for _, a := range p.Actions() {
		out = append(out, a.ID)
	}
	return out
}

func majorMinor(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, on := range m {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

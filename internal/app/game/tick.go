package game

import (
	"math"
	"time"

	"go.uber.org/zap"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
)

// TickResult summarizes what one tick advanced.
type TickResult struct {
	Hours    int
	Fired    int
	Arrivals int
	Deaths   int
}

// Tick advances the simulation to now. Due timers fire first. Elapsed
// wall-clock time turns into whole simulated hours; the remainder carries
// into the next tick. While paused, time is re-anchored and nothing advances.
func (g *Game) Tick(now time.Time) TickResult {
	var res TickResult
	if g.over {
		g.lastTick = now
		return res
	}
	res.Fired = g.timers.Fire(now)
	if g.Paused() {
		g.lastTick = now
		return res
	}
	if now.Before(g.lastTick) {
		g.log.Warn("clock went backwards", zap.Time("last", g.lastTick), zap.Time("now", now))
		g.lastTick = now
	}
	elapsed := now.Sub(g.lastTick) + g.carry
	g.lastTick = now
	hours, rest := g.clock.Hours(elapsed)
	g.carry = rest
	res.Hours = hours

	if hours > 0 {
		g.hours += hours
		if g.flags[content.FlagSettled] {
			g.settledHours += float64(hours)
			g.applyNeeds(hours)
			res.Arrivals = g.arrivals(hours)
			for i := 0; i < hours && !g.over; i++ {
				g.incidents.Roll(g.rng, g.settledHours)
			}
		}
		g.ledger.Refresh(hours)
		g.dirty = true
	}
	res.Deaths = g.refreshPeople(hours)
	return res
}

// applyNeeds consumes food and water for every mouth. A lack raises the
// matching flag until the need is met again.
func (g *Game) applyNeeds(hours int) {
	s := g.cat.Settings()
	mouths := float64(len(g.order))
	if g.flags[s.StrayFlag] {
		mouths++
	}
	for _, need := range s.Needs {
		amount := need.Rate * mouths * float64(hours) * g.incidents.NeedsMultiplier(need.Resource)
		if amount <= 0 {
			continue
		}
		lacked := false
		g.ledger.Consume(amount, need.Resource, func(deficit float64, id string) {
			lacked = true
		})
		if need.Effect != "" {
			g.SetFlag(string(need.Effect), lacked)
		}
	}
}

// arrivals lets at most one newcomer in per tick, when there is room and
// the per-hour chance hits at least once over the elapsed hours.
func (g *Game) arrivals(hours int) int {
	if len(g.order) >= g.buildings.Space() {
		return 0
	}
	chance := 1 - math.Pow(1-g.cat.Settings().ArrivalRate, float64(hours))
	if g.rng.Float64() >= chance {
		return 0
	}
	p := g.spawn()
	g.bus.Publish(bus.TopicArrival, p.ID)
	g.log.Info("person arrived", zap.String("person", p.ID), zap.String("name", p.Name))
	return 1
}

// refreshPeople advances every person and buries the dead. Losing the last
// person ends the game.
func (g *Game) refreshPeople(hours int) int {
	deaths := 0
	for _, id := range append([]string(nil), g.order...) {
		p := g.people[id]
		p.Refresh(hours)
		if !p.Dead() {
			continue
		}
		if p.Die() {
			deaths++
			g.log.Info("person died", zap.String("person", p.ID), zap.String("cause", string(p.Cause())))
		}
		delete(g.people, id)
		g.order = without(g.order, []string{id})
		g.dirty = true
	}
	if len(g.order) == 0 && !g.over && deaths > 0 {
		g.over = true
		g.timers.StopAll()
		g.bus.Publish(bus.TopicLose, nil)
		g.log.Info("game lost", zap.Int("hours", g.hours))
	}
	return deaths
}

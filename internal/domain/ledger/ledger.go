package ledger

import (
	"fmt"
	"math"
	"math/rand/v2"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
)

// Entry is one resource's balance. DropRate is the current reward weight,
// which drifts away from the content baseline over time.
type Entry struct {
	ID       string  `json:"id"`
	Count    float64 `json:"count"`
	WarnLack bool    `json:"warnLack"`
	DropRate float64 `json:"dropRate"`
}

// RunsOut is the payload of the runs-out topic.
type RunsOut struct {
	ID      string
	Deficit float64
}

type LackFunc func(deficit float64, id string)

type Config struct {
	// Decay is the fraction of the gap to the long-run weight kept per hour.
	Decay float64
	// LongRunRatio scales a resource's baseline drop rate into its long-run weight.
	LongRunRatio float64
}

func DefaultConfig() Config {
	return Config{Decay: 0.98, LongRunRatio: 0.5}
}

type Ledger struct {
	cat     *content.Catalog
	bus     *bus.Bus
	cfg     Config
	entries map[string]*Entry
	order   []string
}

func New(cat *content.Catalog, b *bus.Bus, cfg Config) *Ledger {
	if cfg.Decay <= 0 || cfg.Decay > 1 {
		cfg.Decay = DefaultConfig().Decay
	}
	if cfg.LongRunRatio <= 0 {
		cfg.LongRunRatio = DefaultConfig().LongRunRatio
	}
	return &Ledger{cat: cat, bus: b, cfg: cfg, entries: map[string]*Entry{}}
}

// Attach subscribes the ledger to give and use. Lack on use is already
// ruled out by the action lock check, so it only raises the notification.
func (l *Ledger) Attach(b *bus.Bus) {
	b.Subscribe(bus.TopicGive, func(payload any) {
		switch p := payload.(type) {
		case content.Grant:
			l.EarnAll(p.Amounts)
		case []content.Amount:
			l.EarnAll(p)
		}
	})
	b.Subscribe(bus.TopicUse, func(payload any) {
		if list, ok := payload.([]content.Amount); ok {
			l.ConsumeAll(list, nil)
		}
	})
}

func (l *Ledger) entry(id string) *Entry {
	if e, ok := l.entries[id]; ok {
		return e
	}
	r := l.cat.MustResource(id)
	e := &Entry{ID: id, DropRate: r.DropRate}
	l.entries[id] = e
	l.order = append(l.order, id)
	return e
}

// Earn adds amount of id, creating the entry on first mention.
func (l *Ledger) Earn(amount float64, id string) {
	if amount < 0 || math.IsNaN(amount) {
		panic(fmt.Sprintf("ledger: earn %v of %s", amount, id))
	}
	e := l.entry(id)
	e.Count += amount
}

func (l *Ledger) EarnAll(list []content.Amount) {
	for _, a := range list {
		l.Earn(a.Qty, a.ID)
	}
}

// Consume removes amount of id. When the balance is short the entry drops
// to zero, onLack receives the deficit, and runs-out is published only for
// the first lack since the last full consumption.
func (l *Ledger) Consume(amount float64, id string, onLack LackFunc) {
	if amount < 0 || math.IsNaN(amount) {
		panic(fmt.Sprintf("ledger: consume %v of %s", amount, id))
	}
	if amount == 0 {
		return
	}
	e := l.entry(id)
	if e.Count >= amount {
		e.Count -= amount
		e.WarnLack = false
		return
	}
	deficit := amount - e.Count
	e.Count = 0
	if onLack != nil {
		onLack(deficit, id)
	}
	if !e.WarnLack {
		e.WarnLack = true
		e.DropRate = l.baseline(id)
		if l.bus != nil {
			l.bus.Publish(bus.TopicRunsOut, RunsOut{ID: id, Deficit: deficit})
		}
	}
}

func (l *Ledger) ConsumeAll(list []content.Amount, onLack LackFunc) {
	for _, a := range list {
		l.Consume(a.Qty, a.ID, onLack)
	}
}

func (l *Ledger) Has(id string, amount float64) bool {
	if amount <= 0 {
		return true
	}
	e, ok := l.entries[id]
	return ok && e.Count >= amount
}

// HasAll checks a recipe, folding repeated ids first.
func (l *Ledger) HasAll(list []content.Amount) bool {
	for _, a := range content.Sum(list) {
		if !l.Has(a.ID, a.Qty) {
			return false
		}
	}
	return true
}

func (l *Ledger) Count(id string) float64 {
	if e, ok := l.entries[id]; ok {
		return e.Count
	}
	return 0
}

func (l *Ledger) Lacking(id string) bool {
	e, ok := l.entries[id]
	return ok && e.WarnLack
}

// Refresh decays every non-lacking weight toward its long-run level.
func (l *Ledger) Refresh(hours int) {
	if hours <= 0 {
		return
	}
	keep := math.Pow(l.cfg.Decay, float64(hours))
	for _, id := range l.order {
		e := l.entries[id]
		if e.WarnLack {
			continue
		}
		target := l.baseline(id) * l.cfg.LongRunRatio
		e.DropRate = target + (e.DropRate-target)*keep
	}
}

// Weight is the current reward weight of id.
func (l *Ledger) Weight(id string) float64 {
	if e, ok := l.entries[id]; ok {
		return e.DropRate
	}
	return l.baseline(id)
}

func (l *Ledger) baseline(id string) float64 {
	return l.cat.MustResource(id).DropRate
}

// Draw picks span units from pool, one at a time, weighted by current drop
// rates. Fractional spans round to the nearest whole unit, at least one.
func (l *Ledger) Draw(r *rand.Rand, span float64, pool []string) []content.Amount {
	n := int(math.Round(span))
	if n < 1 {
		n = 1
	}
	var out []content.Amount
	for i := 0; i < n; i++ {
		id := content.PickWeighted(r, pool, l.Weight)
		if id == "" {
			break
		}
		out = append(out, content.Amount{Qty: 1, ID: id})
	}
	return content.Sum(out)
}

// Entries returns a copy of every entry in creation order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

// Restore replaces the ledger content with saved entries. Unknown resource
// ids are reported and skipped.
func (l *Ledger) Restore(entries []Entry) error {
	l.entries = map[string]*Entry{}
	l.order = nil
	var missing []string
	for _, e := range entries {
		if _, ok := l.cat.Resource(e.ID); !ok {
			missing = append(missing, e.ID)
			continue
		}
		if e.Count < 0 {
			e.Count = 0
		}
		cp := e
		l.entries[e.ID] = &cp
		l.order = append(l.order, e.ID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: resources %v", content.ErrUnknownID, missing)
	}
	return nil
}

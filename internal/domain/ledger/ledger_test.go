package ledger

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
)

func newTestLedger() (*Ledger, *bus.Bus) {
	b := bus.New()
	return New(contenttest.Catalog(), b, DefaultConfig()), b
}

func TestConsume_LackZeroesAndNotifiesOnce(t *testing.T) {
	l, b := newTestLedger()
	var notices []RunsOut
	b.Subscribe(bus.TopicRunsOut, func(p any) { notices = append(notices, p.(RunsOut)) })

	l.Earn(10, "water")
	var deficits []float64
	onLack := func(d float64, id string) { deficits = append(deficits, d) }

	l.Consume(15, "water", onLack)
	assert.Equal(t, 0.0, l.Count("water"))
	assert.Equal(t, []float64{5}, deficits)
	require.Len(t, notices, 1)
	assert.Equal(t, "water", notices[0].ID)

	l.Consume(3, "water", onLack)
	assert.Len(t, notices, 1, "no duplicate notice while still lacking")
	assert.Equal(t, []float64{5, 3}, deficits)

	l.Earn(4, "water")
	l.Consume(4, "water", onLack)
	assert.False(t, l.Lacking("water"))

	l.Consume(1, "water", onLack)
	assert.Len(t, notices, 2, "a full consumption re-arms the notice")
}

func TestConsume_ZeroIsNoop(t *testing.T) {
	l, _ := newTestLedger()
	l.Consume(5, "food", nil)
	require.True(t, l.Lacking("food"))

	l.Consume(0, "food", nil)
	assert.True(t, l.Lacking("food"))
}

func TestEarn_NegativePanics(t *testing.T) {
	l, _ := newTestLedger()
	assert.Panics(t, func() { l.Earn(-1, "wood") })
	assert.Panics(t, func() { l.Consume(-1, "wood", nil) })
	assert.Panics(t, func() { l.Earn(1, "unobtainium") })
}

func TestNonNegativity_RandomSequence(t *testing.T) {
	l, _ := newTestLedger()
	r := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 1000; i++ {
		amount := r.Float64() * 5
		if r.IntN(2) == 0 {
			l.Earn(amount, "stone")
		} else {
			l.Consume(amount, "stone", nil)
		}
		require.GreaterOrEqual(t, l.Count("stone"), 0.0)
	}
}

func TestHasAll_FoldsDuplicates(t *testing.T) {
	l, _ := newTestLedger()
	l.Earn(3, "wood")
	assert.True(t, l.HasAll([]content.Amount{{Qty: 2, ID: "wood"}}))
	assert.False(t, l.HasAll([]content.Amount{{Qty: 2, ID: "wood"}, {Qty: 2, ID: "wood"}}))
	assert.True(t, l.Has("stone", 0))
}

func TestRefresh_DecaysOnlyWhileNotLacking(t *testing.T) {
	l, _ := newTestLedger()
	l.Earn(1, "wood")
	l.Consume(5, "food", nil)

	l.Refresh(100)

	assert.Less(t, l.Weight("wood"), 1.0)
	assert.Greater(t, l.Weight("wood"), 0.5)
	assert.Equal(t, 1.0, l.Weight("food"))

	l.Consume(5, "wood", nil)
	assert.Equal(t, 1.0, l.Weight("wood"), "lack resets to baseline")
}

func TestAttach_GiveAndUse(t *testing.T) {
	l, b := newTestLedger()
	l.Attach(b)

	b.Publish(bus.TopicGive, content.Grant{Amounts: []content.Amount{{Qty: 3, ID: "wood"}}})
	b.Publish(bus.TopicUse, []content.Amount{{Qty: 1, ID: "wood"}})

	assert.Equal(t, 2.0, l.Count("wood"))
}

func TestDraw_UsesPool(t *testing.T) {
	l, _ := newTestLedger()
	r := rand.New(rand.NewPCG(1, 1))
	got := l.Draw(r, 3, []string{"water", "food"})
	total := 0.0
	for _, a := range got {
		assert.Contains(t, []string{"water", "food"}, a.ID)
		total += a.Qty
	}
	assert.Equal(t, 3.0, total)
}

func TestRestore_RoundTrip(t *testing.T) {
	l, _ := newTestLedger()
	l.Earn(2.5, "water")
	l.Consume(1, "food", nil)
	saved := l.Entries()

	other, _ := newTestLedger()
	require.NoError(t, other.Restore(saved))
	assert.Equal(t, saved, other.Entries())
	assert.True(t, other.Lacking("food"))
}

package content

import "math/rand/v2"

// PickWeighted returns one id with probability proportional to its weight,
// walking ids in the given order over the cumulative sum. It returns "" when
// no id has positive weight.
func PickWeighted(r *rand.Rand, ids []string, weight func(id string) float64) string {
	var total float64
	for _, id := range ids {
		if w := weight(id); w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return ""
	}
	target := r.Float64() * total
	var acc float64
	last := ""
	for _, id := range ids {
		w := weight(id)
		if w <= 0 {
			continue
		}
		acc += w
		last = id
		if target < acc {
			return id
		}
	}
	return last
}

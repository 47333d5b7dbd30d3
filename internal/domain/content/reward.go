package content

type RewardKind int

const (
	RewardNone RewardKind = iota
	RewardFixed
	RewardRandom
)

// Reward is either a fixed list of amounts or a random draw of Span units
// from Pool, weighted by each resource's current drop rate.
type Reward struct {
	Kind  RewardKind
	Fixed []Amount
	Span  float64
	Pool  []string
}

func Fixed(list []Amount) Reward {
	return Reward{Kind: RewardFixed, Fixed: list}
}

func RandomDraw(span float64, pool []string) Reward {
	return Reward{Kind: RewardRandom, Span: span, Pool: pool}
}

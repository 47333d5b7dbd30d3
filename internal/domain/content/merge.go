package content

// Overlay is the flattened behavior of an action after option and building
// definitions are layered over it.
type Overlay struct {
	ID           string
	OptionID     string
	Name         string
	Desc         string
	Log          string
	Time         float64
	TimeDelta    float64
	TimeBonus    float64
	Energy       *float64
	GiveSpan     float64
	Consume      []Amount
	Give         []Amount
	GiveList     []string
	Unlock       []string
	Lock         []string
	UnlockForAll []string
	LockForAll   []string
	UnlockAfter  []Threshold
	LockAfter    []Threshold
	Build        string
	Effect       string
	Condition    string
	Unique       bool
	Outdoor      bool
}

func (o Overlay) EnergyCost() float64 {
	if o.Energy != nil {
		return *o.Energy
	}
	return 5 * o.Time
}

func (o Overlay) Reward() Reward {
	if len(o.Give) > 0 {
		return Fixed(o.Give)
	}
	if o.GiveSpan > 0 && len(o.GiveList) > 0 {
		return RandomDraw(o.GiveSpan, o.GiveList)
	}
	return Reward{Kind: RewardNone}
}

func (a ActionDefinition) Layer() Overlay {
	return Overlay{
		ID:           a.ID,
		Name:         a.Name,
		Desc:         a.Desc,
		Log:          a.Log,
		Time:         a.Time,
		TimeDelta:    a.TimeDelta,
		TimeBonus:    a.TimeBonus,
		Energy:       a.Energy,
		GiveSpan:     a.GiveSpan,
		Consume:      a.Consume,
		Give:         a.Give,
		GiveList:     a.GiveList,
		Unlock:       a.Unlock,
		Lock:         a.Lock,
		UnlockForAll: a.UnlockForAll,
		LockForAll:   a.LockForAll,
		UnlockAfter:  a.UnlockAfter,
		LockAfter:    a.LockAfter,
		Build:        a.Build,
		Effect:       a.Effect,
		Condition:    a.Condition,
		Unique:       a.Unique,
		Outdoor:      a.Outdoor,
	}
}

// Layer of a building only carries what constructing it costs. Its unlock
// and lock lists are broadcast by the building registry on completion.
func (b BuildingType) Layer() Overlay {
	return Overlay{
		ID:      b.ID,
		Name:    b.Name,
		Desc:    b.Desc,
		Log:     b.Log,
		Time:    b.Time,
		Consume: b.Consume,
		Build:   b.ID,
	}
}

// Layer of a craftable resource turns its recipe into one unit of output.
func (r ResourceType) Layer() Overlay {
	return Overlay{
		ID:      r.ID,
		Name:    r.Name,
		Desc:    r.Desc,
		Consume: r.Consume,
		Give:    []Amount{{Qty: 1, ID: r.ID}},
	}
}

// MergeWithOption layers option then building over parent. Scalars take the
// first set value in build, option, parent order; lists concatenate in
// parent, option, build order. The result depends only on its inputs.
func MergeWithOption(parent Overlay, option, building *Overlay) Overlay {
	out := parent
	out.Consume = cloneAmounts(parent.Consume)
	out.Give = cloneAmounts(parent.Give)
	out.GiveList = cloneStrings(parent.GiveList)
	out.Unlock = cloneStrings(parent.Unlock)
	out.Lock = cloneStrings(parent.Lock)
	out.UnlockForAll = cloneStrings(parent.UnlockForAll)
	out.LockForAll = cloneStrings(parent.LockForAll)
	out.UnlockAfter = append([]Threshold(nil), parent.UnlockAfter...)
	out.LockAfter = append([]Threshold(nil), parent.LockAfter...)

	for _, layer := range []*Overlay{option, building} {
		if layer == nil {
			continue
		}
		if out.OptionID == "" {
			out.OptionID = layer.ID
		}
		overString(&out.Name, layer.Name)
		overString(&out.Desc, layer.Desc)
		overString(&out.Log, layer.Log)
		overString(&out.Effect, layer.Effect)
		overString(&out.Condition, layer.Condition)
		overFloat(&out.Time, layer.Time)
		overFloat(&out.TimeDelta, layer.TimeDelta)
		overFloat(&out.TimeBonus, layer.TimeBonus)
		overFloat(&out.GiveSpan, layer.GiveSpan)
		if layer.Energy != nil {
			out.Energy = layer.Energy
		}
		out.Consume = append(out.Consume, layer.Consume...)
		out.Give = append(out.Give, layer.Give...)
		out.GiveList = append(out.GiveList, layer.GiveList...)
		out.Unlock = append(out.Unlock, layer.Unlock...)
		out.Lock = append(out.Lock, layer.Lock...)
		out.UnlockForAll = append(out.UnlockForAll, layer.UnlockForAll...)
		out.LockForAll = append(out.LockForAll, layer.LockForAll...)
		out.UnlockAfter = append(out.UnlockAfter, layer.UnlockAfter...)
		out.LockAfter = append(out.LockAfter, layer.LockAfter...)
		out.Unique = out.Unique || layer.Unique
		out.Outdoor = out.Outdoor || layer.Outdoor
	}

	switch {
	case building != nil:
		out.Build = building.ID
	case option != nil && option.Build != "" && option.Build != OptionSentinel:
		out.Build = option.Build
	case out.Build == OptionSentinel:
		out.Build = ""
	}
	out.Consume = Sum(out.Consume)
	return out
}

func overString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func cloneAmounts(in []Amount) []Amount {
	if len(in) == 0 {
		return nil
	}
	return append([]Amount(nil), in...)
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

package content

// OptionSentinel as an action's build target means "the option that was chosen".
const OptionSentinel = "$option"

type ResourceType struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Desc     string   `json:"desc,omitempty"`
	Icon     string   `json:"icon,omitempty"`
	DropRate float64  `json:"dropRate"`
	Consume  []Amount `json:"consume,omitempty"`
	IfHas    string   `json:"ifHas,omitempty"`
}

// Craftable reports whether the resource can be produced from a recipe.
func (r ResourceType) Craftable() bool {
	return len(r.Consume) > 0
}

// Threshold gates an unlock or lock list on the action's completion count.
type Threshold struct {
	Repeat int      `json:"repeat"`
	IDs    []string `json:"ids"`
}

type ActionDefinition struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Desc         string      `json:"desc,omitempty"`
	Log          string      `json:"log,omitempty"`
	Time         float64     `json:"time,omitempty"`
	TimeDelta    float64     `json:"timeDelta,omitempty"`
	TimeBonus    float64     `json:"timeBonus,omitempty"`
	Energy       *float64    `json:"energy,omitempty"`
	Consume      []Amount    `json:"consume,omitempty"`
	Give         []Amount    `json:"give,omitempty"`
	GiveSpan     float64     `json:"giveSpan,omitempty"`
	GiveList     []string    `json:"giveList,omitempty"`
	Unlock       []string    `json:"unlock,omitempty"`
	Lock         []string    `json:"lock,omitempty"`
	UnlockForAll []string    `json:"unlockForAll,omitempty"`
	LockForAll   []string    `json:"lockForAll,omitempty"`
	UnlockAfter  []Threshold `json:"unlockAfter,omitempty"`
	LockAfter    []Threshold `json:"lockAfter,omitempty"`
	Build        string      `json:"build,omitempty"`
	Options      string      `json:"options,omitempty"`
	Effect       string      `json:"effect,omitempty"`
	Condition    string      `json:"condition,omitempty"`
	Unique       bool        `json:"unique,omitempty"`
	Outdoor      bool        `json:"outdoor,omitempty"`
	Order        int         `json:"order,omitempty"`
}

// EnergyCost defaults to five points per hour of work.
func (a ActionDefinition) EnergyCost() float64 {
	if a.Energy != nil {
		return *a.Energy
	}
	return 5 * a.Time
}

type BuildingType struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Desc    string   `json:"desc,omitempty"`
	Log     string   `json:"log,omitempty"`
	Time    float64  `json:"time,omitempty"`
	Consume []Amount `json:"consume,omitempty"`
	Unlock  []string `json:"unlock,omitempty"`
	Lock    []string `json:"lock,omitempty"`
	Upgrade string   `json:"upgrade,omitempty"`
	IfHas   string   `json:"ifHas,omitempty"`
	Shadow  bool     `json:"shadow,omitempty"`
	Space   int      `json:"space,omitempty"`
}

type IncidentDefinition struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Desc      string             `json:"desc,omitempty"`
	Log       string             `json:"log,omitempty"`
	Time      float64            `json:"time,omitempty"`
	TimeDelta float64            `json:"timeDelta,omitempty"`
	DropRate  float64            `json:"dropRate"`
	After     float64            `json:"after,omitempty"`
	Condition string             `json:"condition,omitempty"`
	Ask       bool               `json:"ask,omitempty"`
	Unique    bool               `json:"unique,omitempty"`
	OnStart   string             `json:"onStart,omitempty"`
	OnEnd     string             `json:"onEnd,omitempty"`
	Flags     []string           `json:"flags,omitempty"`
	Sets      []string           `json:"sets,omitempty"`
	Give      []Amount           `json:"give,omitempty"`
	Use       []Amount           `json:"use,omitempty"`
	Needs     map[string]float64 `json:"needs,omitempty"`
}

type PerkDefinition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Desc      string   `json:"desc,omitempty"`
	Actions   []string `json:"actions,omitempty"`
	Iteration int      `json:"iteration"`
	Condition string   `json:"condition,omitempty"`
	TimeBonus float64  `json:"timeBonus,omitempty"`
	Unlock    []string `json:"unlock,omitempty"`
}

// Applies reports whether completing actionID counts toward the perk.
func (p PerkDefinition) Applies(actionID string) bool {
	if len(p.Actions) == 0 {
		return true
	}
	for _, id := range p.Actions {
		if id == actionID {
			return true
		}
	}
	return false
}

type NeedEffect string

const (
	EffectStarving NeedEffect = "starving"
	EffectThirsty  NeedEffect = "thirsty"
)

// Need is the per person, per hour consumption of one resource.
type Need struct {
	Resource string     `json:"resource"`
	Rate     float64    `json:"rate"`
	Effect   NeedEffect `json:"effect"`
}

type Settings struct {
	Version          string   `json:"version"`
	SettleBuilding   string   `json:"settleBuilding"`
	WinBuilding      string   `json:"winBuilding,omitempty"`
	Needs            []Need   `json:"needs,omitempty"`
	FirstPerk        string   `json:"firstPerk,omitempty"`
	GatherAction     string   `json:"gatherAction,omitempty"`
	FirstReward      []Amount `json:"firstReward,omitempty"`
	Locations        []string `json:"locations,omitempty"`
	InitialActions   []string `json:"initialActions,omitempty"`
	InitialResources []Amount `json:"initialResources,omitempty"`
	InitialPeople    int      `json:"initialPeople,omitempty"`
	IncidentRate     float64  `json:"incidentRate,omitempty"`
	ArrivalRate      float64  `json:"arrivalRate,omitempty"`
	StrayFlag        string   `json:"strayFlag,omitempty"`
	AcidFlag         string   `json:"acidFlag,omitempty"`
	OutageFlag       string   `json:"outageFlag,omitempty"`
}

// Tables is the raw content as loaded from files, before indexing.
type Tables struct {
	Settings  Settings             `json:"settings"`
	Resources []ResourceType       `json:"resources"`
	Actions   []ActionDefinition   `json:"actions"`
	Buildings []BuildingType       `json:"buildings"`
	Incidents []IncidentDefinition `json:"incidents"`
	Perks     []PerkDefinition     `json:"perks"`
}

// Flags that the simulation core reads by name.
const (
	FlagSettled  = "settled"
	FlagPaused   = "paused"
	FlagPopup    = "popup"
	FlagStarving = "starving"
	FlagThirsty  = "thirsty"
)

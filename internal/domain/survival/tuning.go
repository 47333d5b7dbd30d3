package survival

// Vital rates are per simulated hour.
const (
	MaxVital = 100

	BaseEnergyDrain    = 1.5
	StarvingMultiplier = 3
	ThirstLifeDrain    = 4
	AcidLifeDrain      = 6
	HealPerHour        = 1
	RestedEnergy       = 50

	// MaxTimeBonus caps the duration reduction from content and perks.
	MaxTimeBonus = 0.9
)

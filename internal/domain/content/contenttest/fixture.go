// Package contenttest provides a small, fully cross-referenced content set
// for tests of the simulation packages.
package contenttest

import "outpost/internal/domain/content"

func f(v float64) *float64 { return &v }

func amounts(pairs ...any) []content.Amount {
	var out []content.Amount
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, content.Amount{Qty: float64(pairs[i].(int)), ID: pairs[i+1].(string)})
	}
	return out
}

func Tables() content.Tables {
	return content.Tables{
		Settings: content.Settings{
			Version:        "1.2.0",
			SettleBuilding: "camp",
			WinBuilding:    "rocket",
			Needs: []content.Need{
				{Resource: "food", Rate: 0.5, Effect: content.EffectStarving},
				{Resource: "water", Rate: 1, Effect: content.EffectThirsty},
			},
			FirstPerk:      "first",
			GatherAction:   "gather",
			FirstReward:    amounts(2, "wood", 1, "water"),
			Locations:      []string{"cave", "river", "ruins"},
			InitialActions: []string{"gather", "fetch", "sleep"},
			InitialPeople:  1,
			IncidentRate:   0.5,
			ArrivalRate:    0.5,
		},
		Resources: []content.ResourceType{
			{ID: "water", Name: "Water", DropRate: 1},
			{ID: "food", Name: "Food", DropRate: 1},
			{ID: "wood", Name: "Wood", DropRate: 1},
			{ID: "stone", Name: "Stone", DropRate: 0.5},
			{ID: "scrap", Name: "Scrap", DropRate: 0.2},
			{ID: "tool", Name: "Tool", Consume: amounts(2, "wood", 1, "stone")},
			{ID: "fuel", Name: "Fuel", Consume: amounts(2, "scrap"), IfHas: "well"},
		},
		Actions: []content.ActionDefinition{
			{
				ID: "gather", Name: "Gather", Time: 2, GiveSpan: 2,
				GiveList:    []string{"water", "food", "wood", "stone"},
				Outdoor:     true,
				UnlockAfter: []content.Threshold{{Repeat: 1, IDs: []string{"build"}}},
				Log:         "@name gathered @give",
			},
			{ID: "build", Name: "Build", Options: "buildable", Build: content.OptionSentinel, Log: "@name built something"},
			{ID: "craft", Name: "Craft", Options: "craftable", Time: 1},
			{ID: "fetch", Name: "Fetch", Time: 4, Consume: amounts(2, "water"), Give: amounts(1, "food")},
			{ID: "sleep", Name: "Sleep", Time: 4, Energy: f(-40)},
			{ID: "explore", Name: "Explore", Time: 3, Effect: "explore", Condition: "explorable", Outdoor: true, Log: "@name found @location"},
			{ID: "monument", Name: "Monument", Time: 1, Unique: true, Give: amounts(1, "scrap")},
			{
				ID: "scavenge", Name: "Scavenge", Time: 1, Give: amounts(1, "scrap"),
				LockAfter: []content.Threshold{{Repeat: 2, IDs: []string{"scavenge"}}},
			},
			{ID: "pray", Name: "Pray", Time: 1, Condition: "flag:faithful", UnlockForAll: []string{"monument"}},
		},
		Buildings: []content.BuildingType{
			{ID: "camp", Name: "Camp", Time: 1, Consume: amounts(2, "wood"), Space: 1, Unlock: []string{"explore", "craft"}},
			{ID: "tent", Name: "Tent", Time: 2, Consume: amounts(3, "wood"), Space: 2},
			{ID: "hut", Name: "Hut", Time: 4, Consume: amounts(5, "wood", 2, "stone"), Space: 3, Upgrade: "tent"},
			{ID: "well", Name: "Well", Time: 2, Consume: amounts(2, "stone"), IfHas: "camp"},
			{ID: "rocket", Name: "Rocket", Time: 1, Consume: amounts(1, "tool"), IfHas: "well"},
			{ID: "ruins", Name: "Ruins", Shadow: true},
		},
		Incidents: []content.IncidentDefinition{
			{ID: "acid-rain", Name: "Acid rain", Time: 4, DropRate: 1, Flags: []string{"acid-rain"}},
			{ID: "traveler", Name: "Traveler", Ask: true, Unique: true, DropRate: 1, Give: amounts(3, "food")},
			{ID: "drought", Name: "Drought", Time: 4, DropRate: 1, After: 10, Needs: map[string]float64{"water": 2}},
		},
		Perks: []content.PerkDefinition{
			{ID: "first", Name: "First", Iteration: 1000},
			{ID: "forager", Name: "Forager", Actions: []string{"gather"}, Iteration: 3, TimeBonus: 0.25},
			{ID: "builder", Name: "Builder", Actions: []string{"build"}, Iteration: 2, Unlock: []string{"scavenge"}},
		},
	}
}

// Catalog builds the fixture catalog with the default hooks.
func Catalog() *content.Catalog {
	c, err := content.NewCatalog(Tables(), content.DefaultHooks())
	if err != nil {
		panic(err)
	}
	return c
}

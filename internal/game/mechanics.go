/*
Package game
File: mechanics.go
Description:
    The derived-stat rules: buoyancy difficulty, passive income, crew totals
    and the equipment currently in use. Every function here is a pure read of
    a state snapshot plus the catalog.
*/

package game

// BuoyancyDifficulty folds every owned buoyancy upgrade by multiplication,
// starting from 1. Lower is easier; it scales the reeling decay rate.
// Stacking is multiplicative: 0.8 and 0.6 give 0.48.
func BuoyancyDifficulty(s GameState, c *Catalog) float64 {
	multiplier := 1.0
	for _, id := range s.OwnedUpgradeIDs {
		u := c.Upgrade(id)
		if u != nil && u.Kind == UpgradeBuoyancy {
			multiplier *= u.Value
		}
	}
	return multiplier
}

// PassiveIncomeRate sums count × cps over all hired crew.
// Crew types no longer in the catalog contribute nothing.
func PassiveIncomeRate(s GameState, c *Catalog) int {
	cps := 0
	for crewID, count := range s.CrewMembers {
		if cr := c.CrewType(crewID); cr != nil {
			cps += cr.CPS * count
		}
	}
	return cps
}

// CrewTotal counts hired crew across all types.
func CrewTotal(s GameState) int {
	total := 0
	for _, count := range s.CrewMembers {
		total += count
	}
	return total
}

// CurrentRod resolves the equipped rod, falling back to the first catalog rod.
func CurrentRod(s GameState, c *Catalog) Rod {
	if r := c.Rod(s.EquippedRodID); r != nil {
		return *r
	}
	return c.Rods[0]
}

// CurrentShip resolves the active ship, falling back to the first catalog ship.
func CurrentShip(s GameState, c *Catalog) Ship {
	if sh := c.Ship(s.OwnedShipID); sh != nil {
		return *sh
	}
	return c.Ships[0]
}

// InventoryFull reports whether another catch would exceed capacity.
func InventoryFull(s GameState) bool {
	return len(s.Inventory) >= s.MaxInventory
}

// Stats is the derived view recomputed after every state change.
type Stats struct {
	BuoyancyDifficulty float64 `json:"buoyancy_difficulty"`
	PassiveIncome      int     `json:"passive_income"`
	CrewTotal          int     `json:"crew_total"`
	CrewCapacity       int     `json:"crew_capacity"`
	InventoryUsed      int     `json:"inventory_used"`
	InventoryMax       int     `json:"inventory_max"`
	EquippedRod        Rod     `json:"equipped_rod"`
	CurrentShip        Ship    `json:"current_ship"`
}

// ComputeStats derives every dependent value in one pass.
func ComputeStats(s GameState, c *Catalog) Stats {
	return Stats{
		BuoyancyDifficulty: BuoyancyDifficulty(s, c),
		PassiveIncome:      PassiveIncomeRate(s, c),
		CrewTotal:          CrewTotal(s),
		CrewCapacity:       CurrentShip(s, c).CrewCapacity,
		InventoryUsed:      len(s.Inventory),
		InventoryMax:       s.MaxInventory,
		EquippedRod:        CurrentRod(s, c),
		CurrentShip:        CurrentShip(s, c),
	}
}

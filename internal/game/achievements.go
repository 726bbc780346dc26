/*
Package game
File: achievements.go
Description:
    Achievement evaluation. Conditions are checked against a state
    snapshot and newly satisfied ids are returned for the Ledger to latch.
*/

package game

import "strings"

// EvaluateAchievements returns the ids of achievements whose condition holds
// and which are not yet unlocked, in catalog order. It never revokes: ids
// already in s.UnlockedAchievements are skipped without being re-checked.
func EvaluateAchievements(s GameState, c *Catalog) []string {
	var unlocked []string
	for _, a := range c.Achievements {
		if s.HasAchievement(a.ID) {
			continue
		}
		if a.Condition.Holds(s, c) {
			unlocked = append(unlocked, a.ID)
		}
	}
	return unlocked
}

// Holds evaluates the condition against a state snapshot.
// Unknown kinds are false.
func (cond Condition) Holds(s GameState, c *Catalog) bool {
	switch cond.Kind {
	case CondTotalFishCaught:
		return s.TotalFishCaught >= cond.AtLeast
	case CondMoney:
		return s.Money >= cond.AtLeast
	case CondCrewTotal:
		return CrewTotal(s) >= cond.AtLeast
	case CondInventorySize:
		return len(s.Inventory) >= cond.AtLeast
	case CondShipAtLeast:
		want := c.ShipIndex(cond.Ship)
		return want >= 0 && c.ShipIndex(s.OwnedShipID) >= want
	case CondUpgradesMatching:
		n := 0
		for _, id := range s.OwnedUpgradeIDs {
			for _, m := range cond.Match {
				if strings.Contains(id, m) {
					n++
					break
				}
			}
		}
		return n >= cond.AtLeast
	case CondAll:
		for _, sub := range cond.All {
			if !sub.Holds(s, c) {
				return false
			}
		}
		return len(cond.All) > 0
	case CondAny:
		for _, sub := range cond.Any {
			if sub.Holds(s, c) {
				return true
			}
		}
		return false
	}
	return false
}

/*
Package game
File: state.go
Description:
    Construction, defaulting and copying of the GameState save blob.

    Saves written by older builds may be missing newer fields; DecodeState
    fills those in so an old save keeps working.
*/

package game

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxInventory is the capacity used when a save or catalog omits one.
const DefaultMaxInventory = 10

// NewGameState returns a fresh save built from the catalog's first rod and ship.
func NewGameState(c *Catalog) GameState {
	return GameState{
		Money:                c.Balance.StartingMoney,
		Inventory:            []CaughtFish{},
		MaxInventory:         c.Balance.BaseInventory,
		EquippedRodID:        c.Rods[0].ID,
		OwnedRodIDs:          []string{c.Rods[0].ID},
		TotalFishCaught:      0,
		OwnedShipID:          c.Ships[0].ID,
		CrewMembers:          map[string]int{},
		OwnedUpgradeIDs:      []string{},
		UnlockedAchievements: []string{},
	}
}

// DecodeState parses a saved blob and defaults any missing fields.
// An error means the blob is unusable; callers fall back to NewGameState.
func DecodeState(blob []byte, c *Catalog) (GameState, error) {
	var s GameState
	if err := json.Unmarshal(blob, &s); err != nil {
		return GameState{}, fmt.Errorf("decode save: %w", err)
	}
	s.applyDefaults(c)
	return s, nil
}

// EncodeState serializes the full state for persistence.
func EncodeState(s GameState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return b, nil
}

func (s *GameState) applyDefaults(c *Catalog) {
	if s.OwnedShipID == "" {
		s.OwnedShipID = c.Ships[0].ID
	}
	if s.CrewMembers == nil {
		s.CrewMembers = map[string]int{}
	}
	if s.UnlockedAchievements == nil {
		s.UnlockedAchievements = []string{}
	}
	if s.MaxInventory == 0 {
		s.MaxInventory = DefaultMaxInventory
	}
	if s.OwnedUpgradeIDs == nil {
		s.OwnedUpgradeIDs = []string{}
	}
	if s.Inventory == nil {
		s.Inventory = []CaughtFish{}
	}
	if len(s.OwnedRodIDs) == 0 {
		s.OwnedRodIDs = []string{c.Rods[0].ID}
	}
	if s.EquippedRodID == "" || !contains(s.OwnedRodIDs, s.EquippedRodID) {
		s.EquippedRodID = s.OwnedRodIDs[0]
	}
	if s.Money < 0 {
		s.Money = 0
	}
}

// Clone returns a deep copy so readers never share slices or maps with the Ledger.
func (s GameState) Clone() GameState {
	out := s
	out.Inventory = append([]CaughtFish(nil), s.Inventory...)
	out.OwnedRodIDs = append([]string(nil), s.OwnedRodIDs...)
	out.OwnedUpgradeIDs = append([]string(nil), s.OwnedUpgradeIDs...)
	out.UnlockedAchievements = append([]string(nil), s.UnlockedAchievements...)
	out.CrewMembers = make(map[string]int, len(s.CrewMembers))
	for k, v := range s.CrewMembers {
		out.CrewMembers[k] = v
	}
	if out.Inventory == nil {
		out.Inventory = []CaughtFish{}
	}
	if out.OwnedRodIDs == nil {
		out.OwnedRodIDs = []string{}
	}
	if out.OwnedUpgradeIDs == nil {
		out.OwnedUpgradeIDs = []string{}
	}
	if out.UnlockedAchievements == nil {
		out.UnlockedAchievements = []string{}
	}
	return out
}

// OwnsRod reports whether the rod is in the owned set.
func (s GameState) OwnsRod(id string) bool { return contains(s.OwnedRodIDs, id) }

// OwnsUpgrade reports whether the upgrade has been bought.
func (s GameState) OwnsUpgrade(id string) bool { return contains(s.OwnedUpgradeIDs, id) }

// HasAchievement reports whether the achievement is already latched.
func (s GameState) HasAchievement(id string) bool { return contains(s.UnlockedAchievements, id) }

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

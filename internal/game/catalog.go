/*
Package game
File: catalog.go
Description:
    Loads and validates the static content tables (fish, rods, ships, crew,
    upgrades, achievements) and provides the lookup helpers every other
    component uses. The active catalog is held by a CatalogSource so a reload
    (SIGHUP or file watch) swaps it for all readers at once.
*/

package game

import (
	_ "embed"
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DefaultCatalog parses the catalog shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalogFile reads a catalog yaml file from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog unmarshals and validates catalog yaml.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c.Balance.BaseInventory <= 0 {
		c.Balance.BaseInventory = DefaultMaxInventory
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the invariants the rest of the engine relies on.
func (c *Catalog) Validate() error {
	if len(c.Rods) == 0 {
		return fmt.Errorf("catalog: at least one rod is required")
	}
	if len(c.Ships) == 0 {
		return fmt.Errorf("catalog: at least one ship is required")
	}
	if len(c.FishByRarity(RarityCommon)) == 0 {
		return fmt.Errorf("catalog: at least one common fish is required")
	}

	seen := map[string]bool{}
	check := func(table, id string) error {
		key := table + "/" + id
		if id == "" {
			return fmt.Errorf("catalog: %s entry without id", table)
		}
		if seen[key] {
			return fmt.Errorf("catalog: duplicate %s id %q", table, id)
		}
		seen[key] = true
		return nil
	}

	for _, f := range c.Fish {
		if err := check("fish", f.ID); err != nil {
			return err
		}
		if !f.Rarity.valid() {
			return fmt.Errorf("catalog: fish %q has unknown rarity %q", f.ID, f.Rarity)
		}
	}
	for _, r := range c.Rods {
		if err := check("rod", r.ID); err != nil {
			return err
		}
		if r.SpeedMultiplier <= 0 {
			return fmt.Errorf("catalog: rod %q needs a positive speed multiplier", r.ID)
		}
	}
	for _, s := range c.Ships {
		if err := check("ship", s.ID); err != nil {
			return err
		}
	}
	for _, cr := range c.Crew {
		if err := check("crew", cr.ID); err != nil {
			return err
		}
	}
	for _, u := range c.Upgrades {
		if err := check("upgrade", u.ID); err != nil {
			return err
		}
		if u.Kind != UpgradeStorage && u.Kind != UpgradeBuoyancy {
			return fmt.Errorf("catalog: upgrade %q has unknown type %q", u.ID, u.Kind)
		}
	}
	for _, a := range c.Achievements {
		if err := check("achievement", a.ID); err != nil {
			return err
		}
		if err := a.Condition.validate(c); err != nil {
			return fmt.Errorf("catalog: achievement %q: %w", a.ID, err)
		}
	}
	return nil
}

func (r Rarity) valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary, RarityTogoreBlessed:
		return true
	}
	return false
}

func (cond Condition) validate(c *Catalog) error {
	switch cond.Kind {
	case CondTotalFishCaught, CondMoney, CondCrewTotal, CondInventorySize, CondUpgradesMatching:
		return nil
	case CondShipAtLeast:
		if c.ShipIndex(cond.Ship) < 0 {
			return fmt.Errorf("unknown ship %q", cond.Ship)
		}
		return nil
	case CondAll, CondAny:
		for _, sub := range append(append([]Condition{}, cond.All...), cond.Any...) {
			if err := sub.validate(c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown condition kind %q", cond.Kind)
}

// Rod returns the rod with the given id, or nil.
func (c *Catalog) Rod(id string) *Rod {
	for i := range c.Rods {
		if c.Rods[i].ID == id {
			return &c.Rods[i]
		}
	}
	return nil
}

// Ship returns the ship with the given id, or nil.
func (c *Catalog) Ship(id string) *Ship {
	if i := c.ShipIndex(id); i >= 0 {
		return &c.Ships[i]
	}
	return nil
}

// ShipIndex returns the progression position of a ship, or -1.
func (c *Catalog) ShipIndex(id string) int {
	for i := range c.Ships {
		if c.Ships[i].ID == id {
			return i
		}
	}
	return -1
}

// CrewType returns the crew type with the given id, or nil.
func (c *Catalog) CrewType(id string) *Crew {
	for i := range c.Crew {
		if c.Crew[i].ID == id {
			return &c.Crew[i]
		}
	}
	return nil
}

// Upgrade returns the upgrade with the given id, or nil.
func (c *Catalog) Upgrade(id string) *Upgrade {
	for i := range c.Upgrades {
		if c.Upgrades[i].ID == id {
			return &c.Upgrades[i]
		}
	}
	return nil
}

// FishType returns the catalog fish with the given id, or nil.
func (c *Catalog) FishType(id string) *Fish {
	for i := range c.Fish {
		if c.Fish[i].ID == id {
			return &c.Fish[i]
		}
	}
	return nil
}

// AchievementByID returns the achievement definition with the given id, or nil.
func (c *Catalog) AchievementByID(id string) *Achievement {
	for i := range c.Achievements {
		if c.Achievements[i].ID == id {
			return &c.Achievements[i]
		}
	}
	return nil
}

// FishByRarity returns every fish in any of the given tiers, in catalog order.
func (c *Catalog) FishByRarity(tiers ...Rarity) []Fish {
	var pool []Fish
	for _, f := range c.Fish {
		for _, t := range tiers {
			if f.Rarity == t {
				pool = append(pool, f)
				break
			}
		}
	}
	return pool
}

// CatalogSource holds the active catalog. Safe for concurrent use.
type CatalogSource struct {
	current atomic.Pointer[Catalog]
}

// NewCatalogSource wraps an initial catalog.
func NewCatalogSource(c *Catalog) *CatalogSource {
	s := &CatalogSource{}
	s.current.Store(c)
	return s
}

// Catalog returns the active catalog.
func (s *CatalogSource) Catalog() *Catalog {
	return s.current.Load()
}

// Swap replaces the active catalog.
func (s *CatalogSource) Swap(c *Catalog) {
	s.current.Store(c)
}

/*
Package game
File: models.go
Description:
    Defines the data structures of Togore's Tuna Hunt.
    The catalog types map directly to 'catalog.yaml' and the JSON API;
    GameState is the persisted save blob.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

// Rarity is the tier a fish is grouped under for catch selection.
type Rarity string

const (
	RarityCommon        Rarity = "Common"
	RarityUncommon      Rarity = "Uncommon"
	RarityRare          Rarity = "Rare"
	RarityEpic          Rarity = "Epic"
	RarityLegendary     Rarity = "Legendary"
	RarityTogoreBlessed Rarity = "Togore Blessed"
)

// UpgradeKind selects which derived stat an upgrade feeds.
type UpgradeKind string

const (
	UpgradeStorage  UpgradeKind = "storage"  // Adds Value to maxInventory on purchase
	UpgradeBuoyancy UpgradeKind = "buoyancy" // Multiplies the reeling decay rate by Value
)

// Balance stores the tuning values a fresh save starts from.
type Balance struct {
	StartingMoney int `yaml:"starting_money" json:"starting_money"` // Money given to a new or reset save
	BaseInventory int `yaml:"base_inventory" json:"base_inventory"` // Inventory capacity before storage upgrades
}

// Fish is a catalog entry for something that can end up on the hook.
type Fish struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	BasePrice   int     `yaml:"base_price" json:"basePrice"`
	Rarity      Rarity  `yaml:"rarity" json:"rarity"`
	Description string  `yaml:"description" json:"description"`
	Emoji       string  `yaml:"emoji" json:"imageEmoji"`
	Weight      float64 `yaml:"weight" json:"weight"` // Cosmetic; not used for selection
}

// CaughtFish is a Fish instance sitting in the player's inventory.
type CaughtFish struct {
	Fish
	UniqueID string `json:"uniqueId"` // Distinguishes otherwise identical fish
	CaughtAt int64  `json:"caughtAt"` // Unix milliseconds
}

// Rod is purchasable fishing equipment.
type Rod struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	Price           int     `yaml:"price" json:"price"`
	SpeedMultiplier float64 `yaml:"speed_multiplier" json:"speed_multiplier"` // Higher is faster
	LuckFactor      float64 `yaml:"luck_factor" json:"luck_factor"`           // Higher shifts catches toward rare tiers
	Description     string  `yaml:"description" json:"description"`
}

// Ship bounds how many crew can be hired. Catalog order is progression order.
type Ship struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Price        int    `yaml:"price" json:"price"`
	CrewCapacity int    `yaml:"crew_capacity" json:"crew_capacity"`
	Description  string `yaml:"description" json:"description"`
}

// Crew is a hireable source of passive income.
type Crew struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Price       int    `yaml:"price" json:"price"`
	CPS         int    `yaml:"cps" json:"cps"` // Cash per second, per hired member
	Description string `yaml:"description" json:"description"`
}

// Upgrade is a one-off purchase that changes a derived stat.
type Upgrade struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Kind        UpgradeKind `yaml:"type" json:"type"`
	Value       float64     `yaml:"value" json:"value"`
	Price       int         `yaml:"price" json:"price"`
	Description string      `yaml:"description" json:"description"`
}

// ConditionKind tags the variant held by a Condition.
type ConditionKind string

const (
	CondTotalFishCaught  ConditionKind = "total_fish_caught"
	CondMoney            ConditionKind = "money"
	CondCrewTotal        ConditionKind = "crew_total"
	CondInventorySize    ConditionKind = "inventory_size"
	CondShipAtLeast      ConditionKind = "ship_at_least"
	CondUpgradesMatching ConditionKind = "upgrades_matching"
	CondAll              ConditionKind = "all"
	CondAny              ConditionKind = "any"
)

// Condition is a serializable predicate over GameState.
// Only the fields relevant to Kind are read.
type Condition struct {
	Kind    ConditionKind `yaml:"kind" json:"kind"`
	AtLeast int           `yaml:"at_least,omitempty" json:"at_least,omitempty"`
	Ship    string        `yaml:"ship,omitempty" json:"ship,omitempty"`   // ship_at_least
	Match   []string      `yaml:"match,omitempty" json:"match,omitempty"` // upgrades_matching: id substrings
	All     []Condition   `yaml:"all,omitempty" json:"all,omitempty"`
	Any     []Condition   `yaml:"any,omitempty" json:"any,omitempty"`
}

// Achievement is a one-way latch unlocked when Condition first holds.
type Achievement struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Description   string    `yaml:"description" json:"description"`
	Condition     Condition `yaml:"condition" json:"condition"`
	RewardMessage string    `yaml:"reward_message" json:"reward_message"`
}

// Catalog is the root of 'catalog.yaml'. It is immutable once parsed.
type Catalog struct {
	Balance      Balance       `yaml:"balance" json:"balance"`
	Fish         []Fish        `yaml:"fish" json:"fish"`
	Rods         []Rod         `yaml:"rods" json:"rods"`
	Ships        []Ship        `yaml:"ships" json:"ships"`
	Crew         []Crew        `yaml:"crew" json:"crew"`
	Upgrades     []Upgrade     `yaml:"upgrades" json:"upgrades"`
	Achievements []Achievement `yaml:"achievements" json:"achievements"`
}

// GameState is the whole save. Only the Ledger mutates it.
type GameState struct {
	Money                int            `json:"money"`
	Inventory            []CaughtFish   `json:"inventory"`
	MaxInventory         int            `json:"maxInventory"`
	EquippedRodID        string         `json:"equippedRodId"`
	OwnedRodIDs          []string       `json:"ownedRodIds"`
	TotalFishCaught      int            `json:"totalFishCaught"`
	OwnedShipID          string         `json:"ownedShipId"`
	CrewMembers          map[string]int `json:"crewMembers"`
	OwnedUpgradeIDs      []string       `json:"ownedUpgradeIds"`
	UnlockedAchievements []string       `json:"unlockedAchievements"`
}

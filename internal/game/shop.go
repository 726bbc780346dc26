package game

// RodOffer is one rod row in the shop.
type RodOffer struct {
	Rod        Rod  `json:"rod"`
	Owned      bool `json:"owned"`
	Equipped   bool `json:"equipped"`
	Affordable bool `json:"affordable"`
}

// ShipOffer is one ship row. Ships before the current one are stored;
// only the next one can be bought.
type ShipOffer struct {
	Ship       Ship `json:"ship"`
	Current    bool `json:"current"`
	Stored     bool `json:"stored"`
	Next       bool `json:"next"`
	Locked     bool `json:"locked"`
	Affordable bool `json:"affordable"`
}

// CrewOffer is one crew row.
type CrewOffer struct {
	Crew       Crew `json:"crew"`
	Hired      int  `json:"hired"`
	Affordable bool `json:"affordable"`
	HasSpace   bool `json:"has_space"`
}

// UpgradeOffer is one upgrade row.
type UpgradeOffer struct {
	Upgrade    Upgrade `json:"upgrade"`
	Owned      bool    `json:"owned"`
	Affordable bool    `json:"affordable"`
}

// Shop is the full storefront for a state snapshot.
type Shop struct {
	Money        int            `json:"money"`
	Rods         []RodOffer     `json:"rods"`
	Ships        []ShipOffer    `json:"ships"`
	Crew         []CrewOffer    `json:"crew"`
	CrewTotal    int            `json:"crew_total"`
	CrewCapacity int            `json:"crew_capacity"`
	Upgrades     []UpgradeOffer `json:"upgrades"`
}

// BuildShop computes what the player can see and afford.
func BuildShop(s GameState, c *Catalog) Shop {
	shop := Shop{
		Money:        s.Money,
		CrewTotal:    CrewTotal(s),
		CrewCapacity: CurrentShip(s, c).CrewCapacity,
	}

	for _, r := range c.Rods {
		shop.Rods = append(shop.Rods, RodOffer{
			Rod:        r,
			Owned:      s.OwnsRod(r.ID),
			Equipped:   s.EquippedRodID == r.ID,
			Affordable: s.Money >= r.Price,
		})
	}

	current := c.ShipIndex(s.OwnedShipID)
	if current < 0 {
		current = 0
	}
	for i, sh := range c.Ships {
		offer := ShipOffer{
			Ship:       sh,
			Current:    i == current,
			Stored:     i < current,
			Next:       i == current+1,
			Affordable: s.Money >= sh.Price,
		}
		offer.Locked = i > current+1
		shop.Ships = append(shop.Ships, offer)
	}

	hasSpace := shop.CrewTotal < shop.CrewCapacity
	for _, cr := range c.Crew {
		shop.Crew = append(shop.Crew, CrewOffer{
			Crew:       cr,
			Hired:      s.CrewMembers[cr.ID],
			Affordable: s.Money >= cr.Price,
			HasSpace:   hasSpace,
		})
	}

	for _, u := range c.Upgrades {
		shop.Upgrades = append(shop.Upgrades, UpgradeOffer{
			Upgrade:    u,
			Owned:      s.OwnsUpgrade(u.ID),
			Affordable: s.Money >= u.Price,
		})
	}
	return shop
}

// IsNextShip reports whether id is the one ship the player may buy next.
func IsNextShip(s GameState, c *Catalog, id string) bool {
	current := c.ShipIndex(s.OwnedShipID)
	if current < 0 {
		current = 0
	}
	return c.ShipIndex(id) == current+1
}

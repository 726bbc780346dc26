/*
Package game
File: resolver.go
Description:
    The Catch Resolver turns one landed reel into one fish. The equipped
    rod's luck scales the roll, the roll picks a rarity pool, and a fish is
    drawn uniformly from that pool.
*/

package game

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Random is the draw source used by the resolver and the reel.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// NewRandom returns a PCG source seeded deterministically from seed.
// #nosec G404
func NewRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(seedWord(seed, "catch"), seedWord(seed, "reel")))
}

// NewTimeRandom seeds from the wall clock.
func NewTimeRandom() *rand.Rand {
	return NewRandom(time.Now().UnixNano())
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Tier thresholds, checked highest first against the luck-scaled roll.
const (
	legendaryThreshold = 0.98
	epicThreshold      = 0.90
	rareThreshold      = 0.75
	uncommonThreshold  = 0.50
	luckWeight         = 0.2
)

// CatchRoll scales a uniform draw by rod luck. The result is not capped at 1.
func CatchRoll(u, luckFactor float64) float64 {
	return u * (1 + luckFactor*luckWeight)
}

// TiersForRoll maps a roll to the rarity tiers whose fish form the pool.
func TiersForRoll(roll float64) []Rarity {
	switch {
	case roll > legendaryThreshold:
		return []Rarity{RarityTogoreBlessed, RarityLegendary}
	case roll > epicThreshold:
		return []Rarity{RarityEpic}
	case roll > rareThreshold:
		return []Rarity{RarityRare}
	case roll > uncommonThreshold:
		return []Rarity{RarityUncommon}
	default:
		return []Rarity{RarityCommon}
	}
}

// CatchPool resolves the candidate fish for a roll, falling back to the
// common pool when the tier has no fish defined.
func CatchPool(c *Catalog, roll float64) []Fish {
	pool := c.FishByRarity(TiersForRoll(roll)...)
	if len(pool) == 0 {
		pool = c.FishByRarity(RarityCommon)
	}
	return pool
}

// Resolver picks which fish a successful reel lands.
type Resolver struct {
	catalog *CatalogSource
	rng     Random
}

// NewResolver builds a resolver over the active catalog.
func NewResolver(catalog *CatalogSource, rng Random) *Resolver {
	return &Resolver{catalog: catalog, rng: rng}
}

// Resolve rolls a tier then picks uniformly within it. Fish weight is not used.
func (r *Resolver) Resolve(luckFactor float64) Fish {
	roll := CatchRoll(r.rng.Float64(), luckFactor)
	pool := CatchPool(r.catalog.Catalog(), roll)
	return pool[r.rng.IntN(len(pool))]
}

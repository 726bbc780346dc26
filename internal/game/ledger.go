/*
Package game
File: ledger.go
Description:
    The Progression Ledger is the single owner of the session's GameState.
    Every player action is one Ledger method: it checks its preconditions,
    then either applies the whole change or leaves the state untouched.

    After each applied change the Ledger latches newly satisfied
    achievements, writes the full save blob to the store and notifies
    subscribers with a snapshot.
*/

package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/everforgeworks/togore-tuna-hunt/internal/store"
)

// Outcome reports what a Ledger operation did. Rejections are not errors.
type Outcome string

const (
	Applied           Outcome = "applied"
	InsufficientFunds Outcome = "insufficient_funds"
	AlreadyOwned      Outcome = "already_owned"
	NotOwned          Outcome = "not_owned"
	InventoryIsFull   Outcome = "inventory_full"
	CrewIsFull        Outcome = "crew_full"
	NotFound          Outcome = "not_found"
	InvalidPrice      Outcome = "invalid_price"
	NoIncome          Outcome = "no_income"
)

// OK reports whether the operation changed state.
func (o Outcome) OK() bool { return o == Applied }

// Change is delivered to subscribers after every applied operation.
type Change struct {
	Op       string        `json:"op"`
	State    GameState     `json:"state"`
	Unlocked []Achievement `json:"unlocked,omitempty"`
}

// LedgerOptions configures OpenLedger.
type LedgerOptions struct {
	SaveID      string
	Store       store.Store
	Logger      *zap.Logger
	SaveTimeout time.Duration
}

// Ledger owns the GameState. Safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	notifyMu sync.Mutex // keeps subscriber delivery in mutation order

	state       GameState
	catalog     *CatalogSource
	store       store.Store
	saveID      string
	saveTimeout time.Duration
	log         *zap.Logger
	subscribers []func(Change)
}

// OpenLedger loads the save for opts.SaveID, or starts a fresh one when the
// save is absent, unreadable or malformed. Loading never fails.
func OpenLedger(ctx context.Context, catalog *CatalogSource, opts LedgerOptions) *Ledger {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}

	l := &Ledger{
		catalog:     catalog,
		store:       opts.Store,
		saveID:      opts.SaveID,
		saveTimeout: opts.SaveTimeout,
		log:         log.Named("ledger"),
	}

	c := catalog.Catalog()
	l.state = NewGameState(c)

	blob, err := l.store.Load(ctx, l.saveID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.log.Info("no save found, starting fresh", zap.String("save_id", l.saveID))
	case err != nil:
		l.log.Warn("save unreadable, starting fresh", zap.String("save_id", l.saveID), zap.Error(err))
	default:
		loaded, err := DecodeState(blob, c)
		if err != nil {
			l.log.Warn("save malformed, starting fresh", zap.String("save_id", l.saveID), zap.Error(err))
		} else {
			l.state = loaded
		}
	}

	l.mu.Lock()
	l.latchAchievementsLocked(c)
	l.persistLocked()
	l.mu.Unlock()
	return l
}

// Subscribe registers fn for every applied change. fn must not call back
// into the Ledger's mutating methods.
func (l *Ledger) Subscribe(fn func(Change)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// Stats derives the dependent values from the current state.
func (l *Ledger) Stats() Stats {
	s := l.Snapshot()
	return ComputeStats(s, l.catalog.Catalog())
}

// Catalog returns the active catalog.
func (l *Ledger) Catalog() *Catalog {
	return l.catalog.Catalog()
}

// EquippedRod returns the rod currently in use.
func (l *Ledger) EquippedRod() Rod {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CurrentRod(l.state, l.catalog.Catalog())
}

// Difficulty returns the current buoyancy difficulty.
func (l *Ledger) Difficulty() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return BuoyancyDifficulty(l.state, l.catalog.Catalog())
}

// InventoryFull reports whether another catch would be rejected.
func (l *Ledger) InventoryFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return InventoryFull(l.state)
}

// RecordCatch appends a caught fish. Rejected at capacity.
func (l *Ledger) RecordCatch(f CaughtFish) Outcome {
	return l.apply("catch", func(s *GameState, _ *Catalog) Outcome {
		if InventoryFull(*s) {
			return InventoryIsFull
		}
		s.Inventory = append(s.Inventory, f)
		s.TotalFishCaught++
		return Applied
	})
}

// Sell removes the fish with uniqueID and credits price. The price is the
// caller's (appraised or base); only negative prices are refused.
func (l *Ledger) Sell(uniqueID string, price int) Outcome {
	return l.apply("sell", func(s *GameState, _ *Catalog) Outcome {
		if price < 0 {
			return InvalidPrice
		}
		idx := -1
		for i, f := range s.Inventory {
			if f.UniqueID == uniqueID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return NotFound
		}
		s.Inventory = append(s.Inventory[:idx:idx], s.Inventory[idx+1:]...)
		s.Money += price
		return Applied
	})
}

// BuyRod purchases and auto-equips a rod.
func (l *Ledger) BuyRod(rod Rod) Outcome {
	return l.apply("buy_rod", func(s *GameState, _ *Catalog) Outcome {
		if s.OwnsRod(rod.ID) {
			return AlreadyOwned
		}
		if s.Money < rod.Price {
			return InsufficientFunds
		}
		s.Money -= rod.Price
		s.OwnedRodIDs = append(s.OwnedRodIDs, rod.ID)
		s.EquippedRodID = rod.ID
		return Applied
	})
}

// EquipRod switches to an owned rod. No cost.
func (l *Ledger) EquipRod(rodID string) Outcome {
	return l.apply("equip_rod", func(s *GameState, _ *Catalog) Outcome {
		if !s.OwnsRod(rodID) {
			return NotOwned
		}
		s.EquippedRodID = rodID
		return Applied
	})
}

// BuyShip replaces the current ship. The previous ship is not retained.
func (l *Ledger) BuyShip(ship Ship) Outcome {
	return l.apply("buy_ship", func(s *GameState, _ *Catalog) Outcome {
		if s.Money < ship.Price {
			return InsufficientFunds
		}
		s.Money -= ship.Price
		s.OwnedShipID = ship.ID
		return Applied
	})
}

// HireCrew adds one member of the crew type if the ship has room.
func (l *Ledger) HireCrew(crew Crew) Outcome {
	return l.apply("hire_crew", func(s *GameState, c *Catalog) Outcome {
		if s.Money < crew.Price {
			return InsufficientFunds
		}
		if CrewTotal(*s) >= CurrentShip(*s, c).CrewCapacity {
			return CrewIsFull
		}
		s.Money -= crew.Price
		s.CrewMembers[crew.ID]++
		return Applied
	})
}

// BuyUpgrade purchases an upgrade once. Storage upgrades raise capacity immediately.
func (l *Ledger) BuyUpgrade(u Upgrade) Outcome {
	return l.apply("buy_upgrade", func(s *GameState, _ *Catalog) Outcome {
		if s.OwnsUpgrade(u.ID) {
			return AlreadyOwned
		}
		if s.Money < u.Price {
			return InsufficientFunds
		}
		s.Money -= u.Price
		s.OwnedUpgradeIDs = append(s.OwnedUpgradeIDs, u.ID)
		if u.Kind == UpgradeStorage {
			s.MaxInventory += int(u.Value)
		}
		return Applied
	})
}

// TickPassiveIncome credits one interval of crew income.
func (l *Ledger) TickPassiveIncome() Outcome {
	return l.apply("passive_income", func(s *GameState, c *Catalog) Outcome {
		rate := PassiveIncomeRate(*s, c)
		if rate <= 0 {
			return NoIncome
		}
		s.Money += rate
		return Applied
	})
}

// Reset deletes the persisted save and reinitializes to defaults.
// Callers confirm with the player before calling.
func (l *Ledger) Reset(ctx context.Context) error {
	var deleteErr error
	l.mu.Lock()
	if err := l.store.Delete(ctx, l.saveID); err != nil && !errors.Is(err, store.ErrNotFound) {
		l.log.Error("delete save", zap.String("save_id", l.saveID), zap.Error(err))
		deleteErr = err
	}
	l.mu.Unlock()

	l.apply("reset", func(s *GameState, c *Catalog) Outcome {
		*s = NewGameState(c)
		return Applied
	})
	return deleteErr
}

func (l *Ledger) apply(op string, fn func(s *GameState, c *Catalog) Outcome) Outcome {
	l.mu.Lock()
	c := l.catalog.Catalog()
	out := fn(&l.state, c)
	if !out.OK() {
		l.mu.Unlock()
		l.log.Debug("operation rejected", zap.String("op", op), zap.String("outcome", string(out)))
		return out
	}

	unlocked := l.latchAchievementsLocked(c)
	l.persistLocked()
	change := Change{Op: op, State: l.state.Clone(), Unlocked: unlocked}
	subscribers := append([]func(Change){}, l.subscribers...)

	l.notifyMu.Lock()
	l.mu.Unlock()
	for _, sub := range subscribers {
		sub(change)
	}
	l.notifyMu.Unlock()
	return out
}

func (l *Ledger) latchAchievementsLocked(c *Catalog) []Achievement {
	ids := EvaluateAchievements(l.state, c)
	if len(ids) == 0 {
		return nil
	}
	l.state.UnlockedAchievements = append(l.state.UnlockedAchievements, ids...)
	out := make([]Achievement, 0, len(ids))
	for _, id := range ids {
		if a := c.AchievementByID(id); a != nil {
			out = append(out, *a)
			l.log.Info("achievement unlocked", zap.String("id", id))
		}
	}
	return out
}

func (l *Ledger) persistLocked() {
	blob, err := EncodeState(l.state)
	if err != nil {
		l.log.Error("encode save", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.saveTimeout)
	defer cancel()
	if err := l.store.Save(ctx, l.saveID, blob); err != nil {
		l.log.Error("persist save", zap.String("save_id", l.saveID), zap.Error(err))
	}
}

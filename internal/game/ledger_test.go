package game

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/togore-tuna-hunt/internal/store"
)

func TestOpenLedgerFresh(t *testing.T) {
	l, st := openTestLedger(t, "")
	s := l.Snapshot()

	assert.Equal(t, 0, s.Money)
	assert.Equal(t, "twig", s.EquippedRodID)
	assert.Equal(t, []string{"twig"}, s.OwnedRodIDs)
	assert.Equal(t, "raft", s.OwnedShipID)
	assert.Equal(t, 10, s.MaxInventory)
	assert.Empty(t, s.Inventory)
	assert.Empty(t, s.UnlockedAchievements)
	assert.Equal(t, 1, st.Saves(), "fresh state is persisted at load")
}

func TestOpenLedgerDefaultsOldSave(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 50, "inventory": []}`)
	s := l.Snapshot()

	assert.Equal(t, 50, s.Money)
	assert.Equal(t, "raft", s.OwnedShipID)
	assert.Equal(t, 10, s.MaxInventory)
	assert.Equal(t, []string{"twig"}, s.OwnedRodIDs)
	assert.Equal(t, "twig", s.EquippedRodID)
	assert.NotNil(t, s.CrewMembers)
	assert.NotNil(t, s.OwnedUpgradeIDs)
}

func TestOpenLedgerRepairsEquippedRod(t *testing.T) {
	l, _ := openTestLedger(t, `{"ownedRodIds": ["bamboo"], "equippedRodId": "harpoon", "money": -3}`)
	s := l.Snapshot()

	assert.Equal(t, "bamboo", s.EquippedRodID)
	assert.Equal(t, 0, s.Money)
}

func TestOpenLedgerMalformedSave(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": "lots"`)
	c := mustCatalog(t)

	assert.Empty(t, cmp.Diff(NewGameState(c), l.Snapshot()))
}

func TestOpenLedgerLatchesOnLoad(t *testing.T) {
	l, _ := openTestLedger(t, `{"totalFishCaught": 12, "money": 6000}`)

	assert.Equal(t, []string{"first_fish", "novice", "rich"}, l.Snapshot().UnlockedAchievements)
}

func TestRecordCatchAtCapacity(t *testing.T) {
	l, st := openTestLedger(t, `{"maxInventory": 1, "inventory": [{"id":"boot","uniqueId":"x"}]}`)
	before := l.Snapshot()
	saves := st.Saves()

	out := l.RecordCatch(tinyTuna("y"))

	assert.Equal(t, InventoryIsFull, out)
	assert.Empty(t, cmp.Diff(before, l.Snapshot()))
	assert.Equal(t, saves, st.Saves(), "rejections are not persisted")
}

func TestRecordCatchUnlocksFirstFish(t *testing.T) {
	l, _ := openTestLedger(t, "")
	var changes []Change
	l.Subscribe(func(ch Change) { changes = append(changes, ch) })

	require.Equal(t, Applied, l.RecordCatch(tinyTuna("a")))
	require.Equal(t, Applied, l.RecordCatch(tinyTuna("b")))

	require.Len(t, changes, 2)
	require.Len(t, changes[0].Unlocked, 1)
	assert.Equal(t, "first_fish", changes[0].Unlocked[0].ID)
	assert.Empty(t, changes[1].Unlocked, "latched achievements are reported once")
	assert.Equal(t, 2, changes[1].State.TotalFishCaught)
}

func TestBuyRodInsufficientFunds(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 199}`)
	before := l.Snapshot()

	out := l.BuyRod(*l.Catalog().Rod("bamboo"))

	assert.Equal(t, InsufficientFunds, out)
	assert.False(t, out.OK())
	assert.Empty(t, cmp.Diff(before, l.Snapshot()))
}

func TestBuyRodEquipsAndRejectsDuplicate(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 500}`)
	bamboo := *l.Catalog().Rod("bamboo")

	require.Equal(t, Applied, l.BuyRod(bamboo))
	s := l.Snapshot()
	assert.Equal(t, 300, s.Money)
	assert.Equal(t, "bamboo", s.EquippedRodID)
	assert.Equal(t, "bamboo", l.EquippedRod().ID)

	assert.Equal(t, AlreadyOwned, l.BuyRod(bamboo))
	assert.Equal(t, 300, l.Snapshot().Money)
}

func TestEquipRod(t *testing.T) {
	l, _ := openTestLedger(t, `{"ownedRodIds": ["twig", "bamboo"], "equippedRodId": "bamboo"}`)

	assert.Equal(t, NotOwned, l.EquipRod("harpoon"))
	assert.Equal(t, Applied, l.EquipRod("twig"))
	assert.Equal(t, "twig", l.Snapshot().EquippedRodID)
}

func TestSellByUniqueID(t *testing.T) {
	save := `{"inventory": [
		{"id":"tiny_tuna","basePrice":15,"uniqueId":"a","caughtAt":1000},
		{"id":"tiny_tuna","basePrice":15,"uniqueId":"b","caughtAt":2000}
	]}`
	l, _ := openTestLedger(t, save)

	require.Equal(t, Applied, l.Sell("a", 15))
	s := l.Snapshot()
	assert.Equal(t, 15, s.Money)
	require.Len(t, s.Inventory, 1)
	assert.Equal(t, "b", s.Inventory[0].UniqueID)
	assert.Equal(t, int64(2000), s.Inventory[0].CaughtAt)

	assert.Equal(t, NotFound, l.Sell("a", 15))
	assert.Equal(t, InvalidPrice, l.Sell("b", -1))
	assert.Equal(t, 15, l.Snapshot().Money)
}

func TestBuyShipReplacesAndUnlocksFleet(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 12000, "ownedShipId": "dinghy"}`)
	var unlocked []string
	l.Subscribe(func(ch Change) {
		for _, a := range ch.Unlocked {
			unlocked = append(unlocked, a.ID)
		}
	})

	require.Equal(t, Applied, l.BuyShip(*l.Catalog().Ship("trawler")))
	s := l.Snapshot()
	assert.Equal(t, "trawler", s.OwnedShipID)
	assert.Equal(t, 2000, s.Money)
	assert.Equal(t, []string{"fleet"}, unlocked)

	assert.Equal(t, InsufficientFunds, l.BuyShip(*l.Catalog().Ship("yacht")))
}

func TestHireCrewRespectsShipCapacity(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 10000, "ownedShipId": "dinghy"}`)
	intern := *l.Catalog().CrewType("intern")

	for i := 0; i < 3; i++ {
		require.Equal(t, Applied, l.HireCrew(intern), "hire %d", i+1)
	}
	before := l.Snapshot()
	assert.Equal(t, CrewIsFull, l.HireCrew(intern))
	assert.Empty(t, cmp.Diff(before, l.Snapshot()))
	assert.Equal(t, 9700, before.Money)
	assert.Equal(t, 3, before.CrewMembers["intern"])
}

func TestHireCrewChecksFundsFirst(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 0, "crewMembers": {"intern": 1}}`)

	assert.Equal(t, InsufficientFunds, l.HireCrew(*l.Catalog().CrewType("intern")))
}

func TestBuyUpgrade(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 1000}`)
	c := l.Catalog()

	require.Equal(t, Applied, l.BuyUpgrade(*c.Upgrade("burlap_sack")))
	assert.Equal(t, 15, l.Snapshot().MaxInventory)
	assert.Equal(t, AlreadyOwned, l.BuyUpgrade(*c.Upgrade("burlap_sack")))

	require.Equal(t, Applied, l.BuyUpgrade(*c.Upgrade("corks")))
	assert.Equal(t, 15, l.Snapshot().MaxInventory, "buoyancy does not touch storage")
	assert.InDelta(t, 0.8, l.Difficulty(), 1e-9)
	assert.Equal(t, 550, l.Snapshot().Money)

	assert.Equal(t, InsufficientFunds, l.BuyUpgrade(*c.Upgrade("freezer")))
}

func TestTickPassiveIncome(t *testing.T) {
	l, _ := openTestLedger(t, "")
	assert.Equal(t, NoIncome, l.TickPassiveIncome())

	l, _ = openTestLedger(t, `{"money": 3, "ownedShipId": "dinghy", "crewMembers": {"intern": 2, "cat": 1}}`)
	require.Equal(t, Applied, l.TickPassiveIncome())
	assert.Equal(t, 10, l.Snapshot().Money)
	assert.Equal(t, 7, l.Stats().PassiveIncome)
}

func TestEveryAppliedChangeIsPersisted(t *testing.T) {
	l, st := openTestLedger(t, `{"money": 1000}`)
	base := st.Saves()

	l.BuyRod(*l.Catalog().Rod("bamboo"))
	l.BuyRod(*l.Catalog().Rod("harpoon")) // rejected
	l.RecordCatch(tinyTuna("a"))

	assert.Equal(t, base+2, st.Saves())

	blob, err := st.Load(context.Background(), "test")
	require.NoError(t, err)
	saved, err := DecodeState(blob, l.Catalog())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(l.Snapshot(), saved))
}

func TestSubscribersSeeChangesInOrder(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 1000}`)
	var ops []string
	l.Subscribe(func(ch Change) { ops = append(ops, ch.Op) })

	l.RecordCatch(tinyTuna("a"))
	l.Sell("a", 5)
	l.BuyUpgrade(*l.Catalog().Upgrade("burlap_sack"))
	l.EquipRod("nope")

	assert.Equal(t, []string{"catch", "sell", "buy_upgrade"}, ops)
}

func TestSnapshotIsDetached(t *testing.T) {
	l, _ := openTestLedger(t, `{"crewMembers": {"intern": 1}}`)

	s := l.Snapshot()
	s.CrewMembers["intern"] = 50
	s.OwnedRodIDs[0] = "harpoon"

	fresh := l.Snapshot()
	assert.Equal(t, 1, fresh.CrewMembers["intern"])
	assert.Equal(t, "twig", fresh.OwnedRodIDs[0])
}

func TestAchievementsAreNeverRevoked(t *testing.T) {
	l, _ := openTestLedger(t, `{"money": 5000}`)
	require.Contains(t, l.Snapshot().UnlockedAchievements, "rich")

	require.Equal(t, Applied, l.BuyRod(*l.Catalog().Rod("fiberglass")))
	assert.Less(t, l.Snapshot().Money, 5000)
	assert.Contains(t, l.Snapshot().UnlockedAchievements, "rich")
}

func TestReset(t *testing.T) {
	l, st := openTestLedger(t, `{"money": 1000, "totalFishCaught": 4}`)

	require.NoError(t, l.Reset(context.Background()))

	c := mustCatalog(t)
	assert.Empty(t, cmp.Diff(NewGameState(c), l.Snapshot()))

	blob, err := st.Load(context.Background(), "test")
	require.NoError(t, err)
	saved, err := DecodeState(blob, c)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Money)
}

func TestResetWithoutSave(t *testing.T) {
	st := store.NewMemoryStore()
	l := OpenLedger(context.Background(), NewCatalogSource(mustCatalog(t)), LedgerOptions{SaveID: "test", Store: st})
	require.NoError(t, st.Delete(context.Background(), "test"))

	assert.NoError(t, l.Reset(context.Background()))
}

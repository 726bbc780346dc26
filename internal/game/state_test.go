package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserSave = `{
	"money": 42,
	"inventory": [
		{"id":"boot","name":"Old Boot","basePrice":1,"rarity":"Common","description":"Not a fish. Still smells like one.","imageEmoji":"👢","weight":1,"uniqueId":"abc123","caughtAt":5},
		{"id":"boot","name":"Old Boot","basePrice":1,"rarity":"Common","description":"Not a fish. Still smells like one.","imageEmoji":"👢","weight":1,"uniqueId":"def456","caughtAt":9}
	],
	"maxInventory": 10,
	"equippedRodId": "twig",
	"ownedRodIds": ["twig"],
	"totalFishCaught": 2
}`

func TestDecodeStateKeepsFishIdentity(t *testing.T) {
	s, err := DecodeState([]byte(browserSave), mustCatalog(t))
	require.NoError(t, err)

	require.Len(t, s.Inventory, 2)
	boot := s.Inventory[0]
	assert.Equal(t, "abc123", boot.UniqueID)
	assert.Equal(t, int64(5), boot.CaughtAt)
	assert.Equal(t, 1, boot.BasePrice)
	assert.Equal(t, "👢", boot.Emoji)
	assert.Equal(t, "def456", s.Inventory[1].UniqueID)
	assert.Equal(t, int64(9), s.Inventory[1].CaughtAt)
}

func TestEncodeStateRoundTripsInventoryKeys(t *testing.T) {
	c := mustCatalog(t)
	s := NewGameState(c)
	s.Inventory = append(s.Inventory, tinyTuna("a"))

	blob, err := EncodeState(s)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"uniqueId":"a"`)
	assert.Contains(t, string(blob), `"basePrice":15`)

	back, err := DecodeState(blob, c)
	require.NoError(t, err)
	assert.Equal(t, s.Inventory, back.Inventory)
}

func TestLoadedBrowserSaveSellsByUniqueID(t *testing.T) {
	l, _ := openTestLedger(t, browserSave)

	require.Equal(t, Applied, l.Sell("abc123", 1))
	s := l.Snapshot()
	assert.Equal(t, 43, s.Money)
	require.Len(t, s.Inventory, 1)
	assert.Equal(t, "def456", s.Inventory[0].UniqueID)
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	_, err := DecodeState([]byte("{not json"), mustCatalog(t))
	assert.Error(t, err)
}

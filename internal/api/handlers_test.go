package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/togore-tuna-hunt/internal/appraisal"
	"github.com/everforgeworks/togore-tuna-hunt/internal/game"
	"github.com/everforgeworks/togore-tuna-hunt/internal/store"
)

// zeroRandom makes every hook delay the minimum and every catch the first common fish.
type zeroRandom struct{}

func (zeroRandom) Float64() float64 { return 0 }
func (zeroRandom) IntN(int) int     { return 0 }

type fixture struct {
	ts      *httptest.Server
	ledger  *game.Ledger
	sched   *game.ManualScheduler
	tracker *appraisal.Tracker
}

func newFixture(t *testing.T, save string) *fixture {
	t.Helper()

	c, err := game.DefaultCatalog()
	require.NoError(t, err)
	src := game.NewCatalogSource(c)

	st := store.NewMemoryStore()
	if save != "" {
		require.NoError(t, st.Save(context.Background(), "test", []byte(save)))
	}
	ledger := game.OpenLedger(context.Background(), src, game.LedgerOptions{SaveID: "test", Store: st})

	sched := game.NewManualScheduler(time.UnixMilli(1_700_000_000_000))
	reel := game.NewReel(ledger, src, game.ReelOptions{Random: zeroRandom{}, Scheduler: sched, Clock: sched})
	tracker := appraisal.NewTracker(context.Background(), appraisal.NewService(nil, time.Second, nil))

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub("*", nil)
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		tracker.Wait()
	})

	srv := NewServer(ledger, reel, tracker, hub, nil)
	ts := httptest.NewServer(CORS("*", srv.Routes()))
	t.Cleanup(ts.Close)

	return &fixture{ts: ts, ledger: ledger, sched: sched, tracker: tracker}
}

func (f *fixture) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(f.ts.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeState(t *testing.T, b []byte) StateResponse {
	t.Helper()
	var out StateResponse
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

const twoTinyTuna = `{"money": 0, "inventory": [
	{"id":"tiny_tuna","name":"Tiny Tuna","basePrice":15,"rarity":"Common","uniqueId":"a","caughtAt":1},
	{"id":"tiny_tuna","name":"Tiny Tuna","basePrice":15,"rarity":"Common","uniqueId":"b","caughtAt":2}
], "totalFishCaught": 2}`

func TestGetState(t *testing.T) {
	f := newFixture(t, "")

	resp, body := f.get(t, "/api/state")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeState(t, body)
	assert.Equal(t, 0, out.State.Money)
	assert.Equal(t, "twig", out.State.EquippedRodID)
	assert.Equal(t, 10, out.Stats.InventoryMax)
	assert.Equal(t, 1.0, out.Stats.BuoyancyDifficulty)
}

func TestBuyRod(t *testing.T) {
	f := newFixture(t, `{"money": 1000}`)

	resp, body := f.post(t, "/api/rods/buy", `{"rod_id":"bamboo"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	out := decodeState(t, body)
	assert.Equal(t, 800, out.State.Money)
	assert.Equal(t, "bamboo", out.State.EquippedRodID)
	assert.ElementsMatch(t, []string{"twig", "bamboo"}, out.State.OwnedRodIDs)

	resp, _ = f.post(t, "/api/rods/buy", `{"rod_id":"bamboo"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = f.post(t, "/api/rods/equip", `{"rod_id":"twig"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "twig", decodeState(t, body).State.EquippedRodID)
}

func TestBuyRodInsufficientFunds(t *testing.T) {
	f := newFixture(t, `{"money": 100}`)

	resp, _ := f.post(t, "/api/rods/buy", `{"rod_id":"bamboo"}`)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	s := f.ledger.Snapshot()
	assert.Equal(t, 100, s.Money)
	assert.Equal(t, []string{"twig"}, s.OwnedRodIDs)
}

func TestEquipUnownedRod(t *testing.T) {
	f := newFixture(t, "")

	resp, _ := f.post(t, "/api/rods/equip", `{"rod_id":"harpoon"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUnknownIDSuggestsClosest(t *testing.T) {
	f := newFixture(t, `{"money": 1000}`)

	resp, body := f.post(t, "/api/rods/buy", `{"rod_id":"bambo"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `did you mean "bamboo"?`)

	resp, body = f.post(t, "/api/crew/hire", `{"crew_id":"zzzzzzzz"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, string(body), "did you mean")
}

func TestMalformedJSON(t *testing.T) {
	f := newFixture(t, "")

	resp, _ := f.post(t, "/api/sell", `{"unique_id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSellByUniqueID(t *testing.T) {
	f := newFixture(t, twoTinyTuna)

	resp, body := f.post(t, "/api/sell", `{"unique_id":"b"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	out := decodeState(t, body)
	assert.Equal(t, 15, out.State.Money)
	require.Len(t, out.State.Inventory, 1)
	assert.Equal(t, "a", out.State.Inventory[0].UniqueID)

	resp, _ = f.post(t, "/api/sell", `{"unique_id":"b"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSellAtExplicitPrice(t *testing.T) {
	f := newFixture(t, twoTinyTuna)

	resp, body := f.post(t, "/api/sell", `{"unique_id":"a","price":99}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 99, decodeState(t, body).State.Money)

	resp, _ = f.post(t, "/api/sell", `{"unique_id":"b","price":-5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, f.ledger.Snapshot().Inventory, 1)
}

func TestSellUsesReadyAppraisal(t *testing.T) {
	f := newFixture(t, twoTinyTuna)

	resp, body := f.post(t, "/api/appraisals", `{"unique_id":"a"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	f.tracker.Wait()

	resp, body = f.get(t, "/api/appraisals?unique_id=a")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var a appraisal.Appraisal
	require.NoError(t, json.Unmarshal(body, &a))
	assert.Equal(t, appraisal.StatusSuccess, a.Status)
	require.NotNil(t, a.Result)

	resp, body = f.post(t, "/api/sell", `{"unique_id":"a"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, a.Result.Value, decodeState(t, body).State.Money)

	resp, _ = f.get(t, "/api/appraisals?unique_id=a")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sale discards the appraisal")
}

func TestBuyShipOnlyNext(t *testing.T) {
	f := newFixture(t, `{"money": 100000}`)

	resp, _ := f.post(t, "/api/ships/buy", `{"ship_id":"trawler"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 100000, f.ledger.Snapshot().Money)

	resp, body := f.post(t, "/api/ships/buy", `{"ship_id":"dinghy"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeState(t, body)
	assert.Equal(t, "dinghy", out.State.OwnedShipID)
	assert.Equal(t, 98000, out.State.Money)
	assert.Equal(t, 3, out.Stats.CrewCapacity)
}

func TestHireCrewCapacity(t *testing.T) {
	f := newFixture(t, `{"money": 1000}`)

	resp, _ := f.post(t, "/api/crew/hire", `{"crew_id":"intern"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The raft holds one.
	resp, _ = f.post(t, "/api/crew/hire", `{"crew_id":"intern"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 900, f.ledger.Snapshot().Money)
}

func TestBuyStorageUpgrade(t *testing.T) {
	f := newFixture(t, `{"money": 1000}`)

	resp, body := f.post(t, "/api/upgrades/buy", `{"upgrade_id":"burlap_sack"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 15, decodeState(t, body).State.MaxInventory)
}

func TestShop(t *testing.T) {
	f := newFixture(t, `{"money": 250}`)

	resp, body := f.get(t, "/api/shop")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var shop game.Shop
	require.NoError(t, json.Unmarshal(body, &shop))
	require.NotEmpty(t, shop.Ships)
	assert.True(t, shop.Ships[0].Current)
	assert.True(t, shop.Ships[1].Next)
	assert.True(t, shop.Ships[2].Locked)
	assert.True(t, shop.Rods[1].Affordable)
	assert.False(t, shop.Rods[2].Affordable)
}

func TestReset(t *testing.T) {
	f := newFixture(t, `{"money": 1000}`)

	resp, _ := f.post(t, "/api/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1000, f.ledger.Snapshot().Money)

	resp, body := f.post(t, "/api/reset", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decodeState(t, body).State.Money)
}

func TestCastAndReelOverHTTP(t *testing.T) {
	f := newFixture(t, "")

	resp, body := f.post(t, "/api/cast", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cast CastResponse
	require.NoError(t, json.Unmarshal(body, &cast))
	assert.True(t, cast.Cast)
	assert.Equal(t, game.ReelCasting, cast.Status.State)

	f.sched.Advance(500 * time.Millisecond)
	f.sched.Advance(500 * time.Millisecond)

	var reel ReelResponse
	for i := 0; i < 7; i++ {
		_, body = f.post(t, "/api/reel", ``)
		require.NoError(t, json.Unmarshal(body, &reel))
		if i < 6 {
			assert.False(t, reel.Landed, "input %d", i+1)
		}
	}
	assert.True(t, reel.Landed)
	assert.Equal(t, game.OutcomeCaught, reel.Outcome)
	assert.Equal(t, "Caught Literal Can of Tuna!", reel.Status.Message)

	s := f.ledger.Snapshot()
	require.Len(t, s.Inventory, 1)
	assert.Equal(t, "tuna_can", s.Inventory[0].ID)
	assert.Equal(t, int64(1_700_000_001_000), s.Inventory[0].CaughtAt)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, "")

	req, err := http.NewRequest(http.MethodOptions, f.ts.URL+"/api/cast", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
		Sender  string          `json:"sender"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	return Message{Type: msg.Type, Payload: msg.Payload, Sender: msg.Sender}
}

func TestWebSocketGreetingAndIntents(t *testing.T) {
	f := newFixture(t, `{"money": 1000}`)

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, TypeState, first.Type)
	assert.Equal(t, SenderSystem, first.Sender)
	var st StateResponse
	require.NoError(t, json.Unmarshal(first.Payload.(json.RawMessage), &st))
	assert.Equal(t, 1000, st.State.Money)

	second := readMessage(t, conn)
	assert.Equal(t, TypeReel, second.Type)

	require.NoError(t, conn.WriteJSON(Message{Type: IntentCast}))
	ev := readMessage(t, conn)
	require.Equal(t, TypeReel, ev.Type)
	var reel game.ReelEvent
	require.NoError(t, json.Unmarshal(ev.Payload.(json.RawMessage), &reel))
	assert.Equal(t, game.ReelCasting, reel.Status.State)

	// REST changes are pushed too.
	resp, _ := f.post(t, "/api/rods/buy", `{"rod_id":"bamboo"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pushed := readMessage(t, conn)
	require.Equal(t, TypeState, pushed.Type)
	require.NoError(t, json.Unmarshal(pushed.Payload.(json.RawMessage), &st))
	assert.Equal(t, 800, st.State.Money)
}

func TestSuggest(t *testing.T) {
	known := []string{"twig", "bamboo", "fiberglass", "togore_breath"}

	got, ok := suggest("fibreglass", known)
	assert.True(t, ok)
	assert.Equal(t, "fiberglass", got)

	got, ok = suggest("TWIGG", known)
	assert.True(t, ok)
	assert.Equal(t, "twig", got)

	_, ok = suggest("ab", known)
	assert.False(t, ok)

	_, ok = suggest("harpoon", known)
	assert.False(t, ok)
}

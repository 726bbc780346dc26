/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode the player's request, look the target up in the
    active catalog, call exactly one Ledger or Reel operation and return
    JSON. Game rules live in internal/game; this layer only translates
    Outcomes into status codes.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the id exist?)
    - Storefront rules (only the next ship can be bought)
    - Pricing sales from the appraisal tracker
*/

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/everforgeworks/togore-tuna-hunt/internal/appraisal"
	"github.com/everforgeworks/togore-tuna-hunt/internal/game"
)

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type SellRequest struct {
	UniqueID string `json:"unique_id"`
	Price    *int   `json:"price,omitempty"` // nil: appraised value if ready, else base price
}

type RodRequest struct {
	RodID string `json:"rod_id"`
}

type ShipRequest struct {
	ShipID string `json:"ship_id"`
}

type CrewRequest struct {
	CrewID string `json:"crew_id"`
}

type UpgradeRequest struct {
	UpgradeID string `json:"upgrade_id"`
}

type AppraisalRequest struct {
	UniqueID string `json:"unique_id"`
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// StateResponse pairs the state with its derived values.
type StateResponse struct {
	State game.GameState `json:"state"`
	Stats game.Stats     `json:"stats"`
}

type CastResponse struct {
	Cast   bool            `json:"cast"`
	Status game.ReelStatus `json:"status"`
}

type ReelResponse struct {
	Landed  bool             `json:"landed"`
	Outcome game.ReelOutcome `json:"outcome,omitempty"`
	Status  game.ReelStatus  `json:"status"`
}

// Server holds the session components the handlers act on.
type Server struct {
	ledger  *game.Ledger
	reel    *game.Reel
	tracker *appraisal.Tracker
	hub     *Hub
	log     *zap.Logger
}

// NewServer wires the handlers and forwards ledger, reel and appraisal
// events to the hub.
func NewServer(ledger *game.Ledger, reel *game.Reel, tracker *appraisal.Tracker, hub *Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{ledger: ledger, reel: reel, tracker: tracker, hub: hub, log: log.Named("api")}

	ledger.Subscribe(func(ch game.Change) {
		hub.Publish(TypeState, s.stateResponse(ch.State))
		for _, a := range ch.Unlocked {
			hub.Publish(TypeAchievement, a)
		}
	})
	reel.Subscribe(func(ev game.ReelEvent) {
		hub.Publish(TypeReel, ev)
	})
	tracker.OnUpdate(func(a appraisal.Appraisal) {
		hub.Publish(TypeAppraisal, a)
	})

	hub.greet = s.greeting
	hub.intents = s.handleIntent
	return s
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Persistence & Information Endpoints
	mux.HandleFunc("GET /api/state", s.HandleGetState)
	mux.HandleFunc("GET /api/stats", s.HandleGetStats)
	mux.HandleFunc("GET /api/catalog", s.HandleGetCatalog)
	mux.HandleFunc("GET /api/shop", s.HandleGetShop)
	mux.HandleFunc("GET /api/reel", s.HandleGetReel)
	mux.HandleFunc("GET /api/appraisals", s.HandleGetAppraisal)

	// Action Endpoints
	mux.HandleFunc("POST /api/cast", s.HandleCast)
	mux.HandleFunc("POST /api/reel", s.HandleReel)
	mux.HandleFunc("POST /api/sell", s.HandleSell)
	mux.HandleFunc("POST /api/rods/buy", s.HandleBuyRod)
	mux.HandleFunc("POST /api/rods/equip", s.HandleEquipRod)
	mux.HandleFunc("POST /api/ships/buy", s.HandleBuyShip)
	mux.HandleFunc("POST /api/crew/hire", s.HandleHireCrew)
	mux.HandleFunc("POST /api/upgrades/buy", s.HandleBuyUpgrade)
	mux.HandleFunc("POST /api/appraisals", s.HandleStartAppraisal)
	mux.HandleFunc("POST /api/reset", s.HandleReset)

	// Real-Time WebSocket Endpoint
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.hub, w, r)
	})
	return mux
}

// HandleGetState returns the full game state and its stats.
func (s *Server) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse(s.ledger.Snapshot()))
}

// HandleGetStats returns only the derived values.
func (s *Server) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Stats())
}

// HandleGetCatalog returns the static content currently in use.
func (s *Server) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Catalog())
}

// HandleGetShop returns the storefront with ownership and affordability flags.
func (s *Server) HandleGetShop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, game.BuildShop(s.ledger.Snapshot(), s.ledger.Catalog()))
}

// HandleGetReel returns the mini-game status.
func (s *Server) HandleGetReel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reel.Status())
}

// HandleCast starts a cast. A busy reel or full inventory is not an error;
// the response says whether a cycle started.
func (s *Server) HandleCast(w http.ResponseWriter, r *http.Request) {
	started := s.reel.Cast()
	writeJSON(w, http.StatusOK, CastResponse{Cast: started, Status: s.reel.Status()})
}

// HandleReel applies one reel input.
func (s *Server) HandleReel(w http.ResponseWriter, r *http.Request) {
	outcome, landed := s.reel.ReelIn()
	writeJSON(w, http.StatusOK, ReelResponse{Landed: landed, Outcome: outcome, Status: s.reel.Status()})
}

// HandleSell sells one fish by its unique id.
func (s *Server) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
	if !decode(w, r, &req) {
		return
	}

	// 1. Find the fish in the player's inventory
	snap := s.ledger.Snapshot()
	var target *game.CaughtFish
	ids := make([]string, 0, len(snap.Inventory))
	for i := range snap.Inventory {
		ids = append(ids, snap.Inventory[i].UniqueID)
		if snap.Inventory[i].UniqueID == req.UniqueID {
			target = &snap.Inventory[i]
		}
	}
	if target == nil {
		notFound(w, "Fish", req.UniqueID, ids)
		return
	}

	// 2. Price it: explicit price, else the appraisal, else base price
	price := s.tracker.SalePrice(*target)
	if req.Price != nil {
		price = *req.Price
	}

	// 3. Apply the sale
	out := s.ledger.Sell(target.UniqueID, price)
	if out.OK() {
		s.tracker.Discard(target.UniqueID)
	}
	s.respond(w, out)
}

// HandleBuyRod purchases and equips a rod.
func (s *Server) HandleBuyRod(w http.ResponseWriter, r *http.Request) {
	var req RodRequest
	if !decode(w, r, &req) {
		return
	}
	c := s.ledger.Catalog()
	rod := c.Rod(req.RodID)
	if rod == nil {
		notFound(w, "Rod", req.RodID, rodIDs(c))
		return
	}
	s.respond(w, s.ledger.BuyRod(*rod))
}

// HandleEquipRod switches to an owned rod.
func (s *Server) HandleEquipRod(w http.ResponseWriter, r *http.Request) {
	var req RodRequest
	if !decode(w, r, &req) {
		return
	}
	c := s.ledger.Catalog()
	if c.Rod(req.RodID) == nil {
		notFound(w, "Rod", req.RodID, rodIDs(c))
		return
	}
	s.respond(w, s.ledger.EquipRod(req.RodID))
}

// HandleBuyShip buys the next ship in the progression.
func (s *Server) HandleBuyShip(w http.ResponseWriter, r *http.Request) {
	var req ShipRequest
	if !decode(w, r, &req) {
		return
	}
	c := s.ledger.Catalog()
	ship := c.Ship(req.ShipID)
	if ship == nil {
		ids := make([]string, 0, len(c.Ships))
		for _, sh := range c.Ships {
			ids = append(ids, sh.ID)
		}
		notFound(w, "Ship", req.ShipID, ids)
		return
	}
	if !game.IsNextShip(s.ledger.Snapshot(), c, ship.ID) {
		http.Error(w, "Only the next ship can be bought", http.StatusConflict)
		return
	}
	s.respond(w, s.ledger.BuyShip(*ship))
}

// HandleHireCrew hires one crew member.
func (s *Server) HandleHireCrew(w http.ResponseWriter, r *http.Request) {
	var req CrewRequest
	if !decode(w, r, &req) {
		return
	}
	c := s.ledger.Catalog()
	crew := c.CrewType(req.CrewID)
	if crew == nil {
		ids := make([]string, 0, len(c.Crew))
		for _, cr := range c.Crew {
			ids = append(ids, cr.ID)
		}
		notFound(w, "Crew", req.CrewID, ids)
		return
	}
	s.respond(w, s.ledger.HireCrew(*crew))
}

// HandleBuyUpgrade buys a one-time upgrade.
func (s *Server) HandleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	var req UpgradeRequest
	if !decode(w, r, &req) {
		return
	}
	c := s.ledger.Catalog()
	u := c.Upgrade(req.UpgradeID)
	if u == nil {
		ids := make([]string, 0, len(c.Upgrades))
		for _, up := range c.Upgrades {
			ids = append(ids, up.ID)
		}
		notFound(w, "Upgrade", req.UpgradeID, ids)
		return
	}
	s.respond(w, s.ledger.BuyUpgrade(*u))
}

// HandleStartAppraisal asks Togore to value a fish in the background.
func (s *Server) HandleStartAppraisal(w http.ResponseWriter, r *http.Request) {
	var req AppraisalRequest
	if !decode(w, r, &req) {
		return
	}
	snap := s.ledger.Snapshot()
	ids := make([]string, 0, len(snap.Inventory))
	for _, f := range snap.Inventory {
		if f.UniqueID == req.UniqueID {
			writeJSON(w, http.StatusAccepted, s.tracker.Start(f))
			return
		}
		ids = append(ids, f.UniqueID)
	}
	notFound(w, "Fish", req.UniqueID, ids)
}

// HandleGetAppraisal reports the appraisal for ?unique_id=.
func (s *Server) HandleGetAppraisal(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("unique_id")
	a, ok := s.tracker.Get(id)
	if !ok {
		http.Error(w, "No appraisal for that fish", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleReset wipes the save. The client must confirm explicitly.
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Confirm {
		http.Error(w, "Reset requires confirmation", http.StatusBadRequest)
		return
	}

	s.reel.Stop()
	s.tracker.Clear()
	if err := s.ledger.Reset(r.Context()); err != nil {
		s.log.Error("reset", zap.Error(err))
		http.Error(w, "Reset failed", http.StatusInternalServerError)
		return
	}
	s.hub.Publish(TypeReel, game.ReelEvent{Status: s.reel.Status()})
	writeJSON(w, http.StatusOK, s.stateResponse(s.ledger.Snapshot()))
}

// respond maps a ledger Outcome to a status code. Applied returns the new state.
func (s *Server) respond(w http.ResponseWriter, out game.Outcome) {
	switch out {
	case game.Applied:
		writeJSON(w, http.StatusOK, s.stateResponse(s.ledger.Snapshot()))
	case game.InsufficientFunds:
		http.Error(w, "Insufficient funds", http.StatusPaymentRequired)
	case game.AlreadyOwned:
		http.Error(w, "Already owned", http.StatusConflict)
	case game.NotOwned:
		http.Error(w, "Not owned", http.StatusConflict)
	case game.InventoryIsFull:
		http.Error(w, "Inventory full", http.StatusConflict)
	case game.CrewIsFull:
		http.Error(w, "No crew space on this ship", http.StatusConflict)
	case game.NotFound:
		http.Error(w, "Not found", http.StatusNotFound)
	case game.InvalidPrice:
		http.Error(w, "Invalid price", http.StatusBadRequest)
	default:
		http.Error(w, string(out), http.StatusConflict)
	}
}

func (s *Server) stateResponse(st game.GameState) StateResponse {
	return StateResponse{State: st, Stats: game.ComputeStats(st, s.ledger.Catalog())}
}

// greeting is what a new socket receives before any broadcast.
func (s *Server) greeting() []Message {
	return []Message{
		{Type: TypeState, Payload: s.stateResponse(s.ledger.Snapshot()), Sender: SenderSystem},
		{Type: TypeReel, Payload: game.ReelEvent{Status: s.reel.Status()}, Sender: SenderSystem},
	}
}

// handleIntent runs a player intent received over the socket.
func (s *Server) handleIntent(msg Message) {
	switch msg.Type {
	case IntentCast:
		s.reel.Cast()
	case IntentReel:
		s.reel.ReelIn()
	default:
		s.log.Debug("ignoring socket message", zap.String("type", msg.Type))
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// notFound writes a 404, suggesting the closest known id when one is near.
func notFound(w http.ResponseWriter, what, id string, known []string) {
	msg := fmt.Sprintf("%s not found", what)
	if guess, ok := suggest(id, known); ok {
		msg = fmt.Sprintf("%s not found (did you mean %q?)", what, guess)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func rodIDs(c *game.Catalog) []string {
	ids := make([]string, 0, len(c.Rods))
	for _, r := range c.Rods {
		ids = append(ids, r.ID)
	}
	return ids
}

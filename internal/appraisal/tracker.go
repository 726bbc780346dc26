package appraisal

import (
	"context"
	"sync"

	"github.com/everforgeworks/togore-tuna-hunt/internal/game"
)

// Status is the lifecycle of one appraisal request.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure" // remote failed; Result holds the fallback offer
)

// Appraisal is the presentation view of a request for one fish.
type Appraisal struct {
	UniqueID string  `json:"unique_id"`
	Status   Status  `json:"status"`
	Result   *Result `json:"result,omitempty"`
}

// Tracker runs appraisals in the background and remembers them until the
// fish is sold. Nothing here touches the Ledger: an unfinished appraisal
// never blocks or alters game state.
type Tracker struct {
	mu       sync.Mutex
	ctx      context.Context
	svc      *Service
	entries  map[string]Appraisal
	wg       sync.WaitGroup
	onUpdate func(Appraisal)
}

// NewTracker binds background requests to ctx.
func NewTracker(ctx context.Context, svc *Service) *Tracker {
	return &Tracker{ctx: ctx, svc: svc, entries: map[string]Appraisal{}}
}

// OnUpdate registers fn for completed appraisals.
func (t *Tracker) OnUpdate(fn func(Appraisal)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
}

// Start requests an appraisal unless one is already pending or done.
func (t *Tracker) Start(fish game.CaughtFish) Appraisal {
	t.mu.Lock()
	if a, ok := t.entries[fish.UniqueID]; ok {
		t.mu.Unlock()
		return a
	}
	a := Appraisal{UniqueID: fish.UniqueID, Status: StatusPending}
	t.entries[fish.UniqueID] = a
	t.wg.Add(1)
	t.mu.Unlock()

	go t.run(fish)
	return a
}

func (t *Tracker) run(fish game.CaughtFish) {
	defer t.wg.Done()

	res, ok := t.svc.Appraise(t.ctx, fish)
	done := Appraisal{UniqueID: fish.UniqueID, Status: StatusSuccess, Result: &res}
	if !ok {
		done.Status = StatusFailure
	}

	t.mu.Lock()
	if _, still := t.entries[fish.UniqueID]; !still {
		// Sold or reset while the request was in flight.
		t.mu.Unlock()
		return
	}
	t.entries[fish.UniqueID] = done
	notify := t.onUpdate
	t.mu.Unlock()

	if notify != nil {
		notify(done)
	}
}

// Get returns the appraisal for a fish, if one was requested.
func (t *Tracker) Get(uniqueID string) (Appraisal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.entries[uniqueID]
	return a, ok
}

// SalePrice is the appraised value once an offer is in, else the base price.
func (t *Tracker) SalePrice(fish game.CaughtFish) int {
	if a, ok := t.Get(fish.UniqueID); ok && a.Result != nil {
		return a.Result.Value
	}
	return fish.BasePrice
}

// Discard forgets a fish's appraisal, typically after sale.
func (t *Tracker) Discard(uniqueID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, uniqueID)
}

// Clear forgets every appraisal.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[string]Appraisal{}
}

// Wait blocks until in-flight requests finish.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

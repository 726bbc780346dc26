/*
Package game
File: reeling.go
Description:
    The reeling mini-game as an explicit state machine:

        idle --cast--> casting --500ms--> waiting --random--> reeling
        reeling --progress >= 100--> idle (caught)
        reeling --progress <= 0----> idle (escaped)

    Every delay is a single scheduled transition. Leaving a state stops its
    pending timer, and each callback also checks the cycle it was scheduled
    for, so a stale timer can never fire into a newer cast.
*/

package game

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReelState names a phase of one cast.
type ReelState string

const (
	ReelIdle    ReelState = "idle"
	ReelCasting ReelState = "casting"
	ReelWaiting ReelState = "waiting"
	ReelReeling ReelState = "reeling"
)

// ReelOutcome is how a reeling phase ended.
type ReelOutcome string

const (
	OutcomeCaught  ReelOutcome = "caught"
	OutcomeEscaped ReelOutcome = "escaped"
)

const (
	MsgIdle          = "Click to Cast!"
	MsgInventoryFull = "Inventory Full! Sell Fish!"
	MsgCasting       = "Casting..."
	MsgWaiting       = "Waiting for bite..."
	MsgHooked        = "HOOKED! CLICK FAST!"
	MsgEscaped       = "It got away..."
)

// ReelConfig holds the mini-game tuning.
type ReelConfig struct {
	CastDelay      time.Duration // casting -> waiting
	MinHookDelay   time.Duration // floor for waiting -> reeling
	HookSpread     time.Duration // upper bound of the uniform wait before speed scaling
	HookedProgress float64       // progress when the fish bites
	CatchProgress  float64       // progress that lands the fish
	ReelStep       float64       // per input, scaled by sqrt(rod speed)
	DecayInterval  time.Duration
	DecayStep      float64 // per tick, scaled by buoyancy difficulty
	MessageTTL     time.Duration
}

// DefaultReelConfig returns the standard tuning.
func DefaultReelConfig() ReelConfig {
	return ReelConfig{
		CastDelay:      500 * time.Millisecond,
		MinHookDelay:   500 * time.Millisecond,
		HookSpread:     4000 * time.Millisecond,
		HookedProgress: 30,
		CatchProgress:  100,
		ReelStep:       10,
		DecayInterval:  100 * time.Millisecond,
		DecayStep:      5,
		MessageTTL:     2000 * time.Millisecond,
	}
}

// HookDelay computes the wait before a bite: max(min, U×spread / (speed×0.5)).
func (c ReelConfig) HookDelay(u, speedMultiplier float64) time.Duration {
	wait := time.Duration(u * float64(c.HookSpread) / (speedMultiplier * 0.5))
	if wait < c.MinHookDelay {
		return c.MinHookDelay
	}
	return wait
}

// ReelIncrement is the progress one reel input adds.
func (c ReelConfig) ReelIncrement(speedMultiplier float64) float64 {
	return c.ReelStep * math.Sqrt(speedMultiplier)
}

// Angler is what the reel needs from the Ledger.
type Angler interface {
	EquippedRod() Rod
	Difficulty() float64
	InventoryFull() bool
	RecordCatch(f CaughtFish) Outcome
}

// ReelStatus is the presentation view of the machine.
type ReelStatus struct {
	State    ReelState `json:"state"`
	Progress float64   `json:"progress"`
	Message  string    `json:"message"`
}

// ReelEvent is emitted on every visible change.
type ReelEvent struct {
	Status  ReelStatus  `json:"status"`
	Outcome ReelOutcome `json:"outcome,omitempty"`
	Fish    *CaughtFish `json:"fish,omitempty"`
}

// ReelOptions configures NewReel. Zero values select real time and randomness.
type ReelOptions struct {
	Config    ReelConfig
	Random    Random
	Scheduler Scheduler
	Clock     Clock
	NewID     func() string
	Logger    *zap.Logger
}

// Reel drives one player's casts. Safe for concurrent use.
type Reel struct {
	mu     sync.Mutex
	emitMu sync.Mutex

	cfg      ReelConfig
	angler   Angler
	resolver *Resolver
	rng      Random
	sched    Scheduler
	clock    Clock
	newID    func() string
	log      *zap.Logger

	state    ReelState
	progress float64
	message  string

	cycle        uint64 // bumped on every cast
	phaseTimer   Timer  // the single pending cast/hook/decay transition
	messageSeq   uint64
	messageTimer Timer

	listeners []func(ReelEvent)
}

// NewReel builds an idle reel over the angler and catalog.
func NewReel(angler Angler, catalog *CatalogSource, opts ReelOptions) *Reel {
	if opts.Config == (ReelConfig{}) {
		opts.Config = DefaultReelConfig()
	}
	if opts.Random == nil {
		opts.Random = NewTimeRandom()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Reel{
		cfg:      opts.Config,
		angler:   angler,
		resolver: NewResolver(catalog, opts.Random),
		rng:      opts.Random,
		sched:    opts.Scheduler,
		clock:    opts.Clock,
		newID:    opts.NewID,
		log:      opts.Logger.Named("reel"),
		state:    ReelIdle,
		message:  MsgIdle,
	}
}

// Subscribe registers fn for every reel event. fn must not call back into the Reel.
func (r *Reel) Subscribe(fn func(ReelEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Status returns the current view.
func (r *Reel) Status() ReelStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

// Cast starts a cycle from idle. A full inventory rejects the cast with a
// message; casting while a cycle is running is ignored.
func (r *Reel) Cast() bool {
	r.mu.Lock()
	if r.angler.InventoryFull() {
		r.flashLocked(MsgInventoryFull)
		r.release(ReelEvent{Status: r.statusLocked()})
		return false
	}
	if r.state != ReelIdle {
		r.mu.Unlock()
		return false
	}

	r.cycle++
	cycle := r.cycle
	r.state = ReelCasting
	r.progress = 0
	r.setMessageLocked(MsgCasting)
	r.phaseTimer = r.sched.AfterFunc(r.cfg.CastDelay, func() { r.onCastLanded(cycle) })
	r.release(ReelEvent{Status: r.statusLocked()})
	return true
}

// ReelIn applies one player input. It returns the outcome if the input landed the fish.
func (r *Reel) ReelIn() (ReelOutcome, bool) {
	r.mu.Lock()
	if r.state != ReelReeling {
		r.mu.Unlock()
		return "", false
	}

	rod := r.angler.EquippedRod()
	r.progress += r.cfg.ReelIncrement(rod.SpeedMultiplier)
	if r.progress < r.cfg.CatchProgress {
		r.release(ReelEvent{Status: r.statusLocked()})
		return "", false
	}

	r.stopPhaseLocked()
	fish := r.resolver.Resolve(rod.LuckFactor)
	caught := CaughtFish{
		Fish:     fish,
		UniqueID: r.newID(),
		CaughtAt: r.clock.Now().UnixMilli(),
	}
	r.state = ReelIdle
	r.progress = 0

	ev := ReelEvent{Outcome: OutcomeCaught}
	if out := r.angler.RecordCatch(caught); out.OK() {
		r.flashLocked(fmt.Sprintf("Caught %s!", caught.Name))
		ev.Fish = &caught
		r.log.Debug("fish caught", zap.String("fish", caught.ID), zap.String("unique_id", caught.UniqueID))
	} else {
		r.flashLocked(MsgInventoryFull)
	}
	ev.Status = r.statusLocked()
	r.release(ev)
	return OutcomeCaught, true
}

// Stop cancels every pending timer and returns the reel to idle.
func (r *Reel) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopPhaseLocked()
	if r.messageTimer != nil {
		r.messageTimer.Stop()
		r.messageTimer = nil
	}
	r.cycle++
	r.state = ReelIdle
	r.progress = 0
	r.message = MsgIdle
}

func (r *Reel) onCastLanded(cycle uint64) {
	r.mu.Lock()
	if r.cycle != cycle || r.state != ReelCasting {
		r.mu.Unlock()
		return
	}
	r.state = ReelWaiting
	r.setMessageLocked(MsgWaiting)
	rod := r.angler.EquippedRod()
	wait := r.cfg.HookDelay(r.rng.Float64(), rod.SpeedMultiplier)
	r.phaseTimer = r.sched.AfterFunc(wait, func() { r.onHooked(cycle) })
	r.release(ReelEvent{Status: r.statusLocked()})
}

func (r *Reel) onHooked(cycle uint64) {
	r.mu.Lock()
	if r.cycle != cycle || r.state != ReelWaiting {
		r.mu.Unlock()
		return
	}
	r.state = ReelReeling
	r.progress = r.cfg.HookedProgress
	r.setMessageLocked(MsgHooked)
	r.phaseTimer = r.sched.AfterFunc(r.cfg.DecayInterval, func() { r.onDecay(cycle) })
	r.release(ReelEvent{Status: r.statusLocked()})
}

func (r *Reel) onDecay(cycle uint64) {
	r.mu.Lock()
	if r.cycle != cycle || r.state != ReelReeling {
		r.mu.Unlock()
		return
	}
	r.progress -= r.cfg.DecayStep * r.angler.Difficulty()
	if r.progress > 0 {
		r.phaseTimer = r.sched.AfterFunc(r.cfg.DecayInterval, func() { r.onDecay(cycle) })
		r.release(ReelEvent{Status: r.statusLocked()})
		return
	}

	r.phaseTimer = nil
	r.state = ReelIdle
	r.progress = 0
	r.flashLocked(MsgEscaped)
	r.release(ReelEvent{Status: r.statusLocked(), Outcome: OutcomeEscaped})
}

func (r *Reel) stopPhaseLocked() {
	if r.phaseTimer != nil {
		r.phaseTimer.Stop()
		r.phaseTimer = nil
	}
}

// setMessageLocked replaces the message and cancels any pending revert.
func (r *Reel) setMessageLocked(msg string) {
	r.messageSeq++
	if r.messageTimer != nil {
		r.messageTimer.Stop()
		r.messageTimer = nil
	}
	r.message = msg
}

// flashLocked shows msg, reverting to the idle prompt after MessageTTL.
func (r *Reel) flashLocked(msg string) {
	r.setMessageLocked(msg)
	seq := r.messageSeq
	r.messageTimer = r.sched.AfterFunc(r.cfg.MessageTTL, func() { r.onMessageExpired(seq) })
}

func (r *Reel) onMessageExpired(seq uint64) {
	r.mu.Lock()
	if r.messageSeq != seq {
		r.mu.Unlock()
		return
	}
	r.messageTimer = nil
	r.message = MsgIdle
	r.release(ReelEvent{Status: r.statusLocked()})
}

func (r *Reel) statusLocked() ReelStatus {
	return ReelStatus{State: r.state, Progress: r.progress, Message: r.message}
}

// release unlocks r.mu and delivers ev to listeners in emission order.
func (r *Reel) release(ev ReelEvent) {
	listeners := append([]func(ReelEvent){}, r.listeners...)
	r.emitMu.Lock()
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
	r.emitMu.Unlock()
}

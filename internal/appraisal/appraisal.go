// Package appraisal asks Togore what a caught fish is worth.
//
// The remote collaborator is optional and allowed to fail; Service always
// answers, falling back to a local deterministic offer.
package appraisal

import (
	"context"
	"hash/fnv"
	"time"

	"go.uber.org/zap"

	"github.com/everforgeworks/togore-tuna-hunt/internal/game"
)

// Result is an offer for one fish.
type Result struct {
	Value    int    `json:"value"`
	Comment  string `json:"comment"`
	Fallback bool   `json:"fallback"` // true when the local fallback produced it
}

// Appraiser values a fish. Implementations may fail.
type Appraiser interface {
	Appraise(ctx context.Context, fish game.CaughtFish) (Result, error)
}

const FallbackComment = "Togore is sleeping, so he just mumbled a number."

// Fallback returns an offer within [0.8×base, 1.2×base], derived from the
// fish's unique id so the same fish always gets the same number.
func Fallback(fish game.CaughtFish) Result {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fish.UniqueID))
	permille := 800 + int(h.Sum64()%401)

	base := fish.BasePrice
	lo := (base*8 + 9) / 10
	hi := base * 12 / 10
	value := base * permille / 1000
	if value < lo {
		value = lo
	}
	if value > hi {
		value = hi
	}
	return Result{Value: value, Comment: FallbackComment, Fallback: true}
}

// Service wraps an optional remote Appraiser with a timeout and the fallback.
type Service struct {
	remote  Appraiser
	timeout time.Duration
	log     *zap.Logger
}

// NewService builds a Service. remote may be nil.
func NewService(remote Appraiser, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Service{remote: remote, timeout: timeout, log: log.Named("appraisal")}
}

// Appraise never fails. The returned bool is false when the fallback was used
// because the remote collaborator errored.
func (s *Service) Appraise(ctx context.Context, fish game.CaughtFish) (Result, bool) {
	if s.remote == nil {
		return Fallback(fish), true
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.remote.Appraise(ctx, fish)
	if err != nil {
		s.log.Warn("remote appraisal failed, using fallback",
			zap.String("fish", fish.ID), zap.String("unique_id", fish.UniqueID), zap.Error(err))
		return Fallback(fish), false
	}
	return res, true
}

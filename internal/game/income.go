/*
Package game
File: income.go
Description:
    The passive income heartbeat. Hired crew earn money once per
    interval while the server runs.
*/

package game

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PassiveIncomeInterval is the real-time period between income ticks.
const PassiveIncomeInterval = time.Second

// RunPassiveIncome is the income heartbeat. It credits crew income once per
// interval until ctx is done. Ticks with no crew change nothing.
func RunPassiveIncome(ctx context.Context, l *Ledger, interval time.Duration, log *zap.Logger) error {
	if interval <= 0 {
		interval = PassiveIncomeInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("passive income heartbeat started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("passive income heartbeat stopped")
			return nil
		case <-ticker.C:
			l.TickPassiveIncome()
		}
	}
}

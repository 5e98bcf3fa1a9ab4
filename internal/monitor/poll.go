package monitor

import (
	"context"
	"time"

	"github.com/lwei/stockmon/internal/api"
)

// StartPolling marks the session live and schedules Load to run repeatedly.
// Any existing loop is cancelled first, so calling StartPolling twice leaves
// exactly one live loop.
func (e *Engine) StartPolling() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live = true
	e.restartLocked()
}

// StopPolling marks the session not-live and cancels the loop. A fetch
// already dispatched by a racing tick still completes and still mutates
// state; only the next tick is prevented.
func (e *Engine) StopPolling() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Live reports whether the engine intends to keep polling.
func (e *Engine) Live() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// Interval returns the currently configured poll interval.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

// restartLocked replaces the poll loop. Cancel-before-create is
// unconditional: two loops must never run against the same session.
// Caller holds e.mu.
func (e *Engine) restartLocked() {
	if e.cancelPoll != nil {
		e.cancelPoll()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancelPoll = cancel
	if e.isTrading {
		e.interval = e.cfg.TradingInterval
	} else {
		e.interval = e.cfg.IdleInterval
	}

	go e.pollLoop(ctx, e.interval)

	e.logger.Info("poll loop scheduled",
		"interval", e.interval,
		"is_trading", e.isTrading,
	)
}

// stopLocked cancels the loop if one exists. Caller holds e.mu.
func (e *Engine) stopLocked() {
	e.live = false
	if e.cancelPoll != nil {
		e.cancelPoll()
		e.cancelPoll = nil
	}
}

// pollLoop drives scheduled refreshes until its context is cancelled. A tick
// that raced StopPolling re-checks liveness before fetching.
func (e *Engine) pollLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.Live() {
				return
			}
			e.tick()
		}
	}
}

// tick runs one scheduled refresh. Failures are logged, never surfaced to
// the user, and never terminate the loop; the next successful tick
// self-corrects.
//
// The fetch context is deliberately not derived from the loop context:
// cancelling the loop prevents the next tick but never aborts a fetch
// already in flight, which still completes and still mutates state.
func (e *Engine) tick() {
	tctx, cancel := context.WithTimeout(api.WithoutNotify(context.Background()), e.cfg.RequestTimeout)
	defer cancel()

	if err := e.Load(tctx); err != nil {
		e.logger.Warn("scheduled refresh failed", "err", err)
	}
}

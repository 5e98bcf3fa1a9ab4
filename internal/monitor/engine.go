package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lwei/stockmon/internal/api"
	"github.com/lwei/stockmon/internal/model"
)

// Config holds engine configuration.
type Config struct {
	TradingInterval time.Duration // poll cadence during trading hours
	IdleInterval    time.Duration // poll cadence outside trading hours
	RequestTimeout  time.Duration // per-tick fetch timeout
}

// DefaultConfig returns sensible defaults. The trading interval sits just
// above the backend's 10s quote cache so the engine never polls faster than
// the data can change.
func DefaultConfig() Config {
	return Config{
		TradingInterval: 15 * time.Second,
		IdleInterval:    60 * time.Second,
		RequestTimeout:  10 * time.Second,
	}
}

// Stats are derived counts over the current monitor list, computed fresh on
// every call.
type Stats struct {
	Total    int // all monitors
	Active   int // is_active true
	Rising   int // positive change
	Falling  int // negative change
	Alerting int // has_alert true
}

// Engine owns the monitor list and the polling loop. All exported methods
// are safe for concurrent use; returned slices are snapshots.
type Engine struct {
	cfg      Config
	client   *api.Client
	logger   *slog.Logger
	validate *validator.Validate

	mu          sync.Mutex
	monitors    []model.Monitor
	loading     bool
	lastUpdated time.Time
	isTrading   bool
	cacheTTL    int

	// Polling session. live distinguishes "the engine intends to keep
	// polling" from "a loop goroutine exists"; cancelPoll is the single
	// timer handle.
	live       bool
	interval   time.Duration
	cancelPoll context.CancelFunc
}

// New creates an engine. logger may be nil.
func New(cfg Config, client *api.Client, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TradingInterval == 0 {
		cfg.TradingInterval = DefaultConfig().TradingInterval
	}
	if cfg.IdleInterval == 0 {
		cfg.IdleInterval = DefaultConfig().IdleInterval
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Engine{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load fetches current truth from the backend. The realtime bulk endpoint is
// tried first; its failure is recovered via the plain list endpoint, which
// carries no quotes and leaves the trading-hours flag untouched. Only a
// failure of both paths propagates, and then no local state is mutated.
func (e *Engine) Load(ctx context.Context) error {
	e.setLoading(true)
	defer e.setLoading(false)

	// The primary failure is recovered internally, so it must not toast.
	rt, err := e.client.RealtimeMonitors(api.WithoutNotify(ctx))
	if err == nil {
		e.applyRealtime(rt)
		return nil
	}
	e.logger.Warn("realtime path unavailable, using monitor list fallback", "err", err)

	monitors, ferr := e.client.ListMonitors(ctx)
	if ferr != nil {
		return ferr
	}
	e.applyFallback(monitors)
	return nil
}

// applyRealtime adopts a realtime response wholesale.
//
// The replace is deliberate: a response landing after a concurrent optimistic
// patch overwrites that patch. Last response wins; the next tick
// self-corrects the displayed state.
func (e *Engine) applyRealtime(rt *model.RealtimeMonitors) {
	e.mu.Lock()
	defer e.mu.Unlock()

	flipped := rt.IsTrading != e.isTrading

	e.monitors = rt.Monitors
	e.isTrading = rt.IsTrading
	e.cacheTTL = rt.CacheTTL
	e.lastUpdated = time.Now()

	// A cadence change must take effect immediately, not at the next tick.
	if flipped && e.live {
		e.logger.Info("trading state changed, restarting poll loop", "is_trading", rt.IsTrading)
		e.restartLocked()
	}
}

// applyFallback adopts the plain monitor list. No trading-hours flag is
// inferred; the previous value is retained.
func (e *Engine) applyFallback(monitors []model.Monitor) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.monitors = monitors
	e.lastUpdated = time.Now()
}

// Create submits a new monitor. The create response is not trusted to carry
// the denormalized quote fields, so authoritative state is repopulated with
// a full Load before returning.
func (e *Engine) Create(ctx context.Context, req model.CreateMonitorRequest) (*model.Monitor, error) {
	if err := e.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid create request: %w", err)
	}

	created, err := e.client.CreateMonitor(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := e.Load(ctx); err != nil {
		return nil, fmt.Errorf("monitor %d created but reload failed: %w", created.ID, err)
	}
	return created, nil
}

// Update submits a partial update, then patches only the submitted fields
// onto the matching local entry. No full reload.
func (e *Engine) Update(ctx context.Context, id int64, req model.UpdateMonitorRequest) error {
	if _, err := e.client.UpdateMonitor(ctx, id, req); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.monitors {
		if e.monitors[i].ID == id {
			patch(&e.monitors[i], req)
			return nil
		}
	}
	// Not in the local list (e.g. created on another device): picked up by
	// the next scheduled refresh.
	return nil
}

// SetActive toggles the active flag of one monitor.
func (e *Engine) SetActive(ctx context.Context, id int64, active bool) error {
	return e.Update(ctx, id, model.UpdateMonitorRequest{IsActive: &active})
}

// Remove deletes a monitor. On success the entry is dropped from the local
// list; on failure it is retained and the error propagates.
func (e *Engine) Remove(ctx context.Context, id int64) error {
	if err := e.client.DeleteMonitor(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	kept := make([]model.Monitor, 0, len(e.monitors))
	for _, m := range e.monitors {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	e.monitors = kept
	return nil
}

// patch copies the submitted (non-nil) fields of req onto m.
func patch(m *model.Monitor, req model.UpdateMonitorRequest) {
	if req.PriceMin != nil {
		m.PriceMin = req.PriceMin
	}
	if req.PriceMax != nil {
		m.PriceMax = req.PriceMax
	}
	if req.RiseThreshold != nil {
		m.RiseThreshold = req.RiseThreshold
	}
	if req.FallThreshold != nil {
		m.FallThreshold = req.FallThreshold
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
}

// Monitors returns a snapshot copy of the current list.
func (e *Engine) Monitors() []model.Monitor {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Monitor, len(e.monitors))
	copy(out, e.monitors)
	return out
}

// MonitorByID returns the monitor with the given id.
func (e *Engine) MonitorByID(id int64) (model.Monitor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.monitors {
		if m.ID == id {
			return m, true
		}
	}
	return model.Monitor{}, false
}

// MonitorByStock returns the monitor bound to the given stock.
func (e *Engine) MonitorByStock(stockID int64) (model.Monitor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.monitors {
		if m.StockID == stockID {
			return m, true
		}
	}
	return model.Monitor{}, false
}

// IsStockMonitored reports whether a monitor exists for the given stock.
// Advisory only: the data model does not enforce uniqueness locally.
func (e *Engine) IsStockMonitored(stockID int64) bool {
	_, ok := e.MonitorByStock(stockID)
	return ok
}

// Stats computes derived counts over the current list.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{Total: len(e.monitors)}
	for i := range e.monitors {
		m := &e.monitors[i]
		if m.IsActive {
			s.Active++
		}
		if m.Rising() {
			s.Rising++
		}
		if m.Falling() {
			s.Falling++
		}
		if m.HasAlert {
			s.Alerting++
		}
	}
	return s
}

// Loading reports whether a Load is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// LastUpdated returns the timestamp of the last successful fetch.
func (e *Engine) LastUpdated() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUpdated
}

// IsTrading returns the backend's trading-hours flag from the last realtime
// fetch.
func (e *Engine) IsTrading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isTrading
}

// CacheTTL returns the backend-declared quote cache lifetime in seconds.
func (e *Engine) CacheTTL() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cacheTTL
}

// Reset clears the monitor list and last-fetch timestamp and stops polling.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.monitors = nil
	e.lastUpdated = time.Time{}
	e.stopLocked()
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

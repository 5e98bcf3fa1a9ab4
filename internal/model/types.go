package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Authentication
// -----------------------------------------------------------------------------

// User is the authenticated account returned by /auth/me.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is the payload of a successful form-encoded login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// -----------------------------------------------------------------------------
// Monitors
// -----------------------------------------------------------------------------

// Alert describes one triggered alert condition on a monitored stock.
// Level is one of "info", "warning", "danger".
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// Monitor is a user's alert rule bound to one stock.
//
// The plain list endpoint returns only the configuration fields; the realtime
// bulk endpoint additionally fills the denormalized quote and alert fields.
type Monitor struct {
	ID        int64  `json:"id"`
	StockID   int64  `json:"stock_id"`
	StockCode string `json:"stock_code,omitempty"`
	StockName string `json:"stock_name,omitempty"`
	IsActive  bool   `json:"is_active"`

	// Alert thresholds. Nil means the condition is not configured.
	PriceMin      *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax      *decimal.Decimal `json:"price_max,omitempty"`
	RiseThreshold *decimal.Decimal `json:"rise_threshold,omitempty"`
	FallThreshold *decimal.Decimal `json:"fall_threshold,omitempty"`

	// Denormalized quote data, present only on the realtime path.
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	PreClose      decimal.Decimal `json:"pre_close"`
	Volume        int64           `json:"volume"`
	Amount        decimal.Decimal `json:"amount"`

	Alerts   []Alert `json:"alerts,omitempty"`
	HasAlert bool    `json:"has_alert"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Rising reports whether the monitored stock trades above its previous close.
func (m *Monitor) Rising() bool {
	return m.Change.Sign() > 0
}

// Falling reports whether the monitored stock trades below its previous close.
func (m *Monitor) Falling() bool {
	return m.Change.Sign() < 0
}

// CreateMonitorRequest creates a new monitor for one stock.
type CreateMonitorRequest struct {
	StockID       int64            `json:"stock_id" validate:"required,gt=0"`
	PriceMin      *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax      *decimal.Decimal `json:"price_max,omitempty"`
	RiseThreshold *decimal.Decimal `json:"rise_threshold,omitempty"`
	FallThreshold *decimal.Decimal `json:"fall_threshold,omitempty"`
}

// UpdateMonitorRequest carries a partial update; nil fields are left untouched
// server-side and are likewise not patched into local state.
type UpdateMonitorRequest struct {
	PriceMin      *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax      *decimal.Decimal `json:"price_max,omitempty"`
	RiseThreshold *decimal.Decimal `json:"rise_threshold,omitempty"`
	FallThreshold *decimal.Decimal `json:"fall_threshold,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// RealtimeMonitors is the bulk response of the realtime monitor endpoint:
// every monitor with live quote data plus the backend's trading-hours flag
// and cache lifetime.
type RealtimeMonitors struct {
	Monitors   []Monitor `json:"monitors"`
	IsTrading  bool      `json:"is_trading"`
	CacheTTL   int       `json:"cache_ttl"`
	UpdateTime string    `json:"update_time"`
}

// -----------------------------------------------------------------------------
// Quotes and market data
// -----------------------------------------------------------------------------

// Quote is a single-stock realtime snapshot.
type Quote struct {
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	PreClose      decimal.Decimal `json:"pre_close"`
	Volume        int64           `json:"volume"`
	Amount        decimal.Decimal `json:"amount"`
}

// RealtimeQuote wraps a quote with the backend's trading-hours flag.
type RealtimeQuote struct {
	Quote      Quote  `json:"quote"`
	IsTrading  bool   `json:"is_trading"`
	UpdateTime string `json:"update_time"`
}

// StockInfo describes a stock returned by the search endpoint.
type StockInfo struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`
}

// ServiceStatus reports the health of the realtime quote service.
type ServiceStatus struct {
	IsTrading  bool   `json:"is_trading"`
	CacheValid bool   `json:"cache_valid"`
	CacheSize  int    `json:"cache_size"`
	CacheTTL   int    `json:"cache_ttl"`
	CacheTime  string `json:"cache_time,omitempty"`
	ServerTime string `json:"server_time"`
}

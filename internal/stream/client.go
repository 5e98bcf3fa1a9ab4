package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lwei/stockmon/internal/model"
)

// ErrAlreadyClosed is returned by Connect after Close.
var ErrAlreadyClosed = errors.New("stream: client already closed")

// ErrNotConnected is returned when sending before Connect.
var ErrNotConnected = errors.New("stream: not connected")

// Config holds websocket client configuration.
type Config struct {
	URL          string        // ws:// or wss:// endpoint
	Token        string        // bearer credential, attached as a header
	PingInterval time.Duration // cadence of client pings (default: 15s)
	ReadTimeout  time.Duration // read deadline, refreshed per message (default: 30s)
	WriteTimeout time.Duration // per-write deadline (default: 5s)
	BufferSize   int           // update channel capacity (default: 100)
}

func (c *Config) applyDefaults() {
	if c.PingInterval == 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.BufferSize == 0 {
		c.BufferSize = 100
	}
}

// StockUpdate is one pushed quote refresh for a subscribed stock.
type StockUpdate struct {
	StockID int64       `json:"stock_id"`
	Data    model.Quote `json:"data"`
}

// serverMessage is the envelope of every server → client frame.
type serverMessage struct {
	Type    string          `json:"type"`
	StockID int64           `json:"stock_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// clientAction is the envelope of every client → server frame.
type clientAction struct {
	Action  string `json:"action"`
	StockID int64  `json:"stock_id,omitempty"`
}

// Client is a single websocket connection to the realtime push endpoint.
type Client struct {
	cfg    Config
	logger *slog.Logger

	conn    *websocket.Conn
	updates chan StockUpdate
	errs    chan error

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.Mutex
	connected bool
	closed    bool
	cancel    context.CancelFunc
	group     *errgroup.Group
}

// NewClient creates a websocket stream client. logger may be nil.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	return &Client{
		cfg:     cfg,
		logger:  logger,
		updates: make(chan StockUpdate, cfg.BufferSize),
		errs:    make(chan error, 1),
	}
}

// Connect dials the endpoint and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrAlreadyClosed
	}
	if c.connected {
		return nil
	}

	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	c.conn = conn
	c.connected = true

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	g, loopCtx := errgroup.WithContext(loopCtx)
	c.group = g
	g.Go(func() error { return c.readLoop(loopCtx) })
	g.Go(func() error { return c.pingLoop(loopCtx) })

	c.logger.Info("quote stream connected", "url", c.cfg.URL)
	return nil
}

// Close tears the connection down and stops the loops.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	cancel := c.cancel
	conn := c.conn
	group := c.group
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if group != nil {
		// Loop errors after a deliberate close are expected.
		_ = group.Wait()
	}
	return nil
}

// Subscribe asks the server to push updates for one stock.
func (c *Client) Subscribe(stockID int64) error {
	return c.send(clientAction{Action: "subscribe", StockID: stockID})
}

// Unsubscribe stops updates for one stock.
func (c *Client) Unsubscribe(stockID int64) error {
	return c.send(clientAction{Action: "unsubscribe", StockID: stockID})
}

// Updates returns the channel of pushed quote refreshes.
func (c *Client) Updates() <-chan StockUpdate {
	return c.updates
}

// Errors returns the channel of fatal stream errors.
func (c *Client) Errors() <-chan error {
	return c.errs
}

// IsConnected returns current connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) send(action clientAction) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", action.Action, err)
	}
	return nil
}

// readLoop consumes server frames until the connection fails or the client
// closes.
func (c *Client) readLoop(ctx context.Context) error {
	for {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.reportError(fmt.Errorf("read: %w", err))
			return err
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("unparseable stream frame", "err", err)
			continue
		}

		switch msg.Type {
		case "stock_update":
			var quote model.Quote
			if err := json.Unmarshal(msg.Data, &quote); err != nil {
				c.logger.Warn("unparseable stock update", "stock_id", msg.StockID, "err", err)
				continue
			}
			select {
			case c.updates <- StockUpdate{StockID: msg.StockID, Data: quote}:
			default:
				// Consumer is behind; dropping one update is harmless, the
				// next push carries a full quote.
				c.logger.Warn("update channel full, dropping", "stock_id", msg.StockID)
			}
		case "pong":
			// Deadline already refreshed above.
		default:
			c.logger.Debug("unknown stream message type", "type", msg.Type)
		}
	}
}

// pingLoop keeps the connection alive with application-level pings.
func (c *Client) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.send(clientAction{Action: "ping"}); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.reportError(fmt.Errorf("ping: %w", err))
				return err
			}
		}
	}
}

func (c *Client) reportError(err error) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	select {
	case c.errs <- err:
	default:
	}
}

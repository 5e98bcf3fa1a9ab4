package api

import (
	"log/slog"
	"net/http"
	"time"
)

// TokenSource supplies the bearer credential attached to every request.
// An empty token means "logged out" and is not an error at this layer.
type TokenSource interface {
	Token() string
	Clear() error
}

// Notifier shows a transient user-visible message (a toast).
type Notifier interface {
	Notify(message string)
}

// Navigator redirects the user to the login surface.
type Navigator interface {
	RedirectToLogin()
}

// NotifierFunc is a function adapter for Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// NavigatorFunc is a function adapter for Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopNavigator struct{}

func (nopNavigator) RedirectToLogin() {}

// Client provides access to the stock-monitor REST API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger

	notifier Notifier
	guard    *expiryGuard
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. tokens may be nil for endpoints
// that never require a credential.
func NewClient(baseURL string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   slog.Default(),
		notifier: nopNotifier{},
	}
	c.guard = newExpiryGuard(nopNavigator{})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNotifier sets the user-notification surface.
func WithNotifier(n Notifier) ClientOption {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithNavigator sets the login-redirect surface.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		c.guard.navigator = n
	}
}

// WithRedirectDelays overrides the delay before the login redirect fires and
// the delay before the guard resets afterwards. Used by tests.
func WithRedirectDelays(redirect, reset time.Duration) ClientOption {
	return func(c *Client) {
		c.guard.redirectDelay = redirect
		c.guard.resetDelay = reset
	}
}

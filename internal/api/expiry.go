package api

import (
	"sync"
	"time"
)

// Delays mirroring the original client: the redirect waits long enough for
// the user to read the toast, and the guard resets shortly after the
// redirect so a later expiry can trigger a fresh one.
const (
	defaultRedirectDelay = 1500 * time.Millisecond
	defaultResetDelay    = time.Second
)

// expiryGuard serializes the credential-expiry recovery sequence.
//
// It is a two-state machine: idle and redirect-in-progress. The first 401
// observed moves it to redirect-in-progress, notifies once and schedules one
// delayed redirect; every 401 observed while in that state is absorbed.
// The guard transitions back to idle resetDelay after the redirect fires.
type expiryGuard struct {
	navigator     Navigator
	redirectDelay time.Duration
	resetDelay    time.Duration

	mu          sync.Mutex
	redirecting bool
}

func newExpiryGuard(nav Navigator) *expiryGuard {
	return &expiryGuard{
		navigator:     nav,
		redirectDelay: defaultRedirectDelay,
		resetDelay:    defaultResetDelay,
	}
}

// trigger starts the recovery sequence. It returns true if this call won the
// race and the caller should emit the expiry notification, false if a
// redirect is already in progress.
func (g *expiryGuard) trigger() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.redirecting {
		return false
	}
	g.redirecting = true

	time.AfterFunc(g.redirectDelay, func() {
		g.navigator.RedirectToLogin()
		time.AfterFunc(g.resetDelay, func() {
			g.mu.Lock()
			g.redirecting = false
			g.mu.Unlock()
		})
	})

	return true
}

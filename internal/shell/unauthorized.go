package shell

import (
	"sync"

	"go.uber.org/zap"

	"github.com/puredelivery/client/internal/guard"
)

// Navigator performs a navigation to the given route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// SessionClearer tears down the active session. The session store
// implements it.
type SessionClearer interface {
	ClearSession()
}

// UnauthorizedPrompt is the singleton session-expired prompt mounted once
// at the shell level. A detected 401 shows it; only explicit user
// confirmation hides it again, clearing the session and navigating to the
// landing route. Repeated triggers while shown coalesce into one prompt.
type UnauthorizedPrompt struct {
	mu       sync.Mutex
	shown    bool
	sessions SessionClearer
	nav      Navigator
	logger   *zap.Logger
}

// NewUnauthorizedPrompt builds the prompt.
func NewUnauthorizedPrompt(sessions SessionClearer, nav Navigator, log *zap.Logger) *UnauthorizedPrompt {
	if log == nil {
		log = zap.NewNop()
	}
	return &UnauthorizedPrompt{
		sessions: sessions,
		nav:      nav,
		logger:   log,
	}
}

// Trigger shows the prompt. Safe to call from the gateway's unauthorized
// handler for every qualifying response.
func (p *UnauthorizedPrompt) Trigger() {
	p.mu.Lock()
	already := p.shown
	p.shown = true
	p.mu.Unlock()

	if !already {
		p.logger.Info("session expired, prompting for re-authentication")
	}
}

// Shown reports whether the prompt is currently visible.
func (p *UnauthorizedPrompt) Shown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown
}

// Confirm acknowledges the prompt: hide it, clear the session, and return
// to the landing route. A no-op while hidden.
func (p *UnauthorizedPrompt) Confirm() {
	p.mu.Lock()
	if !p.shown {
		p.mu.Unlock()
		return
	}
	p.shown = false
	p.mu.Unlock()

	if p.sessions != nil {
		p.sessions.ClearSession()
	}
	if p.nav != nil {
		p.nav.Navigate(guard.RouteHome)
	}
}

// Package session holds the client's view of the signed-in user.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/atinyakov/GophNotes/internal/models"
)

// AuthService is the remote auth collaborator.
type AuthService interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SignOut(ctx context.Context) error
	Subscribe(fn func(*models.Session)) (unsubscribe func())
}

// Context tracks the current session. It is passed explicitly to the
// components that need the user identity.
type Context struct {
	auth AuthService
	now  func() time.Time

	mu          sync.RWMutex
	current     *models.Session
	unsubscribe func()
	listeners   []func(*models.Session)
}

// New returns a Context backed by auth. Call Init before use.
func New(auth AuthService) *Context {
	return &Context{auth: auth, now: time.Now}
}

// Init subscribes to session changes and loads the current session.
func (c *Context) Init(ctx context.Context) error {
	unsubscribe := c.auth.Subscribe(c.replace)

	c.mu.Lock()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	sess, err := c.auth.GetSession(ctx)
	if err != nil {
		return err
	}
	c.replace(sess)
	return nil
}

// Close stops listening for session changes.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Context) replace(sess *models.Session) {
	if sess != nil {
		cp := *sess
		sess = &cp
	}

	c.mu.Lock()
	c.current = sess
	listeners := append([]func(*models.Session){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(sess)
	}
}

// OnChange registers fn to run after every session change.
func (c *Context) OnChange(fn func(*models.Session)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Current returns a copy of the session or nil.
func (c *Context) Current() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

// Authenticated reports whether a live session is present.
func (c *Context) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil && c.current.Active(c.now())
}

// UserID returns the signed-in user's id, or "" when not authenticated.
func (c *Context) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil || !c.current.Active(c.now()) {
		return ""
	}
	return c.current.UserID
}

// SignOut ends the session remotely and locally.
func (c *Context) SignOut(ctx context.Context) error {
	err := c.auth.SignOut(ctx)
	if c.Current() != nil {
		c.replace(nil)
	}
	return err
}

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/GophNotes/internal/models"
)

// Auth is the client of the /api/auth endpoints. The current session is kept
// in a JSON state file so the token survives restarts.
type Auth struct {
	api       api
	statePath string

	mu      sync.Mutex
	session *models.Session
	subs    map[int]func(*models.Session)
	nextSub int
}

// NewAuth creates an auth client. statePath may be empty to keep the session
// in memory only.
func NewAuth(client *http.Client, baseURL, statePath string) *Auth {
	a := &Auth{statePath: statePath, subs: make(map[int]func(*models.Session))}
	a.api = newAPI(client, baseURL, a)
	return a
}

// Token returns the bearer token of the stored session or "".
func (a *Auth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// Load reads the state file. A missing file means no session.
func (a *Auth) Load() error {
	if a.statePath == "" {
		return nil
	}
	f, err := os.Open(a.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var sess models.Session
	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return fmt.Errorf("decode state file: %w", err)
	}
	a.mu.Lock()
	if sess.Token != "" {
		a.session = &sess
	}
	a.mu.Unlock()
	return nil
}

func (a *Auth) save(sess *models.Session) error {
	if a.statePath == "" {
		return nil
	}
	if sess == nil {
		if err := os.Remove(a.statePath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.statePath), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(a.statePath, b, 0o600)
}

// set replaces the stored session, persists it and notifies subscribers.
func (a *Auth) set(sess *models.Session) error {
	a.mu.Lock()
	a.session = sess
	subs := make([]func(*models.Session), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	err := a.save(sess)
	for _, fn := range subs {
		fn(sess)
	}
	return err
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account and stores its session.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return a.authenticate(ctx, "/api/auth/signup", email, password)
}

// SignIn logs in and stores the session.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return a.authenticate(ctx, "/api/auth/login", email, password)
}

func (a *Auth) authenticate(ctx context.Context, path, email, password string) (*models.Session, error) {
	var sess models.Session
	if err := a.api.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, &sess); err != nil {
		return nil, err
	}
	if err := a.set(&sess); err != nil {
		return &sess, fmt.Errorf("save session: %w", err)
	}
	return &sess, nil
}

// GetSession returns the live session or nil when signed out. A token the
// server no longer accepts is discarded.
func (a *Auth) GetSession(ctx context.Context) (*models.Session, error) {
	if a.Token() == "" {
		return nil, nil
	}
	var sess models.Session
	err := a.api.do(ctx, http.MethodGet, "/api/auth/session", nil, &sess)
	if errors.Is(err, models.ErrUnauthorized) {
		return nil, a.set(nil)
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// SignOut revokes the token on the server and forgets it locally. The local
// session is dropped even when the server call fails.
func (a *Auth) SignOut(ctx context.Context) error {
	if a.Token() == "" {
		return nil
	}
	err := a.api.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if errors.Is(err, models.ErrUnauthorized) {
		err = nil
	}
	if serr := a.set(nil); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Subscribe registers fn for session changes and returns the function that
// removes it.
func (a *Auth) Subscribe(fn func(*models.Session)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

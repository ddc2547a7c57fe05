// Package session orchestrates the authentication lifecycle: startup
// restore, login, register, and logout, keeping the credential store and
// the in-memory AuthState consistent with each other.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ndubrovin/TaskKeeper/internal/client/api"
	"github.com/ndubrovin/TaskKeeper/internal/client/storage"
	"github.com/ndubrovin/TaskKeeper/internal/models"
	"go.uber.org/zap"
)

// State is the controller's position in the auth lifecycle.
type State int

const (
	// StateUnauthenticated means no credential pair is held.
	StateUnauthenticated State = iota
	// StateValidating means a stored token is being checked with the
	// server during startup restore.
	StateValidating
	// StateAuthenticated means token and user are both held.
	StateAuthenticated
)

// AuthAPI is the slice of the API client the controller needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, username string) (*api.AuthResponse, error)
	ValidateToken(ctx context.Context) (*models.User, error)
}

// CredentialStore persists the bearer token across restarts.
type CredentialStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// Controller owns the AuthState. It is the single writer; everything
// else reads snapshots through AuthState(). Overlapping credential calls
// resolve last-response-wins, which the UI keeps from happening by
// allowing one in-flight credential action at a time.
type Controller struct {
	api   AuthAPI
	creds CredentialStore
	log   *zap.Logger

	mu    sync.Mutex
	state State
	auth  models.AuthState
}

// NewController constructs a Controller in the unauthenticated state.
func NewController(authAPI AuthAPI, creds CredentialStore, log *zap.Logger) *Controller {
	return &Controller{api: authAPI, creds: creds, log: log}
}

// Restore runs the startup flow: if a token is stored, validate it with
// the server and install the returned user; on any failure (absent
// token, network, 401) the token is cleared and the controller stays
// unauthenticated. Restore never surfaces validation failures to the
// caller — ending up signed out is the handling.
func (c *Controller) Restore(ctx context.Context) {
	token, err := c.creds.Get()
	if err != nil {
		if !errors.Is(err, storage.ErrNoToken) {
			c.log.Warn("failed to read stored token", zap.Error(err))
		}
		return
	}

	c.setState(StateValidating)

	user, err := c.api.ValidateToken(ctx)
	if err != nil {
		c.log.Info("stored token rejected, signing out", zap.Error(err))
		if clearErr := c.creds.Clear(); clearErr != nil {
			c.log.Warn("failed to clear rejected token", zap.Error(clearErr))
		}
		c.reset()
		return
	}

	c.install(token, user)
}

// Login authenticates with email and password. On success the token is
// persisted and AuthState gains token and user together, atomically. On
// an API failure AuthState is untouched and the error propagates. When
// the server accepts the login but the token cannot be persisted, the
// in-memory state is still installed and the storage error is returned:
// the caller must know the session will not survive a restart.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return c.adopt(resp)
}

// Register creates an account; the success and failure contracts match
// Login.
func (c *Controller) Register(ctx context.Context, email, password, username string) error {
	resp, err := c.api.Register(ctx, email, password, username)
	if err != nil {
		return err
	}
	return c.adopt(resp)
}

// Logout clears the credential store and resets AuthState. It never
// leaves the client authenticated: a store that cannot be cleared is
// logged, and the in-memory state is wiped regardless.
func (c *Controller) Logout() {
	if err := c.creds.Clear(); err != nil {
		c.log.Warn("failed to clear credential store on logout", zap.Error(err))
	}
	c.reset()
}

// AuthState returns a snapshot of the current authentication state.
func (c *Controller) AuthState() models.AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// State returns the controller's lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) adopt(resp *api.AuthResponse) error {
	storeErr := c.creds.Set(resp.Token)
	c.install(resp.Token, &resp.User)
	return storeErr
}

func (c *Controller) install(token string, user *models.User) {
	u := *user
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = models.AuthState{Token: token, User: &u}
	c.state = StateAuthenticated
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = models.AuthState{}
	c.state = StateUnauthenticated
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

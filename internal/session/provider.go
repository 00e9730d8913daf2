package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/feiralivre/storefront/internal/api"
	"github.com/feiralivre/storefront/internal/commerce"
)

type State string

const (
	StateUnknown        State = "UNKNOWN"
	StateAuthenticating State = "AUTHENTICATING"
	StateAuthenticated  State = "AUTHENTICATED"
	StateAnonymous      State = "ANONYMOUS"
)

func (s State) String() string { return string(s) }

// Resolved reports whether the provider has settled on an answer; consumers
// that gate on authentication wait for this, not for Authenticated.
func (s State) Resolved() bool { return s == StateAuthenticated || s == StateAnonymous }

var ErrInvalidCredentials = errors.New("invalid email or password")

// Gateway is the slice of the API client the provider needs.
type Gateway interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*commerce.User, error)
}

// Provider owns the authenticated identity for one session. It starts
// Unknown; Resume settles it from the persisted credential, Login and Logout
// move it afterwards. There is exactly one Provider per session.
type Provider struct {
	mu    sync.RWMutex
	gw    Gateway
	creds CredentialStore
	log   *slog.Logger

	state State
	user  *commerce.User

	resolved     chan struct{}
	resolvedOnce sync.Once
}

func NewProvider(gw Gateway, creds CredentialStore, log *slog.Logger) *Provider {
	return &Provider{
		gw:       gw,
		creds:    creds,
		log:      log,
		state:    StateUnknown,
		resolved: make(chan struct{}),
	}
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Provider) User() *commerce.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

// Resolved is closed the first time the provider leaves Unknown.
func (p *Provider) Resolved() <-chan struct{} { return p.resolved }

// Resume settles the initial state from the persisted credential: no
// credential means Anonymous outright; otherwise the credential is validated
// against the backend and discarded when it no longer works.
func (p *Provider) Resume(ctx context.Context) error {
	token, err := p.creds.Load(ctx)
	if err != nil {
		p.log.Warn("credential load failed, starting anonymous", "error", err)
		p.settle(StateAnonymous, nil)
		return nil
	}
	if token == "" {
		p.settle(StateAnonymous, nil)
		return nil
	}

	p.setState(StateAuthenticating)

	user, err := p.gw.Me(ctx)
	if err != nil {
		// Stale or revoked credential: drop it and settle anonymous.
		if clearErr := p.creds.Clear(ctx); clearErr != nil {
			p.log.Warn("credential clear failed", "error", clearErr)
		}
		p.settle(StateAnonymous, nil)
		return fmt.Errorf("resume session: %w", err)
	}

	p.settle(StateAuthenticated, user)
	return nil
}

func (p *Provider) Login(ctx context.Context, email, password string) (*commerce.User, error) {
	p.setState(StateAuthenticating)

	token, err := p.gw.Login(ctx, email, password)
	if err != nil {
		p.settle(StateAnonymous, nil)
		if remote, ok := api.AsRemote(err); ok && (remote.StatusCode == http.StatusUnauthorized || remote.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, remote.BackendMessage)
		}
		return nil, err
	}

	if err := p.creds.Save(ctx, token); err != nil {
		// The session still works, it just won't survive a restart.
		p.log.Warn("credential save failed", "error", err)
	}

	user, err := p.gw.Me(ctx)
	if err != nil {
		if clearErr := p.creds.Clear(ctx); clearErr != nil {
			p.log.Warn("credential clear failed", "error", clearErr)
		}
		p.settle(StateAnonymous, nil)
		return nil, fmt.Errorf("resolve profile after login: %w", err)
	}

	p.settle(StateAuthenticated, user)
	return user, nil
}

// Logout forces Anonymous from any prior state. It cannot fail: a credential
// store error is logged and the in-memory session still ends.
func (p *Provider) Logout(ctx context.Context) {
	if err := p.creds.Clear(ctx); err != nil {
		p.log.Warn("credential clear failed on logout", "error", err)
	}
	p.settle(StateAnonymous, nil)
}

func (p *Provider) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Provider) settle(s State, user *commerce.User) {
	p.mu.Lock()
	p.state = s
	p.user = user
	p.mu.Unlock()
	p.resolvedOnce.Do(func() { close(p.resolved) })
}

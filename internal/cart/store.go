package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/feiralivre/storefront/internal/commerce"
	"github.com/feiralivre/storefront/internal/session"
)

var (
	ErrInvalidProductID = errors.New("product id is not a finite integer")

	// ErrSessionUnresolved gates all network activity until the identity
	// provider has settled on Authenticated or Anonymous.
	ErrSessionUnresolved = errors.New("session state not resolved yet")
)

// Gateway is the slice of the API client the store needs.
type Gateway interface {
	GetCart(ctx context.Context) ([]commerce.CartItem, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, productID int64, quantity int) error
	RemoveCartItem(ctx context.Context, productID int64) error
}

// Sessions is the slice of the identity provider the store needs.
type Sessions interface {
	State() session.State
	Resolved() <-chan struct{}
}

// Store is the single authoritative in-memory view of the cart for one
// session. Consistency discipline is write-then-reload: every mutation ends
// with a full re-fetch and the mutation's own response is never trusted.
type Store struct {
	gw       Gateway
	sessions Sessions
	log      *slog.Logger

	mu    sync.RWMutex
	items []commerce.CartItem

	sfg singleflight.Group // collapses concurrent re-fetches
}

func NewStore(gw Gateway, sessions Sessions, log *slog.Logger) *Store {
	return &Store{gw: gw, sessions: sessions, log: log}
}

// Start blocks until the session resolves, then performs the initial fetch
// when the user is authenticated. Anonymous sessions fetch nothing.
func (s *Store) Start(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-s.sessions.Resolved():
	}
	if s.sessions.State() != session.StateAuthenticated {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("initial cart fetch failed", "error", err)
	}
}

// NormalizeProductID parses a raw id into an integer. Values that are not
// representable as a finite integer ("abc", "1.5", "NaN") are rejected
// before any network call happens.
func NormalizeProductID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProductID, raw)
	}
	return int64(f), nil
}

func (s *Store) AddItem(ctx context.Context, productID string, quantity int) error {
	if err := s.ready(); err != nil {
		return err
	}
	id, err := NormalizeProductID(productID)
	if err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}
	if err := s.gw.AddCartItem(ctx, id, quantity); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.gw.RemoveCartItem(ctx, productID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateQuantity sets a line's quantity. Zero or less means removal; a
// zero-quantity row is never stored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, newQuantity int) error {
	if newQuantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.gw.UpdateCartItem(ctx, productID, newQuantity); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Refresh re-fetches the full cart. On failure the store resets to empty:
// showing nothing beats showing stale lines the backend may no longer have.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err, _ := s.sfg.Do("refresh", func() (interface{}, error) {
		items, err := s.gw.GetCart(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.items = nil
			return nil, fmt.Errorf("refresh cart: %w", err)
		}
		s.items = items
		return nil, nil
	})
	return err
}

func (s *Store) Items() []commerce.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]commerce.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Subtotal is recomputed from the backing collection on every read, never
// stored.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return commerce.ItemsSubtotal(s.items)
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return commerce.ItemsCount(s.items)
}

func (s *Store) ready() error {
	if s.sessions.State() == session.StateUnknown {
		return ErrSessionUnresolved
	}
	return nil
}

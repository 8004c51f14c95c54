// Package shop holds one visitor's cart, wishlist and checkout state and
// reconciles it with either local storage (guests) or the backend
// (signed-in users).
package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"
)

type Engine struct {
	backend   port.Backend
	guest     port.GuestStore
	visitorID string
	catalog   *Catalog
	logger    *zap.Logger

	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
	currency    currency.Unit

	cart     *mirror[domain.CartLine]
	wishlist *mirror[domain.WishlistEntry]
	keys     keyedMutex

	mu            sync.RWMutex
	user          *domain.User
	cartStore     port.CartStore
	wishlistStore port.WishlistStore
	cartErr       error
	wishlistErr   error
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithCatalog(c *Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func WithRates(taxRate, shippingFee decimal.Decimal) Option {
	return func(e *Engine) {
		e.taxRate = taxRate
		e.shippingFee = shippingFee
	}
}

func WithCurrency(unit currency.Unit) Option {
	return func(e *Engine) { e.currency = unit }
}

// NewEngine starts in guest mode with an empty mirror; call Load to read
// the visitor's local collections.
func NewEngine(backend port.Backend, guest port.GuestStore, visitorID string, opts ...Option) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if guest == nil {
		return nil, fmt.Errorf("guest store is nil")
	}
	if visitorID == "" {
		return nil, fmt.Errorf("visitorID is empty")
	}

	e := &Engine{
		backend:     backend,
		guest:       guest,
		visitorID:   visitorID,
		logger:      zap.NewNop(),
		taxRate:     domain.TaxRate,
		shippingFee: domain.ShippingFee,
		currency:    currency.MustParseISO("PKR"),
		cart:        newMirror(domain.CloneLines),
		wishlist:    newMirror(domain.CloneEntries),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = NewCatalog(backend, e.logger, 0)
	}

	e.cartStore = NewLocalCartStore(guest, visitorID)
	e.wishlistStore = NewLocalWishlistStore(guest, visitorID)

	return e, nil
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) Mode() domain.SessionMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user != nil {
		return domain.Authenticated
	}
	return domain.Guest
}

func (e *Engine) User() (domain.User, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user == nil {
		return domain.User{}, false
	}
	return *e.user, true
}

func (e *Engine) stores() (port.CartStore, port.WishlistStore, domain.SessionMode) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	mode := domain.Guest
	if e.user != nil {
		mode = domain.Authenticated
	}
	return e.cartStore, e.wishlistStore, mode
}

// Load fills the mirror from the store of the current session mode.
func (e *Engine) Load(ctx context.Context) error {
	// no shared cancellation: one failing read must not empty the other
	var g errgroup.Group
	g.Go(func() error { return e.RefreshCart(ctx) })
	g.Go(func() error { return e.RefreshWishlist(ctx) })
	return g.Wait()
}

// Login switches to the account of user. The mirror built from local
// storage is discarded and replaced with the server state; guest
// contents are not merged (see MigrateGuestState).
func (e *Engine) Login(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return fmt.Errorf("user.ID is empty")
	}

	e.mu.Lock()
	e.user = &user
	e.cartStore = NewRemoteCartStore(e.backend, user.ID, e.logger)
	e.wishlistStore = NewRemoteWishlistStore(e.backend, user.ID, e.logger)
	e.mu.Unlock()

	e.cart.reset()
	e.wishlist.reset()

	e.logger.Info("session authenticated", zap.String("user_id", user.ID))

	return e.Load(ctx)
}

// Logout drops the account session and clears the guest collections.
func (e *Engine) Logout(ctx context.Context) error {
	e.toGuest()

	if err := e.guest.Clear(ctx, e.visitorID); err != nil {
		e.logger.Warn("clear local collections on logout failed", zap.Error(err))
		return fmt.Errorf("guest.Clear: %w", err)
	}
	return nil
}

func (e *Engine) toGuest() {
	e.mu.Lock()
	e.user = nil
	e.cartStore = NewLocalCartStore(e.guest, e.visitorID)
	e.wishlistStore = NewLocalWishlistStore(e.guest, e.visitorID)
	e.cartErr, e.wishlistErr = nil, nil
	e.mu.Unlock()

	e.cart.reset()
	e.wishlist.reset()
}

// RefreshCart re-reads the cart. On failure the mirror is emptied and the
// error is kept for CartLoadErr.
func (e *Engine) RefreshCart(ctx context.Context) error {
	store, _, mode := e.stores()
	ticket := e.cart.ticket()

	lines, err := store.Lines(ctx)
	if err != nil {
		e.logger.Error("fetch cart failed", zap.Stringer("mode", mode), zap.Error(err))
		lines = []domain.CartLine{}
	}

	if e.cart.apply(ticket, lines) {
		e.mu.Lock()
		e.cartErr = err
		e.mu.Unlock()
	}

	if err != nil {
		return e.handle(ctx, err)
	}
	return nil
}

func (e *Engine) RefreshWishlist(ctx context.Context) error {
	_, store, mode := e.stores()
	ticket := e.wishlist.ticket()

	entries, err := store.Entries(ctx)
	if err != nil {
		e.logger.Error("fetch wishlist failed", zap.Stringer("mode", mode), zap.Error(err))
		entries = []domain.WishlistEntry{}
	}

	if e.wishlist.apply(ticket, entries) {
		e.mu.Lock()
		e.wishlistErr = err
		e.mu.Unlock()
	}

	if err != nil {
		return e.handle(ctx, err)
	}
	return nil
}

// CartLoadErr reports a failed cart read, the "failed to load" state.
func (e *Engine) CartLoadErr() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cartErr
}

func (e *Engine) WishlistLoadErr() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wishlistErr
}

// handle returns err unchanged after expire has looked at it.
func (e *Engine) handle(ctx context.Context, err error) error {
	e.expire(ctx, err)
	return err
}

// expire turns an expired session into a guest session.
func (e *Engine) expire(ctx context.Context, err error) {
	if !errors.Is(err, domain.ErrSessionExpired) || e.Mode() != domain.Authenticated {
		return
	}

	e.logger.Warn("session expired, continuing as guest")
	e.toGuest()
	if clearErr := e.guest.Clear(context.WithoutCancel(ctx), e.visitorID); clearErr != nil {
		e.logger.Warn("clear local collections failed", zap.Error(clearErr))
	}
}

func (e *Engine) fail(ctx context.Context, op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	e.logger.Error("shop operation failed", fields...)
	return e.handle(ctx, err)
}

func lineFields(productID uuid.UUID, format string) []zap.Field {
	return []zap.Field{
		zap.String("product_id", productID.String()),
		zap.String("format", format),
	}
}

// Mutations hold the lock of their collection for the whole
// optimistic-apply, commit and rollback sequence: stores rewrite and
// rollbacks restore the collection as a whole.
const (
	cartLock     = "cart"
	wishlistLock = "wishlist"
)

package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

// MigrateGuestState pushes what the visitor collected as a guest into the
// signed-in account. A local collection is cleared only when every one of
// its items reached the backend. The mirror is re-read afterwards.
func (e *Engine) MigrateGuestState(ctx context.Context) error {
	const op = "migrate guest state"

	if e.Mode() != domain.Authenticated {
		return e.fail(ctx, op, domain.ErrNotAuthenticated)
	}

	for _, key := range []string{cartLock, wishlistLock} {
		unlock, err := e.keys.lock(ctx, key)
		if err != nil {
			return e.fail(ctx, op, err)
		}
		defer unlock()
	}

	lines, err := e.guest.Cart(ctx, e.visitorID)
	if err != nil {
		return e.fail(ctx, op, fmt.Errorf("guest.Cart: %w", err))
	}
	ids, err := e.guest.Wishlist(ctx, e.visitorID)
	if err != nil {
		return e.fail(ctx, op, fmt.Errorf("guest.Wishlist: %w", err))
	}

	var cartErrs []error
	for _, l := range lines {
		if err := e.backend.AddCartLine(ctx, l.ProductID, l.Format, l.Quantity); err != nil {
			cartErrs = append(cartErrs, fmt.Errorf("backend.AddCartLine[%s]: %w", l.ProductID, err))
		}
	}

	var wishlistErrs []error
	for _, id := range ids {
		if e.IsInWishlist(id) {
			continue
		}
		if err := e.backend.AddWishlistEntry(ctx, id); err != nil {
			wishlistErrs = append(wishlistErrs, fmt.Errorf("backend.AddWishlistEntry[%s]: %w", id, err))
		}
	}

	var cleared []port.Collection
	if len(lines) > 0 && len(cartErrs) == 0 {
		cleared = append(cleared, port.CollectionCart)
	}
	if len(ids) > 0 && len(wishlistErrs) == 0 {
		cleared = append(cleared, port.CollectionWishlist)
	}
	if len(cleared) > 0 {
		if err := e.guest.Clear(ctx, e.visitorID, cleared...); err != nil {
			e.logger.Warn("clear migrated collections failed", zap.Error(err))
		}
	}

	e.logger.Info("guest state migrated",
		zap.Int("cart_lines", len(lines)),
		zap.Int("wishlist_entries", len(ids)),
		zap.Int("failures", len(cartErrs)+len(wishlistErrs)))

	loadErr := e.Load(ctx)

	if err := errors.Join(append(cartErrs, wishlistErrs...)...); err != nil {
		return e.fail(ctx, op, err)
	}
	return loadErr
}

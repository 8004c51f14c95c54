package shop

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

// ToggleWishlistItem removes the product when present, adds it otherwise.
// Guests are checked against local storage, signed-in users against the
// mirror. A full guest wishlist rejects additions with ErrWishlistFull;
// removals always go through.
func (e *Engine) ToggleWishlistItem(ctx context.Context, productID uuid.UUID) error {
	const op = "toggle wishlist"
	fields := []zap.Field{zap.String("product_id", productID.String())}

	if _, ok := e.catalog.Find(productID); !ok {
		return e.fail(ctx, op, domain.ErrProductNotFound, fields...)
	}

	unlock, err := e.keys.lock(ctx, wishlistLock)
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	defer unlock()

	_, store, mode := e.stores()

	present, err := e.inWishlist(ctx, store, mode, productID)
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}

	if present {
		err = e.removeWishlistEntry(ctx, store, productID)
	} else {
		err = e.addWishlistEntry(ctx, store, productID)
	}
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	return nil
}

// RemoveFromWishlist does not require the product to be in the catalog.
func (e *Engine) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) error {
	const op = "remove from wishlist"
	fields := []zap.Field{zap.String("product_id", productID.String())}

	unlock, err := e.keys.lock(ctx, wishlistLock)
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	defer unlock()

	_, store, _ := e.stores()

	if err := e.removeWishlistEntry(ctx, store, productID); err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	return nil
}

func (e *Engine) inWishlist(ctx context.Context, store port.WishlistStore, mode domain.SessionMode, productID uuid.UUID) (bool, error) {
	if mode == domain.Authenticated {
		return e.IsInWishlist(productID), nil
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(entries, func(w domain.WishlistEntry) bool {
		return w.ProductID == productID
	}), nil
}

func (e *Engine) addWishlistEntry(ctx context.Context, store port.WishlistStore, productID uuid.UUID) error {
	return withRollback(e.wishlist,
		func(entries []domain.WishlistEntry) []domain.WishlistEntry {
			return append(entries, domain.WishlistEntry{ProductID: productID})
		},
		func() ([]domain.WishlistEntry, error) {
			return store.Add(ctx, productID)
		})
}

func (e *Engine) removeWishlistEntry(ctx context.Context, store port.WishlistStore, productID uuid.UUID) error {
	return withRollback(e.wishlist,
		func(entries []domain.WishlistEntry) []domain.WishlistEntry {
			return slices.DeleteFunc(entries, func(w domain.WishlistEntry) bool { return w.ProductID == productID })
		},
		func() ([]domain.WishlistEntry, error) {
			return store.Remove(ctx, productID)
		})
}

func (e *Engine) IsInWishlist(productID uuid.UUID) bool {
	return slices.ContainsFunc(e.wishlist.get(), func(w domain.WishlistEntry) bool {
		return w.ProductID == productID
	})
}

func (e *Engine) Wishlist() []domain.WishlistEntry {
	return e.wishlist.get()
}

func (e *Engine) WishlistCount() int {
	return len(e.wishlist.get())
}

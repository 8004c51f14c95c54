package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

// CartStore is where cart mutations land for the current session mode.
// Mutations return the resulting collection as the store sees it.
type CartStore interface {
	Lines(ctx context.Context) ([]domain.CartLine, error)
	Add(ctx context.Context, line domain.CartLine) ([]domain.CartLine, error)
	Remove(ctx context.Context, key domain.LineKey) ([]domain.CartLine, error)
	Update(ctx context.Context, key domain.LineKey, quantity int) ([]domain.CartLine, error)
	Clear(ctx context.Context) error
}

type WishlistStore interface {
	Entries(ctx context.Context) ([]domain.WishlistEntry, error)
	Add(ctx context.Context, productID uuid.UUID) ([]domain.WishlistEntry, error)
	Remove(ctx context.Context, productID uuid.UUID) ([]domain.WishlistEntry, error)
	Clear(ctx context.Context) error
}

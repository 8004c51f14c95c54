package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

// KVStore is durable per-visitor storage. Get returns (nil, nil) for a
// missing key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

type Collection string

const (
	CollectionCart     Collection = "localCart"
	CollectionWishlist Collection = "localWishlist"
)

// GuestStore reads and writes the guest collections of one visitor.
// Malformed stored data reads as an empty collection.
type GuestStore interface {
	Cart(ctx context.Context, visitorID string) ([]domain.CartLine, error)
	SetCart(ctx context.Context, visitorID string, lines []domain.CartLine) error
	Wishlist(ctx context.Context, visitorID string) ([]uuid.UUID, error)
	SetWishlist(ctx context.Context, visitorID string, ids []uuid.UUID) error
	Clear(ctx context.Context, visitorID string, collections ...Collection) error
}

package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type CatalogBackend interface {
	Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Product(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type CartBackend interface {
	Cart(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddCartLine(ctx context.Context, productID uuid.UUID, format string, quantity int) error
	RemoveCartLine(ctx context.Context, productID uuid.UUID, format string) error
	UpdateCartLine(ctx context.Context, productID uuid.UUID, format string, quantity int) error
}

type WishlistBackend interface {
	Wishlist(ctx context.Context, userID string) ([]domain.WishlistEntry, error)
	AddWishlistEntry(ctx context.Context, productID uuid.UUID) error
	RemoveWishlistEntry(ctx context.Context, productID uuid.UUID) error
}

type CheckoutBackend interface {
	CalculateCheckout(ctx context.Context, items []domain.CheckoutItem, taxes, shippingFee decimal.Decimal) (domain.CheckoutQuote, error)
	ProcessCheckout(ctx context.Context, req domain.CheckoutRequest, taxes, shippingFee decimal.Decimal) (string, error)
	CreateGuestOrder(ctx context.Context, order domain.GuestOrder, items []domain.CheckoutItem, totals domain.Totals) (string, error)
	UploadPaymentProof(ctx context.Context, orderID, filename string, proof []byte) error
	Orders(ctx context.Context) ([]domain.Order, error)
}

type ContentBackend interface {
	ProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (domain.ReviewPage, error)
	AddReview(ctx context.Context, review domain.Review) error
	HeroImages(ctx context.Context) ([]domain.HeroImage, error)
}

// Backend is the whole REST surface the storefront consumes.
type Backend interface {
	CatalogBackend
	CartBackend
	WishlistBackend
	CheckoutBackend
	ContentBackend
}

package shop_test

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/remote"
	"github.com/shopspring/decimal"
)

var _ port.Backend = (*fakeBackend)(nil)

// fakeBackend keeps one account in memory. failures maps an operation
// name to the error it answers with.
type fakeBackend struct {
	mu       sync.Mutex
	products []domain.Product
	cart     []domain.CartLine
	wishlist []uuid.UUID
	orders   []domain.Order
	reviews  []domain.Review
	failures map[string]error

	guestOrders []domain.GuestOrder
	checkouts   []domain.CheckoutRequest
	proofs      map[string][]byte
	quote       *domain.CheckoutQuote

	// beforeAdd runs outside the lock at the start of AddCartLine.
	beforeAdd func(productID uuid.UUID) error

	calls atomic.Int64
}

func newFakeBackend(products ...domain.Product) *fakeBackend {
	return &fakeBackend{
		products: products,
		failures: map[string]error{},
		proofs:   map[string][]byte{},
	}
}

func (b *fakeBackend) failOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = err
}

func (b *fakeBackend) heal(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, op)
}

// check is called with b.mu held.
func (b *fakeBackend) check(op string) error {
	b.calls.Add(1)
	return b.failures[op]
}

func rejected(message string) error {
	return &remote.Error{Method: http.MethodPost, Path: "/api", Status: http.StatusOK, Message: message}
}

func unreachable() error {
	return &remote.Error{Method: http.MethodGet, Path: "/api", Err: errors.New("connection refused")}
}

func expired() error {
	return &remote.Error{Method: http.MethodGet, Path: "/api", Status: http.StatusUnauthorized, Message: "jwt expired", Err: domain.ErrSessionExpired}
}

func (b *fakeBackend) Products(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("products"); err != nil {
		return nil, err
	}
	return slices.Clone(b.products), nil
}

func (b *fakeBackend) Product(_ context.Context, id uuid.UUID) (domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("product"); err != nil {
		return domain.Product{}, err
	}
	p, ok := domain.FindProduct(b.products, id)
	if !ok {
		return domain.Product{}, &remote.Error{Method: http.MethodGet, Path: "/api/products", Status: http.StatusNotFound, Message: "Product not found"}
	}
	return p, nil
}

func (b *fakeBackend) Cart(_ context.Context, _ string) ([]domain.CartLine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cart"); err != nil {
		return nil, err
	}
	return domain.CloneLines(b.cart), nil
}

func (b *fakeBackend) onAdd(fn func(productID uuid.UUID) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.beforeAdd = fn
}

func (b *fakeBackend) AddCartLine(_ context.Context, productID uuid.UUID, format string, quantity int) error {
	b.mu.Lock()
	hook := b.beforeAdd
	b.mu.Unlock()
	if hook != nil {
		if err := hook(productID); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("add cart"); err != nil {
		return err
	}

	key := domain.LineKey{ProductID: productID, Format: format}
	if i := domain.FindLine(b.cart, key); i >= 0 {
		b.cart[i].Quantity += quantity
		return nil
	}
	p, _ := domain.FindProduct(b.products, productID)
	b.cart = append(b.cart, domain.NewGuestLine(p, format, quantity))
	return nil
}

func (b *fakeBackend) RemoveCartLine(_ context.Context, productID uuid.UUID, format string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("remove cart"); err != nil {
		return err
	}
	key := domain.LineKey{ProductID: productID, Format: format}
	b.cart = slices.DeleteFunc(b.cart, func(l domain.CartLine) bool { return l.Key() == key })
	return nil
}

func (b *fakeBackend) UpdateCartLine(_ context.Context, productID uuid.UUID, format string, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("update cart"); err != nil {
		return err
	}
	if i := domain.FindLine(b.cart, domain.LineKey{ProductID: productID, Format: format}); i >= 0 {
		b.cart[i].Quantity = quantity
	}
	return nil
}

func (b *fakeBackend) Wishlist(_ context.Context, _ string) ([]domain.WishlistEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wishlist"); err != nil {
		return nil, err
	}
	entries := make([]domain.WishlistEntry, len(b.wishlist))
	for i, id := range b.wishlist {
		entries[i] = domain.WishlistEntry{ProductID: id}
	}
	return entries, nil
}

func (b *fakeBackend) AddWishlistEntry(_ context.Context, productID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("add wishlist"); err != nil {
		return err
	}
	if !slices.Contains(b.wishlist, productID) {
		b.wishlist = append(b.wishlist, productID)
	}
	return nil
}

func (b *fakeBackend) RemoveWishlistEntry(_ context.Context, productID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("remove wishlist"); err != nil {
		return err
	}
	b.wishlist = slices.DeleteFunc(b.wishlist, func(id uuid.UUID) bool { return id == productID })
	return nil
}

func (b *fakeBackend) CalculateCheckout(_ context.Context, items []domain.CheckoutItem, taxes, shippingFee decimal.Decimal) (domain.CheckoutQuote, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("calculate"); err != nil {
		return domain.CheckoutQuote{}, err
	}
	if b.quote != nil {
		return *b.quote, nil
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return domain.CheckoutQuote{
		Totals: domain.Totals{
			Subtotal:    subtotal,
			Taxes:       taxes,
			ShippingFee: shippingFee,
			Total:       subtotal.Add(taxes).Add(shippingFee),
		},
		Items: items,
	}, nil
}

func (b *fakeBackend) ProcessCheckout(_ context.Context, req domain.CheckoutRequest, _, _ decimal.Decimal) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("process"); err != nil {
		return "", err
	}
	b.checkouts = append(b.checkouts, req)
	b.cart = nil
	return uuid.NewString(), nil
}

func (b *fakeBackend) CreateGuestOrder(_ context.Context, order domain.GuestOrder, _ []domain.CheckoutItem, _ domain.Totals) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("guest order"); err != nil {
		return "", err
	}
	b.guestOrders = append(b.guestOrders, order)
	return uuid.NewString(), nil
}

func (b *fakeBackend) UploadPaymentProof(_ context.Context, orderID, _ string, proof []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("upload proof"); err != nil {
		return err
	}
	b.proofs[orderID] = proof
	return nil
}

func (b *fakeBackend) Orders(_ context.Context) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("orders"); err != nil {
		return nil, err
	}
	return slices.Clone(b.orders), nil
}

func (b *fakeBackend) ProductReviews(_ context.Context, productID uuid.UUID, page, limit int) (domain.ReviewPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("reviews"); err != nil {
		return domain.ReviewPage{}, err
	}
	var out []domain.Review
	for _, r := range b.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return domain.ReviewPage{
		Reviews:    out,
		Pagination: domain.Pagination{Page: page, Limit: limit, Total: len(out), Pages: 1},
	}, nil
}

func (b *fakeBackend) AddReview(_ context.Context, review domain.Review) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("add review"); err != nil {
		return err
	}
	b.reviews = append(b.reviews, review)
	return nil
}

func (b *fakeBackend) HeroImages(_ context.Context) ([]domain.HeroImage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("hero"); err != nil {
		return nil, err
	}
	return []domain.HeroImage{{ID: "1", URL: "https://example.com/hero.jpg"}}, nil
}

func (b *fakeBackend) cartLines() []domain.CartLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.CloneLines(b.cart)
}

func (b *fakeBackend) wishlistIDs() []uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.wishlist)
}

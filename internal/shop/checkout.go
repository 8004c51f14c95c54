package shop

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

// CheckoutItems turns the cart into order items priced at the current
// catalog price, or the add-time price when the product is not cached.
func (e *Engine) CheckoutItems() []domain.CheckoutItem {
	lines := e.cart.get()
	items := make([]domain.CheckoutItem, len(lines))
	for i, l := range lines {
		price := e.resolvePrice(l.ProductID, l.Price)
		items[i] = domain.CheckoutItem{ProductID: l.ProductID, Quantity: l.Quantity, Price: &price}
	}
	return items
}

// CheckoutQuote asks the backend to price the cart and falls back to the
// local calculation when it cannot.
func (e *Engine) CheckoutQuote(ctx context.Context) (domain.CheckoutQuote, error) {
	items := e.CheckoutItems()
	totals := e.CartTotals()
	if len(items) == 0 {
		return domain.CheckoutQuote{Totals: totals, Items: items}, nil
	}

	quote, err := e.backend.CalculateCheckout(ctx, items, totals.Taxes, totals.ShippingFee)
	if err != nil {
		if ctx.Err() != nil {
			return domain.CheckoutQuote{}, fmt.Errorf("backend.CalculateCheckout: %w", err)
		}
		e.logger.Warn("checkout calculate failed, using local totals", zap.Error(err))
		e.expire(ctx, err)
		return domain.CheckoutQuote{Totals: totals, Items: items, Local: true}, nil
	}

	if quote.Items == nil {
		quote.Items = items
	}
	return quote, nil
}

// ProcessCheckout places an order for the signed-in user's cart and
// returns its ID. The cart is emptied on success.
func (e *Engine) ProcessCheckout(ctx context.Context, shipping domain.ShippingDetails, method domain.PaymentMethod, onlineOption string) (string, error) {
	const op = "process checkout"

	if e.Mode() != domain.Authenticated {
		return "", e.fail(ctx, op, domain.ErrNotAuthenticated)
	}

	shipping = trimShipping(shipping)
	if method == "" {
		method = domain.PaymentCOD
	}

	fields := map[string]string{}
	if shipping.Address == "" {
		fields["shippingAddress"] = "required"
	}
	validatePayment(fields, method, onlineOption)
	if len(fields) > 0 {
		return "", e.fail(ctx, op, &domain.ValidationError{Fields: fields})
	}

	unlock, err := e.keys.lock(ctx, cartLock)
	if err != nil {
		return "", e.fail(ctx, op, err)
	}
	defer unlock()

	items := e.CheckoutItems()
	if len(items) == 0 {
		return "", e.fail(ctx, op, domain.ErrEmptyCart)
	}
	totals := e.CartTotals()

	req := domain.CheckoutRequest{
		Items:               items,
		Shipping:            shipping,
		PaymentMethod:       method,
		OnlinePaymentOption: strings.TrimSpace(onlineOption),
	}

	orderID, err := e.backend.ProcessCheckout(ctx, req, totals.Taxes, totals.ShippingFee)
	if err != nil {
		return "", e.fail(ctx, op, fmt.Errorf("backend.ProcessCheckout: %w", err))
	}

	e.afterOrder(ctx)
	e.logger.Info("order placed", zap.String("order_id", orderID), zap.String("payment_method", string(method)))

	return orderID, nil
}

// PlaceGuestOrder submits the guest cart as an order and uploads the
// payment proof when one is attached. When only the upload fails the
// order ID is returned together with ErrProofUploadFailed.
func (e *Engine) PlaceGuestOrder(ctx context.Context, order domain.GuestOrder) (string, error) {
	const op = "place guest order"

	order = normalizeGuestOrder(order)
	if err := validateGuestOrder(order); err != nil {
		return "", e.fail(ctx, op, err)
	}

	unlock, err := e.keys.lock(ctx, cartLock)
	if err != nil {
		return "", e.fail(ctx, op, err)
	}
	defer unlock()

	items := e.CheckoutItems()
	if len(items) == 0 {
		return "", e.fail(ctx, op, domain.ErrEmptyCart)
	}
	totals := e.CartTotals()

	orderID, err := e.backend.CreateGuestOrder(ctx, order, items, totals)
	if err != nil {
		return "", e.fail(ctx, op, fmt.Errorf("backend.CreateGuestOrder: %w", err))
	}

	e.afterOrder(ctx)
	e.logger.Info("guest order placed", zap.String("order_id", orderID))

	if order.PaymentMethod == domain.PaymentOnline && len(order.Proof) > 0 {
		if err := e.UploadPaymentProof(ctx, orderID, order.ProofFilename, order.Proof); err != nil {
			return orderID, err
		}
	}
	return orderID, nil
}

func (e *Engine) UploadPaymentProof(ctx context.Context, orderID, filename string, proof []byte) error {
	if err := e.backend.UploadPaymentProof(ctx, orderID, filename, proof); err != nil {
		return e.fail(ctx, "upload payment proof", fmt.Errorf("%w: %w", domain.ErrProofUploadFailed, err),
			zap.String("order_id", orderID))
	}
	return nil
}

// afterOrder empties the mirror and the local cart; the backend already
// dropped the account cart.
func (e *Engine) afterOrder(ctx context.Context) {
	e.cart.reset()
	if err := e.guest.Clear(context.WithoutCancel(ctx), e.visitorID, port.CollectionCart); err != nil {
		e.logger.Warn("clear local cart after order failed", zap.Error(err))
	}
}

// Orders lists the signed-in user's orders. Failures yield an empty list
// alongside the error.
func (e *Engine) Orders(ctx context.Context) ([]domain.Order, error) {
	if e.Mode() != domain.Authenticated {
		return []domain.Order{}, domain.ErrNotAuthenticated
	}

	orders, err := e.backend.Orders(ctx)
	if err != nil {
		return []domain.Order{}, e.fail(ctx, "list orders", fmt.Errorf("backend.Orders: %w", err))
	}
	return orders, nil
}

// ProductReviews returns the first page with default pagination when the
// backend fails.
func (e *Engine) ProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (domain.ReviewPage, error) {
	reviews, err := e.backend.ProductReviews(ctx, productID, page, limit)
	if err != nil {
		return domain.EmptyReviewPage(), e.fail(ctx, "product reviews", fmt.Errorf("backend.ProductReviews: %w", err),
			zap.String("product_id", productID.String()))
	}
	return reviews, nil
}

func (e *Engine) AddReview(ctx context.Context, productID uuid.UUID, rating int, comment string) error {
	const op = "add review"
	fields := []zap.Field{zap.String("product_id", productID.String())}

	user, ok := e.User()
	if !ok {
		return e.fail(ctx, op, domain.ErrNotAuthenticated, fields...)
	}

	review := domain.Review{
		ProductID: productID,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := e.backend.AddReview(ctx, review); err != nil {
		return e.fail(ctx, op, fmt.Errorf("backend.AddReview: %w", err), fields...)
	}
	return nil
}

func (e *Engine) HeroImages(ctx context.Context) ([]domain.HeroImage, error) {
	images, err := e.backend.HeroImages(ctx)
	if err != nil {
		return []domain.HeroImage{}, e.fail(ctx, "hero images", fmt.Errorf("backend.HeroImages: %w", err))
	}
	return images, nil
}

func trimShipping(s domain.ShippingDetails) domain.ShippingDetails {
	return domain.ShippingDetails{
		Address:  strings.TrimSpace(s.Address),
		City:     strings.TrimSpace(s.City),
		PostCode: strings.TrimSpace(s.PostCode),
		Country:  strings.TrimSpace(s.Country),
		Phone:    strings.TrimSpace(s.Phone),
	}
}

func normalizeGuestOrder(o domain.GuestOrder) domain.GuestOrder {
	o.Name = strings.TrimSpace(o.Name)
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	o.Phone = strings.TrimSpace(o.Phone)
	o.Shipping = trimShipping(o.Shipping)
	o.OnlinePaymentOption = strings.TrimSpace(o.OnlinePaymentOption)
	if o.PaymentMethod == "" {
		o.PaymentMethod = domain.PaymentCOD
	}
	return o
}

func validateGuestOrder(o domain.GuestOrder) error {
	fields := map[string]string{}

	if o.Name == "" {
		fields["name"] = "required"
	}
	if o.Email == "" {
		fields["email"] = "required"
	} else if _, err := mail.ParseAddress(o.Email); err != nil {
		fields["email"] = "malformed"
	}
	if o.Shipping.Address == "" {
		fields["shippingAddress"] = "required"
	}
	if o.Shipping.City == "" {
		fields["city"] = "required"
	}
	validatePayment(fields, o.PaymentMethod, o.OnlinePaymentOption)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validatePayment(fields map[string]string, method domain.PaymentMethod, onlineOption string) {
	switch method {
	case domain.PaymentCOD:
	case domain.PaymentOnline:
		if strings.TrimSpace(onlineOption) == "" {
			fields["onlinePaymentOption"] = "required"
		}
	default:
		fields["paymentMethod"] = "unsupported"
	}
}

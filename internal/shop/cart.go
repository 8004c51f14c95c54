package shop

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddToCart adds quantity of a catalog product. Repeated adds of the same
// (product, format) grow one line; a line never exceeds MaxLineQuantity.
func (e *Engine) AddToCart(ctx context.Context, productID uuid.UUID, format string, quantity int) error {
	const op = "add to cart"
	fields := lineFields(productID, format)

	if !domain.ValidQuantity(quantity) {
		return e.fail(ctx, op, fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrQuantityOutOfRange), fields...)
	}

	product, ok := e.catalog.Find(productID)
	if !ok {
		return e.fail(ctx, op, domain.ErrProductNotFound, fields...)
	}

	key := domain.LineKey{ProductID: productID, Format: format}
	unlock, err := e.keys.lock(ctx, cartLock)
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	defer unlock()

	if current := e.lineQuantity(key); current+quantity > domain.MaxLineQuantity {
		return e.fail(ctx, op, fmt.Errorf("quantity[%d]: %w", current+quantity, domain.ErrQuantityOutOfRange), fields...)
	}

	store, _, _ := e.stores()
	line := domain.NewGuestLine(product, format, quantity)

	err = withRollback(e.cart,
		func(lines []domain.CartLine) []domain.CartLine {
			if i := domain.FindLine(lines, key); i >= 0 {
				lines[i].Quantity += quantity
				return lines
			}
			return append(lines, line)
		},
		func() ([]domain.CartLine, error) {
			return store.Add(ctx, line)
		})
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}

	e.logger.Debug("added to cart", append(fields, zap.Int("quantity", quantity))...)
	return nil
}

func (e *Engine) RemoveFromCart(ctx context.Context, productID uuid.UUID, format string) error {
	const op = "remove from cart"
	fields := lineFields(productID, format)

	key := domain.LineKey{ProductID: productID, Format: format}
	unlock, err := e.keys.lock(ctx, cartLock)
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	defer unlock()

	store, _, _ := e.stores()

	err = withRollback(e.cart,
		func(lines []domain.CartLine) []domain.CartLine {
			return slices.DeleteFunc(lines, func(l domain.CartLine) bool { return l.Key() == key })
		},
		func() ([]domain.CartLine, error) {
			return store.Remove(ctx, key)
		})
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	return nil
}

// UpdateCart sets the quantity of a line. Zero removes the line.
func (e *Engine) UpdateCart(ctx context.Context, productID uuid.UUID, format string, quantity int) error {
	const op = "update cart"
	fields := lineFields(productID, format)

	if quantity == 0 {
		return e.RemoveFromCart(ctx, productID, format)
	}
	if !domain.ValidQuantity(quantity) {
		return e.fail(ctx, op, fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrQuantityOutOfRange), fields...)
	}

	key := domain.LineKey{ProductID: productID, Format: format}
	unlock, err := e.keys.lock(ctx, cartLock)
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	defer unlock()

	store, _, _ := e.stores()

	err = withRollback(e.cart,
		func(lines []domain.CartLine) []domain.CartLine {
			if i := domain.FindLine(lines, key); i >= 0 {
				lines[i].Quantity = quantity
			}
			return lines
		},
		func() ([]domain.CartLine, error) {
			return store.Update(ctx, key, quantity)
		})
	if err != nil {
		return e.fail(ctx, op, err, fields...)
	}
	return nil
}

// Cart returns a copy of the mirror.
func (e *Engine) Cart() []domain.CartLine {
	return e.cart.get()
}

func (e *Engine) CartCount() int {
	return domain.CartCount(e.cart.get())
}

// CartTotals prices every line, preferring the live catalog price over the
// snapshot taken at add-time. Nothing is rounded.
func (e *Engine) CartTotals() domain.Totals {
	return domain.ComputeTotals(e.pricedLines(e.cart.get()), e.taxRate, e.shippingFee)
}

// CartTotal is the grand total rounded to minor units. An empty cart
// totals zero.
func (e *Engine) CartTotal() domain.Money {
	return e.Money(domain.RoundDisplay(e.CartTotals().Total))
}

// Money pairs amount with the configured currency.
func (e *Engine) Money(amount decimal.Decimal) domain.Money {
	return domain.NewMoney(amount, e.currency)
}

func (e *Engine) pricedLines(lines []domain.CartLine) []domain.PricedLine {
	priced := make([]domain.PricedLine, len(lines))
	for i, l := range lines {
		priced[i] = domain.PricedLine{Price: e.resolvePrice(l.ProductID, l.Price), Quantity: l.Quantity}
	}
	return priced
}

func (e *Engine) resolvePrice(productID uuid.UUID, fallback decimal.Decimal) decimal.Decimal {
	if p, ok := e.catalog.Find(productID); ok {
		return p.Price
	}
	return fallback
}

func (e *Engine) lineQuantity(key domain.LineKey) int {
	lines := e.cart.get()
	if i := domain.FindLine(lines, key); i >= 0 {
		return lines[i].Quantity
	}
	return 0
}

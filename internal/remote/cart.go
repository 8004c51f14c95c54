package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type cartLineRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Format    string    `json:"format,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
}

func (c *Client) Cart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	var out struct {
		Cart *struct {
			Items []domain.CartLine `json:"items"`
		} `json:"cart"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/cart/get/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}

	if out.Cart == nil || out.Cart.Items == nil {
		return []domain.CartLine{}, nil
	}
	return out.Cart.Items, nil
}

func (c *Client) AddCartLine(ctx context.Context, productID uuid.UUID, format string, quantity int) error {
	return c.call(ctx, http.MethodPost, "/api/cart/add", cartLineRequest{
		ProductID: productID,
		Format:    format,
		Quantity:  quantity,
	}, nil)
}

func (c *Client) RemoveCartLine(ctx context.Context, productID uuid.UUID, format string) error {
	return c.call(ctx, http.MethodDelete, "/api/cart/remove", cartLineRequest{
		ProductID: productID,
		Format:    format,
	}, nil)
}

func (c *Client) UpdateCartLine(ctx context.Context, productID uuid.UUID, format string, quantity int) error {
	return c.call(ctx, http.MethodPut, "/api/cart/update", cartLineRequest{
		ProductID: productID,
		Format:    format,
		Quantity:  quantity,
	}, nil)
}

package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type wishlistRequest struct {
	ProductID uuid.UUID `json:"productId"`
}

func (c *Client) Wishlist(ctx context.Context, userID string) ([]domain.WishlistEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	var out struct {
		Wishlist *struct {
			Items []domain.WishlistEntry `json:"items"`
		} `json:"wishlist"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/wishlist/get/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}

	if out.Wishlist == nil || out.Wishlist.Items == nil {
		return []domain.WishlistEntry{}, nil
	}
	return out.Wishlist.Items, nil
}

func (c *Client) AddWishlistEntry(ctx context.Context, productID uuid.UUID) error {
	return c.call(ctx, http.MethodPost, "/api/wishlist/add", wishlistRequest{ProductID: productID}, nil)
}

func (c *Client) RemoveWishlistEntry(ctx context.Context, productID uuid.UUID) error {
	return c.call(ctx, http.MethodDelete, "/api/wishlist/remove", wishlistRequest{ProductID: productID}, nil)
}

package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

const (
	defaultPage         = 1
	defaultCatalogLimit = 120
)

func (c *Client) Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	params := url.Values{}
	if filter.Category != "" {
		params.Set("category", filter.Category)
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.Bestseller {
		params.Set("bestseller", "true")
	}

	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultCatalogLimit
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/products/get?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}

	for i := range out.Products {
		if out.Products[i].SubCategories == nil {
			out.Products[i].SubCategories = []string{}
		}
	}
	return out.Products, nil
}

func (c *Client) Product(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if id == uuid.Nil {
		return domain.Product{}, fmt.Errorf("productID is empty")
	}

	var out struct {
		Product domain.Product `json:"product"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/products/"+id.String(), nil, &out); err != nil {
		return domain.Product{}, err
	}
	if out.Product.SubCategories == nil {
		out.Product.SubCategories = []string{}
	}
	return out.Product, nil
}

package shop

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Catalog caches the last fetched product list. The engine resolves
// prices, names and images of cart lines against it.
type Catalog struct {
	backend port.CatalogBackend
	logger  *zap.Logger
	limit   int

	group singleflight.Group

	mu       sync.RWMutex
	products []domain.Product
	loading  int
	err      error
}

func NewCatalog(backend port.CatalogBackend, logger *zap.Logger, limit int) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		backend:  backend,
		logger:   logger,
		limit:    limit,
		products: []domain.Product{},
	}
}

// Fetch replaces the cached products. On failure the cache is emptied and
// the error kept for Err. Identical concurrent fetches share one request.
func (c *Catalog) Fetch(ctx context.Context, filter domain.ProductFilter) error {
	if filter.Limit <= 0 {
		filter.Limit = c.limit
	}

	c.setLoading(1)
	defer c.setLoading(-1)

	key := fmt.Sprintf("%s|%s|%t|%d|%d", filter.Category, filter.Search, filter.Bestseller, filter.Page, filter.Limit)
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.backend.Products(ctx, filter)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error("fetch products failed",
			zap.String("category", filter.Category),
			zap.String("search", filter.Search),
			zap.Error(err))
		c.products = []domain.Product{}
		c.err = err
		return fmt.Errorf("backend.Products: %w", err)
	}

	products, _ := v.([]domain.Product)
	if products == nil {
		products = []domain.Product{}
	}
	c.products = slices.Clone(products)
	c.err = nil
	return nil
}

func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

func (c *Catalog) Find(id uuid.UUID) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.FindProduct(c.products, id)
}

// Product answers from the cache and falls back to the backend.
func (c *Catalog) Product(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if p, ok := c.Find(id); ok {
		return p, nil
	}

	p, err := c.backend.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("backend.Product: %w", err)
	}
	return p, nil
}

// Set replaces the cache without a request.
func (c *Catalog) Set(products []domain.Product) {
	if products == nil {
		products = []domain.Product{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = slices.Clone(products)
	c.err = nil
}

func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// Err is the error of the last fetch, nil after a successful one.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Catalog) setLoading(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading += delta
}

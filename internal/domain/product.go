package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PlaceholderImage = "https://placehold.co/300x300?text=Book+Image"

// Product is owned by the backend and never mutated client-side.
type Product struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Image         ImageList           `json:"image"`
	Category      string              `json:"category"`
	SubCategories []string            `json:"subCategories"`
	Bestseller    bool                `json:"bestseller"`
	Sizes         []string            `json:"sizes,omitempty"`
}

// ImageList accepts either a single URL or an array of URLs.
type ImageList []string

func (l *ImageList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = ImageList{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("image is neither string nor array: %w", err)
	}
	*l = many
	return nil
}

// First returns the primary image or a placeholder.
func (l ImageList) First() string {
	for _, s := range l {
		if s != "" {
			return s
		}
	}
	return PlaceholderImage
}

// ProductFilter maps onto /api/products/get query parameters.
type ProductFilter struct {
	Category   string
	Search     string
	Bestseller bool
	Page       int
	Limit      int
}

func FindProduct(products []Product, id uuid.UUID) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

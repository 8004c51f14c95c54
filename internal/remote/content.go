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

func (c *Client) ProductReviews(ctx context.Context, productID uuid.UUID, page, limit int) (domain.ReviewPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	out := domain.EmptyReviewPage()
	path := "/api/reviews/product/" + productID.String() + "?" + params.Encode()
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return domain.ReviewPage{}, err
	}
	if out.Reviews == nil {
		out.Reviews = []domain.Review{}
	}
	return out, nil
}

func (c *Client) AddReview(ctx context.Context, review domain.Review) error {
	if review.UserID == "" {
		return fmt.Errorf("userID is empty")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("rating[%d] is out of range", review.Rating)
	}

	body := struct {
		ProductID uuid.UUID `json:"productId"`
		UserID    string    `json:"userId"`
		Rating    int       `json:"rating"`
		Comment   string    `json:"comment"`
	}{
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
	}
	return c.call(ctx, http.MethodPost, "/api/reviews/add", body, nil)
}

func (c *Client) HeroImages(ctx context.Context) ([]domain.HeroImage, error) {
	var out struct {
		Data []domain.HeroImage `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/hero/", nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []domain.HeroImage{}, nil
	}
	return out.Data, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        string    `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ReviewPage struct {
	Reviews       []Review   `json:"reviews"`
	Pagination    Pagination `json:"pagination"`
	AverageRating float64    `json:"averageRating"`
}

func EmptyReviewPage() ReviewPage {
	return ReviewPage{
		Reviews:    []Review{},
		Pagination: Pagination{Page: 1, Limit: 10},
	}
}

type HeroImage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 10

	// MaxGuestWishlist caps the locally stored wishlist. Account wishlists
	// are capped by the backend.
	MaxGuestWishlist = 10
)

// LineKey identifies a cart line. An empty Format means "no format selected".
type LineKey struct {
	ProductID uuid.UUID
	Format    string
}

// Snapshot is the product data copied into a guest line at add-time.
type Snapshot struct {
	Name          string              `json:"name,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Image         ImageList           `json:"image,omitempty"`
	Category      string              `json:"category,omitempty"`
}

type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Format    string    `json:"format,omitempty"`
	Quantity  int       `json:"quantity"`

	Snapshot
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Format: l.Format}
}

func NewGuestLine(p Product, format string, quantity int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Format:    format,
		Quantity:  quantity,
		Snapshot: Snapshot{
			Name:          p.Name,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Image:         p.Image,
			Category:      p.Category,
		},
	}
}

type WishlistEntry struct {
	ProductID uuid.UUID `json:"productId"`
}

// CartCount sums line quantities.
func CartCount(lines []CartLine) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func FindLine(lines []CartLine, key LineKey) int {
	for i, l := range lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].Image != nil {
			out[i].Image = append(ImageList(nil), out[i].Image...)
		}
	}
	return out
}

func CloneEntries(entries []WishlistEntry) []WishlistEntry {
	if entries == nil {
		return nil
	}
	out := make([]WishlistEntry, len(entries))
	copy(out, entries)
	return out
}

func ValidQuantity(q int) bool {
	return q >= MinLineQuantity && q <= MaxLineQuantity
}

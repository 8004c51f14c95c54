package shop

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

var (
	_ port.CartStore     = (*LocalCartStore)(nil)
	_ port.CartStore     = (*RemoteCartStore)(nil)
	_ port.WishlistStore = (*LocalWishlistStore)(nil)
	_ port.WishlistStore = (*RemoteWishlistStore)(nil)
)

// LocalCartStore keeps a guest cart in the visitor's local storage.
type LocalCartStore struct {
	guest     port.GuestStore
	visitorID string
}

func NewLocalCartStore(guest port.GuestStore, visitorID string) *LocalCartStore {
	return &LocalCartStore{guest: guest, visitorID: visitorID}
}

func (s *LocalCartStore) Lines(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := s.guest.Cart(ctx, s.visitorID)
	if err != nil {
		return nil, fmt.Errorf("guest.Cart: %w", err)
	}
	return lines, nil
}

func (s *LocalCartStore) Add(ctx context.Context, line domain.CartLine) ([]domain.CartLine, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return nil, err
	}

	if i := domain.FindLine(lines, line.Key()); i >= 0 {
		quantity := lines[i].Quantity + line.Quantity
		if quantity > domain.MaxLineQuantity {
			return nil, fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrQuantityOutOfRange)
		}
		lines[i].Quantity = quantity
	} else {
		lines = append(lines, line)
	}

	return s.save(ctx, lines)
}

func (s *LocalCartStore) Remove(ctx context.Context, key domain.LineKey) ([]domain.CartLine, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return nil, err
	}

	lines = slices.DeleteFunc(lines, func(l domain.CartLine) bool { return l.Key() == key })
	return s.save(ctx, lines)
}

func (s *LocalCartStore) Update(ctx context.Context, key domain.LineKey, quantity int) ([]domain.CartLine, error) {
	if quantity == 0 {
		return s.Remove(ctx, key)
	}

	lines, err := s.Lines(ctx)
	if err != nil {
		return nil, err
	}

	if i := domain.FindLine(lines, key); i >= 0 {
		lines[i].Quantity = quantity
	}
	return s.save(ctx, lines)
}

func (s *LocalCartStore) Clear(ctx context.Context) error {
	if err := s.guest.Clear(ctx, s.visitorID, port.CollectionCart); err != nil {
		return fmt.Errorf("guest.Clear: %w", err)
	}
	return nil
}

func (s *LocalCartStore) save(ctx context.Context, lines []domain.CartLine) ([]domain.CartLine, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	if err := s.guest.SetCart(ctx, s.visitorID, lines); err != nil {
		return nil, fmt.Errorf("guest.SetCart: %w", err)
	}
	return lines, nil
}

// RemoteCartStore forwards mutations to the backend and re-reads the
// whole cart afterwards, the backend being the source of truth.
type RemoteCartStore struct {
	backend port.CartBackend
	userID  string
	logger  *zap.Logger
}

func NewRemoteCartStore(backend port.CartBackend, userID string, logger *zap.Logger) *RemoteCartStore {
	return &RemoteCartStore{backend: backend, userID: userID, logger: logger}
}

func (s *RemoteCartStore) Lines(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := s.backend.Cart(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("backend.Cart: %w", err)
	}
	return lines, nil
}

func (s *RemoteCartStore) Add(ctx context.Context, line domain.CartLine) ([]domain.CartLine, error) {
	if err := s.backend.AddCartLine(ctx, line.ProductID, line.Format, line.Quantity); err != nil {
		return nil, fmt.Errorf("backend.AddCartLine: %w", err)
	}
	return s.refetch(ctx), nil
}

func (s *RemoteCartStore) Remove(ctx context.Context, key domain.LineKey) ([]domain.CartLine, error) {
	if err := s.backend.RemoveCartLine(ctx, key.ProductID, key.Format); err != nil {
		return nil, fmt.Errorf("backend.RemoveCartLine: %w", err)
	}
	return s.refetch(ctx), nil
}

func (s *RemoteCartStore) Update(ctx context.Context, key domain.LineKey, quantity int) ([]domain.CartLine, error) {
	if quantity == 0 {
		return s.Remove(ctx, key)
	}
	if err := s.backend.UpdateCartLine(ctx, key.ProductID, key.Format, quantity); err != nil {
		return nil, fmt.Errorf("backend.UpdateCartLine: %w", err)
	}
	return s.refetch(ctx), nil
}

// Clear is a no-op: the backend empties the cart when an order is placed.
func (s *RemoteCartStore) Clear(context.Context) error {
	return nil
}

// refetch returns nil when the mutation went through but the re-read did
// not, leaving the optimistic mirror in place.
func (s *RemoteCartStore) refetch(ctx context.Context) []domain.CartLine {
	lines, err := s.Lines(ctx)
	if err != nil {
		s.logger.Warn("cart re-fetch after mutation failed", zap.Error(err))
		return nil
	}
	return lines
}

type LocalWishlistStore struct {
	guest     port.GuestStore
	visitorID string
}

func NewLocalWishlistStore(guest port.GuestStore, visitorID string) *LocalWishlistStore {
	return &LocalWishlistStore{guest: guest, visitorID: visitorID}
}

func (s *LocalWishlistStore) Entries(ctx context.Context) ([]domain.WishlistEntry, error) {
	ids, err := s.ids(ctx)
	if err != nil {
		return nil, err
	}
	return toEntries(ids), nil
}

func (s *LocalWishlistStore) Add(ctx context.Context, productID uuid.UUID) ([]domain.WishlistEntry, error) {
	ids, err := s.ids(ctx)
	if err != nil {
		return nil, err
	}

	if slices.Contains(ids, productID) {
		return toEntries(ids), nil
	}
	if len(ids) >= domain.MaxGuestWishlist {
		return nil, domain.ErrWishlistFull
	}

	return s.save(ctx, append(ids, productID))
}

func (s *LocalWishlistStore) Remove(ctx context.Context, productID uuid.UUID) ([]domain.WishlistEntry, error) {
	ids, err := s.ids(ctx)
	if err != nil {
		return nil, err
	}

	ids = slices.DeleteFunc(ids, func(id uuid.UUID) bool { return id == productID })
	return s.save(ctx, ids)
}

func (s *LocalWishlistStore) Clear(ctx context.Context) error {
	if err := s.guest.Clear(ctx, s.visitorID, port.CollectionWishlist); err != nil {
		return fmt.Errorf("guest.Clear: %w", err)
	}
	return nil
}

func (s *LocalWishlistStore) ids(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.guest.Wishlist(ctx, s.visitorID)
	if err != nil {
		return nil, fmt.Errorf("guest.Wishlist: %w", err)
	}
	return ids, nil
}

func (s *LocalWishlistStore) save(ctx context.Context, ids []uuid.UUID) ([]domain.WishlistEntry, error) {
	if err := s.guest.SetWishlist(ctx, s.visitorID, ids); err != nil {
		return nil, fmt.Errorf("guest.SetWishlist: %w", err)
	}
	return toEntries(ids), nil
}

type RemoteWishlistStore struct {
	backend port.WishlistBackend
	userID  string
	logger  *zap.Logger
}

func NewRemoteWishlistStore(backend port.WishlistBackend, userID string, logger *zap.Logger) *RemoteWishlistStore {
	return &RemoteWishlistStore{backend: backend, userID: userID, logger: logger}
}

func (s *RemoteWishlistStore) Entries(ctx context.Context) ([]domain.WishlistEntry, error) {
	entries, err := s.backend.Wishlist(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("backend.Wishlist: %w", err)
	}
	return entries, nil
}

func (s *RemoteWishlistStore) Add(ctx context.Context, productID uuid.UUID) ([]domain.WishlistEntry, error) {
	if err := s.backend.AddWishlistEntry(ctx, productID); err != nil {
		return nil, fmt.Errorf("backend.AddWishlistEntry: %w", err)
	}
	return s.refetch(ctx), nil
}

func (s *RemoteWishlistStore) Remove(ctx context.Context, productID uuid.UUID) ([]domain.WishlistEntry, error) {
	if err := s.backend.RemoveWishlistEntry(ctx, productID); err != nil {
		return nil, fmt.Errorf("backend.RemoveWishlistEntry: %w", err)
	}
	return s.refetch(ctx), nil
}

func (s *RemoteWishlistStore) Clear(context.Context) error {
	return nil
}

func (s *RemoteWishlistStore) refetch(ctx context.Context) []domain.WishlistEntry {
	entries, err := s.Entries(ctx)
	if err != nil {
		s.logger.Warn("wishlist re-fetch after mutation failed", zap.Error(err))
		return nil
	}
	return entries
}

func toEntries(ids []uuid.UUID) []domain.WishlistEntry {
	entries := make([]domain.WishlistEntry, len(ids))
	for i, id := range ids {
		entries[i] = domain.WishlistEntry{ProductID: id}
	}
	return entries
}

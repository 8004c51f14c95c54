package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

// SchemaVersion is written into every stored document. Version 0 is the
// legacy bare-array layout.
const SchemaVersion = 1

type document struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

type guestStore struct {
	kv     port.KVStore
	logger *zap.Logger
}

func NewGuestStore(kv port.KVStore, logger *zap.Logger) port.GuestStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &guestStore{
		kv:     kv,
		logger: logger,
	}
}

func (s *guestStore) Cart(ctx context.Context, visitorID string) ([]domain.CartLine, error) {
	lines, err := load[domain.CartLine](ctx, s, visitorID, port.CollectionCart)
	if err != nil {
		return nil, err
	}

	// lines with a non-positive quantity are never kept
	kept := lines[:0]
	for _, l := range lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	return kept, nil
}

func (s *guestStore) SetCart(ctx context.Context, visitorID string, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return s.save(ctx, visitorID, port.CollectionCart, lines)
}

func (s *guestStore) Wishlist(ctx context.Context, visitorID string) ([]uuid.UUID, error) {
	return load[uuid.UUID](ctx, s, visitorID, port.CollectionWishlist)
}

func (s *guestStore) SetWishlist(ctx context.Context, visitorID string, ids []uuid.UUID) error {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return s.save(ctx, visitorID, port.CollectionWishlist, ids)
}

func (s *guestStore) Clear(ctx context.Context, visitorID string, collections ...port.Collection) error {
	if visitorID == "" {
		return fmt.Errorf("visitorID is empty")
	}
	if len(collections) == 0 {
		collections = []port.Collection{port.CollectionCart, port.CollectionWishlist}
	}

	keys := make([]string, len(collections))
	for i, c := range collections {
		keys[i] = storageKey(visitorID, c)
	}

	if err := s.kv.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("kv.Delete: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// load decodes the stored collection. Missing, corrupt or future-version
// data reads as empty and is not an error.
func load[T any](ctx context.Context, s *guestStore, visitorID string, c port.Collection) ([]T, error) {
	if visitorID == "" {
		return nil, fmt.Errorf("visitorID is empty")
	}

	raw, err := s.kv.Get(ctx, storageKey(visitorID, c))
	if err != nil {
		return nil, fmt.Errorf("kv.Get: %w: %w", domain.ErrStorageUnavailable, err)
	}

	items, ok := s.unwrap(raw, c)
	if !ok {
		return nil, nil
	}

	var out []T
	if err := json.Unmarshal(items, &out); err != nil {
		s.logger.Warn("discarding malformed local collection",
			zap.String("collection", string(c)),
			zap.Error(err))
		return nil, nil
	}
	return out, nil
}

func (s *guestStore) unwrap(raw []byte, c port.Collection) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	if raw[0] == '[' {
		return raw, true
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("discarding malformed local collection",
			zap.String("collection", string(c)),
			zap.Error(err))
		return nil, false
	}

	if doc.Version > SchemaVersion {
		s.logger.Warn("discarding local collection with unknown schema version",
			zap.String("collection", string(c)),
			zap.Int("version", doc.Version))
		return nil, false
	}

	if len(doc.Items) == 0 {
		return nil, false
	}
	return doc.Items, true
}

func (s *guestStore) save(ctx context.Context, visitorID string, c port.Collection, items any) error {
	if visitorID == "" {
		return fmt.Errorf("visitorID is empty")
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	raw, err := json.Marshal(document{Version: SchemaVersion, Items: encoded})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.kv.Set(ctx, storageKey(visitorID, c), raw); err != nil {
		return fmt.Errorf("kv.Set: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func storageKey(visitorID string, c port.Collection) string {
	return visitorID + ":" + string(c)
}

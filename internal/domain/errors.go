package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrWishlistFull        = errors.New("wishlist is full")
	ErrRemoteRequestFailed = errors.New("remote request failed")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrQuantityOutOfRange  = errors.New("quantity out of range")
	ErrSessionExpired      = errors.New("session expired")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidInput        = errors.New("invalid input")

	// ErrProofUploadFailed means the order exists but its payment proof
	// did not reach the backend.
	ErrProofUploadFailed = errors.New("payment proof upload failed")
)

// ValidationError lists rejected fields by name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

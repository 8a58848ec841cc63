// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"
	"errors"

	"concierge/models"
)

var (
	// ErrUnavailable means the slot or SKU has no remaining capacity.
	ErrUnavailable = errors.New("no remaining capacity")
	// ErrPriceMismatch means the customer-confirmed price does not match the
	// current catalog price.
	ErrPriceMismatch = errors.New("agreed price does not match catalog price")
	// ErrNotFound means the referenced catalog entry does not exist.
	ErrNotFound = errors.New("catalog entry not found")
)

// CatalogRepository is the shared availability store. Reserve is atomic:
// evaluating remaining capacity and decrementing it is a single step, so two
// concurrent reservations against the last unit yield exactly one success.
type CatalogRepository interface {
	FindAvailable(ctx context.Context, category string, cons models.Constraints) ([]models.Offer, error)
	Reserve(ctx context.Context, ref models.SlotRef, agreedPrice float64) error
	Release(ctx context.Context, ref models.SlotRef) error
	ItemByID(ctx context.Context, itemID string) (*models.CatalogItem, error)
	CurrentPrice(ctx context.Context, ref models.SlotRef) (float64, error)
}

// Seeder is implemented by backends that can load the starter catalog into an
// empty store.
type Seeder interface {
	EnsureSeed(ctx context.Context, items []models.CatalogItem, slots []models.AvailabilitySlot) error
}

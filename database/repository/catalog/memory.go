// File: database/repository/catalog/memory.go
package catalogRepo

import (
	"context"
	"sync"

	"concierge/models"
)

// memoryCatalogRepo is the self-contained backend used in development mode
// and tests. One lock guards both maps, so the capacity check and decrement
// inside Reserve are a single indivisible step.
type memoryCatalogRepo struct {
	mu    sync.RWMutex
	items map[string]*models.CatalogItem
	slots map[string]*models.AvailabilitySlot
}

// NewMemoryCatalogRepo constructs an in-memory CatalogRepository holding the
// given items and slots. Slot prices are denormalized from their items when
// left unset.
func NewMemoryCatalogRepo(items []models.CatalogItem, slots []models.AvailabilitySlot) CatalogRepository {
	repo := &memoryCatalogRepo{
		items: make(map[string]*models.CatalogItem, len(items)),
		slots: make(map[string]*models.AvailabilitySlot, len(slots)),
	}
	for i := range items {
		item := items[i]
		repo.items[item.ID] = &item
	}
	for i := range slots {
		slot := slots[i]
		if slot.Price == 0 {
			if item, ok := repo.items[slot.ItemID]; ok {
				slot.Price = item.Price
			}
		}
		repo.slots[slot.ID] = &slot
	}
	return repo
}

func (r *memoryCatalogRepo) FindAvailable(ctx context.Context, category string, cons models.Constraints) ([]models.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var offers []models.Offer
	if category == models.CategoryShoe {
		for _, item := range r.items {
			if item.Category != category || item.Stock <= 0 {
				continue
			}
			if !matchesItem(*item, cons) {
				continue
			}
			offers = append(offers, models.Offer{
				Item:      *item,
				Ref:       models.SlotRef{ItemID: item.ID},
				Remaining: item.Stock,
				Price:     item.Price,
			})
		}
	} else {
		for _, slot := range r.slots {
			item, ok := r.items[slot.ItemID]
			if !ok || item.Category != category {
				continue
			}
			if slot.Remaining() <= 0 {
				continue
			}
			if cons.Date != "" && slot.Date != cons.Date {
				continue
			}
			if !matchesItem(*item, cons) {
				continue
			}
			s := *slot
			offers = append(offers, models.Offer{
				Item:      *item,
				Slot:      &s,
				Ref:       models.SlotRef{ItemID: item.ID, SlotID: slot.ID, Date: slot.Date},
				Remaining: slot.Remaining(),
				Price:     slot.Price,
			})
		}
	}

	sortOffers(offers, cons)
	return offers, nil
}

func (r *memoryCatalogRepo) Reserve(ctx context.Context, ref models.SlotRef, agreedPrice float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref.Dated() {
		slot, ok := r.slots[ref.SlotID]
		if !ok || (ref.Date != "" && slot.Date != ref.Date) {
			return ErrNotFound
		}
		if slot.Price != agreedPrice {
			return ErrPriceMismatch
		}
		if slot.Remaining() <= 0 {
			return ErrUnavailable
		}
		slot.BookedUnits++
		slot.Version++
		return nil
	}

	item, ok := r.items[ref.ItemID]
	if !ok {
		return ErrNotFound
	}
	if item.Price != agreedPrice {
		return ErrPriceMismatch
	}
	if item.Stock <= 0 {
		return ErrUnavailable
	}
	item.Stock--
	return nil
}

func (r *memoryCatalogRepo) Release(ctx context.Context, ref models.SlotRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ref.Dated() {
		slot, ok := r.slots[ref.SlotID]
		if !ok {
			return ErrNotFound
		}
		if slot.BookedUnits > 0 {
			slot.BookedUnits--
			slot.Version++
		}
		return nil
	}

	item, ok := r.items[ref.ItemID]
	if !ok {
		return ErrNotFound
	}
	item.Stock++
	return nil
}

func (r *memoryCatalogRepo) ItemByID(ctx context.Context, itemID string) (*models.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memoryCatalogRepo) CurrentPrice(ctx context.Context, ref models.SlotRef) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ref.Dated() {
		slot, ok := r.slots[ref.SlotID]
		if !ok {
			return 0, ErrNotFound
		}
		return slot.Price, nil
	}
	item, ok := r.items[ref.ItemID]
	if !ok {
		return 0, ErrNotFound
	}
	return item.Price, nil
}

// File: database/repository/catalog/catalog_mongo.go
package catalogRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"concierge/database"
	"concierge/models"
)

type mongoCatalogRepo struct {
	items *mongo.Collection
	slots *mongo.Collection
}

// NewMongoCatalogRepo constructs a new MongoDB CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.MongoClient.Database("concierge")
	return &mongoCatalogRepo{
		items: db.Collection("catalog_items"),
		slots: db.Collection("availability_slots"),
	}
}

func (r *mongoCatalogRepo) FindAvailable(ctx context.Context, category string, cons models.Constraints) ([]models.Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	itemFilter := bson.M{"category": category}
	if cons.Size != "" {
		itemFilter["size"] = cons.Size
	}
	if cons.Activity != "" {
		itemFilter["activity"] = cons.Activity
	}

	cursor, err := r.items.Find(ctx, itemFilter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CatalogItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	var offers []models.Offer
	if category == models.CategoryShoe {
		for _, item := range items {
			if item.Stock <= 0 || !matchesItem(item, cons) {
				continue
			}
			offers = append(offers, models.Offer{
				Item:      item,
				Ref:       models.SlotRef{ItemID: item.ID},
				Remaining: item.Stock,
				Price:     item.Price,
			})
		}
		sortOffers(offers, cons)
		return offers, nil
	}

	byID := make(map[string]models.CatalogItem, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if !matchesItem(item, cons) {
			continue
		}
		byID[item.ID] = item
		ids = append(ids, item.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	slotFilter := bson.M{
		"itemId": bson.M{"$in": ids},
		"$expr":  bson.M{"$lt": bson.A{"$bookedUnits", "$capacity"}},
	}
	if cons.Date != "" {
		slotFilter["date"] = cons.Date
	}

	slotCursor, err := r.slots.Find(ctx, slotFilter)
	if err != nil {
		return nil, err
	}
	defer slotCursor.Close(ctx)

	var slots []models.AvailabilitySlot
	if err := slotCursor.All(ctx, &slots); err != nil {
		return nil, err
	}

	for i := range slots {
		slot := slots[i]
		item := byID[slot.ItemID]
		offers = append(offers, models.Offer{
			Item:      item,
			Slot:      &slots[i],
			Ref:       models.SlotRef{ItemID: item.ID, SlotID: slot.ID, Date: slot.Date},
			Remaining: slot.Remaining(),
			Price:     slot.Price,
		})
	}
	sortOffers(offers, cons)
	return offers, nil
}

// Reserve checks the agreed price, then decrements capacity with a filtered
// conditional update so the check and the commit are one document operation.
func (r *mongoCatalogRepo) Reserve(ctx context.Context, ref models.SlotRef, agreedPrice float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if ref.Dated() {
		var slot models.AvailabilitySlot
		err := r.slots.FindOne(ctx, bson.M{"id": ref.SlotID, "date": ref.Date}).Decode(&slot)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if slot.Price != agreedPrice {
			return ErrPriceMismatch
		}

		res, err := r.slots.UpdateOne(ctx,
			bson.M{
				"id":    ref.SlotID,
				"date":  ref.Date,
				"$expr": bson.M{"$lt": bson.A{"$bookedUnits", "$capacity"}},
			},
			bson.M{"$inc": bson.M{"bookedUnits": 1, "version": 1}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrUnavailable
		}
		return nil
	}

	var item models.CatalogItem
	err := r.items.FindOne(ctx, bson.M{"id": ref.ItemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if item.Price != agreedPrice {
		return ErrPriceMismatch
	}

	res, err := r.items.UpdateOne(ctx,
		bson.M{"id": ref.ItemID, "stock": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"stock": -1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUnavailable
	}
	return nil
}

func (r *mongoCatalogRepo) Release(ctx context.Context, ref models.SlotRef) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if ref.Dated() {
		res, err := r.slots.UpdateOne(ctx,
			bson.M{"id": ref.SlotID, "date": ref.Date, "bookedUnits": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"bookedUnits": -1, "version": 1}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Distinguish a missing slot from one with nothing booked.
			count, err := r.slots.CountDocuments(ctx, bson.M{"id": ref.SlotID, "date": ref.Date})
			if err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
		}
		return nil
	}

	res, err := r.items.UpdateOne(ctx,
		bson.M{"id": ref.ItemID},
		bson.M{"$inc": bson.M{"stock": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCatalogRepo) ItemByID(ctx context.Context, itemID string) (*models.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var item models.CatalogItem
	err := r.items.FindOne(ctx, bson.M{"id": itemID}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *mongoCatalogRepo) CurrentPrice(ctx context.Context, ref models.SlotRef) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if ref.Dated() {
		var slot models.AvailabilitySlot
		err := r.slots.FindOne(ctx, bson.M{"id": ref.SlotID, "date": ref.Date}).Decode(&slot)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		return slot.Price, nil
	}

	item, err := r.ItemByID(ctx, ref.ItemID)
	if err != nil {
		return 0, err
	}
	return item.Price, nil
}

// EnsureSeed inserts the starter catalog when both collections are empty.
func (r *mongoCatalogRepo) EnsureSeed(ctx context.Context, items []models.CatalogItem, slots []models.AvailabilitySlot) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count, err := r.items.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	itemDocs := make([]interface{}, len(items))
	for i, item := range items {
		itemDocs[i] = item
	}
	if _, err := r.items.InsertMany(ctx, itemDocs); err != nil {
		return err
	}

	if len(slots) == 0 {
		return nil
	}
	slotDocs := make([]interface{}, len(slots))
	for i, slot := range slots {
		slotDocs[i] = slot
	}
	_, err = r.slots.InsertMany(ctx, slotDocs)
	return err
}

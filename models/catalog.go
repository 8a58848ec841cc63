package models

// Catalog categories.
const (
	CategoryRoom = "room"
	CategorySpa  = "spa"
	CategoryGolf = "golf"
	CategoryShoe = "shoe"
)

// CatalogItem is one bookable or sellable entry in the store catalog.
// Time-bound categories (room/spa/golf) carry their capacity on
// AvailabilitySlot documents; counted SKUs (shoe) carry it on Stock.
type CatalogItem struct {
	ID          string  `bson:"id" json:"id"`
	Category    string  `bson:"category" json:"category"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Size        string  `bson:"size,omitempty" json:"size,omitempty"`
	Activity    string  `bson:"activity,omitempty" json:"activity,omitempty"`
	Stock       int     `bson:"stock,omitempty" json:"stock,omitempty"`
}

// AvailabilitySlot is a dated capacity window for a time-bound catalog item.
// Price is denormalized from the owning item so a reservation can be priced
// and capacity-checked against a single document.
type AvailabilitySlot struct {
	ID          string  `bson:"id" json:"id"`
	ItemID      string  `bson:"itemId" json:"itemId"`
	Date        string  `bson:"date" json:"date"` // e.g. "2024-02-25"
	Start       int     `bson:"start" json:"start"`
	End         int     `bson:"end" json:"end"` // minutes from midnight
	Capacity    int     `bson:"capacity" json:"capacity"`
	BookedUnits int     `bson:"bookedUnits,omitempty" json:"bookedUnits,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Version     int     `bson:"version" json:"version"`
}

// Remaining reports the slot's remaining capacity.
func (s AvailabilitySlot) Remaining() int {
	return s.Capacity - s.BookedUnits
}

// SlotRef addresses either a dated availability slot (SlotID+Date set) or a
// counted SKU (ItemID only).
type SlotRef struct {
	ItemID string `bson:"itemId" json:"itemId"`
	SlotID string `bson:"slotId,omitempty" json:"slotId,omitempty"`
	Date   string `bson:"date,omitempty" json:"date,omitempty"`
}

// Dated reports whether the ref addresses a dated slot rather than a SKU.
func (r SlotRef) Dated() bool {
	return r.SlotID != ""
}

// Constraints narrow a catalog availability search. Zero values mean
// "unconstrained".
type Constraints struct {
	Date     string  `json:"date,omitempty"`
	Size     string  `json:"size,omitempty"`
	Activity string  `json:"activity,omitempty"`
	Keyword  string  `json:"keyword,omitempty"`
	MaxPrice float64 `json:"maxPrice,omitempty"`
}

// Offer is one availability result presented to the customer.
type Offer struct {
	Item      CatalogItem       `json:"item"`
	Slot      *AvailabilitySlot `json:"slot,omitempty"`
	Ref       SlotRef           `json:"ref"`
	Remaining int               `json:"remaining"`
	Price     float64           `json:"price"`
}

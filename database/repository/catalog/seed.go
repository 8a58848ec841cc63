// File: database/repository/catalog/seed.go
package catalogRepo

import (
	"fmt"
	"time"

	"concierge/models"
)

// SeedItems returns the starter catalog: resort inventory (rooms, spa
// treatments, tee times) plus the retail shoe stock.
func SeedItems() []models.CatalogItem {
	return []models.CatalogItem{
		// Rooms.
		{ID: "room-109", Category: models.CategoryRoom, Name: "Deluxe Room 109", Description: "Deluxe king room with ocean view", Price: 150},
		{ID: "room-117", Category: models.CategoryRoom, Name: "Standard Queen 117", Description: "Standard queen room, garden side", Price: 120},
		{ID: "room-204", Category: models.CategoryRoom, Name: "Garden Suite 204", Description: "Two-room suite with private terrace", Price: 300},

		// Spa treatments.
		{ID: "spa-hotstone", Category: models.CategorySpa, Name: "Hot Stone Massage", Description: "90-minute hot stone massage", Price: 90},
		{ID: "spa-swedish", Category: models.CategorySpa, Name: "Swedish Massage", Description: "60-minute Swedish massage", Price: 75},
		{ID: "spa-saltscrub", Category: models.CategorySpa, Name: "Sea Salt Scrub", Description: "Full-body sea salt exfoliation", Price: 110},

		// Golf.
		{ID: "golf-championship", Category: models.CategoryGolf, Name: "Championship Tee Time", Description: "18 holes on the championship course", Price: 80},
		{ID: "golf-twilight", Category: models.CategoryGolf, Name: "Twilight Nine", Description: "9 holes after 4pm", Price: 45},

		// Shoe SKUs.
		{ID: "shoe-srp-10", Category: models.CategoryShoe, Name: "Speed Runner Pro", Activity: "running", Size: "10", Price: 129.99, Stock: 5},
		{ID: "shoe-srp-9", Category: models.CategoryShoe, Name: "Speed Runner Pro", Activity: "running", Size: "9", Price: 129.99, Stock: 3},
		{ID: "shoe-srp-11", Category: models.CategoryShoe, Name: "Speed Runner Pro", Activity: "running", Size: "11", Price: 129.99, Stock: 2},
		{ID: "shoe-tbx-10", Category: models.CategoryShoe, Name: "Trail Blazer X", Activity: "hiking", Size: "10", Price: 159.99, Stock: 4},
		{ID: "shoe-tbx-9", Category: models.CategoryShoe, Name: "Trail Blazer X", Activity: "hiking", Size: "9", Price: 159.99, Stock: 3},
		{ID: "shoe-cw-10", Category: models.CategoryShoe, Name: "Comfort Walker", Activity: "walking", Size: "10", Price: 89.99, Stock: 6},
		{ID: "shoe-cw-11", Category: models.CategoryShoe, Name: "Comfort Walker", Activity: "walking", Size: "11", Price: 89.99, Stock: 4},
		{ID: "shoe-me-10", Category: models.CategoryShoe, Name: "Marathon Elite", Activity: "running", Size: "10", Price: 149.99, Stock: 3},
		{ID: "shoe-mex-10", Category: models.CategoryShoe, Name: "Mountain Explorer", Activity: "hiking", Size: "10", Price: 179.99, Stock: 2},
		{ID: "shoe-dwp-10", Category: models.CategoryShoe, Name: "Daily Walker Plus", Activity: "walking", Size: "10", Price: 99.99, Stock: 5},
	}
}

// SeedSlots builds availability slots for the time-bound seed items covering
// `days` days starting at `from`. Slot IDs are deterministic so reseeding is
// stable.
func SeedSlots(from time.Time, days int) []models.AvailabilitySlot {
	var slots []models.AvailabilitySlot
	add := func(itemID, date string, start, end, capacity int, price float64) {
		slots = append(slots, models.AvailabilitySlot{
			ID:       fmt.Sprintf("%s-%s-%d", itemID, date, start),
			ItemID:   itemID,
			Date:     date,
			Start:    start,
			End:      end,
			Capacity: capacity,
			Price:    price,
		})
	}

	for d := 0; d < days; d++ {
		date := from.AddDate(0, 0, d).Format("2006-01-02")

		// Rooms: one night per room per date, check-in 3pm.
		add("room-109", date, 900, 1440, 1, 150)
		add("room-117", date, 900, 1440, 1, 120)
		add("room-204", date, 900, 1440, 1, 300)

		// Spa: three appointment windows per treatment per day.
		for _, start := range []int{600, 780, 960} {
			add("spa-hotstone", date, start, start+90, 1, 90)
			add("spa-swedish", date, start, start+60, 2, 75)
			add("spa-saltscrub", date, start, start+60, 1, 110)
		}

		// Golf: morning and midday tee times, foursomes.
		for _, start := range []int{480, 600, 840} {
			add("golf-championship", date, start, start+240, 4, 80)
		}
		add("golf-twilight", date, 960, 1140, 4, 45)
	}
	return slots
}

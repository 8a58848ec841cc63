// File: database/repository/catalog/order.go
package catalogRepo

import (
	"sort"
	"strings"

	"concierge/models"
)

// matchesItem checks an item against every specified constraint. A zero-value
// constraint field is unconstrained.
func matchesItem(item models.CatalogItem, cons models.Constraints) bool {
	if cons.Size != "" && item.Size != cons.Size {
		return false
	}
	if cons.Activity != "" && !strings.EqualFold(item.Activity, cons.Activity) {
		return false
	}
	if cons.MaxPrice > 0 && item.Price > cons.MaxPrice {
		return false
	}
	if cons.Keyword != "" {
		kw := strings.ToLower(cons.Keyword)
		if !strings.Contains(strings.ToLower(item.Name), kw) &&
			!strings.Contains(strings.ToLower(item.Description), kw) {
			return false
		}
	}
	return true
}

// sortOffers orders results by relevance: exact keyword matches first, then
// price ascending. Ties break on item name and ref so identical queries
// against unchanged state return identical orderings.
func sortOffers(offers []models.Offer, cons models.Constraints) {
	kw := strings.ToLower(cons.Keyword)
	exact := func(o models.Offer) bool {
		return kw != "" && strings.EqualFold(o.Item.Name, cons.Keyword)
	}
	sort.SliceStable(offers, func(i, j int) bool {
		ei, ej := exact(offers[i]), exact(offers[j])
		if ei != ej {
			return ei
		}
		if offers[i].Price != offers[j].Price {
			return offers[i].Price < offers[j].Price
		}
		if offers[i].Item.Name != offers[j].Item.Name {
			return offers[i].Item.Name < offers[j].Item.Name
		}
		if offers[i].Ref.SlotID != offers[j].Ref.SlotID {
			return offers[i].Ref.SlotID < offers[j].Ref.SlotID
		}
		return offers[i].Ref.ItemID < offers[j].Ref.ItemID
	})
}

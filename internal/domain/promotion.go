package domain

import "time"

// PromotionRecord is one retailer's advertised price for a product,
// as scraped from a flyer. Records are immutable once fetched.
type PromotionRecord struct {
	ProductName  string    `json:"productName"`
	StoreName    string    `json:"storeName"`
	RegularPrice float64   `json:"regularPrice,omitempty"` // 0 when the flyer omits it
	SalePrice    float64   `json:"salePrice"`
	ValidFrom    time.Time `json:"validFrom"`
	ValidTo      time.Time `json:"validTo"`
	SourceID     string    `json:"sourceId,omitempty"`
	Category     string    `json:"category,omitempty"`
}

// IsActive reports whether the promotion is still valid on the given day.
func (p PromotionRecord) IsActive(day time.Time) bool {
	return !p.ValidTo.Before(day.Truncate(24 * time.Hour))
}

// KnownStores is the fixed retailer allow-list. Declaration order doubles
// as the tie-break priority when two stores end up with equal totals.
var KnownStores = []string{"IGA", "Metro", "Super C", "Maxi", "Provigo", "Walmart"}

// IsKnownStore checks membership in the retailer allow-list.
func IsKnownStore(name string) bool {
	for _, s := range KnownStores {
		if s == name {
			return true
		}
	}
	return false
}

// StorePriority returns the tie-break rank of a store (lower wins).
// Unknown stores sort after all known ones.
func StorePriority(name string) int {
	for i, s := range KnownStores {
		if s == name {
			return i
		}
	}
	return len(KnownStores)
}

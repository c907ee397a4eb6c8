package flyers

import (
	"strconv"
	"time"

	"github.com/cartsaver/backend/internal/domain"
)

// searchResponse is the wire shape of a flyer-search API response
type searchResponse struct {
	Items []flyerItem `json:"items"`
	Total int         `json:"total"`
}

// flyerItem is one advertised item as the API returns it. Prices come back
// as strings because some flyers carry text like "2/5.00".
type flyerItem struct {
	Name          string `json:"name"`
	Merchant      string `json:"merchant"`
	CurrentPrice  string `json:"current_price"`
	OriginalPrice string `json:"original_price,omitempty"`
	ValidFrom     string `json:"valid_from"`
	ValidTo       string `json:"valid_to"`
	FlyerID       int64  `json:"flyer_id,omitempty"`
	Category      string `json:"category,omitempty"`
}

const wireDateLayout = "2006-01-02"

// mapItems converts wire items to domain promotion records, dropping
// anything expired, priced at zero, unparseable, or from a retailer
// outside the allow-list. Output is capped at limit.
func mapItems(items []flyerItem, today time.Time, limit int) []domain.PromotionRecord {
	records := make([]domain.PromotionRecord, 0, len(items))
	for _, item := range items {
		record, ok := mapItem(item)
		if !ok {
			continue
		}
		if !record.IsActive(today) {
			continue
		}
		records = append(records, record)
		if len(records) >= limit {
			break
		}
	}
	return records
}

// mapItem converts a single wire item, reporting whether it is usable.
func mapItem(item flyerItem) (domain.PromotionRecord, bool) {
	if item.Name == "" || !domain.IsKnownStore(item.Merchant) {
		return domain.PromotionRecord{}, false
	}

	salePrice, err := strconv.ParseFloat(item.CurrentPrice, 64)
	if err != nil || salePrice <= 0 {
		return domain.PromotionRecord{}, false
	}

	validFrom, err := time.Parse(wireDateLayout, item.ValidFrom)
	if err != nil {
		return domain.PromotionRecord{}, false
	}
	validTo, err := time.Parse(wireDateLayout, item.ValidTo)
	if err != nil {
		return domain.PromotionRecord{}, false
	}

	record := domain.PromotionRecord{
		ProductName: item.Name,
		StoreName:   item.Merchant,
		SalePrice:   salePrice,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		Category:    item.Category,
	}

	// Regular price is optional on the wire; keep it only when it parses
	// and actually exceeds the sale price
	if regular, err := strconv.ParseFloat(item.OriginalPrice, 64); err == nil && regular > salePrice {
		record.RegularPrice = regular
	}

	if item.FlyerID > 0 {
		record.SourceID = strconv.FormatInt(item.FlyerID, 10)
	}

	return record, true
}

package usecase

import (
	"log"
	"math"
	"sort"

	"github.com/cartsaver/backend/internal/domain"
)

// PriceAggregator reduces per-product match results into store totals,
// savings, a match-quality histogram, and the missing-product list.
// Money is carried in integer cents so totals never drift past the cent
// boundary; each price is rounded half-up to the cent before summation.
type PriceAggregator struct {
	enableDebugLogging bool
}

// NewPriceAggregator creates a new price aggregator
func NewPriceAggregator(enableDebugLogging bool) *PriceAggregator {
	return &PriceAggregator{enableDebugLogging: enableDebugLogging}
}

// Aggregate produces the basket-level comparison summary. Store totals only
// include matches at or above the qualifying similarity; a product with no
// qualifying match in any store lands in MissingProducts instead.
func (a *PriceAggregator) Aggregate(perProduct map[string]*domain.ProductMatchResult) *domain.ComparisonSummary {
	summary := &domain.ComparisonSummary{
		StoreTotals:     make(map[string]float64),
		ProductsFound:   make(map[string]int),
		MissingProducts: []string{},
	}

	queries := make([]string, 0, len(perProduct))
	for q := range perProduct {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	totalsCents := make(map[string]int64)
	var confidenceSum float64
	var confidenceCount int

	for _, query := range queries {
		result := perProduct[query]
		product := a.reduceProduct(query, result)
		summary.Products = append(summary.Products, product)

		switch product.Quality {
		case domain.QualityExcellent:
			summary.MatchQuality.Excellent++
		case domain.QualityGood:
			summary.MatchQuality.Good++
		case domain.QualityFair:
			summary.MatchQuality.Fair++
		default:
			summary.MatchQuality.Poor++
		}

		if len(product.StorePrices) == 0 {
			summary.MissingProducts = append(summary.MissingProducts, query)
			continue
		}

		confidenceSum += maxSimilarity(result)
		confidenceCount++

		for store, price := range product.StorePrices {
			totalsCents[store] += toCents(price)
			summary.ProductsFound[store]++
		}
	}

	for store, cents := range totalsCents {
		summary.StoreTotals[store] = fromCents(cents)
	}

	a.reduceBasket(summary, totalsCents)

	if confidenceCount > 0 {
		summary.AverageConfidence = confidenceSum / float64(confidenceCount)
	}

	if a.enableDebugLogging {
		log.Printf("[AGGREGATE] products=%d missing=%d best=%q savings=%.2f",
			len(queries), len(summary.MissingProducts), summary.BestStore, summary.TotalSavings)
	}

	return summary
}

// reduceProduct extracts each store's best qualifying price for one query
// and grades the product by its best similarity anywhere.
func (a *PriceAggregator) reduceProduct(query string, result *domain.ProductMatchResult) domain.ProductComparison {
	product := domain.ProductComparison{
		Query:       query,
		StorePrices: make(map[string]float64),
		Quality:     domain.QualityPoor,
	}

	if result != nil {
		// Matches are ranked best-first within each store, so the first
		// qualifying candidate per store is that store's price.
		claimed := make(map[string]bool)
		for _, m := range result.Matches {
			if claimed[m.Store] || m.Similarity < domain.QualifyingSimilarity {
				continue
			}
			claimed[m.Store] = true
			product.StorePrices[m.Store] = fromCents(toCents(m.Price))
		}
		product.Quality = domain.QualityFor(maxSimilarity(result))
	}

	minCents, maxCents := int64(math.MaxInt64), int64(0)
	for _, store := range storesByPriority(product.StorePrices) {
		cents := toCents(product.StorePrices[store])
		if cents < minCents {
			minCents = cents
			product.BestStore = store
			product.BestPrice = fromCents(cents)
		}
		if cents > maxCents {
			maxCents = cents
		}
	}
	if len(product.StorePrices) > 0 {
		product.Savings = fromCents(maxCents - minCents)
	}

	return product
}

// reduceBasket fills the basket-level totals-derived fields: best store,
// total savings, and savings percentage.
func (a *PriceAggregator) reduceBasket(summary *domain.ComparisonSummary, totalsCents map[string]int64) {
	if len(totalsCents) == 0 {
		return
	}

	minCents, maxCents := int64(math.MaxInt64), int64(0)
	for _, store := range storesByPriorityCents(totalsCents) {
		cents := totalsCents[store]
		if cents < minCents {
			minCents = cents
			summary.BestStore = store
		}
		if cents > maxCents {
			maxCents = cents
		}
	}

	summary.TotalSavings = fromCents(maxCents - minCents)
	if maxCents > 0 {
		summary.SavingsPercentage = float64(maxCents-minCents) / float64(maxCents) * 100
	}
}

// maxSimilarity returns the best similarity in the result, 0 when empty.
func maxSimilarity(result *domain.ProductMatchResult) float64 {
	if result == nil {
		return 0
	}
	best := 0.0
	for _, m := range result.Matches {
		if m.Similarity > best {
			best = m.Similarity
		}
	}
	return best
}

// storesByPriority orders the map keys by allow-list priority so min/max
// scans break ties deterministically.
func storesByPriority(prices map[string]float64) []string {
	stores := make([]string, 0, len(prices))
	for s := range prices {
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool {
		return domain.StorePriority(stores[i]) < domain.StorePriority(stores[j])
	})
	return stores
}

func storesByPriorityCents(totals map[string]int64) []string {
	stores := make([]string, 0, len(totals))
	for s := range totals {
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool {
		return domain.StorePriority(stores[i]) < domain.StorePriority(stores[j])
	})
	return stores
}

// toCents rounds a dollar price half-up at the cent boundary.
func toCents(price float64) int64 {
	return int64(math.Floor(price*100 + 0.5))
}

// fromCents converts integer cents back to dollars.
func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

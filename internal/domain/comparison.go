package domain

// MatchQuality grades a product's overall match across stores by the
// maximum similarity observed.
type MatchQuality string

const (
	QualityExcellent MatchQuality = "excellent"
	QualityGood      MatchQuality = "good"
	QualityFair      MatchQuality = "fair"
	QualityPoor      MatchQuality = "poor"
)

// QualityFor grades a product by its best similarity across stores.
func QualityFor(maxSimilarity float64) MatchQuality {
	switch {
	case maxSimilarity >= 0.7:
		return QualityExcellent
	case maxSimilarity >= 0.5:
		return QualityGood
	case maxSimilarity >= 0.3:
		return QualityFair
	default:
		return QualityPoor
	}
}

// QualityHistogram counts products per match-quality grade.
type QualityHistogram struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

// ProductComparison is the per-product slice of a comparison: the best
// qualifying price per store and the spread across them.
type ProductComparison struct {
	Query       string             `json:"query"`
	StorePrices map[string]float64 `json:"storePrices"`
	BestStore   string             `json:"bestStore,omitempty"`
	BestPrice   float64            `json:"bestPrice"`
	Savings     float64            `json:"savings"` // max - min store price for this product
	Quality     MatchQuality       `json:"quality"`
}

// ComparisonSummary is the basket-level reduction over all queried products.
// Store totals only include matches at or above QualifyingSimilarity.
type ComparisonSummary struct {
	StoreTotals       map[string]float64  `json:"storeTotals"`
	ProductsFound     map[string]int      `json:"productsFound"` // per store
	BestStore         string              `json:"bestStore,omitempty"`
	TotalSavings      float64             `json:"totalSavings"`
	SavingsPercentage float64             `json:"savingsPercentage"`
	MatchQuality      QualityHistogram    `json:"matchQuality"`
	MissingProducts   []string            `json:"missingProducts"`
	AverageConfidence float64             `json:"averageConfidence"`
	Products          []ProductComparison `json:"products"`
	SummaryText       string              `json:"summaryText,omitempty"`
}

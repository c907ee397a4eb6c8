package domain

// MatchType classifies how a candidate matched a query. It is the primary
// sort key within a store's result list.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchSemantic MatchType = "semantic"
	MatchFuzzy    MatchType = "fuzzy"
)

// MatchTypePriority returns the sort rank of a match type (lower is better).
func MatchTypePriority(t MatchType) int {
	switch t {
	case MatchExact:
		return 0
	case MatchContains:
		return 1
	case MatchSemantic:
		return 2
	case MatchFuzzy:
		return 3
	}
	return 4
}

// Confidence is the coarse bucket derived from a similarity score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Similarity policy thresholds, shared by the match engine and the price
// aggregator so a "qualifying" match means the same thing everywhere.
const (
	// HighSimilarity is the floor for the high confidence bucket.
	HighSimilarity = 0.7
	// QualifyingSimilarity is the floor for a match to count toward
	// basket totals. Below it a product is "not reliably found".
	QualifyingSimilarity = 0.4
)

// ConfidenceFor buckets a similarity score.
func ConfidenceFor(similarity float64) Confidence {
	switch {
	case similarity >= HighSimilarity:
		return ConfidenceHigh
	case similarity >= QualifyingSimilarity:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MatchCandidate is the result of scoring one promotion record against one
// query. Never mutated after creation.
type MatchCandidate struct {
	MatchedName string     `json:"matchedName"`
	Store       string     `json:"store"`
	Price       float64    `json:"price"`
	Similarity  float64    `json:"similarity"`
	MatchType   MatchType  `json:"matchType"`
	Confidence  Confidence `json:"confidence"`
}

// ProductMatchResult is the per-query match outcome: candidates best-first
// (per store), the keywords used for the search, and summary counts.
// This is the unit stored in the result cache.
type ProductMatchResult struct {
	Query          string           `json:"query"`
	Matches        []MatchCandidate `json:"matches"`
	SearchKeywords []string         `json:"searchKeywords"`
	ExactCount     int              `json:"exactCount"`
	HighCount      int              `json:"highCount"`
	MediumCount    int              `json:"mediumCount"`
}

// NewProductMatchResult assembles the per-query result and derives the
// summary counts from the candidate list.
func NewProductMatchResult(query string, matches []MatchCandidate, keywords []string) *ProductMatchResult {
	r := &ProductMatchResult{
		Query:          query,
		Matches:        matches,
		SearchKeywords: keywords,
	}
	for _, m := range matches {
		if m.MatchType == MatchExact {
			r.ExactCount++
		}
		switch m.Confidence {
		case ConfidenceHigh:
			r.HighCount++
		case ConfidenceMedium:
			r.MediumCount++
		}
	}
	return r
}

// BestForStore returns the first (best) candidate for the given store,
// or false when the store produced no match.
func (r *ProductMatchResult) BestForStore(store string) (MatchCandidate, bool) {
	for _, m := range r.Matches {
		if m.Store == store {
			return m, true
		}
	}
	return MatchCandidate{}, false
}

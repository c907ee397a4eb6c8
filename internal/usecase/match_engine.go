package usecase

import (
	"log"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/cartsaver/backend/internal/domain"
)

// MatchMode controls the fuzzy-tier strictness.
type MatchMode string

const (
	// MatchModeFlexible accepts fuzzy matches down to a 0.3 similarity floor
	MatchModeFlexible MatchMode = "flexible"
	// MatchModeStrict raises the fuzzy floor to 0.5
	MatchModeStrict MatchMode = "strict"
)

// Similarity formulas per tier. Contains scores live in (0.5, 0.95] and
// semantic scores in (0.3, 0.5], so exact >= contains >= semantic holds for
// any single query.
const (
	containsBaseSimilarity  = 0.5
	containsRangeSimilarity = 0.45
	semanticBaseSimilarity  = 0.3
	semanticRangeSimilarity = 0.2

	fuzzyFloorFlexible = 0.3
	fuzzyFloorStrict   = 0.5
)

// MatchEngineConfig holds configuration for the match engine
type MatchEngineConfig struct {
	EnableDebugLogging bool
}

// MatchEngine classifies promotion candidates against product queries into
// per-store ranked matches. Each candidate is scored once per query at its
// highest applicable tier (exact > contains > semantic > fuzzy).
type MatchEngine struct {
	enableDebugLogging bool
}

// NewMatchEngine creates a new match engine with the given configuration
func NewMatchEngine(config MatchEngineConfig) *MatchEngine {
	return &MatchEngine{enableDebugLogging: config.EnableDebugLogging}
}

// fuzzyFloorFor returns the minimum fuzzy similarity for a mode. Unknown
// modes fall back to flexible.
func fuzzyFloorFor(mode MatchMode) float64 {
	if mode == MatchModeStrict {
		return fuzzyFloorStrict
	}
	return fuzzyFloorFlexible
}

// BatchMatch scores every candidate against every query independently and
// returns, per query, the candidates grouped by store and sorted by match
// type priority, then descending similarity, then ascending price.
// Candidates are expected to be pre-filtered to active records from the
// store allow-list. An empty pool maps every query to an empty list.
func (e *MatchEngine) BatchMatch(
	queries []string,
	candidates []domain.PromotionRecord,
	mode MatchMode,
) map[string][]domain.MatchCandidate {
	results := make(map[string][]domain.MatchCandidate, len(queries))
	floor := fuzzyFloorFor(mode)

	for _, query := range queries {
		results[query] = e.matchOne(query, candidates, floor)
	}

	return results
}

// matchOne scores the candidate pool against a single query.
func (e *MatchEngine) matchOne(query string, candidates []domain.PromotionRecord, fuzzyFloor float64) []domain.MatchCandidate {
	normQuery := normalizeProductName(query)
	queryTokens := filterTokens(strings.Fields(normQuery))

	matched := make([]domain.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		similarity, matchType, ok := e.scoreCandidate(normQuery, queryTokens, c, fuzzyFloor)
		if !ok {
			continue
		}

		if e.enableDebugLogging {
			log.Printf("[MATCH] query=%q candidate=%q store=%s tier=%s sim=%.2f",
				query, c.ProductName, c.StoreName, matchType, similarity)
		}

		matched = append(matched, domain.MatchCandidate{
			MatchedName: c.ProductName,
			Store:       c.StoreName,
			Price:       c.SalePrice,
			Similarity:  similarity,
			MatchType:   matchType,
			Confidence:  domain.ConfidenceFor(similarity),
		})
	}

	return groupAndRank(matched)
}

// scoreCandidate applies the tiers in priority order and returns the first
// that fires. A query with no usable tokens degenerates to the exact and
// contains tiers only.
func (e *MatchEngine) scoreCandidate(
	normQuery string,
	queryTokens []string,
	candidate domain.PromotionRecord,
	fuzzyFloor float64,
) (float64, domain.MatchType, bool) {
	normName := normalizeProductName(candidate.ProductName)
	if normQuery == "" || normName == "" {
		return 0, "", false
	}

	// Exact tier
	if normName == normQuery {
		return 1.0, domain.MatchExact, true
	}

	// Contains tier: either direction, scored by length ratio so a larger
	// overlap ranks higher, capped below 1.0 so it never outranks exact
	if strings.Contains(normName, normQuery) || strings.Contains(normQuery, normName) {
		shorter, longer := len(normQuery), len(normName)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		ratio := float64(shorter) / float64(longer)
		return containsBaseSimilarity + containsRangeSimilarity*ratio, domain.MatchContains, true
	}

	// Semantic tier: shared non-stop-word tokens, synonyms included
	if len(queryTokens) > 0 {
		if overlap := semanticOverlap(queryTokens, normName); overlap > 0 {
			fraction := float64(overlap) / float64(len(queryTokens))
			return semanticBaseSimilarity + semanticRangeSimilarity*fraction, domain.MatchSemantic, true
		}
	}

	// Fuzzy tier: normalized edit similarity above the mode's floor
	if sim := editSimilarity(normQuery, normName); sim >= fuzzyFloor {
		return sim, domain.MatchFuzzy, true
	}

	return 0, "", false
}

// semanticOverlap counts query tokens present in the candidate name, either
// literally or through a synonym of the token.
func semanticOverlap(queryTokens []string, normName string) int {
	nameTokens := make(map[string]bool)
	for _, t := range strings.Fields(normName) {
		nameTokens[t] = true
	}

	overlap := 0
	for _, tok := range queryTokens {
		if nameTokens[tok] {
			overlap++
			continue
		}
		for _, syn := range productSynonyms[tok] {
			if synonymInName(syn, nameTokens) {
				overlap++
				break
			}
		}
	}
	return overlap
}

// synonymInName reports whether every word of the synonym appears in the
// candidate's token set. Quantity synonyms like "2%" or "3.25%" normalize to
// bare digit runs; those carry no product identity and are dropped, and a
// synonym with no words left never matches.
func synonymInName(syn string, nameTokens map[string]bool) bool {
	matched := false
	for _, t := range filterTokens(strings.Fields(normalizeProductName(syn))) {
		if digitRun(t) {
			continue
		}
		if !nameTokens[t] {
			return false
		}
		matched = true
	}
	return matched
}

func digitRun(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// editSimilarity converts Levenshtein distance to a [0,1] similarity.
func editSimilarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// groupAndRank sorts each store's candidates by tier priority, descending
// similarity, then ascending price, and concatenates the groups in
// allow-list order. Stores outside the allow-list keep first-seen order.
func groupAndRank(matches []domain.MatchCandidate) []domain.MatchCandidate {
	byStore := make(map[string][]domain.MatchCandidate)
	var storeOrder []string
	for _, m := range matches {
		if _, seen := byStore[m.Store]; !seen {
			storeOrder = append(storeOrder, m.Store)
		}
		byStore[m.Store] = append(byStore[m.Store], m)
	}

	sort.SliceStable(storeOrder, func(i, j int) bool {
		return domain.StorePriority(storeOrder[i]) < domain.StorePriority(storeOrder[j])
	})

	ranked := make([]domain.MatchCandidate, 0, len(matches))
	for _, store := range storeOrder {
		group := byStore[store]
		sort.SliceStable(group, func(i, j int) bool {
			pi, pj := domain.MatchTypePriority(group[i].MatchType), domain.MatchTypePriority(group[j].MatchType)
			if pi != pj {
				return pi < pj
			}
			if group[i].Similarity != group[j].Similarity {
				return group[i].Similarity > group[j].Similarity
			}
			return group[i].Price < group[j].Price
		})
		ranked = append(ranked, group...)
	}
	return ranked
}

package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cartsaver/backend/internal/domain"
)

// MaxBasketSize bounds one comparison request.
const MaxBasketSize = 50

// ComparisonServiceConfig holds configuration for the comparison service
type ComparisonServiceConfig struct {
	CacheTTL           time.Duration
	DefaultMode        MatchMode
	EnableDebugLogging bool
}

// ComparisonService orchestrates a basket comparison: cache lookup, keyword
// expansion, candidate fetch, matching, caching, and aggregation.
type ComparisonService struct {
	cache      domain.ResultCache
	searcher   domain.PromotionSearcher
	summarizer domain.SummaryGenerator
	expander   *KeywordExpander
	engine     *MatchEngine
	aggregator *PriceAggregator
	cacheTTL   time.Duration
	mode       MatchMode
	debug      bool
}

// NewComparisonService creates a new comparison service with dependencies.
// summarizer may be nil, in which case no summary text is attached.
func NewComparisonService(
	cache domain.ResultCache,
	searcher domain.PromotionSearcher,
	summarizer domain.SummaryGenerator,
	config ComparisonServiceConfig,
) *ComparisonService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}

	mode := config.DefaultMode
	if mode == "" {
		mode = MatchModeFlexible
	}

	return &ComparisonService{
		cache:      cache,
		searcher:   searcher,
		summarizer: summarizer,
		expander:   NewKeywordExpander(config.EnableDebugLogging),
		engine:     NewMatchEngine(MatchEngineConfig{EnableDebugLogging: config.EnableDebugLogging}),
		aggregator: NewPriceAggregator(config.EnableDebugLogging),
		cacheTTL:   cacheTTL,
		mode:       mode,
		debug:      config.EnableDebugLogging,
	}
}

// CompareBasket compares a shopping list across the retailer allow-list.
// Flow: check cache per product; for misses expand keywords, fetch the
// unioned candidate pool once, run the match engine, cache each result;
// then aggregate everything into the basket summary.
func (s *ComparisonService) CompareBasket(
	ctx context.Context,
	products []string,
	mode MatchMode,
) (*domain.ComparisonSummary, map[string]*domain.ProductMatchResult, error) {
	queries := dedupeQueries(products)
	if len(queries) == 0 {
		return nil, nil, domain.ErrInvalidRequest
	}
	if len(queries) > MaxBasketSize {
		return nil, nil, fmt.Errorf("%w: %d products, limit %d", domain.ErrBasketTooLarge, len(queries), MaxBasketSize)
	}

	if mode == "" {
		mode = s.mode
	}

	results := make(map[string]*domain.ProductMatchResult, len(queries))

	keys := make([]string, 0, len(queries))
	keyByQuery := make(map[string]string, len(queries))
	for _, q := range queries {
		key := cacheKey(q, mode)
		keys = append(keys, key)
		keyByQuery[q] = key
	}

	cached := s.cache.BatchGet(keys)
	var misses []string
	for _, q := range queries {
		if result, ok := cached[keyByQuery[q]]; ok {
			results[q] = result
		} else {
			misses = append(misses, q)
		}
	}

	if s.debug {
		log.Printf("[COMPARE] basket=%d cached=%d misses=%d mode=%s",
			len(queries), len(results), len(misses), mode)
	}

	if len(misses) > 0 {
		if err := s.matchMisses(ctx, misses, mode, results); err != nil {
			return nil, nil, err
		}
	}

	summary := s.aggregator.Aggregate(results)
	s.attachSummaryText(ctx, summary)

	return summary, results, nil
}

// matchMisses expands each uncached query, fetches one unioned candidate
// pool, matches, and caches the per-query results.
func (s *ComparisonService) matchMisses(
	ctx context.Context,
	misses []string,
	mode MatchMode,
	results map[string]*domain.ProductMatchResult,
) error {
	keywordsByQuery := make(map[string][]string, len(misses))
	var union []string
	seen := make(map[string]bool)
	for _, q := range misses {
		kws := s.expander.Expand(q)
		keywordsByQuery[q] = kws
		for _, kw := range kws {
			if !seen[kw] {
				seen[kw] = true
				union = append(union, kw)
			}
		}
	}

	var candidates []domain.PromotionRecord
	if len(union) > 0 {
		var err error
		candidates, err = s.searcher.Search(ctx, union)
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
	}

	matched := s.engine.BatchMatch(misses, candidates, mode)
	for _, q := range misses {
		result := domain.NewProductMatchResult(q, matched[q], keywordsByQuery[q])
		results[q] = result
		if err := s.cache.Set(cacheKey(q, mode), result, s.cacheTTL); err != nil {
			// Cache failures must not fail the comparison
			log.Printf("[COMPARE] cache set failed for %q: %v", q, err)
		}
	}
	return nil
}

// attachSummaryText asks the summary generator for prose; any failure
// leaves the summary text empty rather than failing the comparison.
func (s *ComparisonService) attachSummaryText(ctx context.Context, summary *domain.ComparisonSummary) {
	if s.summarizer == nil {
		return
	}
	text, err := s.summarizer.Generate(ctx, summary)
	if err != nil {
		log.Printf("[COMPARE] summary generation failed: %v", err)
		return
	}
	summary.SummaryText = text
}

// cacheKey builds the per-product cache key. The match mode is part of the
// key because strict and flexible runs produce different results.
func cacheKey(query string, mode MatchMode) string {
	return fmt.Sprintf("compare:%s:%s", normalizeProductName(query), mode)
}

// dedupeQueries trims inputs, drops empties, and removes duplicates while
// preserving first-seen order. Spellings that normalize to the same form
// ("Lait", "lait") share one cache key, so only the first-seen one survives.
func dedupeQueries(products []string) []string {
	var queries []string
	seen := make(map[string]bool)
	for _, p := range products {
		q := strings.TrimSpace(p)
		if q == "" {
			continue
		}
		norm := normalizeProductName(q)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		queries = append(queries, q)
	}
	return queries
}

package usecase

import (
	"context"
	"log"

	"github.com/cartsaver/backend/internal/domain"
)

// CandidateSource fetches promotion candidates from the flyer API first and
// falls back to the local promotion store when the API fails or comes back
// empty, so a flyer outage degrades to possibly-stale data instead of an
// empty comparison.
type CandidateSource struct {
	primary  domain.PromotionSearcher
	fallback domain.PromotionRepository
	limit    int
	debug    bool
}

// NewCandidateSource creates a candidate source. fallback may be nil.
func NewCandidateSource(primary domain.PromotionSearcher, fallback domain.PromotionRepository, limit int, debug bool) *CandidateSource {
	if limit <= 0 {
		limit = 200
	}
	return &CandidateSource{
		primary:  primary,
		fallback: fallback,
		limit:    limit,
		debug:    debug,
	}
}

// Search implements domain.PromotionSearcher.
func (s *CandidateSource) Search(ctx context.Context, keywords []string) ([]domain.PromotionRecord, error) {
	records, err := s.primary.Search(ctx, keywords)
	if err == nil && len(records) > 0 {
		return records, nil
	}

	if s.fallback == nil {
		return records, err
	}

	if err != nil && s.debug {
		log.Printf("[CANDIDATES] flyer search failed, using local store: %v", err)
	}

	stored, storeErr := s.fallback.SearchActive(ctx, keywords, s.limit)
	if storeErr != nil {
		// Prefer reporting the original API failure when both paths fail
		if err != nil {
			return nil, err
		}
		return nil, storeErr
	}
	return stored, nil
}

package domain

import (
	"context"
	"time"
)

// PromotionSearcher fetches candidate promotion records for a keyword set.
// Implementations are expected to filter to active records from the store
// allow-list and cap the result size.
type PromotionSearcher interface {
	Search(ctx context.Context, keywords []string) ([]PromotionRecord, error)
}

// PromotionRepository is the persistence layer for promotion rows. Only the
// read path is used during a comparison; writes belong to the import flow.
type PromotionRepository interface {
	SearchActive(ctx context.Context, keywords []string, limit int) ([]PromotionRecord, error)
	SaveBatch(ctx context.Context, records []PromotionRecord) (int, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ResultCache stores per-product match results across requests. It is an
// optimization only: every value it returns must be reproducible by
// re-running expansion, fetch, and matching.
type ResultCache interface {
	Get(key string) (*ProductMatchResult, bool)
	Set(key string, value *ProductMatchResult, ttl time.Duration) error
	BatchGet(keys []string) map[string]*ProductMatchResult
}

// SummaryGenerator produces the human-readable recap of a comparison.
// Implementations must degrade to deterministic text rather than fail.
type SummaryGenerator interface {
	Generate(ctx context.Context, summary *ComparisonSummary) (string, error)
}

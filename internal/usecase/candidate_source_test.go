package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cartsaver/backend/internal/domain"
)

type fakeRepository struct {
	records []domain.PromotionRecord
	err     error
	calls   int
	limit   int
}

func (f *fakeRepository) SearchActive(_ context.Context, _ []string, limit int) ([]domain.PromotionRecord, error) {
	f.calls++
	f.limit = limit
	return f.records, f.err
}

func (f *fakeRepository) SaveBatch(_ context.Context, records []domain.PromotionRecord) (int, error) {
	return len(records), nil
}

func (f *fakeRepository) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func TestCandidateSource_PrimaryWins(t *testing.T) {
	primary := &fakeSearcher{pool: []domain.PromotionRecord{activePromo("Lait", "IGA", 4.50)}}
	fallback := &fakeRepository{records: []domain.PromotionRecord{activePromo("Lait", "Metro", 4.75)}}
	source := NewCandidateSource(primary, fallback, 0, false)

	records, err := source.Search(context.Background(), []string{"lait"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 || records[0].StoreName != "IGA" {
		t.Errorf("records = %v, want the flyer API result", records)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0 when the API answers", fallback.calls)
	}
}

func TestCandidateSource_FallsBackOnError(t *testing.T) {
	primary := &fakeSearcher{err: domain.ErrFlyerAPIFailure}
	fallback := &fakeRepository{records: []domain.PromotionRecord{activePromo("Lait", "Metro", 4.75)}}
	source := NewCandidateSource(primary, fallback, 150, false)

	records, err := source.Search(context.Background(), []string{"lait"})
	if err != nil {
		t.Fatalf("Search() error = %v, want nil when the fallback answers", err)
	}
	if len(records) != 1 || records[0].StoreName != "Metro" {
		t.Errorf("records = %v, want the stored result", records)
	}
	if fallback.limit != 150 {
		t.Errorf("fallback limit = %d, want 150", fallback.limit)
	}
}

func TestCandidateSource_FallsBackOnEmptyResult(t *testing.T) {
	primary := &fakeSearcher{}
	fallback := &fakeRepository{records: []domain.PromotionRecord{activePromo("Lait", "Metro", 4.75)}}
	source := NewCandidateSource(primary, fallback, 0, false)

	records, err := source.Search(context.Background(), []string{"lait"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want the stored result on an empty API answer", len(records))
	}
}

func TestCandidateSource_BothFail(t *testing.T) {
	primary := &fakeSearcher{err: domain.ErrFlyerAPIFailure}
	fallback := &fakeRepository{err: domain.ErrStoreUnavailable}
	source := NewCandidateSource(primary, fallback, 0, false)

	_, err := source.Search(context.Background(), []string{"lait"})
	// The original API failure is the more useful signal
	if !errors.Is(err, domain.ErrFlyerAPIFailure) {
		t.Errorf("error = %v, want ErrFlyerAPIFailure", err)
	}
}

func TestCandidateSource_NoFallback(t *testing.T) {
	primary := &fakeSearcher{err: domain.ErrFlyerAPIFailure}
	source := NewCandidateSource(primary, nil, 0, false)

	_, err := source.Search(context.Background(), []string{"lait"})
	if !errors.Is(err, domain.ErrFlyerAPIFailure) {
		t.Errorf("error = %v, want ErrFlyerAPIFailure", err)
	}
}
